package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pavel-Shcherbo/REKLIX/internal/antispam"
	"github.com/Pavel-Shcherbo/REKLIX/internal/validation"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/logging"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/middleware"
)

const defaultNotifyTimeout = 30 * time.Second

type ContactHandler struct {
	emailSender   EmailSender
	engine        *antispam.Engine
	toEmail       string
	notifyTimeout time.Duration
	logger        logging.Logger
	metrics       *FormMetrics
}

func NewContactHandler(
	emailSender EmailSender,
	engine *antispam.Engine,
	toEmail string,
	notifyTimeout time.Duration,
	logger logging.Logger,
	metrics *FormMetrics,
) *ContactHandler {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &ContactHandler{
		emailSender:   emailSender,
		engine:        engine,
		toEmail:       toEmail,
		notifyTimeout: notifyTimeout,
		logger:        logger,
		metrics:       metrics,
	}
}

func (h *ContactHandler) Handle(c *gin.Context) {
	var req validation.ContactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncContact("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	clientID := getClientID(c)
	log := middleware.GetContextLogger(c, h.logger)

	if fieldErrors := validation.ValidateContact(&req); len(fieldErrors) > 0 {
		h.metrics.IncContact("validation_failed")
		log.WithFields(logging.Fields{
			"client_id": clientID,
			"errors":    fieldErrors,
			"name":      redactName(req.Name),
			"email":     redactEmail(req.Email),
		}).Warn("Contact submission failed validation")

		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"details": fieldErrors,
		})
		return
	}

	verdict, err := h.engine.CheckContact(c.Request.Context(), &req, clientID)
	if err != nil {
		// A limiter store outage must not take the contact form down:
		// fail open and let the submission through.
		log.WithError(err).Error("Spam check unavailable")
		verdict = antispam.Verdict{}
	}

	if verdict.Spam {
		h.metrics.IncContact("spam")
		h.metrics.IncSpam("contact", string(verdict.Reason))
		log.WithFields(logging.Fields{
			"client_id": clientID,
			"reason":    verdict.Reason,
			"name":      redactName(req.Name),
			"email":     redactEmail(req.Email),
		}).Warn("Spam detected")

		// Same response as a genuine acceptance so abuse tooling cannot
		// tell it was filtered.
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Thank you for your message! We will get back to you soon.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.notifyTimeout)
	defer cancel()

	subject := fmt.Sprintf("Reklix Contact Form: %s", req.Name)
	notifyStart := time.Now()
	err = h.emailSender.SendMail(ctx, h.toEmail, subject, buildContactEmailHTML(&req, clientID))
	h.metrics.ObserveNotify("notification", time.Since(notifyStart).Seconds())
	if err != nil {
		h.metrics.IncContact("email_error")
		log.WithFields(logging.Fields{
			"error": err.Error(),
			"name":  redactName(req.Name),
			"email": redactEmail(req.Email),
		}).Error("Failed to send contact notification")

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to send message. Please try again later.",
		})
		return
	}

	// The auto-reply is best-effort: the submission already reached us.
	if err := h.emailSender.SendMail(ctx, req.Email, "We received your message", buildAutoReplyHTML(req.Name)); err != nil {
		log.WithFields(logging.Fields{
			"error": err.Error(),
			"email": redactEmail(req.Email),
		}).Warn("Failed to send auto-reply")
	}

	h.metrics.IncContact("success")
	log.WithFields(logging.Fields{
		"client_id": clientID,
		"name":      redactName(req.Name),
		"email":     redactEmail(req.Email),
		"service":   req.Service,
	}).Info("Contact form submitted")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Thank you for your message! We will get back to you soon.",
	})
}

// getClientID derives the rate-limit key from the request origin: first
// X-Forwarded-For entry, then X-Real-IP, else "unknown".
func getClientID(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}

	if realIP := c.GetHeader("X-Real-IP"); realIP != "" {
		return realIP
	}

	return "unknown"
}

func buildContactEmailHTML(req *validation.ContactRequest, clientID string) string {
	optional := func(v string) string {
		if v == "" {
			return "Not provided"
		}
		return v
	}

	message := strings.ReplaceAll(req.Message, "\n", "<br>")

	return fmt.Sprintf(`
		<h2>New Contact Form Submission</h2>
		<p><strong>Name:</strong> %s</p>
		<p><strong>Email:</strong> %s</p>
		<p><strong>Phone:</strong> %s</p>
		<p><strong>Company:</strong> %s</p>
		<p><strong>Service:</strong> %s</p>
		<p><strong>Budget:</strong> %s</p>
		<p><strong>Timeline:</strong> %s</p>
		<p><strong>Message:</strong></p>
		<div style="background: #f5f5f5; padding: 15px; border-radius: 5px; margin: 10px 0;">
			%s
		</div>
		<hr>
		<p><small>Submitted at: %s</small></p>
		<p><small>Client: %s</small></p>
	`, req.Name, req.Email, optional(req.Phone), optional(req.Company), req.Service,
		optional(req.Budget), optional(req.Timeline), message,
		time.Now().UTC().Format(time.RFC3339), clientID)
}

func buildAutoReplyHTML(name string) string {
	return fmt.Sprintf(`
		<h2>Thanks for reaching out, %s!</h2>
		<p>We received your message and will get back to you within one business day.</p>
		<p>— The Reklix team</p>
	`, name)
}

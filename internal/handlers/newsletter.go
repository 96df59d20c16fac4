package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Pavel-Shcherbo/REKLIX/internal/antispam"
	"github.com/Pavel-Shcherbo/REKLIX/internal/store"
	"github.com/Pavel-Shcherbo/REKLIX/internal/validation"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/logging"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/middleware"
)

type NewsletterHandler struct {
	subscribers   store.SubscriberStore
	engine        *antispam.Engine
	emailSender   EmailSender
	notifyTimeout time.Duration
	logger        logging.Logger
	metrics       *FormMetrics
}

func NewNewsletterHandler(
	subscribers store.SubscriberStore,
	engine *antispam.Engine,
	emailSender EmailSender,
	notifyTimeout time.Duration,
	logger logging.Logger,
	metrics *FormMetrics,
) *NewsletterHandler {
	if notifyTimeout <= 0 {
		notifyTimeout = defaultNotifyTimeout
	}
	return &NewsletterHandler{
		subscribers:   subscribers,
		engine:        engine,
		emailSender:   emailSender,
		notifyTimeout: notifyTimeout,
		logger:        logger,
		metrics:       metrics,
	}
}

// Handle processes a newsletter signup. Unlike the contact form, the
// rate-limit and disposable-domain rejections are surfaced to the caller.
func (h *NewsletterHandler) Handle(c *gin.Context) {
	var req validation.NewsletterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.metrics.IncNewsletter("bad_request")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request format",
		})
		return
	}

	clientID := getClientID(c)
	log := middleware.GetContextLogger(c, h.logger)

	if fieldErrors := validation.ValidateNewsletter(&req); len(fieldErrors) > 0 {
		h.metrics.IncNewsletter("validation_failed")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Please enter a valid email address.",
			"details": fieldErrors,
		})
		return
	}

	allowed, err := h.engine.CheckRateLimit(c.Request.Context(), antispam.ScopeNewsletter, clientID)
	if err != nil {
		log.WithError(err).Error("Rate limit check unavailable")
		allowed = true
	}
	if !allowed {
		h.metrics.IncNewsletter("rate_limited")
		h.metrics.IncSpam("newsletter", string(antispam.ReasonRateLimit))
		log.WithField("client_id", clientID).Warn("Newsletter rate limit exceeded")

		c.JSON(http.StatusTooManyRequests, gin.H{
			"success": false,
			"error":   "Too many requests. Please try again later.",
		})
		return
	}

	if !h.engine.CheckEmailDomain(req.Email) {
		h.metrics.IncNewsletter("disposable_email")
		h.metrics.IncSpam("newsletter", string(antispam.ReasonDisposable))
		log.WithFields(logging.Fields{
			"client_id": clientID,
			"email":     redactEmail(req.Email),
		}).Warn("Disposable email rejected")

		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Please use a valid email address.",
		})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	added, err := h.subscribers.Add(c.Request.Context(), email)
	if err != nil {
		h.metrics.IncNewsletter("store_error")
		log.WithError(err).Error("Subscriber store failure")

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to subscribe. Please try again later.",
		})
		return
	}
	if !added {
		h.metrics.IncNewsletter("already_subscribed")
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "This email is already subscribed to our newsletter.",
		})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.notifyTimeout)
	defer cancel()

	notifyStart := time.Now()
	err = h.emailSender.SendMail(ctx, email, "Welcome to the Reklix newsletter", buildWelcomeHTML())
	h.metrics.ObserveNotify("welcome", time.Since(notifyStart).Seconds())
	if err != nil {
		h.metrics.IncNewsletter("email_error")
		log.WithFields(logging.Fields{
			"error": err.Error(),
			"email": redactEmail(email),
		}).Error("Failed to send welcome email")

		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to subscribe. Please try again later.",
		})
		return
	}

	h.metrics.IncNewsletter("success")
	log.WithFields(logging.Fields{
		"client_id": clientID,
		"email":     redactEmail(email),
	}).Info("Newsletter subscription successful")

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Successfully subscribed to our newsletter!",
	})
}

func buildWelcomeHTML() string {
	return `
		<h2>Welcome aboard!</h2>
		<p>You are now subscribed to the Reklix newsletter. Expect case studies,
		growth experiments and the occasional launch note — no more than once a week.</p>
		<p>— The Reklix team</p>
	`
}

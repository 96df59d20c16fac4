// Package antispam decides whether a schema-valid submission is bot or abuse
// traffic. Every check is an in-memory heuristic; false positives and
// negatives are expected and tolerated.
package antispam

import (
	"context"
	"time"

	"github.com/Pavel-Shcherbo/REKLIX/internal/store"
	"github.com/Pavel-Shcherbo/REKLIX/internal/validation"
)

// Reason tags why a submission was judged spam.
type Reason string

const (
	ReasonHoneypot       Reason = "honeypot-triggered"
	ReasonRateLimit      Reason = "rate-limit-exceeded"
	ReasonDisposable     Reason = "disposable-email"
	ReasonMessageContent Reason = "spam-content-message"
	ReasonNameContent    Reason = "spam-content-name"
)

// Verdict is produced fresh per request and never persisted.
type Verdict struct {
	Spam   bool
	Reason Reason
}

var clean = Verdict{}

func spam(reason Reason) Verdict {
	return Verdict{Spam: true, Reason: reason}
}

// Rate-limit window scopes. The contact form and the newsletter keep
// independent windows even for the same client.
const (
	ScopeContact    = "contact"
	ScopeNewsletter = "newsletter"
)

// Engine runs the heuristic checks in a fixed order, first match wins.
type Engine struct {
	limiter store.RateLimiter
	now     func() time.Time
}

func NewEngine(limiter store.RateLimiter) *Engine {
	return &Engine{
		limiter: limiter,
		now:     time.Now,
	}
}

// WithClock overrides the engine's time source. Used by tests to step
// through rate-limit windows deterministically.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// CheckContact evaluates the full check set against a contact submission.
// Side effect: a submission that passes the rate-limit check is counted
// against the client's window, even if a later check rejects it.
func (e *Engine) CheckContact(ctx context.Context, req *validation.ContactRequest, clientID string) (Verdict, error) {
	if req.Website != "" {
		return spam(ReasonHoneypot), nil
	}

	allowed, err := e.CheckRateLimit(ctx, ScopeContact, clientID)
	if err != nil {
		return clean, err
	}
	if !allowed {
		return spam(ReasonRateLimit), nil
	}

	if disposableDomain(req.Email) {
		return spam(ReasonDisposable), nil
	}

	if spamContent(req.Message) {
		return spam(ReasonMessageContent), nil
	}

	if spamContent(req.Name) {
		return spam(ReasonNameContent), nil
	}

	return clean, nil
}

// CheckRateLimit consumes one slot from the client's window for the given
// scope. A rejected attempt is not counted.
func (e *Engine) CheckRateLimit(ctx context.Context, scope, clientID string) (bool, error) {
	return e.limiter.Take(ctx, scope+":"+clientID, e.now())
}

// CheckEmailDomain reports whether the email's domain is acceptable
// (i.e. not a throwaway provider).
func (e *Engine) CheckEmailDomain(email string) bool {
	return !disposableDomain(email)
}

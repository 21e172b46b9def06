package auth

import (
	"github.com/gofiber/fiber/v2"
)

const claimsKey = "auth_claims"

// DecisionRecorder observes gate decisions.
type DecisionRecorder interface {
	RecordAuthDecision(decision, reason string)
}

// Middleware adapts the Gate to fiber. It must run before any route handler.
type Middleware struct {
	gate     *Gate
	recorder DecisionRecorder
}

// NewMiddleware constructs middleware. recorder may be nil.
func NewMiddleware(gate *Gate, recorder DecisionRecorder) *Middleware {
	return &Middleware{gate: gate, recorder: recorder}
}

// Handle authenticates the request, attaching claims on success and
// short-circuiting with the mapped error on rejection.
func (m *Middleware) Handle(c *fiber.Ctx) error {
	outcome := m.gate.Authenticate(c.Method(), c.Path(), c.Get(fiber.HeaderAuthorization))
	m.record(outcome)

	switch outcome.Decision {
	case DecisionExempt:
		return c.Next()
	case DecisionAuthenticated:
		c.Locals(claimsKey, outcome.Claims)
		return c.Next()
	default:
		return AsDomainError(outcome.Err)
	}
}

func (m *Middleware) record(outcome Outcome) {
	if m.recorder == nil {
		return
	}
	reason := ""
	if outcome.Err != nil {
		reason = AsDomainErrorCode(outcome.Err)
	}
	m.recorder.RecordAuthDecision(outcome.Decision.String(), reason)
}

// ClaimsFromContext returns the claims attached by the gate, if any.
func ClaimsFromContext(c *fiber.Ctx) (*Claims, bool) {
	claims, ok := c.Locals(claimsKey).(*Claims)
	return claims, ok && claims != nil
}

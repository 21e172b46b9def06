package auth

import "strings"

// Decision is the result kind of Gate.Authenticate.
type Decision int

const (
	DecisionRejected Decision = iota
	DecisionExempt
	DecisionAuthenticated
)

func (d Decision) String() string {
	switch d {
	case DecisionExempt:
		return "exempt"
	case DecisionAuthenticated:
		return "authenticated"
	default:
		return "rejected"
	}
}

// Outcome carries claims only when Decision is DecisionAuthenticated and an
// error only when it is DecisionRejected.
type Outcome struct {
	Decision Decision
	Claims   *Claims
	Err      error
}

// Verifier verifies bearer tokens.
type Verifier interface {
	Verify(token string) (*Claims, error)
}

// Gate composes the exemption policy with token verification.
type Gate struct {
	policy   *PolicyMatcher
	verifier Verifier
}

// NewGate builds a gate.
func NewGate(policy *PolicyMatcher, verifier Verifier) *Gate {
	return &Gate{policy: policy, verifier: verifier}
}

// Authenticate decides one request. authorization is the raw Authorization
// header value.
func (g *Gate) Authenticate(method, path, authorization string) Outcome {
	if g.policy.IsExempt(path, method) {
		return Outcome{Decision: DecisionExempt}
	}

	token, ok := bearerToken(authorization)
	if !ok {
		return Outcome{Decision: DecisionRejected, Err: ErrNoToken}
	}

	claims, err := g.verifier.Verify(token)
	if err != nil {
		return Outcome{Decision: DecisionRejected, Err: err}
	}
	return Outcome{Decision: DecisionAuthenticated, Claims: claims}
}

func bearerToken(header string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(header), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	return token, token != ""
}

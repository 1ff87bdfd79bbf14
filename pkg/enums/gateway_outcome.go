package enums

import "fmt"

// GatewayOutcome is the terminal signal of one payment-popup invocation.
// Exactly one outcome fires per attempt.
type GatewayOutcome string

const (
	GatewayOutcomeSuccess GatewayOutcome = "success"
	GatewayOutcomePending GatewayOutcome = "pending"
	GatewayOutcomeError   GatewayOutcome = "error"
	GatewayOutcomeClosed  GatewayOutcome = "closed"
)

var validGatewayOutcomes = []GatewayOutcome{
	GatewayOutcomeSuccess,
	GatewayOutcomePending,
	GatewayOutcomeError,
	GatewayOutcomeClosed,
}

// String implements fmt.Stringer.
func (g GatewayOutcome) String() string {
	return string(g)
}

// IsValid reports whether the value is a known GatewayOutcome.
func (g GatewayOutcome) IsValid() bool {
	for _, candidate := range validGatewayOutcomes {
		if candidate == g {
			return true
		}
	}
	return false
}

// ParseGatewayOutcome converts raw input into a GatewayOutcome.
func ParseGatewayOutcome(value string) (GatewayOutcome, error) {
	for _, candidate := range validGatewayOutcomes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid gateway outcome %q", value)
}

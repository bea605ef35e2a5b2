package models

import "fmt"

// Plan is the subscription tier controlling feature access.
type Plan string

const (
	PlanFree    Plan = "FREE"
	PlanPremium Plan = "PREMIUM"
	PlanFamily  Plan = "FAMILY"
)

// ParsePlan converts a wire string into a Plan.
func ParsePlan(s string) (Plan, error) {
	switch Plan(s) {
	case PlanFree, PlanPremium, PlanFamily:
		return Plan(s), nil
	}
	return "", fmt.Errorf("invalid plan: %q", s)
}

// Valid reports whether the plan is one of the known tiers.
func (p Plan) Valid() bool {
	switch p {
	case PlanFree, PlanPremium, PlanFamily:
		return true
	}
	return false
}

// Paid reports whether the plan can be purchased through the payment flow.
func (p Plan) Paid() bool {
	return p == PlanPremium || p == PlanFamily
}

// HasAccess reports whether a user on plan p may use a feature that requires
// the given plan. FAMILY is a superset of every tier; there is no generalized
// hierarchy beyond that single rule, so adding a new tier means revisiting
// this predicate.
func (p Plan) HasAccess(required Plan) bool {
	return p == required || p == PlanFamily
}

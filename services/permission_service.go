package services

import "loan-origination-api/models"

// Capabilities gate what a staff role may do. Restricted status transitions
// (final decisions, disbursement, account end states) require CapabilityDecide.
const (
	CapabilityReview  = "review"
	CapabilityDecide  = "decide"
	CapabilityViewAll = "view_all"
)

var roleCapabilities = map[string][]string{
	models.RoleAgent:   {CapabilityReview},
	models.RoleAnalyst: {CapabilityReview, CapabilityViewAll},
	models.RoleManager: {CapabilityReview, CapabilityViewAll, CapabilityDecide},
	models.RoleAdmin:   {CapabilityReview, CapabilityViewAll, CapabilityDecide},
}

// RoleCan reports whether the role grants the capability.
func RoleCan(role, capability string) bool {
	for _, granted := range roleCapabilities[role] {
		if granted == capability {
			return true
		}
	}
	return false
}

// ActorCan reports whether the actor's role grants the capability. A nil
// actor is the system itself, which is never permission-gated.
func ActorCan(actor *models.User, capability string) bool {
	if actor == nil {
		return true
	}
	return RoleCan(actor.Role, capability)
}

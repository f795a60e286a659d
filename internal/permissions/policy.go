// Package permissions holds the authorization policy as an explicit decision
// table keyed by (operation, actor, resource). Handlers resolve the actor from
// the request token and pass it down; no operation reads ambient identity.
package permissions

import (
	"reviewhub/internal/apperrors"
	"reviewhub/internal/models"
)

// Actor is the authenticated identity performing an operation. A zero Actor
// (ID == 0) is an anonymous requester.
type Actor struct {
	ID       uint
	Username string
	IsStaff  bool
}

func (a Actor) Anonymous() bool {
	return a.ID == 0
}

type Operation string

const (
	OpReviewUpdate     Operation = "review.update"
	OpReviewDelete     Operation = "review.delete"
	OpReviewApprove    Operation = "review.approve"
	OpProductWrite     Operation = "product.write"
	OpAdminSummary     Operation = "admin.summary"
	OpAnalyticsGeneral Operation = "analytics.general"
	OpAnalyticsProduct Operation = "analytics.product"
)

type rule func(actor Actor, resource any) bool

func ownerOnly(actor Actor, resource any) bool {
	review, ok := resource.(*models.Review)
	return ok && !actor.Anonymous() && review.UserID == actor.ID
}

func staffOnly(actor Actor, _ any) bool {
	return !actor.Anonymous() && actor.IsStaff
}

var policy = map[Operation]rule{
	OpReviewUpdate:     ownerOnly,
	OpReviewDelete:     ownerOnly,
	OpReviewApprove:    staffOnly,
	OpProductWrite:     staffOnly,
	OpAdminSummary:     staffOnly,
	OpAnalyticsGeneral: staffOnly,
	OpAnalyticsProduct: staffOnly,
}

// Check returns nil when the actor may perform op on resource. Unknown
// operations are denied.
func Check(op Operation, actor Actor, resource any) error {
	if actor.Anonymous() {
		return apperrors.Authentication("authentication required")
	}
	allow, ok := policy[op]
	if !ok || !allow(actor, resource) {
		return apperrors.Permission("you do not have permission to perform this action")
	}
	return nil
}

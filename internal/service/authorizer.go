// Package service contains the borrow-request lifecycle business logic.
package service

import (
	"time"

	"shardit/internal/models"
)

// validSource reports whether t may be applied to a request currently in from.
func validSource(t models.Transition, from models.RequestStatus) bool {
	switch t {
	case models.TransitionAccept, models.TransitionDecline:
		return from == models.RequestStatusPending
	case models.TransitionCancel:
		return from == models.RequestStatusPending || from == models.RequestStatusAccepted
	case models.TransitionConfirmPickup:
		return from == models.RequestStatusAccepted
	case models.TransitionConfirmReturn:
		return from == models.RequestStatusPickedUp
	case models.TransitionComplete:
		return from == models.RequestStatusReturned
	}
	return false
}

// allowedRoles returns which parties may apply t from the given status.
// Cancellation is the only transition open to both parties, and only once
// the request has been accepted; a pending request is withdrawn by its
// borrower alone.
func allowedRoles(t models.Transition, from models.RequestStatus) []models.ActorRole {
	switch t {
	case models.TransitionAccept, models.TransitionDecline, models.TransitionComplete:
		return []models.ActorRole{models.RoleLender}
	case models.TransitionConfirmPickup, models.TransitionConfirmReturn:
		return []models.ActorRole{models.RoleBorrower}
	case models.TransitionCancel:
		if from == models.RequestStatusPending {
			return []models.ActorRole{models.RoleBorrower}
		}
		return []models.ActorRole{models.RoleBorrower, models.RoleLender}
	}
	return nil
}

// authorize decides whether actingUserID may apply t to req, returning the
// actor's role on success. Denial is an authorization error naming the
// required role; it never silently no-ops.
func authorize(req *models.BorrowRequest, actingUserID uint, t models.Transition) (models.ActorRole, error) {
	roles := allowedRoles(t, req.Status)
	if len(roles) == 0 {
		return "", models.NewInvalidTransitionError(req.Status, t)
	}

	role, isParty := req.RoleOf(actingUserID)
	if isParty {
		for _, allowed := range roles {
			if role == allowed {
				return role, nil
			}
		}
	}
	return "", models.NewAuthorizationError(t, roles[0])
}

// targetStatus returns the status reached by applying t as the given role.
func targetStatus(t models.Transition, role models.ActorRole) models.RequestStatus {
	switch t {
	case models.TransitionAccept:
		return models.RequestStatusAccepted
	case models.TransitionDecline:
		return models.RequestStatusDeclined
	case models.TransitionConfirmPickup:
		return models.RequestStatusPickedUp
	case models.TransitionConfirmReturn:
		return models.RequestStatusReturned
	case models.TransitionComplete:
		return models.RequestStatusCompleted
	case models.TransitionCancel:
		if role == models.RoleLender {
			return models.RequestStatusCancelledLender
		}
		return models.RequestStatusCancelledBorrower
	}
	return ""
}

// stampMilestone records the timestamp for the state reached by t.
// Each milestone is written exactly once: the caller only applies t after the
// source-state check, so the field is always nil here.
func stampMilestone(req *models.BorrowRequest, t models.Transition, now time.Time) {
	switch t {
	case models.TransitionAccept, models.TransitionDecline:
		req.ProcessedAt = &now
	case models.TransitionConfirmPickup:
		req.PickupConfirmedAt = &now
	case models.TransitionConfirmReturn:
		req.ReturnInitiatedAt = &now
	case models.TransitionComplete:
		req.CompletedAt = &now
	}
}

package models

import "time"

// RequestStatus represents the lifecycle status of a borrow request.
type RequestStatus string

const (
	// RequestStatusPending indicates a request awaiting the lender's decision.
	RequestStatusPending RequestStatus = "PENDING"
	// RequestStatusAccepted indicates the lender approved the request.
	RequestStatusAccepted RequestStatus = "ACCEPTED"
	// RequestStatusDeclined indicates the lender declined the request.
	RequestStatusDeclined RequestStatus = "DECLINED"
	// RequestStatusPickedUp indicates the borrower confirmed receiving the item.
	RequestStatusPickedUp RequestStatus = "PICKED_UP"
	// RequestStatusReturned indicates the borrower confirmed returning the item.
	RequestStatusReturned RequestStatus = "RETURNED"
	// RequestStatusCompleted indicates the lender confirmed the item is back.
	RequestStatusCompleted RequestStatus = "COMPLETED"
	// RequestStatusCancelledBorrower indicates the borrower withdrew the request.
	RequestStatusCancelledBorrower RequestStatus = "CANCELLED_BORROWER"
	// RequestStatusCancelledLender indicates the lender called off an accepted request.
	RequestStatusCancelledLender RequestStatus = "CANCELLED_LENDER"
)

// Terminal reports whether no further transition is legal from s.
func (s RequestStatus) Terminal() bool {
	switch s {
	case RequestStatusDeclined, RequestStatusCompleted,
		RequestStatusCancelledBorrower, RequestStatusCancelledLender:
		return true
	}
	return false
}

// Cancelled reports whether s is one of the cancelled states.
func (s RequestStatus) Cancelled() bool {
	return s == RequestStatusCancelledBorrower || s == RequestStatusCancelledLender
}

// Transition is a named, authorized state change applied to a borrow request.
type Transition string

const (
	TransitionAccept        Transition = "accept"
	TransitionDecline       Transition = "decline"
	TransitionCancel        Transition = "cancel"
	TransitionConfirmPickup Transition = "confirm_pickup"
	TransitionConfirmReturn Transition = "confirm_return"
	TransitionComplete      Transition = "complete"
)

// ActorRole identifies which side of a borrow request a user is on.
type ActorRole string

const (
	RoleBorrower ActorRole = "borrower"
	RoleLender   ActorRole = "lender"
)

// BorrowRequest is the central lifecycle entity: one user's request to borrow
// another user's item, tracked from creation through pickup and return.
// Status only moves along the transition graph in the service layer; the
// milestone timestamps are each stamped exactly once, by the transition that
// reaches the corresponding state.
type BorrowRequest struct {
	ID         uint          `gorm:"primaryKey" json:"id"`
	ItemID     uint          `gorm:"not null;index" json:"item_id"`
	BorrowerID uint          `gorm:"not null;index:idx_borrow_requests_borrower" json:"borrower_id"`
	LenderID   uint          `gorm:"not null;index:idx_borrow_requests_lender" json:"lender_id"`
	StartDate  time.Time     `gorm:"not null" json:"start_date"`
	EndDate    time.Time     `gorm:"not null" json:"end_date"`
	Status     RequestStatus `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	BorrowerMessage       string `gorm:"type:text;not null" json:"borrower_message"`
	LenderResponseMessage string `gorm:"type:text" json:"lender_response_message"`

	// Milestone timestamps; nil means the milestone has not happened.
	ProcessedAt       *time.Time `json:"processed_at"`
	PickupConfirmedAt *time.Time `json:"pickup_confirmed_at"`
	ReturnInitiatedAt *time.Time `json:"return_initiated_at"`
	CompletedAt       *time.Time `json:"completed_at"`

	// Version backs the optimistic concurrency check: a save with a stale
	// version affects zero rows and surfaces as CONFLICT.
	Version uint `gorm:"not null;default:1" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Item     *Item `gorm:"foreignKey:ItemID" json:"item,omitempty"`
	Borrower *User `gorm:"foreignKey:BorrowerID" json:"borrower,omitempty"`
	Lender   *User `gorm:"foreignKey:LenderID" json:"lender,omitempty"`
}

// TableName specifies the table name for GORM
func (BorrowRequest) TableName() string {
	return "borrow_requests"
}

// RoleOf returns the role userID plays on this request, or false if the user
// is neither party.
func (r *BorrowRequest) RoleOf(userID uint) (ActorRole, bool) {
	switch userID {
	case r.BorrowerID:
		return RoleBorrower, true
	case r.LenderID:
		return RoleLender, true
	}
	return "", false
}

// Counterparty returns the user on the other side of the request from userID.
func (r *BorrowRequest) Counterparty(userID uint) uint {
	if userID == r.BorrowerID {
		return r.LenderID
	}
	return r.BorrowerID
}

// CanonicalStatusOrder is the happy-path progression used by the timeline
// reconstruction and by UI progress displays.
var CanonicalStatusOrder = []RequestStatus{
	RequestStatusPending,
	RequestStatusAccepted,
	RequestStatusPickedUp,
	RequestStatusReturned,
	RequestStatusCompleted,
}

// NormalizeStatusFilter maps UI filter aliases onto canonical statuses.
// The frontend historically used APPROVED where the lifecycle says ACCEPTED.
func NormalizeStatusFilter(s string) (RequestStatus, bool) {
	switch RequestStatus(s) {
	case "APPROVED":
		return RequestStatusAccepted, true
	case RequestStatusPending, RequestStatusAccepted, RequestStatusDeclined,
		RequestStatusPickedUp, RequestStatusReturned, RequestStatusCompleted,
		RequestStatusCancelledBorrower, RequestStatusCancelledLender:
		return RequestStatus(s), true
	}
	return "", false
}

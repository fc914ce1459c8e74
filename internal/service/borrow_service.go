package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"shardit/internal/featureflags"
	"shardit/internal/middleware"
	"shardit/internal/models"
	"shardit/internal/observability"
	"shardit/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// NotificationSink receives the notification side effect of a transition.
// Delivery is best-effort: a sink error never rolls back the transition.
type NotificationSink interface {
	Notify(ctx context.Context, n *models.Notification) error
}

// BorrowService owns the borrow-request lifecycle: it validates and applies
// status transitions, serializes them per request, and emits counterparty
// notifications.
type BorrowService struct {
	requestRepo repository.BorrowRequestRepository
	itemRepo    repository.ItemRepository
	sink        NotificationSink
	flags       *featureflags.Manager

	mu    sync.Mutex
	locks map[uint]*requestLock
}

// requestLock is a refcounted per-id mutex so map entries can be dropped
// once no transition holds or waits on them.
type requestLock struct {
	mu   sync.Mutex
	refs int
}

// NewBorrowService returns a new BorrowService. sink may be nil, in which
// case transitions apply without emitting notifications.
func NewBorrowService(requestRepo repository.BorrowRequestRepository, itemRepo repository.ItemRepository, sink NotificationSink, flags *featureflags.Manager) *BorrowService {
	return &BorrowService{
		requestRepo: requestRepo,
		itemRepo:    itemRepo,
		sink:        sink,
		flags:       flags,
		locks:       make(map[uint]*requestLock),
	}
}

// lockRequest serializes transitions per request id. Transitions on
// different requests proceed in parallel. The map entry is evicted when the
// last holder releases, so the map stays bounded by in-flight transitions.
func (s *BorrowService) lockRequest(id uint) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &requestLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}

// CreateRequestInput carries the borrower's request-to-borrow command.
type CreateRequestInput struct {
	BorrowerID uint
	ItemID     uint
	StartDate  time.Time
	EndDate    time.Time
	Message    string
}

// CreateRequest validates the borrow window and item, derives the lender from
// the item's owner, and stores a new PENDING request. The lender is notified.
func (s *BorrowService) CreateRequest(ctx context.Context, in CreateRequestInput) (*models.BorrowRequest, error) {
	if in.Message == "" {
		return nil, models.NewValidationError("A message to the owner is required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return nil, models.NewValidationError("Start and end dates are required")
	}
	if in.EndDate.Before(in.StartDate) {
		return nil, models.NewValidationError("End date must not be before start date")
	}

	item, err := s.itemRepo.GetByID(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if item.OwnerID == in.BorrowerID {
		return nil, models.NewValidationError("You cannot borrow your own item")
	}
	if !item.Available {
		return nil, models.NewValidationError("This item is not available for borrowing")
	}

	req := &models.BorrowRequest{
		ItemID:          item.ID,
		BorrowerID:      in.BorrowerID,
		LenderID:        item.OwnerID,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		Status:          models.RequestStatusPending,
		BorrowerMessage: in.Message,
		Version:         1,
	}
	if err := s.requestRepo.Create(ctx, req); err != nil {
		return nil, err
	}

	// Reload with relations for the response and the notification text.
	req, err = s.requestRepo.GetByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	observability.RequestsCreated.Inc()
	s.emit(ctx, req, req.LenderID,
		fmt.Sprintf("%s wants to borrow %q", partyName(req.Borrower), itemTitle(req)))

	return req, nil
}

// ApplyTransition validates, authorizes and applies a lifecycle transition.
// It either fully applies (state change, persist, notify attempt) or fails
// before any mutation is persisted.
func (s *BorrowService) ApplyTransition(ctx context.Context, requestID uint, t models.Transition, actingUserID uint, responseMessage string) (*models.BorrowRequest, error) {
	ctx, span := observability.Tracer.Start(ctx, "lifecycle.apply_transition")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("request.id", int64(requestID)),
		attribute.String("request.transition", string(t)),
	)

	unlock := s.lockRequest(requestID)
	defer unlock()

	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		observability.TransitionsTotal.WithLabelValues(string(t), "not_found").Inc()
		return nil, err
	}

	if !validSource(t, req.Status) {
		observability.TransitionsTotal.WithLabelValues(string(t), "invalid").Inc()
		return nil, models.NewInvalidTransitionError(req.Status, t)
	}

	role, err := authorize(req, actingUserID, t)
	if err != nil {
		observability.TransitionsTotal.WithLabelValues(string(t), "forbidden").Inc()
		return nil, err
	}

	if t == models.TransitionAccept && s.overlapGuardEnabled(actingUserID) {
		count, err := s.requestRepo.CountOverlappingActive(ctx, req)
		if err != nil {
			return nil, err
		}
		if count > 0 {
			observability.TransitionsTotal.WithLabelValues(string(t), "conflict").Inc()
			return nil, models.NewConflictError("The item already has an accepted request for overlapping dates")
		}
	}

	now := time.Now().UTC()
	req.Status = targetStatus(t, role)
	stampMilestone(req, t, now)
	// Only the lender's decision carries a response message; any message on
	// other transitions is ignored.
	if responseMessage != "" && (t == models.TransitionAccept || t == models.TransitionDecline) {
		req.LenderResponseMessage = responseMessage
	}

	if err := s.requestRepo.Save(ctx, req); err != nil {
		observability.TransitionsTotal.WithLabelValues(string(t), saveOutcome(err)).Inc()
		return nil, err
	}

	observability.TransitionsTotal.WithLabelValues(string(t), "ok").Inc()
	s.emit(ctx, req, req.Counterparty(actingUserID), transitionMessage(req, t, role))

	return req, nil
}

// saveOutcome maps a persist failure to a metric label: "conflict" for a
// stale-version write, "error" for anything else.
func saveOutcome(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) && appErr.Code == "CONFLICT" {
		return "conflict"
	}
	return "error"
}

// overlapGuardEnabled defaults to on; deployments can switch the guard off to
// match the historical unguarded behavior.
func (s *BorrowService) overlapGuardEnabled(userID uint) bool {
	return s.flags.EnabledDefault(featureflags.OverlapGuard, userID, true)
}

// Named commands, one per transition, matching the REST surface.

func (s *BorrowService) AcceptRequest(ctx context.Context, requestID, actingUserID uint, responseMessage string) (*models.BorrowRequest, error) {
	return s.ApplyTransition(ctx, requestID, models.TransitionAccept, actingUserID, responseMessage)
}

func (s *BorrowService) DeclineRequest(ctx context.Context, requestID, actingUserID uint, responseMessage string) (*models.BorrowRequest, error) {
	return s.ApplyTransition(ctx, requestID, models.TransitionDecline, actingUserID, responseMessage)
}

func (s *BorrowService) CancelRequest(ctx context.Context, requestID, actingUserID uint) (*models.BorrowRequest, error) {
	return s.ApplyTransition(ctx, requestID, models.TransitionCancel, actingUserID, "")
}

func (s *BorrowService) ConfirmPickup(ctx context.Context, requestID, actingUserID uint) (*models.BorrowRequest, error) {
	return s.ApplyTransition(ctx, requestID, models.TransitionConfirmPickup, actingUserID, "")
}

func (s *BorrowService) ConfirmReturn(ctx context.Context, requestID, actingUserID uint) (*models.BorrowRequest, error) {
	return s.ApplyTransition(ctx, requestID, models.TransitionConfirmReturn, actingUserID, "")
}

func (s *BorrowService) CompleteRequest(ctx context.Context, requestID, actingUserID uint) (*models.BorrowRequest, error) {
	return s.ApplyTransition(ctx, requestID, models.TransitionComplete, actingUserID, "")
}

// GetRequest returns a request to one of its parties.
func (s *BorrowService) GetRequest(ctx context.Context, requestID, actingUserID uint) (*models.BorrowRequest, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if _, isParty := req.RoleOf(actingUserID); !isParty {
		return nil, &models.AppError{
			Code:    "FORBIDDEN",
			Message: "You are not a party to this request",
		}
	}
	return req, nil
}

// ListReceivedRequests returns requests where the user is the lender.
func (s *BorrowService) ListReceivedRequests(ctx context.Context, lenderID uint, status *models.RequestStatus) ([]models.BorrowRequest, error) {
	return s.requestRepo.ListByLender(ctx, lenderID, status)
}

// ListSentRequests returns requests where the user is the borrower.
func (s *BorrowService) ListSentRequests(ctx context.Context, borrowerID uint, status *models.RequestStatus) ([]models.BorrowRequest, error) {
	return s.requestRepo.ListByBorrower(ctx, borrowerID, status)
}

// GetTimeline rebuilds the display timeline for a request.
func (s *BorrowService) GetTimeline(ctx context.Context, requestID, actingUserID uint) ([]TimelineStep, error) {
	req, err := s.GetRequest(ctx, requestID, actingUserID)
	if err != nil {
		return nil, err
	}
	return BuildTimeline(req), nil
}

// emit hands a notification to the sink, best-effort.
func (s *BorrowService) emit(ctx context.Context, req *models.BorrowRequest, recipientID uint, message string) {
	if s.sink == nil {
		return
	}
	n := &models.Notification{
		RecipientID:      recipientID,
		Message:          message,
		RelatedRequestID: req.ID,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.sink.Notify(ctx, n); err != nil {
		observability.NotificationsEmitted.WithLabelValues("failed").Inc()
		middleware.Logger.WarnContext(ctx, "notification delivery failed",
			slog.Uint64("recipient_id", uint64(recipientID)),
			slog.Uint64("request_id", uint64(req.ID)),
			slog.String("error", err.Error()),
		)
		return
	}
	observability.NotificationsEmitted.WithLabelValues("ok").Inc()
}

func transitionMessage(req *models.BorrowRequest, t models.Transition, role models.ActorRole) string {
	item := itemTitle(req)
	switch t {
	case models.TransitionAccept:
		return fmt.Sprintf("%s accepted your request to borrow %q", partyName(req.Lender), item)
	case models.TransitionDecline:
		return fmt.Sprintf("%s declined your request to borrow %q", partyName(req.Lender), item)
	case models.TransitionCancel:
		if role == models.RoleLender {
			return fmt.Sprintf("%s cancelled the loan of %q", partyName(req.Lender), item)
		}
		return fmt.Sprintf("%s withdrew their request to borrow %q", partyName(req.Borrower), item)
	case models.TransitionConfirmPickup:
		return fmt.Sprintf("%s picked up %q", partyName(req.Borrower), item)
	case models.TransitionConfirmReturn:
		return fmt.Sprintf("%s returned %q", partyName(req.Borrower), item)
	case models.TransitionComplete:
		return fmt.Sprintf("%s confirmed %q is back home", partyName(req.Lender), item)
	}
	return fmt.Sprintf("Your borrow request for %q was updated", item)
}

func itemTitle(req *models.BorrowRequest) string {
	if req.Item != nil {
		return req.Item.Title
	}
	return "your item"
}

func partyName(u *models.User) string {
	if u != nil {
		return u.Username
	}
	return "Someone"
}

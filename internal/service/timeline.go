package service

import (
	"time"

	"shardit/internal/models"
)

// TimelineStepStatus is how a step renders on the tracking page.
type TimelineStepStatus string

const (
	StepCompleted TimelineStepStatus = "completed"
	StepCurrent   TimelineStepStatus = "current"
	StepUpcoming  TimelineStepStatus = "upcoming"
	StepDeclined  TimelineStepStatus = "declined"
	StepCancelled TimelineStepStatus = "cancelled"
)

// TimelineStep is one entry in a request's derived progress timeline.
type TimelineStep struct {
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Timestamp     *time.Time         `json:"timestamp"`
	DisplayStatus TimelineStepStatus `json:"display_status"`
}

type timelineEntry struct {
	status      models.RequestStatus
	title       string
	description string
}

var canonicalTimeline = []timelineEntry{
	{models.RequestStatusPending, "Request sent", "The borrower asked to borrow this item"},
	{models.RequestStatusAccepted, "Request accepted", "The lender approved the request"},
	{models.RequestStatusPickedUp, "Item picked up", "The borrower confirmed receiving the item"},
	{models.RequestStatusReturned, "Item returned", "The borrower confirmed returning the item"},
	{models.RequestStatusCompleted, "Loan completed", "The lender confirmed the item is back"},
}

// BuildTimeline derives the display timeline for a request from its stored
// status and milestone timestamps alone. It is a pure function: no I/O, and
// the request is not mutated.
func BuildTimeline(req *models.BorrowRequest) []TimelineStep {
	if req.Status == models.RequestStatusDeclined {
		return []TimelineStep{
			completedStep(canonicalTimeline[0], req),
			{
				Title:         "Request declined",
				Description:   "The lender declined the request",
				Timestamp:     req.ProcessedAt,
				DisplayStatus: StepDeclined,
			},
		}
	}

	if req.Status.Cancelled() {
		return cancelledTimeline(req)
	}

	current := statusIndex(req.Status)
	steps := make([]TimelineStep, 0, len(canonicalTimeline))
	for i, entry := range canonicalTimeline {
		step := TimelineStep{
			Title:       entry.title,
			Description: entry.description,
		}
		switch {
		case i < current:
			step.DisplayStatus = StepCompleted
			step.Timestamp = milestoneFor(entry.status, req)
		case i == current:
			step.DisplayStatus = StepCurrent
			step.Timestamp = milestoneFor(entry.status, req)
		default:
			step.DisplayStatus = StepUpcoming
		}
		steps = append(steps, step)
	}
	return steps
}

// cancelledTimeline shows the steps reached before cancellation as completed,
// then a single cancelled step attributing whichever party called it off.
func cancelledTimeline(req *models.BorrowRequest) []TimelineStep {
	// How far the request got before it was cancelled: PENDING only, or
	// through ACCEPTED if the lender had already approved it.
	reached := 1
	if req.ProcessedAt != nil {
		reached = 2
	}

	steps := make([]TimelineStep, 0, reached+1)
	for _, entry := range canonicalTimeline[:reached] {
		steps = append(steps, completedStep(entry, req))
	}

	by := "the borrower"
	if req.Status == models.RequestStatusCancelledLender {
		by = "the lender"
	}
	steps = append(steps, TimelineStep{
		Title:         "Request cancelled",
		Description:   "Cancelled by " + by,
		DisplayStatus: StepCancelled,
	})
	return steps
}

func completedStep(entry timelineEntry, req *models.BorrowRequest) TimelineStep {
	return TimelineStep{
		Title:         entry.title,
		Description:   entry.description,
		Timestamp:     milestoneFor(entry.status, req),
		DisplayStatus: StepCompleted,
	}
}

func statusIndex(s models.RequestStatus) int {
	for i, entry := range canonicalTimeline {
		if entry.status == s {
			return i
		}
	}
	return 0
}

// milestoneFor maps a canonical step to the timestamp stamped by the
// transition that reached it.
func milestoneFor(s models.RequestStatus, req *models.BorrowRequest) *time.Time {
	switch s {
	case models.RequestStatusPending:
		t := req.CreatedAt
		return &t
	case models.RequestStatusAccepted:
		return req.ProcessedAt
	case models.RequestStatusPickedUp:
		return req.PickupConfirmedAt
	case models.RequestStatusReturned:
		return req.ReturnInitiatedAt
	case models.RequestStatusCompleted:
		return req.CompletedAt
	}
	return nil
}

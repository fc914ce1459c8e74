package server

import (
	"time"

	"shardit/internal/models"
	"shardit/internal/service"

	"github.com/gofiber/fiber/v2"
)

// CreateBorrowRequest handles POST /api/requests
func (s *Server) CreateBorrowRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		ItemID    uint   `json:"item_id"`
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
		Message   string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	start, err := parseDate(req.StartDate)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid start_date, expected YYYY-MM-DD"))
	}
	end, err := parseDate(req.EndDate)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid end_date, expected YYYY-MM-DD"))
	}

	created, err := s.borrowService.CreateRequest(c.UserContext(), service.CreateRequestInput{
		BorrowerID: userID,
		ItemID:     req.ItemID,
		StartDate:  start,
		EndDate:    end,
		Message:    req.Message,
	})
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	s.publishRequestEvent(created, EventRequestCreated)

	return c.Status(fiber.StatusCreated).JSON(created)
}

// transitionHandler builds a Fiber handler applying one lifecycle transition.
// The request body may carry an optional lender response message.
func (s *Server) transitionHandler(t models.Transition, event string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)
		id, err := s.parseID(c, "id")
		if err != nil {
			return nil
		}

		var req struct {
			Message string `json:"message"`
		}
		// A missing or empty body is fine for transitions without a message.
		if len(c.Body()) > 0 {
			if err := c.BodyParser(&req); err != nil {
				return models.RespondWithError(c, fiber.StatusBadRequest,
					models.NewValidationError("Invalid request body"))
			}
		}

		updated, err := s.borrowService.ApplyTransition(c.UserContext(), id, t, userID, req.Message)
		if err != nil {
			return models.RespondWithAppError(c, err)
		}

		s.publishRequestEvent(updated, event)

		return c.JSON(updated)
	}
}

// AcceptRequest handles POST /api/requests/:id/accept
func (s *Server) AcceptRequest(c *fiber.Ctx) error {
	return s.transitionHandler(models.TransitionAccept, EventRequestAccepted)(c)
}

// DeclineRequest handles POST /api/requests/:id/decline
func (s *Server) DeclineRequest(c *fiber.Ctx) error {
	return s.transitionHandler(models.TransitionDecline, EventRequestDeclined)(c)
}

// CancelRequest handles POST /api/requests/:id/cancel
func (s *Server) CancelRequest(c *fiber.Ctx) error {
	return s.transitionHandler(models.TransitionCancel, EventRequestCancelled)(c)
}

// ConfirmPickup handles POST /api/requests/:id/pickup
func (s *Server) ConfirmPickup(c *fiber.Ctx) error {
	return s.transitionHandler(models.TransitionConfirmPickup, EventRequestPickedUp)(c)
}

// ConfirmReturn handles POST /api/requests/:id/return
func (s *Server) ConfirmReturn(c *fiber.Ctx) error {
	return s.transitionHandler(models.TransitionConfirmReturn, EventRequestReturned)(c)
}

// CompleteRequest handles POST /api/requests/:id/complete
func (s *Server) CompleteRequest(c *fiber.Ctx) error {
	return s.transitionHandler(models.TransitionComplete, EventRequestCompleted)(c)
}

// GetBorrowRequest handles GET /api/requests/:id
func (s *Server) GetBorrowRequest(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	req, err := s.borrowService.GetRequest(c.UserContext(), id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(req)
}

// GetReceivedRequests handles GET /api/requests/received
func (s *Server) GetReceivedRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status, err := statusFilter(c)
	if err != nil {
		return nil
	}

	requests, err := s.borrowService.ListReceivedRequests(c.UserContext(), userID, status)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetSentRequests handles GET /api/requests/sent
func (s *Server) GetSentRequests(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	status, err := statusFilter(c)
	if err != nil {
		return nil
	}

	requests, err := s.borrowService.ListSentRequests(c.UserContext(), userID, status)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"requests": requests})
}

// GetRequestTimeline handles GET /api/requests/:id/timeline
func (s *Server) GetRequestTimeline(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	timeline, err := s.borrowService.GetTimeline(c.UserContext(), id, userID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"timeline": timeline})
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

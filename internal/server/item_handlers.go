package server

import (
	"shardit/internal/cache"
	"shardit/internal/models"
	"shardit/internal/repository"
	"shardit/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetItems handles GET /api/items
func (s *Server) GetItems(c *fiber.Ctx) error {
	page := parsePagination(c, 20)

	filter := repository.ItemFilter{
		Community: c.Query("community"),
		Category:  c.Query("category"),
		Search:    c.Query("search"),
		OwnerID:   uint(c.QueryInt("owner_id", 0)),
		Limit:     page.Limit,
		Offset:    page.Offset,
	}

	items, err := s.itemRepo.List(c.Context(), filter)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"items":  items,
		"limit":  page.Limit,
		"offset": page.Offset,
	})
}

// GetItem handles GET /api/items/:id with a Redis read-through cache.
func (s *Server) GetItem(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if item := cache.GetItem(c.Context(), id); item != nil {
		return c.JSON(item)
	}

	item, err := s.itemRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	cache.SetItem(c.Context(), item)

	return c.JSON(item)
}

// CreateItem handles POST /api/items
func (s *Server) CreateItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Community   string `json:"community"`
		ImageURL    string `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title == "" {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Title is required"))
	}
	if err := validation.ValidateCommunitySlug(req.Community); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError(err.Error()))
	}

	item := &models.Item{
		OwnerID:     userID,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Community:   req.Community,
		ImageURL:    req.ImageURL,
		Available:   true,
	}
	if err := s.itemRepo.Create(c.Context(), item); err != nil {
		return models.RespondWithAppError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(item)
}

// UpdateItem handles PUT /api/items/:id
func (s *Server) UpdateItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.itemRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if item.OwnerID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only edit your own items"))
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Category    *string `json:"category"`
		ImageURL    *string `json:"image_url"`
		Available   *bool   `json:"available"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if req.Title != nil {
		if *req.Title == "" {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Title cannot be empty"))
		}
		item.Title = *req.Title
	}
	if req.Description != nil {
		item.Description = *req.Description
	}
	if req.Category != nil {
		item.Category = *req.Category
	}
	if req.ImageURL != nil {
		item.ImageURL = *req.ImageURL
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := s.itemRepo.Update(c.Context(), item); err != nil {
		return models.RespondWithAppError(c, err)
	}
	cache.InvalidateItem(c.Context(), item.ID)

	return c.JSON(item)
}

// DeleteItem handles DELETE /api/items/:id
func (s *Server) DeleteItem(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	item, err := s.itemRepo.GetByID(c.Context(), id)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	if item.OwnerID != userID {
		return models.RespondWithError(c, fiber.StatusForbidden,
			models.NewUnauthorizedError("You can only delete your own items"))
	}

	if err := s.itemRepo.Delete(c.Context(), id); err != nil {
		return models.RespondWithAppError(c, err)
	}
	cache.InvalidateItem(c.Context(), id)

	return c.SendStatus(fiber.StatusNoContent)
}

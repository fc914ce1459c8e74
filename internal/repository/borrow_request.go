package repository

import (
	"context"
	"errors"

	"shardit/internal/models"

	"gorm.io/gorm"
)

// BorrowRequestRepository is the entity store for borrow requests: the
// authoritative copy of every request, queryable by id and by either party.
type BorrowRequestRepository interface {
	Create(ctx context.Context, req *models.BorrowRequest) error
	GetByID(ctx context.Context, id uint) (*models.BorrowRequest, error)
	// Save persists lifecycle mutations with an optimistic version check.
	// A save against a stale version returns CONFLICT and writes nothing.
	Save(ctx context.Context, req *models.BorrowRequest) error
	ListByLender(ctx context.Context, lenderID uint, status *models.RequestStatus) ([]models.BorrowRequest, error)
	ListByBorrower(ctx context.Context, borrowerID uint, status *models.RequestStatus) ([]models.BorrowRequest, error)
	// CountOverlappingActive counts requests on the item, other than excludeID,
	// that are ACCEPTED or PICKED_UP with a date window intersecting [start, end].
	CountOverlappingActive(ctx context.Context, req *models.BorrowRequest) (int64, error)
}

type borrowRequestRepository struct {
	db *gorm.DB
}

// NewBorrowRequestRepository creates a new borrow request repository
func NewBorrowRequestRepository(db *gorm.DB) BorrowRequestRepository {
	return &borrowRequestRepository{db: db}
}

func (r *borrowRequestRepository) Create(ctx context.Context, req *models.BorrowRequest) error {
	if err := r.db.WithContext(ctx).Create(req).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *borrowRequestRepository) GetByID(ctx context.Context, id uint) (*models.BorrowRequest, error) {
	var req models.BorrowRequest
	if err := r.db.WithContext(ctx).
		Preload("Item").Preload("Borrower").Preload("Lender").
		First(&req, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Borrow request", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &req, nil
}

func (r *borrowRequestRepository) Save(ctx context.Context, req *models.BorrowRequest) error {
	prev := req.Version

	result := r.db.WithContext(ctx).Model(&models.BorrowRequest{}).
		Where("id = ? AND version = ?", req.ID, prev).
		Updates(map[string]interface{}{
			"status":                  req.Status,
			"lender_response_message": req.LenderResponseMessage,
			"processed_at":            req.ProcessedAt,
			"pickup_confirmed_at":     req.PickupConfirmedAt,
			"return_initiated_at":     req.ReturnInitiatedAt,
			"completed_at":            req.CompletedAt,
			"version":                 prev + 1,
		})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewConflictError("borrow request was modified concurrently")
	}

	req.Version = prev + 1
	return nil
}

func (r *borrowRequestRepository) ListByLender(ctx context.Context, lenderID uint, status *models.RequestStatus) ([]models.BorrowRequest, error) {
	return r.list(ctx, "lender_id = ?", lenderID, status)
}

func (r *borrowRequestRepository) ListByBorrower(ctx context.Context, borrowerID uint, status *models.RequestStatus) ([]models.BorrowRequest, error) {
	return r.list(ctx, "borrower_id = ?", borrowerID, status)
}

func (r *borrowRequestRepository) list(ctx context.Context, cond string, userID uint, status *models.RequestStatus) ([]models.BorrowRequest, error) {
	query := r.db.WithContext(ctx).
		Preload("Item").Preload("Borrower").Preload("Lender").
		Where(cond, userID)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var reqs []models.BorrowRequest
	if err := query.Order("created_at DESC").Find(&reqs).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return reqs, nil
}

func (r *borrowRequestRepository) CountOverlappingActive(ctx context.Context, req *models.BorrowRequest) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BorrowRequest{}).
		Where("item_id = ? AND id <> ?", req.ItemID, req.ID).
		Where("status IN ?", []models.RequestStatus{models.RequestStatusAccepted, models.RequestStatusPickedUp}).
		Where("start_date <= ? AND end_date >= ?", req.EndDate, req.StartDate).
		Count(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"shardit/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Item{}, &models.BorrowRequest{}, &models.Notification{}))
	return db
}

func seedParties(t *testing.T, db *gorm.DB) (borrower, lender models.User, item models.Item) {
	t.Helper()
	borrower = models.User{Username: "ada", Email: "ada@example.com", Password: "x", Community: "riverside"}
	lender = models.User{Username: "grace", Email: "grace@example.com", Password: "x", Community: "riverside"}
	require.NoError(t, db.Create(&borrower).Error)
	require.NoError(t, db.Create(&lender).Error)

	item = models.Item{OwnerID: lender.ID, Title: "Ladder", Community: "riverside", Available: true}
	require.NoError(t, db.Create(&item).Error)
	return
}

func newPendingRequest(borrower, lender models.User, item models.Item) *models.BorrowRequest {
	start := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	return &models.BorrowRequest{
		ItemID:          item.ID,
		BorrowerID:      borrower.ID,
		LenderID:        lender.ID,
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, 2),
		Status:          models.RequestStatusPending,
		BorrowerMessage: "May I borrow this for the weekend?",
		Version:         1,
	}
}

func TestBorrowRequestRepository_CreateAndGet(t *testing.T) {
	db := openTestDB(t)
	repo := NewBorrowRequestRepository(db)
	ctx := context.Background()

	borrower, lender, item := seedParties(t, db)
	req := newPendingRequest(borrower, lender, item)
	require.NoError(t, repo.Create(ctx, req))
	require.NotZero(t, req.ID)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusPending, got.Status)
	assert.Equal(t, borrower.ID, got.BorrowerID)
	require.NotNil(t, got.Item)
	assert.Equal(t, "Ladder", got.Item.Title)

	_, err = repo.GetByID(ctx, 9999)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "NOT_FOUND", appErr.Code)
}

func TestBorrowRequestRepository_SaveOptimistic(t *testing.T) {
	db := openTestDB(t)
	repo := NewBorrowRequestRepository(db)
	ctx := context.Background()

	borrower, lender, item := seedParties(t, db)
	req := newPendingRequest(borrower, lender, item)
	require.NoError(t, repo.Create(ctx, req))

	now := time.Now().UTC()
	req.Status = models.RequestStatusAccepted
	req.ProcessedAt = &now
	require.NoError(t, repo.Save(ctx, req))
	assert.Equal(t, uint(2), req.Version)

	// A writer still holding version 1 must be rejected.
	stale := *req
	stale.Version = 1
	stale.Status = models.RequestStatusDeclined
	err := repo.Save(ctx, &stale)
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "CONFLICT", appErr.Code)

	got, err := repo.GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestStatusAccepted, got.Status)
	require.NotNil(t, got.ProcessedAt)
}

func TestBorrowRequestRepository_ListByParty(t *testing.T) {
	db := openTestDB(t)
	repo := NewBorrowRequestRepository(db)
	ctx := context.Background()

	borrower, lender, item := seedParties(t, db)

	first := newPendingRequest(borrower, lender, item)
	require.NoError(t, repo.Create(ctx, first))

	second := newPendingRequest(borrower, lender, item)
	second.Status = models.RequestStatusAccepted
	require.NoError(t, repo.Create(ctx, second))

	all, err := repo.ListByLender(ctx, lender.ID, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	accepted := models.RequestStatusAccepted
	filtered, err := repo.ListByLender(ctx, lender.ID, &accepted)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, second.ID, filtered[0].ID)

	mine, err := repo.ListByBorrower(ctx, borrower.ID, nil)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	none, err := repo.ListByBorrower(ctx, lender.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestBorrowRequestRepository_CountOverlappingActive(t *testing.T) {
	db := openTestDB(t)
	repo := NewBorrowRequestRepository(db)
	ctx := context.Background()

	borrower, lender, item := seedParties(t, db)

	accepted := newPendingRequest(borrower, lender, item)
	accepted.Status = models.RequestStatusAccepted
	require.NoError(t, repo.Create(ctx, accepted))

	// Same window, different request: overlaps.
	candidate := newPendingRequest(borrower, lender, item)
	require.NoError(t, repo.Create(ctx, candidate))

	count, err := repo.CountOverlappingActive(ctx, candidate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Disjoint window: no overlap.
	candidate.StartDate = accepted.EndDate.AddDate(0, 0, 1)
	candidate.EndDate = accepted.EndDate.AddDate(0, 0, 3)
	count, err = repo.CountOverlappingActive(ctx, candidate)
	require.NoError(t, err)
	assert.Zero(t, count)

	// A request never conflicts with itself.
	count, err = repo.CountOverlappingActive(ctx, accepted)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestBorrowRequestRepository_SaveSQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	repo := NewBorrowRequestRepository(db)

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE "borrow_requests" SET`)).
		WithArgs(
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
			sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := &models.BorrowRequest{ID: 5, Status: models.RequestStatusAccepted, Version: 3}
	require.NoError(t, repo.Save(context.Background(), req))
	assert.Equal(t, uint(4), req.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Package seed provides helpers to create demo data for the application
// database. These helpers are intended for development and testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"shardit/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var itemCatalog = []struct {
	Title    string
	Category string
}{
	{"Extension ladder", "tools"},
	{"Cordless drill", "tools"},
	{"Pressure washer", "tools"},
	{"Stand mixer", "kitchen"},
	{"Raclette grill", "kitchen"},
	{"Camping tent (4p)", "outdoors"},
	{"Two-person kayak", "outdoors"},
	{"Folding tables (x2)", "events"},
	{"Projector", "electronics"},
	{"PA speaker", "electronics"},
	{"Sewing machine", "crafts"},
	{"Carpet cleaner", "cleaning"},
}

var communities = []string{
	"maple-street", "riverside", "old-town", "hilltop",
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db *gorm.DB
	r  *rand.Rand

	// bcrypt of the shared demo password, computed once
	passwordHash string
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB) *Factory {
	gofakeit.Seed(time.Now().UnixNano())
	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	return &Factory{
		db:           db,
		r:            rand.New(rand.NewSource(time.Now().UnixNano())),
		passwordHash: string(hash),
	}
}

// CreateUser constructs and persists a sample user. Optional override
// functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:  gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:     gofakeit.Email(),
		Password:  f.passwordHash,
		Community: communities[f.r.Intn(len(communities))],
		Bio:       gofakeit.Sentence(10),
		Avatar:    fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// CreateItem constructs and persists an item owned by the given user.
func (f *Factory) CreateItem(owner *models.User, overrides ...func(*models.Item)) (*models.Item, error) {
	entry := itemCatalog[f.r.Intn(len(itemCatalog))]
	item := &models.Item{
		OwnerID:     owner.ID,
		Title:       entry.Title,
		Description: gofakeit.Paragraph(1, 2, 8, " "),
		Category:    entry.Category,
		Community:   owner.Community,
		ImageURL:    fmt.Sprintf("https://picsum.photos/seed/%s/600/400", gofakeit.UUID()),
		Available:   true,
	}
	for _, override := range overrides {
		override(item)
	}
	if err := f.db.Create(item).Error; err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}
	return item, nil
}

// CreateRequest constructs and persists a borrow request from borrower for
// item, advanced to the given lifecycle status with consistent milestone
// timestamps.
func (f *Factory) CreateRequest(borrower *models.User, item *models.Item, status models.RequestStatus) (*models.BorrowRequest, error) {
	start := time.Now().AddDate(0, 0, f.r.Intn(14)+1)
	req := &models.BorrowRequest{
		ItemID:          item.ID,
		BorrowerID:      borrower.ID,
		LenderID:        item.OwnerID,
		StartDate:       start,
		EndDate:         start.AddDate(0, 0, f.r.Intn(5)+1),
		Status:          models.RequestStatusPending,
		BorrowerMessage: gofakeit.Sentence(8),
		Version:         1,
	}
	f.advance(req, status)
	if err := f.db.Create(req).Error; err != nil {
		return nil, fmt.Errorf("create borrow request: %w", err)
	}
	return req, nil
}

// advance stamps the milestones a request would have accumulated on its way
// to the target status. Timestamps walk backwards from now so ordering holds.
func (f *Factory) advance(req *models.BorrowRequest, target models.RequestStatus) {
	req.Status = target

	stampsFor := map[models.RequestStatus]int{
		models.RequestStatusPending:           0,
		models.RequestStatusDeclined:          1,
		models.RequestStatusCancelledBorrower: 0,
		models.RequestStatusAccepted:          1,
		models.RequestStatusCancelledLender:   1,
		models.RequestStatusPickedUp:          2,
		models.RequestStatusReturned:          3,
		models.RequestStatusCompleted:         4,
	}
	n := stampsFor[target]
	if n == 0 {
		return
	}

	base := time.Now().Add(-time.Duration(n) * 24 * time.Hour)
	stamp := func(i int) *time.Time {
		t := base.Add(time.Duration(i) * 24 * time.Hour)
		return &t
	}
	if n >= 1 {
		req.ProcessedAt = stamp(0)
	}
	if n >= 2 {
		req.PickupConfirmedAt = stamp(1)
	}
	if n >= 3 {
		req.ReturnInitiatedAt = stamp(2)
	}
	if n >= 4 {
		req.CompletedAt = stamp(3)
	}
	if target == models.RequestStatusDeclined {
		req.LenderResponseMessage = "Sorry, not available that week."
	}
}

// CreateNotification persists a stored notification about the given request.
func (f *Factory) CreateNotification(recipientID uint, req *models.BorrowRequest, message string) (*models.Notification, error) {
	n := &models.Notification{
		RecipientID:      recipientID,
		Message:          message,
		RelatedRequestID: req.ID,
		Read:             f.r.Intn(3) == 0,
	}
	if err := f.db.Create(n).Error; err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return n, nil
}

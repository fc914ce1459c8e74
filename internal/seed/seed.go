package seed

import (
	"fmt"
	"log"

	"shardit/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder.
type Options struct {
	NumUsers     int
	ItemsPerUser int
	NumRequests  int
	ShouldClean  bool
}

// Seeder populates the database with demo users, items, and borrow requests
// in a realistic mix of lifecycle states.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder bound to the provided Gorm DB.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db, factory: NewFactory(db)}
}

// ClearAll deletes all seeded data. Order matters: requests and notifications
// reference items and users.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.Notification{},
		&models.BorrowRequest{},
		&models.Item{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Unscoped().Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// statusMix is the distribution of lifecycle states for seeded requests.
var statusMix = []models.RequestStatus{
	models.RequestStatusPending,
	models.RequestStatusPending,
	models.RequestStatusAccepted,
	models.RequestStatusAccepted,
	models.RequestStatusPickedUp,
	models.RequestStatusReturned,
	models.RequestStatusCompleted,
	models.RequestStatusCompleted,
	models.RequestStatusDeclined,
	models.RequestStatusCancelledBorrower,
	models.RequestStatusCancelledLender,
}

// Run populates the database according to opts.
func (s *Seeder) Run(opts Options) error {
	if opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return err
		}
	}

	users := make([]*models.User, 0, opts.NumUsers)
	items := make([]*models.Item, 0, opts.NumUsers*opts.ItemsPerUser)
	for i := 0; i < opts.NumUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return err
		}
		users = append(users, user)

		for j := 0; j < opts.ItemsPerUser; j++ {
			item, err := s.factory.CreateItem(user)
			if err != nil {
				return err
			}
			items = append(items, item)
		}
	}
	log.Printf("seeded %d users with %d items", len(users), len(items))

	if len(users) < 2 || len(items) == 0 {
		return nil
	}

	requests := 0
	for i := 0; i < opts.NumRequests; i++ {
		item := items[s.factory.r.Intn(len(items))]
		borrower := users[s.factory.r.Intn(len(users))]
		if borrower.ID == item.OwnerID {
			continue
		}
		status := statusMix[i%len(statusMix)]
		req, err := s.factory.CreateRequest(borrower, item, status)
		if err != nil {
			return err
		}
		requests++

		if _, err := s.factory.CreateNotification(req.LenderID, req,
			fmt.Sprintf("%s wants to borrow your item", borrower.Username)); err != nil {
			return err
		}
		if status != models.RequestStatusPending {
			if _, err := s.factory.CreateNotification(req.BorrowerID, req,
				fmt.Sprintf("Your borrow request is now %s", status)); err != nil {
				return err
			}
		}
	}
	log.Printf("seeded %d borrow requests", requests)
	return nil
}

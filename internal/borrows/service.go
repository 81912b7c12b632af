// Package borrows tracks book checkouts and returns.
package borrows

import (
	"context"
	"time"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
)

type Service struct {
	borrows *records.Repository
}

func NewService(st *store.Client) *Service {
	return &Service{borrows: records.NewRepository(st, records.BookBorrows)}
}

func (s *Service) ListBorrows(ctx context.Context) ([]records.Record, error) {
	return s.borrows.List(ctx, nil)
}

// ListBorrowsByUser returns the checkouts belonging to one account.
func (s *Service) ListBorrowsByUser(ctx context.Context, userID string) ([]records.Record, error) {
	return s.borrows.List(ctx, []store.Filter{s.borrows.Eq("userId", userID)})
}

func (s *Service) CreateBorrow(ctx context.Context, borrow records.Record) (records.Record, error) {
	return s.borrows.Create(ctx, borrow)
}

// UpdateStatus moves a checkout to the given status. returnedAt, when set,
// records the return timestamp alongside.
func (s *Service) UpdateStatus(ctx context.Context, id, status string, returnedAt *time.Time) (records.Record, error) {
	changes := records.Record{"status": status}
	if returnedAt != nil {
		changes["returnDate"] = returnedAt.UTC()
	}
	return s.borrows.Update(ctx, id, changes)
}

func (s *Service) DeleteBorrow(ctx context.Context, id string) error {
	return s.borrows.Delete(ctx, id)
}

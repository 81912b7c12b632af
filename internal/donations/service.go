// Package donations records monetary donations made to the library.
package donations

import (
	"context"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
)

type Service struct {
	donations *records.Repository
}

func NewService(st *store.Client) *Service {
	return &Service{donations: records.NewRepository(st, records.Donations)}
}

func (s *Service) ListDonations(ctx context.Context) ([]records.Record, error) {
	return s.donations.List(ctx, nil)
}

func (s *Service) CreateDonation(ctx context.Context, donation records.Record) (records.Record, error) {
	return s.donations.Create(ctx, donation)
}

func (s *Service) DeleteDonation(ctx context.Context, id string) error {
	return s.donations.Delete(ctx, id)
}

// Package messages stores contact-form submissions and their seen flag.
package messages

import (
	"context"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
)

type Service struct {
	messages *records.Repository
}

func NewService(st *store.Client) *Service {
	return &Service{messages: records.NewRepository(st, records.ContactMessages)}
}

func (s *Service) ListMessages(ctx context.Context) ([]records.Record, error) {
	return s.messages.List(ctx, nil)
}

func (s *Service) GetMessage(ctx context.Context, id string) (records.Record, bool, error) {
	return s.messages.Get(ctx, id)
}

func (s *Service) CreateMessage(ctx context.Context, message records.Record) (records.Record, error) {
	return s.messages.Create(ctx, message)
}

// SetSeen marks the message read or unread.
func (s *Service) SetSeen(ctx context.Context, id string, seen bool) (records.Record, error) {
	return s.messages.Update(ctx, id, records.Record{"isSeen": seen})
}

func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	return s.messages.Delete(ctx, id)
}

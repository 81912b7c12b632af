// Package catalog manages the circulating book catalog, study notes, and
// the digitized rare-book collection.
package catalog

import (
	"context"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

type Service struct {
	books     *records.Repository
	notes     *records.Repository
	rareBooks *records.Repository
}

func NewService(st *store.Client) *Service {
	return &Service{
		books:     records.NewRepository(st, records.Books),
		notes:     records.NewRepository(st, records.Notes),
		rareBooks: records.NewRepository(st, records.RareBooks),
	}
}

// ListBooks returns the catalog, newest first.
func (s *Service) ListBooks(ctx context.Context) ([]records.Record, error) {
	return s.books.List(ctx, nil, s.books.OrderBy("createdAt", true))
}

func (s *Service) GetBook(ctx context.Context, id string) (records.Record, bool, error) {
	return s.books.Get(ctx, id)
}

func (s *Service) CreateBook(ctx context.Context, book records.Record) (records.Record, error) {
	return s.books.Create(ctx, book)
}

func (s *Service) UpdateBook(ctx context.Context, id string, changes records.Record) (records.Record, error) {
	return s.books.Update(ctx, id, changes)
}

func (s *Service) DeleteBook(ctx context.Context, id string) error {
	return s.books.Delete(ctx, id)
}

// ListNotes returns every note regardless of status.
func (s *Service) ListNotes(ctx context.Context) ([]records.Record, error) {
	return s.notes.List(ctx, nil)
}

// ListActiveNotes returns notes visible to students.
func (s *Service) ListActiveNotes(ctx context.Context) ([]records.Record, error) {
	return s.notes.List(ctx, []store.Filter{s.notes.Eq("status", StatusActive)})
}

// ListNotesByClassAndSubject returns the active notes for one class and
// subject.
func (s *Service) ListNotesByClassAndSubject(ctx context.Context, class, subject string) ([]records.Record, error) {
	return s.notes.List(ctx, []store.Filter{
		s.notes.Eq("class", class),
		s.notes.Eq("subject", subject),
		s.notes.Eq("status", StatusActive),
	})
}

func (s *Service) GetNote(ctx context.Context, id string) (records.Record, bool, error) {
	return s.notes.Get(ctx, id)
}

func (s *Service) CreateNote(ctx context.Context, note records.Record) (records.Record, error) {
	return s.notes.Create(ctx, note)
}

func (s *Service) UpdateNote(ctx context.Context, id string, changes records.Record) (records.Record, error) {
	return s.notes.Update(ctx, id, changes)
}

func (s *Service) DeleteNote(ctx context.Context, id string) error {
	return s.notes.Delete(ctx, id)
}

// ToggleNoteStatus flips a note between active and inactive, stamping
// updated_at like any other note edit.
func (s *Service) ToggleNoteStatus(ctx context.Context, id string) (records.Record, bool, error) {
	return s.notes.ToggleStatus(ctx, id, "status", StatusActive, StatusInactive, true)
}

func (s *Service) ListRareBooks(ctx context.Context) ([]records.Record, error) {
	return s.rareBooks.List(ctx, nil)
}

func (s *Service) GetRareBook(ctx context.Context, id string) (records.Record, bool, error) {
	return s.rareBooks.Get(ctx, id)
}

func (s *Service) CreateRareBook(ctx context.Context, book records.Record) (records.Record, error) {
	return s.rareBooks.Create(ctx, book)
}

func (s *Service) DeleteRareBook(ctx context.Context, id string) error {
	return s.rareBooks.Delete(ctx, id)
}

// ToggleRareBookStatus flips a rare book between active and inactive.
func (s *Service) ToggleRareBookStatus(ctx context.Context, id string) (records.Record, bool, error) {
	return s.rareBooks.ToggleStatus(ctx, id, "status", StatusActive, StatusInactive, false)
}

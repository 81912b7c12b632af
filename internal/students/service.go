// Package students exposes the student roster materialized from approved
// card applications, plus the separately maintained non-student roster
// (staff, faculty, external members).
package students

import (
	"context"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
)

type Service struct {
	students    *records.Repository
	nonStudents *records.Repository
}

func NewService(st *store.Client) *Service {
	return &Service{
		students:    records.NewRepository(st, records.Students),
		nonStudents: records.NewRepository(st, records.NonStudents),
	}
}

// ListStudents returns the full student roster.
func (s *Service) ListStudents(ctx context.Context) ([]records.Record, error) {
	return s.students.List(ctx, nil)
}

// GetStudentByCard fetches the student holding the given card.
func (s *Service) GetStudentByCard(ctx context.Context, cardID string) (records.Record, bool, error) {
	return s.students.GetBy(ctx, s.students.Eq("cardId", cardID))
}

// CreateStudent inserts a roster entry directly, outside the approval flow.
func (s *Service) CreateStudent(ctx context.Context, student records.Record) (records.Record, error) {
	return s.students.Create(ctx, student)
}

// ListNonStudents returns the non-student roster.
func (s *Service) ListNonStudents(ctx context.Context) ([]records.Record, error) {
	return s.nonStudents.List(ctx, nil)
}

// CreateNonStudent inserts a non-student roster entry.
func (s *Service) CreateNonStudent(ctx context.Context, member records.Record) (records.Record, error) {
	return s.nonStudents.Create(ctx, member)
}

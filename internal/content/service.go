// Package content manages the library's public-facing content: events,
// notifications, and blog posts.
package content

import (
	"context"

	"github.com/gcmn-library/backend/internal/records"
	"github.com/gcmn-library/backend/internal/store"
)

const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusPublished = "published"
)

type Service struct {
	events        *records.Repository
	notifications *records.Repository
	blogPosts     *records.Repository
}

func NewService(st *store.Client) *Service {
	return &Service{
		events:        records.NewRepository(st, records.Events),
		notifications: records.NewRepository(st, records.Notifications),
		blogPosts:     records.NewRepository(st, records.BlogPosts),
	}
}

func (s *Service) ListEvents(ctx context.Context) ([]records.Record, error) {
	return s.events.List(ctx, nil)
}

func (s *Service) CreateEvent(ctx context.Context, event records.Record) (records.Record, error) {
	return s.events.Create(ctx, event)
}

func (s *Service) UpdateEvent(ctx context.Context, id string, changes records.Record) (records.Record, error) {
	return s.events.Update(ctx, id, changes)
}

func (s *Service) DeleteEvent(ctx context.Context, id string) error {
	return s.events.Delete(ctx, id)
}

func (s *Service) ListNotifications(ctx context.Context) ([]records.Record, error) {
	return s.notifications.List(ctx, nil)
}

// ListActiveNotifications returns active notifications, pinned ones first,
// newest first within each group.
func (s *Service) ListActiveNotifications(ctx context.Context) ([]records.Record, error) {
	return s.notifications.List(ctx,
		[]store.Filter{s.notifications.Eq("status", StatusActive)},
		s.notifications.OrderBy("pin", true),
		s.notifications.OrderBy("createdAt", true),
	)
}

func (s *Service) CreateNotification(ctx context.Context, notification records.Record) (records.Record, error) {
	return s.notifications.Create(ctx, notification)
}

func (s *Service) UpdateNotification(ctx context.Context, id string, changes records.Record) (records.Record, error) {
	return s.notifications.Update(ctx, id, changes)
}

func (s *Service) DeleteNotification(ctx context.Context, id string) error {
	return s.notifications.Delete(ctx, id)
}

func (s *Service) ToggleNotificationStatus(ctx context.Context, id string) (records.Record, bool, error) {
	return s.notifications.ToggleStatus(ctx, id, "status", StatusActive, StatusInactive, false)
}

func (s *Service) ToggleNotificationPin(ctx context.Context, id string) (records.Record, bool, error) {
	return s.notifications.ToggleFlag(ctx, id, "pin")
}

// ListBlogPosts returns published posts, pinned first, newest first.
// includeDrafts lifts the status filter for the admin view.
func (s *Service) ListBlogPosts(ctx context.Context, includeDrafts bool) ([]records.Record, error) {
	var filters []store.Filter
	if !includeDrafts {
		filters = append(filters, s.blogPosts.Eq("status", StatusPublished))
	}
	return s.blogPosts.List(ctx, filters,
		s.blogPosts.OrderBy("isPinned", true),
		s.blogPosts.OrderBy("createdAt", true),
	)
}

// GetBlogPostBySlug fetches one post by its URL slug.
func (s *Service) GetBlogPostBySlug(ctx context.Context, slug string) (records.Record, bool, error) {
	return s.blogPosts.GetBy(ctx, s.blogPosts.Eq("slug", slug))
}

func (s *Service) GetBlogPost(ctx context.Context, id string) (records.Record, bool, error) {
	return s.blogPosts.Get(ctx, id)
}

func (s *Service) CreateBlogPost(ctx context.Context, post records.Record) (records.Record, error) {
	return s.blogPosts.Create(ctx, post)
}

func (s *Service) UpdateBlogPost(ctx context.Context, id string, changes records.Record) (records.Record, error) {
	return s.blogPosts.Update(ctx, id, changes)
}

func (s *Service) DeleteBlogPost(ctx context.Context, id string) error {
	return s.blogPosts.Delete(ctx, id)
}

func (s *Service) ToggleBlogPostPin(ctx context.Context, id string) (records.Record, bool, error) {
	return s.blogPosts.ToggleFlag(ctx, id, "isPinned")
}

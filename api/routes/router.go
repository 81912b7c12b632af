package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gcmn-library/backend/api/handlers"
	"github.com/gcmn-library/backend/api/middleware"
	"github.com/gcmn-library/backend/internal/borrows"
	"github.com/gcmn-library/backend/internal/cards"
	"github.com/gcmn-library/backend/internal/catalog"
	"github.com/gcmn-library/backend/internal/content"
	"github.com/gcmn-library/backend/internal/donations"
	"github.com/gcmn-library/backend/internal/messages"
	"github.com/gcmn-library/backend/internal/students"
	"github.com/gcmn-library/backend/internal/users"
	"github.com/gcmn-library/backend/pkg/config"
	"github.com/gcmn-library/backend/pkg/logger"
	"github.com/gcmn-library/backend/pkg/storage/supabase"
)

// Services bundles the domain services the router exposes.
type Services struct {
	Users     *users.Service
	Cards     *cards.Service
	Students  *students.Service
	Catalog   *catalog.Service
	Content   *content.Service
	Messages  *messages.Service
	Borrows   *borrows.Service
	Donations *donations.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	svcs Services,
	storageClient *supabase.Client,
	readiness map[string]handlers.Pinger,
	registry *prometheus.Registry,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", handlers.HealthLive(cfg))
		r.Get("/ready", handlers.HealthReady(cfg, logg, readiness))
	})
	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/", handlers.CreateUser(svcs.Users, logg))
			r.Get("/{userId}", handlers.GetUser(svcs.Users, logg))
			r.Delete("/{userId}", handlers.DeleteUser(svcs.Users, logg))
			r.Get("/{userId}/profile", handlers.GetProfile(svcs.Users, logg))
			r.Put("/{userId}/profile", handlers.UpdateProfile(svcs.Users, logg))
			r.Get("/{userId}/roles", handlers.ListUserRoles(svcs.Users, logg))
			r.Post("/{userId}/roles", handlers.CreateUserRole(svcs.Users, logg))
			r.Get("/{userId}/borrows", handlers.ListBookBorrowsByUser(svcs.Borrows, logg))
			r.Get("/{userId}/card-applications", handlers.ListCardApplicationsByUser(svcs.Cards, logg))
		})

		r.Route("/card-applications", func(r chi.Router) {
			r.Get("/", handlers.ListCardApplications(svcs.Cards, logg))
			r.Post("/", handlers.CreateCardApplication(svcs.Cards, logg))
			r.Get("/{applicationId}", handlers.GetCardApplication(svcs.Cards, logg))
			r.Patch("/{applicationId}/status", handlers.SetCardApplicationStatus(svcs.Cards, logg))
			r.Get("/{applicationId}/events", handlers.ListCardApplicationEvents(svcs.Cards, logg))
			r.Delete("/{applicationId}", handlers.DeleteCardApplication(svcs.Cards, logg))
		})
		r.Get("/library-cards/{cardNumber}", handlers.GetLibraryCardByNumber(svcs.Cards, logg))

		r.Route("/students", func(r chi.Router) {
			r.Get("/", handlers.ListStudents(svcs.Students, logg))
			r.Post("/", handlers.CreateStudent(svcs.Students, logg))
			r.Get("/by-card/{cardId}", handlers.GetStudentByCard(svcs.Students, logg))
		})
		r.Route("/non-students", func(r chi.Router) {
			r.Get("/", handlers.ListNonStudents(svcs.Students, logg))
			r.Post("/", handlers.CreateNonStudent(svcs.Students, logg))
		})

		r.Route("/books", func(r chi.Router) {
			r.Get("/", handlers.ListBooks(svcs.Catalog, logg))
			r.Post("/", handlers.CreateBook(svcs.Catalog, logg))
			r.Get("/{bookId}", handlers.GetBook(svcs.Catalog, logg))
			r.Put("/{bookId}", handlers.UpdateBook(svcs.Catalog, logg))
			r.Delete("/{bookId}", handlers.DeleteBook(svcs.Catalog, logg))
		})

		r.Route("/notes", func(r chi.Router) {
			r.Get("/", handlers.ListNotes(svcs.Catalog, logg))
			r.Post("/", handlers.CreateNote(svcs.Catalog, logg))
			r.Get("/{noteId}", handlers.GetNote(svcs.Catalog, logg))
			r.Put("/{noteId}", handlers.UpdateNote(svcs.Catalog, logg))
			r.Delete("/{noteId}", handlers.DeleteNote(svcs.Catalog, logg))
			r.Post("/{noteId}/toggle-status", handlers.ToggleNoteStatus(svcs.Catalog, logg))
		})

		r.Route("/rare-books", func(r chi.Router) {
			r.Get("/", handlers.ListRareBooks(svcs.Catalog, logg))
			r.Post("/", handlers.CreateRareBook(svcs.Catalog, logg))
			r.Delete("/{rareBookId}", handlers.DeleteRareBook(svcs.Catalog, logg))
			r.Post("/{rareBookId}/toggle-status", handlers.ToggleRareBookStatus(svcs.Catalog, logg))
		})

		r.Route("/events", func(r chi.Router) {
			r.Get("/", handlers.ListEvents(svcs.Content, logg))
			r.Post("/", handlers.CreateEvent(svcs.Content, logg))
			r.Put("/{eventId}", handlers.UpdateEvent(svcs.Content, logg))
			r.Delete("/{eventId}", handlers.DeleteEvent(svcs.Content, logg))
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", handlers.ListNotifications(svcs.Content, logg))
			r.Post("/", handlers.CreateNotification(svcs.Content, logg))
			r.Put("/{notificationId}", handlers.UpdateNotification(svcs.Content, logg))
			r.Delete("/{notificationId}", handlers.DeleteNotification(svcs.Content, logg))
			r.Post("/{notificationId}/toggle-status", handlers.ToggleNotificationStatus(svcs.Content, logg))
			r.Post("/{notificationId}/toggle-pin", handlers.ToggleNotificationPin(svcs.Content, logg))
		})

		r.Route("/blog-posts", func(r chi.Router) {
			r.Get("/", handlers.ListBlogPosts(svcs.Content, logg))
			r.Post("/", handlers.CreateBlogPost(svcs.Content, logg))
			r.Get("/slug/{slug}", handlers.GetBlogPostBySlug(svcs.Content, logg))
			r.Get("/{postId}", handlers.GetBlogPost(svcs.Content, logg))
			r.Put("/{postId}", handlers.UpdateBlogPost(svcs.Content, logg))
			r.Delete("/{postId}", handlers.DeleteBlogPost(svcs.Content, logg))
			r.Post("/{postId}/toggle-pin", handlers.ToggleBlogPostPin(svcs.Content, logg))
		})

		r.Route("/contact-messages", func(r chi.Router) {
			r.Get("/", handlers.ListContactMessages(svcs.Messages, logg))
			r.Post("/", handlers.CreateContactMessage(svcs.Messages, logg))
			r.Get("/{messageId}", handlers.GetContactMessage(svcs.Messages, logg))
			r.Patch("/{messageId}/seen", handlers.SetContactMessageSeen(svcs.Messages, logg))
			r.Delete("/{messageId}", handlers.DeleteContactMessage(svcs.Messages, logg))
		})

		r.Route("/borrows", func(r chi.Router) {
			r.Get("/", handlers.ListBookBorrows(svcs.Borrows, logg))
			r.Post("/", handlers.CreateBookBorrow(svcs.Borrows, logg))
			r.Patch("/{borrowId}/status", handlers.UpdateBookBorrowStatus(svcs.Borrows, logg))
			r.Delete("/{borrowId}", handlers.DeleteBookBorrow(svcs.Borrows, logg))
		})

		r.Route("/donations", func(r chi.Router) {
			r.Get("/", handlers.ListDonations(svcs.Donations, logg))
			r.Post("/", handlers.CreateDonation(svcs.Donations, logg))
			r.Delete("/{donationId}", handlers.DeleteDonation(svcs.Donations, logg))
		})

		if storageClient != nil {
			r.Route("/files", func(r chi.Router) {
				r.Post("/{bucket}", handlers.UploadFile(storageClient, logg))
				r.Delete("/", handlers.DeleteFile(storageClient, logg))
			})
		}
	})

	return r
}

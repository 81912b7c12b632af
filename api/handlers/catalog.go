package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gcmn-library/backend/api/responses"
	"github.com/gcmn-library/backend/api/validators"
	"github.com/gcmn-library/backend/internal/catalog"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
)

func ListBooks(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := svc.ListBooks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, books)
	}
}

func GetBook(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, found, err := svc.GetBook(r.Context(), chi.URLParam(r, "bookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "book not found"))
			return
		}
		responses.WriteSuccess(w, book)
	}
}

func CreateBook(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, err := validators.DecodeRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateBook(r.Context(), book)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func UpdateBook(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changes, err := validators.DecodeRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateBook(r.Context(), chi.URLParam(r, "bookId"), changes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DeleteBook(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteBook(r.Context(), chi.URLParam(r, "bookId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

// ListNotes serves three views: all notes, active notes (?active=true), and
// the active notes for one class and subject (?class=..&subject=..).
func ListNotes(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		class, subject := query.Get("class"), query.Get("subject")

		var (
			notes []map[string]any
			err   error
		)
		switch {
		case class != "" && subject != "":
			notes, err = svc.ListNotesByClassAndSubject(r.Context(), class, subject)
		case query.Get("active") == "true":
			notes, err = svc.ListActiveNotes(r.Context())
		default:
			notes, err = svc.ListNotes(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, notes)
	}
}

func GetNote(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		note, found, err := svc.GetNote(r.Context(), chi.URLParam(r, "noteId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "note not found"))
			return
		}
		responses.WriteSuccess(w, note)
	}
}

func CreateNote(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		note, err := validators.DecodeRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateNote(r.Context(), note)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func UpdateNote(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		changes, err := validators.DecodeRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		updated, err := svc.UpdateNote(r.Context(), chi.URLParam(r, "noteId"), changes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DeleteNote(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteNote(r.Context(), chi.URLParam(r, "noteId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func ToggleNoteStatus(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		note, found, err := svc.ToggleNoteStatus(r.Context(), chi.URLParam(r, "noteId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "note not found"))
			return
		}
		responses.WriteSuccess(w, note)
	}
}

func ListRareBooks(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		books, err := svc.ListRareBooks(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, books)
	}
}

func CreateRareBook(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, err := validators.DecodeRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateRareBook(r.Context(), book)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func DeleteRareBook(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteRareBook(r.Context(), chi.URLParam(r, "rareBookId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

func ToggleRareBookStatus(svc *catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		book, found, err := svc.ToggleRareBookStatus(r.Context(), chi.URLParam(r, "rareBookId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "rare book not found"))
			return
		}
		responses.WriteSuccess(w, book)
	}
}

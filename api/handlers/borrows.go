package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gcmn-library/backend/api/responses"
	"github.com/gcmn-library/backend/api/validators"
	"github.com/gcmn-library/backend/internal/borrows"
	"github.com/gcmn-library/backend/pkg/logger"
)

func ListBookBorrows(svc *borrows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.ListBorrows(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, all)
	}
}

func ListBookBorrowsByUser(svc *borrows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mine, err := svc.ListBorrowsByUser(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mine)
	}
}

func CreateBookBorrow(svc *borrows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		borrow, err := validators.DecodeRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateBorrow(r.Context(), borrow)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func UpdateBookBorrowStatus(svc *borrows.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		Status     string     `json:"status" validate:"required"`
		ReturnDate *time.Time `json:"returnDate"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body request
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.UpdateStatus(r.Context(), chi.URLParam(r, "borrowId"), body.Status, body.ReturnDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DeleteBookBorrow(svc *borrows.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteBorrow(r.Context(), chi.URLParam(r, "borrowId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gcmn-library/backend/api/responses"
	"github.com/gcmn-library/backend/api/validators"
	"github.com/gcmn-library/backend/internal/cards"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
)

func CreateCardApplication(svc *cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input cards.CreateApplicationInput
		if err := validators.DecodeJSONBody(r, &input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		created, err := svc.CreateApplication(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func ListCardApplications(svc *cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps, err := svc.ListApplications(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, apps)
	}
}

func GetCardApplication(svc *cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		app, found, err := svc.GetApplication(r.Context(), chi.URLParam(r, "applicationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "application not found"))
			return
		}
		responses.WriteSuccess(w, app)
	}
}

func ListCardApplicationsByUser(svc *cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		apps, err := svc.ListApplicationsByUser(r.Context(), chi.URLParam(r, "userId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, apps)
	}
}

func GetLibraryCardByNumber(svc *cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		card, found, err := svc.GetByCardNumber(r.Context(), chi.URLParam(r, "cardNumber"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "library card not found"))
			return
		}
		responses.WriteSuccess(w, card)
	}
}

func SetCardApplicationStatus(svc *cards.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		Status string `json:"status" validate:"required"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body request
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetStatus(r.Context(), chi.URLParam(r, "applicationId"), body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func ListCardApplicationEvents(svc *cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		events, err := svc.ListEvents(r.Context(), chi.URLParam(r, "applicationId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, events)
	}
}

func DeleteCardApplication(svc *cards.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteApplication(r.Context(), chi.URLParam(r, "applicationId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

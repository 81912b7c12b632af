package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gcmn-library/backend/api/responses"
	"github.com/gcmn-library/backend/api/validators"
	"github.com/gcmn-library/backend/internal/messages"
	pkgerrors "github.com/gcmn-library/backend/pkg/errors"
	"github.com/gcmn-library/backend/pkg/logger"
)

func ListContactMessages(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.ListMessages(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, all)
	}
}

func GetContactMessage(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message, found, err := svc.GetMessage(r.Context(), chi.URLParam(r, "messageId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !found {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "message not found"))
			return
		}
		responses.WriteSuccess(w, message)
	}
}

func CreateContactMessage(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		message, err := validators.DecodeRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateMessage(r.Context(), message)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func SetContactMessageSeen(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	type request struct {
		IsSeen bool `json:"isSeen"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var body request
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		updated, err := svc.SetSeen(r.Context(), chi.URLParam(r, "messageId"), body.IsSeen)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

func DeleteContactMessage(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteMessage(r.Context(), chi.URLParam(r, "messageId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

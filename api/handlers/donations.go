package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gcmn-library/backend/api/responses"
	"github.com/gcmn-library/backend/api/validators"
	"github.com/gcmn-library/backend/internal/donations"
	"github.com/gcmn-library/backend/pkg/logger"
)

func ListDonations(svc *donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all, err := svc.ListDonations(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, all)
	}
}

func CreateDonation(svc *donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		donation, err := validators.DecodeRecord(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		created, err := svc.CreateDonation(r.Context(), donation)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, created)
	}
}

func DeleteDonation(svc *donations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.DeleteDonation(r.Context(), chi.URLParam(r, "donationId")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}

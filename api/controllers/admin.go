package controllers

import (
	"net/http"
	"strconv"

	"github.com/farmfresh-in/farmfresh-backend/api/responses"
	"github.com/farmfresh-in/farmfresh-backend/internal/users"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
)

// AdminListUsers serves accounts, optionally filtered to unapproved
// farmers awaiting review.
func AdminListUsers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		query := r.URL.Query()
		filter := users.ListFilter{
			UnapprovedOnly: query.Get("unapproved") == "true",
		}
		if raw := query.Get("role"); raw != "" {
			role, err := enums.ParseUserRole(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
				return
			}
			filter.Role = role
		}
		if raw := query.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			filter.Limit = limit
		}

		accounts, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]userResponse, 0, len(accounts))
		for i := range accounts {
			out = append(out, newUserResponse(&accounts[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminListFarmers serves farmer accounts only. Pass unapproved=true
// to see the approval queue.
func AdminListFarmers(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		query := r.URL.Query()
		filter := users.ListFilter{
			Role:           enums.UserRoleFarmer,
			UnapprovedOnly: query.Get("unapproved") == "true",
		}
		if raw := query.Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid limit"))
				return
			}
			filter.Limit = limit
		}

		farmers, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out := make([]userResponse, 0, len(farmers))
		for i := range farmers {
			out = append(out, newUserResponse(&farmers[i]))
		}
		responses.WriteSuccess(w, out)
	}
}

// AdminApproveFarmer flips a farmer to approved so they can list
// products.
func AdminApproveFarmer(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		farmerID, err := uuidParam(r, "farmerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		farmer, err := svc.ApproveFarmer(r.Context(), farmerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newUserResponse(farmer))
	}
}

package controllers

import (
	"net/http"
	"time"

	"github.com/farmfresh-in/farmfresh-backend/api/responses"
	"github.com/farmfresh-in/farmfresh-backend/api/validators"
	"github.com/farmfresh-in/farmfresh-backend/internal/users"
	"github.com/farmfresh-in/farmfresh-backend/pkg/config"
	"github.com/farmfresh-in/farmfresh-backend/pkg/db/models"
	"github.com/farmfresh-in/farmfresh-backend/pkg/enums"
	pkgerrors "github.com/farmfresh-in/farmfresh-backend/pkg/errors"
	"github.com/farmfresh-in/farmfresh-backend/pkg/logger"
)

const authCookieName = "token"

type registerRequest struct {
	Name         string  `json:"name" validate:"required,min=2,max=120"`
	Email        string  `json:"email" validate:"required,email"`
	Password     string  `json:"password" validate:"required,min=8,max=128"`
	Role         string  `json:"role" validate:"omitempty,oneof=user farmer"`
	Phone        *string `json:"phone,omitempty" validate:"omitempty,min=10,max=15"`
	FarmName     *string `json:"farm_name,omitempty" validate:"omitempty,min=2,max=160"`
	FarmLocation *string `json:"farm_location,omitempty" validate:"omitempty,max=200"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type userResponse struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Role         string  `json:"role"`
	Phone        *string `json:"phone,omitempty"`
	FarmName     *string `json:"farm_name,omitempty"`
	FarmLocation *string `json:"farm_location,omitempty"`
	IsApproved   bool    `json:"is_approved"`
	IsActive     bool    `json:"is_active"`
	CreatedAt    string  `json:"created_at"`
}

type loginResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role.String(),
		Phone:        user.Phone,
		FarmName:     user.FarmName,
		FarmLocation: user.FarmLocation,
		IsApproved:   user.IsApproved,
		IsActive:     user.IsActive,
		CreatedAt:    user.CreatedAt.Format(time.RFC3339),
	}
}

// AuthRegister wires account creation into the HTTP layer.
func AuthRegister(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var body registerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), users.RegisterInput{
			Name:         body.Name,
			Email:        body.Email,
			Password:     body.Password,
			Role:         enums.UserRole(body.Role),
			Phone:        body.Phone,
			FarmName:     body.FarmName,
			FarmLocation: body.FarmLocation,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, newUserResponse(user))
	}
}

// AuthLogin authenticates a user and sets the session cookie.
func AuthLogin(svc users.Service, cfg config.JWTConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		var body loginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.Login(r.Context(), body.Email, body.Password)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     authCookieName,
			Value:    session.Token,
			Path:     "/",
			MaxAge:   cfg.ExpirationMinutes * 60,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		responses.WriteSuccess(w, loginResponse{
			User:  newUserResponse(session.User),
			Token: session.Token,
		})
	}
}

// AuthLogout clears the session cookie.
func AuthLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     authCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		responses.WriteSuccess(w, map[string]string{"status": "logged_out"})
	}
}

// AuthMe returns the authenticated account.
func AuthMe(svc users.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "user service unavailable"))
			return
		}

		actor, err := actorFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Get(r.Context(), actor.UserID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, newUserResponse(user))
	}
}

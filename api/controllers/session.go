package controllers

import (
	"context"
	"net/http"

	"github.com/newswirehq/newswire-backend/api/responses"
	"github.com/newswirehq/newswire-backend/api/validators"
	"github.com/newswirehq/newswire-backend/internal/session"
	"github.com/newswirehq/newswire-backend/internal/users"
	"github.com/newswirehq/newswire-backend/pkg/logger"
)

type sessionVerifier interface {
	Register(ctx context.Context, in session.RegisterInput) (*users.UserDTO, error)
	Login(ctx context.Context, creds session.Credentials) (*users.UserDTO, error)
}

func SessionRegister(svc sessionVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload session.RegisterInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

func SessionLogin(svc sessionVerifier, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload session.Credentials
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Login(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, user)
	}
}

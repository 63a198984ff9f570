package api

import (
	"net/http"

	"github.com/hackgods/clinic-booking/internal/user"
)

type authResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    *user.User `json:"user"`
}

type userResponse struct {
	Message string     `json:"message"`
	User    *user.User `json:"user"`
}

func registerHandler(users UserService, tokens TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in user.RegisterInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		u, err := users.Register(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		token, err := tokens.Issue(u.ID, u.Role)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusCreated, authResponse{
			Message: "User registered successfully",
			Token:   token,
			User:    u,
		})
	}
}

func loginHandler(users UserService, tokens TokenIssuer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in user.LoginInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		u, err := users.Login(r.Context(), in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		token, err := tokens.Issue(u.ID, u.Role)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, authResponse{
			Message: "Login successful",
			Token:   token,
			User:    u,
		})
	}
}

func meHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := users.Get(r.Context(), actor(r).ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, u)
	}
}

func updateProfileHandler(users UserService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in user.ProfileInput
		if err := decodeJSON(w, r, &in); err != nil {
			writeError(w, r, err)
			return
		}

		u, err := users.UpdateProfile(r.Context(), actor(r).ID, in)
		if err != nil {
			writeError(w, r, err)
			return
		}

		writeJSON(w, http.StatusOK, userResponse{
			Message: "Profile updated successfully",
			User:    u,
		})
	}
}

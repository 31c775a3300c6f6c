package main

import (
	"crypto/subtle"
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type StaffTokenPayload struct {
	Username string `json:"username" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=100"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// staffTokenHandler exchanges the staff credentials for a token pair. There
// is a single staff account configured from the environment; both branches
// of a failed check return the same 401 to avoid leaking which part was
// wrong.
func (app *application) staffTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload StaffTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	staff := app.config.auth.staff

	usernameOK := subtle.ConstantTimeCompare([]byte(payload.Username), []byte(staff.username)) == 1
	passwordErr := bcrypt.CompareHashAndPassword([]byte(staff.passwordHash), []byte(payload.Password))

	if !usernameOK || passwordErr != nil {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid credentials"))
		return
	}

	access, refresh, err := app.authenticator.GenerateTokens(staff.username, "staff")
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

type RefreshTokenPayload struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func (app *application) refreshTokenHandler(w http.ResponseWriter, r *http.Request) {
	var payload RefreshTokenPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	token, err := app.authenticator.ValidateRefreshToken(payload.RefreshToken)
	if err != nil {
		app.unauthorizedErrorResponse(w, r, err)
		return
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("invalid refresh token claims"))
		return
	}

	subject, err := claims.GetSubject()
	if err != nil || subject == "" {
		app.unauthorizedErrorResponse(w, r, fmt.Errorf("refresh token missing subject"))
		return
	}

	access, refresh, err := app.authenticator.GenerateTokens(subject, "staff")
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, TokenPairResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}); err != nil {
		app.internalServerError(w, r, err)
	}
}

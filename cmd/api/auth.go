package main

import (
	"errors"
	"net/http"
	"strings"

	"mogges/internal/domain/accesscontrol"
	"mogges/internal/domain/users"
	"mogges/internal/mailer"
)

type CredentialsPayload struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=72"`
}

type SessionUser struct {
	Email string                 `json:"email" example:"kund@example.com"`
	Role  accesscontrol.RoleName `json:"role" example:"user"`
}

type LoginResponse struct {
	Message string      `json:"message" example:"Login successful"`
	Token   string      `json:"token"`
	User    SessionUser `json:"user"`
}

type CheckAuthResponse struct {
	Authenticated bool                       `json:"authenticated"`
	User          *SessionUser               `json:"user,omitempty"`
	Permissions   *accesscontrol.Permissions `json:"permissions,omitempty"`
}

// readCredentials decodes and checks an email/password body, writing the
// error response itself when the body is unusable.
func (app *application) readCredentials(w http.ResponseWriter, r *http.Request) (CredentialsPayload, bool) {
	var payload CredentialsPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "Email and password required")
		return payload, false
	}

	payload.Email = users.NormalizeEmail(payload.Email)
	if payload.Email == "" || payload.Password == "" {
		app.badRequestResponse(w, r, "Email and password required")
		return payload, false
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, "Invalid email or password")
		return payload, false
	}
	return payload, true
}

// registerUserHandler godoc
//
//	@Summary		Registers a customer account
//	@Description	Creates an account with role user. A welcome email is sent in the background when mail is configured.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CredentialsPayload	true	"User credentials"
//	@Success		201		{object}	messageEnvelope
//	@Failure		400		{object}	errorEnvelope
//	@Failure		409		{object}	errorEnvelope	"Email already in use"
//	@Failure		429		{object}	errorEnvelope
//	@Failure		500		{object}	errorEnvelope
//	@Router			/register [post]
func (app *application) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	payload, ok := app.readCredentials(w, r)
	if !ok {
		return
	}

	user := &users.User{
		Email: payload.Email,
		Role:  accesscontrol.RoleUser,
	}
	// hash the user password.
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			app.conflictResponse(w, r, "Email already in use")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("user registered", "user_id", user.ID)
	app.sendWelcomeEmail(user.Email)

	app.messageResponse(w, http.StatusCreated, "Account created successfully")
}

// loginHandler godoc
//
//	@Summary		Signs a user in
//	@Description	Verifies the credentials and returns a signed session token.
//	@Tags			authentication
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CredentialsPayload	true	"User credentials"
//	@Success		200		{object}	LoginResponse
//	@Failure		400		{object}	errorEnvelope
//	@Failure		401		{object}	errorEnvelope	"Invalid credentials"
//	@Failure		429		{object}	errorEnvelope
//	@Failure		500		{object}	errorEnvelope
//	@Router			/login [post]
func (app *application) loginHandler(w http.ResponseWriter, r *http.Request) {
	payload, ok := app.readCredentials(w, r)
	if !ok {
		return
	}

	ctx := r.Context()

	user, err := app.store.Users.GetByEmail(ctx, payload.Email)
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			app.unauthorizedErrorResponse(w, r, "Invalid credentials")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if !user.Password.Matches(payload.Password) {
		app.unauthorizedErrorResponse(w, r, "Invalid credentials")
		return
	}

	if user.Password.NeedsRehash() {
		app.upgradePassword(r, user, payload.Password)
	}

	token, err := app.authenticator.IssueToken(user.ID, user.Email, user.Role)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.jsonResponse(w, http.StatusOK, &LoginResponse{
		Message: "Login successful",
		Token:   token,
		User:    SessionUser{Email: user.Email, Role: user.Role},
	})
}

// upgradePassword replaces a legacy digest with a bcrypt hash. Failure only
// means the upgrade is retried at the next login.
func (app *application) upgradePassword(r *http.Request, user *users.User, plaintext string) {
	if err := user.Password.Set(plaintext); err != nil {
		app.logger.Warnw("password rehash failed", "user_id", user.ID, "error", err)
		return
	}
	if err := app.store.Users.UpdatePassword(r.Context(), user.ID, user.Password.Digest()); err != nil {
		app.logger.Warnw("password rehash not stored", "user_id", user.ID, "error", err)
		return
	}
	app.logger.Infow("legacy password digest upgraded", "user_id", user.ID)
}

// logoutHandler godoc
//
//	@Summary		Signs a user out
//	@Description	Tokens are not revoked server side; the client forgets its token.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	messageEnvelope
//	@Router			/logout [post]
func (app *application) logoutHandler(w http.ResponseWriter, r *http.Request) {
	app.messageResponse(w, http.StatusOK, "Logout successful")
}

// checkAuthHandler godoc
//
//	@Summary		Reports the current session
//	@Description	Anonymous callers and invalid tokens get authenticated=false.
//	@Tags			authentication
//	@Produce		json
//	@Success		200	{object}	CheckAuthResponse
//	@Security		ApiKeyAuth
//	@Router			/check-auth [get]
func (app *application) checkAuthHandler(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r)
	if claims == nil {
		app.jsonResponse(w, http.StatusOK, &CheckAuthResponse{Authenticated: false})
		return
	}

	perms := accesscontrol.PermissionsFor(claims.Role)
	app.jsonResponse(w, http.StatusOK, &CheckAuthResponse{
		Authenticated: true,
		User:          &SessionUser{Email: claims.Email, Role: claims.Role},
		Permissions:   &perms,
	})
}

func (app *application) sendWelcomeEmail(email string) {
	if app.mailer == nil {
		return
	}

	vars := struct {
		Email    string
		StoreURL string
	}{
		Email:    email,
		StoreURL: strings.TrimRight(app.config.frontendURL, "/"),
	}

	app.background(func() {
		if err := app.mailer.Send(mailer.UserWelcomeTemplate, email, vars); err != nil {
			app.logger.Errorw("error sending welcome email", "email", email, "error", err)
			return
		}
		app.logger.Infow("welcome email sent", "email", email)
	})
}

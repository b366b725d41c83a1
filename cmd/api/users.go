package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mogges/internal/domain/accesscontrol"
	"mogges/internal/domain/users"

	"github.com/go-chi/chi/v5"
)

type UserRow struct {
	ID    int64                  `json:"id"`
	Email string                 `json:"email"`
	Role  accesscontrol.RoleName `json:"role"`
}

type UpdateRolePayload struct {
	UserID  int64                  `json:"userId" validate:"required,gt=0"`
	NewRole accesscontrol.RoleName `json:"newRole" validate:"required"`
}

type CreateUserPayload struct {
	Email    string                 `json:"email" validate:"required,email,max=255"`
	Password string                 `json:"password" validate:"required,max=72"`
	Role     accesscontrol.RoleName `json:"role" validate:"required"`
}

// listUsersHandler godoc
//
//	@Summary	Lists every account
//	@Tags		users
//	@Produce	json
//	@Success	200	{array}		UserRow
//	@Failure	401	{object}	errorEnvelope
//	@Failure	403	{object}	errorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/users [get]
func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	list, err := app.store.Users.List(r.Context())
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	rows := make([]UserRow, 0, len(list))
	for _, u := range list {
		rows = append(rows, UserRow{ID: u.ID, Email: u.Email, Role: u.Role})
	}
	app.jsonResponse(w, http.StatusOK, rows)
}

// updateRoleHandler godoc
//
//	@Summary	Changes the role of an account
//	@Tags		admin
//	@Accept		json
//	@Produce	json
//	@Param		payload	body		UpdateRolePayload	true	"Target user and role"
//	@Success	200		{object}	messageEnvelope
//	@Failure	400		{object}	errorEnvelope
//	@Failure	403		{object}	errorEnvelope	"Forbidden - Master admin required"
//	@Failure	404		{object}	errorEnvelope
//	@Security	ApiKeyAuth
//	@Router		/admin/update-role [put]
func (app *application) updateRoleHandler(w http.ResponseWriter, r *http.Request) {
	var payload UpdateRolePayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "Valid userId and role required")
		return
	}
	if err := Validate.Struct(payload); err != nil || !payload.NewRole.Valid() {
		app.badRequestResponse(w, r, "Valid userId and role required")
		return
	}

	err := app.store.AccessControl.SetRole(r.Context(), payload.UserID, payload.NewRole)
	if err != nil {
		if errors.Is(err, accesscontrol.ErrUserNotFound) {
			app.notFoundResponse(w, r, "User not found")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("role updated", "user_id", payload.UserID, "role", payload.NewRole, "by", claimsFromContext(r).UserID)
	app.messageResponse(w, http.StatusOK, "Role updated")
}

// deleteUserHandler godoc
//
//	@Summary		Deletes an account
//	@Description	The caller cannot delete the account their token belongs to.
//	@Tags			admin
//	@Produce		json
//	@Param			userID	path		int	true	"User ID"
//	@Success		200		{object}	messageEnvelope
//	@Failure		400		{object}	errorEnvelope	"Cannot delete yourself"
//	@Failure		403		{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/admin/delete-user/{userID} [delete]
func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil || userID <= 0 {
		app.badRequestResponse(w, r, "Invalid user id")
		return
	}

	claims := claimsFromContext(r)
	if claims.UserID == userID {
		app.badRequestResponse(w, r, "Cannot delete yourself")
		return
	}

	if err := app.store.Users.Delete(r.Context(), userID); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("user deleted", "user_id", userID, "by", claims.UserID)
	app.messageResponse(w, http.StatusOK, "User deleted")
}

// createUserHandler godoc
//
//	@Summary		Creates an account with a chosen role
//	@Description	Master and admin accounts can only be created by a master.
//	@Tags			admin
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		CreateUserPayload	true	"New account"
//	@Success		201		{object}	messageEnvelope
//	@Failure		400		{object}	errorEnvelope
//	@Failure		403		{object}	errorEnvelope
//	@Failure		409		{object}	errorEnvelope	"Email already exists"
//	@Security		ApiKeyAuth
//	@Router			/admin/create-user [post]
func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var payload CreateUserPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "Email, password and role required")
		return
	}

	payload.Email = users.NormalizeEmail(payload.Email)
	payload.Role = accesscontrol.RoleName(strings.TrimSpace(string(payload.Role)))
	if payload.Email == "" || payload.Password == "" || payload.Role == "" {
		app.badRequestResponse(w, r, "Email, password and role required")
		return
	}
	if !payload.Role.Valid() {
		app.badRequestResponse(w, r, "Invalid role. Valid roles: master, admin, employee, user")
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, "Invalid email or password")
		return
	}

	actor := claimsFromContext(r)
	if !accesscontrol.CanCreate(actor.Role, payload.Role) {
		app.forbiddenResponse(w, r, "Only master admins can create "+string(payload.Role)+" accounts")
		return
	}

	user := &users.User{Email: payload.Email, Role: payload.Role}
	if err := user.Password.Set(payload.Password); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Users.Create(r.Context(), user); err != nil {
		if errors.Is(err, users.ErrDuplicateEmail) {
			app.conflictResponse(w, r, "Email already exists")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("user created", "user_id", user.ID, "role", user.Role, "by", actor.UserID)
	app.messageResponse(w, http.StatusCreated, "User created successfully")
}

package main

import (
	"net/http"
	"strconv"
	"time"
)

const serverErrorMessage = "Server error"

func (app *application) internalServerError(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Errorw("internal error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	writeJSONError(w, http.StatusInternalServerError, serverErrorMessage)
}

func (app *application) badRequestResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.logger.Warnw("bad request", "method", r.Method, "path", r.URL.Path, "error", message)

	writeJSONError(w, http.StatusBadRequest, message)
}

func (app *application) unauthorizedErrorResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.logger.Warnw("unauthorized error", "method", r.Method, "path", r.URL.Path, "error", message)

	writeJSONError(w, http.StatusUnauthorized, message)
}

func (app *application) unauthorizedBasicErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logger.Warnw("unauthorized basic error", "method", r.Method, "path", r.URL.Path, "error", err.Error())

	w.Header().Set("WWW-Authenticate", `Basic realm="restricted", charset="UTF-8"`)
	writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
}

func (app *application) forbiddenResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.logger.Warnw("forbidden", "method", r.Method, "path", r.URL.Path, "error", message)

	writeJSONError(w, http.StatusForbidden, message)
}

func (app *application) notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.logger.Warnw("not found error", "method", r.Method, "path", r.URL.Path, "error", message)

	writeJSONError(w, http.StatusNotFound, message)
}

func (app *application) conflictResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.logger.Warnw("conflict response", "method", r.Method, "path", r.URL.Path, "error", message)

	writeJSONError(w, http.StatusConflict, message)
}

func (app *application) rateLimitExceededResponse(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	app.logger.Warnw("rate limit exceeded", "method", r.Method, "path", r.URL.Path)

	seconds := int(retryAfter.Round(time.Second) / time.Second)
	if seconds < 1 {
		seconds = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(seconds))
	writeJSONError(w, http.StatusTooManyRequests, "Too many requests")
}

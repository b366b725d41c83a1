package main

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var Validate *validator.Validate

func init() {
	Validate = validator.New(validator.WithRequiredStructEnabled())

	// prices go out as JSON numbers, the way the storefront reads them
	decimal.MarshalJSONWithoutQuotes = true
}

func writeJSON(w http.ResponseWriter, status int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	return json.NewEncoder(w).Encode(data)
}

// it parses body into Go struct. Unknown fields are ignored: the storefront
// posts whole cart rows where only id and quantity matter.
func readJSON(w http.ResponseWriter, r *http.Request, data any) error {
	maxBytes := 1_048_578 //1mb
	r.Body = http.MaxBytesReader(w, r.Body, int64(maxBytes))

	return json.NewDecoder(r.Body).Decode(data)
}

type errorEnvelope struct {
	Error string `json:"error" example:"Server error"`
}

type messageEnvelope struct {
	Message string `json:"message" example:"Cart updated"`
}

func writeJSONError(w http.ResponseWriter, status int, message string) error {
	return writeJSON(w, status, &errorEnvelope{Error: message})
}

func (app *application) jsonResponse(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		app.logger.Errorw("write response", "error", err)
	}
}

func (app *application) messageResponse(w http.ResponseWriter, status int, message string) {
	app.jsonResponse(w, status, &messageEnvelope{Message: message})
}

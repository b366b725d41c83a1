package main

import (
	"context"
	"net/http"
	"time"
)

type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Env     string `json:"env" example:"development"`
	Version string `json:"version" example:"1.0.0"`
}

func (app *application) rootHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("Mogges Store API is running"))
}

// healthCheckHandler godoc
//
//	@Summary	Reports service health
//	@Tags		ops
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Failure	503	{object}	HealthResponse
//	@Router		/health [get]
func (app *application) healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := &HealthResponse{Status: "ok", Env: app.config.env, Version: version}
	if err := app.store.Ping(ctx); err != nil {
		app.logger.Errorw("health check: storage unreachable", "error", err)
		resp.Status = "unavailable"
		app.jsonResponse(w, http.StatusServiceUnavailable, resp)
		return
	}
	app.jsonResponse(w, http.StatusOK, resp)
}

package main

import (
	"net/http"
	"strings"

	"mogges/internal/chat"
)

const (
	chatProductLimit = 20
	chatOrderLimit   = 3
)

// chatHandler godoc
//
//	@Summary		Talks to the shopping assistant
//	@Description	A signed-in caller's latest orders are shared with the assistant. Provider failures still answer 200 with a fallback reply.
//	@Tags			chat
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		chat.Request	true	"Message and recent history"
//	@Success		200		{object}	chat.Reply
//	@Failure		400		{object}	errorEnvelope	"Message required"
//	@Failure		429		{object}	errorEnvelope
//	@Router			/chat [post]
func (app *application) chatHandler(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := readJSON(w, r, &req); err != nil {
		app.badRequestResponse(w, r, "Message required")
		return
	}
	req.Message = strings.TrimSpace(req.Message)
	if req.Message == "" {
		app.badRequestResponse(w, r, "Message required")
		return
	}

	ctx := r.Context()

	var shop chat.Shop
	inStock, err := app.store.Products.ListInStock(ctx, chatProductLimit)
	if err != nil {
		app.logger.Warnw("chat: products unavailable", "error", err)
	}
	shop.Products = inStock

	if claims := claimsFromContext(r); claims != nil {
		recent, err := app.store.Sales.Orders.ListForUser(ctx, claims.UserID, chatOrderLimit)
		if err != nil {
			app.logger.Warnw("chat: orders unavailable", "user_id", claims.UserID, "error", err)
		}
		shop.Orders = recent
	}

	app.jsonResponse(w, http.StatusOK, app.assistant.Respond(ctx, req, shop))
}

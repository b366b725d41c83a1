package main

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"mogges/internal/domain/products"
	"mogges/internal/params"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

const maxImageUploadBytes = 10 << 20

// ProductPayload is the body of create and update. Update is a full
// replace: optional fields left out fall back to their defaults.
type ProductPayload struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	Price       *decimal.Decimal `json:"price" swaggertype:"number"`
	Category    *string          `json:"category"`
	Stock       *int             `json:"stock"`
	Image       *string          `json:"image"`
}

type ProductCreatedResponse struct {
	Message string `json:"message" example:"Product created"`
	ID      int64  `json:"id"`
}

type ImageUploadedResponse struct {
	Message string `json:"message" example:"Image uploaded"`
	Image   string `json:"image"`
}

// fields turns the payload into product fields, or reports the client
// message when the payload is unusable.
func (p ProductPayload) fields() (products.Fields, string) {
	if p.Name == nil || strings.TrimSpace(*p.Name) == "" || p.Price == nil {
		return products.Fields{}, "Name and price are required"
	}
	return products.Fields{
		Name:        strings.TrimSpace(*p.Name),
		Description: p.Description,
		Price:       *p.Price,
		Category:    p.Category,
		Stock:       p.Stock,
		Image:       p.Image,
	}, ""
}

func productIDParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// listProductsHandler godoc
//
//	@Summary		Lists products
//	@Description	Without query parameters every product is returned.
//	@Tags			products
//	@Produce		json
//	@Param			category	query		string	false	"Exact category, e.g. Skor"
//	@Param			search		query		string	false	"Case-insensitive match on name, description or category"
//	@Success		200			{array}		products.Product
//	@Failure		500			{object}	errorEnvelope
//	@Router			/products [get]
func (app *application) listProductsHandler(w http.ResponseWriter, r *http.Request) {
	filter := params.ParseCatalogFilter(r.URL.Query())

	list, err := app.store.Products.List(r.Context(), filter)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if list == nil {
		list = []*products.Product{}
	}
	app.jsonResponse(w, http.StatusOK, list)
}

// getProductHandler godoc
//
//	@Summary	Fetches a product
//	@Tags		products
//	@Produce	json
//	@Param		productID	path		int	true	"Product ID"
//	@Success	200			{object}	products.Product
//	@Failure	404			{object}	errorEnvelope	"Product not found"
//	@Router		/products/{productID} [get]
func (app *application) getProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		app.notFoundResponse(w, r, "Product not found")
		return
	}

	product, err := app.store.Products.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			app.notFoundResponse(w, r, "Product not found")
			return
		}
		app.internalServerError(w, r, err)
		return
	}
	app.jsonResponse(w, http.StatusOK, product)
}

// createProductHandler godoc
//
//	@Summary		Creates a product
//	@Description	Stock defaults to 0 and image to the placeholder picture.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		ProductPayload	true	"Product"
//	@Success		201		{object}	ProductCreatedResponse
//	@Failure		400		{object}	errorEnvelope
//	@Failure		403		{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/products [post]
func (app *application) createProductHandler(w http.ResponseWriter, r *http.Request) {
	product, ok := app.readProduct(w, r, 0)
	if !ok {
		return
	}

	if err := app.store.Products.Create(r.Context(), product); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("product created", "product_id", product.ID, "by", claimsFromContext(r).UserID)
	app.jsonResponse(w, http.StatusCreated, &ProductCreatedResponse{Message: "Product created", ID: product.ID})
}

// updateProductHandler godoc
//
//	@Summary		Replaces a product
//	@Description	Every field is overwritten; omitted optional fields are reset to their defaults.
//	@Tags			products
//	@Accept			json
//	@Produce		json
//	@Param			productID	path		int				true	"Product ID"
//	@Param			payload		body		ProductPayload	true	"Product"
//	@Success		200			{object}	messageEnvelope
//	@Failure		400			{object}	errorEnvelope
//	@Failure		404			{object}	errorEnvelope	"Product not found"
//	@Security		ApiKeyAuth
//	@Router			/products/{productID} [put]
func (app *application) updateProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		app.notFoundResponse(w, r, "Product not found")
		return
	}

	product, ok := app.readProduct(w, r, id)
	if !ok {
		return
	}

	if err := app.store.Products.Update(r.Context(), product); err != nil {
		if errors.Is(err, products.ErrNotFound) {
			app.notFoundResponse(w, r, "Product not found")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("product updated", "product_id", id, "by", claimsFromContext(r).UserID)
	app.messageResponse(w, http.StatusOK, "Product updated")
}

func (app *application) readProduct(w http.ResponseWriter, r *http.Request, id int64) (*products.Product, bool) {
	var payload ProductPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, "Name and price are required")
		return nil, false
	}

	fields, msg := payload.fields()
	if msg != "" {
		app.badRequestResponse(w, r, msg)
		return nil, false
	}

	product, err := fields.Build(id)
	if err != nil {
		app.badRequestResponse(w, r, "Price and stock must not be negative")
		return nil, false
	}
	return product, true
}

// deleteProductHandler godoc
//
//	@Summary		Deletes a product
//	@Description	Deleting a product that does not exist still succeeds.
//	@Tags			products
//	@Produce		json
//	@Param			productID	path		int	true	"Product ID"
//	@Success		200			{object}	messageEnvelope
//	@Failure		403			{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/products/{productID} [delete]
func (app *application) deleteProductHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := productIDParam(r)
	if !ok {
		app.notFoundResponse(w, r, "Product not found")
		return
	}

	if err := app.store.Products.Delete(r.Context(), id); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	app.logger.Infow("product deleted", "product_id", id, "by", claimsFromContext(r).UserID)
	app.messageResponse(w, http.StatusOK, "Product deleted")
}

// uploadProductImageHandler godoc
//
//	@Summary		Uploads a product picture
//	@Description	Stores the picture on Cloudinary and points the product at it. A previous Cloudinary picture is removed.
//	@Tags			products
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			productID	path		int		true	"Product ID"
//	@Param			image		formData	file	true	"Picture"
//	@Success		200			{object}	ImageUploadedResponse
//	@Failure		400			{object}	errorEnvelope
//	@Failure		404			{object}	errorEnvelope
//	@Failure		503			{object}	errorEnvelope
//	@Security		ApiKeyAuth
//	@Router			/products/{productID}/image [post]
func (app *application) uploadProductImageHandler(w http.ResponseWriter, r *http.Request) {
	if app.cld == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "Image uploads are not configured")
		return
	}

	id, ok := productIDParam(r)
	if !ok {
		app.notFoundResponse(w, r, "Product not found")
		return
	}

	ctx := r.Context()

	product, err := app.store.Products.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, products.ErrNotFound) {
			app.notFoundResponse(w, r, "Product not found")
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageUploadBytes)
	if err := r.ParseMultipartForm(maxImageUploadBytes); err != nil {
		app.badRequestResponse(w, r, "Image file required")
		return
	}
	file, _, err := r.FormFile("image")
	if err != nil {
		app.badRequestResponse(w, r, "Image file required")
		return
	}
	defer file.Close()

	url, err := app.uploadProductImage(ctx, file, id)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.store.Products.SetImage(ctx, id, url); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if isCloudinaryURL(product.Image) {
		old := product.Image
		app.background(func() {
			if err := app.deletePhotoFromCloudinary(old); err != nil {
				app.logger.Warnw("old product image not removed", "product_id", id, "error", err)
			}
		})
	}

	app.jsonResponse(w, http.StatusOK, &ImageUploadedResponse{Message: "Image uploaded", Image: url})
}

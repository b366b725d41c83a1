package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

const productImageFolder = "products"

func isCloudinaryURL(imageURL string) bool {
	return strings.Contains(imageURL, "res.cloudinary.com/")
}

func (app *application) deletePhotoFromCloudinary(photoURL string) error {
	// Extract the public ID from the photo URL
	publicID, err := extractPublicIDFromURL(photoURL)
	if err != nil {
		return fmt.Errorf("failed to extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err = app.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID: publicID,
	})
	if err != nil {
		return fmt.Errorf("failed to delete photo from Cloudinary: %w", err)
	}

	return nil
}

// extractPublicIDFromURL turns .../upload/v123/products/product_4_ab12.jpg
// into products/product_4_ab12.
func extractPublicIDFromURL(photoURL string) (string, error) {
	parsedURL, err := url.Parse(photoURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL format: %w", err)
	}

	pathParts := strings.Split(parsedURL.Path, "/")
	for i, part := range pathParts {
		if part != "upload" || i+1 >= len(pathParts) {
			continue
		}
		rest := pathParts[i+1:]
		if len(rest) > 1 && isVersionSegment(rest[0]) {
			rest = rest[1:]
		}
		id := strings.Join(rest, "/")
		if dot := strings.LastIndex(id, "."); dot > 0 {
			id = id[:dot]
		}
		return id, nil
	}

	return "", errors.New("failed to extract public ID from URL")
}

func isVersionSegment(s string) bool {
	if len(s) < 2 || s[0] != 'v' {
		return false
	}
	_, err := strconv.ParseUint(s[1:], 10, 64)
	return err == nil
}

// uploadProductImage stores file under a name derived from the product id.
func (app *application) uploadProductImage(ctx context.Context, file io.Reader, productID int64) (string, error) {
	publicID := fmt.Sprintf("product_%d_%s", productID, uuid.NewString()[:8])

	resp, err := app.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		Folder:    productImageFolder,
		PublicID:  publicID,
		Overwrite: api.Bool(false),
	})
	if err != nil {
		return "", fmt.Errorf("cloudinary upload: %w", err)
	}
	return resp.SecureURL, nil
}

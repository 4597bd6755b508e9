package handler

import (
	"context"
	"fmt"
	"net/http"

	"evinburada/internal/model"

	"github.com/gin-gonic/gin"
)

// ListingImporter writes listings to persistent storage.
type ListingImporter interface {
	ImportListings(ctx context.Context, listings []model.Listing) (int, []string)
}

// ImportHandler handles catalog import requests. Imported listings are served
// after the next catalog load.
type ImportHandler struct {
	importer ListingImporter
}

// NewImportHandler creates a new import handler
func NewImportHandler(importer ListingImporter) *ImportHandler {
	return &ImportHandler{importer: importer}
}

// Import handles POST /api/v1/listings/import
func (h *ImportHandler) Import(c *gin.Context) {
	var req model.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	if len(req.Listings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No listings provided"})
		return
	}

	for i, l := range req.Listings {
		if l.ID == "" || l.DealType == "" || l.Price < 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": fmt.Sprintf("Invalid listing at index %d: id and dealType are required, price must not be negative", i),
			})
			return
		}
	}

	success, errs := h.importer.ImportListings(c.Request.Context(), req.Listings)

	response := model.ImportResponse{
		Success: success,
		Failed:  len(req.Listings) - success,
		Errors:  errs,
	}

	if len(errs) > 0 {
		c.JSON(http.StatusPartialContent, response)
	} else {
		c.JSON(http.StatusOK, response)
	}
}

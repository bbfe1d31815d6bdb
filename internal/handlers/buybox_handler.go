package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	apierrors "github.com/stwalsh4118/underwriter/internal/errors"
	"github.com/stwalsh4118/underwriter/internal/models"
	"github.com/stwalsh4118/underwriter/internal/services"
)

// BuyBoxHandler reads and updates the screening criteria.
type BuyBoxHandler struct {
	service services.UnderwritingService
}

// NewBuyBoxHandler creates a new BuyBoxHandler instance.
func NewBuyBoxHandler(service services.UnderwritingService) *BuyBoxHandler {
	return &BuyBoxHandler{service: service}
}

// Get handles GET /api/v1/buy-box.
func (h *BuyBoxHandler) Get(c *gin.Context) {
	box, err := h.service.GetBuyBox(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to load buy box", err)
		return
	}

	c.JSON(http.StatusOK, box)
}

// Update handles PUT /api/v1/buy-box.
func (h *BuyBoxHandler) Update(c *gin.Context) {
	var box models.BuyBox
	if err := c.ShouldBindJSON(&box); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid request body", nil)
		return
	}

	saved, err := h.service.UpdateBuyBox(c.Request.Context(), box)
	if err != nil {
		var invalid *models.InvalidField
		if errors.As(err, &invalid) {
			apierrors.FieldValidationError(c, invalid.Field, invalid.Reason)
			return
		}
		if errors.Is(err, services.ErrInvalidBuyBox) {
			apierrors.BadRequest(c, err.Error(), nil)
			return
		}
		apierrors.InternalServerError(c, "Failed to save buy box", err)
		return
	}

	c.JSON(http.StatusOK, saved)
}

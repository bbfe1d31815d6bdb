package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stwalsh4118/underwriter/internal/analysis"
	apierrors "github.com/stwalsh4118/underwriter/internal/errors"
	"github.com/stwalsh4118/underwriter/internal/middleware"
	"github.com/stwalsh4118/underwriter/internal/models"
	"github.com/stwalsh4118/underwriter/internal/report"
	"github.com/stwalsh4118/underwriter/internal/services"
)

// Multipart field names for deal submissions.
const (
	FieldT12      = "t12"
	FieldRentRoll = "rent_roll"
)

// DealHandler handles deal submission, history and report downloads.
type DealHandler struct {
	service        services.UnderwritingService
	maxUploadBytes int64
}

// NewDealHandler creates a new DealHandler. maxUploadBytes caps the whole
// multipart submission.
func NewDealHandler(service services.UnderwritingService, maxUploadBytes int64) *DealHandler {
	return &DealHandler{
		service:        service,
		maxUploadBytes: maxUploadBytes,
	}
}

// Create handles POST /api/v1/deals.
// The body is multipart: address, city and state fields plus the t12 and
// rent_roll files.
func (h *DealHandler) Create(c *gin.Context) {
	if c.Request.ContentLength > h.maxUploadBytes {
		apierrors.PayloadTooLarge(c, h.maxUploadBytes)
		return
	}

	var property models.PropertyInput
	if err := c.ShouldBind(&property); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.PayloadTooLarge(c, h.maxUploadBytes)
			return
		}
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			apierrors.ValidationError(c, validationErrors)
			return
		}
		apierrors.BadRequest(c, "Invalid deal submission", nil)
		return
	}

	t12, ok := h.readUpload(c, FieldT12)
	if !ok {
		return
	}
	rentRoll, ok := h.readUpload(c, FieldRentRoll)
	if !ok {
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Info("Processing deal submission", map[string]interface{}{
			"address":         property.FullAddress(),
			"t12_bytes":       len(t12.Data),
			"rent_roll_bytes": len(rentRoll.Data),
		})
	}

	deal, err := h.service.Analyze(c.Request.Context(), services.AnalyzeInput{
		Property: property,
		T12:      t12,
		RentRoll: rentRoll,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidProperty):
			apierrors.FieldValidationError(c, "address", "This field is required")
		case errors.Is(err, analysis.ErrUnsupportedDocument):
			apierrors.UnsupportedMediaType(c, "Documents must be PDF or Excel files", map[string]interface{}{
				"reason": err.Error(),
			})
		case errors.Is(err, analysis.ErrAnalysisFailed):
			dealID := ""
			if deal != nil {
				dealID = deal.ID.String()
			}
			apierrors.AnalysisFailed(c, dealID, err)
		default:
			apierrors.InternalServerError(c, "Failed to analyze deal", err)
		}
		return
	}

	c.JSON(http.StatusCreated, deal)
}

// readUpload reads one required file from the multipart form. It writes the
// error response itself and reports false when the file is unusable.
func (h *DealHandler) readUpload(c *gin.Context, field string) (models.Document, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			apierrors.PayloadTooLarge(c, h.maxUploadBytes)
			return models.Document{}, false
		}
		apierrors.FieldValidationError(c, field, "This file is required")
		return models.Document{}, false
	}

	data, err := readFileHeader(header)
	if err != nil {
		apierrors.InternalServerError(c, "Failed to read upload", err)
		return models.Document{}, false
	}

	return models.Document{
		Kind:     models.DocumentKind(field),
		Filename: header.Filename,
		Data:     data,
	}, true
}

func readFileHeader(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", header.Filename, err)
	}
	defer f.Close()

	return io.ReadAll(f)
}

// List handles GET /api/v1/deals.
func (h *DealHandler) List(c *gin.Context) {
	history, err := h.service.ListDeals(c.Request.Context())
	if err != nil {
		apierrors.InternalServerError(c, "Failed to list deals", err)
		return
	}

	c.JSON(http.StatusOK, history)
}

// Get handles GET /api/v1/deals/:id.
func (h *DealHandler) Get(c *gin.Context) {
	id, ok := parseDealID(c)
	if !ok {
		return
	}

	deal, err := h.service.GetDeal(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrDealNotFound) {
			apierrors.NotFound(c, "Deal not found")
			return
		}
		apierrors.InternalServerError(c, "Failed to load deal", err)
		return
	}

	c.JSON(http.StatusOK, deal)
}

// Export handles GET /api/v1/deals/:id/export/:format where format is xlsx or pdf.
// The artifact is sent as an attachment. X-Report-Overflow is set when the
// document content ran past the page.
func (h *DealHandler) Export(c *gin.Context) {
	format, ok := report.ParseFormat(c.Param("format"))
	if !ok {
		apierrors.BadRequest(c, "Unsupported export format", map[string]interface{}{
			"format":    c.Param("format"),
			"supported": []string{string(report.FormatSpreadsheet), string(report.FormatDocument)},
		})
		return
	}

	id, ok := parseDealID(c)
	if !ok {
		return
	}

	var artifact *report.Artifact
	var err error
	if format == report.FormatSpreadsheet {
		artifact, err = h.service.ExportSpreadsheet(c.Request.Context(), id)
	} else {
		artifact, err = h.service.ExportDocument(c.Request.Context(), id)
	}
	if err != nil {
		if errors.Is(err, services.ErrDealNotFound) {
			apierrors.NotFound(c, "Deal not found")
			return
		}
		apierrors.Export(c, format, err)
		return
	}

	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": artifact.Filename,
	}))
	if artifact.Overflow {
		c.Header(middleware.ReportOverflowHeader, strconv.FormatBool(true))
	}
	c.Data(http.StatusOK, artifact.ContentType, artifact.Data)
}

func parseDealID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		apierrors.BadRequest(c, "Invalid deal id", map[string]interface{}{
			"id": c.Param("id"),
		})
		return uuid.Nil, false
	}
	return id, true
}

package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/underwriter/internal/analysis"
	apierrors "github.com/stwalsh4118/underwriter/internal/errors"
	"github.com/stwalsh4118/underwriter/internal/logger"
	"github.com/stwalsh4118/underwriter/internal/middleware"
	"github.com/stwalsh4118/underwriter/internal/models"
	"github.com/stwalsh4118/underwriter/internal/report"
	"github.com/stwalsh4118/underwriter/internal/repository"
	"github.com/stwalsh4118/underwriter/internal/services"
)

var pdfUpload = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")

// providerFunc adapts a function to analysis.Provider.
type providerFunc func(ctx context.Context, req analysis.Request) (*models.AnalysisResult, error)

func (f providerFunc) Analyze(ctx context.Context, req analysis.Request) (*models.AnalysisResult, error) {
	return f(ctx, req)
}

// setupDealTestRouter wires the handlers to an in-memory service.
func setupDealTestRouter(provider analysis.Provider, maxUpload int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.Nop()

	service := services.NewUnderwritingService(
		repository.NewMemoryDealRepository(),
		repository.NewMemoryBuyBoxRepository(),
		provider,
		report.NewGenerator(),
		log,
	)
	deals := NewDealHandler(service, maxUpload)
	buyBox := NewBuyBoxHandler(service)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger(log))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/deals", deals.Create)
		v1.GET("/deals", deals.List)
		v1.GET("/deals/:id", deals.Get)
		v1.GET("/deals/:id/export/:format", deals.Export)
		v1.GET("/buy-box", buyBox.Get)
		v1.PUT("/buy-box", buyBox.Update)
	}

	return router
}

func defaultRouter() *gin.Engine {
	return setupDealTestRouter(analysis.NewStaticProvider(0), 1<<20)
}

// submission builds a multipart deal submission.
func submission(t *testing.T, fields map[string]string, files map[string][]byte) *http.Request {
	t.Helper()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, data := range files {
		part, err := w.CreateFormFile(name, name+".pdf")
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/deals", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func validSubmission(t *testing.T) *http.Request {
	return submission(t,
		map[string]string{"address": "123 Main St", "city": "Austin", "state": "TX"},
		map[string][]byte{FieldT12: pdfUpload, FieldRentRoll: pdfUpload},
	)
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) apierrors.ErrorDetail {
	t.Helper()
	var response apierrors.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	return response.Error
}

func createDeal(t *testing.T, router *gin.Engine) models.Deal {
	t.Helper()
	w := serve(router, validSubmission(t))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var deal models.Deal
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &deal))
	return deal
}

func TestDealHandler_Create(t *testing.T) {
	router := defaultRouter()

	deal := createDeal(t, router)

	assert.NotEqual(t, uuid.Nil, deal.ID)
	require.NotNil(t, deal.Result)
	assert.Equal(t, "123 Main St, Austin, TX", deal.Result.PropertyInfo.Address)
	assert.Equal(t, "123 Main St", deal.Property.Address)
	assert.Empty(t, deal.Failure)
}

func TestDealHandler_Create_Rejected(t *testing.T) {
	tests := []struct {
		name         string
		fields       map[string]string
		files        map[string][]byte
		expectedCode int
		errorCode    string
		detailKey    string
	}{
		{
			name:         "missing t12",
			fields:       map[string]string{"address": "123 Main St"},
			files:        map[string][]byte{FieldRentRoll: pdfUpload},
			expectedCode: http.StatusBadRequest,
			errorCode:    apierrors.ErrValidation,
			detailKey:    FieldT12,
		},
		{
			name:         "missing rent roll",
			fields:       map[string]string{"address": "123 Main St"},
			files:        map[string][]byte{FieldT12: pdfUpload},
			expectedCode: http.StatusBadRequest,
			errorCode:    apierrors.ErrValidation,
			detailKey:    FieldRentRoll,
		},
		{
			name:         "missing address",
			fields:       map[string]string{"city": "Austin"},
			files:        map[string][]byte{FieldT12: pdfUpload, FieldRentRoll: pdfUpload},
			expectedCode: http.StatusBadRequest,
			errorCode:    apierrors.ErrValidation,
			detailKey:    "address",
		},
		{
			name:         "csv upload",
			fields:       map[string]string{"address": "123 Main St"},
			files:        map[string][]byte{FieldT12: []byte("month,income\njan,1000\nfeb,1100\n"), FieldRentRoll: pdfUpload},
			expectedCode: http.StatusUnsupportedMediaType,
			errorCode:    apierrors.ErrUnsupportedMediaType,
			detailKey:    "reason",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := defaultRouter()

			w := serve(router, submission(t, tt.fields, tt.files))

			assert.Equal(t, tt.expectedCode, w.Code)
			detail := decodeError(t, w)
			assert.Equal(t, tt.errorCode, detail.Code)
			assert.Contains(t, detail.Details, tt.detailKey)

			// Rejected submissions are not recorded.
			list := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil))
			var history models.DealHistory
			require.NoError(t, json.Unmarshal(list.Body.Bytes(), &history))
			assert.Equal(t, 0, history.Total)
		})
	}
}

func TestDealHandler_Create_AddressRequired(t *testing.T) {
	files := map[string][]byte{FieldT12: pdfUpload, FieldRentRoll: pdfUpload}

	t.Run("absent", func(t *testing.T) {
		w := serve(defaultRouter(), submission(t, map[string]string{"city": "Austin"}, files))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		detail := decodeError(t, w)
		assert.Equal(t, apierrors.ErrValidation, detail.Code)
		assert.Equal(t, map[string]interface{}{"address": "This field is required"}, detail.Details)
	})

	t.Run("blank", func(t *testing.T) {
		w := serve(defaultRouter(), submission(t, map[string]string{"address": "   "}, files))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		detail := decodeError(t, w)
		assert.Equal(t, apierrors.ErrValidation, detail.Code)
		assert.Equal(t, "This field is required", detail.Details["address"])
	})
}

func TestDealHandler_Create_TooLarge(t *testing.T) {
	router := setupDealTestRouter(analysis.NewStaticProvider(0), 64)

	w := serve(router, validSubmission(t))

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, apierrors.ErrPayloadTooLarge, decodeError(t, w).Code)
}

func TestDealHandler_Create_AnalysisFailed(t *testing.T) {
	failing := providerFunc(func(context.Context, analysis.Request) (*models.AnalysisResult, error) {
		return nil, errors.New("model unavailable")
	})
	router := setupDealTestRouter(failing, 1<<20)

	w := serve(router, validSubmission(t))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, apierrors.ErrAnalysisFailed, detail.Code)
	dealID, ok := detail.Details["deal_id"].(string)
	require.True(t, ok)

	// The failed deal is kept in history but has nothing to export.
	get := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/"+dealID, nil))
	require.Equal(t, http.StatusOK, get.Code)
	var deal models.Deal
	require.NoError(t, json.Unmarshal(get.Body.Bytes(), &deal))
	assert.Nil(t, deal.Result)
	assert.Contains(t, deal.Failure, "model unavailable")

	export := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/"+dealID+"/export/pdf", nil))
	assert.Equal(t, http.StatusConflict, export.Code)
	assert.Equal(t, apierrors.ErrMissingResult, decodeError(t, export).Code)
}

func TestDealHandler_List(t *testing.T) {
	router := defaultRouter()
	first := createDeal(t, router)
	second := createDeal(t, router)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var history models.DealHistory
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &history))
	assert.Equal(t, 2, history.Total)
	assert.Equal(t, 2, history.Approved)
	require.Len(t, history.Deals, 2)

	ids := []uuid.UUID{history.Deals[0].ID, history.Deals[1].ID}
	assert.ElementsMatch(t, []uuid.UUID{first.ID, second.ID}, ids)
	for _, d := range history.Deals {
		assert.Equal(t, "pass", d.Status)
		require.NotNil(t, d.CocReturn)
	}
}

func TestDealHandler_Get(t *testing.T) {
	router := defaultRouter()
	deal := createDeal(t, router)

	t.Run("found", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/"+deal.ID.String(), nil))
		require.Equal(t, http.StatusOK, w.Code)

		var got models.Deal
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, deal.ID, got.ID)
	})

	t.Run("unknown id", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/"+uuid.NewString(), nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, apierrors.ErrNotFound, decodeError(t, w).Code)
	})

	t.Run("malformed id", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/not-a-uuid", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "not-a-uuid", decodeError(t, w).Details["id"])
	})
}

func TestDealHandler_Export(t *testing.T) {
	router := defaultRouter()
	deal := createDeal(t, router)

	tests := []struct {
		format      string
		contentType string
		prefix      string
		extension   string
	}{
		{"xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "PK", ".xlsx"},
		{"pdf", "application/pdf", "%PDF-", ".pdf"},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			url := fmt.Sprintf("/api/v1/deals/%s/export/%s", deal.ID, tt.format)
			w := serve(router, httptest.NewRequest(http.MethodGet, url, nil))

			require.Equal(t, http.StatusOK, w.Code, w.Body.String())
			assert.Equal(t, tt.contentType, w.Header().Get("Content-Type"))
			assert.True(t, strings.HasPrefix(w.Body.String(), tt.prefix))
			assert.Empty(t, w.Header().Get(middleware.ReportOverflowHeader))

			disposition := w.Header().Get("Content-Disposition")
			assert.True(t, strings.HasPrefix(disposition, "attachment;"), disposition)
			assert.Contains(t, disposition, "CRE_Analysis_123_Main_St_Austin_TX_")
			assert.True(t, strings.HasSuffix(disposition, tt.extension), disposition)
		})
	}

	t.Run("unsupported format", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/"+deal.ID.String()+"/export/docx", nil))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "docx", decodeError(t, w).Details["format"])
	})

	t.Run("unknown deal", func(t *testing.T) {
		w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/"+uuid.NewString()+"/export/xlsx", nil))
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestDealHandler_Export_Overflow(t *testing.T) {
	crowded := providerFunc(func(_ context.Context, req analysis.Request) (*models.AnalysisResult, error) {
		result := models.SampleResult(req.Property.FullAddress())
		for i := 0; i < 12; i++ {
			result.RiskFactors = append(result.RiskFactors, models.RiskFactor{
				Type:    models.RiskHigh,
				Message: fmt.Sprintf("finding %d", i),
			})
		}
		return result, nil
	})
	router := setupDealTestRouter(crowded, 1<<20)
	deal := createDeal(t, router)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/"+deal.ID.String()+"/export/pdf", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(middleware.ReportOverflowHeader))
}

func TestDealHandler_Export_MalformedResult(t *testing.T) {
	malformed := providerFunc(func(_ context.Context, req analysis.Request) (*models.AnalysisResult, error) {
		result := models.SampleResult(req.Property.FullAddress())
		result.Recommendation = "maybe"
		return result, nil
	})
	router := setupDealTestRouter(malformed, 1<<20)
	deal := createDeal(t, router)

	w := serve(router, httptest.NewRequest(http.MethodGet, "/api/v1/deals/"+deal.ID.String()+"/export/xlsx", nil))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, apierrors.ErrMalformedResult, detail.Code)
	assert.Equal(t, "recommendation", detail.Details["field"])
	assert.Equal(t, "spreadsheet", detail.Details["export"])
}

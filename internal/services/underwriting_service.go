package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/stwalsh4118/underwriter/internal/analysis"
	"github.com/stwalsh4118/underwriter/internal/logger"
	"github.com/stwalsh4118/underwriter/internal/models"
	"github.com/stwalsh4118/underwriter/internal/report"
	"github.com/stwalsh4118/underwriter/internal/repository"
)

// Service-level errors
var (
	ErrDealNotFound    = errors.New("deal not found")
	ErrInvalidBuyBox   = errors.New("invalid buy box")
	ErrInvalidProperty = errors.New("invalid property")
)

// AnalyzeInput is a deal submission: the property and its two source documents.
type AnalyzeInput struct {
	Property models.PropertyInput
	T12      models.Document
	RentRoll models.Document
}

// UnderwritingService defines the deal workflow: intake, history, exports
// and screening criteria.
type UnderwritingService interface {
	// Analyze checks the uploads, runs the analysis provider and records the
	// deal. When the provider fails the deal is still recorded, with its
	// failure message, and returned together with an error wrapping
	// analysis.ErrAnalysisFailed.
	Analyze(ctx context.Context, in AnalyzeInput) (*models.Deal, error)

	// GetDeal returns ErrDealNotFound for unknown IDs.
	GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error)

	// ListDeals returns the deal history, newest first, with approval counts.
	ListDeals(ctx context.Context) (*models.DealHistory, error)

	// ExportSpreadsheet renders the deal's analysis as a workbook.
	// Returns report.ErrMissingResult if the deal has no completed analysis.
	ExportSpreadsheet(ctx context.Context, id uuid.UUID) (*report.Artifact, error)

	// ExportDocument renders the deal's analysis as a one-page PDF.
	// Returns report.ErrMissingResult if the deal has no completed analysis.
	ExportDocument(ctx context.Context, id uuid.UUID) (*report.Artifact, error)

	// GetBuyBox returns the saved criteria, or the defaults if none were saved.
	GetBuyBox(ctx context.Context) (models.BuyBox, error)

	// UpdateBuyBox validates and saves new criteria.
	// Returns ErrInvalidBuyBox when a value is out of range.
	UpdateBuyBox(ctx context.Context, box models.BuyBox) (models.BuyBox, error)
}

// underwritingService is the concrete implementation of UnderwritingService.
type underwritingService struct {
	deals     repository.DealRepository
	buyBoxes  repository.BuyBoxRepository
	provider  analysis.Provider
	generator *report.Generator
	log       *logger.Logger
	now       func() time.Time
}

// NewUnderwritingService creates a new instance of UnderwritingService.
func NewUnderwritingService(
	deals repository.DealRepository,
	buyBoxes repository.BuyBoxRepository,
	provider analysis.Provider,
	generator *report.Generator,
	log *logger.Logger,
) UnderwritingService {
	return &underwritingService{
		deals:     deals,
		buyBoxes:  buyBoxes,
		provider:  provider,
		generator: generator,
		log:       log,
		now:       time.Now,
	}
}

func (s *underwritingService) Analyze(ctx context.Context, in AnalyzeInput) (*models.Deal, error) {
	if strings.TrimSpace(in.Property.Address) == "" {
		return nil, fmt.Errorf("%w: address is required", ErrInvalidProperty)
	}

	t12, err := checkDocument(in.T12, models.DocumentT12)
	if err != nil {
		s.log.Warn("Rejected T12 upload", map[string]interface{}{
			"filename": in.T12.Filename,
			"error":    err.Error(),
		})
		return nil, err
	}
	rentRoll, err := checkDocument(in.RentRoll, models.DocumentRentRoll)
	if err != nil {
		s.log.Warn("Rejected rent roll upload", map[string]interface{}{
			"filename": in.RentRoll.Filename,
			"error":    err.Error(),
		})
		return nil, err
	}

	buyBox, err := s.GetBuyBox(ctx)
	if err != nil {
		return nil, err
	}

	deal := &models.Deal{
		ID:        uuid.New(),
		Property:  in.Property,
		CreatedAt: s.now().UTC(),
	}

	s.log.Info("Starting deal analysis", map[string]interface{}{
		"deal_id":   deal.ID.String(),
		"address":   in.Property.FullAddress(),
		"t12":       t12.MediaType,
		"rent_roll": rentRoll.MediaType,
	})

	result, analyzeErr := s.provider.Analyze(ctx, analysis.Request{
		Property: in.Property,
		T12:      t12,
		RentRoll: rentRoll,
		BuyBox:   buyBox,
	})
	if analyzeErr == nil && result == nil {
		analyzeErr = errors.New("provider returned no result")
	}

	if analyzeErr != nil {
		if !errors.Is(analyzeErr, analysis.ErrAnalysisFailed) {
			analyzeErr = fmt.Errorf("%w: %w", analysis.ErrAnalysisFailed, analyzeErr)
		}
		deal.Failure = analyzeErr.Error()
		s.log.Error("Deal analysis failed", analyzeErr, map[string]interface{}{
			"deal_id": deal.ID.String(),
		})

		// Record the failure in history even when the request was cancelled.
		if err := s.deals.Save(context.WithoutCancel(ctx), deal); err != nil {
			s.log.Error("Failed to record failed deal", err, map[string]interface{}{
				"deal_id": deal.ID.String(),
			})
			return nil, fmt.Errorf("failed to save deal: %w", err)
		}
		return deal, analyzeErr
	}

	deal.Result = result
	if err := s.deals.Save(ctx, deal); err != nil {
		s.log.Error("Failed to save deal", err, map[string]interface{}{
			"deal_id": deal.ID.String(),
		})
		return nil, fmt.Errorf("failed to save deal: %w", err)
	}

	s.log.Info("Deal analysis completed", map[string]interface{}{
		"deal_id":        deal.ID.String(),
		"recommendation": string(result.Recommendation),
		"confidence":     result.ConfidenceScore,
		"risk_factors":   len(result.RiskFactors),
	})

	return deal, nil
}

// checkDocument sniffs an upload and records its detected media type.
func checkDocument(doc models.Document, kind models.DocumentKind) (models.Document, error) {
	mediaType, err := analysis.DetectMediaType(doc.Data)
	if err != nil {
		return doc, fmt.Errorf("%s: %w", kind, err)
	}
	doc.Kind = kind
	doc.MediaType = mediaType
	return doc, nil
}

func (s *underwritingService) GetDeal(ctx context.Context, id uuid.UUID) (*models.Deal, error) {
	deal, err := s.deals.FindByID(ctx, id)
	if err != nil {
		s.log.Error("Failed to load deal", err, map[string]interface{}{
			"deal_id": id.String(),
		})
		return nil, fmt.Errorf("failed to load deal: %w", err)
	}

	// Repository returns nil, nil when no deal found - transform to domain error
	if deal == nil {
		s.log.Debug("Deal not found", map[string]interface{}{
			"deal_id": id.String(),
		})
		return nil, ErrDealNotFound
	}

	return deal, nil
}

func (s *underwritingService) ListDeals(ctx context.Context) (*models.DealHistory, error) {
	deals, err := s.deals.List(ctx)
	if err != nil {
		s.log.Error("Failed to list deals", err, nil)
		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	history := models.NewDealHistory(deals)
	s.log.Debug("Listed deals", map[string]interface{}{
		"total":    history.Total,
		"approved": history.Approved,
	})
	return history, nil
}

func (s *underwritingService) ExportSpreadsheet(ctx context.Context, id uuid.UUID) (*report.Artifact, error) {
	return s.export(ctx, id, report.FormatSpreadsheet)
}

func (s *underwritingService) ExportDocument(ctx context.Context, id uuid.UUID) (*report.Artifact, error) {
	return s.export(ctx, id, report.FormatDocument)
}

func (s *underwritingService) export(ctx context.Context, id uuid.UUID, format report.Format) (*report.Artifact, error) {
	deal, err := s.GetDeal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !deal.Completed() {
		s.log.Warn("Export requested for deal without analysis", map[string]interface{}{
			"deal_id": id.String(),
			"format":  string(format),
		})
		return nil, report.ErrMissingResult
	}

	artifact, err := s.generator.Render(format, deal.Result)
	if err != nil {
		var fieldErr *report.FieldError
		if errors.As(err, &fieldErr) {
			s.log.Warn("Analysis result failed validation", map[string]interface{}{
				"deal_id": id.String(),
				"format":  string(format),
				"field":   fieldErr.Field,
				"reason":  fieldErr.Reason,
			})
		} else {
			s.log.Error("Export failed", err, map[string]interface{}{
				"deal_id": id.String(),
				"format":  string(format),
			})
		}
		return nil, err
	}

	if artifact.Overflow {
		s.log.Warn("Report content overflowed the page", map[string]interface{}{
			"deal_id":      id.String(),
			"risk_factors": len(deal.Result.RiskFactors),
		})
	}

	s.log.Info("Report exported", map[string]interface{}{
		"deal_id":  id.String(),
		"format":   string(format),
		"filename": artifact.Filename,
		"bytes":    len(artifact.Data),
	})

	return artifact, nil
}

func (s *underwritingService) GetBuyBox(ctx context.Context) (models.BuyBox, error) {
	box, err := s.buyBoxes.Get(ctx)
	if err != nil {
		s.log.Error("Failed to load buy box", err, nil)
		return models.BuyBox{}, fmt.Errorf("failed to load buy box: %w", err)
	}
	if box == nil {
		return models.DefaultBuyBox(), nil
	}
	return *box, nil
}

func (s *underwritingService) UpdateBuyBox(ctx context.Context, box models.BuyBox) (models.BuyBox, error) {
	if err := box.Validate(); err != nil {
		s.log.Warn("Invalid buy box provided", map[string]interface{}{
			"error": err.Error(),
		})
		return models.BuyBox{}, fmt.Errorf("%w: %w", ErrInvalidBuyBox, err)
	}

	if err := s.buyBoxes.Save(ctx, box); err != nil {
		s.log.Error("Failed to save buy box", err, nil)
		return models.BuyBox{}, fmt.Errorf("failed to save buy box: %w", err)
	}

	s.log.Info("Buy box updated", map[string]interface{}{
		"min_coc_return":     box.MinCocReturn,
		"min_cap_rate":       box.MinCapRate,
		"max_year_built":     box.MaxYearBuilt,
		"target_hold_period": box.TargetHoldPeriod,
	})
	return box, nil
}

// Package analysis defines the boundary to the underwriting analysis engine.
// Document parsing and financial modeling live behind Provider; this service
// only checks uploads and hands them over.
package analysis

import (
	"context"
	"errors"
	"time"

	"github.com/stwalsh4118/underwriter/internal/models"
)

var (
	// ErrAnalysisFailed wraps any failure reported by a provider.
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrUnsupportedDocument is returned for uploads that are not PDF or Excel files.
	ErrUnsupportedDocument = errors.New("unsupported document type")
)

// Request is everything a provider receives for one deal.
type Request struct {
	Property models.PropertyInput
	T12      models.Document
	RentRoll models.Document
	BuyBox   models.BuyBox
}

// Provider produces an analysis result for a property and its documents.
type Provider interface {
	Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error)
}

// StaticProvider returns the reference sample result after Delay. The
// property address from the request replaces the sample address when given.
// The buy box is accepted but does not influence the result.
type StaticProvider struct {
	Delay time.Duration
}

// NewStaticProvider creates a StaticProvider that waits delay before answering.
func NewStaticProvider(delay time.Duration) *StaticProvider {
	return &StaticProvider{Delay: delay}
}

// Analyze waits for the configured delay or until ctx is done.
func (p *StaticProvider) Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	if p.Delay > 0 {
		timer := time.NewTimer(p.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, errors.Join(ErrAnalysisFailed, ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return nil, errors.Join(ErrAnalysisFailed, err)
	}

	return models.SampleResult(req.Property.FullAddress()), nil
}

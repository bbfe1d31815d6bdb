package models

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestAnalysisResultValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(r *AnalysisResult)
		wantField string
	}{
		{
			name:   "sample result is valid",
			mutate: func(r *AnalysisResult) {},
		},
		{
			name:      "NaN cap rate",
			mutate:    func(r *AnalysisResult) { r.Financials.CapRate = math.NaN() },
			wantField: "financials.capRate",
		},
		{
			name:      "infinite purchase price",
			mutate:    func(r *AnalysisResult) { r.Financials.PurchasePrice = math.Inf(1) },
			wantField: "financials.purchasePrice",
		},
		{
			name:      "infinite median income",
			mutate:    func(r *AnalysisResult) { r.MarketData.MedianIncome = math.Inf(-1) },
			wantField: "marketData.medianIncome",
		},
		{
			name:      "empty address",
			mutate:    func(r *AnalysisResult) { r.PropertyInfo.Address = "" },
			wantField: "propertyInfo.address",
		},
		{
			name:      "empty risk message",
			mutate:    func(r *AnalysisResult) { r.RiskFactors[1].Message = "" },
			wantField: "riskFactors[1].message",
		},
		{
			name:      "unknown risk level",
			mutate:    func(r *AnalysisResult) { r.RiskFactors[0].Type = "severe" },
			wantField: "riskFactors[0].type",
		},
		{
			name:      "unknown recommendation",
			mutate:    func(r *AnalysisResult) { r.Recommendation = "maybe" },
			wantField: "recommendation",
		},
		{
			name: "out of range percentages pass through",
			mutate: func(r *AnalysisResult) {
				r.Financials.CapRate = 250
				r.Financials.CocReturn = -12
				r.ConfidenceScore = 140
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := SampleResult("")
			tt.mutate(r)

			err := r.Validate()
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			var invalid *InvalidField
			if !errors.As(err, &invalid) {
				t.Fatalf("expected *InvalidField, got %v", err)
			}
			if invalid.Field != tt.wantField {
				t.Errorf("expected field %s, got %s", tt.wantField, invalid.Field)
			}
		})
	}
}

func TestBuyBoxValidate(t *testing.T) {
	valid := DefaultBuyBox()
	if err := valid.Validate(); err != nil {
		t.Fatalf("default buy box should be valid: %v", err)
	}

	bad := DefaultBuyBox()
	bad.TargetHoldPeriod = 0
	err := bad.Validate()

	var invalid *InvalidField
	if !errors.As(err, &invalid) {
		t.Fatalf("expected *InvalidField, got %v", err)
	}
	if invalid.Field != "targetHoldPeriod" {
		t.Errorf("expected targetHoldPeriod, got %s", invalid.Field)
	}
}

func TestRiskLevelFormatting(t *testing.T) {
	if got := RiskMedium.Title(); got != "Medium" {
		t.Errorf("expected Medium, got %s", got)
	}
	if got := RiskHigh.Upper(); got != "HIGH" {
		t.Errorf("expected HIGH, got %s", got)
	}
	if got := RiskLevel("").Title(); got != "" {
		t.Errorf("expected empty title, got %q", got)
	}
}

func TestPropertyInputFullAddress(t *testing.T) {
	tests := []struct {
		input PropertyInput
		want  string
	}{
		{PropertyInput{Address: "1234 Main St", City: "Austin", State: "TX"}, "1234 Main St, Austin, TX"},
		{PropertyInput{Address: " 1234 Main St ", State: "TX"}, "1234 Main St, TX"},
		{PropertyInput{}, ""},
	}

	for _, tt := range tests {
		if got := tt.input.FullAddress(); got != tt.want {
			t.Errorf("FullAddress() = %q, want %q", got, tt.want)
		}
	}
}

func TestNewDealHistory(t *testing.T) {
	created := time.Date(2025, 7, 15, 9, 30, 0, 0, time.UTC)

	failing := SampleResult("5678 Oak Ave, Dallas, TX")
	failing.Recommendation = RecommendationFail

	deals := []Deal{
		{ID: uuid.New(), CreatedAt: created, Result: SampleResult("1234 Main St, Austin, TX")},
		{ID: uuid.New(), CreatedAt: created, Result: failing},
		{ID: uuid.New(), CreatedAt: created, Property: PropertyInput{Address: "9101 Pine Rd"}, Failure: "provider timeout"},
	}

	h := NewDealHistory(deals)

	if h.Total != 3 {
		t.Errorf("expected total 3, got %d", h.Total)
	}
	if h.Approved != 1 {
		t.Errorf("expected 1 approved, got %d", h.Approved)
	}
	if h.Deals[0].Date != "2025-07-15" {
		t.Errorf("expected date 2025-07-15, got %s", h.Deals[0].Date)
	}
	if h.Deals[1].Status != "fail" {
		t.Errorf("expected fail status, got %s", h.Deals[1].Status)
	}
	if h.Deals[2].Status != DealStatusFailed || h.Deals[2].CocReturn != nil {
		t.Errorf("expected failed deal without CoC, got %+v", h.Deals[2])
	}
	if h.Deals[2].Address != "9101 Pine Rd" {
		t.Errorf("expected submitted address, got %s", h.Deals[2].Address)
	}
}

package models

import "strings"

// RiskLevel is the ordinal severity of a risk factor.
type RiskLevel string

// Risk levels in increasing severity.
const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Title returns the level with its first letter capitalized ("Low").
func (l RiskLevel) Title() string {
	s := string(l)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Upper returns the level upper-cased ("LOW").
func (l RiskLevel) Upper() string {
	return strings.ToUpper(string(l))
}

// Recommendation is the underwriting verdict for a deal.
type Recommendation string

// Recommendation values.
const (
	RecommendationPass Recommendation = "pass"
	RecommendationFail Recommendation = "fail"
)

// Upper returns the recommendation upper-cased ("PASS").
func (r Recommendation) Upper() string {
	return strings.ToUpper(string(r))
}

// PropertyInfo describes the physical asset being underwritten.
type PropertyInfo struct {
	Address    string `json:"address" yaml:"address" validate:"required"`
	LotSize    string `json:"lotSize" yaml:"lotSize"`
	Units      int    `json:"units" yaml:"units"`
	YearBuilt  int    `json:"yearBuilt" yaml:"yearBuilt"`
	SquareFeet int    `json:"squareFeet" yaml:"squareFeet"`
}

// Financials holds the deal-level figures. Currency amounts are whole
// currency units; CapRate and CocReturn are nominal percentages.
type Financials struct {
	GrossRent          float64 `json:"grossRent" yaml:"grossRent" validate:"finite"`
	NetOperatingIncome float64 `json:"netOperatingIncome" yaml:"netOperatingIncome" validate:"finite"`
	PurchasePrice      float64 `json:"purchasePrice" yaml:"purchasePrice" validate:"finite"`
	CashRequired       float64 `json:"cashRequired" yaml:"cashRequired" validate:"finite"`
	CapRate            float64 `json:"capRate" yaml:"capRate" validate:"finite"`
	CocReturn          float64 `json:"cocReturn" yaml:"cocReturn" validate:"finite"`
	DSCR               float64 `json:"dscr" yaml:"dscr" validate:"finite"`
}

// MarketData holds submarket context for the property.
type MarketData struct {
	CrimeScore    string  `json:"crimeScore" yaml:"crimeScore"`
	AvgRentPSF    float64 `json:"avgRentPsf" yaml:"avgRentPsf" validate:"finite"`
	MarketCapRate float64 `json:"marketCapRate" yaml:"marketCapRate" validate:"finite"`
	SchoolRating  float64 `json:"schoolRating" yaml:"schoolRating" validate:"finite"`
	WalkScore     float64 `json:"walkScore" yaml:"walkScore" validate:"finite"`
	MedianIncome  float64 `json:"medianIncome" yaml:"medianIncome" validate:"finite"`
}

// RiskFactor is a single finding raised by the analysis.
type RiskFactor struct {
	Type    RiskLevel `json:"type" yaml:"type" validate:"oneof=low medium high"`
	Message string    `json:"message" yaml:"message" validate:"required"`
}

// AnalysisResult is the output of one underwriting run. It is never mutated
// after the provider returns it; renderers only read it.
//
// Recommendation and RiskFactors are set independently by the provider and are
// not reconciled against each other.
type AnalysisResult struct {
	PropertyInfo    PropertyInfo   `json:"propertyInfo" yaml:"propertyInfo"`
	Financials      Financials     `json:"financials" yaml:"financials"`
	MarketData      MarketData     `json:"marketData" yaml:"marketData"`
	RiskFactors     []RiskFactor   `json:"riskFactors" yaml:"riskFactors" validate:"dive"`
	Recommendation  Recommendation `json:"recommendation" yaml:"recommendation" validate:"oneof=pass fail"`
	ConfidenceScore int            `json:"confidenceScore" yaml:"confidenceScore"`
}

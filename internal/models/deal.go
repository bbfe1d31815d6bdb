package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// PropertyInput identifies the property submitted for underwriting.
type PropertyInput struct {
	Address string `json:"address" form:"address" binding:"required"`
	City    string `json:"city" form:"city"`
	State   string `json:"state" form:"state"`
}

// FullAddress joins the non-empty address parts with ", ".
func (p PropertyInput) FullAddress() string {
	parts := make([]string, 0, 3)
	for _, s := range []string{p.Address, p.City, p.State} {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, ", ")
}

// DocumentKind names the two documents a deal is underwritten from.
type DocumentKind string

// Document kinds.
const (
	DocumentT12      DocumentKind = "t12"
	DocumentRentRoll DocumentKind = "rent_roll"
)

// Document is an uploaded source document. Its contents are opaque to this
// service and are only handed to the analysis provider.
type Document struct {
	Kind      DocumentKind
	Filename  string
	MediaType string
	Data      []byte
}

// BuyBox holds the investment screening criteria for new deals.
type BuyBox struct {
	MinCocReturn     float64 `json:"minCocReturn" binding:"gte=0,lte=100" validate:"finite,gte=0,lte=100"`
	MinCapRate       float64 `json:"minCapRate" binding:"gte=0,lte=100" validate:"finite,gte=0,lte=100"`
	MaxYearBuilt     int     `json:"maxYearBuilt" binding:"gte=1800,lte=2100" validate:"gte=1800,lte=2100"`
	TargetHoldPeriod int     `json:"targetHoldPeriod" binding:"gte=1,lte=50" validate:"gte=1,lte=50"`
}

// DefaultBuyBox returns the criteria used until the user saves their own.
func DefaultBuyBox() BuyBox {
	return BuyBox{
		MinCocReturn:     8,
		MinCapRate:       6,
		MaxYearBuilt:     1990,
		TargetHoldPeriod: 5,
	}
}

// DealStatusFailed marks a deal whose analysis did not complete.
const DealStatusFailed = "failed"

// Deal is one underwriting run. Result is nil when the analysis failed; the
// deal is still kept in history with the failure message.
type Deal struct {
	CreatedAt time.Time       `json:"createdAt"`
	Result    *AnalysisResult `json:"result,omitempty"`
	Property  PropertyInput   `json:"property"`
	Failure   string          `json:"failure,omitempty"`
	ID        uuid.UUID       `json:"id"`
}

// Completed reports whether the deal has an analysis result to export.
func (d *Deal) Completed() bool {
	return d != nil && d.Result != nil
}

// Status is the recommendation of a completed deal, or "failed".
func (d *Deal) Status() string {
	if !d.Completed() {
		return DealStatusFailed
	}
	return string(d.Result.Recommendation)
}

// Address prefers the analyzed property address over the submitted one.
func (d *Deal) Address() string {
	if d.Completed() && d.Result.PropertyInfo.Address != "" {
		return d.Result.PropertyInfo.Address
	}
	return d.Property.FullAddress()
}

// DealSummary is one row of the deal history.
type DealSummary struct {
	ID        uuid.UUID `json:"id"`
	Address   string    `json:"address"`
	Date      string    `json:"date"`
	Status    string    `json:"status"`
	CocReturn *float64  `json:"cocReturn,omitempty"`
}

// Summarize converts a deal to its history row.
func (d *Deal) Summarize() DealSummary {
	s := DealSummary{
		ID:      d.ID,
		Address: d.Address(),
		Date:    d.CreatedAt.Format("2006-01-02"),
		Status:  d.Status(),
	}
	if d.Completed() {
		coc := d.Result.Financials.CocReturn
		s.CocReturn = &coc
	}
	return s
}

// DealHistory is the list of past deals, newest first.
type DealHistory struct {
	Deals    []DealSummary `json:"deals"`
	Approved int           `json:"approved"`
	Total    int           `json:"total"`
}

// NewDealHistory summarizes deals and counts the approved ones.
func NewDealHistory(deals []Deal) *DealHistory {
	h := &DealHistory{
		Deals: make([]DealSummary, 0, len(deals)),
		Total: len(deals),
	}
	for i := range deals {
		summary := deals[i].Summarize()
		if summary.Status == string(RecommendationPass) {
			h.Approved++
		}
		h.Deals = append(h.Deals, summary)
	}
	return h
}

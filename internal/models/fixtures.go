package models

// DefaultSampleAddress is used by the sample result when no address is given.
const DefaultSampleAddress = "123 Sample Street, Austin, TX 78701"

// SampleResult returns the reference analysis result for a 48-unit Austin
// multifamily deal. The fixture provider and tests both build on it.
func SampleResult(address string) *AnalysisResult {
	if address == "" {
		address = DefaultSampleAddress
	}

	return &AnalysisResult{
		PropertyInfo: PropertyInfo{
			Address:    address,
			Units:      48,
			YearBuilt:  1995,
			SquareFeet: 52000,
			LotSize:    "2.1 acres",
		},
		Financials: Financials{
			GrossRent:          468000,
			NetOperatingIncome: 350400,
			PurchasePrice:      5850000,
			CapRate:            6.2,
			CocReturn:          11.4,
			DSCR:               1.35,
			CashRequired:       1755000,
		},
		MarketData: MarketData{
			AvgRentPSF:    1.85,
			MarketCapRate: 5.8,
			CrimeScore:    "B+",
			SchoolRating:  8.2,
			WalkScore:     72,
			MedianIncome:  68500,
		},
		RiskFactors: []RiskFactor{
			{Type: RiskLow, Message: "Property built after minimum year requirement"},
			{Type: RiskMedium, Message: "Slightly below market rent - opportunity for growth"},
			{Type: RiskLow, Message: "Strong school district supports tenant demand"},
		},
		Recommendation:  RecommendationPass,
		ConfidenceScore: 87,
	}
}

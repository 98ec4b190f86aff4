package dto

// FundamentalSnapshot is financial-statement data for one ticker. Every
// field is individually optional: a ratio the source could not provide is
// unavailable, never defaulted to zero.
type FundamentalSnapshot struct {
	// Valuation
	PERatio  Float `json:"pe_ratio"`
	PBRatio  Float `json:"pb_ratio"`
	EVEBITDA Float `json:"ev_ebitda"`
	// Profitability
	ROE             Float `json:"roe"`
	ROA             Float `json:"roa"`
	GrossMargin     Float `json:"gross_margin"`
	OperatingMargin Float `json:"operating_margin"`
	// Leverage
	DebtToEquity     Float `json:"debt_to_equity"`
	InterestCoverage Float `json:"interest_coverage"`
	// Growth
	RevenueGrowth Float `json:"revenue_growth"`
	EPSGrowth     Float `json:"eps_growth"`
}

// Empty reports whether the snapshot carries no usable ratio at all.
func (s FundamentalSnapshot) Empty() bool {
	for _, f := range []Float{
		s.PERatio, s.PBRatio, s.EVEBITDA,
		s.ROE, s.ROA, s.GrossMargin, s.OperatingMargin,
		s.DebtToEquity, s.InterestCoverage,
		s.RevenueGrowth, s.EPSGrowth,
	} {
		if f.Valid {
			return false
		}
	}
	return true
}

// FundamentalScore is the 0-100 composite health score with per-category
// sub-scores. A category without any source ratio is unavailable and
// excluded from the composite's denominator.
type FundamentalScore struct {
	Composite     Float `json:"composite"`
	Valuation     Float `json:"valuation"`
	Profitability Float `json:"profitability"`
	Leverage      Float `json:"leverage"`
	Growth        Float `json:"growth"`
}

package dto

// Wire shapes for the Yahoo Finance endpoints. Only the fields the
// repositories read are declared.

type YahooChartResponse struct {
	Chart struct {
		Result []YahooChartResult `json:"result"`
		Error  interface{}        `json:"error"`
	} `json:"chart"`
}

type YahooChartResult struct {
	Meta struct {
		Symbol             string  `json:"symbol"`
		RegularMarketPrice float64 `json:"regularMarketPrice"`
	} `json:"meta"`
	Timestamp  []int64 `json:"timestamp"`
	Indicators struct {
		Quote []YahooQuote `json:"quote"`
	} `json:"indicators"`
}

type YahooQuote struct {
	Open   []float64 `json:"open"`
	High   []float64 `json:"high"`
	Low    []float64 `json:"low"`
	Close  []float64 `json:"close"`
	Volume []int64   `json:"volume"`
}

// YahooValue is Yahoo's {raw, fmt} number wrapper. A nil *YahooValue means
// the field was absent from the payload.
type YahooValue struct {
	Raw float64 `json:"raw"`
	Fmt string  `json:"fmt"`
}

// Float converts an optional wire value to a Float.
func (v *YahooValue) Float() Float {
	if v == nil {
		return Undefined()
	}
	return ValidFloat(v.Raw)
}

type YahooQuoteSummaryResponse struct {
	QuoteSummary struct {
		Result []YahooQuoteSummaryResult `json:"result"`
		Error  interface{}               `json:"error"`
	} `json:"quoteSummary"`
}

type YahooQuoteSummaryResult struct {
	SummaryDetail struct {
		TrailingPE *YahooValue `json:"trailingPE"`
	} `json:"summaryDetail"`
	DefaultKeyStatistics struct {
		PriceToBook        *YahooValue `json:"priceToBook"`
		EnterpriseToEbitda *YahooValue `json:"enterpriseToEbitda"`
	} `json:"defaultKeyStatistics"`
	FinancialData struct {
		ReturnOnEquity   *YahooValue `json:"returnOnEquity"`
		ReturnOnAssets   *YahooValue `json:"returnOnAssets"`
		GrossMargins     *YahooValue `json:"grossMargins"`
		OperatingMargins *YahooValue `json:"operatingMargins"`
		DebtToEquity     *YahooValue `json:"debtToEquity"`
		RevenueGrowth    *YahooValue `json:"revenueGrowth"`
		EarningsGrowth   *YahooValue `json:"earningsGrowth"`
	} `json:"financialData"`
}

type YahooSearchResponse struct {
	News []YahooNewsItem `json:"news"`
}

type YahooNewsItem struct {
	Title               string `json:"title"`
	Publisher           string `json:"publisher"`
	Link                string `json:"link"`
	ProviderPublishTime int64  `json:"providerPublishTime"`
}

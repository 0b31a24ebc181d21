package models

// StatementPeriod selects annual or quarterly reporting periods.
type StatementPeriod string

const (
	PeriodAnnual    StatementPeriod = "annual"
	PeriodQuarterly StatementPeriod = "quarterly"
)

// StatementRow is one reporting period of a financial statement. Only the
// line items common across providers are normalized; everything else stays
// in the provider payload.
type StatementRow struct {
	FiscalDate        string  `json:"fiscal_date"` // YYYY-MM-DD
	Currency          string  `json:"currency,omitempty"`
	Revenue           float64 `json:"revenue,omitempty"`
	GrossProfit       float64 `json:"gross_profit,omitempty"`
	OperatingIncome   float64 `json:"operating_income,omitempty"`
	NetIncome         float64 `json:"net_income,omitempty"`
	EPS               float64 `json:"eps,omitempty"`
	TotalAssets       float64 `json:"total_assets,omitempty"`
	TotalLiabilities  float64 `json:"total_liabilities,omitempty"`
	TotalEquity       float64 `json:"total_equity,omitempty"`
	OperatingCashFlow float64 `json:"operating_cash_flow,omitempty"`
	FreeCashFlow      float64 `json:"free_cash_flow,omitempty"`
}

// FinancialStatement is a normalized statement of one type for a symbol.
type FinancialStatement struct {
	Ticker string          `json:"ticker"`
	Kind   string          `json:"kind"` // "income", "balance", "cashflow"
	Period StatementPeriod `json:"period"`
	Rows   []StatementRow  `json:"rows"` // most recent first
}

// RatioRow is one reporting period of financial ratios: liquidity,
// profitability, and leverage.
type RatioRow struct {
	FiscalDate      string  `json:"fiscal_date"` // YYYY-MM-DD
	CurrentRatio    float64 `json:"current_ratio,omitempty"`
	QuickRatio      float64 `json:"quick_ratio,omitempty"`
	GrossMargin     float64 `json:"gross_margin,omitempty"`
	OperatingMargin float64 `json:"operating_margin,omitempty"`
	NetMargin       float64 `json:"net_margin,omitempty"`
	ROA             float64 `json:"roa,omitempty"`
	ROE             float64 `json:"roe,omitempty"`
	DebtToEquity    float64 `json:"debt_to_equity,omitempty"`
}

// FinancialRatios is the normalized ratio history for a symbol.
type FinancialRatios struct {
	Ticker string          `json:"ticker"`
	Period StatementPeriod `json:"period"`
	Rows   []RatioRow      `json:"rows"` // most recent first
}

// KeyMetrics holds a small set of valuation and health ratios.
type KeyMetrics struct {
	Ticker        string  `json:"ticker"`
	FiscalDate    string  `json:"fiscal_date,omitempty"`
	PERatio       float64 `json:"pe_ratio,omitempty"`
	PBRatio       float64 `json:"pb_ratio,omitempty"`
	DebtToEquity  float64 `json:"debt_to_equity,omitempty"`
	CurrentRatio  float64 `json:"current_ratio,omitempty"`
	ROE           float64 `json:"roe,omitempty"`
	DividendYield float64 `json:"dividend_yield,omitempty"`
}

package alphavantage

// --- Alpha Vantage API response types ---
// Numeric fields arrive as strings and are parsed with parseFloat/parseInt.

// avGlobalQuote is the GLOBAL_QUOTE response envelope.
type avGlobalQuote struct {
	GlobalQuote struct {
		Symbol           string `json:"01. symbol"`
		Open             string `json:"02. open"`
		High             string `json:"03. high"`
		Low              string `json:"04. low"`
		Price            string `json:"05. price"`
		Volume           string `json:"06. volume"`
		LatestTradingDay string `json:"07. latest trading day"`
		PreviousClose    string `json:"08. previous close"`
		Change           string `json:"09. change"`
		ChangePercent    string `json:"10. change percent"` // e.g. "0.9123%"
	} `json:"Global Quote"`
}

// avOverview is the OVERVIEW response (flat object).
type avOverview struct {
	Symbol               string `json:"Symbol"`
	AssetType            string `json:"AssetType"`
	Name                 string `json:"Name"`
	Description          string `json:"Description"`
	Exchange             string `json:"Exchange"`
	Currency             string `json:"Currency"`
	Country              string `json:"Country"`
	Sector               string `json:"Sector"`
	Industry             string `json:"Industry"`
	MarketCapitalization string `json:"MarketCapitalization"`
	PERatio              string `json:"PERatio"`
	Beta                 string `json:"Beta"`
	OfficialSite         string `json:"OfficialSite"`
}

// avSearch is the SYMBOL_SEARCH response envelope.
type avSearch struct {
	BestMatches []struct {
		Symbol     string `json:"1. symbol"`
		Name       string `json:"2. name"`
		Type       string `json:"3. type"`
		Region     string `json:"4. region"`
		Currency   string `json:"8. currency"`
		MatchScore string `json:"9. matchScore"`
	} `json:"bestMatches"`
}

// avStatementReport is one reporting period shared by the three statement
// endpoints; unused fields decode to empty strings.
type avStatementReport struct {
	FiscalDateEnding       string `json:"fiscalDateEnding"`
	ReportedCurrency       string `json:"reportedCurrency"`
	TotalRevenue           string `json:"totalRevenue"`
	GrossProfit            string `json:"grossProfit"`
	OperatingIncome        string `json:"operatingIncome"`
	NetIncome              string `json:"netIncome"`
	TotalAssets            string `json:"totalAssets"`
	TotalLiabilities       string `json:"totalLiabilities"`
	TotalShareholderEquity string `json:"totalShareholderEquity"`
	OperatingCashflow      string `json:"operatingCashflow"`
}

// avStatements is the INCOME_STATEMENT / BALANCE_SHEET / CASH_FLOW envelope.
type avStatements struct {
	Symbol           string              `json:"symbol"`
	AnnualReports    []avStatementReport `json:"annualReports"`
	QuarterlyReports []avStatementReport `json:"quarterlyReports"`
}

// avDailyBar is one date entry in the TIME_SERIES_DAILY_ADJUSTED map.
type avDailyBar struct {
	Open          string `json:"1. open"`
	High          string `json:"2. high"`
	Low           string `json:"3. low"`
	Close         string `json:"4. close"`
	AdjustedClose string `json:"5. adjusted close"`
	Volume        string `json:"6. volume"`
}

// avTimeSeries is the TIME_SERIES_DAILY_ADJUSTED envelope, keyed by date.
type avTimeSeries struct {
	Daily map[string]avDailyBar `json:"Time Series (Daily)"`
}

// avNewsFeed is the NEWS_SENTIMENT response envelope.
type avNewsFeed struct {
	Feed []struct {
		Title         string `json:"title"`
		URL           string `json:"url"`
		TimePublished string `json:"time_published"` // "20250820T143000"
		Summary       string `json:"summary"`
		Source        string `json:"source"`
	} `json:"feed"`
}

package fmp

// --- FMP API response types ---

// fmpQuote represents a real-time quote from FMP.
type fmpQuote struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	ChangePercentage  float64 `json:"changePercentage"`
	Change            float64 `json:"change"`
	DayLow            float64 `json:"dayLow"`
	DayHigh           float64 `json:"dayHigh"`
	YearHigh          float64 `json:"yearHigh"`
	YearLow           float64 `json:"yearLow"`
	MarketCap         float64 `json:"marketCap"`
	PriceAvg50        float64 `json:"priceAvg50"`
	PriceAvg200       float64 `json:"priceAvg200"`
	Volume            int64   `json:"volume"`
	AvgVolume         int64   `json:"avgVolume"`
	Exchange          string  `json:"exchange"`
	Open              float64 `json:"open"`
	PreviousClose     float64 `json:"previousClose"`
	EPS               float64 `json:"eps"`
	PE                float64 `json:"pe"`
	SharesOutstanding float64 `json:"sharesOutstanding"`
	Timestamp         int64   `json:"timestamp"`
}

// fmpProfile represents a company profile from FMP.
type fmpProfile struct {
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	Beta              float64 `json:"beta"`
	MarketCap         float64 `json:"marketCap"`
	CompanyName       string  `json:"companyName"`
	Currency          string  `json:"currency"`
	ISIN              string  `json:"isin"`
	Exchange          string  `json:"exchange"`
	ExchangeShortName string  `json:"exchangeShortName"`
	Industry          string  `json:"industry"`
	Website           string  `json:"website"`
	Description       string  `json:"description"`
	Sector            string  `json:"sector"`
	Country           string  `json:"country"`
	IsETF             bool    `json:"isEtf"`
	IsFund            bool    `json:"isFund"`
}

// fmpSearchResult represents one symbol-search hit from FMP.
type fmpSearchResult struct {
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	Currency      string `json:"currency"`
	ExchangeShort string `json:"exchangeShortName"`
	Exchange      string `json:"exchange"`
}

// fmpArticle represents one stock-news article from FMP.
type fmpArticle struct {
	Symbol        string `json:"symbol"`
	PublishedDate string `json:"publishedDate"` // "2006-01-02 15:04:05"
	Publisher     string `json:"publisher"`
	Title         string `json:"title"`
	Image         string `json:"image"`
	Site          string `json:"site"`
	Text          string `json:"text"`
	URL           string `json:"url"`
}

// fmpIncomeStatement represents one income-statement period from FMP.
type fmpIncomeStatement struct {
	Date             string  `json:"date"`
	Symbol           string  `json:"symbol"`
	ReportedCurrency string  `json:"reportedCurrency"`
	Revenue          float64 `json:"revenue"`
	GrossProfit      float64 `json:"grossProfit"`
	OperatingIncome  float64 `json:"operatingIncome"`
	NetIncome        float64 `json:"netIncome"`
	EPS              float64 `json:"eps"`
}

// fmpBalanceSheet represents one balance-sheet period from FMP.
type fmpBalanceSheet struct {
	Date                    string  `json:"date"`
	Symbol                  string  `json:"symbol"`
	ReportedCurrency        string  `json:"reportedCurrency"`
	TotalAssets             float64 `json:"totalAssets"`
	TotalLiabilities        float64 `json:"totalLiabilities"`
	TotalStockholdersEquity float64 `json:"totalStockholdersEquity"`
}

// fmpCashFlow represents one cash-flow period from FMP.
type fmpCashFlow struct {
	Date              string  `json:"date"`
	Symbol            string  `json:"symbol"`
	ReportedCurrency  string  `json:"reportedCurrency"`
	OperatingCashFlow float64 `json:"operatingCashFlow"`
	NetIncome         float64 `json:"netIncome"`
	FreeCashFlow      float64 `json:"freeCashFlow"`
}

// fmpRatios represents one ratios period from FMP.
type fmpRatios struct {
	Symbol                string  `json:"symbol"`
	Date                  string  `json:"date"`
	CurrentRatio          float64 `json:"currentRatio"`
	QuickRatio            float64 `json:"quickRatio"`
	GrossProfitMargin     float64 `json:"grossProfitMargin"`
	OperatingProfitMargin float64 `json:"operatingProfitMargin"`
	NetProfitMargin       float64 `json:"netProfitMargin"`
	ReturnOnAssets        float64 `json:"returnOnAssets"`
	ReturnOnEquity        float64 `json:"returnOnEquity"`
	DebtEquityRatio       float64 `json:"debtEquityRatio"`
}

// fmpHistorical represents the historical-price envelope from FMP.
type fmpHistorical struct {
	Symbol     string             `json:"symbol"`
	Historical []fmpHistoricalBar `json:"historical"`
}

// fmpHistoricalBar represents one daily bar from FMP.
type fmpHistoricalBar struct {
	Date     string  `json:"date"`
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adjClose"`
	Volume   int64   `json:"volume"`
}

// fmpKeyMetrics represents one key-metrics period from FMP.
type fmpKeyMetrics struct {
	Symbol        string  `json:"symbol"`
	Date          string  `json:"date"`
	PERatio       float64 `json:"peRatio"`
	PBRatio       float64 `json:"pbRatio"`
	DebtToEquity  float64 `json:"debtToEquity"`
	CurrentRatio  float64 `json:"currentRatio"`
	ROE           float64 `json:"roe"`
	DividendYield float64 `json:"dividendYield"`
}

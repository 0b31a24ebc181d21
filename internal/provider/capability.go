package provider

// Capability names one kind of data a provider can serve. The set is closed:
// fetchers declare exactly one capability and the registry routes by it.
type Capability string

const (
	CapQuote             Capability = "Quote"
	CapCompanyProfile    Capability = "CompanyProfile"
	CapIncomeStatement   Capability = "IncomeStatement"
	CapBalanceSheet      Capability = "BalanceSheet"
	CapCashFlowStatement Capability = "CashFlowStatement"
	CapKeyMetrics        Capability = "KeyMetrics"
	CapFinancialRatios   Capability = "FinancialRatios"
	CapHistoricalPrices  Capability = "HistoricalPrices"
	CapCompanyNews       Capability = "CompanyNews"
	CapSymbolSearch      Capability = "SymbolSearch"
	CapWebSearch         Capability = "WebSearch"
)

// AllCapabilities returns every capability in the closed set, in a stable order.
func AllCapabilities() []Capability {
	return []Capability{
		CapQuote,
		CapCompanyProfile,
		CapIncomeStatement,
		CapBalanceSheet,
		CapCashFlowStatement,
		CapKeyMetrics,
		CapFinancialRatios,
		CapHistoricalPrices,
		CapCompanyNews,
		CapSymbolSearch,
		CapWebSearch,
	}
}

// Valid reports whether c is a member of the closed capability set.
func (c Capability) Valid() bool {
	switch c {
	case CapQuote, CapCompanyProfile, CapIncomeStatement, CapBalanceSheet,
		CapCashFlowStatement, CapKeyMetrics, CapFinancialRatios,
		CapHistoricalPrices, CapCompanyNews, CapSymbolSearch, CapWebSearch:
		return true
	}
	return false
}

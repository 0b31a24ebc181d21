package fmp

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// statementPeriod reads the period param, defaulting to annual.
func statementPeriod(params provider.QueryParams) string {
	if p := params[provider.ParamPeriod]; p == string(models.PeriodQuarterly) {
		return "quarter"
	}
	return "annual"
}

func statementLimit(params provider.QueryParams) string {
	if l := params[provider.ParamLimit]; l != "" {
		return l
	}
	return "5"
}

// --- IncomeStatement fetcher ---

type incomeStatementFetcher struct {
	provider.BaseFetcher
}

func newIncomeStatementFetcher() *incomeStatementFetcher {
	return &incomeStatementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapIncomeStatement,
			"Income statements from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			6*time.Hour, 5, time.Second,
		),
	}
}

func (f *incomeStatementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/income-statement?symbol=%s&period=%s&limit=%s",
		url.QueryEscape(symbol), statementPeriod(params), statementLimit(params))
	var results []fmpIncomeStatement
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp income statement %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapIncomeStatement, "no income statements for "+symbol)
	}

	rows := make([]models.StatementRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, models.StatementRow{
			FiscalDate:      r.Date,
			Currency:        r.ReportedCurrency,
			Revenue:         r.Revenue,
			GrossProfit:     r.GrossProfit,
			OperatingIncome: r.OperatingIncome,
			NetIncome:       r.NetIncome,
			EPS:             r.EPS,
		})
	}
	stmt := &models.FinancialStatement{
		Ticker: symbol,
		Kind:   "income",
		Period: models.StatementPeriod(params[provider.ParamPeriod]),
		Rows:   rows,
	}
	if stmt.Period == "" {
		stmt.Period = models.PeriodAnnual
	}

	f.CacheSetTTL(cacheKey, stmt, 6*time.Hour)
	return newResult(stmt), nil
}

// --- BalanceSheet fetcher ---

type balanceSheetFetcher struct {
	provider.BaseFetcher
}

func newBalanceSheetFetcher() *balanceSheetFetcher {
	return &balanceSheetFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapBalanceSheet,
			"Balance sheets from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			6*time.Hour, 5, time.Second,
		),
	}
}

func (f *balanceSheetFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/balance-sheet-statement?symbol=%s&period=%s&limit=%s",
		url.QueryEscape(symbol), statementPeriod(params), statementLimit(params))
	var results []fmpBalanceSheet
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp balance sheet %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapBalanceSheet, "no balance sheets for "+symbol)
	}

	rows := make([]models.StatementRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, models.StatementRow{
			FiscalDate:       r.Date,
			Currency:         r.ReportedCurrency,
			TotalAssets:      r.TotalAssets,
			TotalLiabilities: r.TotalLiabilities,
			TotalEquity:      r.TotalStockholdersEquity,
		})
	}
	stmt := &models.FinancialStatement{
		Ticker: symbol,
		Kind:   "balance",
		Period: models.StatementPeriod(params[provider.ParamPeriod]),
		Rows:   rows,
	}
	if stmt.Period == "" {
		stmt.Period = models.PeriodAnnual
	}

	f.CacheSetTTL(cacheKey, stmt, 6*time.Hour)
	return newResult(stmt), nil
}

// --- CashFlowStatement fetcher ---

type cashFlowFetcher struct {
	provider.BaseFetcher
}

func newCashFlowFetcher() *cashFlowFetcher {
	return &cashFlowFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapCashFlowStatement,
			"Cash flow statements from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			6*time.Hour, 5, time.Second,
		),
	}
}

func (f *cashFlowFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/cash-flow-statement?symbol=%s&period=%s&limit=%s",
		url.QueryEscape(symbol), statementPeriod(params), statementLimit(params))
	var results []fmpCashFlow
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp cash flow %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapCashFlowStatement, "no cash flow statements for "+symbol)
	}

	rows := make([]models.StatementRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, models.StatementRow{
			FiscalDate:        r.Date,
			Currency:          r.ReportedCurrency,
			NetIncome:         r.NetIncome,
			OperatingCashFlow: r.OperatingCashFlow,
			FreeCashFlow:      r.FreeCashFlow,
		})
	}
	stmt := &models.FinancialStatement{
		Ticker: symbol,
		Kind:   "cashflow",
		Period: models.StatementPeriod(params[provider.ParamPeriod]),
		Rows:   rows,
	}
	if stmt.Period == "" {
		stmt.Period = models.PeriodAnnual
	}

	f.CacheSetTTL(cacheKey, stmt, 6*time.Hour)
	return newResult(stmt), nil
}

// --- FinancialRatios fetcher ---

type ratiosFetcher struct {
	provider.BaseFetcher
}

func newRatiosFetcher() *ratiosFetcher {
	return &ratiosFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapFinancialRatios,
			"Liquidity, profitability, and leverage ratios from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			6*time.Hour, 5, time.Second,
		),
	}
}

func (f *ratiosFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/ratios?symbol=%s&period=%s&limit=%s",
		url.QueryEscape(symbol), statementPeriod(params), statementLimit(params))
	var results []fmpRatios
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp ratios %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapFinancialRatios, "no ratios for "+symbol)
	}

	rows := make([]models.RatioRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, models.RatioRow{
			FiscalDate:      r.Date,
			CurrentRatio:    r.CurrentRatio,
			QuickRatio:      r.QuickRatio,
			GrossMargin:     r.GrossProfitMargin,
			OperatingMargin: r.OperatingProfitMargin,
			NetMargin:       r.NetProfitMargin,
			ROA:             r.ReturnOnAssets,
			ROE:             r.ReturnOnEquity,
			DebtToEquity:    r.DebtEquityRatio,
		})
	}
	ratios := &models.FinancialRatios{
		Ticker: symbol,
		Period: models.StatementPeriod(params[provider.ParamPeriod]),
		Rows:   rows,
	}
	if ratios.Period == "" {
		ratios.Period = models.PeriodAnnual
	}

	f.CacheSetTTL(cacheKey, ratios, 6*time.Hour)
	return newResult(ratios), nil
}

// --- KeyMetrics fetcher ---

type keyMetricsFetcher struct {
	provider.BaseFetcher
}

func newKeyMetricsFetcher() *keyMetricsFetcher {
	return &keyMetricsFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapKeyMetrics,
			"Valuation and health ratios from Financial Modeling Prep",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamLimit},
			6*time.Hour, 5, time.Second,
		),
	}
}

func (f *keyMetricsFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_fmp_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	path := fmt.Sprintf("/key-metrics?symbol=%s&limit=1", url.QueryEscape(symbol))
	var results []fmpKeyMetrics
	if err := fetchFMPJSON(ctx, path, apiKey, &results); err != nil {
		return nil, fmt.Errorf("fmp key metrics %s: %w", symbol, err)
	}
	if len(results) == 0 {
		return nil, provider.NotFoundError(providerName, provider.CapKeyMetrics, "no key metrics for "+symbol)
	}

	m := results[0]
	metrics := &models.KeyMetrics{
		Ticker:        symbol,
		FiscalDate:    m.Date,
		PERatio:       m.PERatio,
		PBRatio:       m.PBRatio,
		DebtToEquity:  m.DebtToEquity,
		CurrentRatio:  m.CurrentRatio,
		ROE:           m.ROE,
		DividendYield: m.DividendYield,
	}

	f.CacheSetTTL(cacheKey, metrics, 6*time.Hour)
	return newResult(metrics), nil
}

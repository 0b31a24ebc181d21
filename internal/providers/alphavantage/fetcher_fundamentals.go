package alphavantage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/seenimoa/tickerlens/internal/provider"
	"github.com/seenimoa/tickerlens/pkg/models"
)

// statementFetcher handles the three statement endpoints, which share the
// same envelope shape and differ only in the function name and row mapping.
type statementFetcher struct {
	provider.BaseFetcher
	function string // Alpha Vantage function name
	kind     string // normalized statement kind
}

func newIncomeStatementFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapIncomeStatement,
			"Income statements from Alpha Vantage",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			6*time.Hour, 5, time.Second,
		),
		function: "INCOME_STATEMENT",
		kind:     "income",
	}
}

func newBalanceSheetFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapBalanceSheet,
			"Balance sheets from Alpha Vantage",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			6*time.Hour, 5, time.Second,
		),
		function: "BALANCE_SHEET",
		kind:     "balance",
	}
}

func newCashFlowFetcher() *statementFetcher {
	return &statementFetcher{
		BaseFetcher: provider.NewBaseFetcherWithOpts(
			provider.CapCashFlowStatement,
			"Cash flow statements from Alpha Vantage",
			[]string{provider.ParamSymbol},
			[]string{provider.ParamPeriod, provider.ParamLimit},
			6*time.Hour, 5, time.Second,
		),
		function: "CASH_FLOW",
		kind:     "cashflow",
	}
}

func (f *statementFetcher) Fetch(ctx context.Context, params provider.QueryParams) (*provider.FetchResult, error) {
	symbol := params[provider.ParamSymbol]
	apiKey := params["_av_api_key"]

	cacheKey := provider.CacheKey(f.Capability(), params)
	if cached, ok := f.CacheGet(cacheKey); ok {
		return newCachedResult(cached), nil
	}
	if err := f.RateLimit(ctx); err != nil {
		return nil, err
	}

	u := avQuery(f.function, apiKey, url.Values{"symbol": {symbol}})
	var resp avStatements
	if err := fetchAVJSON(ctx, f.Capability(), u, &resp); err != nil {
		return nil, fmt.Errorf("alphavantage %s %s: %w", f.function, symbol, err)
	}

	period := models.PeriodAnnual
	reports := resp.AnnualReports
	if params[provider.ParamPeriod] == string(models.PeriodQuarterly) {
		period = models.PeriodQuarterly
		reports = resp.QuarterlyReports
	}
	if len(reports) == 0 {
		return nil, provider.NotFoundError(providerName, f.Capability(), "no "+f.kind+" statements for "+symbol)
	}

	limit := 5
	if l := params[provider.ParamLimit]; l != "" {
		fmt.Sscanf(l, "%d", &limit)
	}
	if len(reports) > limit {
		reports = reports[:limit]
	}

	rows := make([]models.StatementRow, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, models.StatementRow{
			FiscalDate:        r.FiscalDateEnding,
			Currency:          r.ReportedCurrency,
			Revenue:           parseFloat(r.TotalRevenue),
			GrossProfit:       parseFloat(r.GrossProfit),
			OperatingIncome:   parseFloat(r.OperatingIncome),
			NetIncome:         parseFloat(r.NetIncome),
			TotalAssets:       parseFloat(r.TotalAssets),
			TotalLiabilities:  parseFloat(r.TotalLiabilities),
			TotalEquity:       parseFloat(r.TotalShareholderEquity),
			OperatingCashFlow: parseFloat(r.OperatingCashflow),
		})
	}

	stmt := &models.FinancialStatement{
		Ticker: resp.Symbol,
		Kind:   f.kind,
		Period: period,
		Rows:   rows,
	}
	if stmt.Ticker == "" {
		stmt.Ticker = symbol
	}

	f.CacheSetTTL(cacheKey, stmt, 6*time.Hour)
	return newResult(stmt), nil
}

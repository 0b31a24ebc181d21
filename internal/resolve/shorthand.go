package resolve

import (
	"strings"

	"github.com/seenimoa/tickerlens/pkg/models"
)

// shorthandMap translates colloquial market names to their tradable proxies.
// Index names resolve to the liquid ETF tracking them, since that is what a
// quote or news request for "the S&P 500" actually wants.
var shorthandMap = map[string]models.Symbol{
	// Broad market indexes → tracking ETFs.
	"s&p 500":      {Ticker: "SPY", AssetClass: models.AssetETF, Name: "SPDR S&P 500 ETF Trust"},
	"s&p500":       {Ticker: "SPY", AssetClass: models.AssetETF, Name: "SPDR S&P 500 ETF Trust"},
	"sp500":        {Ticker: "SPY", AssetClass: models.AssetETF, Name: "SPDR S&P 500 ETF Trust"},
	"sp 500":       {Ticker: "SPY", AssetClass: models.AssetETF, Name: "SPDR S&P 500 ETF Trust"},
	"spx":          {Ticker: "SPY", AssetClass: models.AssetETF, Name: "SPDR S&P 500 ETF Trust"},
	"nasdaq":       {Ticker: "QQQ", AssetClass: models.AssetETF, Name: "Invesco QQQ Trust"},
	"nasdaq 100":   {Ticker: "QQQ", AssetClass: models.AssetETF, Name: "Invesco QQQ Trust"},
	"nasdaq-100":   {Ticker: "QQQ", AssetClass: models.AssetETF, Name: "Invesco QQQ Trust"},
	"ndx":          {Ticker: "QQQ", AssetClass: models.AssetETF, Name: "Invesco QQQ Trust"},
	"dow":          {Ticker: "DIA", AssetClass: models.AssetETF, Name: "SPDR Dow Jones Industrial Average ETF"},
	"dow jones":    {Ticker: "DIA", AssetClass: models.AssetETF, Name: "SPDR Dow Jones Industrial Average ETF"},
	"djia":         {Ticker: "DIA", AssetClass: models.AssetETF, Name: "SPDR Dow Jones Industrial Average ETF"},
	"russell 2000": {Ticker: "IWM", AssetClass: models.AssetETF, Name: "iShares Russell 2000 ETF"},
	"russell2000":  {Ticker: "IWM", AssetClass: models.AssetETF, Name: "iShares Russell 2000 ETF"},

	// Sector shorthands → SPDR sector ETFs.
	"technology sector":  {Ticker: "XLK", AssetClass: models.AssetETF, Name: "Technology Select Sector SPDR Fund"},
	"tech sector":        {Ticker: "XLK", AssetClass: models.AssetETF, Name: "Technology Select Sector SPDR Fund"},
	"energy sector":      {Ticker: "XLE", AssetClass: models.AssetETF, Name: "Energy Select Sector SPDR Fund"},
	"financial sector":   {Ticker: "XLF", AssetClass: models.AssetETF, Name: "Financial Select Sector SPDR Fund"},
	"financials sector":  {Ticker: "XLF", AssetClass: models.AssetETF, Name: "Financial Select Sector SPDR Fund"},
	"healthcare sector":  {Ticker: "XLV", AssetClass: models.AssetETF, Name: "Health Care Select Sector SPDR Fund"},
	"health care sector": {Ticker: "XLV", AssetClass: models.AssetETF, Name: "Health Care Select Sector SPDR Fund"},
	"utilities sector":   {Ticker: "XLU", AssetClass: models.AssetETF, Name: "Utilities Select Sector SPDR Fund"},
}

// lookupShorthand checks the query against the shorthand table after
// normalization. Leading articles and a trailing "index"/"etf" word are
// ignored so "the S&P 500 index" still hits.
func lookupShorthand(query string) (models.Symbol, bool) {
	q := strings.ToLower(strings.TrimSpace(query))
	q = strings.Join(strings.Fields(q), " ")
	q = strings.TrimPrefix(q, "the ")
	for _, suffix := range []string{" index", " etf"} {
		q = strings.TrimSuffix(q, suffix)
	}

	sym, ok := shorthandMap[q]
	return sym, ok
}

package models

import "time"

// Quote is a normalized real-time (or delayed) quote for a symbol.
type Quote struct {
	Ticker    string    `json:"ticker"`
	Name      string    `json:"name,omitempty"`
	LastPrice float64   `json:"last_price"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Open      float64   `json:"open,omitempty"`
	High      float64   `json:"high,omitempty"`
	Low       float64   `json:"low,omitempty"`
	PrevClose float64   `json:"prev_close,omitempty"`
	Volume    int64     `json:"volume,omitempty"`
	YearHigh  float64   `json:"year_high,omitempty"`
	YearLow   float64   `json:"year_low,omitempty"`
	MarketCap float64   `json:"market_cap,omitempty"`
	PE        float64   `json:"pe,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// CompanyProfile is a normalized company/fund profile.
type CompanyProfile struct {
	Ticker      string  `json:"ticker"`
	Name        string  `json:"name"`
	Exchange    string  `json:"exchange,omitempty"`
	Sector      string  `json:"sector,omitempty"`
	Industry    string  `json:"industry,omitempty"`
	Description string  `json:"description,omitempty"`
	ISIN        string  `json:"isin,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Country     string  `json:"country,omitempty"`
	Website     string  `json:"website,omitempty"`
	MarketCap   float64 `json:"market_cap,omitempty"`
	Beta        float64 `json:"beta,omitempty"`
	IsETF       bool    `json:"is_etf,omitempty"`
}

package models

// PriceBar is one daily OHLCV bar.
type PriceBar struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	AdjClose float64 `json:"adj_close,omitempty"`
	Volume   int64   `json:"volume"`
}

// PriceSeries is a daily price history for a symbol, most recent first.
type PriceSeries struct {
	Ticker string     `json:"ticker"`
	Bars   []PriceBar `json:"bars"`
}

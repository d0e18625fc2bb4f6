package models

// MonthRollup aggregates one calendar month inside a dong rollup.
type MonthRollup struct {
	MonthDisplay string  `json:"month_display"`
	Count        int     `json:"count"`
	AvgPrice     float64 `json:"avg_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
}

// DongRollup aggregates all transactions of one legal sub-district, broken
// down by month. Rollups are ordered by TotalCount descending.
type DongRollup struct {
	DongName   string                  `json:"dong_name"`
	TotalCount int                     `json:"total_count"`
	Months     map[string]*MonthRollup `json:"months"`
}

// ApartmentRollup aggregates all transactions of one apartment complex
// within a query result. Recomputed from raw records, never persisted.
type ApartmentRollup struct {
	AptName          string   `json:"apt_name"`
	RegionCode       string   `json:"region_code"`
	RegionName       string   `json:"region_name"`
	BuildYear        int      `json:"build_year"`
	TransactionCount int      `json:"transaction_count"`
	SaleCount        int      `json:"sale_count"`
	RentCount        int      `json:"rent_count"`
	AvgPrice         float64  `json:"avg_price"`
	MinPrice         float64  `json:"min_price"`
	MaxPrice         float64  `json:"max_price"`
	DongList         []string `json:"dong_list"`
}

// TrendPoint is one month of a price trend series.
type TrendPoint struct {
	Month            string  `json:"month"`
	AvgPrice         float64 `json:"avg_price"`
	MinPrice         float64 `json:"min_price"`
	MaxPrice         float64 `json:"max_price"`
	TransactionCount int     `json:"transaction_count"`
}

// TrendSummary summarizes a whole trend window.
type TrendSummary struct {
	TotalTransactions int     `json:"total_transactions"`
	AvgPrice          float64 `json:"avg_price"`
	MinPrice          float64 `json:"min_price"`
	MaxPrice          float64 `json:"max_price"`
	PriceChange       float64 `json:"price_change"`
}

// PriceTrend is the monthly price history of one apartment.
type PriceTrend struct {
	Trend   []TrendPoint `json:"trend"`
	Summary TrendSummary `json:"summary"`
}

package models

import "time"

// Favorite is a tracked apartment complex.
type Favorite struct {
	ID            int64     `json:"id"`
	AptName       string    `json:"apt_name"`
	RegionCode    string    `json:"region_code"`
	RegionName    string    `json:"region_name"`
	AptSeq        string    `json:"apt_seq"`
	RoadName      string    `json:"road_name"`
	RoadNameBon   string    `json:"road_name_bonbun"`
	RoadNameBu    string    `json:"road_name_bubun"`
	DongName      string    `json:"umd_nm"`
	BuildYear     int       `json:"build_year"`
	ExclusiveArea float64   `json:"exclusive_area"`
	Notes         string    `json:"notes"`
	IsActive      bool      `json:"is_active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// FavoriteWithData decorates a favorite with its recent market activity.
type FavoriteWithData struct {
	Favorite
	LatestTransactions []Transaction `json:"latest_transactions"`
	PriceTrend         PriceTrend    `json:"price_trend"`
	HasRecentData      bool          `json:"has_recent_data"`
}

// Alert types.
const (
	AlertPriceDrop      = "price_drop"
	AlertPriceRise      = "price_rise"
	AlertNewTransaction = "new_transaction"
)

// PriceAlert is a user-configured price movement alert.
type PriceAlert struct {
	ID             int64      `json:"id"`
	AptName        string     `json:"apt_name"`
	RegionCode     string     `json:"region_code"`
	AlertType      string     `json:"alert_type"`
	ThresholdValue float64    `json:"threshold_value"`
	CurrentValue   float64    `json:"current_value"`
	IsTriggered    bool       `json:"is_triggered"`
	TriggeredAt    *time.Time `json:"triggered_at"`
	CreatedAt      time.Time  `json:"created_at"`
	Notes          string     `json:"notes"`
}

package models

import "time"

// CacheSnapshot is one cached, expiring materialization of a
// region/query-type/month-window/day search result.
type CacheSnapshot struct {
	CacheKey   string        `json:"cache_key"`
	RegionCode string        `json:"region_code"`
	RegionName string        `json:"region_name"`
	QueryType  string        `json:"query_type"`
	Months     int           `json:"months"`
	SearchDate string        `json:"search_date"`
	TotalCount int           `json:"total_count"`
	ByDong     []DongRollup  `json:"classified_data"`
	RawData    []Transaction `json:"raw_data"`
	CreatedAt  time.Time     `json:"created_at"`
	ExpiresAt  time.Time     `json:"expires_at"`
}

// RegionCacheCount is one row of the per-region cache statistics.
type RegionCacheCount struct {
	RegionName string `json:"region_name"`
	Count      int    `json:"count"`
}

// CacheStatistics summarizes the state of the search cache.
type CacheStatistics struct {
	TotalCache   int                `json:"total_cache"`
	ExpiredCache int                `json:"expired_cache"`
	ValidCache   int                `json:"valid_cache"`
	RegionStats  []RegionCacheCount `json:"region_stats"`
}

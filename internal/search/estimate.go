package search

import (
	"fmt"
	"time"

	"aptrack/server/internal/database"
)

// Estimate is a pre-flight summary of how expensive a search will be, so
// clients can confirm before kicking off a long window fetch.
type Estimate struct {
	QueryType         string  `json:"query_type"`
	Months            int     `json:"months"`
	APICalls          int     `json:"api_calls"`
	EstimatedSeconds  float64 `json:"estimated_seconds"`
	EstimatedDuration string  `json:"estimated_duration"`
	FromCache         bool    `json:"from_cache"`
	Summary           string  `json:"summary"`
}

// EstimateSearch predicts the upstream call count and duration of a search.
// A valid cache snapshot costs nothing unless the caller forces a refresh.
func (m *Manager) EstimateSearch(req Request) Estimate {
	req = normalize(req)

	est := Estimate{
		QueryType: req.QueryType,
		Months:    req.Months,
	}

	if !req.ForceRefresh {
		cacheKey := database.CacheKey(req.RegionCode, req.QueryType, req.Months, time.Now())
		if snap, err := m.db.GetCachedSearch(cacheKey); err == nil && snap != nil {
			est.FromCache = true
			est.Summary = "캐시된 결과가 있어 API 호출이 필요하지 않습니다."
			return est
		}
	}

	// One call per month per endpoint; combined searches fan out to both.
	perMonth := 2
	if req.QueryType == QuerySale || req.QueryType == QueryRent {
		perMonth = 1
	}
	est.APICalls = req.Months * perMonth
	est.EstimatedSeconds = float64(est.APICalls) * m.delay.Seconds()

	d := time.Duration(est.EstimatedSeconds * float64(time.Second))
	if d < time.Minute {
		est.EstimatedDuration = fmt.Sprintf("약 %d초", int(d.Seconds())+1)
	} else {
		est.EstimatedDuration = fmt.Sprintf("약 %d분 %d초", int(d.Minutes()), int(d.Seconds())%60)
	}
	est.Summary = fmt.Sprintf("%d개월 조회, 예상 API 호출 %d회, %s 소요",
		req.Months, est.APICalls, est.EstimatedDuration)
	return est
}

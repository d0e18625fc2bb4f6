package search

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"aptrack/server/config"
	"aptrack/server/internal/aggregate"
	"aptrack/server/internal/database"
	"aptrack/server/internal/models"
	"aptrack/server/internal/molit"
	"aptrack/server/internal/progress"
	"aptrack/server/internal/queue"
)

// Query types accepted by Run and StartSearch.
const (
	QueryCombined = "combined"
	QuerySale     = "sale"
	QueryRent     = "rent"
)

// Request describes one region search.
type Request struct {
	RegionCode   string `json:"region_code" binding:"required"`
	QueryType    string `json:"query_type"`
	Months       int    `json:"months"`
	ForceRefresh bool   `json:"force_refresh"`
}

// Result is a finished search as served to clients.
type Result struct {
	CacheKey   string               `json:"cache_key"`
	RegionCode string               `json:"region_code"`
	RegionName string               `json:"region_name"`
	QueryType  string               `json:"query_type"`
	Months     int                  `json:"months"`
	TotalCount int                  `json:"total_count"`
	SaleCount  int                  `json:"sale_count"`
	RentCount  int                  `json:"rent_count"`
	Source     string               `json:"source"`
	FromCache  bool                 `json:"from_cache"`
	ByDong     []models.DongRollup  `json:"classified_data"`
	RawData    []models.Transaction `json:"raw_data"`
}

// Manager runs region searches, cache first, and owns the background search
// lifecycle.
type Manager struct {
	client   *molit.Client
	db       *database.Database
	queue    *queue.TransactionQueue
	progress *progress.Store
	logger   *logrus.Logger
	cacheTTL time.Duration
	delay    time.Duration
	nextID   func() string
}

func NewManager(client *molit.Client, db *database.Database, q *queue.TransactionQueue, store *progress.Store, cfg *config.Config, logger *logrus.Logger) *Manager {
	var counter int64
	return &Manager{
		client:   client,
		db:       db,
		queue:    q,
		progress: store,
		logger:   logger,
		cacheTTL: time.Duration(cfg.Cache.TTLHours) * time.Hour,
		delay:    time.Duration(cfg.Molit.RequestDelayMillis) * time.Millisecond,
		nextID: func() string {
			n := atomic.AddInt64(&counter, 1)
			return fmt.Sprintf("search-%d-%d", time.Now().UnixNano(), n)
		},
	}
}

// Progress exposes the underlying progress store.
func (m *Manager) Progress() *progress.Store {
	return m.progress
}

// Run executes a search synchronously, serving a valid cache snapshot when
// one exists and the caller did not force a refresh.
func (m *Manager) Run(req Request) (*Result, error) {
	req = normalize(req)
	cacheKey := database.CacheKey(req.RegionCode, req.QueryType, req.Months, time.Now())

	if !req.ForceRefresh {
		snap, err := m.db.GetCachedSearch(cacheKey)
		if err != nil {
			m.logger.WithError(err).Warn("Cache lookup failed, falling through to live fetch")
		} else if snap != nil {
			m.logger.WithFields(logrus.Fields{
				"cache_key": cacheKey,
				"count":     snap.TotalCount,
			}).Info("Serving search from cache")
			return resultFromSnapshot(snap, req), nil
		}
	}

	return m.fetchAndStore(req, cacheKey, nil, "")
}

// StartSearch launches a search in the background and returns its id for
// progress polling.
func (m *Manager) StartSearch(req Request) string {
	req = normalize(req)
	searchID := m.nextID()
	m.progress.Start(searchID, req.Months)

	go func() {
		cacheKey := database.CacheKey(req.RegionCode, req.QueryType, req.Months, time.Now())

		if !req.ForceRefresh {
			snap, err := m.db.GetCachedSearch(cacheKey)
			if err == nil && snap != nil {
				m.progress.Complete(searchID, snap.TotalCount, "캐시에서 조회 완료")
				return
			}
		}

		progressFn := func(done, total int, label string, runningCount int, message string) {
			m.progress.Update(searchID, done, label, runningCount, message)
		}

		result, err := m.fetchAndStore(req, cacheKey, progressFn, searchID)
		if err != nil {
			m.progress.Fail(searchID, err.Error())
			return
		}
		m.progress.Complete(searchID, result.TotalCount, "조회 완료")
	}()

	return searchID
}

func (m *Manager) fetchAndStore(req Request, cacheKey string, progressFn molit.ProgressFunc, searchID string) (*Result, error) {
	result := &Result{
		CacheKey:   cacheKey,
		RegionCode: req.RegionCode,
		RegionName: m.client.RegionName(req.RegionCode),
		QueryType:  req.QueryType,
		Months:     req.Months,
		Source:     models.SourceLive,
	}

	switch req.QueryType {
	case QuerySale:
		data := m.client.FetchWindowSale(req.RegionCode, req.Months, progressFn)
		result.RawData = data
		result.SaleCount = len(data)
	case QueryRent:
		data := m.client.FetchWindowLease(req.RegionCode, req.Months, progressFn)
		result.RawData = data
		result.RentCount = len(data)
	default:
		combined := m.client.FetchCombinedWindow(req.RegionCode, req.Months, progressFn)
		result.RawData = combined.Data
		result.SaleCount = combined.SaleCount
		result.RentCount = combined.RentCount
		result.Source = combined.Source
	}
	result.TotalCount = len(result.RawData)

	for _, tx := range result.RawData {
		if tx.Source == models.SourceDemo {
			result.Source = models.SourceDemo
			break
		}
	}

	m.persist(result.RawData)

	result.ByDong = aggregate.ByDong(result.RawData)
	m.saveSnapshot(result)

	m.logger.WithFields(logrus.Fields{
		"search_id":   searchID,
		"region_code": req.RegionCode,
		"query_type":  req.QueryType,
		"months":      req.Months,
		"count":       result.TotalCount,
		"source":      result.Source,
	}).Info("Search finished")

	return result, nil
}

// persist hands live records to the batch pipeline. Demo records never reach
// the database.
func (m *Manager) persist(data []models.Transaction) {
	batch := make([]*models.Transaction, 0, len(data))
	for i := range data {
		if data[i].Source == models.SourceDemo {
			continue
		}
		batch = append(batch, &data[i])
	}
	if len(batch) == 0 {
		return
	}
	if err := m.queue.Push(batch); err != nil {
		m.logger.WithError(err).Warn("Failed to enqueue transaction batch, persisting directly")
		plain := make([]models.Transaction, len(batch))
		for i, tx := range batch {
			plain[i] = *tx
		}
		if _, err := m.db.SaveTransactions(plain); err != nil {
			m.logger.WithError(err).Error("Failed to persist transactions")
		}
	}
}

func (m *Manager) saveSnapshot(result *Result) {
	now := time.Now()
	snap := models.CacheSnapshot{
		CacheKey:   result.CacheKey,
		RegionCode: result.RegionCode,
		RegionName: result.RegionName,
		QueryType:  result.QueryType,
		Months:     result.Months,
		SearchDate: now.Format("2006-01-02"),
		TotalCount: result.TotalCount,
		ByDong:     result.ByDong,
		RawData:    result.RawData,
		CreatedAt:  now,
		ExpiresAt:  now.Add(m.cacheTTL),
	}
	if err := m.db.SaveCachedSearch(snap); err != nil {
		m.logger.WithError(err).Error("Failed to save search snapshot")
	}
}

func normalize(req Request) Request {
	if req.Months <= 0 {
		req.Months = 6
	}
	switch req.QueryType {
	case QuerySale, QueryRent:
	default:
		req.QueryType = QueryCombined
	}
	return req
}

func resultFromSnapshot(snap *models.CacheSnapshot, req Request) *Result {
	result := &Result{
		CacheKey:   snap.CacheKey,
		RegionCode: snap.RegionCode,
		RegionName: snap.RegionName,
		QueryType:  snap.QueryType,
		Months:     snap.Months,
		TotalCount: snap.TotalCount,
		Source:     models.SourceLive,
		FromCache:  true,
		ByDong:     snap.ByDong,
		RawData:    snap.RawData,
	}
	for _, tx := range snap.RawData {
		if tx.IsLease() {
			result.RentCount++
		} else {
			result.SaleCount++
		}
		if tx.Source == models.SourceDemo {
			result.Source = models.SourceDemo
		}
	}
	return result
}

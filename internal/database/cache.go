package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"aptrack/server/internal/models"
)

// CacheKey builds the canonical cache key for one search. Granularity is one
// calendar day, so repeated searches within a day hit the same snapshot.
func CacheKey(regionCode, queryType string, months int, searchDate time.Time) string {
	return fmt.Sprintf("%s_%s_%d_%s", regionCode, queryType, months, searchDate.Format("2006-01-02"))
}

// GetCachedSearch returns the snapshot for a key if one exists and has not
// expired. A missing or expired snapshot returns (nil, nil).
//
// Expiry is compared against a bound UTC timestamp rather than SQLite's
// CURRENT_TIMESTAMP: the driver stores time.Time values with the local
// offset, so a text comparison against the engine's UTC clock drifts by the
// timezone offset.
func (d *Database) GetCachedSearch(cacheKey string) (*models.CacheSnapshot, error) {
	row := d.db.QueryRow(`
		SELECT cache_key, region_code, COALESCE(region_name, ''), query_type,
		       months, search_date, total_count,
		       COALESCE(classified_data, '[]'), COALESCE(raw_data, '[]'),
		       created_at, expires_at
		FROM search_cache
		WHERE cache_key = ? AND is_valid = 1 AND expires_at > ?
	`, cacheKey, time.Now().UTC())

	var snap models.CacheSnapshot
	var classified, raw string
	err := row.Scan(
		&snap.CacheKey, &snap.RegionCode, &snap.RegionName, &snap.QueryType,
		&snap.Months, &snap.SearchDate, &snap.TotalCount,
		&classified, &raw,
		&snap.CreatedAt, &snap.ExpiresAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(classified), &snap.ByDong); err != nil {
		return nil, fmt.Errorf("failed to decode cached rollups: %w", err)
	}
	if err := json.Unmarshal([]byte(raw), &snap.RawData); err != nil {
		return nil, fmt.Errorf("failed to decode cached transactions: %w", err)
	}

	return &snap, nil
}

// SaveCachedSearch upserts a snapshot under its key.
func (d *Database) SaveCachedSearch(snap models.CacheSnapshot) error {
	classified, err := json.Marshal(snap.ByDong)
	if err != nil {
		return fmt.Errorf("failed to encode rollups: %w", err)
	}
	raw, err := json.Marshal(snap.RawData)
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}

	_, err = d.db.Exec(`
		INSERT OR REPLACE INTO search_cache
		(cache_key, region_code, region_name, query_type, months, search_date,
		 total_count, classified_data, raw_data, created_at, expires_at, is_valid)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`, snap.CacheKey, snap.RegionCode, snap.RegionName, snap.QueryType,
		snap.Months, snap.SearchDate, snap.TotalCount,
		string(classified), string(raw), snap.CreatedAt.UTC(), snap.ExpiresAt.UTC())
	return err
}

// InvalidateCache deletes every snapshot of one region; an empty region code
// falls back to sweeping expired snapshots. Returns the number of deleted
// snapshots.
func (d *Database) InvalidateCache(regionCode string) (int, error) {
	if regionCode == "" {
		return d.DeleteExpiredCache()
	}
	res, err := d.db.Exec(`DELETE FROM search_cache WHERE region_code = ?`, regionCode)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// DeleteExpiredCache removes every expired snapshot and returns the count.
func (d *Database) DeleteExpiredCache() (int, error) {
	res, err := d.db.Exec(`DELETE FROM search_cache WHERE expires_at <= ? OR is_valid = 0`, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

// GetCacheStatistics summarizes cache state, including a per-region
// breakdown of valid snapshots.
func (d *Database) GetCacheStatistics() (models.CacheStatistics, error) {
	var stats models.CacheStatistics

	now := time.Now().UTC()
	row := d.db.QueryRow(`
		SELECT COUNT(*),
		       SUM(CASE WHEN is_valid = 0 OR expires_at <= ? THEN 1 ELSE 0 END)
		FROM search_cache
	`, now)
	var expired sql.NullInt64
	if err := row.Scan(&stats.TotalCache, &expired); err != nil {
		return stats, err
	}
	if expired.Valid {
		stats.ExpiredCache = int(expired.Int64)
	}
	stats.ValidCache = stats.TotalCache - stats.ExpiredCache

	rows, err := d.db.Query(`
		SELECT COALESCE(region_name, region_code), COUNT(*)
		FROM search_cache
		WHERE is_valid = 1 AND expires_at > ?
		GROUP BY region_code
		ORDER BY COUNT(*) DESC
		LIMIT 10
	`, now)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var rc models.RegionCacheCount
		if err := rows.Scan(&rc.RegionName, &rc.Count); err != nil {
			return stats, err
		}
		stats.RegionStats = append(stats.RegionStats, rc)
	}
	return stats, rows.Err()
}

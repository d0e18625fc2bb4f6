package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptrack/server/internal/models"
)

func newTestDatabase(t *testing.T) *Database {
	t.Helper()

	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

func testTransaction(apt, date string, amount int) models.Transaction {
	return models.Transaction{
		AptName:       apt,
		AptSeq:        "11680-1001",
		Kind:          models.KindSale,
		RegionCode:    "11680",
		RegionName:    "서울특별시 강남구",
		DongName:      "삼성동",
		DealDate:      date,
		DealYear:      2025,
		DealMonth:     6,
		DealDay:       15,
		DealAmount:    amount,
		ExclusiveArea: 84.9,
		PricePerArea:  float64(amount) * 10000 / 84.9,
		Floor:         12,
		BuildYear:     2018,
		Source:        models.SourceLive,
	}
}

func TestSaveTransactionsIgnoresDuplicates(t *testing.T) {
	db := newTestDatabase(t)

	txs := []models.Transaction{
		testTransaction("아이파크", "2025-06-15", 250000),
		testTransaction("아이파크", "2025-06-20", 260000),
	}

	inserted, err := db.SaveTransactions(txs)
	require.NoError(t, err)
	assert.Equal(t, 2, inserted)

	// Same rows again must be a no-op.
	inserted, err = db.SaveTransactions(txs)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	stored, err := db.GetApartmentTransactions("아이파크", "11680", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
	assert.Equal(t, "2025-06-20", stored[0].DealDate)
}

func TestGetApartmentTransactionsRoundTrip(t *testing.T) {
	db := newTestDatabase(t)

	lease := testTransaction("래미안", "2025-06-10", 50000)
	lease.Kind = models.KindLease
	lease.Deposit = 50000
	lease.MonthlyRent = 120
	lease.ContractTerm = "24개월"
	lease.PricePerArea = 0

	_, err := db.SaveTransactions([]models.Transaction{lease})
	require.NoError(t, err)

	stored, err := db.GetApartmentTransactions("래미안", "11680", 10)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.True(t, stored[0].IsLease())
	assert.Equal(t, 50000, stored[0].Deposit)
	assert.Equal(t, 120, stored[0].MonthlyRent)
	assert.Equal(t, "24개월", stored[0].ContractTerm)
}

func TestGetApartmentsByDong(t *testing.T) {
	db := newTestDatabase(t)

	txs := []models.Transaction{
		testTransaction("아이파크", "2025-06-15", 250000),
		testTransaction("아이파크", "2025-06-20", 260000),
		testTransaction("자이", "2025-06-18", 180000),
	}
	_, err := db.SaveTransactions(txs)
	require.NoError(t, err)

	rollups, err := db.GetApartmentsByDong("11680", "삼성동")
	require.NoError(t, err)
	require.Len(t, rollups, 2)
	assert.Equal(t, "아이파크", rollups[0].AptName)
	assert.Equal(t, 2, rollups[0].TransactionCount)
	assert.Equal(t, 2, rollups[0].SaleCount)
	assert.Equal(t, 0, rollups[0].RentCount)
	assert.Greater(t, rollups[0].AvgPrice, 0.0)
}

func TestCacheRoundTripAndExpiry(t *testing.T) {
	db := newTestDatabase(t)

	now := time.Now().UTC()
	snap := models.CacheSnapshot{
		CacheKey:   CacheKey("11680", "combined", 6, now),
		RegionCode: "11680",
		RegionName: "서울특별시 강남구",
		QueryType:  "combined",
		Months:     6,
		SearchDate: now.Format("2006-01-02"),
		TotalCount: 1,
		ByDong: []models.DongRollup{{
			DongName:   "삼성동",
			TotalCount: 1,
			Months:     map[string]*models.MonthRollup{"2025-06": {Count: 1, AvgPrice: 250000}},
		}},
		RawData:   []models.Transaction{testTransaction("아이파크", "2025-06-15", 250000)},
		CreatedAt: now,
		ExpiresAt: now.Add(24 * time.Hour),
	}
	require.NoError(t, db.SaveCachedSearch(snap))

	got, err := db.GetCachedSearch(snap.CacheKey)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "11680", got.RegionCode)
	require.Len(t, got.ByDong, 1)
	assert.Equal(t, "삼성동", got.ByDong[0].DongName)
	require.Len(t, got.RawData, 1)
	assert.Equal(t, "아이파크", got.RawData[0].AptName)

	// Expired snapshots are invisible to readers and removable by the sweep.
	snap.ExpiresAt = now.Add(-time.Hour)
	require.NoError(t, db.SaveCachedSearch(snap))

	got, err = db.GetCachedSearch(snap.CacheKey)
	require.NoError(t, err)
	assert.Nil(t, got)

	deleted, err := db.DeleteExpiredCache()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestCacheExpiryIgnoresTimezoneOffset(t *testing.T) {
	db := newTestDatabase(t)

	// Expiry times arrive in whatever zone the caller runs in. An offset
	// ahead of UTC must not extend a snapshot's lifetime, and one behind
	// UTC must not cut it short.
	seoul := time.FixedZone("KST", 9*60*60)
	pacific := time.FixedZone("PST", -8*60*60)

	expired := models.CacheSnapshot{
		CacheKey:   CacheKey("11680", "combined", 6, time.Now()),
		RegionCode: "11680",
		QueryType:  "combined",
		Months:     6,
		CreatedAt:  time.Now().In(seoul).Add(-2 * time.Hour),
		ExpiresAt:  time.Now().In(seoul).Add(-time.Hour),
	}
	require.NoError(t, db.SaveCachedSearch(expired))

	got, err := db.GetCachedSearch(expired.CacheKey)
	require.NoError(t, err)
	assert.Nil(t, got)

	fresh := models.CacheSnapshot{
		CacheKey:   CacheKey("11650", "combined", 6, time.Now()),
		RegionCode: "11650",
		QueryType:  "combined",
		Months:     6,
		CreatedAt:  time.Now().In(pacific),
		ExpiresAt:  time.Now().In(pacific).Add(time.Hour),
	}
	require.NoError(t, db.SaveCachedSearch(fresh))

	got, err = db.GetCachedSearch(fresh.CacheKey)
	require.NoError(t, err)
	require.NotNil(t, got)

	deleted, err := db.DeleteExpiredCache()
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	got, err = db.GetCachedSearch(fresh.CacheKey)
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestCacheStatistics(t *testing.T) {
	db := newTestDatabase(t)

	now := time.Now().UTC()
	for i, expiry := range []time.Time{now.Add(time.Hour), now.Add(-time.Hour)} {
		snap := models.CacheSnapshot{
			CacheKey:   CacheKey("11680", "combined", i+1, now),
			RegionCode: "11680",
			RegionName: "서울특별시 강남구",
			QueryType:  "combined",
			Months:     i + 1,
			SearchDate: now.Format("2006-01-02"),
			CreatedAt:  now,
			ExpiresAt:  expiry,
		}
		require.NoError(t, db.SaveCachedSearch(snap))
	}

	stats, err := db.GetCacheStatistics()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalCache)
	assert.Equal(t, 1, stats.ExpiredCache)
	assert.Equal(t, 1, stats.ValidCache)
	require.Len(t, stats.RegionStats, 1)
	assert.Equal(t, "서울특별시 강남구", stats.RegionStats[0].RegionName)
}

func TestFavoritesLifecycle(t *testing.T) {
	db := newTestDatabase(t)

	id, err := db.AddFavorite(models.Favorite{
		AptName:    "아이파크",
		RegionCode: "11680",
		RegionName: "서울특별시 강남구",
		DongName:   "삼성동",
		BuildYear:  2018,
		Notes:      "관심 단지",
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	// Re-adding the same complex must not create a second row.
	_, err = db.AddFavorite(models.Favorite{AptName: "아이파크", RegionCode: "11680"})
	require.NoError(t, err)

	favorites, err := db.GetFavorites()
	require.NoError(t, err)
	require.Len(t, favorites, 1)

	tracked, err := db.IsFavorite("아이파크", "11680")
	require.NoError(t, err)
	assert.True(t, tracked)

	require.NoError(t, db.UpdateFavoriteNotes(id, "가격 확인"))
	fav, err := db.GetFavorite(id)
	require.NoError(t, err)
	require.NotNil(t, fav)
	assert.Equal(t, "가격 확인", fav.Notes)

	require.NoError(t, db.DeleteFavorite(id))
	favorites, err = db.GetFavorites()
	require.NoError(t, err)
	assert.Empty(t, favorites)

	tracked, err = db.IsFavorite("아이파크", "11680")
	require.NoError(t, err)
	assert.False(t, tracked)
}

func TestPriceTrendSummary(t *testing.T) {
	db := newTestDatabase(t)

	may := testTransaction("아이파크", time.Now().AddDate(0, -2, 0).Format("2006-01-02"), 200000)
	june := testTransaction("아이파크", time.Now().AddDate(0, -1, 0).Format("2006-01-02"), 220000)
	_, err := db.SaveTransactions([]models.Transaction{may, june})
	require.NoError(t, err)

	trend, err := db.GetPriceTrend("아이파크", "11680", 6)
	require.NoError(t, err)
	require.Len(t, trend.Trend, 2)
	assert.Equal(t, 2, trend.Summary.TotalTransactions)
	assert.InDelta(t, 10.0, trend.Summary.PriceChange, 0.01)
	assert.InDelta(t, may.PricePerArea, trend.Summary.MinPrice, 0.01)
	assert.InDelta(t, june.PricePerArea, trend.Summary.MaxPrice, 0.01)
}

func TestTelegramConfigSingleRow(t *testing.T) {
	db := newTestDatabase(t)

	cfg, err := db.GetTelegramConfig()
	require.NoError(t, err)
	assert.Nil(t, cfg)

	require.NoError(t, db.SaveTelegramConfig(models.TelegramConfigRequest{
		BotToken: "token-1", ChatID: "100", IsEnabled: true,
	}))
	require.NoError(t, db.SaveTelegramConfig(models.TelegramConfigRequest{
		BotToken: "token-2", ChatID: "200", IsEnabled: false,
	}))

	cfg, err = db.GetTelegramConfig()
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, "token-2", cfg.BotToken)
	assert.False(t, cfg.IsEnabled)
}

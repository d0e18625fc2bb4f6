package scheduler

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptrack/server/internal/database"
	"aptrack/server/internal/models"
)

func newTestScheduler(t *testing.T) (*Scheduler, *database.Database) {
	t.Helper()

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)
	return NewScheduler(db, nil, nil, logger), db
}

func TestSweepExpiredCache(t *testing.T) {
	s, db := newTestScheduler(t)

	now := time.Now().UTC()
	require.NoError(t, db.SaveCachedSearch(models.CacheSnapshot{
		CacheKey:   "11680_combined_6_2025-06-01",
		RegionCode: "11680",
		QueryType:  "combined",
		Months:     6,
		SearchDate: "2025-06-01",
		CreatedAt:  now.Add(-48 * time.Hour),
		ExpiresAt:  now.Add(-24 * time.Hour),
	}))

	s.SweepExpiredCache()

	stats, err := db.GetCacheStatistics()
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalCache)
}

func seedSale(t *testing.T, db *database.Database, amount int, date string) {
	t.Helper()
	_, err := db.SaveTransactions([]models.Transaction{{
		AptName:       "아이파크",
		AptSeq:        "11680-1",
		Kind:          models.KindSale,
		RegionCode:    "11680",
		DealDate:      date,
		DealAmount:    amount,
		ExclusiveArea: 84.9,
		PricePerArea:  float64(amount) * 10000 / 84.9,
		Source:        models.SourceLive,
	}})
	require.NoError(t, err)
}

func TestEvaluateAlertsPriceDrop(t *testing.T) {
	s, db := newTestScheduler(t)
	seedSale(t, db, 190000, "2025-06-15")

	id, err := db.CreatePriceAlert(models.PriceAlert{
		AptName:        "아이파크",
		RegionCode:     "11680",
		AlertType:      models.AlertPriceDrop,
		ThresholdValue: 200000,
	})
	require.NoError(t, err)
	require.NotZero(t, id)

	s.EvaluateAlerts()

	alerts, err := db.GetPriceAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsTriggered)
	assert.Equal(t, 190000.0, alerts[0].CurrentValue)
	require.NotNil(t, alerts[0].TriggeredAt)
}

func TestEvaluateAlertsAboveThresholdStaysQuiet(t *testing.T) {
	s, db := newTestScheduler(t)
	seedSale(t, db, 250000, "2025-06-15")

	_, err := db.CreatePriceAlert(models.PriceAlert{
		AptName:        "아이파크",
		RegionCode:     "11680",
		AlertType:      models.AlertPriceDrop,
		ThresholdValue: 200000,
	})
	require.NoError(t, err)

	s.EvaluateAlerts()

	alerts, err := db.GetPriceAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.False(t, alerts[0].IsTriggered)
}

func TestEvaluateAlertsNewTransaction(t *testing.T) {
	s, db := newTestScheduler(t)

	_, err := db.CreatePriceAlert(models.PriceAlert{
		AptName:        "아이파크",
		RegionCode:     "11680",
		AlertType:      models.AlertNewTransaction,
		ThresholdValue: 0,
	})
	require.NoError(t, err)

	// Transaction dated after the alert was created.
	seedSale(t, db, 240000, time.Now().AddDate(0, 0, 1).Format("2006-01-02"))

	s.EvaluateAlerts()

	alerts, err := db.GetPriceAlerts()
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.True(t, alerts[0].IsTriggered)
}

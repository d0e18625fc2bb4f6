package search

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptrack/server/config"
	"aptrack/server/internal/database"
	"aptrack/server/internal/molit"
	"aptrack/server/internal/progress"
	"aptrack/server/internal/queue"
)

func testEnvelope(apt string, year, month int) string {
	return fmt.Sprintf(`<response>
		<header><resultCode>000</resultCode><resultMsg>OK</resultMsg></header>
		<body><items><item>
			<aptNm>%s</aptNm><aptSeq>11680-1</aptSeq>
			<dealYear>%d</dealYear><dealMonth>%d</dealMonth><dealDay>5</dealDay>
			<dealAmount>250,000</dealAmount><excluUseAr>84.9</excluUseAr>
			<floor>10</floor><buildYear>2018</buildYear><umdNm>삼성동</umdNm>
		</item></items><totalCount>1</totalCount></body>
	</response>`, apt, year, month)
}

func newTestManager(t *testing.T) (*Manager, *database.Database) {
	t.Helper()

	last := time.Now().AddDate(0, -1, 0)
	saleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, testEnvelope("아이파크", last.Year(), int(last.Month())))
	}))
	t.Cleanup(saleServer.Close)

	rentServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<response>
			<header><resultCode>000</resultCode><resultMsg>OK</resultMsg></header>
			<body><items></items><totalCount>0</totalCount></body>
		</response>`)
	}))
	t.Cleanup(rentServer.Close)

	cfg := &config.Config{}
	cfg.Molit.ServiceKey = "test-key"
	cfg.Molit.TimeoutSeconds = 5
	cfg.Molit.PageSize = 100
	cfg.Cache.TTLHours = 24

	logger := logrus.New()
	logger.SetLevel(logrus.FatalLevel)

	client := molit.NewClient(cfg, nil, logger)
	client.SaleURL = saleServer.URL
	client.RentURL = rentServer.URL

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })

	// Zero-capacity queue: every push falls back to direct persistence.
	q := queue.NewTransactionQueue(0, logger)

	return NewManager(client, db, q, progress.NewStore(), cfg, logger), db
}

func TestRunFetchesAndCaches(t *testing.T) {
	m, db := newTestManager(t)

	result, err := m.Run(Request{RegionCode: "11680", QueryType: QueryCombined, Months: 1})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
	assert.Equal(t, 1, result.SaleCount)
	assert.Equal(t, 0, result.RentCount)
	require.Len(t, result.ByDong, 1)
	assert.Equal(t, "삼성동", result.ByDong[0].DongName)

	// Fetched rows must now be in the persistent store.
	stored, err := db.GetApartmentTransactions("아이파크", "11680", 10)
	require.NoError(t, err)
	assert.Len(t, stored, 1)

	// A repeat search inside the TTL is served from the snapshot.
	cached, err := m.Run(Request{RegionCode: "11680", QueryType: QueryCombined, Months: 1})
	require.NoError(t, err)
	assert.True(t, cached.FromCache)
	assert.Equal(t, result.TotalCount, cached.TotalCount)
}

func TestRunForceRefreshBypassesCache(t *testing.T) {
	m, _ := newTestManager(t)

	_, err := m.Run(Request{RegionCode: "11680", Months: 1})
	require.NoError(t, err)

	result, err := m.Run(Request{RegionCode: "11680", Months: 1, ForceRefresh: true})
	require.NoError(t, err)
	assert.False(t, result.FromCache)
}

func TestStartSearchReportsProgress(t *testing.T) {
	m, _ := newTestManager(t)

	searchID := m.StartSearch(Request{RegionCode: "11680", QueryType: QuerySale, Months: 1})
	require.NotEmpty(t, searchID)

	assert.Eventually(t, func() bool {
		st, ok := m.Progress().Get(searchID)
		return ok && st.Status == progress.StatusComplete
	}, 3*time.Second, 20*time.Millisecond)

	st, _ := m.Progress().Get(searchID)
	assert.Equal(t, 1, st.RunningCount)
}

func TestEstimateSearch(t *testing.T) {
	m, _ := newTestManager(t)

	est := m.EstimateSearch(Request{RegionCode: "11680", QueryType: QueryCombined, Months: 3})
	assert.False(t, est.FromCache)
	assert.Equal(t, 6, est.APICalls)

	est = m.EstimateSearch(Request{RegionCode: "11680", QueryType: QuerySale, Months: 3})
	assert.Equal(t, 3, est.APICalls)

	// After a search has been cached, the estimate reports zero cost.
	_, err := m.Run(Request{RegionCode: "11680", QueryType: QueryCombined, Months: 3})
	require.NoError(t, err)
	est = m.EstimateSearch(Request{RegionCode: "11680", QueryType: QueryCombined, Months: 3})
	assert.True(t, est.FromCache)
}

package molit

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthsBackRollsOverYears(t *testing.T) {
	now := time.Date(2025, 2, 28, 12, 0, 0, 0, time.UTC)
	yms := MonthsBack(now, 4)
	assert.Equal(t, []string{"202502", "202501", "202412", "202411"}, yms)
}

func TestMonthsBackFromMonthEnd(t *testing.T) {
	// 31 January minus one month must be December, not a skipped month.
	now := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)
	yms := MonthsBack(now, 2)
	assert.Equal(t, []string{"202501", "202412"}, yms)
}

func TestMonthsBetweenAscending(t *testing.T) {
	start := time.Date(2024, 11, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 2, 3, 0, 0, 0, 0, time.UTC)
	yms := MonthsBetween(start, end)
	assert.Equal(t, []string{"202411", "202412", "202501", "202502"}, yms)
}

func TestFetchWindowSaleSkipsFailedMonths(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Semantic failure for the newest month; no demo fallback.
			fmt.Fprint(w, `<response><header>
				<resultCode>22</resultCode><resultMsg>OVER LIMIT</resultMsg>
			</header><body/></response>`)
			return
		}
		now := time.Now().AddDate(0, -1, 0)
		fmt.Fprint(w, envelope(1, saleItemXML("단지", "1", now.Year(), int(now.Month()), 1, "100000", "84")))
	}))
	defer server.Close()

	c := newTestClient(t, 100)
	c.SaleURL = server.URL

	var progressCalls int
	data := c.FetchWindowSale("11680", 2, func(done, total int, label string, runningCount int, message string) {
		progressCalls++
		assert.Equal(t, 2, total)
	})

	assert.Len(t, data, 1)
	// Two months, progress reported before and after each.
	assert.Equal(t, 4, progressCalls)
}

func TestFetchRangeSaleFiltersToRange(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(2,
			saleItemXML("단지", "1", 2025, 3, 5, "100000", "84")+
				saleItemXML("단지", "2", 2025, 3, 25, "110000", "84")))
	}))
	defer server.Close()

	c := newTestClient(t, 100)
	c.SaleURL = server.URL

	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	data := c.FetchRangeSale("11680", start, end, nil)

	require.Len(t, data, 1)
	assert.Equal(t, "2025-03-05", data[0].DealDate)
}

func TestSearchByNameFiltersCaseInsensitively(t *testing.T) {
	now := time.Now()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(2,
			saleItemXML("Raemian One", "1", now.Year(), int(now.Month()), 1, "100000", "84")+
				saleItemXML("자이", "2", now.Year(), int(now.Month()), 1, "110000", "84")))
	}))
	defer server.Close()

	c := newTestClient(t, 100)
	c.SaleURL = server.URL

	data := c.SearchByName("11680", "raemian", 1)
	require.Len(t, data, 1)
	assert.Equal(t, "Raemian One", data[0].AptName)
}

func TestFetchCombinedMergesAndSorts(t *testing.T) {
	// Use last month so no item can be dropped as future-dated.
	now := time.Now().AddDate(0, -1, 0)
	saleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(1, saleItemXML("매매단지", "1", now.Year(), int(now.Month()), 1, "100000", "84")))
	}))
	defer saleServer.Close()

	rentServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(1, fmt.Sprintf(`<item>
			<aptNm>전세단지</aptNm>
			<dealYear>%d</dealYear><dealMonth>%d</dealMonth><dealDay>2</dealDay>
			<deposit>40,000</deposit><excluUseAr>84</excluUseAr>
		</item>`, now.Year(), int(now.Month()))))
	}))
	defer rentServer.Close()

	c := newTestClient(t, 100)
	c.SaleURL = saleServer.URL
	c.RentURL = rentServer.URL

	ym := now.Format("200601")
	combined := c.FetchCombined("11680", ym)
	assert.Equal(t, 1, combined.SaleCount)
	assert.Equal(t, 1, combined.RentCount)
	require.Len(t, combined.Data, 2)
	// Sorted newest first: day 2 lease precedes day 1 sale.
	assert.Equal(t, "전세단지", combined.Data[0].AptName)
	assert.Equal(t, "매매단지", combined.Data[1].AptName)
}

func TestFetchCombinedOneSideFails(t *testing.T) {
	now := time.Now().AddDate(0, -1, 0)
	saleServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<response><header>
			<resultCode>22</resultCode><resultMsg>OVER LIMIT</resultMsg>
		</header><body/></response>`)
	}))
	defer saleServer.Close()

	rentServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, envelope(1, fmt.Sprintf(`<item>
			<aptNm>전세단지</aptNm>
			<dealYear>%d</dealYear><dealMonth>%d</dealMonth><dealDay>2</dealDay>
			<deposit>40,000</deposit>
		</item>`, now.Year(), int(now.Month()))))
	}))
	defer rentServer.Close()

	c := newTestClient(t, 100)
	c.SaleURL = saleServer.URL
	c.RentURL = rentServer.URL

	combined := c.FetchCombined("11680", now.Format("200601"))
	assert.Equal(t, 0, combined.SaleCount)
	assert.Equal(t, 1, combined.RentCount)
	assert.NotEmpty(t, combined.SaleError)
	assert.Empty(t, combined.RentError)
	assert.Len(t, combined.Data, 1)
}

package molit

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"aptrack/server/internal/models"
)

// ProgressFunc receives window-fetch progress. It is invoked before and
// after each month so callers can surface progress without the fetcher
// knowing anything about the presentation layer.
type ProgressFunc func(done, total int, label string, runningCount int, message string)

// FetchAllSale fetches every page of sale filings for one region and month.
// When the month fails at the transport level with nothing collected, demo
// records stand in so the rest of the pipeline stays exercisable offline.
func (c *Client) FetchAllSale(regionCode, dealYMD string) models.FetchResult {
	result := c.fetchAllPages(regionCode, dealYMD, func(page int) models.FetchResult {
		return c.FetchSaleMonth(regionCode, dealYMD, page, c.pageSize)
	})
	if !result.Success && result.TransportError && len(result.Data) == 0 {
		c.logger.WithFields(logrus.Fields{
			"region_code": regionCode,
			"deal_ymd":    dealYMD,
		}).Info("Substituting demo data for failed month")
		return c.demoMonth(models.KindSale, regionCode, dealYMD)
	}
	return result
}

// FetchAllLease fetches every page of lease filings for one region and month,
// with the same demo fallback as FetchAllSale.
func (c *Client) FetchAllLease(regionCode, dealYMD string) models.FetchResult {
	result := c.fetchAllPages(regionCode, dealYMD, func(page int) models.FetchResult {
		return c.FetchLeaseMonth(regionCode, dealYMD, page, c.pageSize)
	})
	if !result.Success && result.TransportError && len(result.Data) == 0 {
		c.logger.WithFields(logrus.Fields{
			"region_code": regionCode,
			"deal_ymd":    dealYMD,
		}).Info("Substituting demo data for failed month")
		return c.demoMonth(models.KindLease, regionCode, dealYMD)
	}
	return result
}

// fetchAllPages advances the page number until a short page arrives or the
// accumulated count reaches the upstream-reported total. A failed page aborts
// the loop and returns whatever was accumulated plus the error.
func (c *Client) fetchAllPages(regionCode, dealYMD string, fetch func(page int) models.FetchResult) models.FetchResult {
	var all []models.Transaction
	totalCount := 0
	source := models.SourceLive

	for page := 1; ; page++ {
		result := fetch(page)
		if !result.Success {
			result.Data = all
			return result
		}
		if result.Source == models.SourceDemo {
			source = models.SourceDemo
		}

		all = append(all, result.Data...)
		if result.TotalCount > totalCount {
			totalCount = result.TotalCount
		}

		if len(result.Data) < c.pageSize || len(all) >= totalCount {
			break
		}
	}

	return models.FetchResult{
		Success:    true,
		Data:       all,
		TotalCount: totalCount,
		RegionCode: regionCode,
		RegionName: c.RegionName(regionCode),
		DealYMD:    dealYMD,
		Source:     source,
	}
}

// FetchWindowSale fetches sale filings for the last n calendar months,
// newest month first.
func (c *Client) FetchWindowSale(regionCode string, months int, progress ProgressFunc) []models.Transaction {
	return c.fetchWindow(regionCode, months, "매매", c.FetchAllSale, progress)
}

// FetchWindowLease fetches lease filings for the last n calendar months,
// newest month first.
func (c *Client) FetchWindowLease(regionCode string, months int, progress ProgressFunc) []models.Transaction {
	return c.fetchWindow(regionCode, months, "전월세", c.FetchAllLease, progress)
}

// fetchWindow iterates calendar months in strictly descending order. A
// failed month is logged and skipped; the window call never fails outright.
func (c *Client) fetchWindow(regionCode string, months int, label string, fetch func(regionCode, dealYMD string) models.FetchResult, progress ProgressFunc) []models.Transaction {
	var all []models.Transaction
	yms := MonthsBack(time.Now(), months)

	for i, ym := range yms {
		if progress != nil {
			progress(i, len(yms), ym, len(all), fmt.Sprintf("%s %s 조회 중", label, ym))
		}

		result := fetch(regionCode, ym)
		if result.Success {
			all = append(all, result.Data...)
			c.logger.WithFields(logrus.Fields{
				"deal_ymd": ym,
				"count":    len(result.Data),
				"source":   result.Source,
			}).Info("Collected month data")
		} else {
			c.logger.WithFields(logrus.Fields{
				"deal_ymd": ym,
				"error":    result.Error,
			}).Warn("Month fetch failed, skipping")
		}

		if progress != nil {
			progress(i+1, len(yms), ym, len(all), fmt.Sprintf("%s %s 완료", label, ym))
		}
	}

	return all
}

// FetchRangeSale fetches sale filings between two dates, iterating months in
// ascending order and filtering records to the range afterwards.
func (c *Client) FetchRangeSale(regionCode string, start, end time.Time, progress ProgressFunc) []models.Transaction {
	var all []models.Transaction
	yms := MonthsBetween(start, end)

	for i, ym := range yms {
		if progress != nil {
			progress(i, len(yms), ym, len(all), fmt.Sprintf("매매 %s 조회 중", ym))
		}

		result := c.FetchAllSale(regionCode, ym)
		if result.Success {
			for _, tx := range result.Data {
				d, err := time.Parse("2006-01-02", tx.DealDate)
				if err != nil || d.Before(start) || d.After(end) {
					continue
				}
				all = append(all, tx)
			}
		} else {
			c.logger.WithFields(logrus.Fields{
				"deal_ymd": ym,
				"error":    result.Error,
			}).Warn("Month fetch failed, skipping")
		}

		if progress != nil {
			progress(i+1, len(yms), ym, len(all), fmt.Sprintf("매매 %s 완료", ym))
		}
	}

	return all
}

// SearchByName fetches a sale window and filters it to apartments whose name
// contains the query, case-insensitively.
func (c *Client) SearchByName(regionCode, aptName string, months int) []models.Transaction {
	all := c.FetchWindowSale(regionCode, months, nil)

	needle := strings.ToLower(aptName)
	var filtered []models.Transaction
	for _, tx := range all {
		if strings.Contains(strings.ToLower(tx.AptName), needle) {
			filtered = append(filtered, tx)
		}
	}
	return filtered
}

// MonthsBack enumerates the last n calendar months as YYYYMM strings,
// current month first, rolling over year boundaries.
func MonthsBack(now time.Time, months int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	yms := make([]string, 0, months)
	for i := 0; i < months; i++ {
		yms = append(yms, first.AddDate(0, -i, 0).Format("200601"))
	}
	return yms
}

// MonthsBetween enumerates the calendar months touching [start, end] as
// YYYYMM strings in ascending order.
func MonthsBetween(start, end time.Time) []string {
	var yms []string
	current := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	last := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, end.Location())
	for !current.After(last) {
		yms = append(yms, current.Format("200601"))
		current = current.AddDate(0, 1, 0)
	}
	return yms
}

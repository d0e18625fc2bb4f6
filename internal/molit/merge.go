package molit

import (
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"aptrack/server/internal/models"
)

// FetchCombined fetches sale and lease filings for one region and month
// concurrently and merges both result sets, newest deal first. A failure on
// one side is reported but never blocks the other side's data.
func (c *Client) FetchCombined(regionCode, dealYMD string) models.CombinedResult {
	var (
		wg   sync.WaitGroup
		sale models.FetchResult
		rent models.FetchResult
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sale = c.FetchAllSale(regionCode, dealYMD)
	}()
	go func() {
		defer wg.Done()
		rent = c.FetchAllLease(regionCode, dealYMD)
	}()
	wg.Wait()

	return c.mergeResults(sale, rent, regionCode, dealYMD)
}

// FetchCombinedWindow fetches sale and lease filings over the last n months
// concurrently. Each side runs its own month loop; progress covers the sale
// side, which dominates the wall-clock time in practice.
func (c *Client) FetchCombinedWindow(regionCode string, months int, progress ProgressFunc) models.CombinedResult {
	var (
		wg   sync.WaitGroup
		sale []models.Transaction
		rent []models.Transaction
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		sale = c.FetchWindowSale(regionCode, months, progress)
	}()
	go func() {
		defer wg.Done()
		rent = c.FetchWindowLease(regionCode, months, nil)
	}()
	wg.Wait()

	merged := make([]models.Transaction, 0, len(sale)+len(rent))
	merged = append(merged, sale...)
	merged = append(merged, rent...)
	sortByDealDateDesc(merged)

	source := models.SourceLive
	for _, tx := range merged {
		if tx.Source == models.SourceDemo {
			source = models.SourceDemo
			break
		}
	}

	c.logger.WithFields(logrus.Fields{
		"region_code": regionCode,
		"months":      months,
		"sale_count":  len(sale),
		"rent_count":  len(rent),
	}).Info("Combined window fetch finished")

	return models.CombinedResult{
		Data:       merged,
		SaleCount:  len(sale),
		RentCount:  len(rent),
		TotalCount: len(merged),
		Source:     source,
	}
}

func (c *Client) mergeResults(sale, rent models.FetchResult, regionCode, dealYMD string) models.CombinedResult {
	combined := models.CombinedResult{Source: models.SourceLive}

	if sale.Success {
		combined.Data = append(combined.Data, sale.Data...)
		combined.SaleCount = len(sale.Data)
	} else {
		combined.SaleError = sale.Error
		c.logger.WithFields(logrus.Fields{
			"region_code": regionCode,
			"deal_ymd":    dealYMD,
			"error":       sale.Error,
		}).Warn("Sale side of combined fetch failed")
	}

	if rent.Success {
		combined.Data = append(combined.Data, rent.Data...)
		combined.RentCount = len(rent.Data)
	} else {
		combined.RentError = rent.Error
		c.logger.WithFields(logrus.Fields{
			"region_code": regionCode,
			"deal_ymd":    dealYMD,
			"error":       rent.Error,
		}).Warn("Rent side of combined fetch failed")
	}

	if sale.Source == models.SourceDemo || rent.Source == models.SourceDemo {
		combined.Source = models.SourceDemo
	}

	sortByDealDateDesc(combined.Data)
	combined.TotalCount = len(combined.Data)
	return combined
}

func sortByDealDateDesc(txs []models.Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		return txs[i].DealDate > txs[j].DealDate
	})
}

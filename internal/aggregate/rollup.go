package aggregate

import (
	"fmt"
	"sort"

	"aptrack/server/internal/models"
)

// ByDong groups transactions by legal sub-district and, within each dong, by
// calendar month. Dongs come back ordered by transaction count descending so
// the busiest areas lead the response.
func ByDong(txs []models.Transaction) []models.DongRollup {
	byDong := make(map[string]*models.DongRollup)
	// price observations per month, counting only strictly positive amounts
	priced := make(map[*models.MonthRollup]int)

	for _, tx := range txs {
		dong := tx.DongName
		if dong == "" {
			dong = "기타"
		}

		rollup, ok := byDong[dong]
		if !ok {
			rollup = &models.DongRollup{
				DongName: dong,
				Months:   make(map[string]*models.MonthRollup),
			}
			byDong[dong] = rollup
		}
		rollup.TotalCount++

		monthKey := monthKeyOf(tx)
		month, ok := rollup.Months[monthKey]
		if !ok {
			month = &models.MonthRollup{
				MonthDisplay: fmt.Sprintf("%d년 %02d월", tx.DealYear, tx.DealMonth),
			}
			rollup.Months[monthKey] = month
		}
		month.Count++

		// Zero amounts (zero-deposit leases, malformed upstream values
		// degraded to 0) never enter the price statistics.
		amount := float64(tx.DealAmount)
		if amount <= 0 {
			continue
		}
		n := priced[month]
		month.AvgPrice = (month.AvgPrice*float64(n) + amount) / float64(n+1)
		priced[month] = n + 1
		if month.MinPrice == 0 || amount < month.MinPrice {
			month.MinPrice = amount
		}
		if amount > month.MaxPrice {
			month.MaxPrice = amount
		}
	}

	rollups := make([]models.DongRollup, 0, len(byDong))
	for _, r := range byDong {
		rollups = append(rollups, *r)
	}
	sort.SliceStable(rollups, func(i, j int) bool {
		if rollups[i].TotalCount != rollups[j].TotalCount {
			return rollups[i].TotalCount > rollups[j].TotalCount
		}
		return rollups[i].DongName < rollups[j].DongName
	})
	return rollups
}

// ByApartment groups transactions by complex name. Price statistics are
// computed over price-per-area and only from strictly positive values, so
// lease records and zero-area sales never distort the averages.
func ByApartment(txs []models.Transaction) []models.ApartmentRollup {
	type acc struct {
		rollup models.ApartmentRollup
		sum    float64
		n      int
		dongs  map[string]struct{}
	}
	byApt := make(map[string]*acc)

	for _, tx := range txs {
		a, ok := byApt[tx.AptName]
		if !ok {
			a = &acc{
				rollup: models.ApartmentRollup{
					AptName:    tx.AptName,
					RegionCode: tx.RegionCode,
					RegionName: tx.RegionName,
					BuildYear:  tx.BuildYear,
				},
				dongs: make(map[string]struct{}),
			}
			byApt[tx.AptName] = a
		}

		a.rollup.TransactionCount++
		if tx.IsLease() {
			a.rollup.RentCount++
		} else {
			a.rollup.SaleCount++
		}
		if tx.DongName != "" {
			a.dongs[tx.DongName] = struct{}{}
		}
		if a.rollup.BuildYear == 0 && tx.BuildYear > 0 {
			a.rollup.BuildYear = tx.BuildYear
		}

		if tx.PricePerArea > 0 {
			a.sum += tx.PricePerArea
			a.n++
			if a.rollup.MinPrice == 0 || tx.PricePerArea < a.rollup.MinPrice {
				a.rollup.MinPrice = tx.PricePerArea
			}
			if tx.PricePerArea > a.rollup.MaxPrice {
				a.rollup.MaxPrice = tx.PricePerArea
			}
		}
	}

	rollups := make([]models.ApartmentRollup, 0, len(byApt))
	for _, a := range byApt {
		if a.n > 0 {
			a.rollup.AvgPrice = a.sum / float64(a.n)
		}
		for dong := range a.dongs {
			a.rollup.DongList = append(a.rollup.DongList, dong)
		}
		sort.Strings(a.rollup.DongList)
		rollups = append(rollups, a.rollup)
	}
	sort.SliceStable(rollups, func(i, j int) bool {
		if rollups[i].TransactionCount != rollups[j].TransactionCount {
			return rollups[i].TransactionCount > rollups[j].TransactionCount
		}
		return rollups[i].AptName < rollups[j].AptName
	})
	return rollups
}

func monthKeyOf(tx models.Transaction) string {
	return fmt.Sprintf("%04d-%02d", tx.DealYear, tx.DealMonth)
}

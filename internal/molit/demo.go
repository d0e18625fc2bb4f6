package molit

import (
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"aptrack/server/internal/models"
)

// demoComplex describes one synthetic apartment complex. Base prices are in
// units of 10,000 KRW per pyeong-equivalent and only need to look plausible.
type demoComplex struct {
	name      string
	basePrice float64
	areas     []float64
}

var demoComplexes = map[string][]demoComplex{
	"11680": { // 강남구
		{"삼성동 아이파크", 150000, []float64{84, 114, 134}},
		{"역삼 트리마제", 130000, []float64{74, 84, 104}},
		{"논현 래미안", 160000, []float64{84, 114, 144}},
		{"청담 자이", 180000, []float64{84, 114, 134}},
		{"대치 푸르지오", 140000, []float64{74, 84, 104}},
	},
	"11650": { // 서초구
		{"반포자이", 170000, []float64{84, 114, 134}},
		{"서초 아크로비스타", 140000, []float64{74, 84, 104}},
		{"방배 래미안", 150000, []float64{84, 114, 134}},
		{"서초 푸르지오", 160000, []float64{74, 84, 104}},
		{"잠원 한신", 130000, []float64{84, 114, 134}},
	},
	"11215": { // 광진구
		{"건국대 래미안", 90000, []float64{74, 84, 104}},
		{"구의 자이", 85000, []float64{84, 114, 134}},
		{"광나루 힐스테이트", 80000, []float64{74, 84, 104}},
		{"아차산 푸르지오", 95000, []float64{84, 114, 134}},
	},
}

// demoMonth generates clearly flagged synthetic records for one region and
// month. Used only when a live month fetch fails at the transport level.
func (c *Client) demoMonth(kind models.TransactionKind, regionCode, dealYMD string) models.FetchResult {
	regionName := c.RegionName(regionCode)

	complexes, ok := demoComplexes[regionCode]
	if !ok {
		complexes = []demoComplex{
			{fmt.Sprintf("%s 샘플단지", regionName), 80000, []float64{84, 114}},
			{fmt.Sprintf("%s 래미안", regionName), 85000, []float64{74, 84, 104}},
			{fmt.Sprintf("%s 힐스테이트", regionName), 90000, []float64{84, 114, 134}},
		}
	}

	year, _ := strconv.Atoi(dealYMD[:4])
	month, _ := strconv.Atoi(dealYMD[4:])

	// In the current month, generated days must not run past today; live
	// records with future deal dates are dropped at parse time and demo
	// records honor the same invariant.
	now := time.Now()
	maxDay := 28
	if year == now.Year() && month == int(now.Month()) && now.Day() < maxDay {
		maxDay = now.Day()
	}

	var transactions []models.Transaction
	for _, cx := range complexes {
		for i := 0; i < 3+rand.Intn(6); i++ {
			area := cx.areas[rand.Intn(len(cx.areas))]
			pricePerArea := cx.basePrice * (0.9 + rand.Float64()*0.2)
			totalPrice := int(area * pricePerArea / 10000)
			day := 1 + rand.Intn(maxDay)

			tx := models.Transaction{
				AptName:       cx.name,
				AptSeq:        fmt.Sprintf("%s-%04d", regionCode, 1000+rand.Intn(9000)),
				Kind:          kind,
				RegionCode:    regionCode,
				RegionName:    regionName,
				DongName:      "테스트동",
				DealDate:      fmt.Sprintf("%04d-%02d-%02d", year, month, day),
				DealYear:      year,
				DealMonth:     month,
				DealDay:       day,
				ExclusiveArea: area,
				Floor:         3 + rand.Intn(23),
				BuildYear:     2015 + rand.Intn(9),
				RoadName:      "테스트로",
				BuyerGbn:      "개인",
				SellerGbn:     "개인",
				DealingGbn:    "중개거래",
				Source:        models.SourceDemo,
			}

			if kind == models.KindLease {
				tx.Deposit = totalPrice * 6 / 10
				tx.DealAmount = tx.Deposit
				if rand.Intn(2) == 0 {
					tx.MonthlyRent = 50 + rand.Intn(150)
				}
				tx.ContractTerm = "24개월"
				tx.ContractType = "신규"
			} else {
				tx.DealAmount = totalPrice
				tx.PricePerArea = pricePerArea
			}

			transactions = append(transactions, tx)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"region_code": regionCode,
		"deal_ymd":    dealYMD,
		"count":       len(transactions),
	}).Info("Generated demo transaction data")

	return models.FetchResult{
		Success:    true,
		Data:       transactions,
		TotalCount: len(transactions),
		RegionCode: regionCode,
		RegionName: regionName,
		DealYMD:    dealYMD,
		Source:     models.SourceDemo,
	}
}

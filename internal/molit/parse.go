package molit

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"aptrack/server/internal/models"
)

const resultCodeOK = "000"

// apiResponse mirrors the MOLIT XML envelope. Both the trade and the rent
// endpoint share it; rent items just leave the sale-only fields empty and
// vice versa.
type apiResponse struct {
	XMLName xml.Name `xml:"response"`
	Header  struct {
		ResultCode string `xml:"resultCode"`
		ResultMsg  string `xml:"resultMsg"`
	} `xml:"header"`
	Body struct {
		Items struct {
			Item []apiItem `xml:"item"`
		} `xml:"items"`
		TotalCount int `xml:"totalCount"`
		PageNo     int `xml:"pageNo"`
		NumOfRows  int `xml:"numOfRows"`
	} `xml:"body"`
}

type apiItem struct {
	AptNm       string `xml:"aptNm"`
	AptSeq      string `xml:"aptSeq"`
	AptDong     string `xml:"aptDong"`
	BuildYear   string `xml:"buildYear"`
	BuyerGbn    string `xml:"buyerGbn"`
	DealAmount  string `xml:"dealAmount"`
	DealYear    string `xml:"dealYear"`
	DealMonth   string `xml:"dealMonth"`
	DealDay     string `xml:"dealDay"`
	DealingGbn  string `xml:"dealingGbn"`
	ExcluUseAr  string `xml:"excluUseAr"`
	Floor       string `xml:"floor"`
	Jibun       string `xml:"jibun"`
	RoadNm      string `xml:"roadNm"`
	RoadNmBon   string `xml:"roadNmBonbun"`
	RoadNmBu    string `xml:"roadNmBubun"`
	SlerGbn     string `xml:"slerGbn"`
	UmdNm       string `xml:"umdNm"`
	Deposit     string `xml:"deposit"`
	MonthlyRent string `xml:"monthlyRent"`
	ContractTrm string `xml:"contractTerm"`
	ContractTyp string `xml:"contractType"`
}

// parseResponse turns one XML page into a FetchResult. A non-000 result code
// is a structured failure carrying the upstream message; individual items
// that fail validation are skipped and counted, never fatal to the page.
func (c *Client) parseResponse(body []byte, kind models.TransactionKind, regionCode, dealYMD string) models.FetchResult {
	regionName := c.RegionName(regionCode)

	var resp apiResponse
	if err := xml.Unmarshal(body, &resp); err != nil {
		c.logger.WithError(err).Error("Failed to parse MOLIT XML response")
		return models.FetchResult{
			Success:    false,
			Error:      fmt.Sprintf("XML 파싱 오류: %v", err),
			RegionCode: regionCode,
			RegionName: regionName,
			DealYMD:    dealYMD,
			Source:     models.SourceLive,
		}
	}

	if resp.Header.ResultCode != "" && resp.Header.ResultCode != resultCodeOK {
		msg := resp.Header.ResultMsg
		if msg == "" {
			msg = "알 수 없는 오류"
		}
		c.logger.WithFields(logrus.Fields{
			"result_code": resp.Header.ResultCode,
			"result_msg":  msg,
		}).Error("MOLIT API returned an error")
		return models.FetchResult{
			Success:    false,
			Error:      msg,
			RegionCode: regionCode,
			RegionName: regionName,
			DealYMD:    dealYMD,
			Source:     models.SourceLive,
		}
	}

	now := time.Now()
	var transactions []models.Transaction
	skipped := 0
	for _, item := range resp.Body.Items.Item {
		tx, ok := c.parseItem(item, kind, regionCode, regionName, now)
		if !ok {
			skipped++
			continue
		}
		transactions = append(transactions, tx)
	}

	totalCount := resp.Body.TotalCount
	if totalCount == 0 {
		totalCount = len(transactions)
	}

	result := models.FetchResult{
		Success:      true,
		Data:         transactions,
		TotalCount:   totalCount,
		RegionCode:   regionCode,
		RegionName:   regionName,
		DealYMD:      dealYMD,
		Source:       models.SourceLive,
		SkippedItems: skipped,
	}
	if len(transactions) == 0 {
		result.TotalCount = 0
		result.Message = "해당 기간에 거래 데이터가 없습니다."
	}
	return result
}

// parseItem validates and converts one XML item. Items with an invalid or
// future deal date are excluded; other malformed numerics degrade to zero.
func (c *Client) parseItem(item apiItem, kind models.TransactionKind, regionCode, regionName string, now time.Time) (models.Transaction, bool) {
	year := parseIntField(item.DealYear)
	month := parseIntField(item.DealMonth)
	day := parseIntField(item.DealDay)
	if year < 1900 || year > 2100 || month < 1 || month > 12 || day < 1 || day > 31 {
		c.logger.WithFields(logrus.Fields{
			"apt_name": item.AptNm,
			"year":     year,
			"month":    month,
			"day":      day,
		}).Warn("Dropping item with invalid deal date")
		return models.Transaction{}, false
	}

	dealDate := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	parsed, err := time.Parse("2006-01-02", dealDate)
	if err != nil || parsed.After(now) {
		c.logger.WithField("deal_date", dealDate).Warn("Dropping future-dated or malformed item")
		return models.Transaction{}, false
	}

	area := parseFloatField(item.ExcluUseAr)
	if area < 0 || area > 1000 {
		area = 0
	}
	floor := parseIntField(item.Floor)
	if floor < 0 || floor > 200 {
		floor = 0
	}

	tx := models.Transaction{
		AptName:       strings.TrimSpace(item.AptNm),
		AptSeq:        strings.TrimSpace(item.AptSeq),
		Kind:          kind,
		RegionCode:    regionCode,
		RegionName:    regionName,
		DongName:      strings.TrimSpace(item.UmdNm),
		DealDate:      dealDate,
		DealYear:      year,
		DealMonth:     month,
		DealDay:       day,
		ExclusiveArea: area,
		Floor:         floor,
		BuildYear:     parseIntField(item.BuildYear),
		RoadName:      strings.TrimSpace(item.RoadNm),
		RoadNameBon:   strings.TrimSpace(item.RoadNmBon),
		RoadNameBu:    strings.TrimSpace(item.RoadNmBu),
		Jibun:         strings.TrimSpace(item.Jibun),
		BuyerGbn:      strings.TrimSpace(item.BuyerGbn),
		SellerGbn:     strings.TrimSpace(item.SlerGbn),
		DealingGbn:    strings.TrimSpace(item.DealingGbn),
		Source:        models.SourceLive,
	}

	if kind == models.KindLease {
		tx.Deposit = parseAmount(item.Deposit)
		tx.MonthlyRent = parseAmount(item.MonthlyRent)
		tx.ContractTerm = strings.TrimSpace(item.ContractTrm)
		tx.ContractType = strings.TrimSpace(item.ContractTyp)
		// lease deal amount is the deposit; there is no sale price
		tx.DealAmount = tx.Deposit
	} else {
		tx.DealAmount = parseAmount(item.DealAmount)
		if tx.ExclusiveArea > 0 {
			tx.PricePerArea = float64(tx.DealAmount) * 10000 / tx.ExclusiveArea
		}
	}

	return tx, true
}

// parseAmount parses a comma-grouped amount in units of 10,000 KRW.
func parseAmount(s string) int {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

func parseIntField(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

func parseFloatField(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

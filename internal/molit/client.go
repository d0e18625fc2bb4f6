package molit

import (
	"crypto/tls"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"aptrack/server/config"
	"aptrack/server/internal/models"
)

const (
	saleBaseURL = "https://apis.data.go.kr/1613000/RTMSDataSvcAptTradeDev/getRTMSDataSvcAptTradeDev"
	rentBaseURL = "https://apis.data.go.kr/1613000/RTMSDataSvcAptRent/getRTMSDataSvcAptRent"
)

// RegionNamer maps region codes to display names.
type RegionNamer interface {
	CodeToName(code string) string
}

// Client fetches apartment transaction records from the MOLIT open-data API.
type Client struct {
	logger     *logrus.Logger
	serviceKey string
	regions    RegionNamer

	// SaleURL and RentURL default to the public endpoints; tests point them
	// at a local server.
	SaleURL string
	RentURL string

	requestDelay time.Duration
	pageSize     int

	client *http.Client
	// insecureClient is only used for the single retry after a TLS
	// verification failure; the regular client keeps verifying.
	insecureClient *http.Client
}

// NewClient builds a client from the loaded configuration.
func NewClient(cfg *config.Config, regions RegionNamer, logger *logrus.Logger) *Client {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	timeout := time.Duration(cfg.Molit.TimeoutSeconds) * time.Second
	return &Client{
		logger:       logger,
		serviceKey:   cfg.Molit.ServiceKey,
		regions:      regions,
		SaleURL:      saleBaseURL,
		RentURL:      rentBaseURL,
		requestDelay: time.Duration(cfg.Molit.RequestDelayMillis) * time.Millisecond,
		pageSize:     cfg.Molit.PageSize,
		client:       &http.Client{Timeout: timeout},
		insecureClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// RegionName returns the display name for a region code.
func (c *Client) RegionName(code string) string {
	if c.regions == nil {
		return fmt.Sprintf("지역코드 %s", code)
	}
	return c.regions.CodeToName(code)
}

// PageSize returns the configured page size.
func (c *Client) PageSize() int {
	return c.pageSize
}

// FetchSaleMonth fetches one page of sale filings for a region and month.
func (c *Client) FetchSaleMonth(regionCode, dealYMD string, page, pageSize int) models.FetchResult {
	return c.fetchPage(c.SaleURL, models.KindSale, regionCode, dealYMD, page, pageSize)
}

// FetchLeaseMonth fetches one page of lease filings for a region and month.
func (c *Client) FetchLeaseMonth(regionCode, dealYMD string, page, pageSize int) models.FetchResult {
	return c.fetchPage(c.RentURL, models.KindLease, regionCode, dealYMD, page, pageSize)
}

// fetchPage performs one rate-limited upstream call and parses the XML body.
// Upstream semantic failures (non-000 result code) come back as a failed
// result, not an error; transport failures after the TLS retry do the same.
func (c *Client) fetchPage(baseURL string, kind models.TransactionKind, regionCode, dealYMD string, page, pageSize int) models.FetchResult {
	if c.requestDelay > 0 {
		time.Sleep(c.requestDelay)
	}

	url := fmt.Sprintf("%s?serviceKey=%s&LAWD_CD=%s&DEAL_YMD=%s&pageNo=%d&numOfRows=%d",
		baseURL, c.serviceKey, regionCode, dealYMD, page, pageSize)

	c.logger.WithFields(logrus.Fields{
		"kind":        kind,
		"region_code": regionCode,
		"region_name": c.RegionName(regionCode),
		"deal_ymd":    dealYMD,
		"page":        page,
	}).Info("Calling MOLIT API")

	body, err := c.get(url)
	if err != nil {
		c.logger.WithError(err).WithFields(logrus.Fields{
			"region_code": regionCode,
			"deal_ymd":    dealYMD,
		}).Error("MOLIT API call failed")
		return models.FetchResult{
			Success:        false,
			Error:          err.Error(),
			RegionCode:     regionCode,
			RegionName:     c.RegionName(regionCode),
			DealYMD:        dealYMD,
			Source:         models.SourceLive,
			TransportError: true,
		}
	}

	return c.parseResponse(body, kind, regionCode, dealYMD)
}

// get issues the HTTP request, retrying once with certificate verification
// relaxed when the failure is a TLS one. Some data.go.kr frontends present
// chains that older trust stores reject.
func (c *Client) get(url string) ([]byte, error) {
	body, err := doGet(c.client, url)
	if err == nil {
		return body, nil
	}
	if !isTLSError(err) {
		return nil, err
	}

	c.logger.WithError(err).Warn("TLS verification failed, retrying with verification relaxed")
	body, retryErr := doGet(c.insecureClient, url)
	if retryErr != nil {
		return nil, fmt.Errorf("retry after TLS failure: %w", retryErr)
	}
	return body, nil
}

package telegram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"aptrack/server/internal/models"
)

type Service struct {
	logger *logrus.Logger
	client *http.Client
	config *models.TelegramConfig

	// BaseURL is overridable for tests.
	BaseURL string
}

func NewService(logger *logrus.Logger) *Service {
	return &Service{
		logger: logger,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		BaseURL: "https://api.telegram.org",
	}
}

func (s *Service) UpdateConfig(config *models.TelegramConfig) {
	s.config = config
}

// IsEnabled reports whether notifications are configured and switched on.
func (s *Service) IsEnabled() bool {
	return s.config != nil && s.config.IsEnabled
}

// SendMessage sends an HTML-formatted message to the configured chat.
func (s *Service) SendMessage(message string) error {
	if s.config == nil || !s.config.IsEnabled {
		return nil
	}

	if s.config.BotToken == "" {
		return errors.New("Telegram bot token is not configured")
	}

	if s.config.ChatID == "" {
		return errors.New("Telegram chat ID is not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", s.BaseURL, s.config.BotToken)
	payload := map[string]interface{}{
		"chat_id":    s.config.ChatID,
		"text":       message,
		"parse_mode": "HTML",
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal message payload: %v", err)
	}

	resp, err := s.client.Post(url, "application/json", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to send message to Telegram API: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			return errors.New("invalid bot token - please check your token from @BotFather")
		case http.StatusBadRequest:
			return fmt.Errorf("invalid chat ID or message format: %s", string(body))
		case http.StatusForbidden:
			return errors.New("bot was blocked by the user or chat")
		case http.StatusNotFound:
			return errors.New("bot not found - please check your token from @BotFather")
		default:
			return fmt.Errorf("Telegram API error (status %d): %s", resp.StatusCode, string(body))
		}
	}

	return nil
}

// NotifyAlert sends a formatted notification for a triggered price alert,
// including the transaction that tripped it when available.
func (s *Service) NotifyAlert(alert models.PriceAlert, tx *models.Transaction) error {
	if s.config == nil || !s.config.IsEnabled {
		return nil
	}

	var title string
	switch alert.AlertType {
	case models.AlertPriceDrop:
		title = "<b>📉 가격 하락 알림</b>"
	case models.AlertPriceRise:
		title = "<b>📈 가격 상승 알림</b>"
	case models.AlertNewTransaction:
		title = "<b>🆕 신규 거래 알림</b>"
	default:
		title = "<b>🔔 가격 알림</b>"
	}

	message := fmt.Sprintf(
		"%s\n\n🏠 %s\n📍 지역코드 %s\n🎯 기준값: %.0f\n💰 현재값: %.0f",
		title, alert.AptName, alert.RegionCode, alert.ThresholdValue, alert.CurrentValue,
	)

	if tx != nil {
		message += fmt.Sprintf(
			"\n\n최근 거래: %s %d층 %.1f㎡\n거래일: %s\n거래금액: %s만원",
			tx.AptName, tx.Floor, tx.ExclusiveArea, tx.DealDate, formatAmount(tx.DealAmount),
		)
	}

	if err := s.SendMessage(message); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"apt_name":   alert.AptName,
			"alert_type": alert.AlertType,
		}).Error("Failed to send alert notification")
		return err
	}
	return nil
}

// formatAmount adds comma grouping to an amount in units of 10,000 KRW.
func formatAmount(amount int) string {
	s := fmt.Sprintf("%d", amount)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}
	return string(out)
}

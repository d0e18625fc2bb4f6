package telegram

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptrack/server/internal/models"
)

func TestSendMessageDisabledIsNoop(t *testing.T) {
	s := NewService(logrus.New())
	assert.NoError(t, s.SendMessage("ignored"))

	s.UpdateConfig(&models.TelegramConfig{BotToken: "x", ChatID: "1", IsEnabled: false})
	assert.NoError(t, s.SendMessage("ignored"))
}

func TestSendMessagePostsPayload(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/bottoken-1/sendMessage", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	s := NewService(logrus.New())
	s.BaseURL = server.URL
	s.UpdateConfig(&models.TelegramConfig{BotToken: "token-1", ChatID: "100", IsEnabled: true})

	require.NoError(t, s.SendMessage("<b>테스트</b>"))
	assert.Equal(t, "100", got["chat_id"])
	assert.Equal(t, "<b>테스트</b>", got["text"])
	assert.Equal(t, "HTML", got["parse_mode"])
}

func TestSendMessageMapsStatusCodes(t *testing.T) {
	status := http.StatusUnauthorized
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	defer server.Close()

	s := NewService(logrus.New())
	s.BaseURL = server.URL
	s.UpdateConfig(&models.TelegramConfig{BotToken: "bad", ChatID: "100", IsEnabled: true})

	err := s.SendMessage("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid bot token")

	status = http.StatusForbidden
	err = s.SendMessage("x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "blocked")
}

func TestNotifyAlertFormatsMessage(t *testing.T) {
	var got map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer server.Close()

	s := NewService(logrus.New())
	s.BaseURL = server.URL
	s.UpdateConfig(&models.TelegramConfig{BotToken: "t", ChatID: "100", IsEnabled: true})

	alert := models.PriceAlert{
		AptName:        "아이파크",
		RegionCode:     "11680",
		AlertType:      models.AlertPriceDrop,
		ThresholdValue: 200000,
		CurrentValue:   190000,
	}
	tx := &models.Transaction{
		AptName:       "아이파크",
		Floor:         12,
		ExclusiveArea: 84.9,
		DealDate:      "2025-06-15",
		DealAmount:    190000,
	}

	require.NoError(t, s.NotifyAlert(alert, tx))
	text, _ := got["text"].(string)
	assert.Contains(t, text, "가격 하락")
	assert.Contains(t, text, "아이파크")
	assert.Contains(t, text, "190,000만원")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "950", formatAmount(950))
	assert.Equal(t, "1,000", formatAmount(1000))
	assert.Equal(t, "250,000", formatAmount(250000))
	assert.Equal(t, "1,234,567", formatAmount(1234567))
}

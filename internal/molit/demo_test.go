package molit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptrack/server/internal/models"
)

func TestDemoMonthCurrentMonthNeverPostdatesToday(t *testing.T) {
	c := newTestClient(t, 100)
	now := time.Now()

	result := c.demoMonth(models.KindSale, "11680", now.Format("200601"))
	require.True(t, result.Success)
	require.NotEmpty(t, result.Data)

	today := now.Format("2006-01-02")
	for _, tx := range result.Data {
		assert.LessOrEqual(t, tx.DealDate, today)
		assert.Equal(t, models.SourceDemo, tx.Source)
	}
}

func TestDemoMonthPastMonthUsesFullMonth(t *testing.T) {
	c := newTestClient(t, 100)
	past := time.Now().AddDate(0, -2, 0)

	result := c.demoMonth(models.KindLease, "11650", past.Format("200601"))
	require.True(t, result.Success)
	require.NotEmpty(t, result.Data)

	for _, tx := range result.Data {
		assert.Equal(t, models.KindLease, tx.Kind)
		assert.GreaterOrEqual(t, tx.DealDay, 1)
		assert.LessOrEqual(t, tx.DealDay, 28)
		assert.Positive(t, tx.Deposit)
	}
}

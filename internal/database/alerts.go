package database

import (
	"database/sql"
	"time"

	"aptrack/server/internal/models"
)

// CreatePriceAlert stores a new alert in the untriggered state.
func (d *Database) CreatePriceAlert(a models.PriceAlert) (int64, error) {
	res, err := d.db.Exec(`
		INSERT INTO price_alerts
		(apt_name, region_code, alert_type, threshold_value, current_value, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.AptName, a.RegionCode, a.AlertType, a.ThresholdValue, a.CurrentValue, a.Notes)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetPriceAlerts returns all alerts, untriggered first.
func (d *Database) GetPriceAlerts() ([]models.PriceAlert, error) {
	rows, err := d.db.Query(`
		SELECT id, apt_name, region_code, alert_type, threshold_value,
		       current_value, is_triggered, triggered_at, created_at,
		       COALESCE(notes, '')
		FROM price_alerts
		ORDER BY is_triggered, created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.PriceAlert
	for rows.Next() {
		var a models.PriceAlert
		var isTriggered int
		var triggeredAt sql.NullTime
		err := rows.Scan(
			&a.ID, &a.AptName, &a.RegionCode, &a.AlertType, &a.ThresholdValue,
			&a.CurrentValue, &isTriggered, &triggeredAt, &a.CreatedAt, &a.Notes,
		)
		if err != nil {
			return nil, err
		}
		a.IsTriggered = isTriggered != 0
		if triggeredAt.Valid {
			t := triggeredAt.Time
			a.TriggeredAt = &t
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// MarkAlertTriggered records that an alert fired at the given value.
func (d *Database) MarkAlertTriggered(id int64, currentValue float64, at time.Time) error {
	res, err := d.db.Exec(`
		UPDATE price_alerts
		SET is_triggered = 1, current_value = ?, triggered_at = ?
		WHERE id = ?
	`, currentValue, at, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeletePriceAlert removes one alert.
func (d *Database) DeletePriceAlert(id int64) error {
	res, err := d.db.Exec(`DELETE FROM price_alerts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// GetTelegramConfig returns the stored notification settings, or nil when
// none are configured yet.
func (d *Database) GetTelegramConfig() (*models.TelegramConfig, error) {
	row := d.db.QueryRow(`
		SELECT id, bot_token, chat_id, is_enabled, created_at, updated_at
		FROM telegram_config
		ORDER BY id DESC
		LIMIT 1
	`)

	var cfg models.TelegramConfig
	var isEnabled int
	err := row.Scan(&cfg.ID, &cfg.BotToken, &cfg.ChatID, &isEnabled, &cfg.CreatedAt, &cfg.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	cfg.IsEnabled = isEnabled != 0
	return &cfg, nil
}

// SaveTelegramConfig replaces the notification settings. A single row is
// kept; history is not interesting here.
func (d *Database) SaveTelegramConfig(req models.TelegramConfigRequest) error {
	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM telegram_config`); err != nil {
		return err
	}

	enabled := 0
	if req.IsEnabled {
		enabled = 1
	}
	_, err = tx.Exec(`
		INSERT INTO telegram_config (bot_token, chat_id, is_enabled)
		VALUES (?, ?, ?)
	`, req.BotToken, req.ChatID, enabled)
	if err != nil {
		return err
	}

	return tx.Commit()
}

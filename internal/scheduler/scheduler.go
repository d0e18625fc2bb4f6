package scheduler

import (
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"aptrack/server/internal/database"
	"aptrack/server/internal/models"
	"aptrack/server/internal/molit"
	"aptrack/server/internal/telegram"
)

// favoriteRefreshMonths is the window refetched for every tracked complex
// during the nightly run.
const favoriteRefreshMonths = 3

// Scheduler runs the periodic maintenance jobs: the hourly expired-cache
// sweep and the nightly favorite refresh with alert evaluation.
type Scheduler struct {
	db       *database.Database
	client   *molit.Client
	telegram *telegram.Service
	logger   *logrus.Logger
	stopChan chan struct{}
	wg       sync.WaitGroup
	jobMutex sync.Mutex // Ensures sequential job execution
}

// NewScheduler creates a new scheduler
func NewScheduler(db *database.Database, client *molit.Client, tg *telegram.Service, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
		logger.SetLevel(logrus.InfoLevel)
	}

	return &Scheduler{
		db:       db,
		client:   client,
		telegram: tg,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start begins the scheduled tasks
func (s *Scheduler) Start() {
	s.wg.Add(1)
	go s.runScheduler()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
	s.wg.Wait()
}

func (s *Scheduler) runScheduler() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case t := <-ticker.C:
			s.executeScheduledJobs(t)
		}
	}
}

// executeScheduledJobs runs all jobs that are scheduled for the given time
func (s *Scheduler) executeScheduledJobs(t time.Time) {
	s.jobMutex.Lock()
	defer s.jobMutex.Unlock()

	// Sweep expired snapshots on the hour.
	if t.Minute() == 0 {
		s.SweepExpiredCache()
	}

	// Refresh favorites and evaluate alerts at midnight.
	if t.Hour() == 0 && t.Minute() == 0 {
		s.RefreshFavorites()
	}
}

// SweepExpiredCache deletes expired search snapshots.
func (s *Scheduler) SweepExpiredCache() {
	deleted, err := s.db.DeleteExpiredCache()
	if err != nil {
		s.logger.WithError(err).Error("Expired cache sweep failed")
		return
	}
	if deleted > 0 {
		s.logger.WithField("deleted", deleted).Info("Swept expired cache snapshots")
	}
}

// RefreshFavorites refetches recent months for every tracked complex,
// persists the result, and evaluates price alerts against the fresh data.
func (s *Scheduler) RefreshFavorites() {
	favorites, err := s.db.GetFavorites()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load favorites for refresh")
		return
	}

	refreshed := make(map[string]bool)
	for _, fav := range favorites {
		if refreshed[fav.RegionCode] {
			continue
		}
		refreshed[fav.RegionCode] = true

		s.logger.WithFields(logrus.Fields{
			"region_code": fav.RegionCode,
			"months":      favoriteRefreshMonths,
		}).Info("Refreshing favorite region")

		combined := s.client.FetchCombinedWindow(fav.RegionCode, favoriteRefreshMonths, nil)
		live := make([]models.Transaction, 0, len(combined.Data))
		for _, tx := range combined.Data {
			if tx.Source != models.SourceDemo {
				live = append(live, tx)
			}
		}
		if len(live) == 0 {
			continue
		}
		inserted, err := s.db.SaveTransactions(live)
		if err != nil {
			s.logger.WithError(err).WithField("region_code", fav.RegionCode).
				Error("Failed to persist refreshed transactions")
			continue
		}
		s.logger.WithFields(logrus.Fields{
			"region_code": fav.RegionCode,
			"fetched":     len(live),
			"inserted":    inserted,
		}).Info("Favorite region refreshed")
	}

	s.EvaluateAlerts()
}

// EvaluateAlerts checks every untriggered alert against the latest stored
// data and notifies via Telegram when one fires.
func (s *Scheduler) EvaluateAlerts() {
	alerts, err := s.db.GetPriceAlerts()
	if err != nil {
		s.logger.WithError(err).Error("Failed to load price alerts")
		return
	}

	for _, alert := range alerts {
		if alert.IsTriggered {
			continue
		}

		transactions, err := s.db.GetApartmentTransactions(alert.AptName, alert.RegionCode, 20)
		if err != nil {
			s.logger.WithError(err).WithField("apt_name", alert.AptName).
				Error("Failed to load transactions for alert")
			continue
		}
		if len(transactions) == 0 {
			continue
		}

		triggered, current, tx := evaluate(alert, transactions)
		if !triggered {
			continue
		}

		now := time.Now()
		if err := s.db.MarkAlertTriggered(alert.ID, current, now); err != nil {
			s.logger.WithError(err).Error("Failed to mark alert triggered")
			continue
		}
		alert.CurrentValue = current

		s.logger.WithFields(logrus.Fields{
			"apt_name":   alert.AptName,
			"alert_type": alert.AlertType,
			"threshold":  alert.ThresholdValue,
			"current":    current,
		}).Info("Price alert triggered")

		if s.telegram != nil {
			if err := s.telegram.NotifyAlert(alert, tx); err != nil {
				s.logger.WithError(err).Error("Alert notification failed")
			}
		}
	}
}

// evaluate decides whether an alert fires against the newest-first
// transaction list of its complex.
func evaluate(alert models.PriceAlert, transactions []models.Transaction) (bool, float64, *models.Transaction) {
	switch alert.AlertType {
	case models.AlertNewTransaction:
		latest := transactions[0]
		dealDate, err := time.Parse("2006-01-02", latest.DealDate)
		if err != nil {
			return false, 0, nil
		}
		if dealDate.After(alert.CreatedAt) {
			return true, float64(latest.DealAmount), &latest
		}
		return false, 0, nil

	case models.AlertPriceDrop, models.AlertPriceRise:
		for i := range transactions {
			tx := transactions[i]
			if tx.IsLease() || tx.DealAmount <= 0 {
				continue
			}
			current := float64(tx.DealAmount)
			if alert.AlertType == models.AlertPriceDrop && current <= alert.ThresholdValue {
				return true, current, &transactions[i]
			}
			if alert.AlertType == models.AlertPriceRise && current >= alert.ThresholdValue {
				return true, current, &transactions[i]
			}
			// Only the most recent sale decides.
			return false, current, nil
		}
	}
	return false, 0, nil
}

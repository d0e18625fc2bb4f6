package processor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"aptrack/server/config"
	"aptrack/server/internal/database"
	"aptrack/server/internal/models"
	"aptrack/server/internal/queue"
)

// BatchProcessor persists queued transaction batches. It subscribes once to
// the queue and fans the batches out to a fixed pool of workers, each running
// the upsert inside a database transaction with retries.
type BatchProcessor struct {
	db        *gorm.DB
	logger    *logrus.Logger
	config    *config.Config
	queue     *queue.TransactionQueue
	work      chan []*models.Transaction
	waitGroup sync.WaitGroup
	ctx       context.Context
	cancel    context.CancelFunc
}

func NewBatchProcessor(db *gorm.DB, queue *queue.TransactionQueue, config *config.Config, logger *logrus.Logger) *BatchProcessor {
	ctx, cancel := context.WithCancel(context.Background())
	return &BatchProcessor{
		db:     db,
		queue:  queue,
		config: config,
		logger: logger,
		work:   make(chan []*models.Transaction, config.BatchProcessing.ProcessorCount),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start installs the queue subscriber and launches the worker pool.
func (p *BatchProcessor) Start() {
	p.queue.Subscribe(func(batch []*models.Transaction) error {
		select {
		case p.work <- batch:
			return nil
		case <-p.ctx.Done():
			return p.ctx.Err()
		}
	})

	for i := 0; i < p.config.BatchProcessing.ProcessorCount; i++ {
		p.waitGroup.Add(1)
		go p.worker()
	}
}

// Stop cancels the workers and waits for in-flight batches to finish.
func (p *BatchProcessor) Stop() {
	p.cancel()
	p.waitGroup.Wait()
}

func (p *BatchProcessor) worker() {
	defer p.waitGroup.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case batch := <-p.work:
			if err := p.processBatch(batch); err != nil {
				p.logger.WithError(err).WithField("batch_size", len(batch)).Error("Giving up on batch")
			}
		}
	}
}

// processBatch upserts one batch, retrying with a fixed delay between
// attempts.
func (p *BatchProcessor) processBatch(batch []*models.Transaction) error {
	var err error
	for attempt := 0; attempt <= p.config.BatchProcessing.MaxRetries; attempt++ {
		if attempt > 0 {
			p.logger.Infof("Retrying batch processing, attempt %d of %d", attempt, p.config.BatchProcessing.MaxRetries)
			time.Sleep(time.Duration(p.config.BatchProcessing.RetryDelay) * time.Second)
		}

		err = p.db.Transaction(func(tx *gorm.DB) error {
			return database.UpsertTransactions(tx, batch)
		})

		if err == nil {
			p.logger.Infof("Successfully processed batch of %d transactions", len(batch))
			return nil
		}

		p.logger.Errorf("Batch processing failed: %v", err)
	}

	return fmt.Errorf("failed to process batch after %d attempts: %w", p.config.BatchProcessing.MaxRetries, err)
}

package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"aptrack/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// TransactionQueue buffers fetched transaction batches on their way to the
// database so a slow disk never stalls an in-flight search. Push is
// non-blocking; a full buffer is reported to the caller, which falls back to
// persisting directly.
type TransactionQueue struct {
	items   chan []*models.Transaction
	done    chan struct{}
	mu      sync.RWMutex
	closed  bool
	logger  *logrus.Logger
	deliver func([]*models.Transaction) error
}

func NewTransactionQueue(bufferSize int, logger *logrus.Logger) *TransactionQueue {
	return &TransactionQueue{
		items:  make(chan []*models.Transaction, bufferSize),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Push enqueues a batch without blocking. ErrQueueFull when the buffer is at
// capacity, ErrQueueClosed after Close.
func (q *TransactionQueue) Push(batch []*models.Transaction) error {
	q.mu.RLock()
	if q.closed {
		q.mu.RUnlock()
		return ErrQueueClosed
	}
	q.mu.RUnlock()

	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", len(batch)).Debug("Pushed batch to queue")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe installs the delivery function. The queue has exactly one
// consumer; a second call replaces the first.
func (q *TransactionQueue) Subscribe(deliver func([]*models.Transaction) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deliver = deliver
}

// Start begins draining the buffer into the subscriber.
func (q *TransactionQueue) Start() {
	go q.drain()
}

func (q *TransactionQueue) drain() {
	for {
		select {
		case <-q.done:
			return
		case batch := <-q.items:
			if batch == nil {
				// items channel closed
				return
			}
			q.mu.RLock()
			deliver := q.deliver
			q.mu.RUnlock()
			if deliver == nil {
				q.logger.WithField("batch_size", len(batch)).Warn("Dropping batch, no subscriber installed")
				continue
			}
			if err := deliver(batch); err != nil {
				q.logger.WithError(err).Error("Failed to deliver batch")
			}
		}
	}
}

// Close stops the drain loop and rejects further pushes. Safe to call twice.
func (q *TransactionQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.done)
	close(q.items)
	return nil
}

// Len reports the number of buffered batches.
func (q *TransactionQueue) Len() int {
	return len(q.items)
}

func (q *TransactionQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}

package comms

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/storedeck/storedeck/internal/store"
)

// Sender delivers one message to one creator. The transport is opaque to
// the queue; failures are recorded on the message, not retried.
type Sender interface {
	Send(ctx context.Context, creator *store.Creator, subject, body string) error
}

// LogSender is the default transport: it logs instead of delivering.
// Tenants wire a real provider through CommunicationSettings before
// production sends.
type LogSender struct {
	Logger *zap.Logger
}

func (l *LogSender) Send(_ context.Context, creator *store.Creator, subject, _ string) error {
	l.Logger.Info("message sent",
		zap.String("creator", creator.ID),
		zap.String("email", creator.Email),
		zap.String("subject", subject))
	return nil
}

// Service enqueues creator communications and drains them in the
// background. Messages move queued -> sending -> sent or failed; a failed
// send records the error verbatim and is not retried.
type Service struct {
	store    *store.SQLiteStore
	sender   Sender
	logger   *zap.Logger
	interval time.Duration

	stop chan struct{}
	done chan struct{}
}

func NewService(s *store.SQLiteStore, sender Sender, logger *zap.Logger, interval time.Duration) *Service {
	if interval <= 0 {
		interval = time.Second
	}
	return &Service{
		store:    s,
		sender:   sender,
		logger:   logger,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// EnqueueBulk queues one message per creator. Unknown creator IDs fail the
// whole call before anything is queued; already-queued messages from a
// prior call are unaffected.
func (s *Service) EnqueueBulk(ctx context.Context, creatorIDs []string, subject, body string) ([]*store.Message, error) {
	creators := make([]*store.Creator, 0, len(creatorIDs))
	for _, id := range creatorIDs {
		c, err := s.store.GetCreator(ctx, id)
		if err != nil {
			return nil, err
		}
		creators = append(creators, c)
	}

	messages := make([]*store.Message, 0, len(creators))
	for _, c := range creators {
		m, err := s.store.EnqueueMessage(ctx, c.ID, subject, body)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}

	return messages, nil
}

// Start launches the drain loop. Call Stop to shut it down.
func (s *Service) Start() {
	go s.run()
}

// Stop signals the drain loop and waits for it to exit.
func (s *Service) Stop() {
	close(s.stop)
	<-s.done
}

func (s *Service) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.Drain(context.Background())
		}
	}
}

// Drain sends every queued message across all tenants. Exported so tests
// and handlers can flush synchronously.
func (s *Service) Drain(ctx context.Context) {
	for {
		m, err := s.store.NextQueuedMessage(ctx)
		if errors.Is(err, store.ErrNotFound) {
			return
		}
		if err != nil {
			s.logger.Error("failed to claim queued message", zap.Error(err))
			return
		}

		s.deliver(store.WithTenant(ctx, m.TenantID), m)
	}
}

func (s *Service) deliver(ctx context.Context, m *store.Message) {
	creator, err := s.store.GetCreator(ctx, m.CreatorID)
	if err != nil {
		s.fail(ctx, m, err)
		return
	}

	if err := s.sender.Send(ctx, creator, m.Subject, m.Body); err != nil {
		s.fail(ctx, m, err)
		return
	}

	if err := s.store.MarkMessageSent(ctx, m.ID); err != nil {
		s.logger.Error("failed to mark message sent", zap.String("message", m.ID), zap.Error(err))
	}
}

func (s *Service) fail(ctx context.Context, m *store.Message, cause error) {
	if err := s.store.MarkMessageFailed(ctx, m.ID, cause.Error()); err != nil {
		s.logger.Error("failed to mark message failed", zap.String("message", m.ID), zap.Error(err))
	}
}

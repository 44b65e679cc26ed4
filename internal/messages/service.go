package messages

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

var errMissingDatabase = errors.New("messages: database handle is required")

// ServiceConfig bundles the dependencies for an inbound message Service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service owns the write and read paths for the messages table.
type Service struct {
	db     *gorm.DB
	clock  func() time.Time
	logger *zap.Logger
}

// NewService validates the configuration and returns a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, errMissingDatabase
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Service{
		db:     cfg.Database,
		clock:  clock,
		logger: logger,
	}, nil
}

// StoreIfAbsent inserts one InboundMessage keyed on the platform message id,
// stamped with the current wall clock in epoch milliseconds. A concurrent or
// repeated delivery of the same id lands on the unique index and is skipped
// in the same statement, so there is no check-then-insert race. Returns
// whether a row was actually inserted; a skip is the expected dedup path,
// not an error.
func (s *Service) StoreIfAbsent(ctx context.Context, fromPhone, text, messageID string) (bool, error) {
	row := InboundMessage{
		TS:          s.clock().UnixMilli(),
		FromPhone:   fromPhone,
		MessageText: text,
		MessageID:   messageID,
	}

	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "message_id"}},
			DoNothing: true,
		}).
		Create(&row)
	if result.Error != nil {
		return false, fmt.Errorf("messages: store: %w", result.Error)
	}

	inserted := result.RowsAffected > 0
	if inserted {
		s.logger.Info("message stored",
			zap.String("from_phone", fromPhone),
			zap.String("message_id", messageID),
		)
	} else {
		s.logger.Debug("duplicate message delivery skipped",
			zap.String("message_id", messageID),
		)
	}
	return inserted, nil
}

// ListRecent returns up to limit messages ordered most recent first, with the
// same limit clamping discipline as the clicks table.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]InboundMessage, error) {
	rows := make([]InboundMessage, 0, clampLimit(limit))
	err := s.db.WithContext(ctx).
		Order("ts DESC").
		Limit(clampLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("messages: list recent: %w", err)
	}
	return rows, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

package clicks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 200
	maxListLimit     = 1000
)

var errMissingDatabase = errors.New("clicks: database handle is required")

// ServiceConfig bundles the dependencies for a click tracking Service.
type ServiceConfig struct {
	Database *gorm.DB
	Clock    func() time.Time
	Logger   *zap.Logger
}

// Service owns the write and read paths for the clicks table.
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

// Record appends one ClickEvent stamped with the current wall clock in epoch
// milliseconds. Rows are never updated or deleted afterwards.
func (s *Service) Record(ctx context.Context, ip, text, referrer string) error {
	event := ClickEvent{
		TS:       s.clock().UnixMilli(),
		IP:       ip,
		Text:     text,
		Referrer: referrer,
	}

	if err := s.db.WithContext(ctx).Create(&event).Error; err != nil {
		return fmt.Errorf("clicks: record: %w", err)
	}

	s.logger.Debug("click recorded",
		zap.Int64("id", event.ID),
		zap.String("text", text),
	)
	return nil
}

// ListRecent returns up to limit click events ordered most recent first.
// Non-positive limits fall back to the default; limits above the ceiling are
// clamped so response size stays bounded regardless of caller input.
func (s *Service) ListRecent(ctx context.Context, limit int) ([]ClickEvent, error) {
	rows := make([]ClickEvent, 0, clampLimit(limit))
	err := s.db.WithContext(ctx).
		Order("ts DESC").
		Limit(clampLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("clicks: list recent: %w", err)
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

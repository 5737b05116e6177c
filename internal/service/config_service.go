package service

import (
	"context"
	"sync"
	"time"

	"vipgate/internal/domain"
	"vipgate/internal/models"

	"github.com/rs/zerolog"
)

// ConfigService is a read-through cache over the single bot_config row.
// The row is created lazily with defaults on first access.
type ConfigService struct {
	repo   domain.Repository
	logger *zerolog.Logger

	mu     sync.Mutex
	cached *models.BotConfig
}

func NewConfigService(repo domain.Repository, logger *zerolog.Logger) *ConfigService {
	return &ConfigService{
		repo:   repo,
		logger: logger,
	}
}

func (s *ConfigService) Get(ctx context.Context) (*models.BotConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(ctx)
}

func (s *ConfigService) getLocked(ctx context.Context) (*models.BotConfig, error) {
	if s.cached != nil {
		return s.cached, nil
	}

	cfg, err := s.repo.GetBotConfig(ctx)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		cfg, err = s.repo.CreateBotConfig(ctx)
		if err != nil {
			return nil, err
		}
		s.logger.Info().Msg("created default bot config")
	}

	s.cached = cfg
	return cfg, nil
}

// Update applies a mutation to the config inside the cache lock and
// persists the result. The cache always reflects the stored row.
func (s *ConfigService) Update(ctx context.Context, mutate func(cfg *models.BotConfig)) (*models.BotConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cfg, err := s.getLocked(ctx)
	if err != nil {
		return nil, err
	}

	updated := *cfg
	mutate(&updated)

	if err := s.repo.UpdateBotConfig(ctx, &updated); err != nil {
		// Drop the cache so the next read refetches the stored row.
		s.cached = nil
		return nil, err
	}

	s.cached = &updated
	return &updated, nil
}

// WaitTime returns the configured free queue wait time as a duration.
func (s *ConfigService) WaitTime(ctx context.Context) (time.Duration, error) {
	cfg, err := s.Get(ctx)
	if err != nil {
		return 0, err
	}
	return time.Duration(cfg.WaitTimeMinutes) * time.Minute, nil
}

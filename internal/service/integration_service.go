package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/config"
	"github.com/jengzang/reallocation-screener/internal/models"
)

// IntegrationStore persists API integrations
type IntegrationStore interface {
	CreateOrReplace(ctx context.Context, in models.Integration) error
}

// IntegrationService handles the administrative integration action
type IntegrationService struct {
	store    IntegrationStore
	defaults config.IntegrationConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewIntegrationService creates a new integration service
func NewIntegrationService(store IntegrationStore, defaults config.IntegrationConfig, logger *zap.Logger) *IntegrationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntegrationService{store: store, defaults: defaults, logger: logger, now: time.Now}
}

// CreateIntegration creates or replaces an integration and returns the success message.
// A store failure is returned unwrapped so its text reaches the operator verbatim.
func (s *IntegrationService) CreateIntegration(ctx context.Context, req models.IntegrationRequest, actor string) (string, error) {
	in := models.Integration{
		Name:            strings.TrimSpace(req.Name),
		APIProvider:     strings.TrimSpace(req.APIProvider),
		AllowedPrefixes: req.AllowedPrefixes,
		Enabled:         true,
		CreatedBy:       actor,
		UpdatedAt:       s.now().UTC(),
	}
	if in.Name == "" {
		in.Name = s.defaults.Name
	}
	if in.APIProvider == "" {
		in.APIProvider = s.defaults.APIProvider
	}
	if len(in.AllowedPrefixes) == 0 {
		in.AllowedPrefixes = s.defaults.AllowedPrefixes
	}
	if req.Enabled != nil {
		in.Enabled = *req.Enabled
	}

	if err := s.store.CreateOrReplace(ctx, in); err != nil {
		s.logger.Error("integration create failed", zap.String("name", in.Name), zap.Error(err))
		return "", err
	}

	s.logger.Info("integration created or replaced",
		zap.String("name", in.Name),
		zap.String("provider", in.APIProvider),
		zap.Strings("allowed_prefixes", in.AllowedPrefixes),
		zap.String("actor", actor),
	)
	return fmt.Sprintf("API Integration '%s' の作成に成功しました", in.Name), nil
}

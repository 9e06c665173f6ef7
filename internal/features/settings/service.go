package settings

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var ErrGatewayNotConfigured = errors.New("whatsapp gateway is not configured for this workspace")

type SettingsService interface {
	GetGatewayConfig(ctx context.Context, tenantID string) (*GatewayConfig, error)
	UpdateGatewayConfig(ctx context.Context, tenantID string, config GatewayConfig) error
}

type SettingsServiceImpl struct {
	Repo   SettingsRepository
	Logger *zap.Logger
}

func NewSettingsService(repo SettingsRepository, logger *zap.Logger) SettingsService {
	return &SettingsServiceImpl{
		Repo:   repo,
		Logger: logger,
	}
}

func (s *SettingsServiceImpl) GetGatewayConfig(ctx context.Context, tenantID string) (*GatewayConfig, error) {
	settings, err := s.Repo.GetByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	if settings == nil || settings.Gateway == nil {
		return nil, ErrGatewayNotConfigured
	}
	return settings.Gateway, nil
}

func (s *SettingsServiceImpl) UpdateGatewayConfig(ctx context.Context, tenantID string, config GatewayConfig) error {
	oid, err := primitive.ObjectIDFromHex(tenantID)
	if err != nil {
		return err
	}

	settings := &Settings{
		TenantID:  oid,
		Gateway:   &config,
		UpdatedAt: time.Now(),
	}
	err = s.Repo.Upsert(ctx, settings)
	if err == nil {
		s.Logger.Info("gateway config updated", zap.String("tenant", tenantID))
	}
	return err
}

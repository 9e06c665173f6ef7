package action

import (
	"context"
	"errors"
	"time"

	"wa-assist/internal/config"
	"wa-assist/internal/events"
	"wa-assist/internal/features/chat"
	"wa-assist/internal/features/settings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// DeliveryFeed receives every persisted delivery outcome, for the live
// dashboard stream.
type DeliveryFeed interface {
	Broadcast(tenantID string, log DeliveryLog)
}

// DeliveryArchiver mirrors delivery logs into an external warehouse.
type DeliveryArchiver interface {
	Archive(ctx context.Context, log DeliveryLog) error
}

type ActionService interface {
	CreateAction(ctx context.Context, action *ActionConfig) error
	GetAction(ctx context.Context, tenantID, id string) (*ActionConfig, error)
	ListActions(ctx context.Context, tenantID string) ([]ActionConfig, error)
	UpdateAction(ctx context.Context, tenantID, id string, updated *ActionConfig) error
	DeleteAction(ctx context.Context, tenantID, id string) error

	// Publish fans one event occurrence out to every matching action,
	// fire-and-forget. It never blocks on delivery and never fails the
	// publishing business flow.
	Publish(ctx context.Context, tenantID string, kind events.Kind, data map[string]any)

	// SendTest runs one synchronous delivery attempt for a draft config
	// against the representative sample payload for the event.
	SendTest(ctx context.Context, tenantID string, draft ActionConfig, kind events.Kind, tags []string) DeliveryResult

	ListDeliveries(ctx context.Context, tenantID string, limit int64) ([]DeliveryLog, error)
	ListActionDeliveries(ctx context.Context, tenantID, actionID string, limit int64) ([]DeliveryLog, error)
}

type ActionServiceImpl struct {
	Repo            ActionRepository
	LogRepo         DeliveryLogRepository
	Dispatcher      *Dispatcher
	Matcher         *Matcher
	SettingsService settings.SettingsService
	Feed            DeliveryFeed
	Archiver        DeliveryArchiver
	Config          *config.Config
	Logger          *zap.Logger
}

func NewActionService(
	repo ActionRepository,
	logRepo DeliveryLogRepository,
	dispatcher *Dispatcher,
	matcher *Matcher,
	settingsService settings.SettingsService,
	feed DeliveryFeed,
	archiver DeliveryArchiver,
	cfg *config.Config,
	logger *zap.Logger,
) ActionService {
	return &ActionServiceImpl{
		Repo:            repo,
		LogRepo:         logRepo,
		Dispatcher:      dispatcher,
		Matcher:         matcher,
		SettingsService: settingsService,
		Feed:            feed,
		Archiver:        archiver,
		Config:          cfg,
		Logger:          logger,
	}
}

func (s *ActionServiceImpl) CreateAction(ctx context.Context, action *ActionConfig) error {
	if err := action.Validate(); err != nil {
		return err
	}
	return s.Repo.Create(ctx, action)
}

func (s *ActionServiceImpl) GetAction(ctx context.Context, tenantID, id string) (*ActionConfig, error) {
	return s.Repo.Get(ctx, tenantID, id)
}

func (s *ActionServiceImpl) ListActions(ctx context.Context, tenantID string) ([]ActionConfig, error) {
	return s.Repo.ListByTenant(ctx, tenantID)
}

func (s *ActionServiceImpl) UpdateAction(ctx context.Context, tenantID, id string, updated *ActionConfig) error {
	existing, err := s.Repo.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	// Identity and creation time never change on update.
	updated.ID = existing.ID
	updated.TenantID = existing.TenantID
	updated.CreatedAt = existing.CreatedAt

	if err := updated.Validate(); err != nil {
		return err
	}
	return s.Repo.Update(ctx, updated)
}

func (s *ActionServiceImpl) DeleteAction(ctx context.Context, tenantID, id string) error {
	return s.Repo.Delete(ctx, tenantID, id)
}

func (s *ActionServiceImpl) Publish(ctx context.Context, tenantID string, kind events.Kind, data map[string]any) {
	if !kind.Valid() {
		s.Logger.Debug("ignoring unknown event kind",
			zap.String("event", string(kind)),
			zap.String("tenant", tenantID))
		return
	}

	actions, err := s.Repo.ListByTenant(ctx, tenantID)
	if err != nil {
		s.Logger.Error("failed to load actions for publish",
			zap.String("tenant", tenantID),
			zap.String("event", string(kind)),
			zap.Error(err))
		return
	}

	env := events.NewEnvelope(tenantID, kind, data)
	matched := s.Matcher.Match(actions, kind, env)
	if len(matched) == 0 {
		return
	}

	creds := s.gatewayCredentials(ctx, tenantID, matched)

	// Fire-and-forget: each delivery runs on its own goroutine with its own
	// timeout; the publishing business flow returns immediately.
	for _, act := range matched {
		go s.deliverAndRecord(env, act, creds)
	}
}

func (s *ActionServiceImpl) SendTest(ctx context.Context, tenantID string, draft ActionConfig, kind events.Kind, tags []string) DeliveryResult {
	env := events.NewEnvelope(tenantID, kind, events.SamplePayload(kind, tags))

	var creds chat.Credentials
	if draft.Type == ActionTypeChatMessage {
		creds = s.gatewayCredentials(ctx, tenantID, []ActionConfig{draft})
	}

	// Synchronous: the caller's deadline bounds the attempt so the settings
	// UI never hangs on an unreachable endpoint.
	return s.Dispatcher.Deliver(ctx, env, draft, creds)
}

func (s *ActionServiceImpl) ListDeliveries(ctx context.Context, tenantID string, limit int64) ([]DeliveryLog, error) {
	return s.LogRepo.ListByTenant(ctx, tenantID, limit)
}

func (s *ActionServiceImpl) ListActionDeliveries(ctx context.Context, tenantID, actionID string, limit int64) ([]DeliveryLog, error) {
	return s.LogRepo.ListByAction(ctx, tenantID, actionID, limit)
}

// gatewayCredentials resolves the tenant's chat credentials once per publish
// so delivery itself performs no storage I/O. Missing configuration is not an
// error here; the chat delivery records it as a failure.
func (s *ActionServiceImpl) gatewayCredentials(ctx context.Context, tenantID string, matched []ActionConfig) chat.Credentials {
	needsChat := false
	for _, act := range matched {
		if act.Type == ActionTypeChatMessage {
			needsChat = true
			break
		}
	}
	if !needsChat {
		return chat.Credentials{}
	}

	gw, err := s.SettingsService.GetGatewayConfig(ctx, tenantID)
	if err != nil {
		if !errors.Is(err, settings.ErrGatewayNotConfigured) {
			s.Logger.Error("failed to load gateway config",
				zap.String("tenant", tenantID),
				zap.Error(err))
		}
		return chat.Credentials{AccessToken: s.Config.GatewayToken}
	}
	return chat.Credentials{PhoneNumberID: gw.PhoneNumberID, AccessToken: gw.AccessToken}
}

func (s *ActionServiceImpl) deliverAndRecord(env events.Envelope, act ActionConfig, creds chat.Credentials) {
	defer func() {
		if r := recover(); r != nil {
			s.Logger.Error("delivery panicked",
				zap.String("action", act.ID.Hex()),
				zap.String("tenant", env.TenantID),
				zap.Any("panic", r))
		}
	}()

	// The publisher's context is gone by now; each attempt gets its own
	// bounded deadline.
	ctx, cancel := context.WithTimeout(context.Background(), s.Config.DispatchTimeout+time.Second)
	defer cancel()

	start := time.Now()
	result := s.Dispatcher.Deliver(ctx, env, act, creds)
	cancel()

	// Bookkeeping gets a fresh deadline so a delivery that ate its whole
	// budget cannot starve the log write for the very attempt that timed out.
	recordCtx, recordCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer recordCancel()
	s.recordDelivery(recordCtx, env, act, result, time.Since(start))
}

func (s *ActionServiceImpl) recordDelivery(ctx context.Context, env events.Envelope, act ActionConfig, result DeliveryResult, took time.Duration) {
	if !result.Success {
		s.Logger.Warn("delivery failed",
			zap.String("action", act.ID.Hex()),
			zap.String("event", string(env.Event)),
			zap.String("tenant", env.TenantID),
			zap.String("detail", result.Message))
	}

	tenantOID, err := primitive.ObjectIDFromHex(env.TenantID)
	if err != nil {
		s.Logger.Error("invalid tenant id on delivery record", zap.String("tenant", env.TenantID))
		return
	}

	entry := DeliveryLog{
		TenantID:   tenantOID,
		ActionID:   act.ID,
		ActionName: act.Name,
		ActionType: act.Type,
		Event:      env.Event,
		Target:     act.Target(),
		DeliveryID: result.DeliveryID,
		Success:    result.Success,
		StatusCode: result.StatusCode,
		Message:    result.Message,
		Duration:   took.Milliseconds(),
	}

	if err := s.LogRepo.Create(ctx, &entry); err != nil {
		s.Logger.Error("failed to persist delivery log",
			zap.String("tenant", env.TenantID),
			zap.Error(err))
	}

	s.Feed.Broadcast(env.TenantID, entry)

	if err := s.Archiver.Archive(ctx, entry); err != nil {
		s.Logger.Warn("delivery archival failed",
			zap.String("tenant", env.TenantID),
			zap.Error(err))
	}
}

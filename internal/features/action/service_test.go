package action

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"wa-assist/internal/config"
	"wa-assist/internal/events"
	"wa-assist/internal/features/settings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeActionRepo struct {
	mu      sync.Mutex
	actions map[string]ActionConfig
	deletes int
}

func newFakeActionRepo() *fakeActionRepo {
	return &fakeActionRepo{actions: map[string]ActionConfig{}}
}

func (r *fakeActionRepo) Create(ctx context.Context, action *ActionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if action.ID.IsZero() {
		action.ID = primitive.NewObjectID()
	}
	action.CreatedAt = time.Now()
	r.actions[action.ID.Hex()] = *action
	return nil
}

func (r *fakeActionRepo) Get(ctx context.Context, tenantID, id string) (*ActionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	act, ok := r.actions[id]
	if !ok || act.TenantID.Hex() != tenantID {
		return nil, context.Canceled
	}
	return &act, nil
}

func (r *fakeActionRepo) ListByTenant(ctx context.Context, tenantID string) ([]ActionConfig, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ActionConfig
	for _, act := range r.actions {
		if act.TenantID.Hex() == tenantID {
			out = append(out, act)
		}
	}
	return out, nil
}

func (r *fakeActionRepo) Update(ctx context.Context, action *ActionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[action.ID.Hex()] = *action
	return nil
}

func (r *fakeActionRepo) Delete(ctx context.Context, tenantID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	delete(r.actions, id)
	return nil
}

type fakeLogRepo struct {
	mu      sync.Mutex
	entries []DeliveryLog
	created chan struct{}
}

func newFakeLogRepo() *fakeLogRepo {
	return &fakeLogRepo{created: make(chan struct{}, 16)}
}

func (r *fakeLogRepo) Create(ctx context.Context, log *DeliveryLog) error {
	r.mu.Lock()
	r.entries = append(r.entries, *log)
	r.mu.Unlock()
	r.created <- struct{}{}
	return nil
}

func (r *fakeLogRepo) ListByAction(ctx context.Context, tenantID, actionID string, limit int64) ([]DeliveryLog, error) {
	return nil, nil
}

func (r *fakeLogRepo) ListByTenant(ctx context.Context, tenantID string, limit int64) ([]DeliveryLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]DeliveryLog(nil), r.entries...), nil
}

func (r *fakeLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

type fakeSettingsService struct {
	gateway *settings.GatewayConfig
}

func (s *fakeSettingsService) GetGatewayConfig(ctx context.Context, tenantID string) (*settings.GatewayConfig, error) {
	if s.gateway == nil {
		return nil, settings.ErrGatewayNotConfigured
	}
	return s.gateway, nil
}

func (s *fakeSettingsService) UpdateGatewayConfig(ctx context.Context, tenantID string, config settings.GatewayConfig) error {
	s.gateway = &config
	return nil
}

type noopFeed struct{}

func (noopFeed) Broadcast(tenantID string, log DeliveryLog) {}

type noopArchiver struct{}

func (noopArchiver) Archive(ctx context.Context, log DeliveryLog) error { return nil }

func newTestService(repo ActionRepository, logRepo DeliveryLogRepository, sender *fakeSender, gw *settings.GatewayConfig) ActionService {
	cfg := &config.Config{DispatchTimeout: 5 * time.Second}
	return newTestServiceWithSinks(cfg, repo, logRepo, sender, gw, noopFeed{}, noopArchiver{})
}

func newTestServiceWithSinks(cfg *config.Config, repo ActionRepository, logRepo DeliveryLogRepository, sender *fakeSender, gw *settings.GatewayConfig, feed DeliveryFeed, archiver DeliveryArchiver) ActionService {
	return NewActionService(
		repo,
		logRepo,
		NewDispatcher(cfg, sender),
		NewMatcher(zap.NewNop()),
		&fakeSettingsService{gateway: gw},
		feed,
		archiver,
		cfg,
		zap.NewNop(),
	)
}

func TestPublishDeliversAndRecords(t *testing.T) {
	hits := make(chan struct{}, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits <- struct{}{}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tenant := primitive.NewObjectID()
	repo := newFakeActionRepo()
	_ = repo.Create(context.Background(), &ActionConfig{
		TenantID: tenant,
		Name:     "notify",
		Type:     ActionTypeWebhook,
		Event:    events.LeadQualified,
		IsActive: true,
		URL:      srv.URL,
	})

	logRepo := newFakeLogRepo()
	svc := newTestService(repo, logRepo, &fakeSender{}, nil)

	svc.Publish(context.Background(), tenant.Hex(), events.LeadQualified, map[string]any{"score": "hot"})

	select {
	case <-hits:
	case <-time.After(3 * time.Second):
		t.Fatal("webhook endpoint was never called")
	}
	select {
	case <-logRepo.created:
	case <-time.After(3 * time.Second):
		t.Fatal("delivery log was never written")
	}

	logs, _ := logRepo.ListByTenant(context.Background(), tenant.Hex(), 50)
	if len(logs) != 1 {
		t.Fatalf("expected 1 delivery log, got %d", len(logs))
	}
	entry := logs[0]
	if !entry.Success {
		t.Errorf("delivery should have succeeded: %s", entry.Message)
	}
	if entry.Event != events.LeadQualified {
		t.Errorf("event = %s", entry.Event)
	}
	if entry.Target != srv.URL {
		t.Errorf("target = %s", entry.Target)
	}
	if entry.DeliveryID == "" {
		t.Error("delivery id must be set")
	}
}

func TestPublishUnknownKindIsIgnored(t *testing.T) {
	repo := newFakeActionRepo()
	logRepo := newFakeLogRepo()
	svc := newTestService(repo, logRepo, &fakeSender{}, nil)

	svc.Publish(context.Background(), primitive.NewObjectID().Hex(), events.Kind("not_a_thing"), nil)

	select {
	case <-logRepo.created:
		t.Fatal("unknown event kind must not produce deliveries")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestPublishNoMatchIsQuiet(t *testing.T) {
	tenant := primitive.NewObjectID()
	repo := newFakeActionRepo()
	_ = repo.Create(context.Background(), &ActionConfig{
		TenantID: tenant,
		Name:     "inactive",
		Type:     ActionTypeWebhook,
		Event:    events.LeadQualified,
		IsActive: false,
		URL:      "https://example.com",
	})

	logRepo := newFakeLogRepo()
	svc := newTestService(repo, logRepo, &fakeSender{}, nil)

	svc.Publish(context.Background(), tenant.Hex(), events.LeadQualified, nil)

	select {
	case <-logRepo.created:
		t.Fatal("inactive actions must not fire")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestSendTestWebhook(t *testing.T) {
	var gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := newTestService(newFakeActionRepo(), newFakeLogRepo(), &fakeSender{}, nil)

	draft := ActionConfig{
		ID:    primitive.NewObjectID(),
		Name:  "draft",
		Type:  ActionTypeWebhook,
		Event: events.AppointmentScheduled,
		URL:   srv.URL,
	}

	result := svc.SendTest(context.Background(), primitive.NewObjectID().Hex(), draft, events.AppointmentScheduled, nil)

	if !result.Success {
		t.Fatalf("test send failed: %s", result.Message)
	}
	if !strings.Contains(gotBody, "Haircut") {
		t.Errorf("sample payload missing from body: %s", gotBody)
	}
}

func TestSendTestChatRendersTemplate(t *testing.T) {
	sender := &fakeSender{}
	gw := &settings.GatewayConfig{PhoneNumberID: "123", AccessToken: "tok"}
	svc := newTestService(newFakeActionRepo(), newFakeLogRepo(), sender, gw)

	draft := ActionConfig{
		ID:              primitive.NewObjectID(),
		Name:            "draft",
		Type:            ActionTypeChatMessage,
		Event:           events.LeadQualified,
		Recipient:       "5511888888888",
		MessageTemplate: "Lead {{data.clientData.name}} is {{data.score}} ({{data.missing}})",
	}

	result := svc.SendTest(context.Background(), primitive.NewObjectID().Hex(), draft, events.LeadQualified, nil)

	if !result.Success {
		t.Fatalf("test send failed: %s", result.Message)
	}
	if len(sender.calls) != 1 {
		t.Fatalf("expected 1 send, got %d", len(sender.calls))
	}

	body := sender.calls[0].body
	if strings.Contains(body, "{{") || strings.Contains(body, "}}") {
		t.Errorf("unresolved placeholders in rendered message: %q", body)
	}
	if !strings.Contains(body, "Ana Souza") || !strings.Contains(body, "hot") {
		t.Errorf("sample values missing from rendered message: %q", body)
	}
	if sender.calls[0].creds.PhoneNumberID != "123" {
		t.Errorf("credentials not resolved from settings: %+v", sender.calls[0].creds)
	}
}

func TestDeleteActionIsIdempotent(t *testing.T) {
	tenant := primitive.NewObjectID()
	repo := newFakeActionRepo()
	act := ActionConfig{
		TenantID: tenant,
		Name:     "notify",
		Type:     ActionTypeWebhook,
		Event:    events.Test,
		URL:      "https://example.com",
	}
	_ = repo.Create(context.Background(), &act)

	svc := newTestService(repo, newFakeLogRepo(), &fakeSender{}, nil)

	if err := svc.DeleteAction(context.Background(), tenant.Hex(), act.ID.Hex()); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.DeleteAction(context.Background(), tenant.Hex(), act.ID.Hex()); err != nil {
		t.Fatalf("second delete must also succeed: %v", err)
	}
}

func TestSendTestHonorsCallerDeadline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	svc := newTestService(newFakeActionRepo(), newFakeLogRepo(), &fakeSender{}, nil)

	draft := ActionConfig{
		ID:    primitive.NewObjectID(),
		Name:  "draft",
		Type:  ActionTypeWebhook,
		Event: events.Test,
		URL:   srv.URL,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	result := svc.SendTest(ctx, primitive.NewObjectID().Hex(), draft, events.Test, nil)
	elapsed := time.Since(start)

	if result.Success {
		t.Error("expired deadline must be reported as failure")
	}
	if result.Message == "" {
		t.Error("failure must carry a message")
	}
	if elapsed > time.Second {
		t.Errorf("test send ran %v, must return as soon as the caller's deadline expires", elapsed)
	}
}

type panickingFeed struct{}

func (panickingFeed) Broadcast(tenantID string, log DeliveryLog) {
	panic("feed connection gone")
}

func TestPublishSurvivesSinkPanic(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tenant := primitive.NewObjectID()
	repo := newFakeActionRepo()
	for _, name := range []string{"first", "second"} {
		_ = repo.Create(context.Background(), &ActionConfig{
			TenantID: tenant,
			Name:     name,
			Type:     ActionTypeWebhook,
			Event:    events.LeadQualified,
			IsActive: true,
			URL:      srv.URL,
		})
	}

	logRepo := newFakeLogRepo()
	cfg := &config.Config{DispatchTimeout: 5 * time.Second}
	svc := newTestServiceWithSinks(cfg, repo, logRepo, &fakeSender{}, nil, panickingFeed{}, noopArchiver{})

	svc.Publish(context.Background(), tenant.Hex(), events.LeadQualified, nil)

	// Both delivery goroutines panic in the feed; each must recover on its
	// own, and both logs were written before the panic point.
	for i := 0; i < 2; i++ {
		select {
		case <-logRepo.created:
		case <-time.After(3 * time.Second):
			t.Fatalf("delivery log %d was never written", i+1)
		}
	}

	logs, _ := logRepo.ListByTenant(context.Background(), tenant.Hex(), 50)
	if len(logs) != 2 {
		t.Fatalf("expected 2 delivery logs, got %d", len(logs))
	}
}

type deadlineCapturingLogRepo struct {
	*fakeLogRepo
	remaining chan time.Duration
}

func (r *deadlineCapturingLogRepo) Create(ctx context.Context, log *DeliveryLog) error {
	left := time.Duration(0)
	if deadline, ok := ctx.Deadline(); ok {
		left = time.Until(deadline)
	}
	r.remaining <- left
	return r.fakeLogRepo.Create(ctx, log)
}

func TestRecordDeliveryKeepsOwnBudget(t *testing.T) {
	// Endpoint slower than the dispatch timeout, so the delivery attempt
	// consumes its entire budget before failing.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	tenant := primitive.NewObjectID()
	repo := newFakeActionRepo()
	_ = repo.Create(context.Background(), &ActionConfig{
		TenantID: tenant,
		Name:     "slow endpoint",
		Type:     ActionTypeWebhook,
		Event:    events.LeadQualified,
		IsActive: true,
		URL:      srv.URL,
	})

	logRepo := &deadlineCapturingLogRepo{
		fakeLogRepo: newFakeLogRepo(),
		remaining:   make(chan time.Duration, 1),
	}
	cfg := &config.Config{DispatchTimeout: 100 * time.Millisecond}
	svc := newTestServiceWithSinks(cfg, repo, logRepo, &fakeSender{}, nil, noopFeed{}, noopArchiver{})

	svc.Publish(context.Background(), tenant.Hex(), events.LeadQualified, nil)

	var left time.Duration
	select {
	case left = <-logRepo.remaining:
	case <-time.After(3 * time.Second):
		t.Fatal("delivery log was never written")
	}

	// A timed-out delivery must not leave the log write running on the
	// same nearly-spent deadline.
	if left < 5*time.Second {
		t.Errorf("log write had only %v left on its deadline", left)
	}

	logs, _ := logRepo.ListByTenant(context.Background(), tenant.Hex(), 50)
	if len(logs) != 1 {
		t.Fatalf("expected 1 delivery log, got %d", len(logs))
	}
	if logs[0].Success {
		t.Error("timed-out delivery must be recorded as a failure")
	}
}

func TestCreateActionRejectsInvalid(t *testing.T) {
	svc := newTestService(newFakeActionRepo(), newFakeLogRepo(), &fakeSender{}, nil)

	err := svc.CreateAction(context.Background(), &ActionConfig{
		Name:  "broken",
		Type:  ActionTypeWebhook,
		Event: events.Test,
	})
	if err == nil {
		t.Fatal("expected validation error for webhook without url")
	}
}

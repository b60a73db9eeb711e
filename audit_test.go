package elgamal

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"
)

// MockAuditHandler records every event it receives
type MockAuditHandler struct {
	mu                   sync.Mutex
	events               []AuditEvent
	keyGenerations       []*KeyGenerationEvent
	decryptions          []*DecryptionEvent
	validationFailures   []*ValidationFailureEvent
	nonceReuses          []*AuditEvent
	configurationChanges []*AuditEvent
	errors               []*AuditEvent
}

func NewMockAuditHandler() *MockAuditHandler {
	return &MockAuditHandler{}
}

func (h *MockAuditHandler) OnKeyGeneration(event *KeyGenerationEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.keyGenerations = append(h.keyGenerations, event)
	h.events = append(h.events, event.AuditEvent)
}

func (h *MockAuditHandler) OnDecryption(event *DecryptionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.decryptions = append(h.decryptions, event)
	h.events = append(h.events, event.AuditEvent)
}

func (h *MockAuditHandler) OnValidationFailure(event *ValidationFailureEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.validationFailures = append(h.validationFailures, event)
	h.events = append(h.events, event.AuditEvent)
}

func (h *MockAuditHandler) OnNonceReuse(event *AuditEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.nonceReuses = append(h.nonceReuses, event)
	h.events = append(h.events, *event)
}

func (h *MockAuditHandler) OnConfigurationChange(event *AuditEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.configurationChanges = append(h.configurationChanges, event)
	h.events = append(h.events, *event)
}

func (h *MockAuditHandler) OnError(event *AuditEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errors = append(h.errors, event)
	h.events = append(h.events, *event)
}

func TestAuditEventBuilder(t *testing.T) {
	builder := NewAuditEventBuilder(AuditEventKeyGeneration, ReasonCallerRequest).
		WithCurve("babyjubjub").
		WithParty(AuditorIndex).
		WithShape(2, 2).
		WithMetadata("round", 1)

	event := builder.Build()
	if event.EventType != AuditEventKeyGeneration {
		t.Errorf("expected event type %s, got %s", AuditEventKeyGeneration, event.EventType)
	}
	if event.CurveName != "babyjubjub" || event.Index != AuditorIndex {
		t.Errorf("unexpected event fields: %+v", event)
	}
	if event.Threshold != 2 || event.Total != 2 {
		t.Errorf("expected 2-of-2, got %d-of-%d", event.Threshold, event.Total)
	}
	if !event.Success {
		t.Error("events default to success")
	}
	if event.EventID == "" {
		t.Error("event ID should be generated")
	}
	if time.Since(event.Timestamp) > time.Minute {
		t.Error("timestamp should be recent")
	}

	kg := builder.BuildKeyGeneration(1, 5*time.Millisecond)
	if kg.ArtifactsProduced != 1 || kg.Duration != 5*time.Millisecond {
		t.Errorf("unexpected keygen event: %+v", kg)
	}

	failed := NewAuditEventBuilder(AuditEventError, ReasonCallerRequest).
		WithError(errors.New("bad input")).
		Build()
	if failed.Success || failed.Error != "bad input" {
		t.Errorf("WithError should mark failure: %+v", failed)
	}
}

func TestAuditEventJSON(t *testing.T) {
	event := NewAuditEventBuilder(AuditEventDecryption, ReasonCallerRequest).
		WithParticipants([]ParticipantIndex{1, 2}).
		BuildDecryption(2, true)

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["event_type"] != string(AuditEventDecryption) {
		t.Errorf("unexpected event_type %v", decoded["event_type"])
	}
	if decoded["partials_received"] != float64(2) || decoded["proofs_verified"] != true {
		t.Errorf("decryption fields missing: %s", data)
	}
}

func TestEventIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateEventID()
		if seen[id] {
			t.Fatalf("duplicate event ID %s", id)
		}
		seen[id] = true
	}
}

func TestEngineAuditTrail(t *testing.T) {
	handler := NewMockAuditHandler()
	cfg := DefaultConfig()
	e, err := NewEngine(cfg, WithAuditHandler(handler))
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if len(handler.configurationChanges) != 1 || handler.configurationChanges[0].EventType != AuditEventInitialization {
		t.Fatalf("expected one initialization event, got %+v", handler.configurationChanges)
	}

	d := deal(t, e)
	if len(handler.keyGenerations) != 2 {
		t.Errorf("expected 2 keygen events, got %d", len(handler.keyGenerations))
	}
	for _, kg := range handler.keyGenerations {
		if kg.ArtifactsProduced != 1 {
			t.Errorf("expected 1 artifact per keygen, got %d", kg.ArtifactsProduced)
		}
	}

	m, err := e.MessageToPoint("10")
	if err != nil {
		t.Fatal(err)
	}
	cipher, err := e.Encrypt(m, d.pub, "4242")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := e.Encrypt(m, d.pub, "4242"); !errors.Is(err, ErrNonceReuseRisk) {
		t.Fatalf("expected nonce reuse error, got %v", err)
	}
	if len(handler.nonceReuses) != 1 {
		t.Errorf("expected 1 nonce reuse event, got %d", len(handler.nonceReuses))
	}

	partials := []*PartialDecryption{d.partial(t, e, 1, cipher.C1), d.partial(t, e, 2, cipher.C1)}
	if _, err := e.FinalDecrypt(cipher, partials, 2); err != nil {
		t.Fatalf("FinalDecrypt failed: %v", err)
	}

	var combined *DecryptionEvent
	partialEvents := 0
	for _, ev := range handler.decryptions {
		switch ev.EventType {
		case AuditEventDecryption:
			combined = ev
		case AuditEventPartialDecryption:
			partialEvents++
		}
	}
	if partialEvents != 2 {
		t.Errorf("expected 2 partial decryption events, got %d", partialEvents)
	}
	if combined == nil {
		t.Fatal("missing decryption event")
	}
	if len(combined.Participants) != 2 || combined.PartialsReceived != 2 {
		t.Errorf("unexpected decryption event: %+v", combined)
	}

	if _, err := e.MessageToPoint("-1"); err == nil {
		t.Fatal("expected invalid message error")
	}
	if len(handler.validationFailures) == 0 {
		t.Error("validation errors should reach OnValidationFailure")
	}

	if _, err := e.ImportSecretNode([]byte("junk")); err == nil {
		t.Fatal("expected import error")
	}
	if len(handler.errors) == 0 {
		t.Error("non-validation errors should reach OnError")
	}

	for _, ev := range handler.events {
		if ev.CurveName != "babyjubjub" {
			t.Errorf("event %s missing curve name", ev.EventType)
		}
	}
}

func TestInvalidConfigAudited(t *testing.T) {
	handler := NewMockAuditHandler()
	cfg := DefaultConfig()
	cfg.Total = 1
	cfg.Threshold = 1

	if _, err := NewEngine(cfg, WithAuditHandler(handler)); err == nil {
		t.Fatal("expected configuration error")
	}
	if len(handler.validationFailures) != 1 {
		t.Fatalf("expected 1 validation failure, got %d", len(handler.validationFailures))
	}
	if handler.validationFailures[0].ValidationType != "configuration" {
		t.Errorf("unexpected validation type %s", handler.validationFailures[0].ValidationType)
	}
}

func TestNullAuditHandler(t *testing.T) {
	var h AuditEventHandler = &NullAuditHandler{}
	h.OnKeyGeneration(&KeyGenerationEvent{})
	h.OnDecryption(&DecryptionEvent{})
	h.OnValidationFailure(&ValidationFailureEvent{})
	h.OnNonceReuse(&AuditEvent{})
	h.OnConfigurationChange(&AuditEvent{})
	h.OnError(&AuditEvent{})
}

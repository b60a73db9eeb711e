package elgamal

import (
	"crypto/rand"
	"fmt"
	"time"
)

// AuditEventType represents the type of audit event
type AuditEventType string

const (
	AuditEventKeyGeneration       AuditEventType = "key_generation"
	AuditEventPartialDecryption   AuditEventType = "partial_decryption"
	AuditEventDecryption          AuditEventType = "decryption"
	AuditEventNonceReuse          AuditEventType = "nonce_reuse"
	AuditEventConfigurationChange AuditEventType = "configuration_change"
	AuditEventInitialization      AuditEventType = "initialization"
	AuditEventValidationFailure   AuditEventType = "validation_failure"
	AuditEventError               AuditEventType = "error"
)

// AuditEventReason represents why an event occurred
type AuditEventReason string

const (
	ReasonCallerRequest   AuditEventReason = "caller_request"
	ReasonInitialization  AuditEventReason = "initialization"
	ReasonValidationError AuditEventReason = "validation_error"
	ReasonNonceReplay     AuditEventReason = "nonce_replay"
)

// AuditEvent is a single audit record. It only ever carries public data:
// indices, thresholds, curve names and error codes.
type AuditEvent struct {
	EventID   string           `json:"event_id"`
	Timestamp time.Time        `json:"timestamp"`
	EventType AuditEventType   `json:"event_type"`
	Reason    AuditEventReason `json:"reason"`

	CurveName string           `json:"curve_name,omitempty"`
	Index     ParticipantIndex `json:"index,omitempty"`
	Threshold int              `json:"threshold,omitempty"`
	Total     int              `json:"total,omitempty"`

	// Participants lists the indices whose partials were combined
	Participants []ParticipantIndex `json:"participants,omitempty"`

	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`

	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// KeyGenerationEvent describes a keygen run by one party
type KeyGenerationEvent struct {
	AuditEvent

	ArtifactsProduced int           `json:"artifacts_produced"`
	Duration          time.Duration `json:"duration"`
}

// DecryptionEvent describes a partial or combined decryption
type DecryptionEvent struct {
	AuditEvent

	PartialsReceived int  `json:"partials_received"`
	ProofsVerified   bool `json:"proofs_verified"`
}

// ValidationFailureEvent contains details about validation failures
type ValidationFailureEvent struct {
	AuditEvent

	ValidationType string                 `json:"validation_type"` // "input" or "configuration"
	FailureReason  string                 `json:"failure_reason"`
	InputValues    map[string]interface{} `json:"input_values,omitempty"`
}

// AuditEventHandler receives audit events from the engine. Applications
// implement it to record events as they need.
type AuditEventHandler interface {
	OnKeyGeneration(event *KeyGenerationEvent)
	OnDecryption(event *DecryptionEvent)
	OnValidationFailure(event *ValidationFailureEvent)
	OnNonceReuse(event *AuditEvent)
	OnConfigurationChange(event *AuditEvent)
	OnError(event *AuditEvent)
}

// NullAuditHandler is a no-op implementation of AuditEventHandler
type NullAuditHandler struct{}

func (n *NullAuditHandler) OnKeyGeneration(event *KeyGenerationEvent)         {}
func (n *NullAuditHandler) OnDecryption(event *DecryptionEvent)               {}
func (n *NullAuditHandler) OnValidationFailure(event *ValidationFailureEvent) {}
func (n *NullAuditHandler) OnNonceReuse(event *AuditEvent)                    {}
func (n *NullAuditHandler) OnConfigurationChange(event *AuditEvent)           {}
func (n *NullAuditHandler) OnError(event *AuditEvent)                         {}

// AuditEventBuilder helps construct audit events with proper defaults
type AuditEventBuilder struct {
	event *AuditEvent
}

// NewAuditEventBuilder creates a new audit event builder
func NewAuditEventBuilder(eventType AuditEventType, reason AuditEventReason) *AuditEventBuilder {
	return &AuditEventBuilder{
		event: &AuditEvent{
			EventID:   generateEventID(),
			Timestamp: time.Now(),
			EventType: eventType,
			Reason:    reason,
			Success:   true,
			Metadata:  make(map[string]interface{}),
		},
	}
}

// WithCurve sets the curve name for the event
func (b *AuditEventBuilder) WithCurve(curveName string) *AuditEventBuilder {
	b.event.CurveName = curveName
	return b
}

// WithParty sets the acting party's index
func (b *AuditEventBuilder) WithParty(index ParticipantIndex) *AuditEventBuilder {
	b.event.Index = index
	return b
}

// WithShape sets the threshold and party count
func (b *AuditEventBuilder) WithShape(threshold, total int) *AuditEventBuilder {
	b.event.Threshold = threshold
	b.event.Total = total
	return b
}

// WithParticipants sets the indices involved in a combination
func (b *AuditEventBuilder) WithParticipants(indices []ParticipantIndex) *AuditEventBuilder {
	b.event.Participants = indices
	return b
}

// WithError marks the event as failed. Only the error text is kept, which
// never contains secret material.
func (b *AuditEventBuilder) WithError(err error) *AuditEventBuilder {
	b.event.Success = false
	if err != nil {
		b.event.Error = err.Error()
	}
	return b
}

// WithMetadata adds metadata to the event
func (b *AuditEventBuilder) WithMetadata(key string, value interface{}) *AuditEventBuilder {
	b.event.Metadata[key] = value
	return b
}

// Build returns the constructed audit event
func (b *AuditEventBuilder) Build() *AuditEvent {
	return b.event
}

// BuildKeyGeneration returns a KeyGenerationEvent
func (b *AuditEventBuilder) BuildKeyGeneration(artifacts int, duration time.Duration) *KeyGenerationEvent {
	return &KeyGenerationEvent{
		AuditEvent:        *b.event,
		ArtifactsProduced: artifacts,
		Duration:          duration,
	}
}

// BuildDecryption returns a DecryptionEvent
func (b *AuditEventBuilder) BuildDecryption(partials int, proofsVerified bool) *DecryptionEvent {
	return &DecryptionEvent{
		AuditEvent:       *b.event,
		PartialsReceived: partials,
		ProofsVerified:   proofsVerified,
	}
}

// BuildValidationFailure returns a ValidationFailureEvent
func (b *AuditEventBuilder) BuildValidationFailure(validationType, failureReason string, inputValues map[string]interface{}) *ValidationFailureEvent {
	return &ValidationFailureEvent{
		AuditEvent:     *b.event,
		ValidationType: validationType,
		FailureReason:  failureReason,
		InputValues:    inputValues,
	}
}

// generateEventID combines a timestamp with random bytes
func generateEventID() string {
	timestamp := time.Now().Format("20060102150405.000000")

	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return fmt.Sprintf("%s.%d", timestamp, time.Now().UnixNano()%10000)
	}

	return fmt.Sprintf("%s.%x", timestamp, randomBytes)
}

package elgamal

import (
	"fmt"
	"math"
)

// MaxParticipants bounds the number of parties in one sharing
const MaxParticipants = 1000

// SecurityLevel represents the security level of threshold parameters
type SecurityLevel string

const (
	SecurityLevelLow    SecurityLevel = "low"
	SecurityLevelMedium SecurityLevel = "medium"
	SecurityLevelHigh   SecurityLevel = "high"
)

// ValidationResult contains the result of parameter validation
type ValidationResult struct {
	Valid           bool          `json:"valid"`
	SecurityLevel   SecurityLevel `json:"security_level"`
	Warnings        []string      `json:"warnings,omitempty"`
	Errors          []string      `json:"errors,omitempty"`
	Recommendations []string      `json:"recommendations,omitempty"`
}

func newValidationResult() *ValidationResult {
	return &ValidationResult{
		Valid:           true,
		SecurityLevel:   SecurityLevelMedium,
		Warnings:        []string{},
		Errors:          []string{},
		Recommendations: []string{},
	}
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.SecurityLevel = SecurityLevelLow
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) merge(other *ValidationResult) {
	if !other.Valid {
		r.Valid = false
	}
	r.Errors = append(r.Errors, other.Errors...)
	r.Warnings = append(r.Warnings, other.Warnings...)
	r.Recommendations = append(r.Recommendations, other.Recommendations...)
	r.SecurityLevel = minSecurityLevel(r.SecurityLevel, other.SecurityLevel)
}

// Err converts an invalid result into ErrInvalidConfiguration
func (r *ValidationResult) Err() error {
	if r.Valid {
		return nil
	}
	return ErrInvalidConfiguration.WithDetails("%v", r.Errors)
}

// ThresholdValidator checks a threshold against the number of parties
type ThresholdValidator struct {
	MinParticipants     int     `json:"min_participants"`
	MinThreshold        int     `json:"min_threshold"`
	MaxThreshold        int     `json:"max_threshold"`
	RecommendedMinRatio float64 `json:"recommended_min_ratio"`
}

// NewDefaultThresholdValidator allows the two-party deployment and anything
// larger up to MaxParticipants
func NewDefaultThresholdValidator() *ThresholdValidator {
	return &ThresholdValidator{
		MinParticipants:     2,
		MinThreshold:        1,
		MaxThreshold:        MaxParticipants,
		RecommendedMinRatio: 0.51,
	}
}

// ValidateThresholdParameters validates threshold and participant parameters
func (tv *ThresholdValidator) ValidateThresholdParameters(participantCount, threshold int) *ValidationResult {
	result := newValidationResult()

	if threshold <= 0 {
		result.fail("threshold must be positive")
	}
	if participantCount <= 0 {
		result.fail("participant count must be positive")
	}
	if threshold > participantCount {
		result.fail("threshold cannot exceed participant count")
	}
	if !result.Valid {
		return result
	}

	if participantCount < tv.MinParticipants {
		result.fail("minimum %d participants required", tv.MinParticipants)
	}
	if participantCount > MaxParticipants {
		result.fail("participant count exceeds maximum of %d", MaxParticipants)
	}
	if threshold < tv.MinThreshold {
		result.fail("minimum threshold of %d required", tv.MinThreshold)
	}
	if threshold > tv.MaxThreshold {
		result.fail("threshold exceeds maximum of %d", tv.MaxThreshold)
	}
	if !result.Valid {
		return result
	}

	ratio := float64(threshold) / float64(participantCount)
	switch {
	case threshold == 1:
		result.SecurityLevel = SecurityLevelLow
		result.Warnings = append(result.Warnings, "threshold of 1 lets any single party decrypt")
	case ratio < tv.RecommendedMinRatio:
		result.SecurityLevel = SecurityLevelLow
		result.Warnings = append(result.Warnings, "a minority of parties can decrypt")
		result.Recommendations = append(result.Recommendations,
			fmt.Sprintf("consider increasing threshold to at least %d", int(math.Ceil(float64(participantCount)*tv.RecommendedMinRatio))))
	default:
		result.SecurityLevel = SecurityLevelHigh
	}

	if threshold == participantCount {
		result.Warnings = append(result.Warnings, "threshold equals participant count, every party must take part in decryption")
	}

	return result
}

// SecurityAssessment summarises what a threshold configuration tolerates
type SecurityAssessment struct {
	OverallRating    SecurityLevel `json:"overall_rating"`
	FaultTolerance   int           `json:"fault_tolerance"`   // parties that may be offline
	AttackResistance int           `json:"attack_resistance"` // colluding parties needed to decrypt
	AvailabilityRisk string        `json:"availability_risk"`
}

// AssessSecurity rates a threshold configuration
func AssessSecurity(participantCount, threshold int) *SecurityAssessment {
	if participantCount <= 0 || threshold <= 0 || threshold > participantCount {
		return &SecurityAssessment{
			OverallRating:    SecurityLevelLow,
			AvailabilityRisk: "critical - invalid parameters",
		}
	}

	a := &SecurityAssessment{
		FaultTolerance:   participantCount - threshold,
		AttackResistance: threshold,
	}

	ratio := float64(threshold) / float64(participantCount)
	switch {
	case threshold == 1 || ratio < 0.5:
		a.OverallRating = SecurityLevelLow
	case ratio >= 0.67:
		a.OverallRating = SecurityLevelHigh
	default:
		a.OverallRating = SecurityLevelMedium
	}

	switch {
	case a.FaultTolerance == 0:
		a.AvailabilityRisk = "critical - no fault tolerance"
	case a.FaultTolerance == 1:
		a.AvailabilityRisk = "high - single point of failure"
	case a.FaultTolerance <= 3:
		a.AvailabilityRisk = "medium - limited fault tolerance"
	default:
		a.AvailabilityRisk = "low - good fault tolerance"
	}

	return a
}

// minSecurityLevel returns the lower of two levels
func minSecurityLevel(level1, level2 SecurityLevel) SecurityLevel {
	rank := map[SecurityLevel]int{
		SecurityLevelLow:    1,
		SecurityLevelMedium: 2,
		SecurityLevelHigh:   3,
	}

	r1, ok := rank[level1]
	if !ok {
		r1 = 2
	}
	r2, ok := rank[level2]
	if !ok {
		r2 = 2
	}

	if r1 <= r2 {
		return level1
	}
	return level2
}

package elgamal

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config holds the engine parameters
type Config struct {
	Curve          CurveType `json:"curve"`
	Threshold      int       `json:"threshold"`
	Total          int       `json:"total"`
	EncodingFactor uint64    `json:"encoding_factor"`
	TrackNonces    bool      `json:"track_nonces"`
	NonceCacheSize int       `json:"nonce_cache_size"`
	Parallelism    int       `json:"parallelism"`
}

// DefaultConfig is the two-party BabyJubJub deployment
func DefaultConfig() Config {
	return Config{
		Curve:          BabyJubJub,
		Threshold:      2,
		Total:          2,
		EncodingFactor: DefaultEncodingFactor,
		TrackNonces:    true,
		NonceCacheSize: 4096,
		Parallelism:    4,
	}
}

// ParseConfig decodes a JSON config. Absent fields keep their defaults.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, ErrInvalidConfiguration.WithCause(err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig reads a JSON config file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, ErrInvalidConfiguration.WithCause(err).WithContext("path", path)
	}
	return ParseConfig(data)
}

// Validate returns ErrInvalidConfiguration listing every problem found
func (c Config) Validate() error {
	return NewDefaultConfigurationValidator().ValidateConfig(c).Err()
}

// Encoding factor bounds. Small factors make the probe window likely to miss
// the subgroup on cofactor curves.
const (
	MinEncodingFactor = 256
	MaxEncodingFactor = 1 << 16
)

// ConfigurationValidator provides validation for engine configuration
type ConfigurationValidator struct {
	supportedCurves   map[CurveType]bool
	minEncodingFactor uint64
	maxEncodingFactor uint64
	maxNonceCache     int
	threshold         *ThresholdValidator
}

// NewDefaultConfigurationValidator creates a validator with secure defaults
func NewDefaultConfigurationValidator() *ConfigurationValidator {
	return &ConfigurationValidator{
		supportedCurves: map[CurveType]bool{
			BabyJubJub: true,
			Secp256k1:  true,
			Ed25519:    true,
		},
		minEncodingFactor: MinEncodingFactor,
		maxEncodingFactor: MaxEncodingFactor,
		maxNonceCache:     1 << 20,
		threshold:         NewDefaultThresholdValidator(),
	}
}

// ValidateCurve checks the curve is supported and notes its timing profile
func (cv *ConfigurationValidator) ValidateCurve(curve CurveType) *ValidationResult {
	result := newValidationResult()

	if curve == "" {
		result.fail("curve cannot be empty")
		return result
	}
	if !cv.supportedCurves[curve] {
		result.fail("unsupported curve: %s", curve)
		result.Recommendations = append(result.Recommendations, "use a supported curve: babyjubjub, ed25519, or secp256k1")
		return result
	}

	switch curve {
	case BabyJubJub:
		result.SecurityLevel = SecurityLevelHigh
		result.Warnings = append(result.Warnings, "babyjubjub scalar arithmetic uses math/big and is variable-time; only point multiplication is constant-time")
	case Ed25519:
		result.SecurityLevel = SecurityLevelHigh
	case Secp256k1:
		result.SecurityLevel = SecurityLevelMedium
		result.Warnings = append(result.Warnings, "secp256k1 scalar multiplication is variable-time")
		result.Recommendations = append(result.Recommendations, "prefer babyjubjub or ed25519 where timing side channels matter")
	}

	return result
}

// ValidateEncodingFactor checks the message embedding factor
func (cv *ConfigurationValidator) ValidateEncodingFactor(k uint64) *ValidationResult {
	result := newValidationResult()
	if k < cv.minEncodingFactor || k > cv.maxEncodingFactor {
		result.fail("encoding factor %d outside [%d, %d]", k, cv.minEncodingFactor, cv.maxEncodingFactor)
	}
	if result.Valid {
		result.SecurityLevel = SecurityLevelHigh
	}
	if k != DefaultEncodingFactor && result.Valid {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("encoding factor %d differs from %d; ciphertexts are not interchangeable with default engines", k, DefaultEncodingFactor))
	}
	return result
}

// ValidateConfig runs every check over a complete config
func (cv *ConfigurationValidator) ValidateConfig(c Config) *ValidationResult {
	result := newValidationResult()
	result.SecurityLevel = SecurityLevelHigh

	result.merge(cv.ValidateCurve(c.Curve))
	result.merge(cv.threshold.ValidateThresholdParameters(c.Total, c.Threshold))
	result.merge(cv.ValidateEncodingFactor(c.EncodingFactor))

	if c.TrackNonces && (c.NonceCacheSize < 1 || c.NonceCacheSize > cv.maxNonceCache) {
		result.fail("nonce cache size %d outside [1, %d]", c.NonceCacheSize, cv.maxNonceCache)
	}
	if !c.TrackNonces {
		result.Warnings = append(result.Warnings, "nonce reuse tracking is disabled")
	}
	if c.Parallelism < 1 {
		result.fail("parallelism must be positive")
	}

	return result
}

// CheckCompatibility reports whether material produced under oldConfig can
// be used under newConfig
func CheckCompatibility(oldConfig, newConfig Config) *ValidationResult {
	result := newValidationResult()

	if oldConfig.Curve != newConfig.Curve {
		result.fail("curve mismatch: %s -> %s", oldConfig.Curve, newConfig.Curve)
	}
	if oldConfig.EncodingFactor != newConfig.EncodingFactor {
		result.fail("encoding factor mismatch: %d -> %d", oldConfig.EncodingFactor, newConfig.EncodingFactor)
	}
	if oldConfig.Threshold != newConfig.Threshold || oldConfig.Total != newConfig.Total {
		result.fail("sharing shape changed: %d-of-%d -> %d-of-%d, keys must be regenerated",
			oldConfig.Threshold, oldConfig.Total, newConfig.Threshold, newConfig.Total)
	}

	return result
}

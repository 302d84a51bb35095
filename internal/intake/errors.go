package intake

import (
	"errors"
	"fmt"
)

// ModelUnavailableError reports that the completion backend failed or timed
// out after all transport-level retries. Stage fallback policy applies.
type ModelUnavailableError struct {
	Err error
}

func (e *ModelUnavailableError) Error() string {
	return fmt.Sprintf("model backend unavailable: %v", e.Err)
}

func (e *ModelUnavailableError) Unwrap() error {
	return e.Err
}

// ParseError reports that a completion's text could not be turned into the
// stage's record: no JSON payload, truncated payload, or a value of the
// wrong type. Partial records are never produced.
type ParseError struct {
	Detail string
	Raw    string
}

func (e *ParseError) Error() string {
	return "parse failure: " + e.Detail
}

// lowConfidenceError marks a classification whose confidence fell below the
// configured threshold. Handled like a parse failure by the stage's
// fallback policy, but recorded under its own failure kind.
type lowConfidenceError struct {
	confidence float64
	threshold  float64
}

func (e *lowConfidenceError) Error() string {
	return fmt.Sprintf("classification confidence %.2f below threshold %.2f", e.confidence, e.threshold)
}

// Validation failure codes.
const (
	ValidationContactInfoMissing = "contact_info_missing"
)

// ValidationError reports a parsed but semantically incomplete record. It is
// never retried and propagates to the caller so the conversation can ask the
// user directly.
type ValidationError struct {
	Code   string
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failure (%s): %s", e.Code, e.Detail)
}

// IsContactInfoMissing reports whether err is the missing-contact-channel
// validation failure.
func IsContactInfoMissing(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) && ve.Code == ValidationContactInfoMissing
}

// ConfigError reports fatal misconfiguration (e.g., no model configured).
// It is surfaced immediately with no fallback.
type ConfigError struct {
	Detail string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Detail
}

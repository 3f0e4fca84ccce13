package logging

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// piiFields are field names whose string values are always redacted.
// They cover the canonical record fields that identify a person.
var piiFields = map[string]bool{
	"email":      true,
	"email_std":  true,
	"email_hash": true,
	"mobile":     true,
	"landline":   true,
	"full_name":  true,
	"first_name": true,
	"surname":    true,
}

// piiPatterns match PII values regardless of field name: email addresses
// and phone numbers in the formats the source files carry.
var piiPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`),
	regexp.MustCompile(`(?:\+?61|0)[2-478](?:[ -]?\d){8}`),
}

// RedactedString creates a Zap field carrying only the value's length.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, "[REDACTED:"+strconv.Itoa(len(val))+"]")
}

// RedactingEncoder wraps a zapcore.Encoder to redact PII fields and values.
type RedactingEncoder struct {
	zapcore.Encoder
	redactFields map[string]bool
}

// NewRedactingEncoder wraps an encoder with the PII redaction rules plus
// any extra field names from config.
func NewRedactingEncoder(base zapcore.Encoder, cfg RedactionConfig) *RedactingEncoder {
	fields := make(map[string]bool, len(piiFields)+len(cfg.Fields))
	for f := range piiFields {
		fields[f] = true
	}
	for _, f := range cfg.Fields {
		fields[strings.ToLower(f)] = true
	}
	return &RedactingEncoder{Encoder: base, redactFields: fields}
}

// shouldRedactKey returns true if the key should be redacted.
func (e *RedactingEncoder) shouldRedactKey(key string) bool {
	return e.redactFields[strings.ToLower(key)]
}

// AddString redacts PII field names and value patterns.
func (e *RedactingEncoder) AddString(key, val string) {
	if e.shouldRedactKey(key) {
		e.Encoder.AddString(key, "[REDACTED]")
		return
	}
	for _, re := range piiPatterns {
		if re.MatchString(val) {
			e.Encoder.AddString(key, "[REDACTED:pattern]")
			return
		}
	}
	e.Encoder.AddString(key, val)
}

// AddByteString redacts PII field names.
func (e *RedactingEncoder) AddByteString(key string, val []byte) {
	if e.shouldRedactKey(key) {
		e.Encoder.AddByteString(key, []byte("[REDACTED]"))
		return
	}
	e.Encoder.AddByteString(key, val)
}

// AddReflected redacts the entire reflected value if the key is sensitive.
func (e *RedactingEncoder) AddReflected(key string, val interface{}) error {
	if e.shouldRedactKey(key) {
		e.Encoder.AddString(key, "[REDACTED]")
		return nil
	}
	return e.Encoder.AddReflected(key, val)
}

// Clone returns a copy sharing the redaction rules.
func (e *RedactingEncoder) Clone() zapcore.Encoder {
	return &RedactingEncoder{
		Encoder:      e.Encoder.Clone(),
		redactFields: e.redactFields,
	}
}

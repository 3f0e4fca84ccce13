package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func newTestEncoder(t *testing.T, cfg RedactionConfig) *RedactingEncoder {
	t.Helper()
	base := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	return NewRedactingEncoder(base, cfg)
}

func encodeEntry(t *testing.T, enc *RedactingEncoder, fields ...zap.Field) string {
	t.Helper()
	buf, err := enc.EncodeEntry(zapcore.Entry{Message: "test"}, fields)
	require.NoError(t, err)
	return buf.String()
}

func TestRedactingEncoderRedactsPIIFields(t *testing.T) {
	enc := newTestEncoder(t, RedactionConfig{Enabled: true})

	out := encodeEntry(t, enc,
		zap.String("email_std", "JOHN@EXAMPLE.COM"),
		zap.String("full_name", "JOHN SMITH"),
		zap.String("dataset", "source"),
	)

	assert.NotContains(t, out, "JOHN@EXAMPLE.COM")
	assert.NotContains(t, out, "JOHN SMITH")
	assert.Contains(t, out, "[REDACTED]")
	assert.Contains(t, out, `"dataset":"source"`)
}

func TestRedactingEncoderRedactsValuesByPattern(t *testing.T) {
	enc := newTestEncoder(t, RedactionConfig{Enabled: true})

	out := encodeEntry(t, enc,
		zap.String("query", "lookup for jane@company.com.au"),
		zap.String("note", "mobile 0412345678 did not match"),
	)

	assert.NotContains(t, out, "jane@company.com.au")
	assert.NotContains(t, out, "0412345678")
	assert.Contains(t, out, "[REDACTED:pattern]")
}

func TestRedactingEncoderExtraFields(t *testing.T) {
	enc := newTestEncoder(t, RedactionConfig{Enabled: true, Fields: []string{"Postcode"}})

	out := encodeEntry(t, enc, zap.String("postcode", "2042"))
	assert.NotContains(t, out, "2042")
}

func TestRedactedString(t *testing.T) {
	f := RedactedString("email", "a@b.co")
	assert.Equal(t, "[REDACTED:6]", f.String)
}

func TestNewLoggerValidatesConfig(t *testing.T) {
	_, err := New(&Config{Level: "nope", Format: "json"})
	require.Error(t, err)

	_, err = New(&Config{Level: "debug", Format: "xml"})
	require.Error(t, err)

	logger, err := New(NewDefaultConfig())
	require.NoError(t, err)
	require.NotNil(t, logger)
}

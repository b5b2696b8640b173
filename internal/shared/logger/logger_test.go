package logger

import (
	"context"
	"testing"

	"docstore/internal/shared/contextkeys"

	"github.com/stretchr/testify/assert"
)

func TestLoggerInterface_Contract(t *testing.T) {
	var _ Logger = NewLogger()
	var _ Logger = NewLoggerWithConfig("info", "json")
}

func TestLogrusLogger_WithFieldsAndContext(t *testing.T) {
	log := NewLogger()
	log2 := log.WithFields(map[string]interface{}{"foo": "bar"})
	assert.NotNil(t, log2)

	ctx := contextkeys.WithRequestID(context.Background(), "req-1")
	log3 := log.WithContext(ctx)
	assert.NotNil(t, log3)
}

func TestLogrusLogger_WithComponent(t *testing.T) {
	log := NewLogger()
	log2 := log.WithComponent("test-component")
	assert.NotNil(t, log2)
}

func TestNewLoggerWithConfig_InvalidLevelFallsBack(t *testing.T) {
	log := NewLoggerWithConfig("not-a-level", "text")
	assert.NotNil(t, log)
}

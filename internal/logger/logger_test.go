package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserIDRoundTrip(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), 42)

	id, ok := UserIDFromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)
}

func TestUserIDFromEmptyContext(t *testing.T) {
	_, ok := UserIDFromContext(context.Background())
	assert.False(t, ok)
}

// Логгер должен видеть user_id, положенный ContextWithUserID, а не строковый ключ
func TestContextAttrsUserID(t *testing.T) {
	ctx := ContextWithUserID(context.Background(), 7)

	attrs := contextAttrs(ctx)
	assert.Equal(t, []any{"user_id", int64(7)}, attrs)
}

func TestContextAttrsRequestIDAndUserID(t *testing.T) {
	ctx := ContextWithRequestID(context.Background(), "req-1")
	ctx = ContextWithUserID(ctx, 7)

	attrs := contextAttrs(ctx)
	assert.Equal(t, []any{"request_id", "req-1", "user_id", int64(7)}, attrs)
}

func TestContextAttrsEmpty(t *testing.T) {
	assert.Empty(t, contextAttrs(context.Background()))
}

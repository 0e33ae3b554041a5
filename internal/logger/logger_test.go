package logger

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Console(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{})
	require.NoError(t, err)

	l.Info().Str("case", "yamada").Msg("imported")
	assert.Contains(t, buf.String(), "imported")
	assert.Contains(t, buf.String(), "yamada")
}

func TestNew_JSONAndLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{Level: "warn", JSON: true})
	require.NoError(t, err)

	l.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	l.Warn().Msg("shown")
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), `"message":"shown"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(&bytes.Buffer{}, Options{Level: "loud"})
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	var buf bytes.Buffer
	l, err := New(&buf, Options{JSON: true})
	require.NoError(t, err)

	ctx := WithContext(context.Background(), l)
	got := FromContext(ctx)
	got.Info().Msg("from context")
	assert.Contains(t, buf.String(), "from context")
}

func TestFromContext_Default(t *testing.T) {
	l := FromContext(context.Background())
	assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
}

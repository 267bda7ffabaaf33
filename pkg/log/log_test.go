package log_test

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexwiepking-a11y/CRPM-check/pkg/log"
)

func TestGetLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		"error":         {input: "error", want: slog.LevelError},
		"warn":          {input: "warn", want: slog.LevelWarn},
		"warning alias": {input: "warning", want: slog.LevelWarn},
		"info":          {input: "info", want: slog.LevelInfo},
		"debug":         {input: "debug", want: slog.LevelDebug},
		"mixed case":    {input: "INFO", want: slog.LevelInfo},
		"unknown":       {input: "verbose", wantErr: true},
		"empty":         {input: "", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := log.GetLevel(tc.input)

			if tc.wantErr {
				require.ErrorIs(t, err, log.ErrUnknownLogLevel)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestGetFormat(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		input   string
		want    log.Format
		wantErr bool
	}{
		"json":       {input: "json", want: log.FormatJSON},
		"logfmt":     {input: "logfmt", want: log.FormatLogfmt},
		"text":       {input: "text", want: log.FormatText},
		"mixed case": {input: "JSON", want: log.FormatJSON},
		"unknown":    {input: "xml", wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := log.GetFormat(tc.input)

			if tc.wantErr {
				require.ErrorIs(t, err, log.ErrUnknownLogFormat)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			}
		})
	}
}

func TestCreateHandlerWithStrings(t *testing.T) {
	t.Parallel()

	t.Run("valid arguments", func(t *testing.T) {
		t.Parallel()

		b := &bytes.Buffer{}

		handler, err := log.CreateHandlerWithStrings(b, "info", "logfmt")
		require.NoError(t, err)

		slog.New(handler).Info("hello", slog.String("field", "VAT"))

		out := b.String()
		assert.Contains(t, out, "hello")
		assert.Contains(t, out, "field=VAT")
	})

	t.Run("level filtering", func(t *testing.T) {
		t.Parallel()

		b := &bytes.Buffer{}

		handler, err := log.CreateHandlerWithStrings(b, "warn", "json")
		require.NoError(t, err)

		logger := slog.New(handler)
		logger.Info("dropped")
		logger.Warn("kept")

		out := b.String()
		assert.NotContains(t, out, "dropped")
		assert.Contains(t, out, "kept")
	})

	t.Run("invalid level", func(t *testing.T) {
		t.Parallel()

		_, err := log.CreateHandlerWithStrings(&bytes.Buffer{}, "verbose", "json")
		require.ErrorIs(t, err, log.ErrInvalidArgument)
		require.ErrorIs(t, err, log.ErrUnknownLogLevel)
	})

	t.Run("invalid format", func(t *testing.T) {
		t.Parallel()

		_, err := log.CreateHandlerWithStrings(&bytes.Buffer{}, "info", "xml")
		require.ErrorIs(t, err, log.ErrInvalidArgument)
		require.ErrorIs(t, err, log.ErrUnknownLogFormat)
	})
}

func TestCreateHandler(t *testing.T) {
	t.Parallel()

	for _, format := range log.AllFormats {
		t.Run(format, func(t *testing.T) {
			t.Parallel()

			logFmt, err := log.GetFormat(format)
			require.NoError(t, err)

			b := &strings.Builder{}
			handler := log.CreateHandler(b, slog.LevelInfo, logFmt)
			require.NotNil(t, handler)

			slog.New(handler).Info("message")
			assert.Contains(t, b.String(), "message")
		})
	}

	assert.Nil(t, log.CreateHandler(&strings.Builder{}, slog.LevelInfo, log.Format("xml")))
}

func TestContextWithLogger(t *testing.T) {
	t.Parallel()

	logger := slog.New(slog.DiscardHandler)

	ctx := log.ContextWithLogger(t.Context(), logger)
	assert.Same(t, logger, log.WithContext(ctx))

	// Without a stored logger, falls back to the default.
	assert.Same(t, slog.Default(), log.WithContext(t.Context()))
}

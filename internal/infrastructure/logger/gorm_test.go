package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func decrementSQL() (string, int64) {
	return `UPDATE "stocks" SET "qty"=qty - 2 WHERE id = 3 AND qty >= 2`, 1
}

func TestGormLogger_Options(t *testing.T) {
	gl := NewGormLogger(zap.NewNop(), gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false))

	assert.Equal(t, 500*time.Millisecond, gl.slowThreshold)
	assert.False(t, gl.ignoreRecordNotFoundError)

	warn, ok := gl.LogMode(gormlogger.Warn).(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, warn.logLevel)
	assert.Equal(t, gormlogger.Info, gl.logLevel)
}

func TestGormLogger_Trace(t *testing.T) {
	tests := []struct {
		name      string
		level     gormlogger.LogLevel
		begin     time.Time
		err       error
		wantCount int
		wantLevel zapcore.Level
		wantMsg   string
	}{
		{"query at info", gormlogger.Info, time.Now(), nil, 1, zapcore.DebugLevel, "SQL Query"},
		{"query hidden at warn", gormlogger.Warn, time.Now(), nil, 0, 0, ""},
		{"slow query", gormlogger.Warn, time.Now().Add(-time.Second), nil, 1, zapcore.WarnLevel, "SLOW SQL >= 200ms"},
		{"error", gormlogger.Error, time.Now(), errors.New("deadlock detected"), 1, zapcore.ErrorLevel, "SQL Error"},
		{"not found ignored", gormlogger.Error, time.Now(), gormlogger.ErrRecordNotFound, 0, 0, ""},
		{"silent", gormlogger.Silent, time.Now(), errors.New("boom"), 0, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, recorded := observer.New(zapcore.DebugLevel)
			gl := NewGormLogger(zap.New(core), tt.level)

			gl.Trace(context.Background(), tt.begin, decrementSQL, tt.err)

			logs := recorded.All()
			require.Len(t, logs, tt.wantCount)
			if tt.wantCount == 1 {
				assert.Equal(t, tt.wantLevel, logs[0].Level)
				assert.Equal(t, tt.wantMsg, logs[0].Message)
				assert.Equal(t, "gorm", logs[0].LoggerName)
			}
		})
	}
}

func TestGormLogger_TraceCarriesRequestID(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info)
	ctx, _ := WithRequestID(context.Background(), zap.NewNop(), "req-42")

	gl.Trace(ctx, time.Now(), decrementSQL, nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	fields := logs[0].ContextMap()
	assert.Equal(t, "req-42", fields["request_id"])
	assert.Equal(t, int64(1), fields["rows"])
}

func TestGormLogger_Printf(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn)

	gl.Info(context.Background(), "migrated %d tables", 9)
	gl.Warn(context.Background(), "slow pool %s", "primary")
	gl.Error(context.Background(), "lost connection")

	logs := recorded.All()
	require.Len(t, logs, 2)
	assert.Equal(t, "slow pool primary", logs[0].Message)
	assert.Equal(t, "lost connection", logs[1].Message)
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("verbose"))
}

var _ gormlogger.Interface = (*GormLogger)(nil)

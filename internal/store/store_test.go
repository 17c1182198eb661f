package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"heartbeat-insights/internal/core/config"
	"heartbeat-insights/internal/domain"
)

func TestOpenMemory(t *testing.T) {
	cfg := &config.Config{DB: config.DB{Driver: "memory"}}
	s, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Driver)
	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close(context.Background()))
}

func TestOpenSQLite(t *testing.T) {
	cfg := &config.Config{DB: config.DB{Driver: "sqlite", DSN: "file:store_test?mode=memory&cache=shared", AutoMigrate: true, LogLevel: "silent"}}
	s, err := Open(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	defer s.Close(context.Background())

	ctx := context.Background()
	require.NoError(t, s.Ping(ctx))
	u := &domain.User{Name: "A", Email: "a@x.io", PasswordHash: "h", Role: domain.RoleUser}
	require.NoError(t, s.Users.Create(ctx, u))
	got, err := s.Users.FindByEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestOpenUnsupported(t *testing.T) {
	cfg := &config.Config{DB: config.DB{Driver: "oracle"}}
	_, err := Open(context.Background(), cfg, zap.NewNop())
	assert.Error(t, err)
}

package container_test

import (
	"testing"

	"github.com/mautops/timesheet-gin/internal/auth"
	"github.com/mautops/timesheet-gin/internal/config"
	"github.com/mautops/timesheet-gin/internal/container"
	"github.com/mautops/timesheet-gin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewContainerWithDB_HeaderMode(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := config.Default()
	cfg.Auth.Mode = auth.ModeHeader

	ctr, err := container.NewContainerWithDB(cfg, db)
	require.NoError(t, err)
	assert.Nil(t, ctr.TokenValidator())
	assert.NotNil(t, ctr.IdentityCache())

	deps := ctr.RouterDeps()
	assert.Same(t, cfg, deps.Config)
	assert.NotNil(t, deps.Directory)
	assert.NotNil(t, deps.Entries)
	assert.NotNil(t, deps.Submissions)
	assert.NotNil(t, deps.Approvals)
	assert.NotNil(t, deps.Queries)
	assert.NotNil(t, deps.Statistics)
}

func TestNewContainerWithDB_JWTMode(t *testing.T) {
	db := testutil.NewDB(t)
	cfg := config.Default()
	cfg.Auth.Mode = auth.ModeJWT

	cfg.Auth.JWTSecret = "short"
	_, err := container.NewContainerWithDB(cfg, db)
	assert.Error(t, err)

	cfg.Auth.JWTSecret = "0123456789abcdef0123456789abcdef"
	ctr, err := container.NewContainerWithDB(cfg, db)
	require.NoError(t, err)
	assert.NotNil(t, ctr.TokenValidator())
}

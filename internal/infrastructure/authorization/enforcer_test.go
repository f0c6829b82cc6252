package authorization

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orris-inc/poolkeeper/internal/shared/config"
	"github.com/orris-inc/poolkeeper/internal/shared/logger"
)

func TestNewGate_DisabledAllowsEverything(t *testing.T) {
	gate, err := NewGate(config.AuthorizationConfig{Enabled: false}, logger.Nop())
	require.NoError(t, err)

	allowed, err := gate.Allow("", "", "/owners/:owner_key/refresh", "POST")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestEnforcer_BuiltInPolicy(t *testing.T) {
	gate, err := NewGate(config.AuthorizationConfig{Enabled: true}, logger.Nop())
	require.NoError(t, err)

	tests := []struct {
		name      string
		principal string
		role      string
		object    string
		action    string
		want      bool
	}{
		{"admin anything", "alice", "admin", "/jobs/scheduler", "POST", true},
		{"operator refresh", "bob", "operator", "/owners/:owner_key/refresh", "POST", true},
		{"operator cannot pause", "bob", "operator", "/jobs/scheduler", "POST", false},
		{"system check-in", "host-agent", "system", "/consumers/:consumer_uuid", "PUT", true},
		{"system cannot refresh", "host-agent", "system", "/owners/:owner_key/refresh", "POST", false},
		{"anonymous", "", "", "/owners/:owner_key/refresh", "POST", false},
		{"unknown role", "eve", "intruder", "/entitlements/:entitlement_id", "DELETE", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			allowed, err := gate.Allow(tt.principal, tt.role, tt.object, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, allowed)
		})
	}
}

func TestEnforcer_PrincipalRoleBinding(t *testing.T) {
	e, err := NewEnforcer("", "", logger.Nop())
	require.NoError(t, err)

	allowed, err := e.Allow("carol", "", "/jobs/scheduler", "POST")
	require.NoError(t, err)
	assert.False(t, allowed)

	require.NoError(t, e.AddRoleForPrincipal("carol", "admin"))
	allowed, err = e.Allow("carol", "", "/jobs/scheduler", "POST")
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestEnforcer_FromFiles(t *testing.T) {
	dir := t.TempDir()
	modelPath := filepath.Join(dir, "model.conf")
	policyPath := filepath.Join(dir, "policy.csv")
	require.NoError(t, os.WriteFile(modelPath, []byte(defaultModel), 0o600))
	require.NoError(t, os.WriteFile(policyPath, []byte("p, auditor, /jobs/:job_id, GET\n"), 0o600))

	e, err := NewEnforcer(modelPath, policyPath, logger.Nop())
	require.NoError(t, err)

	allowed, err := e.Allow("dave", "auditor", "/jobs/:job_id", "GET")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = e.Allow("dave", "auditor", "/jobs/:job_id/cancel", "POST")
	require.NoError(t, err)
	assert.False(t, allowed)

	_, err = NewEnforcer(filepath.Join(dir, "missing.conf"), "", logger.Nop())
	assert.Error(t, err)
}

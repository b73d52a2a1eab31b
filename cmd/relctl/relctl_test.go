package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"relgraph/config"
	"relgraph/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const memoryConfig = `
storage:
  edgeBackend: memory
jwt:
  secret: relctl-test
  issuer: relgraph
relationships:
  defaultStatus: following
  blockingStatus: blocking
  subsetChunkSize: 20
  seedDefaults: true
metrics:
  enabled: false
`

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(memoryConfig), 0o644))

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", path}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusListShowsSeededKinds(t *testing.T) {
	out, err := run(t, "status", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "following")
	assert.Contains(t, out, "friends")
	assert.Contains(t, out, "blockers")
}

func TestStatusCreateValidates(t *testing.T) {
	out, err := run(t, "status", "create", "--name", "Colleague", "--from", "colleagues", "--to", "colleague-of")
	require.NoError(t, err)
	assert.Contains(t, out, "colleagues")

	_, err = run(t, "status", "create", "--name", "Dup", "--from", "following", "--to", "dup-of")
	assert.Error(t, err)

	_, err = run(t, "status", "create", "--name", "Bad", "--from", "Not Valid", "--to", "x")
	assert.Error(t, err)
}

func TestClassifyAndExists(t *testing.T) {
	out, err := run(t, "classify", "3", "3")
	require.NoError(t, err)
	assert.Equal(t, "self", strings.TrimSpace(out))

	out, err = run(t, "classify", "1", "2")
	require.NoError(t, err)
	assert.Equal(t, "none", strings.TrimSpace(out))

	out, err = run(t, "exists", "1", "2", "following")
	require.NoError(t, err)
	assert.Equal(t, "false", strings.TrimSpace(out))

	_, err = run(t, "exists", "1", "2", "unknown")
	assert.Error(t, err)

	_, err = run(t, "exists", "x", "2", "following")
	assert.Error(t, err)
}

func TestTokenIsValid(t *testing.T) {
	out, err := run(t, "token", "42", "--admin")
	require.NoError(t, err)

	svc := jwt.NewJWTService(config.JWTConfig{Secret: "relctl-test", Issuer: "relgraph"})
	claims, err := svc.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, jwt.RoleAdmin, claims.Data["role"])

	id, err := svc.UserIDFromToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)
}

func TestWatchRequiresNATS(t *testing.T) {
	_, err := run(t, "watch")
	assert.Error(t, err)
}

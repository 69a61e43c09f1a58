package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/rhdcoder/internal/rhd"
)

func TestTransform_EnvironmentPassphrase(t *testing.T) {
	t.Setenv("RHDCODER_PASSPHRASE", "k")

	out, _, err := execute(t, "", "transform", "encode", "AB")
	require.NoError(t, err)
	assert.Equal(t, "vgC+w=QQ\n", out)
}

func TestTransform_DecodeFromStdin(t *testing.T) {
	t.Setenv("RHDCODER_PASSPHRASE", "k")

	out, _, err := execute(t, "vgC+w=QQ\n", "transform", "decode", "-")
	require.NoError(t, err)
	assert.Equal(t, "AB\n", out)
}

func TestTransform_ConfigPassphraseJSON(t *testing.T) {
	env := newTestEnv(t)

	out, _, err := execute(t, "", "-c", env.config, "--format", "json", "transform", "encode", "Grüße")
	require.NoError(t, err)

	var resp struct {
		Status string          `json:"status"`
		Data   TransformResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "encode", resp.Data.Direction)
	assert.Equal(t, rhd.PolicyStrict, resp.Data.Policy)

	plain, err := rhd.Decode(resp.Data.Output, testPassphrase, rhd.PolicyStrict)
	require.NoError(t, err)
	assert.Equal(t, "Grüße", plain)
}

func TestTransform_StrictRejects(t *testing.T) {
	t.Setenv("RHDCODER_PASSPHRASE", "k")

	out, _, err := execute(t, "", "transform", "encode", "price: 5€")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "Error [E006]")
}

func TestTransform_ReplacePolicy(t *testing.T) {
	t.Setenv("RHDCODER_PASSPHRASE", "k")

	out, _, err := execute(t, "", "transform", "encode", "5€", "--policy", "replace")
	require.NoError(t, err)

	plain, err := rhd.Decode(out[:len(out)-1], "k", rhd.PolicyStrict)
	require.NoError(t, err)
	assert.Equal(t, "5?", plain)
}

func TestTransform_MalformedDecode(t *testing.T) {
	t.Setenv("RHDCODER_PASSPHRASE", "k")

	_, _, err := execute(t, "", "transform", "decode", "not radix64!")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}

func TestTransform_UnknownDirection(t *testing.T) {
	_, _, err := execute(t, "", "transform", "rot13", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTransform_ExplicitMissingConfig(t *testing.T) {
	t.Setenv("RHDCODER_PASSPHRASE", "k")

	_, _, err := execute(t, "", "-c", filepath.Join(t.TempDir(), "absent.yaml"), "transform", "encode", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestTransform_NoPassphrase(t *testing.T) {
	t.Setenv("RHDCODER_PASSPHRASE", "")

	_, _, err := execute(t, "", "transform", "encode", "x")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

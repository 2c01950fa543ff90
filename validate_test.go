package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	err := rootCmd.Execute()
	return out.String(), err
}

func TestValidateBundledDocument(t *testing.T) {
	out, err := runCLI(t, "validate", "Portfolio.json")
	require.NoError(t, err)
	assert.Contains(t, out, "Portfolio.json: ok")
	assert.Contains(t, out, "4 skills")
}

func TestValidateReportsProblems(t *testing.T) {
	data, err := os.ReadFile("Portfolio.json")
	require.NoError(t, err)
	broken := strings.Replace(string(data), `"contact"`, `"kontact"`, 1)
	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte(broken), 0o644))

	_, err = runCLI(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "malformed")

	noPhone := strings.Replace(string(data), `"phone": "+1 555 0100",`, ``, 1)
	require.NoError(t, os.WriteFile(path, []byte(noPhone), 0o644))

	out, err := runCLI(t, "validate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 problem(s)")
	assert.Contains(t, out, "contact.phone: required")
}

func TestValidateMissingFile(t *testing.T) {
	_, err := runCLI(t, "validate", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch portfolio document")
}

func TestStatsRequiresVisitsDB(t *testing.T) {
	t.Setenv("VISITS_DB", "")
	_, err := runCLI(t, "stats")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "VISITS_DB")
}

func TestStatsReadsVisitLog(t *testing.T) {
	t.Setenv("VISITS_DB", filepath.Join(t.TempDir(), "visits.db"))
	out, err := runCLI(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "total visits:     0")
}

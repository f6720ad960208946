package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rolefit/internal/config"
	"rolefit/internal/errors"
)

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			DefaultFormat:    "text",
			SupportedFormats: []string{"json", "text", "markdown"},
			MaxFileSize:      1 << 20,
		},
		Taxonomy: config.TaxonomyConfig{MatchStrategy: "substring"},
		History:  config.HistoryConfig{Enabled: true, Backend: "memory", MaxEntries: 10},
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(withDependencies(context.Background(), cfg, errors.Nop()))
	return out.String(), err
}

func writeResume(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := errors.As(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestAnalyzeText(t *testing.T) {
	resume := writeResume(t, "resume.txt", "Embedded C and RTOS on microcontrollers")

	out, err := run(t, testConfig(), "analyze", "--branch", "Electronics", "--role", "Embedded Engineer", resume)
	require.NoError(t, err)
	assert.Contains(t, out, "=== ROLE FIT ANALYSIS ===")
	assert.Contains(t, out, "Score: 60/100")
	assert.Contains(t, out, "Level: Medium")
}

func TestAnalyzeJSONToFile(t *testing.T) {
	resume := writeResume(t, "resume.md", "# Skills\n\nPython, Java, git, SQL, OOP, algorithms and data structures")
	outFile := filepath.Join(t.TempDir(), "reports", "fit.json")

	out, err := run(t, testConfig(), "analyze", "-b", "computer science", "-r", "software engineer",
		"--format", "json", "-o", outFile, resume)
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"level": "Strong"`)
	assert.Contains(t, string(data), `"score": 100`)
	assert.Contains(t, string(data), `"role": "Software Engineer"`)
}

func TestAnalyzeErrors(t *testing.T) {
	resume := writeResume(t, "resume.txt", "python")

	_, err := run(t, testConfig(), "analyze", "--branch", "Law", "--role", "Paralegal", resume)
	requireCode(t, err, errors.ErrCodeUnknownBranch)

	_, err = run(t, testConfig(), "analyze", "--branch", "Electronics", "--role", "Chef", resume)
	requireCode(t, err, errors.ErrCodeUnknownRole)

	blank := writeResume(t, "blank.txt", "  ***  ")
	_, err = run(t, testConfig(), "analyze", "--branch", "Electronics", "--role", "Embedded Engineer", blank)
	requireCode(t, err, errors.ErrCodeEmptyResumeText)

	_, err = run(t, testConfig(), "analyze", "--branch", "Electronics", "--role", "Embedded Engineer", "--format", "yaml", resume)
	requireCode(t, err, errors.ErrCodeInvalidFormat)

	_, err = run(t, testConfig(), "analyze", "--branch", "Electronics", "--role", "Embedded Engineer",
		filepath.Join(t.TempDir(), "missing.txt"))
	requireCode(t, err, errors.ErrCodeFileNotFound)

	_, err = run(t, testConfig(), "analyze", "--role", "Embedded Engineer", resume)
	assert.ErrorContains(t, err, `required flag(s) "branch" not set`)
}

func TestTaxonomyCommands(t *testing.T) {
	out, err := run(t, testConfig(), "branches")
	require.NoError(t, err)
	assert.Equal(t, "Computer Science\nElectronics\n", out)

	out, err = run(t, testConfig(), "roles", "Computer Science", "--format", "markdown")
	require.NoError(t, err)
	assert.Equal(t, "## Roles in Computer Science\n\n- Software Engineer\n- Data Scientist\n", out)

	out, err = run(t, testConfig(), "skills", "electronics", "embedded engineer")
	require.NoError(t, err)
	assert.Equal(t, "c\nc++\nmicrocontrollers\nembedded systems\nrtos\n", out)

	_, err = run(t, testConfig(), "roles", "Law")
	requireCode(t, err, errors.ErrCodeUnknownBranch)
}

func TestSaveAndListHistory(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.History.Backend = "redis"
	cfg.History.Redis = config.RedisConfig{Address: mr.Addr(), KeyPrefix: "cli:"}

	resume := writeResume(t, "resume.txt", "python and sql")
	_, err := run(t, cfg, "analyze", "-b", "Computer Science", "-r", "Data Scientist", "--save-as", "alice", "--format", "json", resume)
	require.NoError(t, err)

	out, err := run(t, cfg, "history", "alice")
	require.NoError(t, err)
	assert.Contains(t, out, "Data Scientist")
	assert.True(t, mr.Exists("cli:history:alice"))

	out, err = run(t, cfg, "history", "nobody")
	require.NoError(t, err)
	assert.Equal(t, "No analyses recorded.\n", out)
}

func TestHistoryHandlesAreCaseInsensitive(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testConfig()
	cfg.History.Backend = "redis"
	cfg.History.Redis = config.RedisConfig{Address: mr.Addr(), KeyPrefix: "cli:"}

	resume := writeResume(t, "resume.txt", "python and sql")
	out, err := run(t, cfg, "analyze", "-b", "Computer Science", "-r", "Data Scientist", "--save-as", " Alice ", "--format", "json", resume)
	require.NoError(t, err)
	assert.Contains(t, out, `"owner": "alice"`)
	assert.True(t, mr.Exists("cli:history:alice"))
	assert.False(t, mr.Exists("cli:history:Alice"))

	out, err = run(t, cfg, "history", "ALICE", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "Data Scientist")
}

func TestSaveAsRequiresHistory(t *testing.T) {
	cfg := testConfig()
	cfg.History.Enabled = false
	resume := writeResume(t, "resume.txt", "python")

	_, err := run(t, cfg, "analyze", "-b", "Computer Science", "-r", "Data Scientist", "--save-as", "alice", resume)
	requireCode(t, err, errors.ErrCodeInvalidConfig)

	_, err = run(t, cfg, "history", "alice")
	requireCode(t, err, errors.ErrCodeInvalidConfig)
}

func TestVersion(t *testing.T) {
	out, err := run(t, testConfig(), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "rolefit version dev")
}

func TestMissingConfig(t *testing.T) {
	root := NewRootCmd()
	root.SetArgs([]string{"branches"})
	root.SetOut(&bytes.Buffer{})
	err := root.ExecuteContext(context.Background())
	assert.ErrorContains(t, err, "config not found in context")
}

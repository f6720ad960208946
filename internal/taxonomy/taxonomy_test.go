package taxonomy

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "rolefit/internal/errors"
)

func TestDefaultTaxonomy(t *testing.T) {
	tax := Default()

	assert.Equal(t, []string{"Computer Science", "Electronics"}, tax.ListBranches())

	roles, err := tax.ListRoles("Computer Science")
	require.NoError(t, err)
	assert.Equal(t, []string{"Software Engineer", "Data Scientist"}, roles)

	skills, err := tax.RequiredSkills("Computer Science", "Software Engineer")
	require.NoError(t, err)
	assert.Equal(t, []string{"python", "java", "data structures", "algorithms", "git", "sql", "oop"}, skills)

	skills, err = tax.RequiredSkills("Electronics", "Embedded Engineer")
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "c++", "microcontrollers", "embedded systems", "rtos"}, skills)
}

func TestLookupErrors(t *testing.T) {
	tax := Default()

	tests := []struct {
		name     string
		branch   string
		role     string
		sentinel error
		code     string
	}{
		{"unknown branch", "Physics", "Physicist", ErrUnknownBranch, apperrors.ErrCodeUnknownBranch},
		{"unknown role", "Computer Science", "Embedded Engineer", ErrUnknownRole, apperrors.ErrCodeUnknownRole},
		{"empty role", "Electronics", "", ErrUnknownRole, apperrors.ErrCodeUnknownRole},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skills, err := tax.RequiredSkills(tt.branch, tt.role)
			require.Error(t, err)
			assert.Nil(t, skills)
			assert.ErrorIs(t, err, tt.sentinel)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, tt.code, appErr.Code)
		})
	}

	_, err := tax.ListRoles("Mechanical")
	assert.ErrorIs(t, err, ErrUnknownBranch)
}

func TestLookupIsCaseInsensitive(t *testing.T) {
	tax := Default()

	p, err := tax.Profile("  computer science ", "SOFTWARE ENGINEER")
	require.NoError(t, err)
	assert.Equal(t, "Computer Science", p.Branch)
	assert.Equal(t, "Software Engineer", p.Role)
}

func TestAccessorsReturnCopies(t *testing.T) {
	tax := Default()

	skills, err := tax.RequiredSkills("Computer Science", "Software Engineer")
	require.NoError(t, err)
	skills[0] = "cobol"

	branches := tax.ListBranches()
	branches[0] = "Astrology"

	again, err := tax.RequiredSkills("Computer Science", "Software Engineer")
	require.NoError(t, err)
	assert.Equal(t, "python", again[0])
	assert.Equal(t, "Computer Science", tax.ListBranches()[0])
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name string
		def  Definition
	}{
		{"no branches", Definition{}},
		{"empty branch name", Definition{Branches: []BranchDef{{Name: " ", Roles: []RoleDef{{Name: "R", Skills: []string{"go"}}}}}}},
		{"branch without roles", Definition{Branches: []BranchDef{{Name: "B"}}}},
		{"empty role name", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "", Skills: []string{"go"}}}}}}},
		{"role without skills", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "R"}}}}}},
		{"blank skill", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "R", Skills: []string{"go", "  "}}}}}}},
		{"skill with inner double space", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "R", Skills: []string{"data  structures"}}}}}}},
		{"skill with parentheses", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "R", Skills: []string{"c++ (modern)"}}}}}}},
		{"skill with underscore", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "R", Skills: []string{"node_js"}}}}}}},
		{"skill with trailing punctuation", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "R", Skills: []string{"ux/ui!"}}}}}}},
		{"symbol-only skill", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "R", Skills: []string{"!!"}}}}}}},
		{"duplicate skill", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{{Name: "R", Skills: []string{"go", "Go "}}}}}}},
		{"duplicate role", Definition{Branches: []BranchDef{{Name: "B", Roles: []RoleDef{
			{Name: "R", Skills: []string{"go"}},
			{Name: "r", Skills: []string{"rust"}},
		}}}}},
		{"duplicate branch", Definition{Branches: []BranchDef{
			{Name: "B", Roles: []RoleDef{{Name: "R", Skills: []string{"go"}}}},
			{Name: "B", Roles: []RoleDef{{Name: "S", Skills: []string{"go"}}}},
		}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tax, err := New(tt.def)
			assert.Nil(t, tax)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidEntry)

			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrCodeInvalidTaxonomyEntry, appErr.Code)
		})
	}
}

func TestNewNormalizesTokens(t *testing.T) {
	tax, err := New(Definition{Branches: []BranchDef{{
		Name:  " Mechanical ",
		Roles: []RoleDef{{Name: " Quality Engineer ", Skills: []string{" Six Sigma", "GD&T "}}},
	}}})
	require.NoError(t, err)

	skills, err := tax.RequiredSkills("Mechanical", "Quality Engineer")
	require.NoError(t, err)
	assert.Equal(t, []string{"six sigma", "gd&t"}, skills)
}

func TestMustNewPanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustNew(Definition{}) })
}

const sampleYAML = `
branches:
  - name: Mechanical
    roles:
      - name: Quality Engineer
        skills: [six sigma, gd&t, cad]
  - name: Computer Science
    roles:
      - name: Backend Engineer
        skills: [go, sql, docker]
`

func TestParseYAML(t *testing.T) {
	tax, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, []string{"Mechanical", "Computer Science"}, tax.ListBranches())
	skills, err := tax.RequiredSkills("Computer Science", "Backend Engineer")
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "sql", "docker"}, skills)
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("branches:\n  - name: B\n    rolez: []\n"))
	require.Error(t, err)
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInvalidFormat, appErr.Code)
}

func TestMarshalRoundTripsDefault(t *testing.T) {
	data, err := Marshal(Default())
	require.NoError(t, err)

	tax, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default().Definition(), tax.Definition())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	tax, err := LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, tax.ListBranches(), 2)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeFileNotFound, appErr.Code)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("branches:\n  - name: B\n    roles:\n      - name: R\n        skills: []\n"), 0o600))
	_, err = LoadFile(bad)
	assert.ErrorIs(t, err, ErrInvalidEntry)
}

func TestHolderSwap(t *testing.T) {
	first := Default()
	h := NewHolder(first)
	assert.Same(t, first, h.Current())

	second, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	prev := h.Swap(second)
	assert.Same(t, first, prev)
	assert.Same(t, second, h.Current())

	h.Swap(nil)
	assert.Same(t, second, h.Current())
}

func TestHolderConcurrentReaders(t *testing.T) {
	h := NewHolder(Default())
	alt, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				assert.NotEmpty(t, h.Current().ListBranches())
			}
		}()
	}
	for i := 0; i < 50; i++ {
		if i%2 == 0 {
			h.Swap(alt)
		} else {
			h.Swap(Default())
		}
	}
	wg.Wait()
}

func TestWatcherReloadsOnChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	data, err := Marshal(Default())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	initial, err := LoadFile(path)
	require.NoError(t, err)
	holder := NewHolder(initial)

	w := NewWatcher(path, holder, 20*time.Millisecond, nil, nil)
	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	assert.Error(t, w.Start())

	tmp := filepath.Join(dir, "taxonomy.yaml.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte(sampleYAML), 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(tmp, future, future))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		return holder.Current().ListBranches()[0] == "Mechanical"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherRestartsAfterStop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	data, err := Marshal(Default())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	holder := NewHolder(Default())
	w := NewWatcher(path, holder, 20*time.Millisecond, nil, nil)

	require.NoError(t, w.Start())
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())

	require.NoError(t, w.Start())
	t.Cleanup(func() { _ = w.Stop() })

	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))
	future := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, future, future))

	require.Eventually(t, func() bool {
		return holder.Current().ListBranches()[0] == "Mechanical"
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWatcherLogsEachReloadOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	var logs bytes.Buffer
	calls := 0
	w := NewWatcher(path, NewHolder(Default()), 0, func(_ *Taxonomy, err error) {
		require.NoError(t, err)
		calls++
	}, apperrors.NewLoggerTo(&logs, slog.LevelInfo))

	require.NoError(t, w.Reload())
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, strings.Count(logs.String(), "Taxonomy reloaded"))
}

func TestWatcherKeepsPreviousOnInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "taxonomy.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o600))

	initial, err := LoadFile(path)
	require.NoError(t, err)
	holder := NewHolder(initial)

	var got error
	w := NewWatcher(path, holder, 0, func(_ *Taxonomy, err error) { got = err }, nil)

	require.NoError(t, os.WriteFile(path, []byte("branches: []\n"), 0o600))
	err = w.Reload()
	assert.ErrorIs(t, err, ErrInvalidEntry)
	assert.ErrorIs(t, got, ErrInvalidEntry)
	assert.Same(t, initial, holder.Current())
}

func BenchmarkRequiredSkills(b *testing.B) {
	tax := Default()
	for b.Loop() {
		_, _ = tax.RequiredSkills("Computer Science", "Data Scientist")
	}
}

package migration

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/erp/invoicing/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add cheque index", "add_cheque_index"},
		{"Add-Cheque-Index", "add_cheque_index"},
		{"ADD_CHEQUE_INDEX", "add_cheque_index"},
		{"add__cheque__index", "add_cheque_index"},
		{"Add Returns 2", "add_returns_2"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration_NumbersAfterExisting(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_create_invoices.up.sql"), []byte("--"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "000004_create_invoices.down.sql"), []byte("--"), 0o644))

	mf, err := CreateMigration(dir, "add cheque index", "Index cheque_date for the sweep")
	require.NoError(t, err)
	assert.Equal(t, uint(5), mf.Version)
	assert.Equal(t, "000005_add_cheque_index.up.sql", filepath.Base(mf.UpPath))
	assert.Equal(t, "000005_add_cheque_index.down.sql", filepath.Base(mf.DownPath))

	up, err := os.ReadFile(mf.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "add_cheque_index")
	assert.Contains(t, string(up), "Index cheque_date for the sweep")

	down, err := os.ReadFile(mf.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "Rollback of add_cheque_index")
}

func TestCreateMigration_EmptyDirectoryStartsAtOne(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "fresh")

	mf, err := CreateMigration(dir, "init", "")
	require.NoError(t, err)
	assert.Equal(t, uint(1), mf.Version)
	assert.True(t, strings.HasPrefix(filepath.Base(mf.UpPath), "000001_init"))
}

func TestCreateMigration_RejectsUnusableName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.Error(t, err)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"000002_b.up.sql":   {Data: []byte("--")},
		"000001_a.up.sql":   {Data: []byte("--")},
		"000001_a.down.sql": {Data: []byte("--")},
		"README.md":         {Data: []byte("notes")},
		"embed.go":          {Data: []byte("package migrations")},
	}

	list, err := ListMigrations(fsys)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, Info{Version: 1, Name: "a", HasUp: true, HasDown: true}, list[0])
	assert.Equal(t, uint(2), list[1].Version)
	assert.False(t, list[1].Complete())
}

func TestListMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"000001_a.up.sql": {Data: []byte("--")},
		"000001_b.up.sql": {Data: []byte("--")},
	}
	_, err := ListMigrations(fsys)
	assert.Error(t, err)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	list, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "absent")))
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEmbeddedMigrations_AreCompleteAndCoverModels(t *testing.T) {
	list, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, list)
	for i, info := range list {
		assert.Equal(t, uint(i+1), info.Version, "versions must be contiguous")
		assert.True(t, info.Complete(), "migration %d lacks a direction", info.Version)
	}

	schema, err := upSQL()
	require.NoError(t, err)
	for _, m := range models.All() {
		table := m.(interface{ TableName() string }).TableName()
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (", "no migration creates %s", table)
	}
}

// upSQL concatenates every embedded up migration
func upSQL() (string, error) {
	entries, err := migrations.FS.ReadDir(".")
	if err != nil {
		return "", err
	}
	var out strings.Builder
	for _, e := range entries {
		if !strings.HasSuffix(e.Name(), ".up.sql") {
			continue
		}
		data, err := migrations.FS.ReadFile(e.Name())
		if err != nil {
			return "", err
		}
		out.Write(data)
	}
	return out.String(), nil
}

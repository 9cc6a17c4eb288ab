package pathutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "export.csv")
	require.NoError(t, os.WriteFile(file, []byte("Category,Impact\n"), 0600))

	got, err := ValidateInputPath(file)
	require.NoError(t, err)
	assert.Equal(t, file, got)

	_, err = ValidateInputPath(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)

	_, err = ValidateInputPath(dir)
	assert.Error(t, err, "directories are not valid input files")
}

func TestValidateConfigPath(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		wantErr bool
	}{
		{name: "yaml extension", path: "client.yaml", wantErr: false},
		{name: "yml extension", path: "client.yml", wantErr: false},
		{name: "wrong extension", path: "client.json", wantErr: true},
		{name: "traversal", path: "../../etc/passwd.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateConfigPath(tt.path)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDataPath(t *testing.T) {
	dir := t.TempDir()

	inside := filepath.Join(dir, "jobs", "2026-01-02-150405")
	got, err := ValidateDataPath(inside, dir)
	require.NoError(t, err)
	assert.Equal(t, inside, got)

	_, err = ValidateDataPath("/tmp/elsewhere", dir)
	assert.Error(t, err)

	// No base directory restriction.
	got, err = ValidateDataPath(inside, "")
	require.NoError(t, err)
	assert.Equal(t, inside, got)
}

func TestJoinAndValidate(t *testing.T) {
	dir := t.TempDir()

	got, err := JoinAndValidate(dir, "jobs", "report.json")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "jobs", "report.json"), got)

	_, err = JoinAndValidate(dir, "..", "escape.json")
	assert.Error(t, err)
}

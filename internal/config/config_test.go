package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "weeder.yaml")
	content := `cutoffyear: "1999"
maxbatchsize: 100
httptimeout: 5s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "1999", cfg.CutoffYear)
	assert.Equal(t, 100, cfg.MaxBatchSize)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	// untouched values keep their defaults
	assert.Equal(t, 20, cfg.MinGroupSize)
	assert.Equal(t, "FDSA Shelves", cfg.EligibleShelf)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "two digit year", mutate: func(c *Config) { c.CutoffYear = "99" }, wantErr: true},
		{name: "zero max batch", mutate: func(c *Config) { c.MaxBatchSize = 0 }, wantErr: true},
		{name: "distinct below enumerate", mutate: func(c *Config) { c.DistinctCap = 2 }, wantErr: true},
		{name: "parquet format", mutate: func(c *Config) { c.Format = "parquet" }},
		{name: "csv format", mutate: func(c *Config) { c.Format = "csv" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadCredentials(t *testing.T) {
	t.Run("environment", func(t *testing.T) {
		t.Setenv("WORLDCAT_CLIENT_ID", "id")
		t.Setenv("WORLDCAT_CLIENT_SECRET", "secret")

		creds, err := LoadCredentials("")
		require.NoError(t, err)
		assert.Equal(t, Credentials{ClientID: "id", ClientSecret: "secret"}, creds)
	})

	t.Run("credentials file", func(t *testing.T) {
		t.Setenv("WORLDCAT_CLIENT_ID", "")
		t.Setenv("WORLDCAT_CLIENT_SECRET", "")
		path := filepath.Join(t.TempDir(), "credentials.dat")
		require.NoError(t, os.WriteFile(path, []byte("file-id\nfile-secret\n"), 0600))

		creds, err := LoadCredentials(path)
		require.NoError(t, err)
		assert.Equal(t, "file-id", creds.ClientID)
		assert.Equal(t, "file-secret", creds.ClientSecret)
	})

	t.Run("short file", func(t *testing.T) {
		t.Setenv("WORLDCAT_CLIENT_ID", "")
		t.Setenv("WORLDCAT_CLIENT_SECRET", "")
		path := filepath.Join(t.TempDir(), "credentials.dat")
		require.NoError(t, os.WriteFile(path, []byte("only-id\n"), 0600))

		_, err := LoadCredentials(path)
		assert.Error(t, err)
	})
}

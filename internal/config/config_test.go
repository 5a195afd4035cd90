package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SERVER_PORT", "")
	t.Setenv("MAX_ROWS", "")
	t.Setenv("DATABASE_URL", "")

	cfg := Load()

	assert.Equal(t, "5000", cfg.Server.Port)
	assert.Equal(t, 5000, cfg.Ingest.MaxRows)
	assert.Equal(t, int64(10<<20), cfg.Ingest.MaxUploadBytes)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, 60*time.Second, cfg.Ingest.PipelineTimeout)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("MAX_ROWS", "10")
	t.Setenv("LOOKUP_RPS", "2.5")
	t.Setenv("PIPELINE_TIMEOUT", "5s")

	cfg := Load()

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 10, cfg.Ingest.MaxRows)
	assert.Equal(t, 2.5, cfg.Ingest.LookupRPS)
	assert.Equal(t, 5*time.Second, cfg.Ingest.PipelineTimeout)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("MAX_ROWS", "many")
	t.Setenv("PIPELINE_TIMEOUT", "soon")
	t.Setenv("MAX_UPLOAD_BYTES", "big")

	cfg := Load()

	assert.Equal(t, 5000, cfg.Ingest.MaxRows)
	assert.Equal(t, 60*time.Second, cfg.Ingest.PipelineTimeout)
	assert.Equal(t, int64(10<<20), cfg.Ingest.MaxUploadBytes)
}

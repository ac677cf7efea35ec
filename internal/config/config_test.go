package config

import "testing"

// Load registers flags on the global FlagSet, so it runs once per binary.
func TestLoad(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("APP_ENV", "test")
	t.Setenv("LLM_BACKEND", "fake")
	t.Setenv("LLM_RETRY_ATTEMPTS", "3")
	t.Setenv("RESULT_CACHE_DIR", "/tmp/results")
	t.Setenv("ARCHIVE_S3_ENDPOINT", "minio:9000")
	t.Setenv("ARCHIVE_S3_USE_SSL", "false")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Port != ":8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.Env != "test" {
		t.Errorf("Env = %q", cfg.Env)
	}
	if cfg.LLM.Backend != "fake" || cfg.LLM.RetryAttempts != 3 {
		t.Errorf("LLM = %+v", cfg.LLM)
	}
	if cfg.Cache.ResultsDir != "/tmp/results" {
		t.Errorf("ResultsDir = %q", cfg.Cache.ResultsDir)
	}
	if !cfg.Archive.Enabled || cfg.Archive.Endpoint != "minio:9000" || cfg.Archive.UseSSL {
		t.Errorf("Archive = %+v", cfg.Archive)
	}
	if cfg.Archive.Bucket != "vantage-syllabi" {
		t.Errorf("Bucket = %q", cfg.Archive.Bucket)
	}
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("SOME_INT", "not a number")
	if got := envInt("SOME_INT", 7); got != 7 {
		t.Errorf("envInt = %d", got)
	}
	t.Setenv("SOME_BOOL", "nope")
	if got := envBool("SOME_BOOL", true); got != true {
		t.Errorf("envBool = %v", got)
	}
	if got := firstNonEmpty("", "  ", "x", "y"); got != "x" {
		t.Errorf("firstNonEmpty = %q", got)
	}
}

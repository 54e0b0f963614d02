package config

import "testing"

func TestValidate_InvalidFilenameMode(t *testing.T) {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8750},
		Engine: EngineConfig{FilenameMode: "glob"},
	}
	cfg.ApplyDefaults()

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for invalid filename mode")
	}

	expected := `engine.filename_mode must be "pattern" or "regex", got "glob"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ValidFilenameModes(t *testing.T) {
	for _, mode := range []string{"pattern", "regex"} {
		t.Run("mode="+mode, func(t *testing.T) {
			cfg := Config{
				HTTP:   HTTPConfig{Port: 8750},
				Engine: EngineConfig{FilenameMode: mode},
			}
			cfg.ApplyDefaults()

			if err := cfg.Validate(); err != nil {
				t.Fatalf("unexpected error for valid mode %q: %v", mode, err)
			}
		})
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{HTTP: HTTPConfig{Port: 70000}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_BadFilenamePattern(t *testing.T) {
	cfg := Config{Engine: EngineConfig{FilenamePattern: "_(\\d{8}"}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unbalanced filename pattern")
	}
}

func TestValidate_PageSizeAboveMax(t *testing.T) {
	cfg := Config{Pagination: PaginationConfig{DefaultPageSize: 50, MaxPageSize: 20}}
	cfg.ApplyDefaults()

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when default page size exceeds max")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8750 {
		t.Errorf("expected Port=8750, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.Engine.DataPath != "./data" {
		t.Errorf("expected DataPath='./data', got %q", cfg.Engine.DataPath)
	}
	if cfg.Engine.Workers != 4 {
		t.Errorf("expected Workers=4, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.DefaultCollection != "main" {
		t.Errorf("expected DefaultCollection='main', got %q", cfg.Engine.DefaultCollection)
	}
	if cfg.Engine.FilenameMode != "pattern" {
		t.Errorf("expected FilenameMode='pattern', got %q", cfg.Engine.FilenameMode)
	}
	if cfg.Engine.HeaderSample != 3 {
		t.Errorf("expected HeaderSample=3, got %d", cfg.Engine.HeaderSample)
	}
	if cfg.Pagination.DefaultPageSize != 10 {
		t.Errorf("expected DefaultPageSize=10, got %d", cfg.Pagination.DefaultPageSize)
	}
	if cfg.Pagination.MaxPageSize != 1000 {
		t.Errorf("expected MaxPageSize=1000, got %d", cfg.Pagination.MaxPageSize)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:       HTTPConfig{Port: 9000, ReadTimeoutSec: 30},
		Engine:     EngineConfig{DataPath: "/data", Workers: 8, FilenameMode: "regex"},
		Pagination: PaginationConfig{DefaultPage: 2, DefaultPageSize: 50},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 {
		t.Errorf("expected Port=9000, got %d", cfg.HTTP.Port)
	}
	if cfg.Engine.DataPath != "/data" {
		t.Errorf("expected DataPath='/data', got %q", cfg.Engine.DataPath)
	}
	if cfg.Engine.Workers != 8 {
		t.Errorf("expected Workers=8, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.FilenameMode != "regex" {
		t.Errorf("expected FilenameMode='regex', got %q", cfg.Engine.FilenameMode)
	}
	if cfg.Pagination.DefaultPage != 2 {
		t.Errorf("expected DefaultPage=2, got %d", cfg.Pagination.DefaultPage)
	}
}

func TestParse_ExpandsEnvVars(t *testing.T) {
	t.Setenv("ZENITHDS_TEST_WORKERS", "6")

	cfg, err := Parse([]byte(`
http:
  port: ${ZENITHDS_TEST_PORT:-8123}
engine:
  workers: ${ZENITHDS_TEST_WORKERS}
  data_path: ${ZENITHDS_TEST_UNSET:-/srv/data}
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTP.Port != 8123 {
		t.Errorf("expected Port=8123, got %d", cfg.HTTP.Port)
	}
	if cfg.Engine.Workers != 6 {
		t.Errorf("expected Workers=6, got %d", cfg.Engine.Workers)
	}
	if cfg.Engine.DataPath != "/srv/data" {
		t.Errorf("expected DataPath='/srv/data', got %q", cfg.Engine.DataPath)
	}
}

package config

import (
	stderrors "errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vango-dev/reactive/internal/errors"
	"github.com/vango-dev/reactive/pkg/observer"
)

func TestNew(t *testing.T) {
	cfg := New()

	if cfg.Devtools.Addr != DefaultDevtoolsAddr {
		t.Errorf("Devtools.Addr = %q, want %q", cfg.Devtools.Addr, DefaultDevtoolsAddr)
	}
	if cfg.Metrics.Namespace != DefaultMetricsNamespace {
		t.Errorf("Metrics.Namespace = %q, want %q", cfg.Metrics.Namespace, DefaultMetricsNamespace)
	}
	if cfg.Snapshot.Backend != BackendDisk {
		t.Errorf("Snapshot.Backend = %q, want %q", cfg.Snapshot.Backend, BackendDisk)
	}
	if cfg.Augment != "delegate" {
		t.Errorf("Augment = %q, want delegate", cfg.Augment)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q, want empty", cfg.Path())
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, ConfigFileName)
	configJSON := `{
  "production": true,
  "sortedNotify": true,
  "augment": "copy",
  "logLevel": "debug",
  "devtools": {
    "addr": ":9000"
  },
  "snapshot": {
    "backend": "s3",
    "s3": {
      "bucket": "snaps",
      "region": "eu-west-1",
      "usePathStyle": true
    }
  }
}
`
	if err := os.WriteFile(configPath, []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if !cfg.Production || !cfg.SortedNotify {
		t.Errorf("Production = %v, SortedNotify = %v", cfg.Production, cfg.SortedNotify)
	}
	if cfg.Augment != "copy" {
		t.Errorf("Augment = %q, want copy", cfg.Augment)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
	if cfg.Devtools.Addr != ":9000" {
		t.Errorf("Devtools.Addr = %q", cfg.Devtools.Addr)
	}
	if cfg.Snapshot.S3.Bucket != "snaps" || !cfg.Snapshot.S3.UsePathStyle {
		t.Errorf("Snapshot.S3 = %+v", cfg.Snapshot.S3)
	}
	if cfg.Snapshot.Dir != DefaultSnapshotDir {
		t.Errorf("Snapshot.Dir = %q, want default", cfg.Snapshot.Dir)
	}
	if cfg.Path() != configPath {
		t.Errorf("Path() = %q, want %q", cfg.Path(), configPath)
	}
}

func TestLoadFileErrors(t *testing.T) {
	tmpDir := t.TempDir()

	_, err := LoadFile(filepath.Join(tmpDir, ConfigFileName))
	var re *errors.ReactiveError
	if !stderrors.As(err, &re) || re.Code != "C201" {
		t.Errorf("missing file: err = %v, want C201", err)
	}

	bad := filepath.Join(tmpDir, "bad.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err = LoadFile(bad)
	if !stderrors.As(err, &re) || re.Code != "C201" {
		t.Errorf("bad json: err = %v, want C201", err)
	}
	if !strings.Contains(re.Detail, "Failed to parse") {
		t.Errorf("Detail = %q", re.Detail)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("REACTIVE_PRODUCTION", "true")
	t.Setenv("REACTIVE_AUGMENT", "copy")
	t.Setenv("REACTIVE_DEVTOOLS_ADDR", "0.0.0.0:8080")
	t.Setenv("REACTIVE_S3_BUCKET", "from-env")
	t.Setenv("REACTIVE_S3_SECRET_ACCESS_KEY", "secret")

	cfg := New()
	cfg.LogLevel = "warn"
	if err := cfg.ApplyEnv(); err != nil {
		t.Fatalf("ApplyEnv error: %v", err)
	}

	if !cfg.Production {
		t.Error("Production should come from the environment")
	}
	if cfg.Augment != "copy" || cfg.Devtools.Addr != "0.0.0.0:8080" {
		t.Errorf("Augment = %q, Devtools.Addr = %q", cfg.Augment, cfg.Devtools.Addr)
	}
	if cfg.Snapshot.S3.Bucket != "from-env" || cfg.Snapshot.S3.SecretAccessKey != "secret" {
		t.Errorf("Snapshot.S3 = %+v", cfg.Snapshot.S3)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("unset variables must not reset fields, LogLevel = %q", cfg.LogLevel)
	}
}

func TestApplyEnvInvalid(t *testing.T) {
	t.Setenv("REACTIVE_SORTED_NOTIFY", "sometimes")

	err := New().ApplyEnv()
	var re *errors.ReactiveError
	if !stderrors.As(err, &re) || re.Code != "C203" {
		t.Errorf("err = %v, want C203", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		valid  bool
	}{
		{name: "defaults", mutate: func(*Config) {}, valid: true},
		{name: "bad augment", mutate: func(c *Config) { c.Augment = "proxy" }},
		{name: "bad level", mutate: func(c *Config) { c.LogLevel = "loud" }},
		{name: "upper level", mutate: func(c *Config) { c.LogLevel = "WARN" }, valid: true},
		{name: "bad backend", mutate: func(c *Config) { c.Snapshot.Backend = "ftp" }},
		{name: "s3 without bucket", mutate: func(c *Config) { c.Snapshot.Backend = BackendS3 }},
		{name: "s3 with bucket", mutate: func(c *Config) {
			c.Snapshot.Backend = BackendS3
			c.Snapshot.S3.Bucket = "b"
		}, valid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := New()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.valid && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if !tt.valid {
				var re *errors.ReactiveError
				if !stderrors.As(err, &re) || re.Code != "C202" {
					t.Errorf("Validate() = %v, want C202", err)
				}
			}
		})
	}
}

func TestRuntimeOptions(t *testing.T) {
	cfg := New()
	cfg.Production = true
	cfg.Augment = "copy"

	rt := observer.New(cfg.RuntimeOptions()...)

	if !rt.Production() {
		t.Error("runtime should be in production mode")
	}
	a := observer.NewArray()
	rt.Observe(a)
	if observer.ObserverOf(a) == nil {
		t.Fatal("array should be observed")
	}
}

func TestSaveToRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := New()
	cfg.SortedNotify = true
	cfg.Snapshot.S3.SecretAccessKey = "secret"

	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "secret") {
		t.Error("credentials must not be written to the file")
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}
	if !loaded.SortedNotify {
		t.Error("SortedNotify lost on round trip")
	}
}

func TestLogger(t *testing.T) {
	cfg := New()
	cfg.LogLevel = "error"

	var buf strings.Builder
	logger := cfg.Logger(&buf)
	logger.Warn("hidden")
	logger.Error("shown")

	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Errorf("log output = %q", buf.String())
	}
}

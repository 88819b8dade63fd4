package config

import "testing"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"JIJI_SERVER_ID", "JIJI_ENGINE", "JIJI_INTERFACE", "JIJI_CORROSION_API",
		"JIJI_CORROSION_DIR", "JIJI_LOOP_INTERVAL", "JIJI_METRICS_ADDR",
		"JIJI_CONTAINERD_SOCK", "JIJI_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JIJI_SERVER_ID", "server-a")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine != EngineDocker {
		t.Errorf("Engine = %q, want docker", cfg.Engine)
	}
	if cfg.Interface != "jiji0" {
		t.Errorf("Interface = %q, want jiji0", cfg.Interface)
	}
	if cfg.LoopInterval != 30 {
		t.Errorf("LoopInterval = %d, want 30", cfg.LoopInterval)
	}
	if cfg.CorrosionAPI != "http://127.0.0.1:31220" {
		t.Errorf("CorrosionAPI = %q", cfg.CorrosionAPI)
	}
}

func TestLoadMissingServerID(t *testing.T) {
	clearEnv(t)
	if _, err := Load(); err == nil {
		t.Fatal("expected error for missing SERVER_ID")
	}
}

func TestLoadInvalidEngine(t *testing.T) {
	clearEnv(t)
	t.Setenv("JIJI_SERVER_ID", "server-a")
	t.Setenv("JIJI_ENGINE", "nonsense")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for invalid engine")
	}
}

func TestLoadInvalidLoopInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("JIJI_SERVER_ID", "server-a")
	t.Setenv("JIJI_LOOP_INTERVAL", "not-a-number")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for non-integer loop interval")
	}
}

func TestLoadZeroLoopInterval(t *testing.T) {
	clearEnv(t)
	t.Setenv("JIJI_SERVER_ID", "server-a")
	t.Setenv("JIJI_LOOP_INTERVAL", "0")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for zero loop interval")
	}
}

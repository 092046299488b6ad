package cfg

import (
	"testing"
)

func TestGetVersion(t *testing.T) {
	if GetVersion() == "" {
		t.Error("GetVersion should never return empty string")
	}
}

func TestGetPanicsWhenUnloaded(t *testing.T) {
	globalCfg = nil
	defer func() {
		if recover() == nil {
			t.Error("Get should panic before Load is called")
		}
	}()
	Get()
}

func TestCfgFields(t *testing.T) {
	minLewd := 2
	cfg := &Cfg{
		Output:    "./archive",
		UserAgent: "Test Agent",
		Debug:     true,
		AllowR18:  true,
		MinLewd:   &minLewd,
		Command:   "mirror",
		Mirror:    &MirrorCmd{Full: true},
	}

	if cfg.Output != "./archive" {
		t.Errorf("Expected output './archive', got '%s'", cfg.Output)
	}
	if cfg.UserAgent != "Test Agent" {
		t.Errorf("Expected user agent 'Test Agent', got '%s'", cfg.UserAgent)
	}
	if !cfg.AllowR18 {
		t.Error("Expected AllowR18 true")
	}
	if cfg.MinLewd == nil || *cfg.MinLewd != 2 {
		t.Errorf("Expected MinLewd 2, got %v", cfg.MinLewd)
	}
	if cfg.Command != "mirror" || cfg.Mirror == nil || !cfg.Mirror.Full {
		t.Errorf("Unexpected command state: %+v", cfg)
	}
}

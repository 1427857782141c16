package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/user-none/go-dramsim/dram"
)

func writeTestConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.ini")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeTestConfig(t, "[dram_structure]\nprotocol=DDR4\n")
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Protocol != dram.DDR4 {
		t.Errorf("Protocol = %v, want DDR4", p.Protocol)
	}
	if p.Channels != 1 || p.Ranks != 1 {
		t.Errorf("expected channel/rank defaults of 1, got channels=%d ranks=%d", p.Channels, p.Ranks)
	}
	if len(p.AddressMapping) != 12 {
		t.Errorf("default address_mapping should be 12 characters, got %q", p.AddressMapping)
	}
}

func TestLoadRejectsUnknownProtocol(t *testing.T) {
	path := writeTestConfig(t, "[dram_structure]\nprotocol=NOT_A_PROTOCOL\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error for an unknown protocol")
	}
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeTestConfig(t, `
[dram_structure]
protocol=GDDR5X

[system]
channels=4
queue_size=32
`)
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Protocol != dram.GDDR5X {
		t.Errorf("Protocol = %v, want GDDR5X", p.Protocol)
	}
	if p.Channels != 4 {
		t.Errorf("Channels = %d, want 4", p.Channels)
	}
	if p.QueueSize != 32 {
		t.Errorf("QueueSize = %d, want 32", p.QueueSize)
	}
}

// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestStoreLoadReturnsCurrentConfig(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "daemon.json"), Defaults())
	v, err := s.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	cfg, ok := v.(DaemonConfig)
	if !ok {
		t.Fatalf("Load returned %T, want DaemonConfig", v)
	}
	if cfg.Engine.TickMs != 50 {
		t.Fatalf("TickMs = %d, want 50", cfg.Engine.TickMs)
	}
}

func TestStoreSetMutatesNestedField(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "daemon.json"), Defaults())
	if err := s.Set("engine.tickMs", float64(75)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if got := s.Current().Engine.TickMs; got != 75 {
		t.Fatalf("TickMs = %d, want 75", got)
	}
}

func TestStoreSetRejectsOutOfRange(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "daemon.json"), Defaults())
	err := s.Set("engine.tickMs", float64(5000))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if got := s.Current().Engine.TickMs; got != 50 {
		t.Fatalf("TickMs = %d, want unchanged 50 after rejected set", got)
	}
}

func TestStoreSetUnknownKey(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "daemon.json"), Defaults())
	if err := s.Set("engine.nope", 1); err == nil {
		t.Fatal("expected unknown-key error")
	}
}

func TestStoreSaveWritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "daemon.json")
	s := NewStore(path, Defaults())
	if err := s.Set("rpc.port", float64(9100)); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read saved config: %v", err)
	}
	var cfg DaemonConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("unmarshal saved config: %v", err)
	}
	if cfg.RPC.Port != 9100 {
		t.Fatalf("saved Port = %d, want 9100", cfg.RPC.Port)
	}
}

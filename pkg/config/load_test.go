// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadAppliesDefaultsWithNoOverrides(t *testing.T) {
	t.Setenv("LFCD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
	res, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Config.Engine.TickMs != 50 {
		t.Fatalf("TickMs = %d, want default 50", res.Config.Engine.TickMs)
	}
	if res.Config.RPC.Port != 8777 {
		t.Fatalf("Port = %d, want default 8777", res.Config.RPC.Port)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("LFCD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("LFCD_TICK_MS", "80")
	t.Setenv("LFCD_HOST", "0.0.0.0")

	res, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Config.Engine.TickMs != 80 {
		t.Fatalf("TickMs = %d, want env override 80", res.Config.Engine.TickMs)
	}
	if res.Config.RPC.Host != "0.0.0.0" {
		t.Fatalf("Host = %q, want env override", res.Config.RPC.Host)
	}
}

func TestLoadConfigFileOverEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "daemon.json")
	body := `{"engine":{"tickMs":120,"deltaC":0.7,"forceTickMs":2000},"rpc":{"host":"127.0.0.1","port":9000}}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	t.Setenv("LFCD_CONFIG_PATH", path)
	t.Setenv("LFCD_TICK_MS", "80")

	res, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Config.Engine.TickMs != 120 {
		t.Fatalf("TickMs = %d, want file (120) to beat env (80)", res.Config.Engine.TickMs)
	}
	if res.Config.RPC.Port != 9000 {
		t.Fatalf("Port = %d, want file value 9000 (no env/CLI override)", res.Config.RPC.Port)
	}
}

func TestLoadCLIBeatsEverything(t *testing.T) {
	t.Setenv("LFCD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("LFCD_HOST", "10.0.0.1")

	res, err := Load([]string{"--host=192.168.1.1", "--port=9100"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if res.Config.RPC.Host != "192.168.1.1" {
		t.Fatalf("Host = %q, want CLI override", res.Config.RPC.Host)
	}
	if res.Config.RPC.Port != 9100 {
		t.Fatalf("Port = %d, want CLI override", res.Config.RPC.Port)
	}
}

func TestLoadRejectsOutOfRangeValues(t *testing.T) {
	t.Setenv("LFCD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
	t.Setenv("LFCD_TICK_MS", "5000")

	if _, err := Load(nil); err == nil {
		t.Fatal("expected validation error for out-of-range tickMs")
	}
}

func TestLoadStartupFlagsNotPersisted(t *testing.T) {
	t.Setenv("LFCD_CONFIG_PATH", filepath.Join(t.TempDir(), "missing.json"))
	res, err := Load([]string{"--foreground", "--debug", "--check-update"})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !res.Foreground || !res.CheckUpdate {
		t.Fatalf("expected startup flags to be reported: %+v", res)
	}
	if !res.Config.Log.Debug {
		t.Fatal("expected --debug to set Log.Debug")
	}

	data, err := json.Marshal(res.Config)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if string(data) == "" {
		t.Fatal("expected marshaled config")
	}
}

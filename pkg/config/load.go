// SPDX-License-Identifier: BSD-3-Clause

package config

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// DefaultConfigPath is used when neither --config nor LFCD_CONFIG_PATH
// names a file. It's optional: a missing file at this path is not an
// error, the daemon simply runs on env/CLI/defaults.
const DefaultConfigPath = "/etc/lfcd/daemon.json"

var validate = validator.New()

// LoadResult bundles the merged, validated DaemonConfig with the
// one-shot CLI flags (--foreground, --check-update, --update,
// --update-target) that control startup behaviour rather than ongoing
// configuration, so they're never persisted through ConfigStore.
type LoadResult struct {
	Config       *DaemonConfig
	ConfigPath   string
	Foreground   bool
	CheckUpdate  bool
	Update       bool
	UpdateTarget string
}

// Load parses CLI flags, layers an optional JSON config file and
// environment variables underneath them, and validates the merged result.
// Precedence is CLI > config file > environment > Defaults: an
// environment variable only supplies a key the config file leaves unset.
func Load(args []string) (*LoadResult, error) {
	var cli CLI
	parser, err := kong.New(&cli, kong.Name("lfcd"), kong.UsageOnError())
	if err != nil {
		return nil, fmt.Errorf("%w: building CLI parser: %w", ErrInvalidConfig, err)
	}
	if _, err := parser.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	configPath := cli.Config
	if configPath == "" {
		configPath = os.Getenv("LFCD_CONFIG_PATH")
	}
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := viper.New()
	v.SetConfigType("json")
	setDefaults(v, Defaults())

	if _, err := os.Stat(configPath); err == nil {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %w", ErrInvalidConfig, configPath, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: stat %s: %w", ErrInvalidConfig, configPath, err)
	}

	// Capture the file's values before binding env, then pin them as
	// overrides so a key set in the file beats its environment fallback.
	fileValues := make(map[string]any)
	for _, key := range v.AllKeys() {
		if v.InConfig(key) {
			fileValues[key] = v.Get(key)
		}
	}
	bindEnv(v)
	for key, value := range fileValues {
		v.Set(key, value)
	}

	var cfg DaemonConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: merging configuration: %w", ErrInvalidConfig, err)
	}

	applyCLIOverrides(&cfg, cli)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &LoadResult{
		Config:       &cfg,
		ConfigPath:   configPath,
		Foreground:   cli.Foreground,
		CheckUpdate:  cli.CheckUpdate,
		Update:       cli.Update,
		UpdateTarget: cli.UpdateTarget,
	}, nil
}

// Validate range/shape-checks cfg, wrapping validator's field errors in
// ErrInvalidConfig.
func Validate(cfg *DaemonConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func setDefaults(v *viper.Viper, d DaemonConfig) {
	v.SetDefault("log.file", d.Log.File)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("rpc.host", d.RPC.Host)
	v.SetDefault("rpc.port", d.RPC.Port)
	v.SetDefault("shm.path", d.Shm.Path)
	v.SetDefault("profiles.dir", d.Profiles.Dir)
	v.SetDefault("profiles.active", d.Profiles.Active)
	v.SetDefault("pidfile", d.PidFile)
	v.SetDefault("engine.tickms", d.Engine.TickMs)
	v.SetDefault("engine.deltac", d.Engine.DeltaC)
	v.SetDefault("engine.forcetickms", d.Engine.ForceTickMs)
	v.SetDefault("gpurefreshms", d.GPURefreshMs)
	v.SetDefault("hwmonrefreshms", d.HwmonRefreshMs)
	v.SetDefault("vendormappath", d.VendorMapPath)
	v.SetDefault("vendormapwatchmode", d.VendorMapWatchMode)
	v.SetDefault("vendormapthrottlems", d.VendorMapThrottleMs)
}

// bindEnv wires the daemon's documented environment fallbacks onto their
// viper keys. Names don't follow a single prefix in the documented
// surface (most are LFCD_, the vendor-map trio are LFC_), so each is
// bound explicitly rather than via viper's automatic-env prefixing.
func bindEnv(v *viper.Viper) {
	_ = v.BindEnv("engine.tickms", "LFCD_TICK_MS")
	_ = v.BindEnv("engine.deltac", "LFCD_DELTA_C")
	_ = v.BindEnv("engine.forcetickms", "LFCD_FORCE_TICK_MS")
	_ = v.BindEnv("gpurefreshms", "LFCD_GPU_REFRESH_MS")
	_ = v.BindEnv("hwmonrefreshms", "LFCD_HWMON_REFRESH_MS")
	_ = v.BindEnv("rpc.host", "LFCD_HOST")
	_ = v.BindEnv("rpc.port", "LFCD_PORT")
	_ = v.BindEnv("shm.path", "LFCD_SHM_PATH")
	_ = v.BindEnv("log.file", "LFCD_LOGFILE")
	_ = v.BindEnv("pidfile", "LFCD_PIDFILE")
	_ = v.BindEnv("profiles.dir", "LFCD_PROFILES_PATH")
	_ = v.BindEnv("profiles.active", "LFCD_PROFILE_NAME")
	_ = v.BindEnv("vendormappath", "LFC_VENDOR_MAP")
	_ = v.BindEnv("vendormapwatchmode", "LFC_VENDOR_MAP_WATCH")
	_ = v.BindEnv("vendormapthrottlems", "LFC_VENDOR_MAP_THROTTLE_MS")
}

// applyCLIOverrides wins over env/file/defaults for every flag the
// caller actually supplied. Foreground/CheckUpdate/Update/UpdateTarget
// are startup behaviour, not persisted configuration, so they're
// carried on LoadResult rather than applied here.
func applyCLIOverrides(cfg *DaemonConfig, cli CLI) {
	if cli.PidFile != "" {
		cfg.PidFile = cli.PidFile
	}
	if cli.LogFile != "" {
		cfg.Log.File = cli.LogFile
	}
	if cli.Debug {
		cfg.Log.Debug = true
	}
	if cli.ProfilesDir != "" {
		cfg.Profiles.Dir = cli.ProfilesDir
	}
	if cli.ProfileName != "" {
		cfg.Profiles.Active = cli.ProfileName
	}
	if cli.Host != "" {
		cfg.RPC.Host = cli.Host
	}
	if cli.Port != 0 {
		cfg.RPC.Port = cli.Port
	}
	if cli.ShmPath != "" {
		cfg.Shm.Path = cli.ShmPath
	}
}

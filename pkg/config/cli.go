// SPDX-License-Identifier: BSD-3-Clause

package config

// CLI is the daemon's flag surface, parsed by github.com/alecthomas/kong.
// Every field is left at its Go zero value when absent; Load treats a
// zero value as "not supplied on the command line" and lets the
// environment/config-file/defaults layers show through.
type CLI struct {
	Config       string `name:"config" type:"path" help:"Path to the daemon.json configuration file."`
	PidFile      string `name:"pidfile" type:"path" help:"Path to the daemon's PID file."`
	LogFile      string `name:"logfile" type:"path" help:"Path to the log output file (stdout if unset)."`
	ProfilesDir  string `name:"profiles" type:"path" help:"Directory containing profile files."`
	ProfileName  string `name:"profile" help:"Name of the profile to apply on startup."`
	Host         string `name:"host" help:"RPC listener bind host."`
	Port         int    `name:"port" help:"RPC listener bind port."`
	ShmPath      string `name:"shm_path" help:"Shared-memory telemetry object name."`
	Foreground   bool   `name:"foreground" help:"Stay attached to the terminal with console-formatted logging."`
	Debug        bool   `name:"debug" help:"Enable debug-level logging."`
	CheckUpdate  bool   `name:"check-update" help:"Check for an available update and exit."`
	Update       bool   `name:"update" help:"Download and apply an available update, then exit."`
	UpdateTarget string `name:"update-target" type:"path" help:"Destination path for a downloaded update binary."`
}

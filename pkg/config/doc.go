// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the daemon's operating configuration from CLI
// flags, a JSON config file, and environment variables, in that order
// of precedence, then validates the merged result before anything else
// in the daemon is wired up.
package config

// Package config loads, normalizes, and validates the TOML configuration.
//
// Load resolves the config path (explicit flag, then
// ~/.config/mediacopier/config.toml, then ./mediacopier.toml), decodes on
// top of Default(), expands ~ in every path field, and validates ranges
// before anything touches the filesystem.
package config

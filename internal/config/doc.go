// Package config loads, defaults, validates, and persists Dubforge's TOML
// configuration.
//
// Configuration resolves in layers: repository defaults, then the config
// file, then environment overrides for secrets. Paths support ~ expansion.
// Validate reports the first unusable setting with enough context to fix it.
package config

// Package config loads process configuration for the compute engine.
//
// Configuration files are YAML (.yaml, .yml) or CUE (.cue, .json). CUE
// files are unified with an embedded schema that carries the defaults and
// the range constraints, so a CUE file only needs the fields it changes.
// YAML files are decoded on top of Default with unknown keys rejected.
//
// Durations are strings in time.ParseDuration syntax ("1h", "90s"). An
// empty cache_ttl disables expiry.
package config

// Package config provides configuration loading, merging, and validation
// facilities for the client.
//
// Configuration is assembled from multiple sources in the following priority
// order (later sources override earlier non-zero fields):
//  1. Built-in defaults
//  2. JSON or TOML config file
//  3. Environment variables (TUISEN_ prefix)
//  4. Command-line flags
//
// The main entry point is [GetClientConfig], which returns the validated
// [ClientConfig] view used to wire the application.
package config

// Package config provides user configuration management for the SUNAPI tools.
//
// This package manages a YAML-based configuration file that stores saved
// device connection profiles (host, port, username, nickname) and application
// preferences. The configuration follows OS-specific conventions for storage
// location.
//
// # Configuration File Location
//
// The configuration file is stored in platform-appropriate locations:
//   - Linux: $XDG_CONFIG_HOME/sunapi/config.yaml or $HOME/.config/sunapi/config.yaml
//   - macOS: $HOME/.config/sunapi/config.yaml
//   - Windows: %LOCALAPPDATA%\sunapi\config.yaml
//
// # Security
//
// IMPORTANT: This package NEVER stores device passwords or session tokens.
// These are always prompted from the user when needed.
//
// # Usage Example
//
//	// Load the global registry
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Add or update a connection profile
//	registry.SetProfile("lobby", &config.Profile{
//	    Host:     "192.168.1.100",
//	    Username: "admin",
//	    Nickname: "Lobby Camera",
//	})
//
//	// Save changes atomically
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Thread Safety
//
// The global registry uses sync.Once for safe initialization across goroutines.
// File operations are protected by a mutex to ensure atomic writes.
package config

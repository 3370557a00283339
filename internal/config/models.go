package config

import (
	"sort"
	"time"
)

// Registry represents the entire user configuration file.
// This stores saved device connection profiles and application preferences.
type Registry struct {
	Version     int                 `yaml:"version"`
	Profiles    map[string]*Profile `yaml:"profiles,omitempty"` // Keyed by profile name
	Preferences *Preferences        `yaml:"preferences,omitempty"`
}

// Profile represents a saved connection profile for a single device.
// Passwords are NEVER stored - they are always prompted when needed.
type Profile struct {
	Host     string    `yaml:"host"`                // Device address (IP or hostname)
	Port     int       `yaml:"port,omitempty"`      // Control port (typically 80)
	Protocol string    `yaml:"protocol,omitempty"`  // "http" or "https"
	Username string    `yaml:"username,omitempty"`  // Login user
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	Model    string    `yaml:"model,omitempty"`     // Device model, if known
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last successful connection time
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover    bool       `yaml:"auto_discover"`             // Enable automatic mDNS discovery on startup
	DiscoverTimeout int        `yaml:"discover_timeout"`          // mDNS discovery timeout in seconds
	DefaultProfile  string     `yaml:"default_profile,omitempty"` // Profile used when none is named
	DefaultAuth     *AuthPrefs `yaml:"default_auth,omitempty"`    // Default authentication preferences
}

// AuthPrefs represents default authentication preferences.
// Note: Passwords are NEVER stored - they are always prompted from the user.
type AuthPrefs struct {
	Username string `yaml:"username"` // Default username (e.g., "admin")
	// Password is NEVER stored in config file for security reasons
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:  1,
		Profiles: make(map[string]*Profile),
		Preferences: &Preferences{
			AutoDiscover:    true,
			DiscoverTimeout: 10,
			DefaultAuth: &AuthPrefs{
				Username: "admin",
			},
		},
	}
}

// GetProfile retrieves a profile by name.
// Returns nil if the profile doesn't exist in the registry.
func (r *Registry) GetProfile(name string) *Profile {
	return r.Profiles[name]
}

// SetProfile stores or replaces a profile under the given name.
func (r *Registry) SetProfile(name string, profile *Profile) {
	if r.Profiles == nil {
		r.Profiles = make(map[string]*Profile)
	}
	r.Profiles[name] = profile
}

// RemoveProfile deletes a profile by name.
// Returns true when a profile was removed, false when none existed.
func (r *Registry) RemoveProfile(name string) bool {
	if _, exists := r.Profiles[name]; !exists {
		return false
	}
	delete(r.Profiles, name)
	return true
}

// ProfileNames returns the stored profile names in sorted order.
func (r *Registry) ProfileNames() []string {
	names := make([]string, 0, len(r.Profiles))
	for name := range r.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// UpdateLastSeen records a successful connection for a profile.
// Does nothing if the profile doesn't exist.
func (r *Registry) UpdateLastSeen(name string) {
	if profile := r.GetProfile(name); profile != nil {
		profile.LastSeen = time.Now()
	}
}

// DefaultProfileName returns the preferred profile name, or empty string
// when no preference is set.
func (r *Registry) DefaultProfileName() string {
	if r.Preferences == nil {
		return ""
	}
	return r.Preferences.DefaultProfile
}

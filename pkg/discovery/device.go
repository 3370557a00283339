package discovery

import (
	"fmt"
	"time"
)

// Device represents a discovered camera or recorder on the network
type Device struct {
	// ID is the device identity from its hostname
	// (e.g., "XNP-6400RW-00166CF2B458")
	ID string

	// Model is the device model from the TXT records, "Unknown" when the
	// device does not advertise one
	Model string

	// Hostname is the mDNS hostname (e.g., "WISENET-XNP-6400RW-00166CF2B458.local")
	Hostname string

	// IP is the IPv4 address (e.g., "192.168.1.100")
	IP string

	// Port is the HTTP control port (typically 80)
	Port int

	// MAC is the device MAC address from the TXT records, if advertised
	MAC string

	// Metadata contains additional mDNS TXT record data
	// Common fields: "model=XNP-6400RW", "mac=00:16:6C:F2:B4:58"
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Wisenet device %s (%s) at %s:%d", d.ID, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the device control API
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", d.IP, d.Port)
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

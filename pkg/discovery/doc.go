// Package discovery provides mDNS-based discovery of surveillance devices.
//
// This package implements multicast DNS (mDNS) service discovery to
// automatically locate Wisenet-style cameras and recorders on the local
// network. The devices advertise their web interface using the
// "_http._tcp" service type with a "WISENET-" hostname prefix.
//
// # Discovery Process
//
// The discovery process works as follows:
//  1. Broadcasts mDNS queries on the local network
//  2. Listens for service advertisements
//  3. Filters responses by the device hostname pattern
//  4. Collects device information (hostname, IP, model, MAC)
//  5. Returns a list of discovered devices after the timeout period
//
// # Usage Example
//
//	// Discover devices with 10-second timeout
//	devices, err := discovery.ScanForDevices(10 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Print discovered devices
//	for _, device := range devices {
//	    fmt.Printf("Found: %s at %s (Model: %s)\n",
//	        device.Hostname, device.IP, device.Model)
//	}
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
//
// # Thread Safety
//
// This package is safe for concurrent use. Multiple discovery sessions can
// run simultaneously without interference.
package discovery

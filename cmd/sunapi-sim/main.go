// Sunapi-sim is a standalone SUNAPI device simulator.
//
// It serves the CGI control surface and websocket event stream of a
// simulated camera, assembled for exercising sunapi-cli and the client
// library without physical hardware.
//
// Usage:
//
//	sunapi-sim serve [flags]
//
// See 'sunapi-sim serve --help' for available options.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jacobrsyntaxindustries/sunapi-go/internal/simulator"
	"github.com/jacobrsyntaxindustries/sunapi-go/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sunapi-sim",
	Short: "SUNAPI device simulator",
	Long: `A standalone simulator of a SUNAPI surveillance camera.

The simulator answers the full CGI control surface (login, device info,
video, PTZ, events, recording) and pushes periodic events over the
websocket stream. Use it to try out sunapi-cli without a camera on the
network, or to develop against the client library offline.`,
	Version: version.Version,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Serve command and flags
var (
	host          string
	port          int
	logLevel      string
	username      string
	password      string
	tokenLifetime time.Duration
	eventInterval time.Duration
	legacyKeys    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the simulated device",
	Long: `Start the simulated device and block until interrupted.

The simulator issues bearer tokens on login and enforces them on every
other endpoint, so the client's re-authentication path can be exercised
by restarting the simulator mid-session.

With --legacy-keys the simulator answers with the field names of older
firmware generations (abbreviated keys, numbers as strings, "On"/"Off"
toggles).`,
	Example: `  # Start on the default port with default credentials (admin/4321)
  sunapi-sim serve

  # Start on a custom port with verbose logging
  sunapi-sim serve --port 8080 --log-level debug

  # Answer with old-firmware response shapes
  sunapi-sim serve --legacy-keys

  # Push a motion event every two seconds
  sunapi-sim serve --event-interval 2s`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&host, "host", simulator.DefaultHost, "Address to listen on")
	serveCmd.Flags().IntVar(&port, "port", simulator.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&username, "username", simulator.DefaultUsername, "Accepted login username")
	serveCmd.Flags().StringVar(&password, "password", simulator.DefaultPassword, "Accepted login password")
	serveCmd.Flags().DurationVar(&tokenLifetime, "token-lifetime", simulator.DefaultTokenLifetime, "Lifetime of issued access tokens")
	serveCmd.Flags().DurationVar(&eventInterval, "event-interval", simulator.DefaultEventInterval, "Period between generated events (0 disables the generator)")
	serveCmd.Flags().BoolVar(&legacyKeys, "legacy-keys", false, "Serve old-firmware field names in responses")
}

func runServe(cmd *cobra.Command, args []string) error {
	config := &simulator.Config{
		Host:          host,
		Port:          port,
		LogLevel:      logLevel,
		Username:      username,
		Password:      password,
		TokenLifetime: tokenLifetime,
		EventInterval: eventInterval,
		LegacyKeys:    legacyKeys,
	}

	sim, err := simulator.New(config)
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}

	return sim.Start()
}

// Version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sunapi-sim %s (commit: %s)\n", version.Version, version.Commit)
	},
}

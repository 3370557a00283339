// Sunapi-cli is a command-line control utility for SUNAPI surveillance
// devices.
//
// It provides network discovery, device information, PTZ control, event
// monitoring, and recording management for Wisenet cameras and recorders
// speaking the SUNAPI HTTP protocol. Device commands print a uniform
// result envelope as JSON, so output is scriptable with jq.
//
// Usage:
//
//	sunapi-cli [command] [flags]
//
// See 'sunapi-cli --help' for available commands.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jacobrsyntaxindustries/sunapi-go/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		// Failed operations have already printed their envelope and
		// troubleshooting advice.
		if !errors.Is(err, errOperationFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sunapi-cli",
	Short: "SUNAPI Device Control Utility",
	Long: `A command-line utility for controlling SUNAPI surveillance devices.

Provides network discovery, device information, video and PTZ control,
event monitoring, and recording management for cameras and recorders
speaking the SUNAPI HTTP protocol.

Device commands print a uniform result envelope as JSON on stdout:

  {"success": true, "data": {...}}
  {"success": false, "error": "...", "statusCode": 503}

and exit non-zero when the operation did not succeed, so the output is
directly usable from scripts.

Connection settings come from flags, or from a saved profile (see
'sunapi-cli profile'). Passwords are never stored; when omitted they are
prompted on the terminal.`,
	Version:      version.Version,
	SilenceUsage: true,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sunapi-cli %s (commit: %s)\n", version.Version, version.Commit)
	},
}

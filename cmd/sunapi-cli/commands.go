package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jacobrsyntaxindustries/sunapi-go/internal/config"
	"github.com/jacobrsyntaxindustries/sunapi-go/internal/monitor"
	"github.com/jacobrsyntaxindustries/sunapi-go/pkg/discovery"
	"github.com/jacobrsyntaxindustries/sunapi-go/pkg/sunapi"
)

// errOperationFailed marks a device operation whose failure envelope has
// already been printed; main exits non-zero without repeating it.
var errOperationFailed = errors.New("operation failed")

// Connection flags shared by every device command
var (
	flagHost     string
	flagPort     int
	flagProtocol string
	flagUsername string
	flagPassword string
	flagTimeout  time.Duration
	flagProfile  string
	flagPretty   bool
)

func init() {
	rootCmd.SilenceErrors = true

	rootCmd.PersistentFlags().StringVar(&flagHost, "host", "", "Device IP address or hostname (overrides any profile)")
	rootCmd.PersistentFlags().IntVar(&flagPort, "port", sunapi.DefaultPort, "Device HTTP port")
	rootCmd.PersistentFlags().StringVar(&flagProtocol, "protocol", sunapi.DefaultProtocol, "Connection protocol (http or https)")
	rootCmd.PersistentFlags().StringVar(&flagUsername, "username", "", "Device login username")
	rootCmd.PersistentFlags().StringVar(&flagPassword, "password", "", "Device login password (prompted when omitted)")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", sunapi.DefaultTimeout, "Per-request timeout")
	rootCmd.PersistentFlags().StringVar(&flagProfile, "profile", "", "Saved connection profile to use")
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "Indent JSON output")

	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(ptzCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(monitorCmd)
}

// target is the resolved connection target for one invocation.
type target struct {
	host     string
	port     int
	protocol string
	username string
	password string
	profile  string // profile name the target came from, if any
}

// resolveTarget combines flags, the named profile, and the registry
// defaults into one connection target. --host wins over everything; a
// profile fills in whatever flags the user did not set explicitly.
func resolveTarget(cmd *cobra.Command) (*target, error) {
	t := &target{
		host:     flagHost,
		port:     flagPort,
		protocol: flagProtocol,
		username: flagUsername,
		password: flagPassword,
	}

	if t.host == "" {
		reg, err := config.LoadRegistry()
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}

		name := flagProfile
		if name == "" {
			name = reg.DefaultProfileName()
		}
		if name == "" {
			return nil, fmt.Errorf("no device specified: use --host, --profile, or save a default profile with 'sunapi-cli profile add'")
		}

		p := reg.GetProfile(name)
		if p == nil {
			known := strings.Join(reg.ProfileNames(), ", ")
			if known == "" {
				known = "none"
			}
			return nil, fmt.Errorf("profile %q not found (known profiles: %s)", name, known)
		}

		t.profile = name
		t.host = p.Host
		if !cmd.Flags().Changed("port") && p.Port != 0 {
			t.port = p.Port
		}
		if !cmd.Flags().Changed("protocol") && p.Protocol != "" {
			t.protocol = p.Protocol
		}
		if t.username == "" {
			t.username = p.Username
		}
	}

	if t.username == "" {
		if reg, err := config.LoadRegistry(); err == nil && reg.Preferences != nil && reg.Preferences.DefaultAuth != nil {
			t.username = reg.Preferences.DefaultAuth.Username
		}
	}
	if t.username == "" {
		t.username = "admin"
	}

	if t.password == "" {
		pw, err := promptPassword(fmt.Sprintf("Password for %s@%s: ", t.username, t.host))
		if err != nil {
			return nil, err
		}
		t.password = pw
	}

	return t, nil
}

// promptPassword reads a password without echo. Passwords are never
// stored in the profile registry, so this runs once per invocation.
func promptPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no password provided and stdin is not a terminal (use --password)")
	}

	fmt.Fprint(os.Stderr, prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(raw), nil
}

// confirm asks a yes/no question on the terminal
func confirm(question string) (bool, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return false, fmt.Errorf("refusing to proceed without confirmation (use --yes)")
	}

	fmt.Fprintf(os.Stderr, "%s [y/N]: ", question)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false, fmt.Errorf("failed to read confirmation: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}

// newDeviceClient resolves the target and builds a client for it
func newDeviceClient(cmd *cobra.Command) (*sunapi.Client, *target, error) {
	t, err := resolveTarget(cmd)
	if err != nil {
		return nil, nil, err
	}

	client, err := sunapi.NewClient(sunapi.Config{
		Host:     t.host,
		Port:     t.port,
		Protocol: t.protocol,
		Username: t.username,
		Password: t.password,
		Timeout:  flagTimeout,
	})
	if err != nil {
		return nil, nil, err
	}
	return client, t, nil
}

func marshalJSON(v interface{}) (string, error) {
	var blob []byte
	var err error
	if flagPretty {
		blob, err = json.MarshalIndent(v, "", "  ")
	} else {
		blob, err = json.Marshal(v)
	}
	if err != nil {
		return "", fmt.Errorf("failed to marshal output: %w", err)
	}
	return string(blob), nil
}

// printResult renders an operation envelope as JSON on stdout. Failed
// envelopes also put troubleshooting advice on stderr and make the
// process exit non-zero.
func printResult[T any](res sunapi.Result[T], err error) error {
	out, merr := marshalJSON(res)
	if merr != nil {
		return merr
	}
	fmt.Println(out)

	if res.Success {
		return nil
	}

	fmt.Fprintln(os.Stderr)
	fmt.Fprintln(os.Stderr, failureAdvice(res.Error, res.StatusCode, err))
	return errOperationFailed
}

// failureAdvice picks troubleshooting advice for a failed envelope. The
// status code recovers the failure category when the classified error is
// no longer available; status 0 covers both transport and validation
// failures, whose envelope messages speak for themselves.
func failureAdvice(message string, statusCode int, err error) string {
	if err == nil {
		switch {
		case statusCode == http.StatusUnauthorized:
			err = sunapi.NewAuthError(message)
		case statusCode != 0:
			err = sunapi.NewAPIError(statusCode, message)
		default:
			return "Error: " + message
		}
	}
	return sunapi.GetTroubleshootingHint(err)
}

// touchProfile records a successful connection on the profile
func touchProfile(name string) {
	if name == "" {
		return
	}
	reg, err := config.LoadRegistry()
	if err != nil {
		return
	}
	reg.UpdateLastSeen(name)
	_ = reg.Save()
}

// scanCmd discovers devices on the network
var scanTimeout int

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for SUNAPI devices on the network",
	Long: `Scan for SUNAPI devices using mDNS/DNS-SD discovery.

This command listens for mDNS broadcasts and displays every discovered
device with its address, model, and metadata. Devices found here can be
saved as profiles for later use.`,
	Example: `  # Scan for 10 seconds (default)
  sunapi-cli scan

  # Quick 3-second scan
  sunapi-cli scan --scan-timeout 3

  # Longer scan for networks with many devices
  sunapi-cli scan --scan-timeout 30`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().IntVar(&scanTimeout, "scan-timeout", 10, "Scan timeout in seconds")
}

func runScan(cmd *cobra.Command, args []string) error {
	fmt.Printf("Scanning for SUNAPI devices (timeout: %ds)...\n\n", scanTimeout)

	devices, err := discovery.ScanForDevices(time.Duration(scanTimeout) * time.Second)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the device is powered on and on the same subnet")
		fmt.Println("  - Check that mDNS is not blocked by the network")
		fmt.Println("  - Try increasing --scan-timeout for slower networks")
		fmt.Println("  - Use --host to specify the address manually if discovery fails")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))

	for i, device := range devices {
		fmt.Printf("%d. %s\n", i+1, device.Hostname)
		fmt.Printf("   Model: %s\n", device.Model)
		fmt.Printf("   IP:    %s:%d\n", device.IP, device.Port)
		if device.MAC != "" {
			fmt.Printf("   MAC:   %s\n", device.MAC)
		}
		fmt.Println()
	}

	fmt.Println("Use 'sunapi-cli info --host <ip>' to query a device")
	fmt.Println("Use 'sunapi-cli profile add <name> --host <ip>' to save one")

	return nil
}

// infoCmd shows device identity information
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device information",
	Long: `Fetch the device's identity block: name, model, serial number,
firmware version, MAC address, and uptime.

Fields the firmware does not report come back as "Unknown" rather than
failing the whole call.`,
	Example: `  # Query a device directly
  sunapi-cli info --host 192.168.1.100

  # Query the default profile, pretty-printed
  sunapi-cli info --pretty`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.System().DeviceInfo(ctx)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

// rebootCmd restarts the device
var rebootYes bool

var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the device",
	Long: `Reboot the device. The device drops all sessions and is unreachable
for a minute or two while it restarts.

Asks for confirmation on the terminal unless --yes is given.`,
	Example: `  # Reboot with confirmation prompt
  sunapi-cli reboot --host 192.168.1.100

  # Reboot without asking (for scripts)
  sunapi-cli reboot --host 192.168.1.100 --yes`,
	RunE: runReboot,
}

func init() {
	rebootCmd.Flags().BoolVar(&rebootYes, "yes", false, "Skip the confirmation prompt")
}

func runReboot(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}

	if !rebootYes {
		ok, err := confirm(fmt.Sprintf("Reboot device at %s?", client.Config().Host))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(os.Stderr, "Aborted.")
			return nil
		}
	}

	ctx := context.Background()
	res, err := client.System().Reboot(ctx)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

// snapshotCmd captures a still image
var (
	snapshotChannel int
	snapshotOutput  string
)

// savedSnapshot is the envelope payload when the image goes to a file.
type savedSnapshot struct {
	Path        string `json:"path"`
	ContentType string `json:"contentType"`
	Bytes       int    `json:"bytes"`
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Capture a still image",
	Long: `Capture a still JPEG from a video channel.

Without --output the image bytes are embedded in the result envelope as
base64. With --output the image is written to the file and the envelope
reports where it went.`,
	Example: `  # Save a snapshot of channel 0
  sunapi-cli snapshot --host 192.168.1.100 --output snap.jpg

  # Capture from the second channel of a multichannel encoder
  sunapi-cli snapshot --host 192.168.1.100 --channel 1 --output ch1.jpg`,
	RunE: runSnapshot,
}

func init() {
	snapshotCmd.Flags().IntVar(&snapshotChannel, "channel", 0, "Video channel to capture")
	snapshotCmd.Flags().StringVar(&snapshotOutput, "output", "", "File to write the image to")
}

func runSnapshot(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Video().Snapshot(ctx, snapshotChannel)
	if res.Success {
		touchProfile(t.profile)
	}

	if res.Success && snapshotOutput != "" {
		if werr := os.WriteFile(snapshotOutput, res.Data.Data, 0644); werr != nil {
			return fmt.Errorf("failed to write %s: %w", snapshotOutput, werr)
		}
		saved := savedSnapshot{
			Path:        snapshotOutput,
			ContentType: res.Data.ContentType,
			Bytes:       len(res.Data.Data),
		}
		return printResult(sunapi.OK(saved), nil)
	}

	return printResult(res, err)
}

// videoCmd groups the video inventory commands
var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Inspect video channels and profiles",
}

var videoSourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "List video input channels",
	Long: `List the device's video input channels with their names, enabled
state, and resolution.`,
	Example: `  sunapi-cli video sources --host 192.168.1.100 --pretty`,
	RunE:    runVideoSources,
}

var videoProfilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List encoding profiles",
	Long: `List the encoding profiles configured across all channels: codec,
resolution, frame rate, and bitrate.`,
	Example: `  sunapi-cli video profiles --host 192.168.1.100 --pretty`,
	RunE:    runVideoProfiles,
}

func init() {
	videoCmd.AddCommand(videoSourcesCmd)
	videoCmd.AddCommand(videoProfilesCmd)
}

func runVideoSources(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Video().ListSources(ctx)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runVideoProfiles(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Video().ListProfiles(ctx)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

// ptzCmd groups the pan/tilt/zoom commands
var (
	ptzChannel int
	ptzPan     int
	ptzTilt    int
	ptzZoom    int
	presetName string
)

var ptzCmd = &cobra.Command{
	Use:   "ptz",
	Short: "Control pan/tilt/zoom movement and presets",
}

var ptzMoveCmd = &cobra.Command{
	Use:   "move",
	Short: "Start continuous movement",
	Long: `Start continuous movement at the given axis velocities. Velocities
range from -100 to 100; movement continues until 'ptz stop'.`,
	Example: `  # Pan right at half speed
  sunapi-cli ptz move --host 192.168.1.100 --pan 50

  # Tilt down while zooming in
  sunapi-cli ptz move --host 192.168.1.100 --tilt -30 --zoom 20`,
	RunE: runPTZMove,
}

var ptzStopCmd = &cobra.Command{
	Use:     "stop",
	Short:   "Stop all movement",
	Example: `  sunapi-cli ptz stop --host 192.168.1.100`,
	RunE:    runPTZStop,
}

var ptzHomeCmd = &cobra.Command{
	Use:     "home",
	Short:   "Move to the home position",
	Example: `  sunapi-cli ptz home --host 192.168.1.100`,
	RunE:    runPTZHome,
}

var ptzPresetCmd = &cobra.Command{
	Use:   "preset",
	Short: "Manage stored positions",
}

var ptzPresetListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List stored positions",
	Example: `  sunapi-cli ptz preset list --host 192.168.1.100 --pretty`,
	RunE:    runPresetList,
}

var ptzPresetSetCmd = &cobra.Command{
	Use:   "set <number>",
	Short: "Store the current position",
	Long:  `Store the camera's current position under a preset number (1 or higher).`,
	Example: `  # Store the current view as preset 3
  sunapi-cli ptz preset set 3 --host 192.168.1.100 --name "Loading dock"`,
	Args: cobra.ExactArgs(1),
	RunE: runPresetSet,
}

var ptzPresetGotoCmd = &cobra.Command{
	Use:     "goto <number>",
	Short:   "Move to a stored position",
	Example: `  sunapi-cli ptz preset goto 3 --host 192.168.1.100`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPresetGoto,
}

var ptzPresetRemoveCmd = &cobra.Command{
	Use:     "remove <number>",
	Short:   "Delete a stored position",
	Example: `  sunapi-cli ptz preset remove 3 --host 192.168.1.100`,
	Args:    cobra.ExactArgs(1),
	RunE:    runPresetRemove,
}

func init() {
	ptzCmd.PersistentFlags().IntVar(&ptzChannel, "channel", 0, "PTZ channel")
	ptzMoveCmd.Flags().IntVar(&ptzPan, "pan", 0, "Pan velocity (-100 to 100)")
	ptzMoveCmd.Flags().IntVar(&ptzTilt, "tilt", 0, "Tilt velocity (-100 to 100)")
	ptzMoveCmd.Flags().IntVar(&ptzZoom, "zoom", 0, "Zoom velocity (-100 to 100)")
	ptzPresetSetCmd.Flags().StringVar(&presetName, "name", "", "Name for the stored position")

	ptzPresetCmd.AddCommand(ptzPresetListCmd)
	ptzPresetCmd.AddCommand(ptzPresetSetCmd)
	ptzPresetCmd.AddCommand(ptzPresetGotoCmd)
	ptzPresetCmd.AddCommand(ptzPresetRemoveCmd)

	ptzCmd.AddCommand(ptzMoveCmd)
	ptzCmd.AddCommand(ptzStopCmd)
	ptzCmd.AddCommand(ptzHomeCmd)
	ptzCmd.AddCommand(ptzPresetCmd)
}

func runPTZMove(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.PTZ().Move(ctx, ptzChannel, ptzPan, ptzTilt, ptzZoom)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runPTZStop(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.PTZ().Stop(ctx, ptzChannel)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runPTZHome(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.PTZ().Home(ctx, ptzChannel)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func parsePresetNumber(arg string) (int, error) {
	number, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid preset number %q", arg)
	}
	return number, nil
}

func runPresetList(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.PTZ().ListPresets(ctx, ptzChannel)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runPresetSet(cmd *cobra.Command, args []string) error {
	number, err := parsePresetNumber(args[0])
	if err != nil {
		return err
	}

	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.PTZ().SetPreset(ctx, ptzChannel, number, presetName)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runPresetGoto(cmd *cobra.Command, args []string) error {
	number, err := parsePresetNumber(args[0])
	if err != nil {
		return err
	}

	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.PTZ().GotoPreset(ctx, ptzChannel, number)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runPresetRemove(cmd *cobra.Command, args []string) error {
	number, err := parsePresetNumber(args[0])
	if err != nil {
		return err
	}

	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.PTZ().RemovePreset(ctx, ptzChannel, number)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

// eventsCmd groups the event commands
var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Poll detectors and watch the event stream",
}

var eventsStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show current detector states",
	Example: `  sunapi-cli events status --host 192.168.1.100 --pretty`,
	RunE:    runEventsStatus,
}

var eventsRulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "List event handling rules",
	Long: `List the configured event handling rules: what conditions trigger
them and what actions they take.`,
	Example: `  sunapi-cli events rules --host 192.168.1.100 --pretty`,
	RunE:    runEventsRules,
}

var eventsWatchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream pushed events",
	Long: `Open the device's event stream and print each pushed event as a JSON
line until interrupted with Ctrl-C.`,
	Example: `  # Follow events as they happen
  sunapi-cli events watch --host 192.168.1.100

  # Feed motion events into jq
  sunapi-cli events watch --host 192.168.1.100 | jq 'select(.type == "MotionDetection")'`,
	RunE: runEventsWatch,
}

func init() {
	eventsCmd.AddCommand(eventsStatusCmd)
	eventsCmd.AddCommand(eventsRulesCmd)
	eventsCmd.AddCommand(eventsWatchCmd)
}

func runEventsStatus(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Events().Status(ctx)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runEventsRules(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Events().Rules(ctx)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runEventsWatch(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer client.Logout(context.Background())

	events, err := client.Events().Watch(ctx)
	if err != nil {
		return printResult(sunapi.Fail[sunapi.Event](err), err)
	}
	touchProfile(t.profile)

	fmt.Fprintln(os.Stderr, "Watching events (Ctrl-C to stop)...")
	for ev := range events {
		out, merr := marshalJSON(ev)
		if merr != nil {
			continue
		}
		fmt.Println(out)
	}
	return nil
}

// recordCmd groups the recording commands
var (
	recordChannel int
	searchFrom    string
	searchTo      string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Control recording and search stored footage",
}

var recordStatusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Show recording state",
	Example: `  sunapi-cli record status --host 192.168.1.100 --channel 0`,
	RunE:    runRecordStatus,
}

var recordStartCmd = &cobra.Command{
	Use:     "start",
	Short:   "Start manual recording",
	Example: `  sunapi-cli record start --host 192.168.1.100 --channel 0`,
	RunE:    runRecordStart,
}

var recordStopCmd = &cobra.Command{
	Use:     "stop",
	Short:   "Stop manual recording",
	Example: `  sunapi-cli record stop --host 192.168.1.100 --channel 0`,
	RunE:    runRecordStop,
}

var recordSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search stored footage",
	Long: `Search the stored footage on a channel for segments overlapping a
time window. Times accept RFC 3339 ("2026-08-22T14:00:00Z"), the device
layout ("2026-08-22 14:00:00"), or a bare date.`,
	Example: `  # Everything recorded on a given day
  sunapi-cli record search --host 192.168.1.100 --from 2026-08-21 --to 2026-08-22

  # A precise window, pretty-printed
  sunapi-cli record search --host 192.168.1.100 \
    --from "2026-08-21 14:00:00" --to "2026-08-21 15:30:00" --pretty`,
	RunE: runRecordSearch,
}

func init() {
	recordCmd.PersistentFlags().IntVar(&recordChannel, "channel", 0, "Recording channel")
	recordSearchCmd.Flags().StringVar(&searchFrom, "from", "", "Window start (required)")
	recordSearchCmd.Flags().StringVar(&searchTo, "to", "", "Window end (required)")

	recordCmd.AddCommand(recordStatusCmd)
	recordCmd.AddCommand(recordStartCmd)
	recordCmd.AddCommand(recordStopCmd)
	recordCmd.AddCommand(recordSearchCmd)
}

func runRecordStatus(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Recording().Status(ctx, recordChannel)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runRecordStart(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Recording().Start(ctx, recordChannel)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

func runRecordStop(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Recording().Stop(ctx, recordChannel)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

// parseWhen accepts RFC 3339, the device timestamp layout, and bare dates
func parseWhen(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (use RFC 3339 or \"2006-01-02 15:04:05\")", s)
}

func runRecordSearch(cmd *cobra.Command, args []string) error {
	if searchFrom == "" || searchTo == "" {
		return fmt.Errorf("both --from and --to are required")
	}
	from, err := parseWhen(searchFrom)
	if err != nil {
		return err
	}
	to, err := parseWhen(searchTo)
	if err != nil {
		return err
	}

	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	ctx := context.Background()
	defer client.Logout(ctx)

	res, err := client.Recording().Search(ctx, recordChannel, from, to)
	if res.Success {
		touchProfile(t.profile)
	}
	return printResult(res, err)
}

// profileCmd manages saved connection profiles
var (
	profileNickname string
	profileDefault  bool
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Manage saved connection profiles",
	Long: `Manage saved connection profiles.

Profiles store the host, port, protocol, and username of a device so
commands can refer to it by name with --profile (or implicitly via the
default profile). Passwords are never stored; they are prompted when a
command runs.`,
}

var profileAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a connection profile",
	Example: `  # Save a camera and make it the default
  sunapi-cli profile add lobby --host 192.168.1.100 --username admin --default

  # Save an HTTPS recorder on a custom port
  sunapi-cli profile add nvr --host 192.168.1.4 --port 8443 --protocol https`,
	Args: cobra.ExactArgs(1),
	RunE: runProfileAdd,
}

var profileListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List saved profiles",
	Example: `  sunapi-cli profile list`,
	RunE:    runProfileList,
}

var profileRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Short:   "Delete a saved profile",
	Example: `  sunapi-cli profile remove lobby`,
	Args:    cobra.ExactArgs(1),
	RunE:    runProfileRemove,
}

func init() {
	profileAddCmd.Flags().StringVar(&profileNickname, "nickname", "", "Friendly name for the device")
	profileAddCmd.Flags().BoolVar(&profileDefault, "default", false, "Make this the default profile")

	profileCmd.AddCommand(profileAddCmd)
	profileCmd.AddCommand(profileListCmd)
	profileCmd.AddCommand(profileRemoveCmd)
}

func runProfileAdd(cmd *cobra.Command, args []string) error {
	name := args[0]
	if flagHost == "" {
		return fmt.Errorf("--host is required when adding a profile")
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	profile := &config.Profile{
		Host:     flagHost,
		Nickname: profileNickname,
		Username: flagUsername,
	}
	if cmd.Flags().Changed("port") {
		profile.Port = flagPort
	}
	if cmd.Flags().Changed("protocol") {
		profile.Protocol = flagProtocol
	}

	reg.SetProfile(name, profile)
	if profileDefault || len(reg.Profiles) == 1 {
		reg.Preferences.DefaultProfile = name
	}

	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Saved profile %q (%s)\n", name, flagHost)
	if reg.Preferences.DefaultProfile == name {
		fmt.Println("It is now the default profile.")
	}
	return nil
}

func runProfileList(cmd *cobra.Command, args []string) error {
	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	names := reg.ProfileNames()
	if len(names) == 0 {
		fmt.Println("No profiles saved.")
		fmt.Println("\nUse 'sunapi-cli profile add <name> --host <ip>' to save one.")
		return nil
	}

	defaultName := reg.DefaultProfileName()
	for _, name := range names {
		p := reg.GetProfile(name)
		marker := " "
		if name == defaultName {
			marker = "*"
		}

		fmt.Printf("%s %s\n", marker, name)
		if p.Nickname != "" {
			fmt.Printf("    Nickname: %s\n", p.Nickname)
		}
		fmt.Printf("    Address:  %s\n", profileAddress(p))
		if p.Username != "" {
			fmt.Printf("    Username: %s\n", p.Username)
		}
		if !p.LastSeen.IsZero() {
			fmt.Printf("    Last seen: %s\n", p.LastSeen.Format(time.RFC3339))
		}
		fmt.Println()
	}

	if defaultName != "" {
		fmt.Println("* default profile")
	}
	return nil
}

func profileAddress(p *config.Profile) string {
	protocol := p.Protocol
	if protocol == "" {
		protocol = sunapi.DefaultProtocol
	}
	port := p.Port
	if port == 0 {
		port = sunapi.DefaultPort
	}
	return fmt.Sprintf("%s://%s:%d", protocol, p.Host, port)
}

func runProfileRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	reg, err := config.LoadRegistry()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if !reg.RemoveProfile(name) {
		return fmt.Errorf("profile %q not found", name)
	}
	if reg.Preferences != nil && reg.Preferences.DefaultProfile == name {
		reg.Preferences.DefaultProfile = ""
	}

	if err := reg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	fmt.Printf("Removed profile %q\n", name)
	return nil
}

// monitorCmd launches the live TUI dashboard
var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Live device dashboard",
	Long: `Open a live terminal dashboard for one device: identity, detector
states, recording state, and the pushed event feed in one screen.

Press q to quit.`,
	Example: `  # Watch the default profile
  sunapi-cli monitor

  # Watch a specific device
  sunapi-cli monitor --host 192.168.1.100`,
	RunE: runMonitor,
}

func runMonitor(cmd *cobra.Command, args []string) error {
	client, t, err := newDeviceClient(cmd)
	if err != nil {
		return err
	}
	defer client.Logout(context.Background())

	p := tea.NewProgram(monitor.NewModel(client), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}
	touchProfile(t.profile)
	return nil
}

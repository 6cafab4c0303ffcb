package main

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/leonardotrapani/voxnote/internal/bus"
	"github.com/leonardotrapani/voxnote/internal/capture"
	"github.com/leonardotrapani/voxnote/internal/config"
	"github.com/leonardotrapani/voxnote/internal/daemon"
	"github.com/leonardotrapani/voxnote/internal/deps"
	"github.com/leonardotrapani/voxnote/internal/tui"
	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "voxnote",
	Short: "Record voice notes and send them to a transcription server",
}

func init() {
	rootCmd.AddCommand(
		serveCmd(),
		toggleCmd(),
		startCmd(),
		stopCmd(),
		submitCmd(),
		statusCmd(),
		historyCmd(),
		resetCmd(),
		versionCmd(),
		quitCmd(),
		recordCmd(),
		configureCmd(),
		doctorCmd(),
	)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := config.NewManager()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			d, err := daemon.FromConfig(mgr)
			if err != nil {
				return fmt.Errorf("failed to create daemon: %w", err)
			}
			return d.Run()
		},
	}
}

// busCmd builds a command that sends one bus command to the daemon and
// prints the reply.
func busCmd(use, short, action string, code byte) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(code, "")
			if err != nil {
				return fmt.Errorf("failed to %s: %w", action, err)
			}
			return printReply(resp)
		},
	}
}

// titledBusCmd is busCmd with a --title flag passed as the argument.
func titledBusCmd(use, short, action string, code byte) *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := bus.SendCommand(code, title)
			if err != nil {
				return fmt.Errorf("failed to %s: %w", action, err)
			}
			return printReply(resp)
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "recording title")
	return cmd
}

// printReply echoes a daemon reply and turns ERR replies into a failing
// exit status.
func printReply(resp string) error {
	if strings.HasPrefix(resp, "ERR") {
		return fmt.Errorf("daemon: %s", strings.TrimSpace(strings.TrimPrefix(resp, "ERR")))
	}
	fmt.Print(resp)
	return nil
}

func toggleCmd() *cobra.Command {
	return busCmd("toggle", "Start, stop or submit depending on the session state", "toggle recording", bus.CmdToggle)
}

func startCmd() *cobra.Command {
	return titledBusCmd("start", "Start recording", "start recording", bus.CmdStart)
}

func stopCmd() *cobra.Command {
	return busCmd("stop", "Stop recording", "stop recording", bus.CmdStop)
}

func submitCmd() *cobra.Command {
	return titledBusCmd("submit", "Submit the stopped recording", "submit recording", bus.CmdSubmit)
}

func statusCmd() *cobra.Command {
	return busCmd("status", "Get current session status", "get status", bus.CmdStatus)
}

func historyCmd() *cobra.Command {
	return busCmd("history", "List recent transcriptions", "get history", bus.CmdHistory)
}

func resetCmd() *cobra.Command {
	return busCmd("reset", "Discard the current recording", "reset session", bus.CmdReset)
}

func versionCmd() *cobra.Command {
	return busCmd("version", "Get protocol version", "get version", bus.CmdVersion)
}

func quitCmd() *cobra.Command {
	return busCmd("quit", "Stop the daemon", "stop daemon", bus.CmdQuit)
}

func configureCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "configure",
		Short: "Interactive configuration setup",
		Long: `Interactive configuration editor for voxnote.
Covers the transcription server, recording, the live visualizer,
session defaults, what happens after a submission and notifications.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfigure()
		},
	}
}

func runConfigure() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	result, err := tui.Run(cfg)
	if err != nil {
		return fmt.Errorf("configuration editor error: %w", err)
	}

	if result.Cancelled {
		fmt.Println("Configuration cancelled.")
		return nil
	}

	if err := result.Config.Validate(); err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return err
	}

	if err := config.Save(result.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	fmt.Println()
	fmt.Println("Configuration saved successfully!")
	fmt.Println()

	showNextSteps()
	return nil
}

func showNextSteps() {
	serviceRunning := false
	if err := exec.Command("systemctl", "--user", "is-active", "--quiet", "voxnote.service").Run(); err == nil {
		serviceRunning = true
	}

	fmt.Println("Next Steps:")
	if !serviceRunning {
		fmt.Println("1. Start the service: systemctl --user start voxnote.service (or run voxnote serve)")
	} else {
		fmt.Println("1. A running daemon picks up the new settings automatically")
	}
	fmt.Println("2. Record a note: voxnote toggle, or voxnote record in a terminal")
	fmt.Println()

	configPath, _ := config.GetConfigPath()
	fmt.Printf("Config file location: %s\n", configPath)
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check external tools, PipeWire and the config file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDoctor(cmd.Context())
		},
	}
}

func runDoctor(ctx context.Context) error {
	fmt.Println(tui.StyleHeader.Render("External tools"))
	statuses := deps.CheckAll()
	for _, s := range statuses {
		if s.Installed {
			line := fmt.Sprintf("  ✓ %-12s %s", s.Tool.Name, s.Path)
			if s.Version != "" {
				line += " (" + s.Version + ")"
			}
			fmt.Println(tui.StyleSuccess.Render(line))
			continue
		}
		style := tui.StyleWarning
		if s.Tool.Required {
			style = tui.StyleError
		}
		fmt.Println(style.Render(fmt.Sprintf("  ✗ %-12s missing, needed for %s", s.Tool.Name, s.Tool.Purpose)))
	}

	fmt.Println()
	fmt.Println(tui.StyleHeader.Render("Audio"))
	checkCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	pipewireErr := capture.CheckPipeWireAvailable(checkCtx)
	if pipewireErr != nil {
		fmt.Println(tui.StyleError.Render("  ✗ " + pipewireErr.Error()))
	} else {
		fmt.Println(tui.StyleSuccess.Render("  ✓ PipeWire is running"))
	}

	fmt.Println()
	fmt.Println(tui.StyleHeader.Render("Configuration"))
	configPath, _ := config.GetConfigPath()
	cfg, configErr := config.Load()
	if configErr == nil {
		configErr = cfg.Validate()
	}
	if configErr != nil {
		fmt.Println(tui.StyleError.Render(fmt.Sprintf("  ✗ %s: %v", configPath, configErr)))
	} else {
		fmt.Println(tui.StyleSuccess.Render("  ✓ " + configPath))
		fmt.Println(tui.StyleMuted.Render("    server " + cfg.Server.BaseURL))
	}

	if missing := deps.MissingRequired(statuses); len(missing) > 0 {
		return fmt.Errorf("missing required tools: %s", strings.Join(missing, ", "))
	}
	if pipewireErr != nil {
		return pipewireErr
	}
	return configErr
}

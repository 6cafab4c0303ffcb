package tui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/voxnote/internal/config"
)

func formatServerLabel(cfg *config.Config) string {
	return fmt.Sprintf("Server (%s)", cfg.Server.BaseURL)
}

func formatRecordingLabel(cfg *config.Config) string {
	return fmt.Sprintf("Recording (rate=%d, timeslice=%s)", cfg.Recording.SampleRate, cfg.Recording.Timeslice)
}

func formatVisualizerLabel(cfg *config.Config) string {
	if !cfg.Visualizer.Enabled {
		return "Visualizer (disabled)"
	}
	return fmt.Sprintf("Visualizer (%d fps)", cfg.Visualizer.FPS)
}

func formatSessionLabel(cfg *config.Config) string {
	return fmt.Sprintf("Session (title=%q)", cfg.Session.DefaultTitle)
}

func formatNavigationLabel(cfg *config.Config) string {
	return fmt.Sprintf("After Submit (%s)", cfg.Navigation.Mode)
}

func formatNotificationsLabel(cfg *config.Config) string {
	if !cfg.Notifications.Enabled {
		return "Notifications (disabled)"
	}
	return fmt.Sprintf("Notifications (%s)", cfg.Notifications.Type)
}

func enabledText(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

// summaryLines renders the settings shown before saving.
func summaryLines(cfg *config.Config) []string {
	auth := "none"
	switch {
	case cfg.Server.Token != "":
		auth = "bearer token"
	case cfg.Server.Cookie != "":
		auth = "session cookie"
	}

	device := cfg.Recording.Device
	if device == "" {
		device = "default"
	}

	lines := []string{
		fmt.Sprintf("%s %s (timeout %s, auth %s)", StyleLabel.Render("Server:"), cfg.Server.BaseURL, cfg.Server.Timeout, auth),
		fmt.Sprintf("%s %d Hz, %d ch, %s, device %s", StyleLabel.Render("Recording:"),
			cfg.Recording.SampleRate, cfg.Recording.Channels, cfg.Recording.Format, device),
		fmt.Sprintf("%s %s", StyleLabel.Render("Visualizer:"), enabledText(cfg.Visualizer.Enabled)),
		fmt.Sprintf("%s title %q, auto submit %s, history %d", StyleLabel.Render("Session:"),
			cfg.Session.DefaultTitle, enabledText(cfg.Session.AutoSubmit), cfg.Session.HistorySize),
		fmt.Sprintf("%s %s", StyleLabel.Render("After submit:"), cfg.Navigation.Mode),
	}
	if cfg.Notifications.Enabled {
		lines = append(lines, fmt.Sprintf("%s %s", StyleLabel.Render("Notifications:"), cfg.Notifications.Type))
	} else {
		lines = append(lines, fmt.Sprintf("%s disabled", StyleLabel.Render("Notifications:")))
	}
	return lines
}

func showSummary(cfg *config.Config) (bool, error) {
	fmt.Println()
	fmt.Println(StyleHeader.Render("Configuration Summary"))
	fmt.Println()
	for _, line := range summaryLines(cfg) {
		fmt.Println("  " + line)
	}
	fmt.Println()

	var confirmed bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save this configuration?").
				Affirmative("Save").
				Negative("Cancel").
				Value(&confirmed),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirmed, nil
}

func validatePositiveInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a number")
	}
	if n < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateDuration(s string) error {
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("must be a duration like 250ms or 2m")
	}
	if d < 0 {
		return fmt.Errorf("must not be negative")
	}
	return nil
}

func validateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return fmt.Errorf("must start with http:// or https://")
	}
	return nil
}

// atoi and duration are only called on values that passed validation.
func atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(strings.TrimSpace(s))
	return d
}

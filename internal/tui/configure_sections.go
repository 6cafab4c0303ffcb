package tui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/leonardotrapani/voxnote/internal/config"
)

// Each editor writes back into cfg only after its form completes.

func editServer(cfg *config.Config) error {
	baseURL := cfg.Server.BaseURL
	timeout := cfg.Server.Timeout.String()
	token := cfg.Server.Token
	cookie := cfg.Server.Cookie

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("Base URL of the transcription server").
				Placeholder("http://127.0.0.1:5000").
				Value(&baseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("Request Timeout").
				Description("Upload and transcription can take a while for long recordings").
				Placeholder("2m").
				Value(&timeout).
				Validate(validateDuration),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Bearer Token").
				Description("Leave empty to use $"+config.TokenEnvVar+" or no token").
				EchoMode(huh.EchoModePassword).
				Value(&token),
			huh.NewInput().
				Title("Session Cookie").
				Description("Cookie header for servers that use login sessions, e.g. session=abc").
				Value(&cookie),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Server.BaseURL = strings.TrimSpace(baseURL)
	cfg.Server.Timeout = duration(timeout)
	cfg.Server.Token = strings.TrimSpace(token)
	cfg.Server.Cookie = strings.TrimSpace(cookie)
	return nil
}

func editRecording(cfg *config.Config) error {
	sampleRate := strconv.Itoa(cfg.Recording.SampleRate)
	channels := strconv.Itoa(cfg.Recording.Channels)
	device := cfg.Recording.Device
	timeslice := cfg.Recording.Timeslice.String()
	accessTimeout := cfg.Recording.AccessTimeout.String()

	channelOptions := []huh.Option[string]{
		huh.NewOption("1 (Mono) - Recommended", "1"),
		huh.NewOption("2 (Stereo)", "2"),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Sample Rate (Hz)").
				Description("16000 is optimal for speech recognition.").
				Placeholder("16000").
				Value(&sampleRate).
				Validate(validatePositiveInt),
			huh.NewSelect[string]().
				Title("Channels").
				Options(channelOptions...).
				Value(&channels),
			huh.NewInput().
				Title("Device").
				Description("PipeWire target node. Leave empty for the default source.").
				Value(&device),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Timeslice").
				Description("How often captured audio is appended to the recording").
				Placeholder("250ms").
				Value(&timeslice).
				Validate(validateDuration),
			huh.NewInput().
				Title("Access Timeout").
				Description("How long to wait for the microphone to start").
				Placeholder("5s").
				Value(&accessTimeout).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Recording.SampleRate = atoi(sampleRate)
	cfg.Recording.Channels = atoi(channels)
	cfg.Recording.Device = strings.TrimSpace(device)
	cfg.Recording.Timeslice = duration(timeslice)
	cfg.Recording.AccessTimeout = duration(accessTimeout)
	return nil
}

func editVisualizer(cfg *config.Config) error {
	enabled := cfg.Visualizer.Enabled
	fps := strconv.Itoa(cfg.Visualizer.FPS)
	width := strconv.Itoa(cfg.Visualizer.Width)
	height := strconv.Itoa(cfg.Visualizer.Height)

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Show live level bars while recording?").
				Description("Only used by voxnote record in a terminal").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewInput().Title("Frames per second").Value(&fps).Validate(validatePositiveInt),
			huh.NewInput().Title("Width (columns)").Value(&width).Validate(validatePositiveInt),
			huh.NewInput().Title("Height (rows)").Value(&height).Validate(validatePositiveInt),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Visualizer.Enabled = enabled
	cfg.Visualizer.FPS = atoi(fps)
	cfg.Visualizer.Width = atoi(width)
	cfg.Visualizer.Height = atoi(height)
	return nil
}

func editSession(cfg *config.Config) error {
	title := cfg.Session.DefaultTitle
	autoSubmit := cfg.Session.AutoSubmit
	historySize := strconv.Itoa(cfg.Session.HistorySize)
	retryDelay := cfg.Session.RetryDelay.String()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Default Title").
				Description("Used when a recording is submitted without a title").
				Placeholder("Voice Recording").
				Value(&title),
			huh.NewConfirm().
				Title("Submit automatically when recording stops?").
				Value(&autoSubmit),
			huh.NewInput().
				Title("History Size").
				Description("Recent transcriptions kept in memory").
				Value(&historySize).
				Validate(validateNonNegativeInt),
			huh.NewInput().
				Title("Retry Delay").
				Description("Wait before the single automatic retry on network failure").
				Placeholder("1s").
				Value(&retryDelay).
				Validate(validateDuration),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Session.DefaultTitle = strings.TrimSpace(title)
	cfg.Session.AutoSubmit = autoSubmit
	cfg.Session.HistorySize = atoi(historySize)
	cfg.Session.RetryDelay = duration(retryDelay)
	return nil
}

func editNavigation(cfg *config.Config) error {
	mode := cfg.Navigation.Mode

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("After Submit").
				Description("What to do with the transcription link").
				Options(
					huh.NewOption("Open in browser (xdg-open)", "browser"),
					huh.NewOption("Copy to clipboard (wl-copy)", "clipboard"),
					huh.NewOption("Print to terminal", "print"),
					huh.NewOption("Nothing", "none"),
				).
				Value(&mode),
		),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Navigation.Mode = mode
	return nil
}

func editNotifications(cfg *config.Config) error {
	enabled := cfg.Notifications.Enabled
	notifType := cfg.Notifications.Type
	if notifType == "" {
		notifType = "desktop"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Enable notifications?").
				Description("Show session results and errors").
				Value(&enabled),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Notification Type").
				Description("How should notifications be displayed?").
				Options(
					huh.NewOption("Desktop notifications (notify-send)", "desktop"),
					huh.NewOption("Log to console only", "log"),
					huh.NewOption("None (silent)", "none"),
				).
				Value(&notifType),
		).WithHideFunc(func() bool { return !enabled }),
	).WithTheme(getTheme())

	if err := form.Run(); err != nil {
		return err
	}

	cfg.Notifications.Enabled = enabled
	cfg.Notifications.Type = notifType
	return nil
}

package config

import "time"

// DefaultConfig returns the configuration written on first run.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: 2 * time.Minute,
		},
		Recording: RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        8192,
			Device:            "",
			ChannelBufferSize: 30,
			Timeslice:         250 * time.Millisecond,
			AccessTimeout:     5 * time.Second,
		},
		Visualizer: VisualizerConfig{
			Enabled: true,
			FPS:     30,
			Width:   64,
			Height:  4,
		},
		Session: SessionConfig{
			DefaultTitle: "Voice Recording",
			AutoSubmit:   true,
			HistorySize:  20,
			RetryDelay:   time.Second,
		},
		Navigation: NavigationConfig{
			Mode: "browser",
		},
		Notifications: NotificationsConfig{
			Enabled: true,
			Type:    "desktop",
			Timeout: 5 * time.Second,
		},
	}
}

package config

import "time"

type Config struct {
	Server        ServerConfig        `toml:"server"`
	Recording     RecordingConfig     `toml:"recording"`
	Visualizer    VisualizerConfig    `toml:"visualizer"`
	Session       SessionConfig       `toml:"session"`
	Navigation    NavigationConfig    `toml:"navigation"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ServerConfig points at the transcription web app.
type ServerConfig struct {
	BaseURL string        `toml:"base_url"`
	Timeout time.Duration `toml:"timeout"`
	Cookie  string        `toml:"cookie"` // sent verbatim, e.g. "session=..."
	Token   string        `toml:"token"`  // bearer token, or VOXNOTE_TOKEN
}

type RecordingConfig struct {
	SampleRate        int           `toml:"sample_rate"`
	Channels          int           `toml:"channels"`
	Format            string        `toml:"format"`
	BufferSize        int           `toml:"buffer_size"`
	Device            string        `toml:"device"`
	ChannelBufferSize int           `toml:"channel_buffer_size"`
	Timeslice         time.Duration `toml:"timeslice"`
	AccessTimeout     time.Duration `toml:"access_timeout"`
}

type VisualizerConfig struct {
	Enabled bool `toml:"enabled"`
	FPS     int  `toml:"fps"`
	Width   int  `toml:"width"`
	Height  int  `toml:"height"`
}

type SessionConfig struct {
	DefaultTitle string        `toml:"default_title"`
	AutoSubmit   bool          `toml:"auto_submit"`
	HistorySize  int           `toml:"history_size"`
	RetryDelay   time.Duration `toml:"retry_delay"`
}

type NavigationConfig struct {
	Mode string `toml:"mode"` // "browser", "clipboard", "print", "none"
}

type NotificationsConfig struct {
	Enabled bool          `toml:"enabled"`
	Type    string        `toml:"type"` // "desktop", "log", "none"
	Timeout time.Duration `toml:"timeout"`
}

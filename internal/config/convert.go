package config

import (
	"os"

	"github.com/leonardotrapani/voxnote/internal/capture"
	"github.com/leonardotrapani/voxnote/internal/gateway"
	"github.com/leonardotrapani/voxnote/internal/notify"
	"github.com/leonardotrapani/voxnote/internal/recording"
	"github.com/leonardotrapani/voxnote/internal/visualizer"
)

const TokenEnvVar = "VOXNOTE_TOKEN"

func (c *Config) ToCaptureConfig() capture.Config {
	return capture.Config{
		SampleRate:        c.Recording.SampleRate,
		Channels:          c.Recording.Channels,
		Format:            c.Recording.Format,
		BufferSize:        c.Recording.BufferSize,
		Device:            c.Recording.Device,
		ChannelBufferSize: c.Recording.ChannelBufferSize,
		AccessTimeout:     c.Recording.AccessTimeout,
	}
}

func (c *Config) ToRecordingConfig() recording.Config {
	return recording.Config{
		Timeslice: c.Recording.Timeslice,
	}
}

func (c *Config) ToGatewayConfig() gateway.Config {
	config := gateway.Config{
		BaseURL:      c.Server.BaseURL,
		Timeout:      c.Server.Timeout,
		Cookie:       c.Server.Cookie,
		Token:        c.Server.Token,
		DefaultTitle: c.Session.DefaultTitle,
	}

	if config.Token == "" {
		config.Token = os.Getenv(TokenEnvVar)
	}

	return config
}

func (c *Config) ToVisualizerConfig() visualizer.Config {
	return visualizer.Config{
		FPS:      c.Visualizer.FPS,
		Width:    c.Visualizer.Width,
		Height:   c.Visualizer.Height,
		BarWidth: 1,
	}
}

// NewNotifier builds the notifier selected by the notifications section.
func (c *Config) NewNotifier() (notify.Notifier, error) {
	if !c.Notifications.Enabled {
		return notify.Nop{}, nil
	}
	return notify.New(c.Notifications.Type, c.Notifications.Timeout)
}

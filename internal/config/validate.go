package config

import (
	"fmt"
	"net/url"
)

func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return fmt.Errorf("invalid server.base_url: empty")
	}
	u, err := url.Parse(c.Server.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server.base_url: %s (must be an http or https URL)", c.Server.BaseURL)
	}
	if c.Server.Timeout <= 0 {
		return fmt.Errorf("invalid server.timeout: %v", c.Server.Timeout)
	}

	if c.Recording.SampleRate <= 0 {
		return fmt.Errorf("invalid recording.sample_rate: %d", c.Recording.SampleRate)
	}
	if c.Recording.Channels <= 0 {
		return fmt.Errorf("invalid recording.channels: %d", c.Recording.Channels)
	}
	if c.Recording.BufferSize <= 0 {
		return fmt.Errorf("invalid recording.buffer_size: %d", c.Recording.BufferSize)
	}
	if c.Recording.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid recording.channel_buffer_size: %d", c.Recording.ChannelBufferSize)
	}
	if c.Recording.Format != "s16" {
		return fmt.Errorf("invalid recording.format: %q (only s16 is supported)", c.Recording.Format)
	}
	if c.Recording.Timeslice <= 0 {
		return fmt.Errorf("invalid recording.timeslice: %v", c.Recording.Timeslice)
	}
	if c.Recording.AccessTimeout <= 0 {
		return fmt.Errorf("invalid recording.access_timeout: %v", c.Recording.AccessTimeout)
	}

	if c.Visualizer.Enabled {
		if c.Visualizer.FPS <= 0 || c.Visualizer.FPS > 120 {
			return fmt.Errorf("invalid visualizer.fps: %d (must be 1-120)", c.Visualizer.FPS)
		}
		if c.Visualizer.Width <= 0 {
			return fmt.Errorf("invalid visualizer.width: %d", c.Visualizer.Width)
		}
		if c.Visualizer.Height <= 0 {
			return fmt.Errorf("invalid visualizer.height: %d", c.Visualizer.Height)
		}
	}

	if c.Session.HistorySize < 0 {
		return fmt.Errorf("invalid session.history_size: %d", c.Session.HistorySize)
	}
	if c.Session.RetryDelay < 0 {
		return fmt.Errorf("invalid session.retry_delay: %v", c.Session.RetryDelay)
	}

	validModes := map[string]bool{"browser": true, "clipboard": true, "print": true, "none": true}
	if !validModes[c.Navigation.Mode] {
		return fmt.Errorf("invalid navigation.mode: %s (must be browser, clipboard, print, or none)", c.Navigation.Mode)
	}

	validTypes := map[string]bool{"desktop": true, "log": true, "none": true}
	if !validTypes[c.Notifications.Type] {
		return fmt.Errorf("invalid notifications.type: %s (must be desktop, log, or none)", c.Notifications.Type)
	}
	if c.Notifications.Timeout < 0 {
		return fmt.Errorf("invalid notifications.timeout: %v", c.Notifications.Timeout)
	}

	return nil
}

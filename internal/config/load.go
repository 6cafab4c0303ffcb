package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

func GetConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}

	voxnoteDir := filepath.Join(configDir, "voxnote")
	if err := os.MkdirAll(voxnoteDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(voxnoteDir, "config.toml"), nil
}

// Load reads the config file, creating it with defaults on first run. Keys
// missing from the file keep their default values.
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Printf("Config: no config file found at %s, creating with defaults", configPath)
		if err := SaveDefaultConfig(); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to stat config file %s: %w", configPath, err)
	}

	log.Printf("Config: loading configuration from %s", configPath)
	config := DefaultConfig()
	meta, err := toml.DecodeFile(configPath, config)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		log.Printf("Config: ignoring unknown keys: %v", undecoded)
	}

	log.Printf("Config: configuration loaded successfully")
	return config, nil
}

// Save writes config to the config path, replacing the file.
func Save(config *Config) error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	tmp := configPath + ".tmp"
	file, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}

	fmt.Fprintln(file, "# Voxnote Configuration")
	fmt.Fprintln(file, "# Edit values as needed - changes are applied immediately without daemon restart.")
	fmt.Fprintln(file)
	if err := toml.NewEncoder(file).Encode(config); err != nil {
		file.Close()
		os.Remove(tmp)
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to write config: %w", err)
	}

	return os.Rename(tmp, configPath)
}

func SaveDefaultConfig() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	file, err := os.Create(configPath)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	configContent := `# Voxnote Configuration
# This file is automatically generated with defaults.
# Edit values as needed - changes are applied immediately without daemon restart.

# Transcription Server
[server]
  base_url = "http://127.0.0.1:5000"  # Web app that serves /transcribe_recording
  timeout = "2m"                      # Upload + transcription time limit per attempt
  cookie = ""                         # Optional Cookie header, e.g. "session=..."
  token = ""                          # Optional bearer token (or set VOXNOTE_TOKEN)

# Audio Recording Configuration
[recording]
  sample_rate = 16000          # Audio sample rate in Hz (16000 recommended for speech)
  channels = 1                 # Number of audio channels (1 = mono, 2 = stereo)
  format = "s16"               # Audio format (s16 = 16-bit signed integers)
  buffer_size = 8192           # Internal buffer size in bytes (larger = less CPU, more latency)
  device = ""                  # PipeWire audio device (empty = use default microphone)
  channel_buffer_size = 30     # Audio frame buffer size (frames to buffer)
  timeslice = "250ms"          # How often a recorded fragment is emitted
  access_timeout = "5s"        # How long to wait for the microphone to deliver audio

# Live Level Display (foreground "voxnote record" only)
[visualizer]
  enabled = true
  fps = 30
  width = 64                   # Columns
  height = 4                   # Rows

# Recording Session
[session]
  default_title = "Voice Recording"  # Title used when none is given
  auto_submit = true                 # Submit as soon as a toggled recording stops
  history_size = 20                  # Recent transcriptions kept in memory
  retry_delay = "1s"                 # Pause before the single automatic retry

# Where to send you after a successful submission
[navigation]
  mode = "browser"             # "browser" (xdg-open), "clipboard" (wl-copy), "print", "none"

# Desktop Notification Configuration
[notifications]
  enabled = true               # Enable desktop notifications
  type = "desktop"             # Notification type ("desktop", "log", "none")
  timeout = "5s"               # How long a notification stays up
`

	if _, err := file.WriteString(configContent); err != nil {
		return fmt.Errorf("failed to write config content: %w", err)
	}

	return nil
}

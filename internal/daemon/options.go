package daemon

import (
	"fmt"
	"io"

	"github.com/leonardotrapani/voxnote/internal/capture"
	"github.com/leonardotrapani/voxnote/internal/config"
	"github.com/leonardotrapani/voxnote/internal/gateway"
	"github.com/leonardotrapani/voxnote/internal/session"
)

// SessionOptions wires the collaborators selected by cfg into controller
// options. out receives result URLs when navigation mode is "print".
func SessionOptions(cfg *config.Config, out io.Writer) (session.Options, error) {
	notifier, err := cfg.NewNotifier()
	if err != nil {
		return session.Options{}, fmt.Errorf("notifier: %w", err)
	}

	navigator, err := session.NewNavigator(cfg.Navigation.Mode, out)
	if err != nil {
		return session.Options{}, fmt.Errorf("navigator: %w", err)
	}

	return session.Options{
		Source:       capture.NewPipeWire(cfg.ToCaptureConfig()),
		Gateway:      gateway.New(cfg.ToGatewayConfig()),
		Notifier:     notifier,
		Navigator:    navigator,
		Visualizer:   cfg.ToVisualizerConfig(),
		Recording:    cfg.ToRecordingConfig(),
		DefaultTitle: cfg.Session.DefaultTitle,
		HistorySize:  cfg.Session.HistorySize,
		RetryDelay:   cfg.Session.RetryDelay,
	}, nil
}

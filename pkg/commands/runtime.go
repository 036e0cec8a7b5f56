package commands

import (
	"io"
	"log/slog"

	"tableflip.dev/dynlink/pkg/app"
	"tableflip.dev/dynlink/pkg/config"
	"tableflip.dev/dynlink/pkg/firebase"
	"tableflip.dev/dynlink/pkg/history"
)

// runtime is the wired service for one command invocation.
type runtime struct {
	cfg *config.Config
	svc *app.Service
	log *slog.Logger
}

// newRuntime loads configuration and wires the Firebase client and the
// history store. Logs go to logOut.
func newRuntime(logOut io.Writer) (*runtime, error) {
	cfg, err := co.Load()
	if err != nil {
		return nil, err
	}
	return wire(cfg, logOut)
}

func wire(cfg *config.Config, logOut io.Writer) (*runtime, error) {
	log := cfg.NewLogger(logOut)

	client := firebase.New(firebase.Config{
		APIKey:   cfg.APIKey,
		Endpoint: cfg.Endpoint,
		Timeout:  cfg.Timeout,
		RetryMax: cfg.RetryMax,
		Log:      log,
	})

	var store history.Store = history.Nop{}
	if cfg.History.Enabled {
		path, err := cfg.HistoryPath()
		if err != nil {
			return nil, err
		}
		if store, err = history.Open(path, log); err != nil {
			return nil, err
		}
	}

	return &runtime{
		cfg: cfg,
		log: log,
		svc: &app.Service{
			Linker:  client,
			History: store,
			Options: cfg.LinkOptions(),
			Log:     log,
		},
	}, nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ayusman/ganita/internal/app"
	"github.com/ayusman/ganita/internal/capture"
	"github.com/ayusman/ganita/internal/config"
	"github.com/ayusman/ganita/internal/log"
	"github.com/ayusman/ganita/internal/narrator"
	"github.com/ayusman/ganita/internal/server"
	"github.com/ayusman/ganita/internal/store"
	"github.com/ayusman/ganita/internal/tray"
)

// narrationDrain bounds how long shutdown waits for queued speech.
const narrationDrain = 5 * time.Second

func run(ctx context.Context, cfg config.Config) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.UI.Tray {
		cfg.UI.Headless = true
	}

	narr := narrator.New(app.NewSpeaker(cfg))
	defer func() {
		drainCtx, drainCancel := context.WithTimeout(context.Background(), narrationDrain)
		defer drainCancel()
		if err := narr.Close(drainCtx); err != nil {
			log.Warn("failed to close speech engine", "error", err)
		}
	}()

	var st *store.Store
	if cfg.History.Enabled {
		var err error
		st, err = store.New(cfg.History.DB)
		if err != nil {
			return fmt.Errorf("failed to initialize store: %w", err)
		}
		defer st.Close()
		log.Info("recording calculations", "db", cfg.History.DB)
	}

	det := app.NewDetector(cfg)
	defer det.Close()

	disp := app.NewDisplay(cfg)
	defer disp.Close()

	var (
		frames *server.FrameBuffer
		events *server.EventHub
	)
	if cfg.Server.Listen != "" {
		frames = server.NewFrameBuffer()
		events = server.NewEventHub()
	}

	var tr *tray.Tray
	if cfg.UI.Tray {
		tr = tray.New()
		tr.OnQuit(cancel)
	}

	a, err := app.New(app.Config{
		Camera:       capture.NewCamera(app.CaptureConfig(cfg)),
		Detector:     det,
		Display:      disp,
		Narrator:     narr,
		Debouncer:    app.NewDebouncer(cfg),
		CameraDevice: cfg.Camera.Device,
		Store:        st,
		Frames:       frames,
		Events:       events,
		OnAccepted: func(acc app.Accepted) {
			if tr != nil {
				tr.SetDisplay(acc.State.Display())
				tr.SetLastGesture(string(acc.Label))
			}
		},
	})
	if err != nil {
		return err
	}

	if cfg.Server.Listen != "" {
		srv := server.New(server.Config{
			StaticDir: cfg.Server.StaticDir,
			Store:     st,
			Status:    a.Status,
			Frames:    frames,
			Events:    events,
		})
		go func() {
			if err := srv.ListenAndServe(ctx, cfg.Server.Listen); err != nil {
				log.Error("http server failed", "error", err)
			}
		}()
	}

	if tr == nil {
		return a.Run(ctx)
	}

	// The tray owns the main thread; the frame loop runs beside it.
	errCh := make(chan error, 1)
	go func() {
		errCh <- a.Run(ctx)
		tr.Quit()
	}()
	tr.Run()
	cancel()

	err = <-errCh
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

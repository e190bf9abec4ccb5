package app

import (
	"github.com/ayusman/ganita/internal/capture"
	"github.com/ayusman/ganita/internal/config"
	"github.com/ayusman/ganita/internal/detector"
	"github.com/ayusman/ganita/internal/display"
	"github.com/ayusman/ganita/internal/gesture"
	"github.com/ayusman/ganita/internal/log"
	"github.com/ayusman/ganita/internal/narrator"
)

// CaptureConfig converts the camera settings.
func CaptureConfig(cfg config.Config) capture.Config {
	return capture.Config{
		Device: cfg.Camera.Device,
		Width:  cfg.Camera.Width,
		Height: cfg.Camera.Height,
		FPS:    cfg.Camera.FPS,
		Mirror: cfg.Camera.Mirror,
	}
}

// DetectorConfig converts the detector settings.
func DetectorConfig(cfg config.Config) detector.Config {
	d := detector.DefaultConfig()
	d.MinConfidence = cfg.Detector.MinConfidence
	d.Script = cfg.Detector.Script
	d.Python = cfg.Detector.Python
	return d
}

// NewDetector starts the MediaPipe detector, falling back to a mock that
// never sees a hand when the service is not installed.
func NewDetector(cfg config.Config) detector.Detector {
	mp, err := detector.NewMediaPipeDetector(DetectorConfig(cfg))
	if err != nil {
		log.Warn("MediaPipe not available, using mock detector", "error", err)
		return detector.NewMockDetector()
	}
	log.Info("using MediaPipe hand detection")
	return mp
}

// NewSpeaker returns the configured speech engine, or a LogSpeaker when none
// is installed.
func NewSpeaker(cfg config.Config) narrator.Speaker {
	s, err := narrator.NewCommandSpeaker(cfg.Speech.Command, cfg.Speech.Rate)
	if err != nil {
		log.Warn("speech disabled, narrating to the log", "error", err)
		return narrator.LogSpeaker{}
	}
	return s
}

// NewDisplay returns a window, or a headless display when configured.
func NewDisplay(cfg config.Config) display.Display {
	if cfg.UI.Headless {
		return display.NewHeadless()
	}
	return display.NewWindow(cfg.UI.Window)
}

// NewDebouncer builds the debounce filter from the gesture settings.
func NewDebouncer(cfg config.Config) *gesture.Debouncer {
	return gesture.NewDebouncer(cfg.Gesture.ConfirmFrames, cfg.Gesture.Cooldown)
}

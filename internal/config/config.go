// Package config loads ganita settings from defaults, a YAML file, GANITA_*
// environment variables and command line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. GANITA_CAMERA_DEVICE.
const EnvPrefix = "GANITA"

// Config is the full application configuration.
type Config struct {
	Camera   CameraConfig   `mapstructure:"camera"`
	Detector DetectorConfig `mapstructure:"detector"`
	Gesture  GestureConfig  `mapstructure:"gesture"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	UI       UIConfig       `mapstructure:"ui"`
	History  HistoryConfig  `mapstructure:"history"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

type CameraConfig struct {
	Device int  `mapstructure:"device"`
	Width  int  `mapstructure:"width"`
	Height int  `mapstructure:"height"`
	FPS    int  `mapstructure:"fps"`
	Mirror bool `mapstructure:"mirror"`
}

type DetectorConfig struct {
	Script        string  `mapstructure:"script"`
	Python        string  `mapstructure:"python"`
	MinConfidence float64 `mapstructure:"min_confidence"`
}

type GestureConfig struct {
	ConfirmFrames int           `mapstructure:"confirm_frames"`
	Cooldown      time.Duration `mapstructure:"cooldown"`
}

type SpeechConfig struct {
	// Command is the text-to-speech program. Empty selects the platform default.
	Command string `mapstructure:"command"`
	Rate    int    `mapstructure:"rate"`
}

type UIConfig struct {
	Window   string `mapstructure:"window"`
	Headless bool   `mapstructure:"headless"`
	Tray     bool   `mapstructure:"tray"`
}

type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	DB      string `mapstructure:"db"`
}

type ServerConfig struct {
	// Listen is the HTTP address. Empty disables the server.
	Listen string `mapstructure:"listen"`
	// StaticDir, when set, is served at / next to the API.
	StaticDir string `mapstructure:"static_dir"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Camera: CameraConfig{
			Device: 0,
			Width:  640,
			Height: 480,
			FPS:    30,
			Mirror: true,
		},
		Detector: DetectorConfig{
			MinConfidence: 0.7,
		},
		Gesture: GestureConfig{
			ConfirmFrames: 5,
			Cooldown:      800 * time.Millisecond,
		},
		Speech: SpeechConfig{
			Rate: 160,
		},
		UI: UIConfig{
			Window: "Hand Gesture Calculator",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every default with v so that env and file overrides
// apply per key.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("camera.device", d.Camera.Device)
	v.SetDefault("camera.width", d.Camera.Width)
	v.SetDefault("camera.height", d.Camera.Height)
	v.SetDefault("camera.fps", d.Camera.FPS)
	v.SetDefault("camera.mirror", d.Camera.Mirror)
	v.SetDefault("detector.script", d.Detector.Script)
	v.SetDefault("detector.python", d.Detector.Python)
	v.SetDefault("detector.min_confidence", d.Detector.MinConfidence)
	v.SetDefault("gesture.confirm_frames", d.Gesture.ConfirmFrames)
	v.SetDefault("gesture.cooldown", d.Gesture.Cooldown)
	v.SetDefault("speech.command", d.Speech.Command)
	v.SetDefault("speech.rate", d.Speech.Rate)
	v.SetDefault("ui.window", d.UI.Window)
	v.SetDefault("ui.headless", d.UI.Headless)
	v.SetDefault("ui.tray", d.UI.Tray)
	v.SetDefault("history.enabled", d.History.Enabled)
	v.SetDefault("history.db", d.History.DB)
	v.SetDefault("server.listen", d.Server.Listen)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("log.level", d.Log.Level)
}

// Setup points v at the config file and environment. An empty file searches
// ~/.ganita and the working directory for config.yaml.
func Setup(v *viper.Viper, file string) error {
	SetDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}

	cfg.History.DB = ExpandPath(cfg.History.DB)
	cfg.Detector.Script = ExpandPath(cfg.Detector.Script)
	cfg.Server.StaticDir = ExpandPath(cfg.Server.StaticDir)
	if cfg.History.Enabled && cfg.History.DB == "" {
		dir, err := Dir()
		if err != nil {
			return Config{}, err
		}
		cfg.History.DB = filepath.Join(dir, "ganita.db")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the frame loop cannot run with.
func (c Config) Validate() error {
	var errs []error
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		errs = append(errs, fmt.Errorf("camera size must be positive, got %dx%d", c.Camera.Width, c.Camera.Height))
	}
	if c.Camera.FPS <= 0 {
		errs = append(errs, fmt.Errorf("camera.fps must be positive, got %d", c.Camera.FPS))
	}
	if c.Camera.Device < 0 {
		errs = append(errs, fmt.Errorf("camera.device must not be negative, got %d", c.Camera.Device))
	}
	if c.Gesture.ConfirmFrames <= 0 {
		errs = append(errs, fmt.Errorf("gesture.confirm_frames must be positive, got %d", c.Gesture.ConfirmFrames))
	}
	if c.Gesture.Cooldown < 0 {
		errs = append(errs, fmt.Errorf("gesture.cooldown must not be negative, got %s", c.Gesture.Cooldown))
	}
	if c.Detector.MinConfidence < 0 || c.Detector.MinConfidence > 1 {
		errs = append(errs, fmt.Errorf("detector.min_confidence must be in [0,1], got %g", c.Detector.MinConfidence))
	}
	if c.Speech.Rate <= 0 {
		errs = append(errs, fmt.Errorf("speech.rate must be positive, got %d", c.Speech.Rate))
	}
	return errors.Join(errs...)
}

// Dir returns ~/.ganita.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".ganita"), nil
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}

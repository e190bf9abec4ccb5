package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ayusman/ganita/internal/config"
	"github.com/ayusman/ganita/internal/log"
)

var (
	cfgFile string
	version = "dev"
	cfg     config.Config
	rootCmd = &cobra.Command{
		Use:   "ganita",
		Short: "Hand gesture calculator",
		Long: `ganita: a webcam calculator driven by hand gestures.

Show 0-4 fingers to enter digits. V sign adds, thumb alone subtracts,
three tight fingers multiply, an L shape divides, two tight fingers
evaluate and an open palm clears. Press q in the window to quit.

Hand tracking runs scripts/mediapipe_service.py with Python
(pip install mediapipe opencv-python numpy). The script is looked up in
./scripts, next to the binary and in ~/.ganita/scripts; set
detector.script (GANITA_DETECTOR_SCRIPT) to point elsewhere and
detector.python to pick the interpreter. Without it no hand is detected.`,
		PersistentPreRunE: initConfig,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), cfg)
		},
		SilenceUsage: true,
	}
)

func init() {
	// OpenCV windows and the system tray must run on the main thread.
	runtime.LockOSThread()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.ganita/config.yaml)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	local := rootCmd.Flags()
	local.Int("camera", 0, "camera device index")
	local.Bool("headless", false, "run without a preview window")
	local.Bool("tray", false, "run headless with a system tray menu")
	local.String("listen", "", "serve the HTTP status API on this address, e.g. 127.0.0.1:8090")
	local.Bool("history", false, "record calculations to the local database")
	local.String("speech", "", "text-to-speech command (default: say on macOS, espeak elsewhere)")

	// Bind flags to viper
	_ = viper.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = viper.BindPFlag("camera.device", local.Lookup("camera"))
	_ = viper.BindPFlag("ui.headless", local.Lookup("headless"))
	_ = viper.BindPFlag("ui.tray", local.Lookup("tray"))
	_ = viper.BindPFlag("server.listen", local.Lookup("listen"))
	_ = viper.BindPFlag("history.enabled", local.Lookup("history"))
	_ = viper.BindPFlag("speech.command", local.Lookup("speech"))

	rootCmd.AddCommand(versionCmd())
	rootCmd.AddCommand(configCmd())
}

func main() {
	ctx, stop := signalContext()

	err := rootCmd.ExecuteContext(ctx)
	if ctx.Err() != nil {
		log.Info("Received interrupt signal, shut down gracefully")
	}
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func initConfig(_ *cobra.Command, _ []string) error {
	v := viper.GetViper()
	if err := config.Setup(v, cfgFile); err != nil {
		return err
	}

	loaded, err := config.Load(v)
	if err != nil {
		return err
	}
	cfg = loaded

	log.Init(cfg.Log.Level)
	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("loaded config", "file", used)
	}
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ganita %s\n", version)
		},
	}
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, key := range viper.AllKeys() {
				fmt.Fprintf(out, "%s: %v\n", key, viper.Get(key))
			}
			return nil
		},
	}
}

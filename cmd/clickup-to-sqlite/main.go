// Command clickup-to-sqlite saves the data of a ClickUp account to a SQLite
// database.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gregmuellegger/clickup-to-sqlite/internal/clickup"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/config"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/logging"
	"github.com/gregmuellegger/clickup-to-sqlite/internal/ui"
)

var (
	v = config.NewViper()

	configPath string
	cfg        *config.Config
	logger     = slog.Default()
	logFile    string
	closeLog   = func() error { return nil }

	stderr io.Writer = os.Stderr
)

var rootCmd = &cobra.Command{
	Use:   "clickup-to-sqlite",
	Short: "Save data from ClickUp to a SQLite database",
	Long: `Fetch teams, members, spaces, folders, lists, tasks and time entries from
ClickUp and upsert them into a local SQLite database.

The access token is read from --access-token, $CLICKUP_ACCESS_TOKEN or the
config file, in that order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(v, configPath)
		if err != nil {
			return err
		}

		l, closeFn, err := logging.New(logging.Options{
			Level:  cfg.Log.Level,
			Format: cfg.Log.Format,
			File:   cfg.Log.File,
		})
		if err != nil {
			return err
		}
		logger, closeLog, logFile = l, closeFn, cfg.Log.File
		slog.SetDefault(logger)
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "config file (default $XDG_CONFIG_HOME/clickup-to-sqlite/config.toml)")
	flags.String("access-token", "", "ClickUp API access token")
	flags.String("log-level", "", "log level: debug, info, warn, error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("log-file", "", "write logs to this file instead of stderr")

	_ = v.BindPFlag(config.KeyAccessToken, flags.Lookup("access-token"))
	_ = v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(config.KeyLogFormat, flags.Lookup("log-format"))
	_ = v.BindPFlag(config.KeyLogFile, flags.Lookup("log-file"))
}

// newClient returns an API client configured from cfg.
func newClient(token string) (*clickup.Client, error) {
	timeout, err := cfg.Timeout()
	if err != nil {
		return nil, err
	}
	return clickup.New(token,
		clickup.WithBaseURL(cfg.APIURL),
		clickup.WithHTTPClient(&http.Client{Timeout: timeout}),
		clickup.WithLogger(logger),
	), nil
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	defer func() { _ = closeLog() }()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("command failed", logging.ErrorAttrs(err)...)
		// Logs written to a file are not seen on the terminal.
		if logFile != "" {
			fmt.Fprintf(stderr, "%s %v\n", ui.RenderFail("Error:"), err)
		}
		return 1
	}
	return 0
}

// Command harvest crawls the news listing and uploads article images and
// attachments.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"seoul-news-harvester/internal/bootstrap"
	"seoul-news-harvester/internal/config"
)

// version is set with -ldflags "-X main.version=...".
var version = "dev"

var (
	cfgFile string
	debug   bool
)

func main() {
	err := execute()
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		fmt.Fprintln(os.Stderr, "interrupted")
		os.Exit(130)
	default:
		// startup failures land here too, as *bootstrap.StartupError
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func execute() error {
	// .env is optional
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "harvest",
		Short:         "Harvest images and PDF attachments from news listing pages",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "harvest version %s\n", version)
		},
	})
	root.AddCommand(newCrawlCmd())
	return root
}

// loadConfig resolves defaults, the config file, HARVEST_* variables and the
// flags bound to v by the caller.
func loadConfig(v *viper.Viper) (*config.Config, error) {
	if debug {
		v.Set("logging.level", "debug")
	}
	cfg, err := config.Load(v)
	if err != nil {
		return nil, &bootstrap.StartupError{Stage: "config", Err: err}
	}
	return cfg, nil
}

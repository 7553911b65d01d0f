// Command grest issues REST calls through a configured grest client.
//
//	grest --config config.yml endpoints
//	grest --config config.yml call users --id 42
//	grest call auth/login --method post --data '{"user":"ada"}'
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kroma-labs/grest/config"
	"github.com/kroma-labs/grest/grest"
	"github.com/kroma-labs/grest/observer"
)

func main() {
	os.Exit(run(newRootCommand()))
}

// run executes root and returns the process exit code. Request failures are
// already printed as JSON by the call command; any other error is reported
// on stderr here.
func run(root *cobra.Command) int {
	err := root.Execute()
	if err == nil {
		return 0
	}
	var gErr *grest.Error
	if !errors.As(err, &gErr) {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
	}
	return 1
}

// globalFlags are shared by every subcommand.
type globalFlags struct {
	configFile string
	envFile    string
	verbose    bool
}

func newRootCommand() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "grest",
		Short:         "Call REST endpoints through a configured grest client",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "config file (YAML, JSON or TOML)")
	pf.StringVar(&flags.envFile, "env-file", "", "dotenv file (default .env when present)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log request lifecycle to stderr")

	root.AddCommand(newCallCommand(flags))
	root.AddCommand(newEndpointsCommand(flags))

	return root
}

// newClient loads configuration and builds the client for cmd.
func newClient(cmd *cobra.Command, flags *globalFlags) (*grest.Client, error) {
	cfg, err := config.Load(config.LoaderConfig{
		ConfigFile: flags.configFile,
		EnvFile:    flags.envFile,
	})
	if err != nil {
		return nil, err
	}

	level := zerolog.WarnLevel
	if flags.verbose {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()}).
		Level(level).
		With().Timestamp().Logger()

	client, err := cfg.NewClient(grest.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	if flags.verbose {
		client.Subscribe("log", observer.NewLogObserver(logger))
	}
	return client, nil
}

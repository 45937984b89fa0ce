package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"logbull/pkg/logbull"
)

type rootFlags struct {
	configPath string
	projectID  string
	host       string
	apiKey     string
	minLevel   string
	console    bool
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "logbull",
		Short:         "Ship log messages to a LogBull server",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pflags := root.PersistentFlags()
	pflags.StringVar(&flags.configPath, "config", "",
		"read settings from a YAML `FILE` (LOGBULL_* variables override it)")
	pflags.StringVar(&flags.projectID, "project-id", "",
		"LogBull project `UUID`")
	pflags.StringVar(&flags.host, "host", "",
		"LogBull server `URL`")
	pflags.StringVar(&flags.apiKey, "api-key", "",
		"API `KEY` sent as X-API-Key")
	pflags.StringVar(&flags.minLevel, "min-level", "",
		"drop messages below `LEVEL`")
	pflags.BoolVar(&flags.console, "console", false,
		"echo shipped messages to the terminal")

	root.AddCommand(newSendCmd(flags), newVersionCmd())
	return root
}

// buildLogger prefers explicit flags, then the config file, then LOGBULL_*
// environment variables. --api-key and --min-level override whichever
// source is used.
func buildLogger(f *rootFlags) (*logbull.Logger, error) {
	opts := []logbull.Option{}
	if f.console {
		opts = append(opts, logbull.WithConsole(true))
	}
	if f.apiKey != "" {
		opts = append(opts, logbull.WithAPIKey(f.apiKey))
	}
	if f.minLevel != "" {
		lvl, err := logbull.ParseLevel(f.minLevel)
		if err != nil {
			return nil, err
		}
		opts = append(opts, logbull.WithMinLevel(lvl))
	}

	if f.projectID == "" && f.host == "" {
		if f.configPath != "" {
			return logbull.FromFile(f.configPath, opts...)
		}
		return logbull.FromEnv(opts...)
	}

	return logbull.New(logbull.NewConfig(f.projectID, f.host, ""), opts...)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

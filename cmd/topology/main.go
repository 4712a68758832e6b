// ABOUTME: CLI entrypoint for the topology tool: parse, inject, and build subcommands.
// ABOUTME: Configures structured logging and binds flags to TOPOLOGY_* environment variables.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HPENetworking/topology-sub000/szn"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "topology",
	Short:   "Parse SZN topology descriptions and build them on a platform",
	Version: version,
	// Errors are reported once by Execute; the usage text only helps for
	// flag mistakes, which cobra reports separately.
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log-level"))
	},
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")

	viper.SetEnvPrefix("TOPOLOGY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// setupLogging installs the process default slog logger at the given level.
// Logs go to stderr so command output on stdout stays machine readable.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q", level)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler))
	return nil
}

// loadTopologyFile reads an SZN document from a file: Python suites carry it
// in their TOPOLOGY constant, anything else is taken verbatim.
func loadTopologyFile(path string) (*szn.Topology, error) {
	var text string
	if strings.HasSuffix(path, ".py") {
		extracted, err := szn.FindTopologyInPython(path)
		if err != nil {
			return nil, err
		}
		text = extracted
	} else {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		text = string(data)
	}
	return szn.Parse(text)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

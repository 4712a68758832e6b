// ABOUTME: The build subcommand: parses a topology, optionally injects attributes,
// ABOUTME: builds it with a platform engine, and tears it down on exit or signal.
package main

import (
	"log/slog"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HPENetworking/topology-sub000/injection"
	"github.com/HPENetworking/topology-sub000/manager"
	"github.com/HPENetworking/topology-sub000/platform"
)

var (
	buildPlatform    string
	buildInjectSpec  string
	buildSearchPaths []string
)

var buildCmd = &cobra.Command{
	Use:   "build <file>",
	Short: "Build a topology with a platform engine, then destroy it",
	Long: `Parse an SZN topology file, optionally overlay attributes resolved
from an injection spec, and drive the selected platform engine through the
build lifecycle. The topology is destroyed before the command returns.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		topo, err := loadTopologyFile(file)
		if err != nil {
			return err
		}

		var overlay *injection.FileInjection
		if spec := viper.GetString("inject"); spec != "" {
			resolver := &injection.Resolver{
				SearchPaths: viper.GetStringSlice("build-search-path"),
				Logger:      slog.Default(),
			}
			result, err := resolver.Resolve(spec)
			if err != nil {
				return err
			}
			overlay = result.File(file)
			if overlay == nil {
				slog.Warn("injection spec matched nothing for this file", "file", file)
			}
		}

		m := manager.New(
			manager.WithEngine(viper.GetString("platform")),
			manager.WithLogger(slog.Default()),
		)
		if err := m.Load(topo, overlay); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if err := m.Build(ctx); err != nil {
			return err
		}
		slog.Info("build complete", "build_id", m.BuildID())
		return m.Destroy(ctx)
	},
}

func init() {
	buildCmd.Flags().StringVar(&buildPlatform, "platform", platform.DefaultName,
		"Platform engine to build with")
	buildCmd.Flags().StringVar(&buildInjectSpec, "inject", "",
		"Attribute injection spec to apply before building")
	buildCmd.Flags().StringSliceVar(&buildSearchPaths, "search-path", nil,
		"Directory to search for injection candidates (repeatable)")
	_ = viper.BindPFlag("platform", buildCmd.Flags().Lookup("platform"))
	_ = viper.BindPFlag("inject", buildCmd.Flags().Lookup("inject"))
	_ = viper.BindPFlag("build-search-path", buildCmd.Flags().Lookup("search-path"))
	rootCmd.AddCommand(buildCmd)
}

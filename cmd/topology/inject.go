// ABOUTME: The inject subcommand: resolves an attribute injection spec against search paths.
// ABOUTME: Prints the resolved per-file overlays as JSON.
package main

import (
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/HPENetworking/topology-sub000/injection"
)

var injectSearchPaths []string

var injectCmd = &cobra.Command{
	Use:   "inject <specfile>",
	Short: "Resolve an attribute injection spec and print the result",
	Long: `Resolve an attribute injection spec (JSON or YAML) against the given
search paths. Candidate files (test_*.py and *.szn, searched recursively,
ignoring hidden directories) are parsed and matched against the spec's file
patterns and element selectors. The resolved per-file attribute overlays are
printed as JSON.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resolver := &injection.Resolver{
			SearchPaths: viper.GetStringSlice("search-path"),
			Logger:      slog.Default(),
		}
		result, err := resolver.Resolve(args[0])
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

func init() {
	injectCmd.Flags().StringSliceVar(&injectSearchPaths, "search-path", nil,
		"Directory to search for matching files (repeatable; default: current directory)")
	_ = viper.BindPFlag("search-path", injectCmd.Flags().Lookup("search-path"))
	rootCmd.AddCommand(injectCmd)
}

package cmd

import (
	"fmt"
	"github.com/ValentinKolb/dSess/cmd/cache"
	"github.com/ValentinKolb/dSess/cmd/serve"
	"github.com/ValentinKolb/dSess/cmd/session"
	"github.com/ValentinKolb/dSess/cmd/util"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
)

const (
	Version = "0.3.0"
)

var (

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "dsess",
		Short: "shared session state and output cache",
		Long: fmt.Sprintf(`dSess (v%s)

Shared session state and output caching for many server processes on top of
a Redis compatible store, with lease based exclusive access, minimal writes
and safe concurrent creation.`, Version),
		SilenceUsage:      true,
		PersistentPreRunE: setupRoot,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			util.PrintMetrics()
		},
	}
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of dSess",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dSess v%s\n", Version)
		},
	}
)

func init() {
	// run the hooks of the root command and of the command groups
	cobra.EnableTraverseRunHooks = true

	// Add Commands
	RootCmd.AddCommand(serve.ServeCmd)
	RootCmd.AddCommand(session.SessionCommands)
	RootCmd.AddCommand(cache.CacheCommands)
	RootCmd.AddCommand(versionCmd)

	// Add Flags
	key := "serializer"
	RootCmd.PersistentFlags().String(key, "binary", util.WrapString("serializer for values (binary, gob, json)"))
	key = "log-level"
	RootCmd.PersistentFlags().String(key, "warn", util.WrapString("level at which logs will be output (debug, info, warn, error)"))
	key = "print-metrics"
	RootCmd.PersistentFlags().Bool(key, false, util.WrapString("print all metrics in the prometheus text format after the command"))
}

// setupRoot binds the global flags and initializes logging
func setupRoot(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Root().PersistentFlags()); err != nil {
		return err
	}
	return util.InitLogging()
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

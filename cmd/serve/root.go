package serve

import (
	"fmt"
	cmdUtil "github.com/ValentinKolb/dSess/cmd/util"
	"github.com/alicebob/miniredis/v2"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"os"
	"os/signal"
	"syscall"
)

var Logger = logger.GetLogger("cli")

var (
	ServeCmd = &cobra.Command{
		Use:   "serve",
		Short: "Start an in-memory store for local development",
		Long: `Start an in-memory, Redis compatible store (with Lua scripting) for local development and testing.
Data is kept in memory only and lost when the process exits. The configuration can be set via command line flags or environment variables. The format of the environment variables is DSESS_<flag> (e.g. DSESS_ENDPOINT=0.0.0.0:6379)`,
		PreRunE: processConfig,
		RunE:    run,
	}
)

func init() {
	// initialize viper
	cobra.OnInitialize(cmdUtil.InitClientConfig)

	// add flags
	key := "endpoint"
	ServeCmd.Flags().String(key, "127.0.0.1:6379", cmdUtil.WrapString("The address on which the store will listen"))

	key = "access-key"
	ServeCmd.Flags().String(key, "", cmdUtil.WrapString("Password that clients have to provide (empty = no authentication)"))
}

// processConfig binds the flags to viper
func processConfig(cmd *cobra.Command, _ []string) error {
	return viper.BindPFlags(cmd.Flags())
}

// run starts the store and blocks until the process is interrupted
func run(_ *cobra.Command, _ []string) error {
	srv := miniredis.NewMiniRedis()
	if key := viper.GetString("access-key"); key != "" {
		srv.RequireAuth(key)
	}

	endpoint := viper.GetString("endpoint")
	if err := srv.StartAddr(endpoint); err != nil {
		return fmt.Errorf("failed to start store on %s: %w", endpoint, err)
	}
	defer srv.Close()

	Logger.Infof("Store listening on %s", srv.Addr())

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	sig := <-stop

	Logger.Infof("Received %s, shutting down", sig)
	return nil
}

package session

import (
	"fmt"
	"github.com/ValentinKolb/dSess/cmd/util"
	"github.com/ValentinKolb/dSess/lib/collection"
	"github.com/ValentinKolb/dSess/lib/lockmgr"
	"github.com/ValentinKolb/dSess/rpc/client"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	conn     *client.SharedConnection
	lockMgr  lockmgr.ILockManager
	leaseSec int

	// SessionCommands represents the session command group
	SessionCommands = &cobra.Command{
		Use:                "session",
		Short:              "Inspect and modify session records",
		PersistentPreRunE:  setupSessionClient,
		PersistentPostRunE: closeSessionClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the session command
	util.SetupClientFlags(SessionCommands)

	SessionCommands.PersistentFlags().IntVar(&leaseSec, "lease", 1200, util.WrapString("Lease of the record in seconds (lock timeout and expiration of the data)"))

	// Add subcommands
	SessionCommands.AddCommand(createCmd)
	SessionCommands.AddCommand(lockCmd)
	SessionCommands.AddCommand(checkCmd)
	SessionCommands.AddCommand(releaseCmd)
	SessionCommands.AddCommand(updateCmd)
	SessionCommands.AddCommand(removeCmd)
	SessionCommands.AddCommand(ageCmd)
	SessionCommands.AddCommand(touchCmd)
	SessionCommands.AddCommand(perfTestCmd)
}

// setupSessionClient initializes the shared connection and the lock manager
func setupSessionClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	var err error
	conn, err = client.GetSharedConnection(util.GetClientConfig())
	if err != nil {
		return err
	}

	lockMgr = lockmgr.NewLockManager(conn.Store, conn.Keys, conn.Serializer)
	leaseSec = viper.GetInt("lease")
	return nil
}

func closeSessionClient(_ *cobra.Command, _ []string) error {
	return client.CloseSharedConnection()
}

// printData prints all entries of a record
func printData(data *collection.ChangeTrackingCollection) error {
	if data == nil || data.Count() == 0 {
		fmt.Println("data: (empty)")
		return nil
	}
	fmt.Println("data:")
	for _, key := range data.Keys() {
		value, _, err := data.Get(key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", key, err)
		}
		fmt.Printf("  %s=%v\n", key, value)
	}
	return nil
}

package cache

import (
	"github.com/ValentinKolb/dSess/cmd/util"
	outputcache "github.com/ValentinKolb/dSess/lib/cache"
	"github.com/ValentinKolb/dSess/rpc/client"
	"github.com/spf13/cobra"
)

var (
	outputCache outputcache.ICache

	// CacheCommands represents the cache command group
	CacheCommands = &cobra.Command{
		Use:                "cache",
		Short:              "Perform output cache operations",
		PersistentPreRunE:  setupCacheClient,
		PersistentPostRunE: closeCacheClient,
	}
)

func init() {
	// Initialize viper
	cobra.OnInitialize(util.InitClientConfig)

	// Add common connection flags to the cache command
	util.SetupClientFlags(CacheCommands)

	// Add subcommands
	CacheCommands.AddCommand(addCmd)
	CacheCommands.AddCommand(getCmd)
	CacheCommands.AddCommand(setCmd)
	CacheCommands.AddCommand(removeCmd)
}

// setupCacheClient initializes the shared connection and the cache
func setupCacheClient(cmd *cobra.Command, _ []string) error {
	// Bind command flags to viper
	if err := util.BindCommandFlags(cmd); err != nil {
		return err
	}

	conn, err := client.GetSharedConnection(util.GetClientConfig())
	if err != nil {
		return err
	}

	outputCache = outputcache.NewCache(conn.Store, conn.Keys, conn.Serializer)
	return nil
}

func closeCacheClient(_ *cobra.Command, _ []string) error {
	return client.CloseSharedConnection()
}

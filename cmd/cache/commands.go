package cache

import (
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"time"
)

var (
	addCmd = &cobra.Command{
		Use:   "add [key] [value]",
		Short: "Caches a value if the key is not cached yet and prints the cached value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, _ := cmd.Flags().GetDuration("ttl")
			value, err := outputCache.Add(context.Background(), args[0], args[1], time.Now().UTC().Add(ttl))
			if err != nil {
				return err
			}
			fmt.Printf("value=%v\n", value)
			return nil
		},
	}
	getCmd = &cobra.Command{
		Use:   "get [key]",
		Short: "Gets a cached value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, found, err := outputCache.Get(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !found {
				fmt.Println("not found")
				return nil
			}
			fmt.Printf("value=%v\n", value)
			return nil
		},
	}
	setCmd = &cobra.Command{
		Use:   "set [key] [value]",
		Short: "Caches a value, replacing the cached one",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ttl, _ := cmd.Flags().GetDuration("ttl")
			var expiry time.Time
			if ttl > 0 {
				expiry = time.Now().UTC().Add(ttl)
			}
			if err := outputCache.Set(context.Background(), args[0], args[1], expiry); err != nil {
				return err
			}
			fmt.Println("set successfully")
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [key]",
		Short: "Removes a cached value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := outputCache.Remove(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Println("removed successfully")
			return nil
		},
	}
)

func init() {
	addCmd.Flags().Duration("ttl", time.Minute, "Time to live of the entry")
	setCmd.Flags().Duration("ttl", 0, "Time to live of the entry (0 = no expiration)")
}

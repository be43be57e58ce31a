package session

import (
	"context"
	"fmt"
	"github.com/ValentinKolb/dSess/cmd/util"
	"github.com/ValentinKolb/dSess/lib/collection"
	"github.com/ValentinKolb/dSess/lib/lockmgr"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"strings"
	"time"
)

var (
	createCmd = &cobra.Command{
		Use:   "create [id] [key=value]...",
		Short: "Creates (or replaces) a record with the given entries",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries, order, err := util.ParseEntries(args[1:])
			if err != nil {
				return err
			}
			data := collection.New(conn.Serializer)
			for _, key := range order {
				data.Set(key, entries[key])
			}
			if err := lockMgr.Set(context.Background(), args[0], data, leaseSec); err != nil {
				return fmt.Errorf("failed to create record: %w", err)
			}
			fmt.Printf("created %s with %d entries\n", args[0], data.Count())
			return nil
		},
	}
	lockCmd = &cobra.Command{
		Use:   "lock [id]",
		Short: "Takes the write lock of a record and prints its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := lockMgr.TryTakeWriteLockAndGetData(context.Background(), args[0], time.Now(), leaseSec)
			if err != nil {
				return fmt.Errorf("failed to take lock: %w", err)
			}
			fmt.Printf("acquired=%v\ntoken=%s\nlease=%ds\n", res.Acquired, res.Token, res.LeaseSeconds)
			return printData(res.Data)
		},
	}
	checkCmd = &cobra.Command{
		Use:   "check [id]",
		Short: "Prints the lock state and data of a record without locking it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := lockMgr.TryCheckWriteLockAndGetData(context.Background(), args[0])
			if err != nil {
				return fmt.Errorf("failed to check lock: %w", err)
			}
			fmt.Printf("locked=%v\n", state.Locked)
			if state.Locked {
				fmt.Printf("token=%s\n", state.Token)
				if at, err := state.Token.AcquiredAt(); err == nil {
					fmt.Printf("locked since %s\n", humanize.Time(at))
				}
			}
			fmt.Printf("lease=%ds\n", state.LeaseSeconds)
			return printData(state.Data)
		},
	}
	releaseCmd = &cobra.Command{
		Use:   "release [id] [token]",
		Short: "Releases the lock if the token is the current owner",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := lockMgr.TryReleaseLockIfLockIdMatch(context.Background(), args[0], lockmgr.LockToken(args[1]), leaseSec)
			if err != nil {
				return fmt.Errorf("failed to release lock: %w", err)
			}
			fmt.Printf("released=%v\n", ok)
			return nil
		},
	}
	updateCmd = &cobra.Command{
		Use:   "update [id] [token] [key=value | -key]...",
		Short: "Sets and removes entries and releases the lock",
		Long:  "Sets (key=value) and removes (-key) entries of a locked record and releases the lock. Only the changed entries are sent to the store.",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			id, token := args[0], lockmgr.LockToken(args[1])

			state, err := lockMgr.TryCheckWriteLockAndGetData(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to read record: %w", err)
			}
			if !state.Locked || state.Token != token {
				fmt.Println("updated=false (record is not locked by this token)")
				return nil
			}

			var sets []string
			for _, arg := range args[2:] {
				if key, found := strings.CutPrefix(arg, "-"); found {
					state.Data.Remove(key)
					continue
				}
				sets = append(sets, arg)
			}
			entries, order, err := util.ParseEntries(sets)
			if err != nil {
				return err
			}
			for _, key := range order {
				state.Data.Set(key, entries[key])
			}

			modified, deleted := len(state.Data.ModifiedKeys()), len(state.Data.DeletedKeys())
			ok, err := lockMgr.TryUpdateAndReleaseLock(ctx, id, token, state.Data, leaseSec)
			if err != nil {
				return fmt.Errorf("failed to update record: %w", err)
			}
			fmt.Printf("updated=%v (%d modified, %d deleted)\n", ok, modified, deleted)
			return nil
		},
	}
	removeCmd = &cobra.Command{
		Use:   "remove [id] [token]",
		Short: "Deletes a record if the token is the current owner of its lock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ok, err := lockMgr.TryRemoveAndReleaseLock(context.Background(), args[0], lockmgr.LockToken(args[1]))
			if err != nil {
				return fmt.Errorf("failed to remove record: %w", err)
			}
			fmt.Printf("removed=%v\n", ok)
			return nil
		},
	}
	ageCmd = &cobra.Command{
		Use:   "age [token]",
		Short: "Prints how long ago a lock token was created (no store access)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			age, err := lockMgr.GetLockAge(lockmgr.LockToken(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("age=%s (%s)\n", age.Round(time.Millisecond), humanize.Time(time.Now().Add(-age)))
			return nil
		},
	}
	touchCmd = &cobra.Command{
		Use:   "touch [id]",
		Short: "Refreshes the expiration of a record without locking it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := lockMgr.UpdateExpiryTime(context.Background(), args[0], leaseSec); err != nil {
				return fmt.Errorf("failed to refresh expiration: %w", err)
			}
			fmt.Printf("expires in %ds\n", leaseSec)
			return nil
		},
	}
)

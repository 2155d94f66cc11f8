package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/user/wfhbot/internal/store"
)

var topLimit int

func init() {
	topCmd.Flags().IntVarP(&topLimit, "limit", "n", 10, "number of users to show")
	rootCmd.AddCommand(topCmd)
}

var topCmd = &cobra.Command{
	Use:   "top",
	Short: "Print the leaderboard from the local database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()

		st, err := store.Open(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("open counter store: %w", err)
		}
		defer st.Close()

		top, err := st.TopUsers(context.Background(), topLimit)
		if err != nil {
			return fmt.Errorf("query top users: %w", err)
		}

		if len(top) == 0 {
			fmt.Fprintln(os.Stdout, "No counts recorded yet.")
			return nil
		}
		for i, uc := range top {
			fmt.Fprintf(os.Stdout, "%2d. %s (%d)\n", i+1, uc.User, uc.Times)
		}
		return nil
	},
}

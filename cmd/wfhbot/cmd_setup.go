package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/user/wfhbot/internal/config"
	"github.com/user/wfhbot/internal/store"
)

func init() {
	rootCmd.AddCommand(setupCmd)
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive setup wizard",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		scanner := bufio.NewScanner(os.Stdin)

		fmt.Println("WFH Bot Setup Wizard")
		fmt.Println("Press Enter to accept the default value shown in brackets.")
		fmt.Println()

		// 1. Slack API token
		cfg.Slack.Token = prompt(scanner, "Slack API token", cfg.Slack.Token)

		// 2. Database path
		cfg.DBPath = prompt(scanner, "Database path", cfg.DBPath)

		// 3. Bot display name
		cfg.BotName = prompt(scanner, "Bot display name", cfg.BotName)

		// 4. Trigger keyword
		cfg.Trigger = prompt(scanner, "Trigger keyword", cfg.Trigger)

		// 5. Leaderboard size
		limitStr := prompt(scanner, "Leaderboard size", strconv.Itoa(cfg.LeaderboardLimit))
		if n, err := strconv.Atoi(limitStr); err == nil {
			cfg.LeaderboardLimit = n
		}

		// 6. Telegram bot token (optional)
		cfg.Telegram.Token = prompt(scanner, "Telegram bot token (optional)", cfg.Telegram.Token)

		if err := config.Save(cfgPath, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}

		// The serve command refuses to run against a missing database, so
		// create the file and schema here.
		if err := store.Ensure(cfg.DBPath); err != nil {
			return fmt.Errorf("initialize database: %w", err)
		}

		fmt.Println()
		fmt.Println("Configuration saved to", cfgPath)
		fmt.Println("Database ready at", cfg.DBPath)
		return nil
	},
}

// prompt displays a labeled prompt with a default value and reads user input.
// If the user enters nothing, the default is returned.
func prompt(scanner *bufio.Scanner, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}
	if scanner.Scan() {
		input := strings.TrimSpace(scanner.Text())
		if input != "" {
			return input
		}
	}
	return defaultVal
}

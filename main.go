package main

import (
	"fmt"
	"log/slog"
	"os"

	"classictetris/client"
	"classictetris/config"
	"classictetris/terminal"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var emph = color.New(color.FgBlue, color.Bold).SprintFunc()

var rootCmd = &cobra.Command{
	Use:   "tetris",
	Short: "Classic tetris in the terminal.",
	Long: "Classic tetris in the terminal.\n\n" +
		"Plays locally by default. Point --address to a tetris-server to play a game hosted by the server.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		o, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		logger, closeLog, err := fileLogger(o)
		if err != nil {
			return err
		}
		defer closeLog()

		console := terminal.NewConsole(os.Stdin, os.Stdout)
		if err := console.Fits(); err != nil {
			return err
		}
		if err := console.Raw(); err != nil {
			return err
		}
		restore := func() {
			if err := console.Restore(); err != nil {
				logger.Error("unable to restore the console", slog.String("error", err.Error()))
			}
		}

		c, err := client.New(logger, &client.Options{
			Writer:  os.Stdout,
			NoGhost: o.NoGhost,
			Sound:   o.Sound,
			Seed:    o.Seed,
			Address: o.Address,
			Name:    o.Name,
		})
		if err != nil {
			restore()
			return err
		}
		best := c.Start()
		if err := c.Close(); err != nil {
			logger.Error("unable to close the keyboard", slog.String("error", err.Error()))
		}
		restore()

		if best > 0 {
			fmt.Printf("%s best score %s\n", emph("→ "), emph(humanize.Comma(int64(best))))
		}
		return nil
	},
}

// fileLogger logs to o.LogFile, the screen belongs to the game.
func fileLogger(o *config.Options) (*slog.Logger, func(), error) {
	if err := o.EnsureDir(); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(o.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to open log file: %w", err)
	}
	level := slog.LevelInfo
	if o.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
	return logger, func() { f.Close() }, nil
}

func init() {
	config.ClientFlags(rootCmd.Flags())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

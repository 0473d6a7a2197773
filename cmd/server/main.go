package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"classictetris/config"
	"classictetris/rpc"
	"classictetris/server"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/rodaine/table"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
)

var emph = color.New(color.FgBlue, color.Bold).SprintFunc()

var rootCmd = &cobra.Command{
	Use:   "tetris-server",
	Short: "Hosts classic tetris games for remote front ends over gRPC.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		o, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		level := slog.LevelInfo
		if o.Debug {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

		lis, err := net.Listen("tcp", o.Listen)
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		s := grpc.NewServer()
		rpc.RegisterEngineServer(s, server.New(&server.Options{Logger: logger, Seed: o.Seed}))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			<-sigCh
			logger.Info("shutting down")
			s.Stop()
		}()

		fmt.Printf("%s engine server listening on %s\n", emph("→ "), emph(lis.Addr().String()))
		if err := s.Serve(lis); err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Lists the games hosted by a running engine server.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		o, err := config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		conn, err := rpc.Dial(o.Address)
		if err != nil {
			return fmt.Errorf("unable to create gRPC client: %w", err)
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
		defer cancel()
		st, err := rpc.NewEngineClient(conn).Sessions(ctx)
		if err != nil {
			return fmt.Errorf("unable to list sessions: %w", err)
		}
		sessions, err := rpc.DecodeSessions(st)
		if err != nil {
			return err
		}
		if len(sessions) == 0 {
			fmt.Printf("No games are being played on %s.\n", emph(o.Address))
			return nil
		}

		tbl := table.New("SESSION", "STATE", "SCORE", "LEVEL", "LINES")
		tbl.WithHeaderFormatter(color.New(color.FgBlue, color.Bold).SprintfFunc())
		for _, s := range sessions {
			tbl.AddRow(s.ID, s.State, humanize.Comma(int64(s.Score)), s.Level, humanize.Comma(int64(s.Lines)))
		}
		tbl.Print()
		return nil
	},
}

func init() {
	config.ServerFlags(rootCmd.Flags())
	config.SessionsFlags(sessionsCmd.Flags())
	rootCmd.AddCommand(sessionsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

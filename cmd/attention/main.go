package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hperssn/attention/internal/config"
	"github.com/hperssn/attention/internal/domain"
	"github.com/hperssn/attention/internal/runner"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "attention",
		Short:         "Guided attention exercises with local progress tracking",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "optional config file (yaml, json or toml)")

	root.AddCommand(newServeCmd(&configFile))
	root.AddCommand(newStatsCmd(&configFile))
	root.AddCommand(newTodayCmd(&configFile))
	root.AddCommand(newLogCmd(&configFile))
	root.AddCommand(newExercisesCmd())
	return root
}

func loadApp(configFile string) (*app, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	return newApp(cfg, newLogger(cfg.LogLevel))
}

func newServeCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the exercise and statistics HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			runs := runner.NewManager(ctx, a.recorder, a.logger.Named("runner"), runner.DefaultOptions())
			srv := &http.Server{
				Addr:    a.cfg.ListenAddr,
				Handler: newServer(a, runs).routes(),
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("listening", "addr", a.cfg.ListenAddr, "backend", a.cfg.StoreBackend)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				a.logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}
}

func newStatsCmd(configFile *string) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print per-day session counts for the most recent days",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("days") {
				days = a.cfg.StatsDays
			}
			return printJSON(cmd.OutOrStdout(), a.stats.DailyStats(days))
		},
	}
	cmd.Flags().IntVar(&days, "days", 7, "number of calendar days, today included")
	return cmd
}

func newTodayCmd(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "today",
		Short: "Print today's and all-time session counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := loadApp(*configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			return printJSON(cmd.OutOrStdout(), a.stats.Summary())
		},
	}
}

func newLogCmd(configFile *string) *cobra.Command {
	var duration int

	cmd := &cobra.Command{
		Use:   "log <exerciseId>",
		Short: "Record a completed session that ended now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(*configFile)
			if err != nil {
				return err
			}
			defer a.Close()

			if !cmd.Flags().Changed("duration") {
				duration = catalogDuration(args[0])
			}
			record := domain.NewRecord(args[0], time.Now(), duration)
			a.recorder.Append(record)
			return printJSON(cmd.OutOrStdout(), record)
		},
	}
	cmd.Flags().IntVar(&duration, "duration", 0, "duration in seconds (defaults to the catalog duration)")
	return cmd
}

func newExercisesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exercises",
		Short: "List the exercise catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tDURATION")
			for _, e := range domain.Catalog() {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.ID, e.Title, time.Duration(e.Duration)*time.Second)
			}
			return tw.Flush()
		},
	}
}

func catalogDuration(exerciseID string) int {
	if ex, ok := domain.FindExercise(exerciseID); ok {
		return ex.Duration
	}
	return 0
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

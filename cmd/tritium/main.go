// Command tritium runs the graph server: a cobra CLI wrapping a single
// "serve" subcommand, grounded on nornicdb/cmd/nornicdb/main.go's root
// command plus serveCmd wiring.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mgronhol/h3-tritium/pkg/config"
	"github.com/mgronhol/h3-tritium/pkg/dispatch"
	"github.com/mgronhol/h3-tritium/pkg/graph"
	"github.com/mgronhol/h3-tritium/pkg/replication"
	"github.com/mgronhol/h3-tritium/pkg/server"
	"github.com/mgronhol/h3-tritium/pkg/storage"
)

var version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "tritium",
		Short: "tritium - an in-memory labeled property graph server",
		Long: `tritium serves a labeled property multigraph over a
Redis-flavored wire protocol, with a durable append-only command log
and queued, per-peer ordered replication to peer instances.`,
	}

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("tritium v%s\n", version)
		},
	})

	serveCmd := &cobra.Command{
		Use:   "serve <config.json>",
		Short: "Start the graph server",
		Args:  cobra.ExactArgs(1),
		RunE:  runServe,
	}
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	cfg, err := config.Load(args[0])
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	db := graph.NewDB()
	g := db.Graphs[0]

	var sinks []storage.Sink

	var appendLog *storage.AppendLog
	if cfg.Database != "" {
		appendLog = storage.NewAppendLog(cfg.Database, logger)
		sinks = append(sinks, appendLog)
	}

	var replicaSink *replication.Sink
	if len(cfg.Replication.Hosts) > 0 {
		replicaSink = replication.New(cfg.Replication.Hosts, logger)
		defer replicaSink.Close() //nolint:errcheck
		sinks = append(sinks, replicaSink)
	}

	sink := storage.NewMultiSink(sinks...)
	d := dispatch.New(g, sink)

	if appendLog != nil {
		logger.Info("replaying command log", zap.String("path", cfg.Database))
		sink.Suppress(true)
		if err := appendLog.Load(d); err != nil {
			return fmt.Errorf("replaying command log: %w", err)
		}
		sink.Suppress(false)
	}

	srv := server.New(cfg.Addr(), d, g, logger)
	logger.Info("starting tritium", zap.String("addr", cfg.Addr()))
	return srv.ListenAndServe()
}

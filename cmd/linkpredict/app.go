// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/AleutianAI/AleutianLinks/pkg/logging"
	"github.com/AleutianAI/AleutianLinks/pkg/ux"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/config"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/ingest"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/storage/badger"
	"github.com/spf13/cobra"
)

// errNoGraphSource is returned when neither flags nor config name a graph.
var errNoGraphSource = errors.New("no graph source: pass --edges or --snapshot, or set graph.edges_file or storage.snapshot")

// app holds the global flags and everything PersistentPreRunE sets up.
type app struct {
	// Global flags
	configPath string
	logLevel   string
	dbPath     string
	edgesFile  string
	snapshot   string
	jsonOutput bool

	cfg    config.Config
	logger *logging.Logger
	out    *ux.Printer
}

// rootCmd builds the command tree.
func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "linkpredict",
		Short: "Predict missing hyperlinks in a web graph",
		Long: `linkpredict scores how strongly one page should link to another.

The strength of (a, b) is alpha × outdeg(a) plus, for every walk length l
up to the max length, beta^l × the number of walks of length l from a to b.
Pairs scoring above alpha + beta are predicted links.

Graph source, in order of precedence:
  --edges FILE       YAML or "from -> to" text edge list
  --snapshot NAME    Snapshot stored in the --db database
  graph.edges_file   From the config file
  storage.snapshot   From the config file`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "linkpredict.yaml",
		"Config file (missing file means defaults)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "",
		"Log level: debug, info, warn, error (overrides config)")
	root.PersistentFlags().StringVar(&a.dbPath, "db", "",
		"Snapshot database directory (overrides storage.path)")
	root.PersistentFlags().StringVar(&a.edgesFile, "edges", "",
		"Edge list file to load the graph from")
	root.PersistentFlags().StringVar(&a.snapshot, "snapshot", "",
		"Stored snapshot to load the graph from")
	root.PersistentFlags().BoolVar(&a.jsonOutput, "json", false,
		"Output as JSON for scripting")

	root.AddCommand(
		a.showCmd(),
		a.scoreCmd(),
		a.pathsCmd(),
		a.rankCmd(),
		a.importCmd(),
		a.snapshotsCmd(),
		a.serveCmd(),
	)
	return root
}

// setup loads the config and installs the logger and printer.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg

	levelName := cfg.Log.Level
	if a.logLevel != "" {
		levelName = a.logLevel
	}
	level, err := logging.ParseLevel(levelName)
	if err != nil {
		return err
	}

	a.logger = logging.New(logging.Config{
		Level:   level,
		LogDir:  cfg.Log.Dir,
		Service: "linkpredict",
		JSON:    cfg.Log.JSON,
		Output:  cmd.ErrOrStderr(),
	})
	slog.SetDefault(a.logger.Slog())

	w := cmd.OutOrStdout()
	plain := true
	if f, ok := w.(*os.File); ok {
		plain = !ux.IsTerminal(f)
	}
	a.out = ux.NewPrinter(w, plain)
	return nil
}

// close releases the logger. Safe to call when setup never ran.
func (a *app) close() {
	if a.logger != nil {
		_ = a.logger.Close()
	}
}

// resolvedDBPath is --db or storage.path with "~" expanded.
func (a *app) resolvedDBPath() string {
	if a.dbPath != "" {
		return config.ExpandHome(a.dbPath)
	}
	return config.ExpandHome(a.cfg.Storage.Path)
}

// openStore opens the snapshot database. The returned func closes it.
func (a *app) openStore() (*badger.SnapshotStore, func(), error) {
	cfg := badger.DefaultConfig(a.resolvedDBPath())
	cfg.Logger = slog.Default()
	db, err := badger.Open(cfg)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		if err := db.Close(); err != nil {
			slog.Warn("closing snapshot database", "error", err)
		}
	}
	return badger.NewSnapshotStore(db), closeFn, nil
}

// loadGraph builds the frozen graph named by the flags or the config.
func (a *app) loadGraph(ctx context.Context) (*graph.Graph, error) {
	opts := a.cfg.GraphOptions()

	switch {
	case a.edgesFile != "":
		return ingest.BuildFile(a.edgesFile, opts...)
	case a.snapshot != "":
		return a.loadSnapshot(ctx, a.snapshot, opts)
	case a.cfg.Graph.EdgesFile != "":
		return ingest.BuildFile(config.ExpandHome(a.cfg.Graph.EdgesFile), opts...)
	case a.cfg.Storage.Snapshot != "":
		return a.loadSnapshot(ctx, a.cfg.Storage.Snapshot, opts)
	default:
		return nil, errNoGraphSource
	}
}

func (a *app) loadSnapshot(ctx context.Context, name string, opts []graph.GraphOption) (*graph.Graph, error) {
	store, closeFn, err := a.openStore()
	if err != nil {
		return nil, err
	}
	defer closeFn()
	return store.Load(ctx, name, opts...)
}

// writeJSON writes result as indented JSON to the command output.
func (a *app) writeJSON(result any) error {
	encoder := json.NewEncoder(a.out.Writer())
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

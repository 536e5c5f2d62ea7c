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
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/ingest"
	"github.com/spf13/cobra"
)

// importCmd parses an edge file and stores it as a snapshot.
func (a *app) importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Store an edge file as a named snapshot",
		Long: `Parse FILE (YAML for .yaml/.yml, "from -> to" text otherwise) and
save it in the snapshot database. An existing snapshot of the same name is
replaced. The name defaults to the file name without its extension.`,
		Example: `  linkpredict import web.yaml --name maryland
  linkpredict import links.txt --db /var/lib/linkpredict`,
		Args: cobra.ExactArgs(1),
		RunE: a.runImport,
	}
	cmd.Flags().String("name", "", "Snapshot name")
	return cmd
}

// snapshotsCmd is the parent of the snapshot management commands.
func (a *app) snapshotsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "snapshots",
		Short: "Manage stored snapshots",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List stored snapshots",
			Args:  cobra.NoArgs,
			RunE:  a.runSnapshotsList,
		},
		&cobra.Command{
			Use:   "delete NAME",
			Short: "Delete a stored snapshot",
			Args:  cobra.ExactArgs(1),
			RunE:  a.runSnapshotsDelete,
		},
	)
	return cmd
}

func (a *app) runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	g, err := ingest.BuildFile(path, a.cfg.GraphOptions()...)
	if err != nil {
		return err
	}

	store, closeFn, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.Save(cmd.Context(), name, g); err != nil {
		return err
	}

	if a.jsonOutput {
		return a.writeJSON(map[string]any{
			"name":       name,
			"node_count": g.NodeCount(),
			"edge_count": g.EdgeCount(),
		})
	}
	a.out.Success(fmt.Sprintf("Saved %q: %d pages, %d links", name, g.NodeCount(), g.EdgeCount()))
	return nil
}

func (a *app) runSnapshotsList(cmd *cobra.Command, _ []string) error {
	store, closeFn, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	infos, err := store.List(cmd.Context())
	if err != nil {
		return err
	}

	if a.jsonOutput {
		return a.writeJSON(infos)
	}
	if len(infos) == 0 {
		a.out.Muted("No snapshots in " + a.resolvedDBPath())
		return nil
	}
	for _, info := range infos {
		saved := time.UnixMilli(info.SavedAtMilli).Format(time.DateTime)
		a.out.Line("%-24s %6d pages %6d links  %s", info.Name, info.NodeCount, info.EdgeCount, saved)
	}
	return nil
}

func (a *app) runSnapshotsDelete(cmd *cobra.Command, args []string) error {
	store, closeFn, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeFn()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	a.out.Success(fmt.Sprintf("Deleted %q", args[0]))
	return nil
}

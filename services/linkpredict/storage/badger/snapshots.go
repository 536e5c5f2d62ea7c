// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianLinks/pkg/validation"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"github.com/dgraph-io/badger/v4"
)

// snapshotPrefix namespaces snapshot keys.
const snapshotPrefix = "snapshot/"

// maxNameLength bounds snapshot names.
const maxNameLength = validation.MaxSnapshotNameLength

// Sentinel errors for snapshot storage.
var (
	// ErrSnapshotNotFound is returned when no snapshot has the given name.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidName is returned for an empty or unusable snapshot name.
	ErrInvalidName = errors.New("invalid snapshot name")
)

// storedSnapshot is the JSON value written under a snapshot key.
type storedSnapshot struct {
	Nodes        []string     `json:"nodes"`
	Edges        []graph.Edge `json:"edges"`
	SavedAtMilli int64        `json:"saved_at_milli"`
}

// SnapshotInfo describes a stored snapshot without its contents.
type SnapshotInfo struct {
	Name         string `json:"name"`
	NodeCount    int    `json:"node_count"`
	EdgeCount    int    `json:"edge_count"`
	SavedAtMilli int64  `json:"saved_at_milli"`
}

// SnapshotStore saves and restores named graphs.
//
// Thread Safety: Safe for concurrent use.
type SnapshotStore struct {
	db *DB
}

// NewSnapshotStore wraps an open database.
func NewSnapshotStore(db *DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

// ValidateName checks a snapshot name: 1 to 128 letters, digits, dots,
// underscores or hyphens, starting with a letter or digit.
func ValidateName(name string) error {
	if err := validation.ValidateSnapshotName(name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidName, err)
	}
	return nil
}

func snapshotKey(name string) []byte {
	return []byte(snapshotPrefix + name)
}

// Save stores the contents of g under name, replacing any previous snapshot.
//
// The graph may be in either state; only its nodes and edges are stored.
func (s *SnapshotStore) Save(ctx context.Context, name string, g *graph.Graph) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if g == nil {
		return errors.New("graph must not be nil")
	}

	snap := g.Snapshot()
	value, err := json.Marshal(storedSnapshot{
		Nodes:        snap.Nodes,
		Edges:        snap.Edges,
		SavedAtMilli: time.Now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encode snapshot %s: %w", name, err)
	}

	err = s.db.update(ctx, func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(name), value)
	})
	if err != nil {
		return fmt.Errorf("save snapshot %s: %w", name, err)
	}

	slog.Debug("snapshot saved",
		slog.String("name", name),
		slog.Int("nodes", len(snap.Nodes)),
		slog.Int("edges", len(snap.Edges)),
	)
	return nil
}

// Load restores the snapshot called name as a frozen graph.
//
// Errors:
//
//	ErrInvalidName - name fails ValidateName
//	ErrSnapshotNotFound - nothing is stored under name
//	graph capacity errors when opts are tighter than the stored graph
func (s *SnapshotStore) Load(ctx context.Context, name string, opts ...graph.GraphOption) (*graph.Graph, error) {
	if err := ValidateName(name); err != nil {
		return nil, err
	}

	var stored storedSnapshot
	err := s.db.view(ctx, func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(name))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &stored)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}

	g, err := graph.FromSnapshot(&graph.Snapshot{Nodes: stored.Nodes, Edges: stored.Edges}, opts...)
	if err != nil {
		return nil, fmt.Errorf("load snapshot %s: %w", name, err)
	}
	g.Freeze()
	return g, nil
}

// List returns every stored snapshot, sorted by name.
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	infos := make([]SnapshotInfo, 0)
	err := s.db.view(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(snapshotPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			name := strings.TrimPrefix(string(item.Key()), snapshotPrefix)

			var stored storedSnapshot
			err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &stored)
			})
			if err != nil {
				return fmt.Errorf("decode snapshot %s: %w", name, err)
			}

			infos = append(infos, SnapshotInfo{
				Name:         name,
				NodeCount:    len(stored.Nodes),
				EdgeCount:    len(stored.Edges),
				SavedAtMilli: stored.SavedAtMilli,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return infos, nil
}

// Delete removes the snapshot called name.
//
// Errors:
//
//	ErrSnapshotNotFound - nothing is stored under name
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	if err := ValidateName(name); err != nil {
		return err
	}

	err := s.db.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(snapshotKey(name)); err != nil {
			return err
		}
		return txn.Delete(snapshotKey(name))
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("delete snapshot %s: %w", name, err)
	}
	return nil
}

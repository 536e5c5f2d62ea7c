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
	"strings"
	"testing"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *SnapshotStore {
	t.Helper()
	db, err := OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSnapshotStore(db)
}

func sampleGraph(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.NewGraph()
	require.NoError(t, g.AddNode("isolated.org"))
	require.NoError(t, g.AddEdge("twitter.com", "usnews.com"))
	require.NoError(t, g.AddEdge("usnews.com", "umd.edu"))
	require.NoError(t, g.AddEdge("twitter.com", "baltimoresun.com"))
	return g
}

func TestSnapshotStore_SaveLoad(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()
	g := sampleGraph(t)

	require.NoError(t, store.Save(ctx, "web", g))

	loaded, err := store.Load(ctx, "web")
	require.NoError(t, err)
	assert.True(t, loaded.IsFrozen())
	assert.Equal(t, g.Nodes(), loaded.Nodes())
	assert.Equal(t, g.Edges(), loaded.Edges())
	assert.False(t, g.IsFrozen(), "saving does not freeze the source graph")
}

func TestSnapshotStore_SaveReplaces(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "web", sampleGraph(t)))

	small := graph.NewGraph()
	require.NoError(t, small.AddEdge("a", "b"))
	require.NoError(t, store.Save(ctx, "web", small))

	loaded, err := store.Load(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, loaded.Nodes())
}

func TestSnapshotStore_LoadErrors(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	_, err := store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSnapshotNotFound)

	_, err = store.Load(ctx, "")
	assert.ErrorIs(t, err, ErrInvalidName)

	require.NoError(t, store.Save(ctx, "web", sampleGraph(t)))
	_, err = store.Load(ctx, "web", graph.WithMaxNodes(2))
	assert.ErrorIs(t, err, graph.ErrMaxNodesExceeded)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Load(cancelled, "web")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSnapshotStore_ListAndDelete(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	infos, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)

	require.NoError(t, store.Save(ctx, "zeta", sampleGraph(t)))
	require.NoError(t, store.Save(ctx, "alpha", graph.NewGraph()))

	infos, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "alpha", infos[0].Name)
	assert.Equal(t, 0, infos[0].NodeCount)
	assert.Equal(t, "zeta", infos[1].Name)
	assert.Equal(t, 5, infos[1].NodeCount)
	assert.Equal(t, 3, infos[1].EdgeCount)
	assert.Positive(t, infos[1].SavedAtMilli)

	require.NoError(t, store.Delete(ctx, "zeta"))
	assert.ErrorIs(t, store.Delete(ctx, "zeta"), ErrSnapshotNotFound)

	infos, err = store.List(ctx)
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, "alpha", infos[0].Name)
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple", input: "web-2019"},
		{name: "dotted", input: "umd.edu"},
		{name: "empty", input: "", wantErr: true},
		{name: "space", input: "my web", wantErr: true},
		{name: "tab", input: "a\tb", wantErr: true},
		{name: "too long", input: strings.Repeat("x", maxNameLength+1), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestOpen_Persistent(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	cfg := DefaultConfig(dir)
	cfg.SyncWrites = false
	db, err := Open(cfg)
	require.NoError(t, err)
	assert.Equal(t, dir, db.Path())
	assert.False(t, db.InMemory())

	require.NoError(t, NewSnapshotStore(db).Save(ctx, "web", sampleGraph(t)))
	require.NoError(t, db.Close())

	db, err = Open(cfg)
	require.NoError(t, err)
	defer db.Close()

	loaded, err := NewSnapshotStore(db).Load(ctx, "web")
	require.NoError(t, err)
	assert.Equal(t, 5, loaded.NodeCount())
}

func TestOpen_Errors(t *testing.T) {
	_, err := Open(Config{})
	assert.Error(t, err)

	cfg := DefaultConfig(t.TempDir())
	cfg.GCDiscardRatio = 1.5
	_, err = Open(cfg)
	assert.Error(t, err)
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package ingest reads hyperlink edge lists into graph snapshots.
//
// Two formats are supported. YAML documents mirror graph.Snapshot:
//
//	nodes: [isolated.org]
//	edges:
//	  - {from: usnews.com, to: umd.edu}
//
// Text files hold one edge per line, either "from to" or "from -> to".
// A line with a single label declares an isolated node. Blank lines and
// anything after '#' are ignored.
package ingest

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AleutianLinks/pkg/validation"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"gopkg.in/yaml.v3"
)

// Sentinel errors for parsing.
var (
	// ErrEmptyLabel is returned when a node or edge endpoint is empty.
	ErrEmptyLabel = errors.New("empty node label")

	// ErrInvalidLabel is returned for a label with whitespace, control
	// characters or an excessive length.
	ErrInvalidLabel = errors.New("invalid node label")

	// ErrMalformedLine is returned for a text line that is not an edge or
	// a node declaration.
	ErrMalformedLine = errors.New("malformed edge line")

	// ErrUnknownFormat is returned for a Format value Parse does not handle.
	ErrUnknownFormat = errors.New("unknown edge list format")
)

// Format selects the edge list syntax.
type Format int

const (
	// FormatText is one edge per line.
	FormatText Format = iota

	// FormatYAML is a YAML snapshot document.
	FormatYAML
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatYAML:
		return "yaml"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatText
	}
}

// Parse reads an edge list in the given format.
//
// Description:
//
//	Returns the labels and edges in file order. Duplicates are kept; they are
//	absorbed when the snapshot is replayed into a graph.
//
// Errors:
//
//	ErrEmptyLabel - a label is empty or whitespace
//	ErrMalformedLine - a text line has more than one edge on it
//	ErrUnknownFormat - format is not FormatText or FormatYAML
//	I/O and YAML decoding errors, wrapped
func Parse(r io.Reader, format Format) (*graph.Snapshot, error) {
	switch format {
	case FormatText:
		return parseText(r)
	case FormatYAML:
		return parseYAML(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}
}

func parseYAML(r io.Reader) (*graph.Snapshot, error) {
	var s graph.Snapshot
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return &graph.Snapshot{}, nil
		}
		return nil, fmt.Errorf("decode yaml edge list: %w", err)
	}

	for i, name := range s.Nodes {
		label, err := cleanLabel(name, fmt.Sprintf("nodes[%d]", i))
		if err != nil {
			return nil, err
		}
		s.Nodes[i] = label
	}
	for i, e := range s.Edges {
		from, err := cleanLabel(e.From, fmt.Sprintf("edges[%d].from", i))
		if err != nil {
			return nil, err
		}
		to, err := cleanLabel(e.To, fmt.Sprintf("edges[%d].to", i))
		if err != nil {
			return nil, err
		}
		s.Edges[i] = graph.Edge{From: from, To: to}
	}
	return &s, nil
}

// cleanLabel trims and validates one label; where locates it in errors.
func cleanLabel(raw, where string) (string, error) {
	label, err := validation.SanitizeLabel(raw)
	switch {
	case errors.Is(err, validation.ErrEmpty):
		return "", fmt.Errorf("%w: %s", ErrEmptyLabel, where)
	case err != nil:
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidLabel, where, err)
	}
	return label, nil
}

func parseText(r io.Reader) (*graph.Snapshot, error) {
	s := &graph.Snapshot{}
	scanner := bufio.NewScanner(r)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}

		fields := strings.Fields(line)
		if len(fields) == 3 && fields[1] == "->" {
			fields = []string{fields[0], fields[2]}
		}

		switch len(fields) {
		case 0:
			continue
		case 1:
			if fields[0] == "->" {
				return nil, fmt.Errorf("%w: line %d", ErrEmptyLabel, lineNo)
			}
			label, err := cleanLabel(fields[0], fmt.Sprintf("line %d", lineNo))
			if err != nil {
				return nil, err
			}
			s.Nodes = append(s.Nodes, label)
		case 2:
			if fields[0] == "->" || fields[1] == "->" {
				return nil, fmt.Errorf("%w: line %d", ErrEmptyLabel, lineNo)
			}
			if err := validation.ValidateLabels(fields); err != nil {
				return nil, fmt.Errorf("%w: line %d: %v", ErrInvalidLabel, lineNo, err)
			}
			s.Edges = append(s.Edges, graph.Edge{From: fields[0], To: fields[1]})
		default:
			return nil, fmt.Errorf("%w: line %d: %q", ErrMalformedLine, lineNo, strings.TrimSpace(line))
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read edge list: %w", err)
	}
	return s, nil
}

// LoadFile parses the edge list at path, choosing the format by extension.
func LoadFile(path string) (*graph.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open edge list: %w", err)
	}
	defer f.Close()

	format := FormatFor(path)
	s, err := Parse(f, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	slog.Debug("edge list loaded",
		slog.String("path", path),
		slog.String("format", format.String()),
		slog.Int("nodes", len(s.Nodes)),
		slog.Int("edges", len(s.Edges)),
	)
	return s, nil
}

// Build replays s into a new graph and freezes it.
func Build(s *graph.Snapshot, opts ...graph.GraphOption) (*graph.Graph, error) {
	g, err := graph.FromSnapshot(s, opts...)
	if err != nil {
		return nil, err
	}
	g.Freeze()
	return g, nil
}

// BuildFile loads and builds the graph at path.
func BuildFile(path string, opts ...graph.GraphOption) (*graph.Graph, error) {
	s, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return Build(s, opts...)
}

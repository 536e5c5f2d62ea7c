// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads the link prediction YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/AleutianAI/AleutianLinks/services/linkpredict/graph"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/strength"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// configValidate is shared by every Validate call.
var configValidate = validator.New()

// Config is the root of the configuration file.
type Config struct {
	Scoring   ScoringConfig   `yaml:"scoring" json:"scoring"`
	Graph     GraphConfig     `yaml:"graph" json:"graph"`
	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Server    ServerConfig    `yaml:"server" json:"server"`
	Telemetry TelemetryConfig `yaml:"telemetry" json:"telemetry"`
	Log       LogConfig       `yaml:"log" json:"log"`
}

// ScoringConfig holds the estimator parameters.
type ScoringConfig struct {
	Alpha float64 `yaml:"alpha" json:"alpha"`

	// Beta is restricted to [0, 1) for configured runs so the path term
	// decays with length.
	Beta float64 `yaml:"beta" json:"beta" validate:"gte=0,lt=1"`

	// MaxLength of 0 means the node count.
	MaxLength int `yaml:"max_length" json:"max_length" validate:"gte=0,lte=65536"`

	// Workers of 0 means min(NumCPU, 8).
	Workers int `yaml:"workers" json:"workers" validate:"gte=0,lte=256"`

	// Limit truncates rankings. 0 means unlimited.
	Limit int `yaml:"limit" json:"limit" validate:"gte=0"`

	// ParameterSets are extra (alpha, beta) runs for "rank --all-sets".
	ParameterSets []ParameterSet `yaml:"parameter_sets" json:"parameter_sets" validate:"dive"`
}

// ParameterSet is a named (alpha, beta) pair.
type ParameterSet struct {
	Name  string  `yaml:"name" json:"name" validate:"required"`
	Alpha float64 `yaml:"alpha" json:"alpha"`
	Beta  float64 `yaml:"beta" json:"beta" validate:"gte=0,lt=1"`
}

// GraphConfig selects and bounds the input graph.
type GraphConfig struct {
	// EdgesFile is used when no --edges or --snapshot flag is given.
	EdgesFile string `yaml:"edges_file" json:"edges_file"`
	MaxNodes  int    `yaml:"max_nodes" json:"max_nodes" validate:"gt=0"`
	MaxEdges  int    `yaml:"max_edges" json:"max_edges" validate:"gt=0"`
}

// StorageConfig locates the snapshot database.
type StorageConfig struct {
	Path string `yaml:"path" json:"path" validate:"required"`

	// Snapshot is loaded when no --edges or --snapshot flag is given.
	Snapshot string `yaml:"snapshot" json:"snapshot"`
}

// ServerConfig configures "serve".
type ServerConfig struct {
	Port int `yaml:"port" json:"port" validate:"gte=1,lte=65535"`

	// RankRatePerSecond limits POST /rank. Bursts of the same size are allowed.
	RankRatePerSecond float64 `yaml:"rank_rate_per_second" json:"rank_rate_per_second" validate:"gt=0"`
}

// TelemetryConfig selects OpenTelemetry exporters.
type TelemetryConfig struct {
	TraceExporter  string `yaml:"trace_exporter" json:"trace_exporter" validate:"oneof=otlp stdout none"`
	MetricExporter string `yaml:"metric_exporter" json:"metric_exporter" validate:"oneof=prometheus stdout none"`
	OTLPEndpoint   string `yaml:"otlp_endpoint" json:"otlp_endpoint"`
}

// LogConfig configures pkg/logging.
type LogConfig struct {
	Level string `yaml:"level" json:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `yaml:"json" json:"json"`
	Dir   string `yaml:"dir" json:"dir"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Scoring: ScoringConfig{
			Alpha: strength.DefaultAlpha,
			Beta:  strength.DefaultBeta,
		},
		Graph: GraphConfig{
			MaxNodes: graph.DefaultMaxNodes,
			MaxEdges: graph.DefaultMaxEdges,
		},
		Storage: StorageConfig{
			Path: filepath.Join("~", ".aleutian", "linkpredict", "db"),
		},
		Server: ServerConfig{
			Port:              8080,
			RankRatePerSecond: 2,
		},
		Telemetry: TelemetryConfig{
			TraceExporter:  "none",
			MetricExporter: "none",
			OTLPEndpoint:   "localhost:4317",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults.
//
// Description:
//
//	An empty path or a missing file yields Default(). Keys absent from the
//	file keep their default values; unknown keys are an error. The result is
//	validated before it is returned.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(ExpandHome(path))
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field constraint.
func (c Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// ScoringOptions converts the scoring section into estimator options.
func (c Config) ScoringOptions() strength.Options {
	return strength.Options{
		Alpha:     c.Scoring.Alpha,
		Beta:      c.Scoring.Beta,
		MaxLength: c.Scoring.MaxLength,
		Workers:   c.Scoring.Workers,
	}
}

// GraphOptions converts the graph section into graph options.
func (c Config) GraphOptions() []graph.GraphOption {
	return []graph.GraphOption{
		graph.WithMaxNodes(c.Graph.MaxNodes),
		graph.WithMaxEdges(c.Graph.MaxEdges),
	}
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

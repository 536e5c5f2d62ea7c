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
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/AleutianLinks/pkg/ux"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/api"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/config"
	"github.com/AleutianAI/AleutianLinks/services/linkpredict/strength"
	"github.com/spf13/cobra"
)

var (
	// errNoParameterSets is returned by "rank --all-sets" with none configured.
	errNoParameterSets = errors.New("--all-sets needs scoring.parameter_sets in the config file")

	// errAllSetsWithWeights is returned when --all-sets is combined with
	// --alpha or --beta, which every parameter set would override.
	errAllSetsWithWeights = errors.New("--all-sets cannot be combined with --alpha or --beta")
)

// =============================================================================
// COMMAND DEFINITIONS
// =============================================================================

// showCmd lists every node with its successors.
func (a *app) showCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "List every page with the pages it links to",
		Example: `  linkpredict show --edges web.yaml
  linkpredict show --snapshot maryland --json`,
		Args: cobra.NoArgs,
		RunE: a.runShow,
	}
}

// scoreCmd computes the strength of one ordered pair.
func (a *app) scoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score FROM TO",
		Short: "Compute the link-prediction strength of FROM -> TO",
		Example: `  linkpredict score umd.edu cs.umd.edu --edges web.yaml
  linkpredict score umd.edu cs.umd.edu --alpha 0.4 --beta 0.6 --max-length 5`,
		Args: cobra.ExactArgs(2),
		RunE: a.runScore,
	}
	addScoringFlags(cmd)
	cmd.Flags().Int("max-length", 0, "Longest walk counted (0 = node count)")
	return cmd
}

// pathsCmd counts and lists the walks of one length.
func (a *app) pathsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paths FROM TO",
		Short: "Count and list the walks of exactly --length links",
		Example: `  linkpredict paths umd.edu cs.umd.edu --length 3
  linkpredict paths umd.edu cs.umd.edu --length 4 --limit 10 --json`,
		Args: cobra.ExactArgs(2),
		RunE: a.runPaths,
	}
	cmd.Flags().Int("length", 0, "Exact walk length")
	cmd.Flags().Int("limit", api.DefaultWalkLimit, "Maximum walks listed")
	_ = cmd.MarkFlagRequired("length")
	return cmd
}

// rankCmd ranks every missing link above alpha + beta.
func (a *app) rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank",
		Short: "Rank predicted links scoring above alpha + beta",
		Long: `Score every ordered pair of distinct pages with no link between them
and list the pairs whose strength exceeds alpha + beta, strongest first.

With --all-sets every entry of scoring.parameter_sets is ranked in turn,
each with its own alpha and beta; --alpha and --beta are then rejected.`,
		Example: `  linkpredict rank --edges web.yaml
  linkpredict rank --alpha 0.05 --beta 0.95 --limit 10
  linkpredict rank --all-sets --json`,
		Args: cobra.NoArgs,
		RunE: a.runRank,
	}
	addScoringFlags(cmd)
	cmd.Flags().Bool("all-sets", false, "Rank every configured parameter set (excludes --alpha/--beta)")
	cmd.Flags().Int("limit", 0, "Maximum predictions per set (0 = scoring.limit)")
	return cmd
}

func addScoringFlags(cmd *cobra.Command) {
	cmd.Flags().Float64("alpha", strength.DefaultAlpha, "Out-degree weight (overrides scoring.alpha)")
	cmd.Flags().Float64("beta", strength.DefaultBeta, "Walk length decay (overrides scoring.beta)")
}

// =============================================================================
// COMMAND IMPLEMENTATIONS
// =============================================================================

func (a *app) runShow(cmd *cobra.Command, _ []string) error {
	g, err := a.loadGraph(cmd.Context())
	if err != nil {
		return err
	}

	nodes := make([]api.NodeView, 0, g.NodeCount())
	for _, name := range g.Nodes() {
		succ, _ := g.Successors(name)
		nodes = append(nodes, api.NodeView{Name: name, Successors: succ})
	}

	if a.jsonOutput {
		return a.writeJSON(api.GraphResponse{Nodes: nodes, Stats: g.Stats()})
	}

	for _, n := range nodes {
		a.out.Line("From: %s, to: %s", n.Name, strings.Join(n.Successors, "  "))
	}
	a.out.Muted(fmt.Sprintf("%d pages, %d links", g.NodeCount(), g.EdgeCount()))
	return nil
}

func (a *app) runScore(cmd *cobra.Command, args []string) error {
	g, err := a.loadGraph(cmd.Context())
	if err != nil {
		return err
	}

	opts := scoringOptions(cmd, a.cfg)
	if cmd.Flags().Changed("max-length") {
		opts.MaxLength, _ = cmd.Flags().GetInt("max-length")
	}

	est, err := strength.NewEstimator(g, opts)
	if err != nil {
		return err
	}
	score, err := est.Score(cmd.Context(), args[0], args[1])
	if err != nil {
		return err
	}

	resp := api.StrengthResponse{
		Score:  score,
		Alpha:  opts.Alpha,
		Beta:   opts.Beta,
		Linked: g.HasEdge(args[0], args[1]),
	}
	if a.jsonOutput {
		return a.writeJSON(resp)
	}

	a.out.Title(fmt.Sprintf("%s -> %s", score.From, score.To))
	a.out.KeyValue("Strength", formatScore(score.Value), 12)
	a.out.KeyValue("Adjacency", formatScore(score.AdjacencyTerm), 12)
	a.out.KeyValue("Paths", formatScore(score.PathTerm), 12)
	a.out.KeyValue("Max length", score.MaxLength, 12)
	a.out.KeyValue("Threshold", formatScore(opts.Threshold()), 12)
	switch {
	case resp.Linked:
		a.out.Muted("Already linked")
	case score.Value > opts.Threshold():
		a.out.Success("Predicted link")
	default:
		a.out.Muted("Below threshold")
	}
	return nil
}

func (a *app) runPaths(cmd *cobra.Command, args []string) error {
	length, _ := cmd.Flags().GetInt("length")
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 1 {
		return fmt.Errorf("--limit must be at least 1, got %d", limit)
	}

	g, err := a.loadGraph(cmd.Context())
	if err != nil {
		return err
	}

	count, err := strength.PathCount(g, args[0], args[1], length)
	if err != nil {
		return err
	}
	walks, truncated, err := strength.Walks(cmd.Context(), g, args[0], args[1], length, limit)
	if err != nil {
		return err
	}

	if a.jsonOutput {
		return a.writeJSON(api.PathsResponse{
			From:      args[0],
			To:        args[1],
			Length:    length,
			Count:     count,
			Walks:     walks,
			Truncated: truncated,
		})
	}

	a.out.Title(fmt.Sprintf("Walks of length %d from %s to %s: %d", length, args[0], args[1], count))
	arrow := " " + a.out.Icon(ux.IconArrow) + " "
	for _, w := range walks {
		a.out.Line("  %s", strings.Join(w, arrow))
	}
	if truncated {
		a.out.Warning(fmt.Sprintf("Showing %d of %d walks", len(walks), count))
	}
	return nil
}

// rankRun is one ranked parameter set in "rank --json" output.
type rankRun struct {
	Name string `json:"name,omitempty"`
	api.RankResponse
}

func (a *app) runRank(cmd *cobra.Command, _ []string) error {
	allSets, _ := cmd.Flags().GetBool("all-sets")
	limit := a.cfg.Scoring.Limit
	if cmd.Flags().Changed("limit") {
		limit, _ = cmd.Flags().GetInt("limit")
	}
	if limit < 0 {
		return fmt.Errorf("--limit must not be negative, got %d", limit)
	}

	base := scoringOptions(cmd, a.cfg)
	var sets []config.ParameterSet
	if allSets {
		if cmd.Flags().Changed("alpha") || cmd.Flags().Changed("beta") {
			return errAllSetsWithWeights
		}
		if len(a.cfg.Scoring.ParameterSets) == 0 {
			return errNoParameterSets
		}
		sets = a.cfg.Scoring.ParameterSets
	} else {
		sets = []config.ParameterSet{{Alpha: base.Alpha, Beta: base.Beta}}
	}

	g, err := a.loadGraph(cmd.Context())
	if err != nil {
		return err
	}

	runs := make([]rankRun, 0, len(sets))
	for _, set := range sets {
		opts := base
		opts.Alpha, opts.Beta = set.Alpha, set.Beta

		est, err := strength.NewEstimator(g, opts)
		if err != nil {
			return err
		}
		start := time.Now()
		preds, err := est.Rank(cmd.Context(), strength.RankOptions{Limit: limit})
		if err != nil {
			return fmt.Errorf("rank alpha=%v beta=%v: %w", opts.Alpha, opts.Beta, err)
		}
		runs = append(runs, rankRun{
			Name: set.Name,
			RankResponse: api.RankResponse{
				Alpha:       opts.Alpha,
				Beta:        opts.Beta,
				Threshold:   opts.Threshold(),
				Predictions: preds,
				DurationMs:  time.Since(start).Milliseconds(),
			},
		})
	}

	if a.jsonOutput {
		return a.writeJSON(runs)
	}

	for i, run := range runs {
		if i > 0 {
			a.out.Line("")
		}
		a.out.Title(fmt.Sprintf("Hyperlink-Prediction Strength (alpha = %v, beta = %v):", run.Alpha, run.Beta))
		if len(run.Predictions) == 0 {
			a.out.Muted("No pair scores above " + formatScore(run.Threshold))
			continue
		}
		for _, p := range run.Predictions {
			a.out.Line("%s: %s", p.Label(), formatScore(p.Score))
		}
	}
	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// scoringOptions is the config's scoring section with --alpha and --beta
// applied when given.
func scoringOptions(cmd *cobra.Command, cfg config.Config) strength.Options {
	opts := cfg.ScoringOptions()
	if cmd.Flags().Changed("alpha") {
		opts.Alpha, _ = cmd.Flags().GetFloat64("alpha")
	}
	if cmd.Flags().Changed("beta") {
		opts.Beta, _ = cmd.Flags().GetFloat64("beta")
	}
	return opts
}

// formatScore rounds to at most three decimals and drops trailing zeros.
func formatScore(v float64) string {
	return strconv.FormatFloat(math.Round(v*1000)/1000, 'f', -1, 64)
}

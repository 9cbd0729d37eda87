// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/coursepath/internal/api"
	"github.com/tomtom215/coursepath/internal/auth"
	"github.com/tomtom215/coursepath/internal/config"
	"github.com/tomtom215/coursepath/internal/recommend"
)

func newMineCmd(opts *globalOptions) *cobra.Command {
	var (
		minSupport float64
		maxLen     int
		topK       int
	)
	cmd := &cobra.Command{
		Use:   "mine",
		Short: "Re-mine the sequence store and publish a new topic graph",
		Long: `Re-mine the sequence store. Flags left unset use the server's configured
defaults; values are validated by the server, never clamped.

Examples:
  coursepathctl mine
  coursepathctl mine --min-support 0.05 --max-len 4 --top-k 200`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var req api.MineRequest
			if cmd.Flags().Changed("min-support") {
				req.MinSupport = &minSupport
			}
			if cmd.Flags().Changed("max-len") {
				req.MaxLen = &maxLen
			}
			if cmd.Flags().Changed("top-k") {
				req.TopK = &topK
			}

			resp, err := opts.client().Mine(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			if !resp.Published {
				fmt.Fprintf(out, "Run %s found no patterns in %d sequences; previous graph kept.\n", resp.RunID, resp.Sequences)
				return nil
			}
			fmt.Fprintf(out, "Run %s published graph v%d: %d patterns from %d sequences in %s.\n",
				resp.RunID, resp.Version, len(resp.Patterns), resp.Sequences,
				(time.Duration(resp.DurationMS) * time.Millisecond).String())
			for i, p := range resp.Patterns {
				if i == 10 {
					fmt.Fprintf(out, "  ... %d more\n", len(resp.Patterns)-10)
					break
				}
				fmt.Fprintf(out, "  %.3f  %s\n", p.SupportRatio, strings.Join(p.Sequence, " -> "))
			}
			return nil
		},
	}
	cmd.Flags().Float64Var(&minSupport, "min-support", 0, "minimum support ratio in (0, 1]")
	cmd.Flags().IntVar(&maxLen, "max-len", 0, "maximum pattern length")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of patterns to keep")
	return cmd
}

func newNextCmd(opts *globalOptions) *cobra.Command {
	var topK int
	cmd := &cobra.Command{
		Use:   "next <course-id>",
		Short: "Suggest courses that commonly follow a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Next(cmd.Context(), args[0], topK)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			out := cmd.OutOrStdout()
			if len(resp.Suggestions) == 0 {
				fmt.Fprintln(out, "No suggestions.")
				return nil
			}
			for i, s := range resp.Suggestions {
				fmt.Fprintf(out, "%d. %s [%s] %s (confidence %.2f)\n", i+1, s.CourseTitle, s.CourseID, s.Topic, s.Confidence)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "number of suggestions (server default when 0)")
	return cmd
}

func newRecommendCmd(opts *globalOptions) *cobra.Command {
	var (
		maxSteps       int
		coursesPerStep int
	)
	cmd := &cobra.Command{
		Use:   "recommend <target-topic>",
		Short: "Plan a learning path starting at a topic",
		Long: `Plan a learning path starting at a topic.

Examples:
  coursepathctl recommend "Python"
  coursepathctl recommend "Data Science" --max-steps 3 --courses-per-step 2`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := recommend.Request{TargetTopic: args[0]}
			if cmd.Flags().Changed("max-steps") {
				req.MaxSteps = &maxSteps
			}
			if cmd.Flags().Changed("courses-per-step") {
				req.CoursesPerStep = &coursesPerStep
			}

			resp, err := opts.client().Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, resp.Message)
			if !resp.Success {
				return nil
			}
			fmt.Fprintln(out, strings.Join(resp.Path, " -> "))
			for _, step := range resp.Steps {
				fmt.Fprintf(out, "\nStep %d: %s (confidence %.2f)\n", step.StepNumber, step.Topic, step.Confidence)
				if !step.HasCourses {
					fmt.Fprintln(out, "  no courses available")
					continue
				}
				for _, c := range step.Courses {
					fmt.Fprintf(out, "  - %s by %s (%.1f, %d students)\n", c.Title, c.Instructor, c.Rating, c.Students)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&maxSteps, "max-steps", 0, "maximum transitions in the path")
	cmd.Flags().IntVar(&coursesPerStep, "courses-per-step", 0, "courses attached to each step")
	return cmd
}

func newTopicsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "topics",
		Short: "List the topics of the published graph",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Topics(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			for _, t := range resp.Topics {
				fmt.Fprintln(cmd.OutOrStdout(), t)
			}
			return nil
		},
	}
}

func newSearchCmd(opts *globalOptions) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <keyword>",
		Short: "Search courses by title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().Search(cmd.Context(), args[0], limit)
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), resp)
			}
			out := cmd.OutOrStdout()
			if resp.Count == 0 {
				fmt.Fprintln(out, "No courses found.")
				return nil
			}
			for i, c := range resp.Courses {
				fmt.Fprintf(out, "%d. %s [%s] %.1f\n", i+1, c.Title, c.ID, c.Rating)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "max results (server default when 0)")
	return cmd
}

func newStatusCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the mining coordinator status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().Status(cmd.Context())
			if err != nil {
				return err
			}
			if opts.jsonOut {
				return writeJSON(cmd.OutOrStdout(), st)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:         %s\n", st.State)
			fmt.Fprintf(out, "graph version: %d (%d nodes, %d edges)\n", st.GraphVersion, st.Nodes, st.Edges)
			if st.LastRunID != "" {
				fmt.Fprintf(out, "last run:      %s (%d ms)\n", st.LastRunID, st.DurationMS)
			}
			if st.LastError != "" {
				fmt.Fprintf(out, "last error:    %s\n", st.LastError)
			}
			return nil
		},
	}
}

func newStatsCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show store totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := opts.client().Stats(cmd.Context())
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), st)
		},
	}
}

func newAddSequenceCmd(opts *globalOptions) *cobra.Command {
	var learner string
	cmd := &cobra.Command{
		Use:   "add-sequence <topic> [topic...]",
		Short: "Append a learner's ordered topic sequence",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := opts.client().AppendSequence(cmd.Context(), api.SequenceRequest{LearnerID: learner, Topics: args})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored sequence %d (%d topics).\n", resp.ID, resp.Topics)
			return nil
		},
	}
	cmd.Flags().StringVar(&learner, "learner", "", "learner identifier")
	return cmd
}

func newTokenCmd() *cobra.Command {
	var (
		secret   string
		username string
		ttl      time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token",
		Long: `Mint an admin bearer token signed with the server's JWT secret.

The secret defaults to the JWT_SECRET environment variable.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			mgr, err := auth.NewJWTManager(&config.SecurityConfig{JWTSecret: secret, TokenTTL: ttl})
			if err != nil {
				return err
			}
			token, err := mgr.GenerateToken(username, auth.RoleAdmin)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&secret, "secret", envOr("JWT_SECRET", ""), "HMAC secret shared with the server")
	cmd.Flags().StringVar(&username, "username", "admin", "subject recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

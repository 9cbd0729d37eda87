// Coursepath - Sequential Pattern Mining and Learning Path Recommendation
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/coursepath

package main

import (
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/coursepath/internal/client"
)

// version is set at build time.
var version = "dev"

type globalOptions struct {
	server  string
	token   string
	jsonOut bool
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "coursepathctl",
		Short: "Command-line client for the Coursepath API",
		Long: `coursepathctl calls a running Coursepath server.

Read commands (topics, recommend, next, search, status, stats) need no
credentials. Admin commands (mine, add-sequence) need a bearer token when
the server has JWT_SECRET set; mint one with "coursepathctl token".`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.server, "server", "s", envOr("COURSEPATH_URL", "http://localhost:8000"), "server base URL")
	cmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("COURSEPATH_TOKEN"), "bearer token for admin routes")
	cmd.PersistentFlags().BoolVar(&opts.jsonOut, "json", false, "print raw JSON responses")

	cmd.AddCommand(
		newMineCmd(opts),
		newNextCmd(opts),
		newRecommendCmd(opts),
		newTopicsCmd(opts),
		newSearchCmd(opts),
		newStatusCmd(opts),
		newStatsCmd(opts),
		newAddSequenceCmd(opts),
		newTokenCmd(),
	)
	return cmd
}

func (o *globalOptions) client() *client.Client {
	return client.New(o.server, client.WithToken(o.token))
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

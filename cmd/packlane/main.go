// SPDX-FileCopyrightText: Copyright 2026 Packlane Authors
// SPDX-License-Identifier: Apache-2.0

// Command packlane exposes the packaging workflows, either as an MCP server
// over stdio or as one-shot CLI invocations.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/packlane/packlane/config"
	"github.com/packlane/packlane/logger"
	"github.com/packlane/packlane/tools"
)

// flagDebugProvider adapts the --debug flag to the logger's DebugProvider.
type flagDebugProvider bool

func (f flagDebugProvider) IsDebug() bool { return bool(f) }

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	var debug bool

	rootCmd := &cobra.Command{
		Use:          "packlane",
		Short:        "Package artifacts and NPM packages into Google Artifact Registry",
		SilenceUsage: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			logger.InitializeWithDebug(flagDebugProvider(debug))
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "path to the config file")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(newServeCmd(&configPath))
	rootCmd.AddCommand(newRunCmd(&configPath))
	return rootCmd
}

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the packaging tools over stdio as an MCP server",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			tb := tools.NewToolbox(cfg)
			logger.Infow("starting MCP server", "name", tools.ServerName, "version", tools.ServerVersion)
			return server.ServeStdio(tools.NewServer(tb))
		},
	}
}

func newRunCmd(configPath *string) *cobra.Command {
	var argsJSON string

	runCmd := &cobra.Command{
		Use:   "run <tool>",
		Short: "Invoke a single tool with a JSON argument blob and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			var toolArgs map[string]any
			if argsJSON != "" {
				if err := json.Unmarshal([]byte(argsJSON), &toolArgs); err != nil {
					return fmt.Errorf("parsing --args: %w", err)
				}
			}

			tb := tools.NewToolbox(cfg)
			for _, inv := range tb.All() {
				if inv.Definition().Name != args[0] {
					continue
				}
				res := inv.Invoke(cmd.Context(), toolArgs)
				out, err := json.MarshalIndent(res, "", "  ")
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(out))
				return nil
			}
			return fmt.Errorf("unknown tool %q", args[0])
		},
	}
	runCmd.Flags().StringVar(&argsJSON, "args", "", "JSON object with the tool arguments")
	return runCmd
}

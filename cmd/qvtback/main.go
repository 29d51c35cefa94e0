// Copyright (C) 2025 Aatricks
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command qvtback starts the QVT visualization backend.
//
// Configuration comes from QVT_-prefixed environment variables:
//
//   - QVT_PORT: HTTP listen port (default: 8000)
//   - QVT_MAX_ROWS / QVT_MAX_COLUMNS: upload size limits
//   - QVT_CACHE_CAPACITY: chart result cache size
//   - QVT_LOG_LEVEL: debug, info, warn or error
//   - QVT_CORS_ORIGINS: "*" or a comma-separated origin list
//   - OTEL_EXPORTER_OTLP_ENDPOINT: enables trace export when set
//
// Usage:
//
//	go build -o qvtback ./cmd/qvtback
//	./qvtback serve
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Aatricks/qvt-back/services/visualize"
	"github.com/Aatricks/qvt-back/services/visualize/config"
	"github.com/Aatricks/qvt-back/services/viz"
	"github.com/Aatricks/qvt-back/services/viz/strategies"
)

func main() {
	root := &cobra.Command{
		Use:          "qvtback",
		Short:        "QVT survey visualization backend",
		SilenceUsage: true,
	}
	root.AddCommand(serveCmd(), keysCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				settings.Port = port
			}
			svc, err := visualize.New(settings)
			if err != nil {
				return err
			}
			return svc.Run()
		},
	}
	cmd.Flags().IntVar(&port, "port", 8000, "HTTP listen port (overrides QVT_PORT)")
	return cmd
}

func keysCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "Print the supported chart keys",
		Run: func(cmd *cobra.Command, args []string) {
			reg := viz.NewRegistry()
			strategies.RegisterAll(reg)
			for _, key := range reg.Keys() {
				fmt.Fprintln(cmd.OutOrStdout(), key)
			}
		},
	}
}

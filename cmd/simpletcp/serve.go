// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/cocowh/simpletcp/core/event"
	"github.com/cocowh/simpletcp/core/tcp"
	"github.com/cocowh/simpletcp/pkg/logger"
	"github.com/spf13/cobra"
)

// serveCmd relays every received message to all connected peers.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start a message relay server",
	RunE:  runServer,
}

func init() {
	serveCmd.Flags().StringP("address", "a", "", "server listen address (default from config, :8080)")
	serveCmd.Flags().Int("max-connections", 0, "maximum concurrent connections, 0 for no limit")
}

func runServer(cmd *cobra.Command, args []string) error {
	address, _ := cmd.Flags().GetString("address")
	flags := map[string]any{"address": address}
	if cmd.Flags().Changed("max-connections") {
		n, _ := cmd.Flags().GetInt("max-connections")
		flags["max_connections"] = n
	}
	cfg, err := loadConfig("server", flags)
	if err != nil {
		return err
	}

	server := tcp.NewServer(&tcp.ServerOptions{
		Delimiter:      []byte(cfg.Server.InputDelimiter),
		MaxConnections: cfg.Server.MaxConnections,
		ReadBufferSize: cfg.Server.ReadBufferSize,
		WriteTimeout:   cfg.Server.WriteTimeout,
	})
	server.On(event.Listen, func(ev event.Event) {
		logger.Infof("Relay listening on %s:%d", ev.Host, ev.Port)
	})
	server.On(event.Connection, func(ev event.Event) {
		logger.Infof("Peer %s joined", ev.Conn.Key())
	})
	server.On(event.Message, func(ev event.Event) {
		if err := server.Write(ev.Data); err != nil {
			logger.Warnf("Relay from %s incomplete: %v", ev.Conn.Key(), err)
		}
	})
	server.On(event.Close, func(ev event.Event) {
		logger.Infof("Peer %s left, had error: %t", ev.Conn.Key(), ev.HadError)
	})
	server.On(event.Error, func(ev event.Event) {
		logger.Warnf("Relay error: %v", ev.Err)
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Listen(ctx, cfg.Server.Address); err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("Shutting down relay...")
	server.Close()
	<-server.Done()
	logger.Info("Relay stopped")
	return nil
}

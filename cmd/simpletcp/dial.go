// Copyright (c) 2025 cocowh. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cocowh/simpletcp/core/event"
	"github.com/cocowh/simpletcp/core/tcp"
	"github.com/cocowh/simpletcp/pkg/logger"
	"github.com/spf13/cobra"
)

// dialCmd sends each stdin line as one message and prints what arrives.
var dialCmd = &cobra.Command{
	Use:   "dial [address]",
	Short: "Connect to a server and exchange messages line by line",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runDial,
}

func runDial(cmd *cobra.Command, args []string) error {
	flags := map[string]any{}
	if len(args) == 1 {
		flags["address"] = args[0]
	}
	cfg, err := loadConfig("client", flags)
	if err != nil {
		return err
	}

	client := tcp.NewClient(&tcp.ClientOptions{
		Delimiter:      []byte(cfg.Client.InputDelimiter),
		ReadBufferSize: cfg.Client.ReadBufferSize,
		WriteTimeout:   cfg.Client.WriteTimeout,
	})
	out := cmd.OutOrStdout()
	client.On(event.Message, func(ev event.Event) {
		fmt.Fprintln(out, ev.Text())
	})
	client.On(event.Error, func(ev event.Event) {
		logger.Warnf("Connection error: %v", ev.Err)
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := connect(ctx, client, cfg.Client.Address, cfg.Client.DialTimeout); err != nil {
		return err
	}
	logger.Infof("Connected to %s", client.RemoteAddr())

	go pump(cmd.InOrStdin(), client)

	select {
	case <-ctx.Done():
		client.Close()
	case <-client.Done():
	}
	<-client.Done()
	return nil
}

// connect dials with timeout applied; zero leaves the dial unbounded.
func connect(ctx context.Context, client *tcp.Client, addr string, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return client.Connect(ctx, addr)
}

func pump(in io.Reader, client *tcp.Client) {
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		if err := client.WriteString(sc.Text()); err != nil {
			logger.Warnf("Send failed: %v", err)
			break
		}
	}
	client.Close()
}

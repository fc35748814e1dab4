// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeldesk-server/main.go
// Summary: Remote desktop server serving the built-in test card.
// Usage: texeldesk-server [--address host:port] [--cert f --key f] ...
// Notes: Flags override the server section of the configuration file.

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/framegrace/texeldesk/config"
	"github.com/framegrace/texeldesk/internal/testcard"
	"github.com/framegrace/texeldesk/protocol"
	"github.com/framegrace/texeldesk/server"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	flags := pflag.NewFlagSet("texeldesk-server", pflag.ContinueOnError)
	configPath := flags.String("config", "", "configuration file (default: <config dir>/texeldesk/texeldesk.json)")
	address := flags.StringP("address", "a", "", "listen address ip:port")
	certFile := flags.String("cert", "", "TLS certificate file")
	keyFile := flags.String("key", "", "TLS private key file")
	compression := flags.String("compression", "", "bitmap compression: none, zstd or lz4")
	fps := flags.Int("fps", -1, "test card animation rate, 0 to redraw only on input")
	noClipboard := flags.Bool("no-clipboard", false, "disable clipboard sharing")
	noInput := flags.Bool("no-input", false, "ignore client input")
	verbose := flags.BoolP("verbose", "v", false, "enable verbose server logging")
	if err := flags.Parse(args); err != nil {
		return err
	}

	if *configPath != "" {
		config.UsePath(*configPath)
	}
	settings := config.System().Server()
	if err := config.Err(); err != nil {
		log.Printf("config: %v (using defaults)", err)
	}
	if *address != "" {
		settings.Address = *address
	}
	if *certFile != "" || *keyFile != "" {
		settings.TLS = config.ServerTLS{CertFile: *certFile, KeyFile: *keyFile}
	}
	if *compression != "" {
		settings.Compression = *compression
	}
	if *fps >= 0 {
		settings.TestcardFPS = *fps
	}
	if *noClipboard {
		settings.Clipboard = false
	}
	if flags.Changed("verbose") {
		settings.Verbose = *verbose
	}
	server.SetVerboseLogging(settings.Verbose)

	addr, err := settings.AddrPort()
	if err != nil {
		return err
	}
	codec, err := protocol.ParseCompression(settings.Compression)
	if err != nil {
		return err
	}
	tlsConfig, err := settings.TLSConfig()
	if err != nil {
		return err
	}

	card := testcard.New(clampDimension(settings.Width), clampDimension(settings.Height), testcard.Options{
		FPS:          settings.TestcardFPS,
		FollowClient: settings.FollowClient,
	})

	secured := server.NewBuilder().WithAddr(addr)
	var withInput server.WantsHandler
	if tlsConfig != nil {
		withInput = secured.WithTLS(tlsConfig)
	} else {
		withInput = secured.WithNoSecurity()
	}
	var withDisplay server.WantsDisplay
	if *noInput {
		withDisplay = withInput.WithNoInput()
	} else {
		withDisplay = withInput.WithInputHandler(card)
	}
	done := withDisplay.WithDisplayHandler(card)
	if settings.Clipboard {
		done = done.WithCliprdrFactory(server.NewMemoryClipboard())
	}
	srv := done.Build()
	srv.SetName(settings.Name)
	srv.SetCompression(codec)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("texeldesk server listening on %s (%s, %s)\n", addr, srv.Security().Kind(), codec)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	log.Println("server stopped")
	return nil
}

func clampDimension(v int) uint16 {
	switch {
	case v < 0:
		return 0
	case v > 0xFFFF:
		return 0xFFFF
	}
	return uint16(v)
}

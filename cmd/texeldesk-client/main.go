// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/texeldesk-client/main.go
// Summary: Terminal remote desktop client.
// Usage: texeldesk-client [--address host:port] [--tls] ...
// Notes: Flags override the client section of the configuration file.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/framegrace/texeldesk/config"
	"github.com/framegrace/texeldesk/internal/tcellwin"
	clientruntime "github.com/framegrace/texeldesk/internal/runtime/client"
	"github.com/framegrace/texeldesk/protocol"
)

func main() {
	os.Exit(int(run(os.Args[1:])))
}

func run(args []string) clientruntime.ExitStatus {
	flags := pflag.NewFlagSet("texeldesk-client", pflag.ContinueOnError)
	configPath := flags.String("config", "", "configuration file (default: <config dir>/texeldesk/texeldesk.json)")
	address := flags.StringP("address", "a", "", "server address host:port")
	useTLS := flags.Bool("tls", false, "connect with TLS")
	insecure := flags.Bool("insecure", false, "skip TLS certificate verification")
	serverName := flags.String("server-name", "", "expected TLS server name")
	compression := flags.String("compression", "", "bitmap compression to offer: none, zstd or lz4")
	queueLimit := flags.Int("input-queue-limit", -1, "maximum pending input events, 0 for unbounded")
	logFile := flags.String("log-file", "", "client log file")
	panicLog := flags.String("panic-log", "", "file receiving panic reports")
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return clientruntime.ExitOK
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return clientruntime.ExitFailure
	}
	if flags.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "error: unexpected argument: %s\n", flags.Arg(0))
		return clientruntime.ExitFailure
	}

	if !term.IsTerminal(int(os.Stdin.Fd())) || !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "texeldesk-client must run in a terminal")
		return clientruntime.ExitFailure
	}

	if *configPath != "" {
		config.UsePath(*configPath)
	}
	settings := config.System().Client()
	if err := config.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v (using defaults)\n", err)
	}

	if *address != "" {
		settings.Address = *address
	}
	if flags.Changed("tls") {
		settings.TLS.Enabled = *useTLS
	}
	if *insecure {
		settings.TLS.InsecureSkipVerify = true
	}
	if *serverName != "" {
		settings.TLS.ServerName = *serverName
	}
	if *compression != "" {
		settings.Compression = *compression
	}
	if *queueLimit >= 0 {
		settings.InputQueueLimit = *queueLimit
	}
	if *logFile != "" {
		settings.LogFile = *logFile
	}
	if *panicLog != "" {
		settings.PanicLog = *panicLog
	}

	codec, err := protocol.ParseCompression(settings.Compression)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return clientruntime.ExitFailure
	}
	tlsConfig, err := settings.TLSConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return clientruntime.ExitFailure
	}

	return clientruntime.Run(clientruntime.Options{
		Address:            settings.Address,
		TLS:                tlsConfig,
		ClientName:         settings.ClientName,
		DisableCompression: codec == protocol.CompressionNone,
		InputQueueLimit:    settings.InputQueueLimit,
		LogFile:            settings.LogFile,
		PanicLog:           settings.PanicLog,
		NewFrontend: func() (clientruntime.Frontend, error) {
			tcell.SetEncodingFallback(tcell.EncodingFallbackASCII)
			return tcellwin.New(tcellwin.Options{})
		},
	})
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/runtime/client/app.go
// Summary: Wires the frontend, the GUI loop and the protocol engine together.
// Usage: Called by cmd/texeldesk-client after the configuration is resolved.
// Notes: The GUI loop runs on the calling goroutine; the engine runs beside it.

package clientruntime

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/framegrace/texeldesk/client"
	"github.com/framegrace/texeldesk/config"
	"github.com/framegrace/texeldesk/protocol"
)

// engineShutdownTimeout bounds how long Run waits for the engine after the
// loop has exited.
const engineShutdownTimeout = 2 * time.Second

// Options configures the remote client runtime.
type Options struct {
	Address            string
	TLS                *tls.Config
	ClientName         string
	DisableCompression bool
	// InputQueueLimit bounds the input channel; zero leaves it unbounded.
	InputQueueLimit int
	LogFile         string
	PanicLog        string

	// NewFrontend opens the native window.
	NewFrontend func() (Frontend, error)
}

// Run opens the frontend, connects, and runs the session to completion.
func Run(opts Options) ExitStatus {
	panicLogger := NewPanicLogger(opts.PanicLog)
	defer panicLogger.Recover("run")

	logFile, err := setupLogging(opts.LogFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logging disabled: %v\n", err)
	} else {
		defer logFile.Close()
	}

	if opts.NewFrontend == nil {
		fmt.Fprintln(os.Stderr, "no frontend configured")
		return ExitFailure
	}
	fe, err := opts.NewFrontend()
	if err != nil {
		log.Printf("open frontend failed: %v", err)
		fmt.Fprintf(os.Stderr, "open window failed: %v\n", err)
		return ExitFailure
	}
	gui := NewGuiContext(fe, os.Stdout, os.Stderr)

	w, h := gui.Window().InnerSize()
	initial := protocol.ConnectRequest{
		Width:       clampU16(w),
		Height:      clampU16(h),
		ScaleFactor: uint32(gui.Window().ScaleFactor() * 100),
	}
	dialer := client.NewSimpleClient(client.Options{
		Address:            opts.Address,
		TLS:                opts.TLS,
		ClientName:         opts.ClientName,
		DisableCompression: opts.DisableCompression,
	})

	sender, receiver := NewInputChannel(opts.InputQueueLimit)
	ctx, cancel := context.WithCancel(context.Background())
	engine := NewEngine(dialer, initial, gui.Proxy(), panicLogger)
	engineDone := make(chan struct{})
	panicLogger.Go("engine", func() {
		defer close(engineDone)
		engine.Run(ctx, receiver)
	})

	status := gui.Run(sender)
	sender.Close()
	cancel()
	if err := gui.Close(); err != nil {
		log.Printf("close frontend failed: %v", err)
	}

	select {
	case <-engineDone:
	case <-time.After(engineShutdownTimeout):
		log.Printf("engine did not stop within %s", engineShutdownTimeout)
	}
	log.Printf("client exiting with status %d", status)
	return status
}

func setupLogging(path string) (*os.File, error) {
	if path == "" {
		var err error
		if path, err = config.LogPath("client.log"); err != nil {
			return nil, err
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640)
	if err != nil {
		return nil, err
	}
	log.SetOutput(file)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return file, nil
}

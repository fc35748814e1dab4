// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/logging.go
// Summary: Gated logger for per-frame and per-record server diagnostics.
// Usage: cmd/texeldesk-server enables it with --verbose.

package server

import (
	"io"
	"log"
	"os"
)

// debugLog carries diagnostics too chatty for the default log, such as
// ignored fast-path records and unexpected frames.
var debugLog = log.New(io.Discard, "[texeldesk] ", log.LstdFlags|log.Lmicroseconds)

// SetVerboseLogging sends debug output to stderr, or discards it again.
func SetVerboseLogging(enable bool) {
	if enable {
		debugLog.SetOutput(os.Stderr)
		return
	}
	debugLog.SetOutput(io.Discard)
}

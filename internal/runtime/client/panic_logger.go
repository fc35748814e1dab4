// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package clientruntime

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"sync"
	"time"
)

// PanicLogger records panics from engine goroutines before the process
// exits. The terminal is owned by the frontend, so the trace also goes to a
// file when a path is configured.
type PanicLogger struct {
	path   string
	mu     sync.Mutex
	stderr io.Writer
	exit   func(code int)
}

// NewPanicLogger writes traces to path when it is non-empty.
func NewPanicLogger(path string) *PanicLogger {
	return &PanicLogger{path: path, stderr: os.Stderr, exit: os.Exit}
}

// Recover must be deferred directly by the goroutine being guarded.
func (p *PanicLogger) Recover(name string) {
	if r := recover(); r != nil {
		p.logPanic(name, r)
		p.exit(2)
	}
}

// Go runs fn on a new goroutine guarded by Recover.
func (p *PanicLogger) Go(name string, fn func()) {
	go func() {
		defer p.Recover(name)
		fn()
	}()
}

func (p *PanicLogger) logPanic(name string, r any) {
	buf := make([]byte, 1<<16)
	stack := buf[:runtime.Stack(buf, true)]
	msg := fmt.Sprintf("panic in %s: %v\n%s", name, r, stack)
	log.Print(msg)
	fmt.Fprintln(p.stderr, msg)
	if p.path == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	f, err := os.OpenFile(p.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		log.Printf("panic: unable to write panic log: %v", err)
		return
	}
	defer f.Close()
	fmt.Fprintf(f, "[%s] panic in %s: %v\n%s\n", time.Now().Format(time.RFC3339Nano), name, r, stack)
}

// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: server/noop.go
// Summary: Inert strategies used when the builder is told there is no input
// or no display.

package server

import "context"

type noopInputHandler struct{}

func (noopInputHandler) Keyboard(KeyboardEvent) {}
func (noopInputHandler) Mouse(MouseEvent)       {}

// noopDisplay reports an empty desktop and never produces an update.
type noopDisplay struct{}

func (noopDisplay) Size(context.Context) DesktopSize { return DesktopSize{} }

func (noopDisplay) GetUpdate(ctx context.Context) (DisplayUpdate, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

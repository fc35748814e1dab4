// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: internal/tcellwin/keys.go
// Summary: Maps tcell key events onto physical keys and modifiers.
// Notes: Terminals report characters, not key positions, so shifted
//        characters are mapped back to their base key plus Shift.

package tcellwin

import (
	"github.com/gdamore/tcell/v2"

	clientruntime "github.com/framegrace/texeldesk/internal/runtime/client"
)

var specialKeys = map[tcell.Key]clientruntime.KeyCode{
	tcell.KeyEnter:      clientruntime.KeyEnter,
	tcell.KeyTab:        clientruntime.KeyTab,
	tcell.KeyBackspace:  clientruntime.KeyBackspace,
	tcell.KeyBackspace2: clientruntime.KeyBackspace,
	tcell.KeyEsc:        clientruntime.KeyEscape,
	tcell.KeyUp:         clientruntime.KeyArrowUp,
	tcell.KeyDown:       clientruntime.KeyArrowDown,
	tcell.KeyLeft:       clientruntime.KeyArrowLeft,
	tcell.KeyRight:      clientruntime.KeyArrowRight,
	tcell.KeyHome:       clientruntime.KeyHome,
	tcell.KeyEnd:        clientruntime.KeyEnd,
	tcell.KeyPgUp:       clientruntime.KeyPageUp,
	tcell.KeyPgDn:       clientruntime.KeyPageDown,
	tcell.KeyInsert:     clientruntime.KeyInsert,
	tcell.KeyDelete:     clientruntime.KeyDelete,
	tcell.KeyPrint:      clientruntime.KeyPrintScreen,
	tcell.KeyF1:         clientruntime.KeyF1,
	tcell.KeyF2:         clientruntime.KeyF2,
	tcell.KeyF3:         clientruntime.KeyF3,
	tcell.KeyF4:         clientruntime.KeyF4,
	tcell.KeyF5:         clientruntime.KeyF5,
	tcell.KeyF6:         clientruntime.KeyF6,
	tcell.KeyF7:         clientruntime.KeyF7,
	tcell.KeyF8:         clientruntime.KeyF8,
	tcell.KeyF9:         clientruntime.KeyF9,
	tcell.KeyF10:        clientruntime.KeyF10,
	tcell.KeyF11:        clientruntime.KeyF11,
	tcell.KeyF12:        clientruntime.KeyF12,
}

var letterKeys = [26]clientruntime.KeyCode{
	clientruntime.KeyA, clientruntime.KeyB, clientruntime.KeyC, clientruntime.KeyD,
	clientruntime.KeyE, clientruntime.KeyF, clientruntime.KeyG, clientruntime.KeyH,
	clientruntime.KeyI, clientruntime.KeyJ, clientruntime.KeyK, clientruntime.KeyL,
	clientruntime.KeyM, clientruntime.KeyN, clientruntime.KeyO, clientruntime.KeyP,
	clientruntime.KeyQ, clientruntime.KeyR, clientruntime.KeyS, clientruntime.KeyT,
	clientruntime.KeyU, clientruntime.KeyV, clientruntime.KeyW, clientruntime.KeyX,
	clientruntime.KeyY, clientruntime.KeyZ,
}

var digitKeys = [10]clientruntime.KeyCode{
	clientruntime.KeyDigit0, clientruntime.KeyDigit1, clientruntime.KeyDigit2,
	clientruntime.KeyDigit3, clientruntime.KeyDigit4, clientruntime.KeyDigit5,
	clientruntime.KeyDigit6, clientruntime.KeyDigit7, clientruntime.KeyDigit8,
	clientruntime.KeyDigit9,
}

type runeKey struct {
	key   clientruntime.KeyCode
	shift bool
}

var punctuationKeys = map[rune]runeKey{
	' ':  {clientruntime.KeySpace, false},
	'-':  {clientruntime.KeyMinus, false},
	'_':  {clientruntime.KeyMinus, true},
	'=':  {clientruntime.KeyEqual, false},
	'+':  {clientruntime.KeyEqual, true},
	'[':  {clientruntime.KeyBracketLeft, false},
	'{':  {clientruntime.KeyBracketLeft, true},
	']':  {clientruntime.KeyBracketRight, false},
	'}':  {clientruntime.KeyBracketRight, true},
	'\\': {clientruntime.KeyBackslash, false},
	'|':  {clientruntime.KeyBackslash, true},
	';':  {clientruntime.KeySemicolon, false},
	':':  {clientruntime.KeySemicolon, true},
	'\'': {clientruntime.KeyQuote, false},
	'"':  {clientruntime.KeyQuote, true},
	'`':  {clientruntime.KeyBackquote, false},
	'~':  {clientruntime.KeyBackquote, true},
	',':  {clientruntime.KeyComma, false},
	'<':  {clientruntime.KeyComma, true},
	'.':  {clientruntime.KeyPeriod, false},
	'>':  {clientruntime.KeyPeriod, true},
	'/':  {clientruntime.KeySlash, false},
	'?':  {clientruntime.KeySlash, true},
	'!':  {clientruntime.KeyDigit1, true},
	'@':  {clientruntime.KeyDigit2, true},
	'#':  {clientruntime.KeyDigit3, true},
	'$':  {clientruntime.KeyDigit4, true},
	'%':  {clientruntime.KeyDigit5, true},
	'^':  {clientruntime.KeyDigit6, true},
	'&':  {clientruntime.KeyDigit7, true},
	'*':  {clientruntime.KeyDigit8, true},
	'(':  {clientruntime.KeyDigit9, true},
	')':  {clientruntime.KeyDigit0, true},
}

func modifiersOf(mod tcell.ModMask) clientruntime.ModifiersState {
	var state clientruntime.ModifiersState
	if mod&tcell.ModShift != 0 {
		state |= clientruntime.ModShift
	}
	if mod&tcell.ModCtrl != 0 {
		state |= clientruntime.ModControl
	}
	if mod&tcell.ModAlt != 0 {
		state |= clientruntime.ModAlt
	}
	if mod&tcell.ModMeta != 0 {
		state |= clientruntime.ModSuper
	}
	return state
}

// physicalKey resolves ev to a key and the modifiers that must be held.
func physicalKey(ev *tcell.EventKey) (clientruntime.KeyCode, clientruntime.ModifiersState, bool) {
	mods := modifiersOf(ev.Modifiers())
	key := ev.Key()

	if key == tcell.KeyBacktab {
		return clientruntime.KeyTab, mods | clientruntime.ModShift, true
	}
	if code, ok := specialKeys[key]; ok {
		return code, mods, true
	}
	if key >= tcell.KeyCtrlA && key <= tcell.KeyCtrlZ {
		return letterKeys[key-tcell.KeyCtrlA], mods | clientruntime.ModControl, true
	}
	if key != tcell.KeyRune {
		return 0, 0, false
	}

	r := ev.Rune()
	switch {
	case r >= 'a' && r <= 'z':
		return letterKeys[r-'a'], mods, true
	case r >= 'A' && r <= 'Z':
		return letterKeys[r-'A'], mods | clientruntime.ModShift, true
	case r >= '0' && r <= '9':
		return digitKeys[r-'0'], mods, true
	}
	if rk, ok := punctuationKeys[r]; ok {
		if rk.shift {
			mods |= clientruntime.ModShift
		}
		return rk.key, mods, true
	}
	return 0, 0, false
}

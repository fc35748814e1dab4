// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package clientruntime

import "github.com/framegrace/texeldesk/input"

// KeyCode identifies a physical key by its position on a US layout.
type KeyCode uint16

const (
	KeyUnidentified KeyCode = iota
	KeyEscape
	KeyDigit1
	KeyDigit2
	KeyDigit3
	KeyDigit4
	KeyDigit5
	KeyDigit6
	KeyDigit7
	KeyDigit8
	KeyDigit9
	KeyDigit0
	KeyMinus
	KeyEqual
	KeyBackspace
	KeyTab
	KeyQ
	KeyW
	KeyE
	KeyR
	KeyT
	KeyY
	KeyU
	KeyI
	KeyO
	KeyP
	KeyBracketLeft
	KeyBracketRight
	KeyEnter
	KeyControlLeft
	KeyA
	KeyS
	KeyD
	KeyF
	KeyG
	KeyH
	KeyJ
	KeyK
	KeyL
	KeySemicolon
	KeyQuote
	KeyBackquote
	KeyShiftLeft
	KeyBackslash
	KeyZ
	KeyX
	KeyC
	KeyV
	KeyB
	KeyN
	KeyM
	KeyComma
	KeyPeriod
	KeySlash
	KeyShiftRight
	KeyNumpadMultiply
	KeyAltLeft
	KeySpace
	KeyCapsLock
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyNumLock
	KeyScrollLock
	KeyNumpad7
	KeyNumpad8
	KeyNumpad9
	KeyNumpadSubtract
	KeyNumpad4
	KeyNumpad5
	KeyNumpad6
	KeyNumpadAdd
	KeyNumpad1
	KeyNumpad2
	KeyNumpad3
	KeyNumpad0
	KeyNumpadDecimal
	KeyIntlBackslash
	KeyF11
	KeyF12
	KeyNumpadEnter
	KeyControlRight
	KeyNumpadDivide
	KeyPrintScreen
	KeyAltRight
	KeyHome
	KeyArrowUp
	KeyPageUp
	KeyArrowLeft
	KeyArrowRight
	KeyEnd
	KeyArrowDown
	KeyPageDown
	KeyInsert
	KeyDelete
	KeySuperLeft
	KeySuperRight
	KeyContextMenu
	KeyPause
	keyCodeCount
)

type scancodeEntry struct {
	code     uint8
	extended bool
	ok       bool
}

func sc(code uint8) scancodeEntry  { return scancodeEntry{code: code, ok: true} }
func ext(code uint8) scancodeEntry { return scancodeEntry{code: code, extended: true, ok: true} }

// Scan code set 1. Pause is a multi-byte sequence and has no entry.
var scancodes = [keyCodeCount]scancodeEntry{
	KeyEscape:         sc(0x01),
	KeyDigit1:         sc(0x02),
	KeyDigit2:         sc(0x03),
	KeyDigit3:         sc(0x04),
	KeyDigit4:         sc(0x05),
	KeyDigit5:         sc(0x06),
	KeyDigit6:         sc(0x07),
	KeyDigit7:         sc(0x08),
	KeyDigit8:         sc(0x09),
	KeyDigit9:         sc(0x0A),
	KeyDigit0:         sc(0x0B),
	KeyMinus:          sc(0x0C),
	KeyEqual:          sc(0x0D),
	KeyBackspace:      sc(0x0E),
	KeyTab:            sc(0x0F),
	KeyQ:              sc(0x10),
	KeyW:              sc(0x11),
	KeyE:              sc(0x12),
	KeyR:              sc(0x13),
	KeyT:              sc(0x14),
	KeyY:              sc(0x15),
	KeyU:              sc(0x16),
	KeyI:              sc(0x17),
	KeyO:              sc(0x18),
	KeyP:              sc(0x19),
	KeyBracketLeft:    sc(0x1A),
	KeyBracketRight:   sc(0x1B),
	KeyEnter:          sc(0x1C),
	KeyControlLeft:    sc(0x1D),
	KeyA:              sc(0x1E),
	KeyS:              sc(0x1F),
	KeyD:              sc(0x20),
	KeyF:              sc(0x21),
	KeyG:              sc(0x22),
	KeyH:              sc(0x23),
	KeyJ:              sc(0x24),
	KeyK:              sc(0x25),
	KeyL:              sc(0x26),
	KeySemicolon:      sc(0x27),
	KeyQuote:          sc(0x28),
	KeyBackquote:      sc(0x29),
	KeyShiftLeft:      sc(0x2A),
	KeyBackslash:      sc(0x2B),
	KeyZ:              sc(0x2C),
	KeyX:              sc(0x2D),
	KeyC:              sc(0x2E),
	KeyV:              sc(0x2F),
	KeyB:              sc(0x30),
	KeyN:              sc(0x31),
	KeyM:              sc(0x32),
	KeyComma:          sc(0x33),
	KeyPeriod:         sc(0x34),
	KeySlash:          sc(0x35),
	KeyShiftRight:     sc(0x36),
	KeyNumpadMultiply: sc(0x37),
	KeyAltLeft:        sc(0x38),
	KeySpace:          sc(0x39),
	KeyCapsLock:       sc(0x3A),
	KeyF1:             sc(0x3B),
	KeyF2:             sc(0x3C),
	KeyF3:             sc(0x3D),
	KeyF4:             sc(0x3E),
	KeyF5:             sc(0x3F),
	KeyF6:             sc(0x40),
	KeyF7:             sc(0x41),
	KeyF8:             sc(0x42),
	KeyF9:             sc(0x43),
	KeyF10:            sc(0x44),
	KeyNumLock:        sc(0x45),
	KeyScrollLock:     sc(0x46),
	KeyNumpad7:        sc(0x47),
	KeyNumpad8:        sc(0x48),
	KeyNumpad9:        sc(0x49),
	KeyNumpadSubtract: sc(0x4A),
	KeyNumpad4:        sc(0x4B),
	KeyNumpad5:        sc(0x4C),
	KeyNumpad6:        sc(0x4D),
	KeyNumpadAdd:      sc(0x4E),
	KeyNumpad1:        sc(0x4F),
	KeyNumpad2:        sc(0x50),
	KeyNumpad3:        sc(0x51),
	KeyNumpad0:        sc(0x52),
	KeyNumpadDecimal:  sc(0x53),
	KeyIntlBackslash:  sc(0x56),
	KeyF11:            sc(0x57),
	KeyF12:            sc(0x58),
	KeyNumpadEnter:    ext(0x1C),
	KeyControlRight:   ext(0x1D),
	KeyNumpadDivide:   ext(0x35),
	KeyPrintScreen:    ext(0x37),
	KeyAltRight:       ext(0x38),
	KeyHome:           ext(0x47),
	KeyArrowUp:        ext(0x48),
	KeyPageUp:         ext(0x49),
	KeyArrowLeft:      ext(0x4B),
	KeyArrowRight:     ext(0x4D),
	KeyEnd:            ext(0x4F),
	KeyArrowDown:      ext(0x50),
	KeyPageDown:       ext(0x51),
	KeyInsert:         ext(0x52),
	KeyDelete:         ext(0x53),
	KeySuperLeft:      ext(0x5B),
	KeySuperRight:     ext(0x5C),
	KeyContextMenu:    ext(0x5D),
}

// Scancode maps a physical key to its set-1 scancode.
func (k KeyCode) Scancode() (input.Scancode, bool) {
	if k >= keyCodeCount {
		return input.Scancode{}, false
	}
	e := scancodes[k]
	if !e.ok {
		return input.Scancode{}, false
	}
	return input.ScancodeFromU8(e.extended, e.code), true
}

// Modifier scancodes resynchronized on every ModifiersChanged.
var (
	scancodeShiftLeft   = input.ScancodeFromU8(false, 0x2A)
	scancodeControlLeft = input.ScancodeFromU8(false, 0x1D)
	scancodeAltLeft     = input.ScancodeFromU8(false, 0x38)
	scancodeSuperLeft   = input.ScancodeFromU8(true, 0x5B)
)

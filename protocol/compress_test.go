// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later

package protocol

import (
	"bytes"
	"testing"
)

func solidPixels(width, height int, xrgb uint32) []byte {
	buf := make([]byte, width*height*4)
	for i := 0; i < len(buf); i += 4 {
		buf[i] = byte(xrgb)
		buf[i+1] = byte(xrgb >> 8)
		buf[i+2] = byte(xrgb >> 16)
	}
	return buf
}

func TestBitmapCompressionRoundTrip(t *testing.T) {
	pixels := solidPixels(64, 32, 0x00336699)
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		t.Run(c.String(), func(t *testing.T) {
			update, err := EncodeBitmap(4, 8, 64, 32, pixels, c)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			if update.Compression != c {
				t.Fatalf("solid frame should compress with %s, used %s", c, update.Compression)
			}
			if c != CompressionNone && len(update.Data) >= len(pixels) {
				t.Fatalf("compressed size %d not smaller than %d", len(update.Data), len(pixels))
			}

			payload, err := Marshal(update)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var decoded BitmapUpdate
			if err := Unmarshal(payload, &decoded); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			got, err := decoded.Pixels()
			if err != nil {
				t.Fatalf("pixels: %v", err)
			}
			if !bytes.Equal(got, pixels) {
				t.Fatalf("pixel data mismatch")
			}
			if decoded.Left != 4 || decoded.Top != 8 {
				t.Fatalf("origin = %d,%d", decoded.Left, decoded.Top)
			}
		})
	}
}

func TestIncompressibleFallsBackToNone(t *testing.T) {
	data := []byte{1, 2, 3, 4}
	out, used, err := Compress(data, CompressionLZ4)
	if err != nil {
		t.Fatalf("compress: %v", err)
	}
	if used != CompressionNone || !bytes.Equal(out, data) {
		t.Fatalf("expected passthrough, got %s %v", used, out)
	}
}

func TestBitmapSizeMismatch(t *testing.T) {
	update := BitmapUpdate{Width: 2, Height: 2, RawLength: 4, Data: make([]byte, 4)}
	if _, err := update.Pixels(); err == nil {
		t.Fatalf("expected size mismatch error")
	}
}

func TestNegotiate(t *testing.T) {
	tests := []struct {
		preferred Compression
		caps      uint32
		want      Compression
	}{
		{CompressionZstd, CapCompressZstd, CompressionZstd},
		{CompressionZstd, CapCompressLZ4, CompressionNone},
		{CompressionLZ4, CapCompressLZ4 | CapCompressZstd, CompressionLZ4},
		{CompressionNone, CapCompressLZ4, CompressionNone},
	}
	for _, tt := range tests {
		if got := Negotiate(tt.preferred, tt.caps); got != tt.want {
			t.Errorf("Negotiate(%s, %b) = %s, want %s", tt.preferred, tt.caps, got, tt.want)
		}
	}
}

func TestParseCompression(t *testing.T) {
	if c, err := ParseCompression("zstd"); err != nil || c != CompressionZstd {
		t.Fatalf("zstd = %v, %v", c, err)
	}
	if c, err := ParseCompression(""); err != nil || c != CompressionNone {
		t.Fatalf("empty = %v, %v", c, err)
	}
	if _, err := ParseCompression("brotli"); err == nil {
		t.Fatalf("expected error for unknown codec")
	}
}

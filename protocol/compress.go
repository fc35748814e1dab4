// Copyright © 2025 Texelation contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: protocol/compress.go
// Summary: Bitmap payload compression negotiated during the handshake.

package protocol

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression identifies the codec applied to BitmapUpdate.Data. The values
// are wire constants.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionLZ4  Compression = 1
	CompressionZstd Compression = 2
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionLZ4:
		return "lz4"
	case CompressionZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(c))
	}
}

// ParseCompression parses the configuration spelling of a codec.
func ParseCompression(name string) (Compression, error) {
	switch name {
	case "", "none":
		return CompressionNone, nil
	case "lz4":
		return CompressionLZ4, nil
	case "zstd":
		return CompressionZstd, nil
	default:
		return 0, fmt.Errorf("protocol: unknown compression %q", name)
	}
}

// Capability returns the Hello capability bit advertising c.
func (c Compression) Capability() uint32 {
	switch c {
	case CompressionLZ4:
		return CapCompressLZ4
	case CompressionZstd:
		return CapCompressZstd
	}
	return 0
}

// Negotiate picks preferred when the peer advertised it, otherwise none.
func Negotiate(preferred Compression, capabilities uint32) Compression {
	if bit := preferred.Capability(); bit != 0 && capabilities&bit != 0 {
		return preferred
	}
	return CompressionNone
}

var (
	zstdEncoder *zstd.Encoder
	zstdDecoder *zstd.Decoder
)

func init() {
	var err error
	zstdEncoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		panic("protocol: zstd encoder initialization failed: " + err.Error())
	}
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("protocol: zstd decoder initialization failed: " + err.Error())
	}
}

// Compress encodes data with c. When the codec cannot shrink the data the
// input is returned unchanged together with CompressionNone.
func Compress(data []byte, c Compression) ([]byte, Compression, error) {
	switch c {
	case CompressionNone:
		return data, CompressionNone, nil
	case CompressionLZ4:
		dst := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, dst, nil)
		if err != nil {
			return nil, 0, fmt.Errorf("protocol: lz4 compress: %w", err)
		}
		if n == 0 || n >= len(data) {
			return data, CompressionNone, nil
		}
		return dst[:n], CompressionLZ4, nil
	case CompressionZstd:
		out := zstdEncoder.EncodeAll(data, nil)
		if len(out) >= len(data) {
			return data, CompressionNone, nil
		}
		return out, CompressionZstd, nil
	default:
		return nil, 0, fmt.Errorf("protocol: unsupported compression %s", c)
	}
}

// Decompress reverses Compress. rawLength must match the original size.
func Decompress(data []byte, c Compression, rawLength int) ([]byte, error) {
	switch c {
	case CompressionNone:
		if len(data) != rawLength {
			return nil, fmt.Errorf("protocol: bitmap size %d does not match expected %d", len(data), rawLength)
		}
		return data, nil
	case CompressionLZ4:
		dst := make([]byte, rawLength)
		n, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("protocol: lz4 decompress: %w", err)
		}
		if n != rawLength {
			return nil, fmt.Errorf("protocol: lz4 decompress: got %d bytes, expected %d", n, rawLength)
		}
		return dst, nil
	case CompressionZstd:
		out, err := zstdDecoder.DecodeAll(data, make([]byte, 0, rawLength))
		if err != nil {
			return nil, fmt.Errorf("protocol: zstd decompress: %w", err)
		}
		if len(out) != rawLength {
			return nil, fmt.Errorf("protocol: zstd decompress: got %d bytes, expected %d", len(out), rawLength)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("protocol: unsupported compression %s", c)
	}
}

// EncodeBitmap builds a BitmapUpdate for an XRGB rectangle, compressing the
// pixel data with c.
func EncodeBitmap(left, top, width, height uint16, pixels []byte, c Compression) (BitmapUpdate, error) {
	data, used, err := Compress(pixels, c)
	if err != nil {
		return BitmapUpdate{}, err
	}
	return BitmapUpdate{
		Left:        left,
		Top:         top,
		Width:       width,
		Height:      height,
		Compression: used,
		RawLength:   uint32(len(pixels)),
		Data:        data,
	}, nil
}

// Pixels returns the decompressed pixel data of b.
func (b BitmapUpdate) Pixels() ([]byte, error) {
	expected := int(b.Width) * int(b.Height) * 4
	if int(b.RawLength) != expected {
		return nil, fmt.Errorf("protocol: bitmap %dx%d declares %d bytes, expected %d", b.Width, b.Height, b.RawLength, expected)
	}
	return Decompress(b.Data, b.Compression, expected)
}

package codec

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects how payloads above the framing threshold are compressed.
type Compression byte

// The first byte of every framed payload is the Compression that was applied.
const (
	None Compression = iota
	Zstd
	LZ4
)

// Payloads smaller than this are never compressed.
const DefaultThreshold = 1024

var ErrBadFrame = errors.New("codec: malformed payload frame")

func (c Compression) String() string {
	switch c {
	case None:
		return "none"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("compression(%d)", byte(c))
	}
}

// ParseCompression accepts "none", "zstd" and "lz4".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "none":
		return None, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return None, fmt.Errorf("codec: unknown compression %q", s)
	}
}

// Framer wraps broker payloads in a one byte header and compresses large ones.
// A Framer can decode every compression, whatever it is configured to write.
type Framer struct {
	compression Compression
	threshold   int

	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewFramer returns a Framer writing payloads of at least threshold bytes with c.
// threshold <= 0 means DefaultThreshold.
func NewFramer(c Compression, threshold int) (*Framer, error) {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, err
	}
	return &Framer{compression: c, threshold: threshold, enc: enc, dec: dec}, nil
}

func (f *Framer) Compression() Compression {
	return f.compression
}

// Frame returns the broker representation of payload.
func (f *Framer) Frame(payload []byte) ([]byte, error) {
	c := f.compression
	if len(payload) < f.threshold {
		c = None
	}

	switch c {
	case Zstd:
		return f.enc.EncodeAll(payload, []byte{byte(Zstd)}), nil
	case LZ4:
		buf := bytes.NewBuffer([]byte{byte(LZ4)})
		w := lz4.NewWriter(buf)
		if _, err := w.Write(payload); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		out := make([]byte, 0, len(payload)+1)
		out = append(out, byte(None))
		return append(out, payload...), nil
	}
}

// Unframe reverses Frame.
func (f *Framer) Unframe(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, ErrBadFrame
	}

	body := data[1:]
	switch Compression(data[0]) {
	case None:
		return body, nil
	case Zstd:
		out, err := f.dec.DecodeAll(body, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadFrame, err)
		}
		return out, nil
	case LZ4:
		out, err := io.ReadAll(lz4.NewReader(bytes.NewReader(body)))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadFrame, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrBadFrame, data[0])
	}
}

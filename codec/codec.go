// Package codec encodes argument and result values, and frames the payloads the bus
// stores in the broker.
//
// Values are CBOR documents (deterministic core encoding), so any value a target
// returns must be representable in CBOR: nil, bools, numbers, strings, byte slices,
// slices, maps and structs with exported fields.
package codec

import (
	"fmt"

	cbor "github.com/fxamacker/cbor/v2"
)

// Values encodes and decodes single argument/result values.
type Values struct {
	enc cbor.EncMode
	dec cbor.DecMode
}

var defaultValues *Values

func init() {
	v, err := NewValues()
	if err != nil {
		panic(err)
	}
	defaultValues = v
}

// NewValues returns a deterministic CBOR value codec.
func NewValues() (*Values, error) {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		return nil, err
	}
	// Integers decode as int64, whatever their sign.
	dm, err := cbor.DecOptions{IntDec: cbor.IntDecConvertSigned}.DecMode()
	if err != nil {
		return nil, err
	}
	return &Values{enc: em, dec: dm}, nil
}

// Default returns the process-wide value codec.
func Default() *Values {
	return defaultValues
}

func (c *Values) Marshal(v any) ([]byte, error) {
	b, err := c.enc.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: cannot encode %T: %w", v, err)
	}
	return b, nil
}

func (c *Values) Unmarshal(data []byte, v any) error {
	if err := c.dec.Unmarshal(data, v); err != nil {
		return fmt.Errorf("codec: cannot decode value: %w", err)
	}
	return nil
}

// Decode returns the generic representation of an encoded value.
func (c *Values) Decode(data []byte) (any, error) {
	var v any
	if err := c.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return normalize(v), nil
}

// Normalize round-trips v through the codec and returns what a peer decoding the
// value would see. Cache keys are always rendered from normalized values.
func (c *Values) Normalize(v any) (any, error) {
	b, err := c.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.Decode(b)
}

// CBOR maps decode into map[any]any; string-keyed maps are converted so that they
// render like the map[string]any a Go caller would pass in.
func normalize(v any) any {
	switch t := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			ks, ok := k.(string)
			if !ok {
				return convertValues(t)
			}
			out[ks] = normalize(e)
		}
		return out
	case []any:
		for i := range t {
			t[i] = normalize(t[i])
		}
		return t
	default:
		return v
	}
}

func convertValues(m map[any]any) map[any]any {
	for k, e := range m {
		m[k] = normalize(e)
	}
	return m
}

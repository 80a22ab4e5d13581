package redisbus

import (
	"fmt"
	"sort"
	"time"

	"github.com/dermesser/redisbus/proto"
	pb "github.com/gogo/protobuf/proto"
)

type outcomeState uint8

const (
	unresolved outcomeState = iota
	succeeded
	failed
)

/*
Outcome is the result of one execution: either a value (Ok) or a captured fault (Err).
The zero Outcome is unresolved, which is distinct from a call that returned nil.
*/
type Outcome struct {
	state outcomeState
	// CBOR encoded
	value []byte
	fault *Fault
}

// Unresolved is the zero Outcome.
var Unresolved = Outcome{}

// Ok returns a successful outcome holding an encoded value.
func Ok(encoded []byte) Outcome {
	return Outcome{state: succeeded, value: encoded}
}

// Err returns a failed outcome.
func Err(f *Fault) Outcome {
	return Outcome{state: failed, fault: f}
}

// OkValue encodes v into a successful outcome.
func (b *Bus) OkValue(v any) (Outcome, error) {
	enc, err := b.values.Marshal(v)
	if err != nil {
		return Unresolved, err
	}
	return Ok(enc), nil
}

func (o Outcome) Resolved() bool {
	return o.state != unresolved
}

func (o Outcome) IsOk() bool {
	return o.state == succeeded
}

// Fault returns the captured fault of an Err outcome, nil otherwise.
func (o Outcome) Fault() *Fault {
	return o.fault
}

// Raw returns the encoded value of an Ok outcome.
func (o Outcome) Raw() []byte {
	return o.value
}

// Result returns the decoded value, or the fault as error.
func (b *Bus) Result(o Outcome) (any, error) {
	switch o.state {
	case succeeded:
		return b.values.Decode(o.value)
	case failed:
		return nil, o.fault
	default:
		return nil, fmt.Errorf("redisbus: outcome is not resolved")
	}
}

// DecodeResult decodes the value of an Ok outcome into v, or returns the fault.
func (b *Bus) DecodeResult(o Outcome, v any) error {
	switch o.state {
	case succeeded:
		return b.values.Unmarshal(o.value, v)
	case failed:
		return o.fault
	default:
		return fmt.Errorf("redisbus: outcome is not resolved")
	}
}

func (b *Bus) encodeOutcome(o Outcome) ([]byte, error) {
	msg := &proto.Outcome{Ok: pb.Bool(o.state == succeeded)}
	switch o.state {
	case succeeded:
		msg.Value = o.value
	case failed:
		msg.Fault = &proto.Fault{Kind: pb.String(o.fault.Kind), Message: pb.String(o.fault.Message)}
	default:
		return nil, fmt.Errorf("redisbus: cannot store an unresolved outcome")
	}
	data, err := pb.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return b.framer.Frame(data)
}

func (b *Bus) decodeOutcome(data []byte) (Outcome, error) {
	raw, err := b.framer.Unframe(data)
	if err != nil {
		return Unresolved, err
	}
	msg := new(proto.Outcome)
	if err := pb.Unmarshal(raw, msg); err != nil {
		return Unresolved, fmt.Errorf("redisbus: corrupt outcome: %w", err)
	}
	if msg.GetOk() {
		return Ok(msg.GetValue()), nil
	}
	f := msg.GetFault()
	return Err(&Fault{Kind: f.GetKind(), Message: f.GetMessage()}), nil
}

// Call is one queued invocation of a method.
type Call struct {
	Args     []any
	Kwargs   map[string]any
	ResultID string
	// Set by EncodeCall if zero.
	Submitted time.Time
}

// EncodeCall serializes a call for the method queue. Every argument must decode again
// on the worker's side; values that do not (e.g. uint64 beyond the int64 range) are
// refused with a *BindingError.
func (b *Bus) EncodeCall(c *Call) ([]byte, error) {
	msg := &proto.CallRecord{ResultId: pb.String(c.ResultID)}

	submitted := c.Submitted
	if submitted.IsZero() {
		submitted = time.Now()
	}
	msg.Submitted = pb.Int64(submitted.UnixMicro())

	for i, a := range c.Args {
		enc, err := b.encodeArg(a)
		if err != nil {
			return nil, &BindingError{Message: fmt.Sprintf("argument %d: %v", i, err)}
		}
		msg.Args = append(msg.Args, enc)
	}

	names := make([]string, 0, len(c.Kwargs))
	for name := range c.Kwargs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		enc, err := b.encodeArg(c.Kwargs[name])
		if err != nil {
			return nil, &BindingError{Message: fmt.Sprintf("argument %q: %v", name, err)}
		}
		msg.Kwargs = append(msg.Kwargs, &proto.KeywordArg{Name: pb.String(name), Value: enc})
	}

	data, err := pb.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return b.framer.Frame(data)
}

func (b *Bus) encodeArg(v any) ([]byte, error) {
	enc, err := b.values.Marshal(v)
	if err != nil {
		return nil, err
	}
	if _, err := b.values.Decode(enc); err != nil {
		return nil, err
	}
	return enc, nil
}

/*
DecodeCall parses a queued call. Argument values come back in their generic form
(int64, float64, string, []any, map[string]any ...).

If the record is intact but an argument value cannot be decoded, DecodeCall returns
the call without arguments, so that its ResultID can still be answered, together with
a *BindingError.
*/
func (b *Bus) DecodeCall(data []byte) (*Call, error) {
	raw, err := b.framer.Unframe(data)
	if err != nil {
		return nil, err
	}
	msg := new(proto.CallRecord)
	if err := pb.Unmarshal(raw, msg); err != nil {
		return nil, fmt.Errorf("redisbus: corrupt call record: %w", err)
	}

	c := &Call{
		ResultID:  msg.GetResultId(),
		Submitted: time.UnixMicro(msg.GetSubmitted()),
	}
	for i, enc := range msg.GetArgs() {
		v, err := b.values.Decode(enc)
		if err != nil {
			return &Call{ResultID: c.ResultID, Submitted: c.Submitted},
				&BindingError{Message: fmt.Sprintf("argument %d: %v", i, err)}
		}
		c.Args = append(c.Args, v)
	}
	if kw := msg.GetKwargs(); len(kw) > 0 {
		c.Kwargs = make(map[string]any, len(kw))
		for _, k := range kw {
			v, err := b.values.Decode(k.GetValue())
			if err != nil {
				return &Call{ResultID: c.ResultID, Submitted: c.Submitted},
					&BindingError{Message: fmt.Sprintf("argument %q: %v", k.GetName(), err)}
			}
			c.Kwargs[k.GetName()] = v
		}
	}
	return c, nil
}

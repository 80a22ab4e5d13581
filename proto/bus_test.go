package proto

import (
	"bytes"
	"compress/gzip"
	"io"
	"testing"

	pb "github.com/gogo/protobuf/proto"
	"github.com/gogo/protobuf/protoc-gen-gogo/descriptor"
	"github.com/stretchr/testify/require"
)

func TestCallRecordWireFormat(t *testing.T) {
	rec := &CallRecord{
		Args:     [][]byte{{0x01}, {0x63, 'J', 'o', 'e'}},
		Kwargs:   []*KeywordArg{{Name: pb.String("username"), Value: []byte{0x63, 'J', 'o', 'e'}}},
		ResultId: pb.String("abc"),
	}

	b, err := pb.Marshal(rec)
	require.NoError(t, err)

	out := new(CallRecord)
	require.NoError(t, pb.Unmarshal(b, out))
	require.Equal(t, "abc", out.GetResultId())
	require.Len(t, out.GetArgs(), 2)
	require.Equal(t, "username", out.GetKwargs()[0].GetName())
	require.Equal(t, int64(0), out.GetSubmitted())
}

func TestOutcomeFault(t *testing.T) {
	o := &Outcome{Ok: pb.Bool(false), Fault: &Fault{Kind: pb.String("*errors.errorString"), Message: pb.String("boom")}}

	b, err := pb.Marshal(o)
	require.NoError(t, err)

	out := new(Outcome)
	require.NoError(t, pb.Unmarshal(b, out))
	require.False(t, out.GetOk())
	require.Equal(t, "boom", out.GetFault().GetMessage())
	require.Nil(t, out.GetValue())
}

func TestNilGetters(t *testing.T) {
	var o *Outcome
	require.False(t, o.GetOk())
	require.Nil(t, o.GetFault())
	require.Equal(t, "", o.GetFault().GetKind())
}

func TestDescriptor(t *testing.T) {
	gz, idx := (&Outcome{}).Descriptor()
	require.Equal(t, []int{3}, idx)

	r, err := gzip.NewReader(bytes.NewReader(gz))
	require.NoError(t, err)
	raw, err := io.ReadAll(r)
	require.NoError(t, err)

	fd := new(descriptor.FileDescriptorProto)
	require.NoError(t, pb.Unmarshal(raw, fd))
	require.Equal(t, "redisbus", fd.GetPackage())

	var names []string
	for _, m := range fd.GetMessageType() {
		names = append(names, m.GetName())
	}
	require.Equal(t, []string{"CallRecord", "KeywordArg", "Fault", "Outcome"}, names)
	require.Equal(t, ".redisbus.Fault", fd.GetMessageType()[3].GetField()[2].GetTypeName())
}

// Package proto contains the envelopes the bus stores in the broker, generated from
// bus.proto.
package proto

//go:generate protoc --gogo_out=paths=source_relative:. bus.proto

package wire

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Name is the gRPC content-subtype both ends must use.
const Name = "chatframe"

// Codec serializes Request and Response frames as protobuf Struct messages.
type Codec struct{}

func init() {
	encoding.RegisterCodec(Codec{})
}

func (Codec) Name() string { return Name }

func (Codec) Marshal(v any) ([]byte, error) {
	s, err := toStruct(v)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

func (Codec) Unmarshal(data []byte, v any) error {
	var s structpb.Struct
	if err := proto.Unmarshal(data, &s); err != nil {
		return err
	}
	switch m := v.(type) {
	case *Request:
		m.fromStruct(&s)
	case *Response:
		m.fromStruct(&s)
	default:
		return fmt.Errorf("%s: cannot unmarshal into %T", Name, v)
	}
	return nil
}

// Format renders a frame as single line JSON for debug logs.
func Format(v any) string {
	s, err := toStruct(v)
	if err != nil {
		return err.Error()
	}
	return protojson.MarshalOptions{UseProtoNames: true}.Format(s)
}

func toStruct(v any) (*structpb.Struct, error) {
	switch m := v.(type) {
	case *Request:
		return m.toStruct()
	case *Response:
		return m.toStruct()
	default:
		return nil, fmt.Errorf("%s: cannot marshal %T", Name, v)
	}
}

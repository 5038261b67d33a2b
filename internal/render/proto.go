package render

import (
	"encoding/json"
	"fmt"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// ProtoContentType is the media type of MarshalProto output
const ProtoContentType = "application/x-protobuf"

// ToStruct converts a scene into a protobuf Struct with the same field
// names as its JSON form
func ToStruct(scene Scene) (*structpb.Struct, error) {
	data, err := json.Marshal(scene)
	if err != nil {
		return nil, fmt.Errorf("encode scene: %w", err)
	}

	var fields map[string]interface{}
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}

	s, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, fmt.Errorf("convert scene: %w", err)
	}
	return s, nil
}

// MarshalProto encodes a scene as a binary google.protobuf.Struct
func MarshalProto(scene Scene) ([]byte, error) {
	s, err := ToStruct(scene)
	if err != nil {
		return nil, err
	}
	return proto.Marshal(s)
}

package realtime

import (
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Websocket subprotocols a client may request
const (
	SubprotocolJSON     = "binwatch.json"
	SubprotocolProtobuf = "binwatch.protobuf"
)

// Codec converts messages to and from websocket frames
type Codec interface {
	Subprotocol() string
	FrameType() int
	Encode(msg Outbound) ([]byte, error)
	Decode(data []byte) (Inbound, error)
}

// codecFor picks the codec for a negotiated subprotocol; JSON is the default
func codecFor(subprotocol string) Codec {
	if subprotocol == SubprotocolProtobuf {
		return protobufCodec{}
	}
	return jsonCodec{}
}

type jsonCodec struct{}

func (jsonCodec) Subprotocol() string { return SubprotocolJSON }
func (jsonCodec) FrameType() int      { return websocket.TextMessage }

func (jsonCodec) Encode(msg Outbound) ([]byte, error) {
	return json.Marshal(msg)
}

func (jsonCodec) Decode(data []byte) (Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(data, &msg); err != nil {
		return Inbound{}, fmt.Errorf("decoding json message: %w", err)
	}
	return msg, nil
}

// protobufCodec carries the same envelope as a google.protobuf.Value in
// binary frames, for clients that already speak protobuf.
type protobufCodec struct{}

func (protobufCodec) Subprotocol() string { return SubprotocolProtobuf }
func (protobufCodec) FrameType() int      { return websocket.BinaryMessage }

func (protobufCodec) Encode(msg Outbound) ([]byte, error) {
	asJSON, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}

	var generic any
	if err := json.Unmarshal(asJSON, &generic); err != nil {
		return nil, err
	}

	value, err := structpb.NewValue(generic)
	if err != nil {
		return nil, fmt.Errorf("building protobuf value: %w", err)
	}
	return proto.Marshal(value)
}

func (protobufCodec) Decode(data []byte) (Inbound, error) {
	value := &structpb.Value{}
	if err := proto.Unmarshal(data, value); err != nil {
		return Inbound{}, fmt.Errorf("decoding protobuf message: %w", err)
	}

	asJSON, err := json.Marshal(value.AsInterface())
	if err != nil {
		return Inbound{}, err
	}

	var msg Inbound
	if err := json.Unmarshal(asJSON, &msg); err != nil {
		return Inbound{}, fmt.Errorf("decoding protobuf message: %w", err)
	}
	return msg, nil
}

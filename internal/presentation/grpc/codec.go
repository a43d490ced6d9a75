package grpc

import (
	"bytes"
	"encoding/json"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/encoding"
)

// CodecName is the content-subtype of the JSON wire encoding.
const CodecName = "json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// CallOption forces JSON encoding on a client call. Clients need it because
// no protobuf stubs are generated for PredictionService.
func CallOption() grpclib.CallOption {
	return grpclib.ForceCodecCallOption{Codec: jsonCodec{}}
}

type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal keeps numbers as json.Number so integer fields survive intact.
func (jsonCodec) Unmarshal(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}

func (jsonCodec) Name() string {
	return CodecName
}

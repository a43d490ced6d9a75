package grpc

// Service definition for kara.prediction.v1.PredictionService. Messages travel
// as JSON through the codec registered in codec.go.

import (
	"context"

	grpclib "google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/AtharvaDeo101/KARA/internal/application/dto"
)

// PredictionServiceName is the fully qualified gRPC service name.
const PredictionServiceName = "kara.prediction.v1.PredictionService"

// PredictMethod is the full method path of Predict.
const PredictMethod = "/" + PredictionServiceName + "/Predict"

// PredictRequest carries one untrusted learner-course record.
type PredictRequest struct {
	Input map[string]any `json:"input"`
}

// PredictResponse carries the shaped prediction.
type PredictResponse struct {
	Prediction dto.PredictionResponse `json:"prediction"`
}

// PredictionServiceServer is the server API for PredictionService.
type PredictionServiceServer interface {
	Predict(context.Context, *PredictRequest) (*PredictResponse, error)
	mustEmbedUnimplementedPredictionServiceServer()
}

// UnimplementedPredictionServiceServer provides forward-compatible default implementations.
type UnimplementedPredictionServiceServer struct{}

func (UnimplementedPredictionServiceServer) Predict(context.Context, *PredictRequest) (*PredictResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Predict not implemented")
}
func (UnimplementedPredictionServiceServer) mustEmbedUnimplementedPredictionServiceServer() {}

// RegisterPredictionServiceServer registers the PredictionServiceServer with the gRPC server.
func RegisterPredictionServiceServer(s grpclib.ServiceRegistrar, srv PredictionServiceServer) {
	s.RegisterService(&_PredictionService_serviceDesc, srv)
}

var _PredictionService_serviceDesc = grpclib.ServiceDesc{
	ServiceName: PredictionServiceName,
	HandlerType: (*PredictionServiceServer)(nil),
	Methods: []grpclib.MethodDesc{
		{MethodName: "Predict", Handler: _PredictionService_Predict_Handler},
	},
	Streams: []grpclib.StreamDesc{},
}

func _PredictionService_Predict_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpclib.UnaryServerInterceptor) (interface{}, error) {
	req := new(PredictRequest)
	if err := dec(req); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(PredictionServiceServer).Predict(ctx, req)
	}
	info := &grpclib.UnaryServerInfo{Server: srv, FullMethod: PredictMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(PredictionServiceServer).Predict(ctx, req.(*PredictRequest))
	}
	return interceptor(ctx, req, info, handler)
}

// PredictionServiceClient is the client API for PredictionService.
type PredictionServiceClient struct {
	cc grpclib.ClientConnInterface
}

// NewPredictionServiceClient creates a client over cc.
func NewPredictionServiceClient(cc grpclib.ClientConnInterface) *PredictionServiceClient {
	return &PredictionServiceClient{cc: cc}
}

// Predict calls PredictionService/Predict using the JSON codec.
func (c *PredictionServiceClient) Predict(ctx context.Context, in *PredictRequest, opts ...grpclib.CallOption) (*PredictResponse, error) {
	out := new(PredictResponse)
	opts = append([]grpclib.CallOption{CallOption()}, opts...)
	if err := c.cc.Invoke(ctx, PredictMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

package samplergrpc

import (
	"context"
	"sync/atomic"

	"google.golang.org/grpc"

	"github.com/sampler-go/sampler-go"
)

// UnaryClientInterceptor returns a gRPC unary client interceptor that offers
// each completed call to s and invokes onSample for the admitted ones.
func UnaryClientInterceptor(s sampler.Sampler, onSample func(SampledCall)) grpc.UnaryClientInterceptor {
	var skipped atomic.Uint64
	return func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		err := invoker(ctx, method, req, reply, cc, opts...)
		if s.ShouldSample() {
			onSample(SampledCall{
				Ctx:          ctx,
				Method:       method,
				Req:          req,
				Resp:         reply,
				Err:          err,
				SkippedCalls: skipped.Swap(0),
			})
		} else {
			skipped.Add(1)
		}
		return err
	}
}

// Package samplergrpc provides gRPC interceptors that feed calls through a
// Sampler, so per-call instrumentation can run at a bounded rate on busy
// servers and clients. Calls the sampler rejects are only counted; the count
// is folded into the next sampled call.
package samplergrpc

import (
	"context"
	"sync/atomic"

	"google.golang.org/grpc"

	"github.com/sampler-go/sampler-go"
)

// SampledCall describes a call that the sampler admitted.
type SampledCall struct {
	// Ctx is the call's context.
	Ctx context.Context

	// Method is the full RPC method string.
	Method string

	// Req and Resp are the request and response messages of a unary call, nil
	// for streams.
	Req  any
	Resp any

	// Err is the error the call completed with, if any.
	Err error

	// SkippedCalls is the number of calls through this interceptor that were
	// not admitted since the previous sampled call.
	SkippedCalls uint64
}

// UnaryServerInterceptor returns a gRPC unary server interceptor that offers
// each completed call to s and invokes onSample for the admitted ones.
func UnaryServerInterceptor(s sampler.Sampler, onSample func(SampledCall)) grpc.UnaryServerInterceptor {
	var skipped atomic.Uint64
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		resp, err := handler(ctx, req)
		if s.ShouldSample() {
			onSample(SampledCall{
				Ctx:          ctx,
				Method:       info.FullMethod,
				Req:          req,
				Resp:         resp,
				Err:          err,
				SkippedCalls: skipped.Swap(0),
			})
		} else {
			skipped.Add(1)
		}
		return resp, err
	}
}

// StreamServerInterceptor returns a gRPC stream server interceptor that
// offers each completed stream to s and invokes onSample for the admitted
// ones.
func StreamServerInterceptor(s sampler.Sampler, onSample func(SampledCall)) grpc.StreamServerInterceptor {
	var skipped atomic.Uint64
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		err := handler(srv, ss)
		if s.ShouldSample() {
			onSample(SampledCall{
				Ctx:          ss.Context(),
				Method:       info.FullMethod,
				Err:          err,
				SkippedCalls: skipped.Swap(0),
			})
		} else {
			skipped.Add(1)
		}
		return err
	}
}

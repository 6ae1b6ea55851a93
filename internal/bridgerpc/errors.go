package bridgerpc

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"pkt.systems/pslog"
	"pkt.systems/trove/schema"
)

var notFoundErrors = []error{
	schema.ErrTabNotFound,
	schema.ErrDocumentNotFound,
	schema.ErrSettingNotFound,
}

// toStatus maps backend errors to gRPC status errors.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return status.FromContextError(err).Err()
	}
	for _, sentinel := range notFoundErrors {
		if errors.Is(err, sentinel) {
			return status.Error(codes.NotFound, err.Error())
		}
	}
	switch {
	case errors.Is(err, schema.ErrInvalidRequest):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, schema.ErrTroveLocked):
		return status.Error(codes.FailedPrecondition, err.Error())
	}
	return status.Errorf(codes.Internal, "%v", err)
}

// fromStatus restores sentinel errors from a gRPC status error.
func fromStatus(op string, err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return fmt.Errorf("bridge %s: %w", op, err)
	}
	msg := st.Message()
	switch st.Code() {
	case codes.NotFound:
		for _, sentinel := range notFoundErrors {
			if strings.Contains(msg, sentinel.Error()) {
				return wrapSentinel(sentinel, msg)
			}
		}
	case codes.InvalidArgument:
		return wrapSentinel(schema.ErrInvalidRequest, msg)
	case codes.FailedPrecondition:
		if strings.Contains(msg, schema.ErrTroveLocked.Error()) {
			return schema.ErrTroveLocked
		}
	case codes.Canceled:
		return fmt.Errorf("bridge %s: %w", op, context.Canceled)
	case codes.DeadlineExceeded:
		return fmt.Errorf("bridge %s: %w", op, context.DeadlineExceeded)
	}
	return fmt.Errorf("bridge %s: %w", op, err)
}

func wrapSentinel(sentinel error, msg string) error {
	if msg == sentinel.Error() {
		return sentinel
	}
	return fmt.Errorf("%w: %s", sentinel, strings.TrimPrefix(msg, sentinel.Error()+": "))
}

func logGRPCError(log pslog.Logger, msg string, err error) {
	if log == nil || err == nil {
		return
	}
	if st, ok := status.FromError(err); ok {
		log.Warn(msg, "err", err, "code", st.Code().String(), "message", st.Message())
		return
	}
	log.Warn(msg, "err", err)
}

package rpc

import (
	"errors"
	"net/http"

	"github.com/xtding233/gacha-mercy/internal/gacha"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Code maps a tracker error to a gRPC code.
func Code(err error) codes.Code {
	switch {
	case err == nil:
		return codes.OK
	case errors.Is(err, gacha.ErrCancelled):
		return codes.Aborted
	case errors.Is(err, gacha.ErrInsufficientInventory):
		return codes.FailedPrecondition
	case errors.Is(err, gacha.ErrUnknownCategory):
		return codes.NotFound
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, gacha.ErrUnknownRarity),
		errors.Is(err, gacha.ErrInvalidHit),
		errors.Is(err, gacha.ErrInvalidDrawCount),
		errors.Is(err, gacha.ErrConfigInvariant):
		return codes.InvalidArgument
	default:
		return codes.Internal
	}
}

// Status converts err to a gRPC status error. Internal errors get a
// generic message.
func Status(err error) error {
	if err == nil {
		return nil
	}
	c := Code(err)
	if c == codes.Internal {
		return status.Error(codes.Internal, "an unexpected error occurred")
	}
	return status.Error(c, err.Error())
}

// HTTPStatus maps err to an HTTP status code.
func HTTPStatus(err error) int {
	switch Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.Aborted:
		return http.StatusConflict
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case codes.NotFound:
		return http.StatusNotFound
	case codes.InvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

package commitrpc

import (
	"errors"
	"strings"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/wiimdy/openfunderse/canon"
	"github.com/wiimdy/openfunderse/commit"
	"github.com/wiimdy/openfunderse/digest"
	"github.com/wiimdy/openfunderse/storage"
)

// Error domains carried in google.rpc.ErrorInfo.
const (
	domainCanon  = "canon"
	domainDigest = "digest"
)

// toStatus maps a package error to a gRPC status. Structured canon and digest
// errors carry their kind and rule ID in an ErrorInfo detail so the client can
// rebuild them.
func toStatus(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	var ce *canon.Error
	if errors.As(err, &ce) {
		return withInfo(codes.InvalidArgument, ce.Message, &errdetails.ErrorInfo{
			Reason:   ce.RuleID,
			Domain:   domainCanon,
			Metadata: map[string]string{"kind": string(ce.Kind), "path": ce.Path},
		})
	}
	var de *digest.Error
	if errors.As(err, &de) {
		code := codes.Internal
		switch de.Kind {
		case digest.KindUnsupportedAlgorithm:
			code = codes.Unimplemented
		case digest.KindBackendUnavailable:
			code = codes.Unavailable
		case digest.KindMalformed:
			code = codes.InvalidArgument
		}
		return withInfo(code, de.Message, &errdetails.ErrorInfo{
			Reason:   de.RuleID,
			Domain:   domainDigest,
			Metadata: map[string]string{"kind": string(de.Kind), "remediation": de.Remediation},
		})
	}
	switch {
	case errors.Is(err, commit.ErrUnknownKind), errors.Is(err, commit.ErrNotMapping):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, storage.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidCID):
		return status.Error(codes.InvalidArgument, err.Error())
	case storage.IsIntegrity(err):
		return status.Error(codes.DataLoss, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

func withInfo(code codes.Code, msg string, info *errdetails.ErrorInfo) error {
	st := status.New(code, msg)
	if withDetails, err := st.WithDetails(info); err == nil {
		st = withDetails
	}
	return st.Err()
}

// fromStatus maps a gRPC error back to the package error it came from.
func fromStatus(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	for _, d := range st.Details() {
		info, ok := d.(*errdetails.ErrorInfo)
		if !ok {
			continue
		}
		switch info.GetDomain() {
		case domainCanon:
			return &canon.Error{
				Kind:    canon.Kind(info.GetMetadata()["kind"]),
				RuleID:  info.GetReason(),
				Path:    info.GetMetadata()["path"],
				Message: st.Message(),
			}
		case domainDigest:
			return &digest.Error{
				Kind:        digest.Kind(info.GetMetadata()["kind"]),
				RuleID:      info.GetReason(),
				Message:     st.Message(),
				Remediation: info.GetMetadata()["remediation"],
			}
		}
	}

	switch st.Code() {
	case codes.NotFound:
		return storage.ErrNotFound
	case codes.DataLoss:
		return storage.ErrCIDMismatch
	case codes.InvalidArgument:
		switch {
		case st.Message() == storage.ErrInvalidCID.Error():
			return storage.ErrInvalidCID
		case strings.HasPrefix(st.Message(), "canon: "):
			// Server without ErrorInfo details.
			return &canon.Error{Kind: canon.KindEncoding, Message: st.Message(), Cause: err}
		}
		return err
	default:
		return err
	}
}

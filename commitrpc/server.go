package commitrpc

import (
	"context"
	"errors"
	"fmt"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/wiimdy/openfunderse/canon"
	"github.com/wiimdy/openfunderse/cidutil"
	"github.com/wiimdy/openfunderse/commit"
	"github.com/wiimdy/openfunderse/digest"
	"github.com/wiimdy/openfunderse/storage"
)

// Server exposes a commit.Committer over the Commitment gRPC service.
type Server struct {
	UnimplementedCommitmentServer

	// Committer computes commitments; nil selects commit.New(nil).
	Committer *commit.Committer

	// Defaults supplies kind and algorithm when a request omits them.
	Defaults commit.Options

	// Stores, when set, receives the canonical bytes of every commitment,
	// keyed by algorithm. Preimage reads from it.
	Stores map[digest.Algorithm]storage.CAS
}

func (s *Server) committer() *commit.Committer {
	if s.Committer == nil {
		return commit.New(nil)
	}
	return s.Committer
}

func (s *Server) Commit(ctx context.Context, in *structpb.Struct) (*structpb.Struct, error) {
	_ = ctx
	fields := in.GetFields()
	c := s.committer()

	opts := commit.Options{
		Algorithm:     s.Defaults.Algorithm,
		Kind:          s.Defaults.Kind,
		EmitCanonical: boolField(fields, fieldEmitCanonical),
		EmitCID:       boolField(fields, fieldEmitCID),
		WriteBack:     boolField(fields, fieldWriteBack),
	}
	if v, ok := fields[fieldAlgorithm]; ok {
		opts.Algorithm = digest.Algorithm(v.GetStringValue())
	}
	if v, ok := fields[fieldKind]; ok {
		opts.Kind = commit.Kind(v.GetStringValue())
	}

	// The algorithm is checked before the record is decoded.
	alg, err := digest.ParseAlgorithm(string(opts.Algorithm))
	if err != nil {
		return nil, toStatus(err)
	}
	if err := c.Engine().Available(alg); err != nil {
		return nil, toStatus(err)
	}
	if _, err := commit.ParseKind(string(opts.Kind)); err != nil {
		return nil, toStatus(err)
	}

	record, err := recordOf(fields)
	if err != nil {
		return nil, toStatus(err)
	}

	store := s.Stores[alg]
	emitCanonical := opts.EmitCanonical
	opts.EmitCanonical = emitCanonical || store != nil

	res, err := c.Commit(record, opts)
	if err != nil {
		return nil, toStatus(err)
	}

	out := map[string]*structpb.Value{
		fieldDigest: structpb.NewStringValue(res.Hex),
	}
	if opts.EmitCID {
		out[fieldCID] = structpb.NewStringValue(res.CID.String())
	}
	if store != nil {
		id, err := store.Put(res.Canonical)
		if err != nil {
			return nil, toStatus(err)
		}
		want, err := cidutil.FromDigest(alg, res.Digest)
		if err != nil {
			return nil, toStatus(err)
		}
		if !id.Equals(want) {
			return nil, status.Error(codes.DataLoss, storage.ErrCIDMismatch.Error())
		}
		out[fieldCID] = structpb.NewStringValue(id.String())
		out[fieldStored] = structpb.NewBoolValue(true)
	}
	if emitCanonical {
		out[fieldCanonical] = structpb.NewStringValue(string(res.Canonical))
	}
	if res.Persisted != nil {
		out[fieldPersisted] = structpb.NewStringValue(string(res.Persisted))
	}
	return &structpb.Struct{Fields: out}, nil
}

func (s *Server) Preimage(ctx context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	_ = ctx
	id, err := cid.Decode(in.GetValue())
	if err != nil || !id.Defined() {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidCID.Error())
	}
	alg, err := cidutil.AlgorithmOf(id)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidCID.Error())
	}
	store := s.Stores[alg]
	if store == nil {
		return nil, status.Error(codes.FailedPrecondition, fmt.Sprintf("no preimage store for %s", alg))
	}
	b, err := store.Get(id)
	if err != nil {
		return nil, toStatus(err)
	}
	return wrapperspb.Bytes(b), nil
}

var errRecordMissing = errors.New("commitrpc: exactly one of record and record_json is required")

func recordOf(fields map[string]*structpb.Value) (any, error) {
	v, hasValue := fields[fieldRecord]
	j, hasJSON := fields[fieldRecordJSON]
	switch {
	case hasValue == hasJSON:
		return nil, status.Error(codes.InvalidArgument, errRecordMissing.Error())
	case hasJSON:
		return canon.DecodeJSON([]byte(j.GetStringValue()))
	default:
		return v.AsInterface(), nil
	}
}

func boolField(fields map[string]*structpb.Value, name string) bool {
	v, ok := fields[name]
	return ok && v.GetBoolValue()
}

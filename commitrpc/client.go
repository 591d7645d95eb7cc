package commitrpc

import (
	"context"
	"fmt"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/wiimdy/openfunderse/canon"
	"github.com/wiimdy/openfunderse/cidutil"
	"github.com/wiimdy/openfunderse/commit"
	"github.com/wiimdy/openfunderse/digest"
	"github.com/wiimdy/openfunderse/storage"
)

// Client calls a remote Commitment service.
type Client struct {
	cc     *grpc.ClientConn
	client CommitmentClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int

	// Extra is appended to the default dial options.
	Extra []grpc.DialOption
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Extra...)

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewCommitmentClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

// Commit sends record to the service. The record is canonicalized locally and
// travels as JSON text, so number literals reach the server unchanged;
// stripping and hashing happen remotely.
func (c *Client) Commit(ctx context.Context, record any, opts commit.Options) (*commit.Result, error) {
	if opts.Algorithm != "" {
		if _, err := digest.ParseAlgorithm(string(opts.Algorithm)); err != nil {
			return nil, err
		}
	}
	text, err := canon.Canonicalize(record)
	if err != nil {
		return nil, err
	}
	return c.CommitJSON(ctx, text, opts)
}

// CommitJSON sends a JSON document to the service as is.
func (c *Client) CommitJSON(ctx context.Context, data []byte, opts commit.Options) (*commit.Result, error) {
	fields := map[string]*structpb.Value{
		fieldRecordJSON:    structpb.NewStringValue(string(data)),
		fieldEmitCanonical: structpb.NewBoolValue(opts.EmitCanonical),
		fieldEmitCID:       structpb.NewBoolValue(opts.EmitCID),
		fieldWriteBack:     structpb.NewBoolValue(opts.WriteBack),
	}
	if opts.Algorithm != "" {
		fields[fieldAlgorithm] = structpb.NewStringValue(string(opts.Algorithm))
	}
	if opts.Kind != "" {
		fields[fieldKind] = structpb.NewStringValue(string(opts.Kind))
	}

	ctx, cancel := c.ctx(ctx)
	defer cancel()
	reply, err := c.client.Commit(ctx, &structpb.Struct{Fields: fields})
	if err != nil {
		return nil, fromStatus(err)
	}
	return decodeReply(reply, opts)
}

func decodeReply(reply *structpb.Struct, opts commit.Options) (*commit.Result, error) {
	f := reply.GetFields()
	hex := f[fieldDigest].GetStringValue()
	sum, err := digest.ParseHex(hex)
	if err != nil {
		return nil, fmt.Errorf("commitrpc: reply digest: %w", err)
	}
	res := &commit.Result{
		Algorithm: opts.Algorithm,
		Kind:      opts.Kind,
		Digest:    sum,
		Hex:       hex,
	}
	if v, ok := f[fieldCID]; ok {
		id, err := cid.Decode(v.GetStringValue())
		if err != nil {
			return nil, fmt.Errorf("commitrpc: reply cid: %w", err)
		}
		alg := replyAlgorithm(id, opts.Algorithm)
		want, err := cidutil.FromDigest(alg, sum)
		if err != nil || !want.Equals(id) {
			return nil, storage.ErrCIDMismatch
		}
		res.CID = id
		res.Algorithm = alg
	}
	if v, ok := f[fieldCanonical]; ok {
		res.Canonical = []byte(v.GetStringValue())
	}
	if v, ok := f[fieldPersisted]; ok {
		res.Persisted = []byte(v.GetStringValue())
	}
	return res, nil
}

// replyAlgorithm prefers the algorithm the CID itself names, so replies to
// requests that relied on server defaults still verify.
func replyAlgorithm(id cid.Cid, fallback digest.Algorithm) digest.Algorithm {
	if alg, err := cidutil.AlgorithmOf(id); err == nil {
		return alg
	}
	return fallback
}

// Preimage fetches the canonical bytes committed under id and verifies them
// against it.
func (c *Client) Preimage(ctx context.Context, id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Preimage(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return nil, fromStatus(err)
	}
	b := reply.GetValue()
	ok, err := cidutil.Verify(id, b)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

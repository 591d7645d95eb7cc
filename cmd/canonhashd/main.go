// canonhashd serves the Commitment gRPC service.
//
// With store_dir configured every commitment's canonical bytes are kept in a
// local preimage store and can be fetched back by CID.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"google.golang.org/grpc"

	"github.com/wiimdy/openfunderse/commit"
	"github.com/wiimdy/openfunderse/commitrpc"
	"github.com/wiimdy/openfunderse/config"
	"github.com/wiimdy/openfunderse/digest"
	"github.com/wiimdy/openfunderse/storage"
	"github.com/wiimdy/openfunderse/storage/localfs"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stderr))
}

func run(ctx context.Context, args []string, errOut io.Writer) int {
	fs := pflag.NewFlagSet("canonhashd", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	configPath := fs.String("config", "", "config file (default $"+config.EnvVar+")")
	listen := fs.String("listen", "", "listen address (overrides daemon.listen)")
	storeDir := fs.String("store", "", "preimage store directory (overrides store_dir)")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 2
	}
	if fs.Changed("listen") {
		cfg.Daemon.Listen = *listen
	}
	if fs.Changed("store") {
		cfg.StoreDir = *storeDir
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 2
	}
	logger, err := cfg.Log.NewLogger(errOut)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 2
	}

	engine := digest.Default()
	if backend := engine.Keccak256Backend(); backend != "" {
		logger.Info("keccak256 backend resolved", "provider", backend)
	} else {
		logger.Warn("keccak256 unavailable", "error", engine.Available(digest.Keccak256))
	}

	srv := &commitrpc.Server{
		Committer: commit.New(engine),
		Defaults:  cfg.CommitOptions(),
	}
	if dirs := cfg.StoreDirs(); dirs != nil {
		srv.Stores, err = openStores(dirs)
		if err != nil {
			logger.Error("open preimage store", "dir", cfg.StoreDir, "error", err)
			return 1
		}
	}

	lis, err := net.Listen("tcp", cfg.Daemon.Listen)
	if err != nil {
		logger.Error("listen", "addr", cfg.Daemon.Listen, "error", err)
		return 1
	}
	return serve(ctx, logger, lis, srv, cfg.Daemon.MaxMsgBytes)
}

func openStores(dirs []string) (map[digest.Algorithm]storage.CAS, error) {
	stores := make(map[digest.Algorithm]storage.CAS)
	for _, alg := range digest.Algorithms() {
		cas, err := localfs.Open(alg, dirs...)
		if err != nil {
			return nil, err
		}
		stores[alg] = cas
	}
	return stores, nil
}

// serve runs the gRPC server on lis until ctx is done, then stops gracefully.
func serve(ctx context.Context, logger *slog.Logger, lis net.Listener, srv *commitrpc.Server, maxMsgBytes int) int {
	opts := []grpc.ServerOption{grpc.UnaryInterceptor(commitrpc.LoggingInterceptor(logger))}
	if maxMsgBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(maxMsgBytes), grpc.MaxSendMsgSize(maxMsgBytes))
	}
	s := grpc.NewServer(opts...)
	commitrpc.RegisterCommitmentServer(s, srv)

	errc := make(chan error, 1)
	go func() { errc <- s.Serve(lis) }()
	logger.Info("canonhashd listening",
		"addr", lis.Addr().String(),
		"algorithm", srv.Defaults.Algorithm,
		"kind", srv.Defaults.Kind,
		"store", srv.Stores != nil,
	)

	select {
	case err := <-errc:
		if err != nil {
			logger.Error("serve", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
		logger.Info("shutting down")
		s.GracefulStop()
		<-errc
		return 0
	}
}

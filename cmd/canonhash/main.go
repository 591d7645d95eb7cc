// canonhash computes the canonical commitment of a JSON record.
//
// The record's own hash field (claimHash, intentHash or snapshotHash) is
// stripped before hashing. Canonical bytes, when requested, go to stdout; the
// 0x-prefixed digest goes to stderr.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/tidwall/jsonc"

	"github.com/wiimdy/openfunderse/canon"
	"github.com/wiimdy/openfunderse/commit"
	"github.com/wiimdy/openfunderse/commitrpc"
	"github.com/wiimdy/openfunderse/config"
	"github.com/wiimdy/openfunderse/digest"
	"github.com/wiimdy/openfunderse/storage/localfs"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	algo           string
	printCanonical bool
	setHashField   bool
	verify         bool
	emitCID        bool
	jsonc          bool
	store          string
	remote         string
	timeout        time.Duration
	configPath     string
	logLevel       string
	logFormat      string
}

func run(args []string, out io.Writer, errOut io.Writer) int {
	var o options
	fs := pflag.NewFlagSet("canonhash", pflag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.Usage = func() { fmt.Fprintln(errOut, "usage: canonhash <claim|intent|snapshot|raw> <file.json> [flags]") }
	fs.StringVar(&o.algo, "algo", "", "digest algorithm: keccak256 or sha256 (default from config, else keccak256)")
	fs.BoolVar(&o.printCanonical, "print-canonical", false, "write the canonical bytes to stdout")
	fs.BoolVar(&o.setHashField, "set-hash-field", false, "rewrite the file with its hash field set")
	fs.BoolVar(&o.verify, "verify", false, "check the stored hash field instead of trusting it")
	fs.BoolVar(&o.emitCID, "cid", false, "also print the CIDv1 of the canonical bytes")
	fs.BoolVar(&o.jsonc, "jsonc", false, "accept comments and trailing commas in the input")
	fs.StringVar(&o.store, "store", "", "keep the canonical bytes in this preimage store directory")
	fs.StringVar(&o.remote, "remote", "", "commit through a canonhashd at this address")
	fs.DurationVar(&o.timeout, "timeout", 10*time.Second, "per-RPC timeout for --remote")
	fs.StringVar(&o.configPath, "config", "", "config file (default $"+config.EnvVar+")")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFormat, "log-format", "", "log format: text or json")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			printUsage(out, fs)
			return 0
		}
		return 2
	}
	if fs.NArg() != 2 {
		printUsage(errOut, fs)
		return 2
	}

	cfg, err := config.Load(o.configPath)
	if err != nil {
		fmt.Fprintf(errOut, "config: %v\n", err)
		return 2
	}
	if fs.Changed("algo") {
		cfg.Algorithm = o.algo
	}
	if fs.Changed("store") {
		cfg.StoreDir = o.store
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = o.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = o.logFormat
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

	kind, err := commit.ParseKind(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(errOut, "%v (want one of %s)\n", err, kindList())
		return 2
	}
	if o.verify && o.remote != "" {
		fmt.Fprintln(errOut, "--verify cannot be combined with --remote")
		return 2
	}
	if o.verify && kind == commit.Raw {
		fmt.Fprintln(errOut, "--verify needs a record kind with a hash field")
		return 2
	}

	opts := cfg.CommitOptions()
	opts.Kind = kind
	opts.EmitCanonical = o.printCanonical || cfg.StoreDir != ""
	opts.EmitCID = o.emitCID
	opts.WriteBack = o.setHashField
	if o.setHashField && kind == commit.Raw {
		logger.Warn("--set-hash-field ignored: raw records have no hash field")
		opts.WriteBack = false
	}

	path := fs.Arg(1)
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(errOut, "read %s: %v\n", path, err)
		return 1
	}
	if o.jsonc {
		data = jsonc.ToJSON(data)
	}

	var res *commit.Result
	if o.remote != "" {
		res, err = commitRemote(o, data, opts)
	} else {
		res, err = commitLocal(data, opts, o.verify)
	}
	if err != nil {
		fmt.Fprintf(errOut, "%s: %v\n", path, err)
		return 1
	}
	logger.Debug("committed", "kind", kind, "algorithm", opts.Algorithm, "digest", res.Hex)

	if dirs := cfg.StoreDirs(); dirs != nil {
		if err := storePreimage(logger, dirs, opts.Algorithm, res.Canonical); err != nil {
			fmt.Fprintf(errOut, "store: %v\n", err)
			return 1
		}
	}
	if o.printCanonical {
		if _, err := out.Write(append(res.Canonical, '\n')); err != nil {
			return 1
		}
	}
	fmt.Fprintln(errOut, res.Hex)
	if o.emitCID {
		fmt.Fprintln(errOut, res.CID.String())
	}

	if res.Persisted != nil {
		if err := rewrite(path, res.Persisted); err != nil {
			fmt.Fprintf(errOut, "write %s: %v\n", path, err)
			return 1
		}
		logger.Debug("hash field written", "path", path, "field", kind.HashField())
	}
	return 0
}

func commitLocal(data []byte, opts commit.Options, verify bool) (*commit.Result, error) {
	// Reject the algorithm before reading the record.
	if err := digest.Default().Available(opts.Algorithm); err != nil {
		return nil, err
	}
	record, err := canon.DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	if verify {
		if _, err := commit.Verify(record, opts.Kind, opts.Algorithm); err != nil {
			return nil, err
		}
	}
	return commit.Commit(record, opts)
}

func commitRemote(o options, data []byte, opts commit.Options) (*commit.Result, error) {
	client, err := commitrpc.Dial(o.remote, commitrpc.DialOptions{Timeout: o.timeout})
	if err != nil {
		return nil, err
	}
	defer client.Close()
	client.Timeout = o.timeout
	return client.CommitJSON(context.Background(), data, opts)
}

func storePreimage(logger *slog.Logger, dirs []string, alg digest.Algorithm, canonical []byte) error {
	cas, err := localfs.Open(alg, dirs...)
	if err != nil {
		return err
	}
	id, err := cas.Put(canonical)
	if err != nil {
		return err
	}
	logger.Debug("preimage stored", "cid", id.String(), "dirs", dirs)
	return nil
}

// rewrite replaces path with data, keeping its permission bits.
func rewrite(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}

func kindList() string {
	names := make([]string, 0, 4)
	for _, k := range commit.Kinds() {
		names = append(names, string(k))
	}
	return strings.Join(names, ", ")
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintln(w, "canonhash: canonical commitment of a JSON record")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  canonhash <claim|intent|snapshot|raw> <file.json> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprint(w, fs.FlagUsages())
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Notes:")
	fmt.Fprintln(w, "  - the digest is printed to stderr as 0x + 64 lowercase hex digits")
	fmt.Fprintln(w, "  - --print-canonical writes the hashed bytes to stdout followed by one newline")
	fmt.Fprintln(w, "  - --set-hash-field rewrites the file sorted and indented by two spaces")
	fmt.Fprintln(w, "  - exit status: 0 ok, 1 failure, 2 usage")
}

// vector_gen recomputes testdata/conformance/vectors.json from the input
// files its entries name. With --check it reports drift instead of writing.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"

	"github.com/spf13/pflag"

	"github.com/wiimdy/openfunderse/canon"
	"github.com/wiimdy/openfunderse/commit"
	"github.com/wiimdy/openfunderse/digest"
)

type vector struct {
	Name         string `json:"name"`
	Kind         string `json:"kind"`
	Input        string `json:"input"`
	Canonical    string `json:"canonical"`
	SHA256       string `json:"sha256"`
	Keccak256    string `json:"keccak256"`
	CIDSHA256    string `json:"cid_sha256"`
	CIDKeccak256 string `json:"cid_keccak256"`
}

type manifest struct {
	Vectors []vector `json:"vectors"`
}

func main() {
	path := pflag.String("manifest", "testdata/conformance/vectors.json", "vector manifest to regenerate")
	check := pflag.Bool("check", false, "fail if the manifest is out of date instead of rewriting it")
	pflag.Parse()

	if *check {
		stale, err := outOfDate(*path)
		if err != nil {
			panic(err)
		}
		if stale {
			fmt.Fprintf(os.Stderr, "%s is out of date; run vector_gen\n", *path)
			os.Exit(1)
		}
		return
	}

	m, err := regenerate(*path)
	if err != nil {
		panic(err)
	}
	var out bytes.Buffer
	enc := json.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		panic(err)
	}
	if err := os.WriteFile(*path, out.Bytes(), 0o644); err != nil {
		panic(err)
	}
	fmt.Printf("wrote %d vectors to %s\n", len(m.Vectors), *path)
}

func readManifest(path string) (manifest, error) {
	var m manifest
	b, err := os.ReadFile(path)
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(b, &m)
	return m, err
}

// regenerate recomputes every vector in the manifest at path from its input.
func regenerate(path string) (manifest, error) {
	m, err := readManifest(path)
	if err != nil {
		return m, err
	}
	root := filepath.Dir(path)
	for i := range m.Vectors {
		if err := fill(root, &m.Vectors[i]); err != nil {
			return m, fmt.Errorf("%s: %w", m.Vectors[i].Name, err)
		}
	}
	return m, nil
}

// outOfDate compares decoded values, since encoding/json escapes U+2028 and
// U+2029 no matter how the manifest spells them.
func outOfDate(path string) (bool, error) {
	current, err := readManifest(path)
	if err != nil {
		return false, err
	}
	fresh, err := regenerate(path)
	if err != nil {
		return false, err
	}
	return !reflect.DeepEqual(current, fresh), nil
}

func fill(root string, v *vector) error {
	kind, err := commit.ParseKind(v.Kind)
	if err != nil {
		return err
	}
	in, err := os.ReadFile(filepath.Join(root, v.Input))
	if err != nil {
		return err
	}
	record, err := canon.DecodeJSON(in)
	if err != nil {
		return err
	}
	for _, alg := range digest.Algorithms() {
		res, err := commit.Commit(record, commit.Options{Algorithm: alg, Kind: kind, EmitCanonical: true, EmitCID: true})
		if err != nil {
			return err
		}
		v.Canonical = string(res.Canonical)
		switch alg {
		case digest.SHA256:
			v.SHA256, v.CIDSHA256 = res.Hex, res.CID.String()
		case digest.Keccak256:
			v.Keccak256, v.CIDKeccak256 = res.Hex, res.CID.String()
		}
	}
	return nil
}

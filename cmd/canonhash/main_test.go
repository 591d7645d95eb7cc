package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const claimKeccak = "0x93c3118266f6a0c6b36333eda660e46a0f8928907abf0cdb57f8875108c73a6f"

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	t.Setenv("CANONHASH_CONFIG", "")
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_ClaimDigest(t *testing.T) {
	path := writeFile(t, "claim.json", `{"claimHash":"0xdeadbeef","amount":"5","participant":"0x00000000000000000000000000000000000000a1","fundId":"fund-alpha"}`)
	code, out, errOut := runCLI(t, "claim", path, "--print-canonical")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if want := `{"amount":"5","fundId":"fund-alpha","participant":"0x00000000000000000000000000000000000000a1"}` + "\n"; out != want {
		t.Fatalf("stdout got %q want %q", out, want)
	}
	if strings.TrimSpace(errOut) != claimKeccak {
		t.Fatalf("stderr got %q", errOut)
	}
}

func TestRun_RawSHA256WithCID(t *testing.T) {
	path := writeFile(t, "raw.json", `{"b":"x","a":"1"}`)
	code, out, errOut := runCLI(t, "raw", path, "--algo", "sha256", "--cid")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != "" {
		t.Fatalf("stdout must be empty without --print-canonical: %q", out)
	}
	lines := strings.Split(strings.TrimSpace(errOut), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected digest and cid lines: %q", errOut)
	}
	if lines[0] != "0x6d2349f371a5eb9cf30f59249da29fca7a1a5c25c4b43442dd95be13cd927b87" {
		t.Fatalf("digest got %s", lines[0])
	}
	if lines[1] != "bafkreidnene7g4nf5oopgd2zeso2fh6kpinfyjoewq2efxmvxyj43et3q4" {
		t.Fatalf("cid got %s", lines[1])
	}
}

func TestRun_SetHashField(t *testing.T) {
	path := writeFile(t, "claim.json", `{"claimHash":"0xdeadbeef","amount":"5","participant":"0x00000000000000000000000000000000000000a1","fundId":"fund-alpha"}`)
	code, _, errOut := runCLI(t, "claim", path, "--set-hash-field")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if errOut != claimKeccak+"\n" {
		t.Fatalf("stderr should hold only the digest, got %q", errOut)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	want, err := os.ReadFile("../../testdata/conformance/claim.persisted")
	if err != nil {
		t.Fatalf("read claim.persisted: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("rewritten file:\n%s\nwant:\n%s", got, want)
	}

	if code, _, errOut := runCLI(t, "claim", path, "--verify"); code != 0 {
		t.Fatalf("verify after write-back: exit %d: %s", code, errOut)
	}
}

func TestRun_SetHashFieldRawIsNoop(t *testing.T) {
	content := `{"b":"x","a":"1"}`
	path := writeFile(t, "raw.json", content)
	code, _, errOut := runCLI(t, "raw", path, "--set-hash-field")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if !strings.Contains(errOut, "ignored") {
		t.Fatalf("expected a warning: %s", errOut)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(got) != content {
		t.Fatalf("raw file was rewritten: %s", got)
	}
}

func TestRun_VerifyMismatch(t *testing.T) {
	path := writeFile(t, "claim.json", `{"claimHash":"`+claimKeccak+`","amount":"6","participant":"0x00000000000000000000000000000000000000a1","fundId":"fund-alpha"}`)
	code, _, errOut := runCLI(t, "claim", path, "--verify")
	if code != 1 {
		t.Fatalf("expected exit 1, got %d: %s", code, errOut)
	}
	if !strings.Contains(errOut, "does not match") {
		t.Fatalf("unexpected stderr: %s", errOut)
	}
}

func TestRun_JSONC(t *testing.T) {
	path := writeFile(t, "raw.jsonc", "{\n  // comment\n  \"b\": \"x\",\n  \"a\": \"1\",\n}\n")
	if code, _, _ := runCLI(t, "raw", path); code != 1 {
		t.Fatalf("comments must be rejected without --jsonc, got exit %d", code)
	}
	code, out, errOut := runCLI(t, "raw", path, "--jsonc", "--print-canonical")
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if out != `{"a":"1","b":"x"}`+"\n" {
		t.Fatalf("stdout got %q", out)
	}
}

func TestRun_Store(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, "raw.json", `{"b":"x","a":"1"}`)
	code, _, errOut := runCLI(t, "raw", path, "--algo", "sha256", "--store", dir)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if errOut != "0x6d2349f371a5eb9cf30f59249da29fca7a1a5c25c4b43442dd95be13cd927b87\n" {
		t.Fatalf("stderr should hold only the digest, got %q", errOut)
	}
	stored := filepath.Join(dir, "ba", "bafkreidnene7g4nf5oopgd2zeso2fh6kpinfyjoewq2efxmvxyj43et3q4")
	got, err := os.ReadFile(stored)
	if err != nil {
		t.Fatalf("preimage not stored: %v", err)
	}
	if string(got) != `{"a":"1","b":"x"}` {
		t.Fatalf("stored bytes %q", got)
	}
}

func TestRun_Config(t *testing.T) {
	cfgPath := writeFile(t, "canonhash.yaml", "algorithm: sha256\n")
	path := writeFile(t, "raw.json", `{"b":"x","a":"1"}`)
	code, _, errOut := runCLI(t, "raw", path, "--config", cfgPath)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, errOut)
	}
	if strings.TrimSpace(errOut) != "0x6d2349f371a5eb9cf30f59249da29fca7a1a5c25c4b43442dd95be13cd927b87" {
		t.Fatalf("config algorithm not applied: %s", errOut)
	}
}

func TestRun_Failures(t *testing.T) {
	good := writeFile(t, "raw.json", `{"a":"1"}`)
	nan := writeFile(t, "nan.json", `{"a":1e400}`)
	cases := []struct {
		name string
		args []string
		code int
	}{
		{"no args", nil, 2},
		{"one arg", []string{"raw"}, 2},
		{"unknown kind", []string{"merkle", good}, 2},
		{"unknown algorithm", []string{"raw", good, "--algo", "md5"}, 2},
		{"unknown flag", []string{"raw", good, "--bogus"}, 2},
		{"verify raw", []string{"raw", good, "--verify"}, 2},
		{"missing file", []string{"raw", filepath.Join(t.TempDir(), "absent.json")}, 1},
		{"non-finite", []string{"raw", nan}, 1},
		{"claim array", []string{"claim", writeFile(t, "arr.json", `[1]`)}, 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _, errOut := runCLI(t, tc.args...)
			if code != tc.code {
				t.Fatalf("exit %d want %d: %s", code, tc.code, errOut)
			}
		})
	}
}

func TestRun_Help(t *testing.T) {
	code, out, _ := runCLI(t, "--help")
	if code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("help: exit %d, %q", code, out)
	}
}

package commit

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/wiimdy/openfunderse/canon"
	"github.com/wiimdy/openfunderse/digest"
)

func claimRecord() map[string]any {
	return map[string]any{
		"claimHash":   "0xdeadbeef",
		"amount":      "5",
		"participant": "0x00000000000000000000000000000000000000a1",
		"fundId":      "fund-alpha",
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Fatalf("ParseKind(%q) = %q, %v", k, got, err)
		}
	}
	for _, bad := range []string{"", "Claim", "claims", "merkle"} {
		if _, err := ParseKind(bad); !errors.Is(err, ErrUnknownKind) {
			t.Fatalf("ParseKind(%q): expected ErrUnknownKind, got %v", bad, err)
		}
	}
	want := map[Kind]string{Claim: "claimHash", Intent: "intentHash", Snapshot: "snapshotHash", Raw: ""}
	for k, f := range want {
		if k.HashField() != f {
			t.Fatalf("%s: hash field %q, want %q", k, k.HashField(), f)
		}
	}
}

func TestStrip_DoesNotModifyInput(t *testing.T) {
	in := claimRecord()
	out, err := Strip(in, Claim)
	if err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if _, ok := out.(map[string]any)["claimHash"]; ok {
		t.Fatalf("claimHash not stripped")
	}
	if !reflect.DeepEqual(in, claimRecord()) {
		t.Fatalf("input was modified: %v", in)
	}
}

func TestStrip_Idempotent(t *testing.T) {
	once, err := Strip(claimRecord(), Claim)
	if err != nil {
		t.Fatalf("Strip: %v", err)
	}
	twice, err := Strip(once, Claim)
	if err != nil {
		t.Fatalf("Strip: %v", err)
	}
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("strip is not idempotent")
	}
}

func TestStrip_OnlyOwnField(t *testing.T) {
	in := map[string]any{"intentHash": "0x00", "snapshotHash": "0x11", "claimHash": "0x22"}
	out, err := Strip(in, Intent)
	if err != nil {
		t.Fatalf("Strip: %v", err)
	}
	want := map[string]any{"snapshotHash": "0x11", "claimHash": "0x22"}
	if !reflect.DeepEqual(out, want) {
		t.Fatalf("got %v want %v", out, want)
	}
}

func TestStrip_NonMapping(t *testing.T) {
	if _, err := Strip([]any{"a"}, Claim); !errors.Is(err, ErrNotMapping) {
		t.Fatalf("expected ErrNotMapping, got %v", err)
	}
	out, err := Strip([]any{"a"}, Raw)
	if err != nil {
		t.Fatalf("raw arrays must pass through: %v", err)
	}
	if !reflect.DeepEqual(out, []any{"a"}) {
		t.Fatalf("raw record changed: %v", out)
	}
	if _, err := Strip(map[string]any{}, Kind("bogus")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestCommit_TypedStringMap(t *testing.T) {
	typed := map[string]string{}
	for k, v := range claimRecord() {
		typed[k] = v.(string)
	}
	res, err := Commit(typed, Options{Algorithm: digest.Keccak256, Kind: Claim, WriteBack: true})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if res.Hex != "0x93c3118266f6a0c6b36333eda660e46a0f8928907abf0cdb57f8875108c73a6f" {
		t.Fatalf("unexpected digest %s", res.Hex)
	}
	if typed["claimHash"] != "0xdeadbeef" {
		t.Fatalf("input modified: %v", typed)
	}

	typed["claimHash"] = res.Hex
	if _, err := Verify(typed, Claim, digest.Keccak256); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if _, err := Strip(map[int]string{1: "a"}, Claim); !errors.Is(err, ErrNotMapping) {
		t.Fatalf("expected ErrNotMapping for int keys, got %v", err)
	}
}

func TestCommit_ClaimIgnoresStoredHash(t *testing.T) {
	res, err := Commit(claimRecord(), Options{Algorithm: digest.Keccak256, Kind: Claim, EmitCanonical: true})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	want := `{"amount":"5","fundId":"fund-alpha","participant":"0x00000000000000000000000000000000000000a1"}`
	if string(res.Canonical) != want {
		t.Fatalf("canonical: got %s want %s", res.Canonical, want)
	}
	if res.Hex != "0x93c3118266f6a0c6b36333eda660e46a0f8928907abf0cdb57f8875108c73a6f" {
		t.Fatalf("unexpected digest %s", res.Hex)
	}

	other := claimRecord()
	other["claimHash"] = "0x0123"
	again, err := Commit(other, Options{Algorithm: digest.Keccak256, Kind: Claim})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if again.Hex != res.Hex {
		t.Fatalf("stored hash value leaked into the commitment")
	}
	if again.Canonical != nil {
		t.Fatalf("canonical bytes returned without EmitCanonical")
	}
}

func TestCommit_RawKeepsHashLikeFields(t *testing.T) {
	raw, err := Commit(claimRecord(), Options{Algorithm: digest.SHA256, Kind: Raw, EmitCanonical: true})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if !strings.Contains(string(raw.Canonical), `"claimHash":"0xdeadbeef"`) {
		t.Fatalf("raw commit must not strip fields: %s", raw.Canonical)
	}
}

func TestCommit_UnsupportedAlgorithmCheckedFirst(t *testing.T) {
	_, err := Commit(map[string]any{"x": math.NaN()}, Options{Algorithm: "md5", Kind: Raw})
	if !digest.IsUnsupportedAlgorithm(err) {
		t.Fatalf("expected an unsupported algorithm error, got %v", err)
	}
}

func TestCommit_EncodingErrorPropagates(t *testing.T) {
	_, err := Commit(map[string]any{"x": math.Inf(1), "claimHash": "0x1"}, Options{Algorithm: digest.SHA256, Kind: Claim})
	if !canon.IsEncoding(err) {
		t.Fatalf("expected an encoding error, got %v", err)
	}
}

func TestCommit_UnavailableBackend(t *testing.T) {
	c := New(digest.NewEngine(digest.NewRegistry()))
	_, err := c.Commit(map[string]any{"a": "1"}, Options{Algorithm: digest.Keccak256, Kind: Raw})
	if !digest.IsBackendUnavailable(err) {
		t.Fatalf("expected backend unavailable, got %v", err)
	}
	if _, err := c.Commit(map[string]any{"a": "1"}, Options{Algorithm: digest.SHA256, Kind: Raw}); err != nil {
		t.Fatalf("sha256 must work without a keccak backend: %v", err)
	}
}

func TestCommit_WriteBack(t *testing.T) {
	in := claimRecord()
	res, err := Commit(in, Options{Algorithm: digest.Keccak256, Kind: Claim, WriteBack: true, EmitCID: true})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	want := "{\n" +
		"  \"amount\": \"5\",\n" +
		"  \"claimHash\": \"" + res.Hex + "\",\n" +
		"  \"fundId\": \"fund-alpha\",\n" +
		"  \"participant\": \"0x00000000000000000000000000000000000000a1\"\n" +
		"}\n"
	if string(res.Persisted) != want {
		t.Fatalf("persisted:\n%s\nwant:\n%s", res.Persisted, want)
	}
	if in["claimHash"] != "0xdeadbeef" {
		t.Fatalf("input record was modified")
	}
	if !res.CID.Defined() {
		t.Fatalf("expected a CID")
	}

	// Re-committing the persisted form yields the same digest.
	record, err := canon.DecodeJSON(res.Persisted)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	again, err := Commit(record, Options{Algorithm: digest.Keccak256, Kind: Claim})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if again.Hex != res.Hex {
		t.Fatalf("persisted record does not reproduce its commitment")
	}

	raw, err := Commit(in, Options{Algorithm: digest.Keccak256, Kind: Raw, WriteBack: true})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if raw.Persisted != nil {
		t.Fatalf("raw records have no hash field to write back")
	}
}

func TestVerify(t *testing.T) {
	res, err := Commit(claimRecord(), Options{Algorithm: digest.SHA256, Kind: Claim, WriteBack: true})
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	record, err := canon.DecodeJSON(res.Persisted)
	if err != nil {
		t.Fatalf("DecodeJSON: %v", err)
	}
	if _, err := Verify(record, Claim, digest.SHA256); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	upper := record.(map[string]any)
	upper["claimHash"] = "0x" + strings.ToUpper(res.Hex[2:])
	if _, err := Verify(upper, Claim, digest.SHA256); err != nil {
		t.Fatalf("Verify must accept uppercase hex: %v", err)
	}

	if _, err := Verify(record, Claim, digest.Keccak256); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch under another algorithm, got %v", err)
	}

	tampered := claimRecord()
	tampered["claimHash"] = res.Hex
	tampered["amount"] = "6"
	if _, err := Verify(tampered, Claim, digest.SHA256); !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("expected ErrHashMismatch, got %v", err)
	}

	missing := claimRecord()
	delete(missing, "claimHash")
	if _, err := Verify(missing, Claim, digest.SHA256); !errors.Is(err, ErrMissingHash) {
		t.Fatalf("expected ErrMissingHash, got %v", err)
	}
	if _, err := Verify(map[string]any{"claimHash": json.Number("1")}, Claim, digest.SHA256); !errors.Is(err, ErrMissingHash) {
		t.Fatalf("non-string hash: expected ErrMissingHash, got %v", err)
	}
	if _, err := Verify(claimRecord(), Claim, digest.SHA256); err == nil {
		t.Fatalf("short stored hash must fail")
	}
	if _, err := Verify(claimRecord(), Raw, digest.SHA256); !errors.Is(err, ErrNoHashField) {
		t.Fatalf("expected ErrNoHashField, got %v", err)
	}
}

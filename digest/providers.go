package digest

import (
	"github.com/multiformats/go-multihash"
	_ "github.com/multiformats/go-multihash/register/sha3"
	"golang.org/x/crypto/sha3"
)

// xcryptoKeccak is the primary provider.
type xcryptoKeccak struct{}

func (xcryptoKeccak) Name() string { return "golang.org/x/crypto/sha3" }

func (xcryptoKeccak) Sum(data []byte) ([]byte, error) {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	return h.Sum(nil), nil
}

// multihashKeccak goes through the multihash hasher registry.
type multihashKeccak struct{}

func (multihashKeccak) Name() string { return "github.com/multiformats/go-multihash" }

func (multihashKeccak) Sum(data []byte) ([]byte, error) {
	mh, err := multihash.Sum(data, multihash.KECCAK_256, -1)
	if err != nil {
		return nil, err
	}
	dec, err := multihash.Decode(mh)
	if err != nil {
		return nil, err
	}
	return dec.Digest, nil
}

package orbit

import (
	"encoding/hex"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"
)

// Identifier is the content hash identifying an entity within the subnet
// protocol. Artifacts, blocks and nodes are all addressed by Identifier.
type Identifier [32]byte

// ZeroID is the lowest value in the 32-byte ID space, used as the parent
// reference of genesis entities.
var ZeroID = Identifier{}

// canonical encoding options for hashing; deterministic across replicas
var encMode cbor.EncMode

func init() {
	var err error
	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("could not initialize canonical encoder: %s", err))
	}
}

// MakeID hashes the canonical encoding of the given value into an Identifier.
// Two replicas computing MakeID over equal values always obtain the same
// Identifier, which is what all content-addressed pool lookups rely on.
func MakeID(v interface{}) Identifier {
	data, err := encMode.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("could not encode value for hashing: %s", err))
	}
	return HashToID(data)
}

// HashToID hashes raw bytes into an Identifier.
func HashToID(data []byte) Identifier {
	var id Identifier
	h := sha3.Sum256(data)
	copy(id[:], h[:])
	return id
}

// HexStringToIdentifier parses a 64-character hex string into an Identifier.
func HexStringToIdentifier(s string) (Identifier, error) {
	var id Identifier
	raw, err := hex.DecodeString(s)
	if err != nil {
		return id, fmt.Errorf("could not decode identifier hex: %w", err)
	}
	if len(raw) != len(id) {
		return id, fmt.Errorf("invalid identifier length (%d != %d)", len(raw), len(id))
	}
	copy(id[:], raw)
	return id, nil
}

func (id Identifier) String() string {
	return hex.EncodeToString(id[:])
}

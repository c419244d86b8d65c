// Package derive maps a namespace tag and component identities to a stable
// record address. The same inputs always produce the same address, which is
// what the record store uses as its natural key and duplicate guard.
package derive

import (
	"encoding/binary"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"golang.org/x/crypto/sha3"
)

// Namespace tags
const (
	TagMembers          = "members"
	TagMerchant         = "merchant"
	TagController       = "controller"
	TagFactory          = "factory"
	TagCustodianDeposit = "custodian_deposit"
	TagMerchantDeposit  = "merchant_deposit"
	TagMintRequest      = "mint_request"
	TagBurnRequest      = "burn_request"
	TagTokenAccount     = "token_account"
)

// Proof is the salt a derived address commits to.
type Proof common.Hash

// Hex returns the 0x-prefixed proof.
func (p Proof) Hex() string {
	return common.Hash(p).Hex()
}

// ProofFromHex parses a proof previously rendered with Hex.
func ProofFromHex(s string) Proof {
	return Proof(common.HexToHash(s))
}

// Salt hashes the tag and components with length prefixes so that
// ("ab","c") and ("a","bc") never collide.
func Salt(tag string, components ...[]byte) [32]byte {
	h := sha3.NewLegacyKeccak256()
	var prefix [8]byte
	write := func(b []byte) {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(b)))
		h.Write(prefix[:])
		h.Write(b)
	}
	write([]byte(tag))
	for _, c := range components {
		write(c)
	}
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// Address derives the record address owned by program for the given tag and
// components, CREATE2 style.
func Address(program common.Address, tag string, components ...[]byte) (common.Address, Proof) {
	salt := Salt(tag, components...)
	return crypto.CreateAddress2(program, salt, crypto.Keccak256([]byte(tag))), Proof(salt)
}

// Verify reports whether id and proof are what Address yields for the inputs.
func Verify(id common.Address, proof Proof, program common.Address, tag string, components ...[]byte) bool {
	expected, expectedProof := Address(program, tag, components...)
	return expected == id && expectedProof == proof
}

// ProgramAddress returns the default address for a named program.
func ProgramAddress(name string) common.Address {
	return common.BytesToAddress(crypto.Keccak256([]byte("wrapchain/program/" + name))[12:])
}

// Uint64 encodes n the way counters are rendered into seeds (decimal).
func Uint64(n uint64) []byte {
	return []byte(strconv.FormatUint(n, 10))
}

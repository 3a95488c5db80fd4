package chain

import (
	"crypto/sha512"
	"encoding/base32"
	"encoding/binary"
	"fmt"
)

// AddressLen is the fixed length of a network address.
const AddressLen = 58

const msigVersion = 1

var addrEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// ValidAddress reports whether an address has the network's fixed length.
func ValidAddress(address string) bool {
	return len(address) == AddressLen
}

// DeriveMultisigAddress hashes the domain separator, multisig version,
// threshold, and ordered signatory addresses into a control address. The
// same inputs always yield the same address; signatory order matters.
func DeriveMultisigAddress(signatories []string, threshold int) (string, error) {
	if threshold < 1 || threshold > len(signatories) {
		return "", fmt.Errorf("derive multisig address: threshold %d of %d signatories", threshold, len(signatories))
	}
	h := sha512.New512_256()
	h.Write([]byte("MultisigAddr"))
	h.Write([]byte{msigVersion, byte(threshold)})
	for _, addr := range signatories {
		if !ValidAddress(addr) {
			return "", fmt.Errorf("derive multisig address: signatory %q has invalid length", addr)
		}
		var n [2]byte
		binary.BigEndian.PutUint16(n[:], uint16(len(addr)))
		h.Write(n[:])
		h.Write([]byte(addr))
	}
	digest := h.Sum(nil)

	// Checksum is the last 4 bytes of a second hash pass; 36 bytes encode
	// to the fixed 58-character address form.
	check := sha512.Sum512_256(digest)
	return addrEncoding.EncodeToString(append(digest, check[28:]...)), nil
}

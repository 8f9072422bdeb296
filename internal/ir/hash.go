package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainNetlist is the domain prefix for netlist fingerprints.
// The version suffix leaves room for a future change of encoding.
const DomainNetlist = "dadda/netlist/v1"

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint computes the content address of a netlist: identical requests
// produce identical cell lists and therefore identical fingerprints.
func Fingerprint(n *Netlist) (string, error) {
	canonical, err := MarshalCanonical(n.Canonical())
	if err != nil {
		return "", fmt.Errorf("Fingerprint: failed to marshal: %w", err)
	}
	return FingerprintCanonical(canonical), nil
}

// FingerprintCanonical hashes an already canonical netlist encoding, e.g.
// one read back from storage.
func FingerprintCanonical(canonical []byte) string {
	return hashWithDomain(DomainNetlist, canonical)
}

// MustFingerprint is like Fingerprint but panics on error.
// Netlists built by the synthesizer always marshal, so this is safe there.
func MustFingerprint(n *Netlist) string {
	fp, err := Fingerprint(n)
	if err != nil {
		panic(err)
	}
	return fp
}

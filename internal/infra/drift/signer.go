package drift

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"

	"maker_go/internal/domain"
)

// Signer holds the resolved signing capability for one subaccount. Direct
// wallet vs delegated authority is decided once here, never at call sites:
// with a delegated authority the key signs for a subaccount derived from the
// authority's address instead of its own.
type Signer struct {
	priv         ed25519.PrivateKey
	authority    ed25519.PublicKey // account owner the subaccount derives from
	subAccount   string
	subAccountID uint16
	delegated    bool
}

// NewSigner builds a Signer from a hex-encoded ed25519 seed and an optional
// hex-encoded delegated authority public key. Invalid key material is fatal.
func NewSigner(privKeyHex, authorityHex string, subAccountID uint16) (*Signer, error) {
	seed, err := hex.DecodeString(privKeyHex)
	if err != nil {
		return nil, &domain.ConfigError{Field: "venue.private_key", Err: err}
	}
	if len(seed) != ed25519.SeedSize {
		return nil, &domain.ConfigError{
			Field: "venue.private_key",
			Err:   fmt.Errorf("seed must be %d bytes, got %d", ed25519.SeedSize, len(seed)),
		}
	}

	priv := ed25519.NewKeyFromSeed(seed)
	authority := priv.Public().(ed25519.PublicKey)
	delegated := false

	if authorityHex != "" {
		pub, err := hex.DecodeString(authorityHex)
		if err != nil {
			return nil, &domain.ConfigError{Field: "venue.authority", Err: err}
		}
		if len(pub) != ed25519.PublicKeySize {
			return nil, &domain.ConfigError{
				Field: "venue.authority",
				Err:   errors.New("authority must be a 32-byte public key"),
			}
		}
		authority = ed25519.PublicKey(pub)
		delegated = true
	}

	return &Signer{
		priv:         priv,
		authority:    authority,
		subAccount:   deriveSubAccount(authority, subAccountID),
		subAccountID: subAccountID,
		delegated:    delegated,
	}, nil
}

// deriveSubAccount derives the deterministic subaccount address from the
// authority key and the subaccount id.
func deriveSubAccount(authority ed25519.PublicKey, id uint16) string {
	var idBytes [2]byte
	binary.LittleEndian.PutUint16(idBytes[:], id)

	h := sha256.New()
	h.Write([]byte("user"))
	h.Write(authority)
	h.Write(idBytes[:])
	return hex.EncodeToString(h.Sum(nil))
}

// SubAccount returns the derived subaccount address.
func (s *Signer) SubAccount() string {
	return s.subAccount
}

// IsDelegated reports whether the key signs on behalf of another authority.
func (s *Signer) IsDelegated() bool {
	return s.delegated
}

// PublicKey returns the signing key's public half, hex encoded.
func (s *Signer) PublicKey() string {
	return hex.EncodeToString(s.priv.Public().(ed25519.PublicKey))
}

// Sign returns the base64 ed25519 signature over payload.
func (s *Signer) Sign(payload []byte) string {
	return base64.StdEncoding.EncodeToString(ed25519.Sign(s.priv, payload))
}

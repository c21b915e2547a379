package domain

import (
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

const (
	keyLen = 32

	addressTag    = "walletd/address"
	signingKeyTag = "walletd/schnorr-signing-key"
)

// NewSecretKey returns a fresh 32-byte secret scalar.
func NewSecretKey() ([]byte, error) {
	return randomBytes(keyLen)
}

// NewSalt returns a fresh 32-byte salt, combined with the secret key and the
// account type to derive the address.
func NewSalt() ([]byte, error) {
	return randomBytes(keyLen)
}

// DeriveSigningKey maps (accountType, secretKey) to the account's signing key
// material.
//
// Schnorr keys are a deterministic function of the secret key, so they can be
// recovered from the secret alone. ECDSA keys are independently random and
// exist only in the account store.
func DeriveSigningKey(accountType AccountType, secretKey []byte) ([]byte, error) {
	if len(secretKey) != keyLen {
		return nil, fmt.Errorf("invalid secret key length %d", len(secretKey))
	}
	switch accountType {
	case AccountTypeSchnorr:
		return deriveSchnorrSigningKey(secretKey), nil
	case AccountTypeECDSAR1, AccountTypeECDSAK1:
		return randomBytes(keyLen)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccountType, accountType)
	}
}

// SigningPubKey returns the compressed public key matching the given signing
// key material.
func SigningPubKey(accountType AccountType, signingKey []byte) ([]byte, error) {
	if len(signingKey) != keyLen {
		return nil, fmt.Errorf("invalid signing key length %d", len(signingKey))
	}
	switch accountType {
	case AccountTypeSchnorr, AccountTypeECDSAK1:
		prvkey, _ := btcec.PrivKeyFromBytes(signingKey)
		return schnorr.SerializePubKey(prvkey.PubKey()), nil
	case AccountTypeECDSAR1:
		curve := elliptic.P256()
		scalar := new(big.Int).SetBytes(signingKey)
		scalar.Mod(scalar, curve.Params().N)
		if scalar.Sign() == 0 {
			return nil, fmt.Errorf("invalid signing key, out of curve order")
		}
		x, y := curve.ScalarBaseMult(scalar.Bytes())
		return elliptic.MarshalCompressed(curve, x, y), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccountType, accountType)
	}
}

// ComputeAddress derives the account address from its creation parameters.
// Same (type, secret, salt) always gives the same address.
func ComputeAddress(accountType AccountType, secretKey, salt []byte) string {
	hasher := sha256.New()
	hasher.Write([]byte(addressTag))
	hasher.Write([]byte(accountType))
	hasher.Write(secretKey)
	hasher.Write(salt)
	return "0x" + hex.EncodeToString(hasher.Sum(nil))
}

func deriveSchnorrSigningKey(secretKey []byte) []byte {
	hasher := sha256.New()
	hasher.Write([]byte(signingKeyTag))
	hasher.Write(secretKey)
	// reduce into a valid secp256k1 scalar
	prvkey := secp256k1.PrivKeyFromBytes(hasher.Sum(nil))
	return prvkey.Serialize()
}

func randomBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return buf, nil
}

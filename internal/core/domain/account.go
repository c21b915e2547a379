package domain

import (
	"fmt"
	"strings"
)

// AccountType selects the signing scheme backing an account and the rule
// used to derive its signing key.
type AccountType string

const (
	AccountTypeSchnorr AccountType = "schnorr"
	AccountTypeECDSAR1 AccountType = "ecdsasecp256r1"
	AccountTypeECDSAK1 AccountType = "ecdsasecp256k1"
)

const (
	AccountAliasPrefix = "accounts:"
	SenderAliasPrefix  = "senders:"
)

func ParseAccountType(typeStr string) (AccountType, error) {
	switch AccountType(typeStr) {
	case AccountTypeSchnorr, AccountTypeECDSAR1, AccountTypeECDSAK1:
		return AccountType(typeStr), nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownAccountType, typeStr)
	}
}

// Account is a locally controlled signing identity. The address is derived
// deterministically from (Type, SecretKey, Salt) and acts as primary key.
//
// The signing key of a schnorr account is derived from the secret key and can
// always be recomputed. The signing key of an ecdsa account is independently
// random and only lives in the store: losing it makes the account unusable.
type Account struct {
	Address    string
	Type       AccountType
	SecretKey  []byte
	Salt       []byte
	SigningKey []byte
	Alias      string
}

// NewAccount generates a fresh account of the given type. The whole record is
// assembled in memory before anything touches a store.
func NewAccount(accountType AccountType, alias string) (*Account, error) {
	if _, err := ParseAccountType(string(accountType)); err != nil {
		return nil, err
	}
	secretKey, err := NewSecretKey()
	if err != nil {
		return nil, err
	}
	salt, err := NewSalt()
	if err != nil {
		return nil, err
	}
	signingKey, err := DeriveSigningKey(accountType, secretKey)
	if err != nil {
		return nil, err
	}
	return &Account{
		Address:    ComputeAddress(accountType, secretKey, salt),
		Type:       accountType,
		SecretKey:  secretKey,
		Salt:       salt,
		SigningKey: signingKey,
		Alias:      alias,
	}, nil
}

// AliasedAddress is one entry of the alias index, alias kept with its
// namespace prefix.
type AliasedAddress struct {
	Alias   string
	Address string
}

// Label returns the alias without its namespace prefix, falling back to a
// shortened address when the entry has no alias.
func (a AliasedAddress) Label() string {
	alias := strings.TrimPrefix(a.Alias, AccountAliasPrefix)
	alias = strings.TrimPrefix(alias, SenderAliasPrefix)
	if len(alias) > 0 {
		return alias
	}
	if len(a.Address) > 10 {
		return a.Address[:10]
	}
	return a.Address
}

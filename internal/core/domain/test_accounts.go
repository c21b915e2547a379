package domain

import (
	"encoding/hex"
	"fmt"
)

// Well-known test accounts, seeded on first connection against a freshly
// initialized network. Secrets and salts are fixed so every wallet instance
// derives the same addresses the network was bootstrapped with.
var testAccountSeeds = []struct {
	secret string
	salt   string
}{
	{
		secret: "2153536ff6628eee01cf4024889ff160f92557c026e2e41bc08fdf45ca9d4ec9",
		salt:   "0000000000000000000000000000000000000000000000000000000000000001",
	},
	{
		secret: "aebd1b4be76efa44f5ee655c20bf9ea60f7ae44b9a7fd1fd9f189c7a0b0cdae2",
		salt:   "0000000000000000000000000000000000000000000000000000000000000002",
	},
	{
		secret: "0f6addf0da06c33293df974a565b03d1ab096090d907d98055a8b7f4954e120c",
		salt:   "0000000000000000000000000000000000000000000000000000000000000003",
	},
}

// TestAccounts returns the full records of the well-known test accounts, all
// of type schnorr with aliases test0..testN-1.
func TestAccounts() []Account {
	accounts := make([]Account, 0, len(testAccountSeeds))
	for i, seed := range testAccountSeeds {
		secretKey, _ := hex.DecodeString(seed.secret)
		salt, _ := hex.DecodeString(seed.salt)
		accounts = append(accounts, Account{
			Address:    ComputeAddress(AccountTypeSchnorr, secretKey, salt),
			Type:       AccountTypeSchnorr,
			SecretKey:  secretKey,
			Salt:       salt,
			SigningKey: deriveSchnorrSigningKey(secretKey),
			Alias:      fmt.Sprintf("test%d", i),
		})
	}
	return accounts
}

// CanonicalTestAddress is the address of the first well-known test account,
// used to detect whether the target network is a freshly initialized one with
// test accounts on chain.
func CanonicalTestAddress() string {
	return TestAccounts()[0].Address
}

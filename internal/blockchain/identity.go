package blockchain

import (
	"strings"

	"github.com/gagliardetto/solana-go"

	"prediction-escrow/internal/errcode"
)

// ParseIdentity decodes a base58 public key supplied by a client.
func ParseIdentity(s string) (solana.PublicKey, error) {
	pk, err := solana.PublicKeyFromBase58(strings.TrimSpace(s))
	if err != nil {
		return solana.PublicKey{}, errcode.New(errcode.InvalidIdentity)
	}
	return pk, nil
}

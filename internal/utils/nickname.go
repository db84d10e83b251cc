package utils

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
)

var adjectives = []string{
	"Swift", "Brave", "Clever", "Bold", "Mighty",
	"Silent", "Wild", "Golden", "Iron", "Silver",
	"Dark", "Bright", "Storm", "Shadow", "Fire",
	"Ice", "Thunder", "Wind", "Steel", "Diamond",
}

var nouns = []string{
	"Falcon", "Tiger", "Dragon", "Wolf", "Eagle",
	"Bear", "Lion", "Hawk", "Phoenix", "Panther",
	"Fox", "Raven", "Viper", "Shark", "Lynx",
	"Cobra", "Stallion", "Jaguar", "Orca", "Leopard",
}

// NicknameFor returns the display name of a wallet, "Adjective_Noun_XXXX".
// The same wallet always gets the same name.
func NicknameFor(wallet string) string {
	sum := sha256.Sum256([]byte(wallet))
	adj := binary.BigEndian.Uint32(sum[0:4]) % uint32(len(adjectives))
	noun := binary.BigEndian.Uint32(sum[4:8]) % uint32(len(nouns))
	suffix := binary.BigEndian.Uint32(sum[8:12]) % 10000

	return fmt.Sprintf("%s_%s_%04d", adjectives[adj], nouns[noun], suffix)
}

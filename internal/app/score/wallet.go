package score

import "strings"

const (
	minWalletLen = 32
	maxWalletLen = 44
)

// base58 without 0, O, I and l
const base58Alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"

// ValidWallet reports whether addr looks like a base58 account address. It
// checks shape only, not that the key exists.
func ValidWallet(addr string) bool {
	addr = strings.TrimSpace(addr)
	if len(addr) < minWalletLen || len(addr) > maxWalletLen {
		return false
	}
	for i := 0; i < len(addr); i++ {
		if strings.IndexByte(base58Alphabet, addr[i]) < 0 {
			return false
		}
	}
	return true
}

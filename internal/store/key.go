package store

import "strings"

// PairKey builds the canonical key for a currency pair, e.g. "USD_TO_EUR".
func PairKey(from, to string) string {
	return strings.ToUpper(from) + "_TO_" + strings.ToUpper(to)
}

// SplitPairKey is the inverse of PairKey.
func SplitPairKey(key string) (from, to string, ok bool) {
	from, to, ok = strings.Cut(key, "_TO_")
	if !ok || from == "" || to == "" {
		return "", "", false
	}
	return from, to, true
}

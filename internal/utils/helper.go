package utils

import (
	"strconv"
	"strings"
)

// NormalizeSKU upper-cases and trims a catalog SKU.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// ParsePositiveInt returns def when s is empty, malformed or below one.
func ParsePositiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Package ident mints and validates the type-prefixed identifiers used for
// every cross-collection reference (prod_, cart_, user_, order_ + 32 hex
// chars). External input is matched against the expected pattern before it
// reaches any database query.
package ident

import (
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"strings"
)

const (
	PrefixProduct = "prod"
	PrefixCart    = "cart"
	PrefixUser    = "user"
	PrefixOrder   = "order"
)

var tokenPattern = regexp.MustCompile(`^[a-z]+_[0-9a-f]{32}$`)

// New returns a fresh identifier: prefix + "_" + 16 random bytes as hex.
func New(prefix string) string {
	bytes := make([]byte, 16)
	if _, err := rand.Read(bytes); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}
	return prefix + "_" + hex.EncodeToString(bytes)
}

// Valid reports whether id is a well-formed identifier of the given type.
func Valid(id, prefix string) bool {
	return strings.HasPrefix(id, prefix+"_") && tokenPattern.MatchString(id)
}

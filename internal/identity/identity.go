// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package identity computes the two identifiers attached to every theme:
// the content hash used for global deduplication and the random public id
// used for share links. The two are independent of each other and of the
// serial database id, so leaking one never leaks the others.
package identity

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// publicIDBytes is the entropy of a public id. 16 bytes encode to 22
// URL-safe characters, enough to make ids statistically unguessable.
const publicIDBytes = 16

// PublicIDLength is the length of every generated public id.
const PublicIDLength = 22

// ContentHash returns the hex-encoded BLAKE2b-256 digest of the raw
// artifact bytes. Identical bytes always produce the identical digest,
// which backs the global dedup constraint on themes.content_hash.
func ContentHash(data []byte) string {
	sum := blake2b.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// NewPublicID returns a fresh URL-safe random identifier for sharing a
// theme. Uniqueness is not guaranteed here — the store enforces it with a
// unique constraint and retries on the (astronomically rare) collision.
func NewPublicID() string {
	buf := make([]byte, publicIDBytes)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand only fails if the OS entropy source is broken,
		// in which case the process cannot issue identifiers at all.
		panic("identity: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(buf)
}

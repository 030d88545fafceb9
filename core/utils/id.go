package utils

import (
	"github.com/gosimple/slug"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	alphanumericAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	lowerHexAlphabet     = "0123456789abcdef"
	upperHexAlphabet     = "0123456789ABCDEF"

	InvitationTokenLength = 32
	JoinCodeLength        = 8
)

func GenerateID() string {
	id, err := gonanoid.Generate(alphanumericAlphabet, 7)
	if err != nil {
		return ""
	}
	return id
}

// GenerateInvitationToken returns 32 lowercase hex characters drawn from
// crypto/rand.
func GenerateInvitationToken() (string, error) {
	return gonanoid.Generate(lowerHexAlphabet, InvitationTokenLength)
}

// GenerateJoinCode returns the short code typed in by users joining through a
// code invitation: 8 uppercase hex characters.
func GenerateJoinCode() (string, error) {
	return gonanoid.Generate(upperHexAlphabet, JoinCodeLength)
}

// GenerateSlug builds a URL slug from name with a short random suffix so
// projects sharing a name still get distinct slugs.
func GenerateSlug(name string) string {
	base := slug.Make(name)
	suffix, err := gonanoid.Generate(lowerHexAlphabet, 6)
	if err != nil || suffix == "" {
		return base
	}
	if base == "" {
		return suffix
	}
	return base + "-" + suffix
}

package helpers

import (
	"math/rand"
	"strings"
)

// Fuzzer provides utilities for generating adversarial input strings.
// Every Fuzz* method returns only inputs the client must reject.
type Fuzzer struct {
	rnd *rand.Rand
}

// NewFuzzer creates a new Fuzzer with the given seed
func NewFuzzer(seed int64) *Fuzzer {
	return &Fuzzer{
		rnd: rand.New(rand.NewSource(seed)),
	}
}

// FuzzUsername generates usernames outside the 2 to 32 character range or
// with surrounding whitespace.
func (f *Fuzzer) FuzzUsername() []string {
	cases := []string{
		// Boundary cases
		"",
		"a",
		strings.Repeat("a", 33),
		strings.Repeat("é", 33), // Multi-byte runes count once
		strings.Repeat("🚀", 40),

		// Surrounding whitespace
		" nelly",
		"nelly ",
		"\tnelly",
		"nelly\n",
		" nelly", // No-break space
		"nelly　", // Ideographic space
		"  ",
	}
	for i := 0; i < 5; i++ {
		cases = append(cases, f.GenerateRandomString(33+f.rnd.Intn(64), true))
	}
	return cases
}

// FuzzNick generates nicknames longer than 32 characters.
func (f *Fuzzer) FuzzNick() []string {
	return []string{
		strings.Repeat("n", 33),
		strings.Repeat("ñ", 33),
		f.GenerateRandomString(100, true),
	}
}

// FuzzRedirectURI generates redirect URIs that are not absolute or carry a fragment.
func (f *Fuzzer) FuzzRedirectURI() []string {
	return []string{
		"",
		"/callback",
		"callback",
		"example.com/callback",
		"//example.com/callback",
		"https://example.com/callback#token",
		"http://",
		"https://exa mple.com/callback",
		"javascript:alert(1)",
		"mailto:admin@example.com",
		"file:///etc/passwd",
		"https://example.com/%zz",
	}
}

// FuzzGuildsLimit generates out of range page sizes. Zero selects the default
// and is therefore not included.
func (f *Fuzzer) FuzzGuildsLimit() []int {
	return []int{
		-2147483648, // int32 min
		-100,
		-1,
		201, // One over max
		1000,
		2147483647, // int32 max
	}
}

// FuzzState generates states that look plausible but were never issued.
func (f *Fuzzer) FuzzState() []string {
	cases := []string{
		"state",
		strings.Repeat("A", 43),
		"../../etc/passwd",
		"' OR '1'='1",
		"state\x00suffix",
		"test‮state", // Right-to-left override
		strings.Repeat("x", 10000),
	}
	for i := 0; i < 5; i++ {
		cases = append(cases, f.GenerateRandomString(43, false))
	}
	return cases
}

// GenerateRandomString generates a random string of the given length with specified character types
func (f *Fuzzer) GenerateRandomString(length int, includeSpecial bool) string {
	const (
		letters = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
		special = "!@#$%^&*()_+-=[]{}|;':\",./<>?`~"
	)

	charset := letters
	if includeSpecial {
		charset += special
	}

	result := make([]byte, length)
	for i := range result {
		result[i] = charset[f.rnd.Intn(len(charset))]
	}
	return string(result)
}

// Package identity derives workshop identifiers from generation parameters.
//
// Two policies exist side by side. StableID has no time component, so the
// same parameters always map to the same stored schedule. FreshID mixes in
// the current time and a nonce and forces a new schedule even for unchanged
// parameters.
package identity

import (
	"encoding/hex"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

const (
	stablePrefix   = "ws-"
	stableHexChars = 16
	freshHexChars  = 8
)

// Params are the inputs that define a logical workshop.
type Params struct {
	Hours        int
	Participants int
	Purposes     []string
	Context      string
	Goals        string
	StartTime    string
}

// Canonical renders p in a form that ignores purpose order. Every field is
// length-prefixed, so separators inside values cannot make two parameter sets
// render alike.
func (p Params) Canonical() string {
	purposes := slices.Clone(p.Purposes)
	slices.Sort(purposes)

	var b strings.Builder
	fmt.Fprintf(&b, "h%d;p%d;", p.Hours, p.Participants)
	fmt.Fprintf(&b, "n%d;", len(purposes))
	for _, purpose := range purposes {
		writeField(&b, purpose)
	}
	writeField(&b, p.Context)
	writeField(&b, p.Goals)
	writeField(&b, p.StartTime)
	return b.String()
}

func writeField(b *strings.Builder, value string) {
	fmt.Fprintf(b, "%d:%s;", len(value), value)
}

func digest(p Params) string {
	sum := blake2b.Sum256([]byte(p.Canonical()))
	return hex.EncodeToString(sum[:])
}

// StableID returns the deterministic id for p.
func StableID(p Params) string {
	return stablePrefix + digest(p)[:stableHexChars]
}

// FreshID returns an id for p at now. The nonce separates ids minted within
// the same clock tick.
func FreshID(p Params, now time.Time, nonce uint32) string {
	return fmt.Sprintf("%s-%08x-%s", strconv.FormatInt(now.UnixNano(), 36), nonce, digest(p)[:freshHexChars])
}

// IsStable reports whether id was produced by StableID.
func IsStable(id string) bool {
	if !strings.HasPrefix(id, stablePrefix) || len(id) != len(stablePrefix)+stableHexChars {
		return false
	}
	_, err := hex.DecodeString(id[len(stablePrefix):])
	return err == nil
}

// Resolver binds the two policies to a clock and a nonce source.
type Resolver struct {
	now   func() time.Time
	nonce func() uint32
}

// NewResolver constructs a resolver. A nil clock falls back to time.Now.
// Nonces come from random uuids.
func NewResolver(now func() time.Time) Resolver {
	if now == nil {
		now = time.Now
	}
	return Resolver{now: now, nonce: randomNonce}
}

// WithNonce returns a copy of r drawing nonces from nonce.
func (r Resolver) WithNonce(nonce func() uint32) Resolver {
	if nonce == nil {
		nonce = randomNonce
	}
	r.nonce = nonce
	return r
}

func randomNonce() uint32 {
	return uuid.New().ID()
}

// Stable returns StableID(p).
func (r Resolver) Stable(p Params) string {
	return StableID(p)
}

// Fresh returns FreshID(p) at the resolver's current time with a new nonce.
func (r Resolver) Fresh(p Params) string {
	now := r.now
	if now == nil {
		now = time.Now
	}
	nonce := r.nonce
	if nonce == nil {
		nonce = randomNonce
	}
	return FreshID(p, now(), nonce())
}

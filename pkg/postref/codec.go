// Package postref packs a social post reference (numeric ID plus short
// author handle) into the fixed 32-byte slot the market contract stores,
// and parses/builds the canonical post URLs the reference round-trips to.
//
// Packed layout:
//
//	bytes [0..7]   post ID, big-endian uint64
//	byte  [8]      author byte length (0-15)
//	bytes [9..9+n) author, UTF-8
//	remainder      zero
//
// The all-zero value is the "no reference" sentinel.
package postref

import (
	"encoding/binary"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pooofdevelopment/go-postmarket-client/pkg/types"
)

// MaxAuthorBytes is the author handle budget inside the 32-byte slot.
const MaxAuthorBytes = 15

const (
	idBytes    = 8
	lenIndex   = 8
	authorBase = 9
	// the largest length byte that still fits inside 32 bytes
	maxLenByte = 32 - authorBase
)

// CanonicalHost is the host BuildURL emits.
const CanonicalHost = "x.com"

// knownHosts are the hosts ParseURL accepts.
var knownHosts = map[string]bool{
	"x.com":              true,
	"www.x.com":          true,
	"twitter.com":        true,
	"www.twitter.com":    true,
	"mobile.twitter.com": true,
}

// Zero is the "no reference" sentinel.
var Zero [32]byte

// ErrAuthorTooLong is returned by Encode when the author handle does not
// fit the packed layout.
var ErrAuthorTooLong = fmt.Errorf("invalid input: author exceeds %d bytes", MaxAuthorBytes)

// Encode packs a post reference into its 32-byte form. It fails only when
// the author's UTF-8 encoding exceeds MaxAuthorBytes; the output is
// deterministic for identical inputs.
func Encode(postID uint64, author string) ([32]byte, error) {
	var out [32]byte
	if len(author) > MaxAuthorBytes {
		return out, ErrAuthorTooLong
	}
	binary.BigEndian.PutUint64(out[:idBytes], postID)
	out[lenIndex] = byte(len(author))
	copy(out[authorBase:], author)
	return out, nil
}

// Decode unpacks a 32-byte value into a post reference. The all-zero
// sentinel decodes to nil, as does a length byte that would read past the
// 32-byte bound. Decode is the exact left inverse of Encode.
func Decode(b [32]byte) *types.PostReference {
	if b == Zero {
		return nil
	}
	n := int(b[lenIndex])
	if n > maxLenByte {
		return nil
	}
	return &types.PostReference{
		PostID: binary.BigEndian.Uint64(b[:idBytes]),
		Author: string(b[authorBase : authorBase+n]),
	}
}

// ParseURL extracts a post reference from a status URL of the shape
// https://<host>/<author>/status/<digits> for the known hosts. Any other
// shape yields nil. The author segment is taken verbatim; its length is
// only checked at Encode time.
func ParseURL(rawURL string) *types.PostReference {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return nil
	}
	if !knownHosts[strings.ToLower(u.Host)] {
		return nil
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 3 || parts[1] != "status" {
		return nil
	}
	author := parts[0]
	if author == "" {
		return nil
	}
	postID, err := strconv.ParseUint(parts[2], 10, 64)
	if err != nil {
		return nil
	}
	return &types.PostReference{PostID: postID, Author: author}
}

// BuildURL produces the canonical status URL for a post reference.
func BuildURL(postID uint64, author string) string {
	return fmt.Sprintf("https://%s/%s/status/%d", CanonicalHost, author, postID)
}

// EncodeURL parses a status URL and packs it, returning the zero sentinel
// when the URL does not match or the author is over budget.
func EncodeURL(rawURL string) [32]byte {
	ref := ParseURL(rawURL)
	if ref == nil {
		return Zero
	}
	packed, err := Encode(ref.PostID, ref.Author)
	if err != nil {
		return Zero
	}
	return packed
}

// DecodeURL unpacks a 32-byte reference back to its canonical URL, or the
// empty string for the sentinel.
func DecodeURL(b [32]byte) string {
	ref := Decode(b)
	if ref == nil {
		return ""
	}
	return BuildURL(ref.PostID, ref.Author)
}

// Package extcrypto provides identifier generation and hashing functions for
// xan expressions.
//
// Security note: MD5 and SHA-1 are provided for compatibility/fingerprinting only
// and should NOT be used for cryptographic security purposes.
package extcrypto

import (
	"context"
	"crypto/hmac"
	"crypto/md5" //nolint:gosec // intentional: provided for non-security fingerprinting
	"crypto/sha1" //nolint:gosec // intentional
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"

	"github.com/A-Archives-and-Forks/xan/pkg/ext/extutil"
	"github.com/A-Archives-and-Forks/xan/pkg/functions"
	"github.com/A-Archives-and-Forks/xan/pkg/types"
)

// Algorithms lists the names accepted by hash and hmac.
var Algorithms = []string{"md5", "sha1", "sha256", "sha384", "sha512", "blake2b", "blake2b-512"}

// All returns all extended cryptographic function definitions.
func All() []functions.CustomFunctionDef {
	return []functions.CustomFunctionDef{
		UUID(),
		Hash(),
		HMAC(),
	}
}

// UUID returns the definition for uuid(): a random version 4 UUID.
func UUID() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "uuid",
		MinArgs:     0,
		MaxArgs:     0,
		Help:        "uuid() -> string",
		Description: "Return a random version 4 UUID.",
		Fn: func(context.Context, ...types.Value) (types.Value, error) {
			id, err := uuid.NewRandom()
			if err != nil {
				return types.None, err
			}
			return types.NewString(id.String()), nil
		},
	}
}

// Hash returns the definition for hash(string, algorithm?). The algorithm
// defaults to sha256 and the digest is lowercase hex.
func Hash() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "hash",
		MinArgs:     1,
		MaxArgs:     2,
		Help:        "hash(string, algorithm?) -> string",
		Description: "Return the hex digest of string (md5, sha1, sha256, sha384, sha512, blake2b).",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str, err := extutil.String(args, 0)
			if err != nil {
				return types.None, err
			}
			algorithm := "sha256"
			if extutil.Optional(args, 1) {
				if algorithm, err = extutil.String(args, 1); err != nil {
					return types.None, err
				}
			}

			newHash, err := hasher(algorithm)
			if err != nil {
				return types.None, err
			}
			h := newHash()
			h.Write([]byte(str))
			return types.NewString(hex.EncodeToString(h.Sum(nil))), nil
		},
	}
}

// HMAC returns the definition for hmac(string, key, algorithm?).
func HMAC() functions.CustomFunctionDef {
	return functions.CustomFunctionDef{
		Name:        "hmac",
		MinArgs:     2,
		MaxArgs:     3,
		Help:        "hmac(string, key, algorithm?) -> string",
		Description: "Return the hex HMAC of string keyed by key, sha256 by default.",
		Fn: func(_ context.Context, args ...types.Value) (types.Value, error) {
			str, err := extutil.String(args, 0)
			if err != nil {
				return types.None, err
			}
			key, err := extutil.String(args, 1)
			if err != nil {
				return types.None, err
			}
			algorithm := "sha256"
			if extutil.Optional(args, 2) {
				if algorithm, err = extutil.String(args, 2); err != nil {
					return types.None, err
				}
			}

			newHash, err := hasher(algorithm)
			if err != nil {
				return types.None, err
			}
			mac := hmac.New(newHash, []byte(key))
			mac.Write([]byte(str))
			return types.NewString(hex.EncodeToString(mac.Sum(nil))), nil
		},
	}
}

// ── helpers ────────────────────────────────────────────────────────────────

func hasher(algorithm string) (func() hash.Hash, error) {
	switch strings.ToLower(algorithm) {
	case "md5":
		return md5.New, nil //nolint:gosec
	case "sha1":
		return sha1.New, nil //nolint:gosec
	case "sha256":
		return sha256.New, nil
	case "sha384":
		return sha512.New384, nil
	case "sha512":
		return sha512.New, nil
	case "blake2b", "blake2b-256":
		return newBlake2b(blake2b.Size256), nil
	case "blake2b-512":
		return newBlake2b(blake2b.Size), nil
	default:
		return nil, fmt.Errorf("unsupported algorithm %q; use one of %s", algorithm, strings.Join(Algorithms, ", "))
	}
}

// newBlake2b returns an unkeyed constructor. hmac supplies its own key, so
// the blake2b key parameter stays empty.
func newBlake2b(size int) func() hash.Hash {
	return func() hash.Hash {
		h, err := blake2b.New(size, nil)
		if err != nil {
			panic(err) // only reachable with an invalid size
		}
		return h
	}
}

package checksum

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
)

// Algorithm represents the hashing algorithm to use
type Algorithm string

const (
	// MD5 algorithm (faster but weaker, kept for comparison tooling)
	MD5 Algorithm = "md5"
	// SHA256 algorithm (recommended default)
	SHA256 Algorithm = "sha256"
)

// IsSupported checks if the given algorithm is supported
func IsSupported(algo Algorithm) bool {
	switch algo {
	case MD5, SHA256:
		return true
	default:
		return false
	}
}

// Options configures the checksum calculator
type Options struct {
	// BufferSize: size of buffer for streaming reads
	// Default: 1MB
	BufferSize int

	// Algorithm to use. Default: SHA256
	Algorithm Algorithm
}

// DefaultOptions returns the recommended default options
func DefaultOptions() Options {
	return Options{
		BufferSize: 1024 * 1024,
		Algorithm:  SHA256,
	}
}

// Calculator computes content digests
type Calculator interface {
	// Calculate computes the hex digest of everything readable from r.
	// Returns an error on read failure or context cancellation.
	Calculate(ctx context.Context, r io.Reader) (string, error)

	// HashFile computes the digest of the file at path. Any failure
	// (missing file, permission denied, read error) yields an empty
	// digest, never an error: callers treat "" as unknown content.
	HashFile(ctx context.Context, path string) string
}

// DefaultCalculator implements Calculator with streaming support
type DefaultCalculator struct {
	opts Options
}

// NewCalculator creates a new calculator with the given options
func NewCalculator(opts Options) *DefaultCalculator {
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultOptions().BufferSize
	}
	if opts.Algorithm == "" {
		opts.Algorithm = SHA256
	}
	return &DefaultCalculator{opts: opts}
}

// NewDefaultCalculator creates a calculator with default options
func NewDefaultCalculator() *DefaultCalculator {
	return NewCalculator(DefaultOptions())
}

// Calculate implements the Calculator interface
func (c *DefaultCalculator) Calculate(ctx context.Context, r io.Reader) (string, error) {
	var h hash.Hash
	switch c.opts.Algorithm {
	case MD5:
		h = md5.New()
	case SHA256:
		h = sha256.New()
	default:
		return "", fmt.Errorf("unsupported algorithm: %s", c.opts.Algorithm)
	}

	buffer := make([]byte, c.opts.BufferSize)
	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}

		n, err := r.Read(buffer)
		if n > 0 {
			if _, hashErr := h.Write(buffer[:n]); hashErr != nil {
				return "", fmt.Errorf("hash write error: %w", hashErr)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read error: %w", err)
		}
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// HashFile implements the Calculator interface
func (c *DefaultCalculator) HashFile(ctx context.Context, path string) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	digest, err := c.Calculate(ctx, f)
	if err != nil {
		return ""
	}
	return digest
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// ArtifactKeyOpts are the inputs that determine an encoded sort result.
type ArtifactKeyOpts struct {
	Sort        any    `json:"sort"` // JSON-serializable sort options
	Format      string `json:"format"`
	JPEGQuality int    `json:"jpeg_quality,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ArtifactKey is the key of an encoded sorted image.
	ArtifactKey(inputHash string, opts ArtifactKeyOpts) string
	// SummaryKey is the key of a score summary for an input image.
	SummaryKey(inputHash, algorithm string) string
}

// DefaultKeyer hashes key components into fixed-length keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the default keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ArtifactKey returns "artifact:<sha256>".
func (DefaultKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", inputHash, opts)
}

// SummaryKey returns "summary:<sha256>".
func (DefaultKeyer) SummaryKey(inputHash, algorithm string) string {
	return hashKey("summary", inputHash, algorithm)
}

// Hash returns the hex SHA-256 of data. Inputs are identified by it.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey returns "<kind>:<sha256 of the JSON-encoded parts>". Parts that
// cannot be encoded are ignored, so they must be plain data.
func hashKey(kind string, parts ...any) string {
	h := sha256.New()
	_ = json.NewEncoder(h).Encode(parts)
	return kind + ":" + hex.EncodeToString(h.Sum(nil))
}

// WithPrefix namespaces every key of inner (DefaultKeyer when nil) so that
// several deployments can share one Redis database.
func WithPrefix(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = DefaultKeyer{}
	}
	return prefixKeyer{inner: inner, prefix: prefix}
}

type prefixKeyer struct {
	inner  Keyer
	prefix string
}

func (k prefixKeyer) ArtifactKey(inputHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(inputHash, opts)
}

func (k prefixKeyer) SummaryKey(inputHash, algorithm string) string {
	return k.prefix + k.inner.SummaryKey(inputHash, algorithm)
}

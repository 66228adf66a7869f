package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored domain entities.
// It is generated from database sequences or content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChatTurn represents one exchange in a conversation: the user's message
// and the assistant's reply, tagged with the owning user.
type ChatTurn struct {
	Id          ID
	UserID      string
	SessionID   string
	UserMessage string
	BotResponse string
	Timestamp   time.Time // When the exchange happened
	InsertedAt  time.Time // When the turn was persisted
}

// User is an account record. PasswordHash is a bcrypt hash, never the
// plaintext password.
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// Chunk is a contiguous span of source text plus provenance metadata.
// Chunks are created during ingestion and immutable thereafter.
type Chunk struct {
	Text     string
	Metadata map[string]string
}

// SparseVector is a lexical term-weight vector over a large vocabulary,
// represented as parallel index/value arrays.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// Payload is the stored projection of a chunk inside a vector record.
type Payload struct {
	Text     string
	Metadata map[string]string
}

// VectorRecord is one point in the vector index: an opaque ID, a dense
// embedding, a sparse embedding, and the chunk payload. Records are written
// once and never mutated.
type VectorRecord struct {
	ID      string
	Dense   []float32
	Sparse  SparseVector
	Payload Payload
}

// RetrievalResult is a read-only projection of a vector record's payload
// with its fused relevance score. Constructed per query, not persisted.
type RetrievalResult struct {
	Text     string
	Metadata map[string]string
	Score    float64
}

// WebResult is one raw result from the external web search provider.
type WebResult struct {
	Title   string
	Snippet string
	Link    string
}

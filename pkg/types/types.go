package types

import (
	"bytes"
	"crypto/sha512"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"
)

// Digest is a SHA-512 digest. It identifies document content and sealed
// blocks; two digests are equal exactly when the hashed bytes were equal.
type Digest [64]byte

// ZeroDigest is the previous-digest sentinel of the genesis block.
var ZeroDigest = Digest{}

// DigestBytes hashes raw content. Deterministic and side-effect free; the
// algorithm is fixed for the lifetime of a chain, mixing algorithms
// mid-chain would break integrity checking.
func DigestBytes(content []byte) Digest {
	return sha512.Sum512(content)
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// Short returns the first 8 bytes in hex, for logs and display.
func (d Digest) Short() string {
	return hex.EncodeToString(d[:8])
}

func (d Digest) Bytes() []byte {
	return d[:]
}

func (d Digest) IsZero() bool {
	return d == ZeroDigest
}

func (d *Digest) FromBytes(b []byte) error {
	if len(b) != 64 {
		return fmt.Errorf("invalid byte length for Digest: %d", len(b))
	}
	copy(d[:], b)
	return nil
}

// Level is a unix timestamp in nanoseconds.
// It records when a record or block was created. Computer clocks are not
// reliable, so it is called Level rather than creation time; block levels
// are kept non-decreasing by clamping, not by trusting the clock.
type Level int64

func (l Level) Bytes() []byte {
	levelBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(levelBytes, uint64(l))
	return levelBytes
}

func (l Level) String() string {
	return strconv.FormatInt(int64(l), 10)
}

func (l Level) Time() time.Time {
	return time.Unix(0, int64(l))
}

func (l *Level) SetToNow() {
	*l = Level(time.Now().UnixNano())
}

// DocumentRecord is one committed artifact. Name is whatever the caller
// submitted it under (usually a filename) and is not required to be unique;
// verification matches on the content digest, never on the name.
type DocumentRecord struct {
	Name        string
	Digest      Digest // SHA-512 of Content, computed once at submission
	Content     []byte
	SubmittedAt Level
}

// NewDocumentRecord builds the record for raw content and computes its
// digest. Empty content is allowed and digests like any other input.
func NewDocumentRecord(name string, content []byte) DocumentRecord {
	rec := DocumentRecord{
		Name:    name,
		Digest:  DigestBytes(content),
		Content: content,
	}
	rec.SubmittedAt.SetToNow()
	return rec
}

// Block is a sealed batch of documents chained to its predecessor by
// digest. A block is never edited after sealing; any mutation shows up as
// a digest mismatch in a chain validation.
type Block struct {
	Index      uint64
	Timestamp  Level
	Documents  []DocumentRecord
	PrevDigest Digest
	Nonce      uint64 // stays 0 unless the chain seals with a difficulty
	Digest     Digest // computed once at sealing, see ComputeDigest
}

// ComputeDigest hashes the block over a fixed serialization of Index,
// Timestamp, Documents, PrevDigest and Nonce. Variable-length fields carry
// a length prefix so field boundaries are unambiguous and the same logical
// block always yields the same digest.
func (b *Block) ComputeDigest() Digest {
	// Pre-allocate a buffer to make the hashing process more efficient
	var buffer bytes.Buffer

	scratch := make([]byte, 8)
	binary.LittleEndian.PutUint64(scratch, b.Index)
	buffer.Write(scratch)

	buffer.Write(b.Timestamp.Bytes())

	binary.LittleEndian.PutUint64(scratch, uint64(len(b.Documents)))
	buffer.Write(scratch)

	for _, doc := range b.Documents {
		binary.LittleEndian.PutUint64(scratch, uint64(len(doc.Name)))
		buffer.Write(scratch)
		buffer.WriteString(doc.Name)

		buffer.Write(doc.Digest[:])

		binary.LittleEndian.PutUint64(scratch, uint64(len(doc.Content)))
		buffer.Write(scratch)
		buffer.Write(doc.Content)

		buffer.Write(doc.SubmittedAt.Bytes())
	}

	buffer.Write(b.PrevDigest[:])

	binary.LittleEndian.PutUint64(scratch, b.Nonce)
	buffer.Write(scratch)

	return sha512.Sum512(buffer.Bytes())
}

// VerificationResult reports whether some content is committed to the
// chain. Found false is a normal outcome, not an error.
type VerificationResult struct {
	Found      bool
	Name       string // name the matching record was submitted under
	BlockIndex uint64 // block that sealed the record
	Timestamp  Level  // timestamp of the sealing block
}

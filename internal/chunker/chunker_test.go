package chunker

import (
	"bytes"
	"crypto/sha512"
	"math/rand"
	"testing"

	"github.com/i5heu/ouroboros-notary/pkg/types"
)

func randomContent(t testing.TB, size int) []byte {
	t.Helper()
	rng := rand.New(rand.NewSource(42))
	content := make([]byte, size)
	if _, err := rng.Read(content); err != nil {
		t.Fatalf("failed to generate content: %v", err)
	}
	return content
}

func reassemble(chunks []Chunk) []byte {
	var buf bytes.Buffer
	for _, chunk := range chunks {
		buf.Write(chunk.Data)
	}
	return buf.Bytes()
}

func TestChunkBytes_SmallInput(t *testing.T) {
	input := []byte("Hello World")

	chunks, err := ChunkBytes(input)
	if err != nil {
		t.Fatalf("ChunkBytes failed: %v", err)
	}

	if len(chunks) != 1 {
		t.Fatalf("Expected 1 chunk, got %d", len(chunks))
	}
	if string(chunks[0].Data) != string(input) {
		t.Errorf("Expected data %q, got %q", input, chunks[0].Data)
	}
	if chunks[0].Digest != types.Digest(sha512.Sum512(input)) {
		t.Errorf("Chunk digest does not match its data")
	}
	if chunks[0].DataLength != uint32(len(input)) {
		t.Errorf("Expected data length %d, got %d", len(input), chunks[0].DataLength)
	}
}

func TestChunkBytes_Empty(t *testing.T) {
	chunks, err := ChunkBytes(nil)
	if err != nil {
		t.Fatalf("ChunkBytes failed: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("Expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestChunkBytes_LargeInputReassembles(t *testing.T) {
	input := randomContent(t, 2<<20)

	chunks, err := ChunkBytes(input)
	if err != nil {
		t.Fatalf("ChunkBytes failed: %v", err)
	}

	if len(chunks) < 2 {
		t.Fatalf("Expected multiple chunks for a 2 MiB input, got %d", len(chunks))
	}

	for i, chunk := range chunks {
		if chunk.Digest != types.Digest(sha512.Sum512(chunk.Data)) {
			t.Errorf("Chunk %d digest does not match its data", i)
		}
		if chunk.DataLength != uint32(len(chunk.Data)) {
			t.Errorf("Chunk %d length %d does not match data size %d", i, chunk.DataLength, len(chunk.Data))
		}
	}

	if !bytes.Equal(reassemble(chunks), input) {
		t.Errorf("Reassembled chunks do not reproduce the input")
	}
}

func TestChunkBytes_Deterministic(t *testing.T) {
	input := randomContent(t, 1<<20)

	first, err := ChunkBytes(input)
	if err != nil {
		t.Fatalf("ChunkBytes failed: %v", err)
	}
	second, err := ChunkBytes(input)
	if err != nil {
		t.Fatalf("ChunkBytes failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Digest != second[i].Digest {
			t.Errorf("Chunk %d digests differ between runs", i)
		}
	}
}

func TestChunkBytesSynchronously_MatchesConcurrent(t *testing.T) {
	input := randomContent(t, 1<<20)

	concurrent, err := ChunkBytes(input)
	if err != nil {
		t.Fatalf("ChunkBytes failed: %v", err)
	}
	synchronous, err := ChunkBytesSynchronously(input)
	if err != nil {
		t.Fatalf("ChunkBytesSynchronously failed: %v", err)
	}

	if len(concurrent) != len(synchronous) {
		t.Fatalf("Chunk counts differ: %d vs %d", len(concurrent), len(synchronous))
	}
	for i := range concurrent {
		if concurrent[i].Digest != synchronous[i].Digest {
			t.Errorf("Chunk %d differs between the concurrent and synchronous paths", i)
		}
		if !bytes.Equal(concurrent[i].Data, synchronous[i].Data) {
			t.Errorf("Chunk %d data differs between the concurrent and synchronous paths", i)
		}
	}
}

func BenchmarkChunkBytes(b *testing.B) {
	content := randomContent(b, 8*1024*1024)
	b.SetBytes(int64(len(content)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := ChunkBytes(content); err != nil {
			b.Fatalf("ChunkBytes failed: %v", err)
		}
	}
}

func BenchmarkChunkBytesSynchronously(b *testing.B) {
	content := randomContent(b, 8*1024*1024)
	b.SetBytes(int64(len(content)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := ChunkBytesSynchronously(content); err != nil {
			b.Fatalf("ChunkBytesSynchronously failed: %v", err)
		}
	}
}

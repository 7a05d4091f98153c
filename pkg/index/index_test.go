package index_test

import (
	"testing"

	"github.com/i5heu/ouroboros-notary/pkg/index"
	"github.com/i5heu/ouroboros-notary/pkg/types"
	"github.com/stretchr/testify/assert"
)

func sealedBlock(idx uint64, timestamp types.Level, docs ...types.DocumentRecord) types.Block {
	block := types.Block{
		Index:     idx,
		Timestamp: timestamp,
		Documents: docs,
	}
	block.Digest = block.ComputeDigest()
	return block
}

func TestIndex_AddBlockAndLookup(t *testing.T) {
	i := index.New()
	rec := types.NewDocumentRecord("umowa.txt", []byte("contract-v1"))

	i.AddBlock(sealedBlock(1, 100, rec))

	ref, found := i.Lookup(rec.Digest)
	assert.True(t, found)
	assert.Equal(t, uint64(1), ref.Index)
	assert.Equal(t, types.Level(100), ref.Timestamp)
	assert.Equal(t, "umowa.txt", ref.Name)
}

func TestIndex_Lookup_Missing(t *testing.T) {
	i := index.New()

	_, found := i.Lookup(types.DigestBytes([]byte("never sealed")))

	assert.False(t, found)
}

func TestIndex_FirstSealedBlockWins(t *testing.T) {
	i := index.New()
	rec := types.NewDocumentRecord("dyplom.pdf", []byte("diploma-v1"))

	i.AddBlock(sealedBlock(1, 100, rec))
	i.AddBlock(sealedBlock(2, 200, rec))

	ref, found := i.Lookup(rec.Digest)
	assert.True(t, found)
	assert.Equal(t, uint64(1), ref.Index, "earliest block keeps the reference")
}

func TestIndex_Rebuild(t *testing.T) {
	i := index.New()
	stale := types.NewDocumentRecord("stale.txt", []byte("stale"))
	i.AddBlock(sealedBlock(9, 900, stale))

	a := types.NewDocumentRecord("a.txt", []byte("a"))
	b := types.NewDocumentRecord("b.txt", []byte("b"))

	count := i.Rebuild([]types.Block{
		sealedBlock(1, 100, a),
		sealedBlock(2, 200, b),
	})

	assert.Equal(t, uint64(2), count)
	assert.Equal(t, 2, i.Size())

	_, found := i.Lookup(stale.Digest)
	assert.False(t, found, "rebuild drops entries that are no longer on the chain")

	ref, found := i.Lookup(b.Digest)
	assert.True(t, found)
	assert.Equal(t, uint64(2), ref.Index)
}

func TestIndex_Rebuild_CountsDistinctDigests(t *testing.T) {
	i := index.New()
	same := types.NewDocumentRecord("same.txt", []byte("same"))

	count := i.Rebuild([]types.Block{
		sealedBlock(1, 100, same),
		sealedBlock(2, 200, same),
	})

	assert.Equal(t, uint64(1), count)
}

// Package index maintains the digest lookup table of a chain.
package index

import (
	"sync"

	"github.com/i5heu/ouroboros-notary/pkg/types"
)

// BlockRef points at the block that sealed a document.
type BlockRef struct {
	Index     uint64
	Timestamp types.Level
	Name      string
}

// Index maps content digests to the block that first sealed them. Lookups
// give the same answer as scanning the chain in block order: when the same
// content was sealed more than once, the earliest block wins.
type Index struct {
	digestToBlock     map[types.Digest]BlockRef
	digestToBlockLock sync.RWMutex
}

func New() *Index {
	return &Index{
		digestToBlock: make(map[types.Digest]BlockRef),
	}
}

// AddBlock registers every document of a freshly sealed block. Digests
// already present keep their earlier reference.
func (i *Index) AddBlock(block types.Block) {
	i.digestToBlockLock.Lock()
	defer i.digestToBlockLock.Unlock()

	i.addBlockLocked(block)
}

func (i *Index) addBlockLocked(block types.Block) {
	for _, doc := range block.Documents {
		if _, exists := i.digestToBlock[doc.Digest]; exists {
			continue
		}
		i.digestToBlock[doc.Digest] = BlockRef{
			Index:     block.Index,
			Timestamp: block.Timestamp,
			Name:      doc.Name,
		}
	}
}

// Rebuild clears the table and reindexes the given blocks. Blocks must be
// passed in chain order so the earliest reference wins. Returns the number
// of digests indexed.
func (i *Index) Rebuild(blocks []types.Block) uint64 {
	i.digestToBlockLock.Lock()
	defer i.digestToBlockLock.Unlock()

	clear(i.digestToBlock)

	for _, block := range blocks {
		i.addBlockLocked(block)
	}

	return uint64(len(i.digestToBlock))
}

func (i *Index) Lookup(digest types.Digest) (BlockRef, bool) {
	i.digestToBlockLock.RLock()
	defer i.digestToBlockLock.RUnlock()

	ref, exists := i.digestToBlock[digest]
	return ref, exists
}

func (i *Index) Size() int {
	i.digestToBlockLock.RLock()
	defer i.digestToBlockLock.RUnlock()

	return len(i.digestToBlock)
}

package chain

import (
	"github.com/i5heu/ouroboros-notary/pkg/index"
	"github.com/i5heu/ouroboros-notary/pkg/types"
)

// Verify reports whether the exact content has been sealed into the
// chain. Not found is a normal result, not an error. Pending submissions
// do not count, verification attests only to sealed blocks.
func (c *Chain) Verify(content []byte) types.VerificationResult {
	digest := types.DigestBytes(content)

	ref, found := c.index.Lookup(digest)
	if !found {
		return types.VerificationResult{}
	}

	return types.VerificationResult{
		Found:      true,
		Name:       ref.Name,
		BlockIndex: ref.Index,
		Timestamp:  ref.Timestamp,
	}
}

// scanLookup is the reference lookup: walk blocks in index order, then
// documents in submission order, and take the first match. The digest
// index must always agree with it.
func (c *Chain) scanLookup(digest types.Digest) (index.BlockRef, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, block := range c.blocks {
		for _, doc := range block.Documents {
			if doc.Digest == digest {
				return index.BlockRef{
					Index:     block.Index,
					Timestamp: block.Timestamp,
					Name:      doc.Name,
				}, true
			}
		}
	}
	return index.BlockRef{}, false
}

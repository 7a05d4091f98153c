package chain

import (
	"fmt"

	"github.com/i5heu/ouroboros-notary/pkg/types"
)

// Validate checks the whole chain: the genesis shape, index continuity,
// digest linkage, timestamp order, every stored digest against a fresh
// recomputation and, when the chain runs with a difficulty, the sealing
// target. It returns nil or a *types.IntegrityError naming the first
// offending block. Validate never mutates the chain and never repairs.
func (c *Chain) Validate() error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	genesis := c.blocks[0]
	if genesis.Index != 0 {
		return &types.IntegrityError{Index: genesis.Index, Reason: "genesis block must have index 0"}
	}
	if !genesis.PrevDigest.IsZero() {
		return &types.IntegrityError{Index: 0, Reason: "genesis previous digest must be the zero sentinel"}
	}
	if len(genesis.Documents) != 0 {
		return &types.IntegrityError{Index: 0, Reason: "genesis block must not contain documents"}
	}

	for i := range c.blocks {
		if err := c.validateBlockAt(i); err != nil {
			return err
		}
	}
	return nil
}

// validateBlockAt checks block i against its predecessor and against its
// own stored digests.
func (c *Chain) validateBlockAt(i int) error {
	current := c.blocks[i]

	if i > 0 {
		previous := c.blocks[i-1]
		if current.Index != previous.Index+1 {
			return &types.IntegrityError{
				Index:  current.Index,
				Reason: fmt.Sprintf("index not continuous: expected %d", previous.Index+1),
			}
		}
		if current.PrevDigest != previous.Digest {
			return &types.IntegrityError{
				Index:  current.Index,
				Reason: "previous digest does not match predecessor",
			}
		}
		if current.Timestamp < previous.Timestamp {
			return &types.IntegrityError{
				Index:  current.Index,
				Reason: "timestamp earlier than predecessor",
			}
		}
	}

	for _, doc := range current.Documents {
		if doc.Digest != types.DigestBytes(doc.Content) {
			return &types.IntegrityError{
				Index:  current.Index,
				Reason: fmt.Sprintf("document %q digest does not match its content", doc.Name),
			}
		}
	}

	if recomputed := current.ComputeDigest(); recomputed != current.Digest {
		return &types.IntegrityError{
			Index:  current.Index,
			Reason: "stored digest does not match recomputation",
		}
	}

	if c.difficulty > 0 {
		if !digestMeetsTarget(current.Digest, targetFromDifficulty(c.difficulty)) {
			return &types.IntegrityError{
				Index:  current.Index,
				Reason: "digest does not meet the sealing difficulty",
			}
		}
	}

	return nil
}

// Package chain implements the append-only document ledger: a pending
// queue that mining drains into digest-linked blocks.
package chain

import (
	"fmt"
	"sync"
	"time"

	"github.com/i5heu/ouroboros-notary/pkg/index"
	"github.com/i5heu/ouroboros-notary/pkg/queue"
	"github.com/i5heu/ouroboros-notary/pkg/types"
)

// Options configure a chain. The zero value is a plain chain, no sealing
// difficulty, system clock.
type Options struct {
	// Difficulty is the number of leading zero bits a sealed block digest
	// must carry. 0 disables the nonce search entirely.
	Difficulty uint32
	// Clock supplies block timestamps, defaults to time.Now. Timestamps
	// are clamped to the previous block, a clock that jumps backwards
	// cannot break timestamp order.
	Clock func() time.Time
}

// Chain is the ledger. It owns its pending queue and digest index; blocks
// are appended by Mine and never removed or edited afterwards.
type Chain struct {
	mu     sync.RWMutex
	blocks []types.Block

	queue      *queue.Queue
	index      *index.Index
	difficulty uint32
	clock      func() time.Time
}

// New creates a chain holding only the genesis block. The genesis has
// index 0, no documents and the zero-digest sentinel as its previous
// digest; it is sealed exactly like every later block.
func New(opts Options) *Chain {
	c := &Chain{
		queue:      queue.New(),
		index:      index.New(),
		difficulty: opts.Difficulty,
		clock:      opts.Clock,
	}
	if c.clock == nil {
		c.clock = time.Now
	}

	genesis := types.Block{
		Index:      0,
		Timestamp:  types.Level(c.clock().UnixNano()),
		PrevDigest: types.ZeroDigest,
	}
	c.seal(&genesis)
	c.blocks = append(c.blocks, genesis)

	return c
}

// FromBlocks resumes a chain from already-sealed blocks, as loaded from a
// store. The blocks must start at the genesis and pass a full validation;
// the digest index is rebuilt from them.
func FromBlocks(blocks []types.Block, opts Options) (*Chain, error) {
	if len(blocks) == 0 {
		return nil, fmt.Errorf("chain: cannot resume from zero blocks")
	}

	c := &Chain{
		blocks:     make([]types.Block, len(blocks)),
		queue:      queue.New(),
		index:      index.New(),
		difficulty: opts.Difficulty,
		clock:      opts.Clock,
	}
	copy(c.blocks, blocks)
	if c.clock == nil {
		c.clock = time.Now
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	c.index.Rebuild(c.blocks)
	return c, nil
}

// Submit queues content for the next mined block and returns the record
// as the caller's receipt. Submitted-but-unmined content does not verify.
func (c *Chain) Submit(name string, content []byte) types.DocumentRecord {
	return c.queue.Submit(name, content)
}

// Pending reports how many records wait for the next block.
func (c *Chain) Pending() int {
	return c.queue.Size()
}

// Mine drains the pending queue into a new block linked to the current
// tip, seals it and appends it. Mining with nothing pending is allowed
// and produces a valid empty block. The returned block is the sealed
// copy that now terminates the chain.
func (c *Chain) Mine() types.Block {
	c.mu.Lock()
	defer c.mu.Unlock()

	tip := c.blocks[len(c.blocks)-1]

	block := types.Block{
		Index:      tip.Index + 1,
		Timestamp:  c.timestampAfter(tip.Timestamp),
		Documents:  c.queue.DrainAll(),
		PrevDigest: tip.Digest,
	}
	c.seal(&block)

	c.blocks = append(c.blocks, block)
	c.index.AddBlock(block)

	return block
}

// timestampAfter reads the clock and clamps the result so block
// timestamps never decrease along the chain.
func (c *Chain) timestampAfter(previous types.Level) types.Level {
	now := types.Level(c.clock().UnixNano())
	if now < previous {
		return previous
	}
	return now
}

// Tip returns the newest block.
func (c *Chain) Tip() types.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.blocks[len(c.blocks)-1]
}

// Length returns the number of blocks, the genesis included.
func (c *Chain) Length() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.blocks)
}

// Blocks returns a copy of the chain in index order, for display and
// persistence.
func (c *Chain) Blocks() []types.Block {
	c.mu.RLock()
	defer c.mu.RUnlock()

	blocks := make([]types.Block, len(c.blocks))
	copy(blocks, c.blocks)
	return blocks
}

func (c *Chain) BlockByIndex(idx uint64) (types.Block, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if idx >= uint64(len(c.blocks)) {
		return types.Block{}, fmt.Errorf("chain: block index %d out of range", idx)
	}
	return c.blocks[idx], nil
}

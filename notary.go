// Package notary keeps an append-only, digest-linked ledger of documents.
// Submitted documents wait in a pending queue until Mine seals them into
// a block; Verify answers whether exact content was ever sealed, and
// Validate re-checks the whole chain. With a data path configured, sealed
// blocks are persisted and the chain resumes from disk on the next open.
package notary

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/i5heu/ouroboros-notary/internal/chainstore"
	"github.com/i5heu/ouroboros-notary/pkg/chain"
	"github.com/i5heu/ouroboros-notary/pkg/types"
)

var ErrClosed = errors.New("notary: closed")

// Notary is the main handle. It owns the chain and, when a data path is
// configured, the store that persists sealed blocks.
type Notary struct {
	log    *logrus.Logger
	config Config

	chain *chain.Chain
	store *chainstore.Store

	mu     sync.RWMutex
	closed bool
}

// New opens a notary. With no paths configured the chain lives in memory.
// With a path, the data directory is created if missing, persisted blocks
// are loaded and validated, and a fresh store is seeded with the genesis
// block.
func New(conf Config) (*Notary, error) {
	if conf.Logger == nil {
		conf.Logger = defaultLogger()
	}

	opts := chain.Options{
		Difficulty: conf.Difficulty,
		Clock:      conf.Clock,
	}

	n := &Notary{
		log:    conf.Logger,
		config: conf,
	}

	if len(conf.Paths) == 0 {
		n.chain = chain.New(opts)
		n.log.Info("No data path configured, chain lives in memory only")
		return n, nil
	}

	if err := os.MkdirAll(conf.Paths[0], 0o700); err != nil {
		return nil, fmt.Errorf("error creating data directory %s: %w", conf.Paths[0], err)
	}

	store, err := chainstore.Open(chainstore.StoreConfig{
		Paths:            conf.Paths,
		MinimumFreeSpace: conf.MinimumFreeGB,
		Logger:           conf.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening chain store: %w", err)
	}

	blocks, err := store.LoadBlocks()
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("error loading persisted blocks: %w", err)
	}

	if len(blocks) == 0 {
		n.chain = chain.New(opts)
		if err := store.PutBlock(n.chain.Tip()); err != nil {
			store.Close()
			return nil, fmt.Errorf("error persisting genesis block: %w", err)
		}
	} else {
		resumed, err := chain.FromBlocks(blocks, opts)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("error resuming chain from store: %w", err)
		}
		n.chain = resumed
		n.log.WithFields(logrus.Fields{
			"blocks": len(blocks),
		}).Info("Resumed chain from store")
	}

	n.store = store
	return n, nil
}

// Submit queues content for the next mined block and returns the record
// as the caller's receipt. The content does not verify until it is mined.
func (n *Notary) Submit(name string, content []byte) (types.DocumentRecord, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return types.DocumentRecord{}, ErrClosed
	}
	return n.chain.Submit(name, content), nil
}

// SubmitReader reads the full content from r and submits it. A failing
// reader is reported as an InputError and leaves the queue untouched.
func (n *Notary) SubmitReader(name string, r io.Reader) (types.DocumentRecord, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return types.DocumentRecord{}, &types.InputError{Name: name, Err: err}
	}
	return n.Submit(name, content)
}

// Pending reports how many records wait for the next block.
func (n *Notary) Pending() int {
	return n.chain.Pending()
}

// Mine drains the pending queue into a new sealed block and persists it
// when a store is configured. If persisting fails, the mined block stays
// in the in-memory chain and the error reports the failed write.
func (n *Notary) Mine() (types.Block, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return types.Block{}, ErrClosed
	}

	block := n.chain.Mine()
	if n.store != nil {
		if err := n.store.PutBlock(block); err != nil {
			return block, fmt.Errorf("error persisting block %d: %w", block.Index, err)
		}
	}

	n.log.WithFields(logrus.Fields{
		"index":     block.Index,
		"documents": len(block.Documents),
		"digest":    block.Digest.Short(),
	}).Info("Block mined")

	return block, nil
}

// Verify reports whether content was ever sealed into a block, and if so,
// in which block and when. Not finding a match is a normal result, not an
// error.
func (n *Notary) Verify(content []byte) types.VerificationResult {
	return n.chain.Verify(content)
}

// Validate re-checks every block link and digest in the chain.
func (n *Notary) Validate() error {
	return n.chain.Validate()
}

// Blocks returns a copy of the chain in index order.
func (n *Notary) Blocks() []types.Block {
	return n.chain.Blocks()
}

// Tip returns the newest block.
func (n *Notary) Tip() types.Block {
	return n.chain.Tip()
}

// Describe renders the chain for human inspection.
func (n *Notary) Describe() string {
	return n.chain.Describe()
}

// Close releases the store. The in-memory chain stays readable, further
// Submit and Mine calls fail with ErrClosed. Close is idempotent.
func (n *Notary) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil
	}
	n.closed = true

	if n.store != nil {
		if err := n.store.Close(); err != nil {
			return fmt.Errorf("error closing chain store: %w", err)
		}
	}
	return nil
}

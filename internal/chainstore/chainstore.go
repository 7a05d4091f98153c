// Package chainstore persists sealed blocks to a BadgerDB key-value
// store. Document content is split into content-defined chunks, stored
// once per chunk digest and lzma-compressed; block records keep the
// ordered chunk references so content can be reassembled on load.
package chainstore

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"
	"github.com/ulikunitz/xz/lzma"

	"github.com/i5heu/ouroboros-notary/internal/chunker"
	"github.com/i5heu/ouroboros-notary/pkg/types"
)

var log *logrus.Logger

const (
	blockKeyPrefix = "block:"
	chunkKeyPrefix = "chunk:"

	// Contents up to this size are chunked on one goroutine; the worker
	// pool only pays off for larger documents.
	smallContentBytes = 64 * 1024
)

type StoreConfig struct {
	Paths            []string // at the moment only the first path is used
	MinimumFreeSpace int      // in GB
	Logger           *logrus.Logger
}

// Store is the durable side of a chain.
type Store struct {
	config       StoreConfig
	badgerDB     *badger.DB
	readCounter  uint64
	writeCounter uint64
}

func Open(config StoreConfig) (*Store, error) {
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	log = config.Logger

	err := config.checkConfig()
	if err != nil {
		return nil, fmt.Errorf("error checking config for chain store: %w", err)
	}

	opts := badger.DefaultOptions(config.Paths[0])
	opts.Logger = nil
	opts.ValueLogFileSize = 1024 * 1024 * 100 // Set max size of each value log file to 100MB
	opts.SyncWrites = false

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("error opening chain store at %s: %w", config.Paths[0], err)
	}

	store := &Store{
		config:   config,
		badgerDB: db,
	}

	if err := logDiskUsage(config.Paths); err != nil {
		store.badgerDB.Close()
		return nil, err
	}

	return store, nil
}

// PutBlock persists a sealed block. Every document is chunked, chunks not
// yet present are written compressed, and the block record keeps the
// ordered chunk digests in place of the raw content.
func (s *Store) PutBlock(block types.Block) error {
	stored := storedBlock{
		Index:      block.Index,
		Timestamp:  block.Timestamp,
		PrevDigest: block.PrevDigest,
		Nonce:      block.Nonce,
		Digest:     block.Digest,
	}

	for _, doc := range block.Documents {
		var chunks []chunker.Chunk
		var err error
		if len(doc.Content) <= smallContentBytes {
			chunks, err = chunker.ChunkBytesSynchronously(doc.Content)
		} else {
			chunks, err = chunker.ChunkBytes(doc.Content)
		}
		if err != nil {
			return fmt.Errorf("error chunking document %q: %w", doc.Name, err)
		}

		if err := s.writeNewChunks(chunks); err != nil {
			return fmt.Errorf("error storing chunks of document %q: %w", doc.Name, err)
		}

		chunkDigests := make([]types.Digest, len(chunks))
		for i, chunk := range chunks {
			chunkDigests[i] = chunk.Digest
		}

		stored.Documents = append(stored.Documents, storedDocument{
			Name:          doc.Name,
			Digest:        doc.Digest,
			SubmittedAt:   doc.SubmittedAt,
			ContentLength: uint64(len(doc.Content)),
			ChunkDigests:  chunkDigests,
		})
	}

	var buf bytes.Buffer
	enc := gob.NewEncoder(&buf)
	if err := enc.Encode(stored); err != nil {
		return fmt.Errorf("error encoding block %d: %w", block.Index, err)
	}

	if err := s.write(blockKey(block.Index), buf.Bytes()); err != nil {
		return fmt.Errorf("error writing block %d: %w", block.Index, err)
	}

	log.WithFields(logrus.Fields{
		"index":     block.Index,
		"documents": len(block.Documents),
		"digest":    block.Digest.Short(),
	}).Info("Block persisted")

	return nil
}

// LoadBlocks reads every persisted block in chain order and reassembles
// document content from the chunk store. Reassembled content is checked
// against the stored document digest before a block is accepted.
func (s *Store) LoadBlocks() ([]types.Block, error) {
	items, err := s.getItemsWithPrefix([]byte(blockKeyPrefix))
	if err != nil {
		return nil, fmt.Errorf("error listing block records: %w", err)
	}

	blocks := make([]types.Block, 0, len(items))
	for _, item := range items {
		var stored storedBlock
		dec := gob.NewDecoder(bytes.NewReader(item[1]))
		if err := dec.Decode(&stored); err != nil {
			return nil, fmt.Errorf("error decoding block record %q: %w", item[0], err)
		}

		block, err := s.reassembleBlock(stored)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

func (s *Store) reassembleBlock(stored storedBlock) (types.Block, error) {
	block := types.Block{
		Index:      stored.Index,
		Timestamp:  stored.Timestamp,
		PrevDigest: stored.PrevDigest,
		Nonce:      stored.Nonce,
		Digest:     stored.Digest,
	}

	for _, doc := range stored.Documents {
		content := make([]byte, 0, doc.ContentLength)
		for _, chunkDigest := range doc.ChunkDigests {
			data, err := s.readChunk(chunkDigest)
			if err != nil {
				return types.Block{}, fmt.Errorf("block %d document %q: %w", stored.Index, doc.Name, err)
			}
			content = append(content, data...)
		}

		if types.DigestBytes(content) != doc.Digest {
			return types.Block{}, &types.IntegrityError{
				Index:  stored.Index,
				Reason: fmt.Sprintf("document %q reassembled from the store does not match its digest", doc.Name),
			}
		}

		block.Documents = append(block.Documents, types.DocumentRecord{
			Name:        doc.Name,
			Digest:      doc.Digest,
			Content:     content,
			SubmittedAt: doc.SubmittedAt,
		})
	}

	return block, nil
}

// writeNewChunks stores the chunks that are not present yet, compressed.
// Chunks that already exist are skipped, which is what deduplicates
// repeated content across documents and blocks.
func (s *Store) writeNewChunks(chunks []chunker.Chunk) error {
	var keys [][]byte
	for _, chunk := range chunks {
		keys = append(keys, chunkKey(chunk.Digest))
	}

	existsMap, err := s.batchCheckKeyExistence(keys)
	if err != nil {
		return fmt.Errorf("error checking chunk existence: %w", err)
	}

	wb := s.badgerDB.NewWriteBatch()
	defer wb.Cancel()

	written := make(map[types.Digest]bool)
	for _, chunk := range chunks {
		key := chunkKey(chunk.Digest)
		if existsMap[string(key)] || written[chunk.Digest] {
			continue
		}
		written[chunk.Digest] = true

		compressed, err := compressWithLzma(chunk.Data)
		if err != nil {
			return fmt.Errorf("error compressing chunk %s: %w", chunk.Digest.Short(), err)
		}

		atomic.AddUint64(&s.writeCounter, 1)
		if err := wb.Set(key, compressed); err != nil {
			return fmt.Errorf("error writing chunk %s: %w", chunk.Digest.Short(), err)
		}
	}

	return wb.Flush()
}

func (s *Store) readChunk(digest types.Digest) ([]byte, error) {
	compressed, err := s.read(chunkKey(digest))
	if err != nil {
		return nil, fmt.Errorf("error reading chunk %s: %w", digest.Short(), err)
	}

	data, err := decompressWithLzma(compressed)
	if err != nil {
		return nil, fmt.Errorf("error decompressing chunk %s: %w", digest.Short(), err)
	}

	if types.DigestBytes(data) != digest {
		return nil, fmt.Errorf("chunk %s does not match its digest", digest.Short())
	}

	return data, nil
}

func (s *Store) write(key []byte, content []byte) error {
	atomic.AddUint64(&s.writeCounter, 1)

	return s.badgerDB.Update(func(txn *badger.Txn) error {
		return txn.Set(key, content)
	})
}

func (s *Store) read(key []byte) ([]byte, error) {
	atomic.AddUint64(&s.readCounter, 1)

	var value []byte
	err := s.badgerDB.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *Store) batchCheckKeyExistence(keys [][]byte) (map[string]bool, error) {
	existsMap := make(map[string]bool)

	err := s.badgerDB.View(func(txn *badger.Txn) error {
		for _, key := range keys {
			atomic.AddUint64(&s.readCounter, 1)
			_, err := txn.Get(key)
			if err != nil {
				if err == badger.ErrKeyNotFound {
					existsMap[string(key)] = false
				} else {
					return err // return an error for issues other than "key not found"
				}
			} else {
				existsMap[string(key)] = true
			}
		}
		return nil
	})

	return existsMap, err
}

// getItemsWithPrefix returns all keys and values with the given prefix,
// in key order.
func (s *Store) getItemsWithPrefix(prefix []byte) ([][][]byte, error) {
	var keysAndValues [][][]byte
	atomic.AddUint64(&s.readCounter, 1)

	err := s.badgerDB.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			k := item.KeyCopy(nil)
			v, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			keysAndValues = append(keysAndValues, [][]byte{k, v})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keysAndValues, nil
}

// Counters reports the read and write operations since the store opened.
func (s *Store) Counters() (reads, writes uint64) {
	return atomic.LoadUint64(&s.readCounter), atomic.LoadUint64(&s.writeCounter)
}

func (s *Store) Close() error {
	if err := s.Clean(); err != nil {
		log.WithFields(logrus.Fields{
			"error": err,
		}).Warn("Error cleaning chain store on close")
	}

	reads, writes := s.Counters()
	log.WithFields(logrus.Fields{
		"reads":  reads,
		"writes": writes,
	}).Info("Closing chain store")

	return s.badgerDB.Close()
}

func (s *Store) Clean() error {
	err := s.badgerDB.Sync()
	if err != nil {
		return fmt.Errorf("error syncing db: %w", err)
	}

	// flatten the db
	err = s.badgerDB.Flatten(runtime.NumCPU()) // The parameter is the number of concurrent compactions
	if err != nil {
		return fmt.Errorf("error flattening db: %w", err)
	}

	err = s.badgerDB.RunValueLogGC(0.1)
	if err != nil {
		if err != badger.ErrNoRewrite {
			return fmt.Errorf("error cleaning db: %w", err)
		}
	}

	return nil
}

func blockKey(index uint64) []byte {
	return []byte(fmt.Sprintf("%s%016x", blockKeyPrefix, index))
}

func chunkKey(digest types.Digest) []byte {
	return append([]byte(chunkKeyPrefix), digest[:]...)
}

func compressWithLzma(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := lzma.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	_, err = w.Write(data)
	if err != nil {
		return nil, err
	}

	err = w.Close()
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func decompressWithLzma(data []byte) ([]byte, error) {
	r, err := lzma.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	_, err = buf.ReadFrom(r)
	if err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

package chainstore

import "github.com/i5heu/ouroboros-notary/pkg/types"

// storedDocument is the on-disk form of a document record. Content is
// replaced by the ordered list of chunk digests that reassemble it.
type storedDocument struct {
	Name          string
	Digest        types.Digest
	SubmittedAt   types.Level
	ContentLength uint64
	ChunkDigests  []types.Digest
}

// storedBlock is the on-disk form of a sealed block, gob-encoded under
// its block key.
type storedBlock struct {
	Index      uint64
	Timestamp  types.Level
	PrevDigest types.Digest
	Nonce      uint64
	Digest     types.Digest
	Documents  []storedDocument
}

package chain

import (
	"math/big"

	"github.com/i5heu/ouroboros-notary/pkg/types"
)

// digestBits is the size of a block digest in bits.
const digestBits = 512

// seal computes the block digest, searching a nonce when the chain runs
// with a difficulty. Without a difficulty the nonce stays 0 and sealing
// is a single hash.
func (c *Chain) seal(block *types.Block) {
	if c.difficulty == 0 {
		block.Nonce = 0
		block.Digest = block.ComputeDigest()
		return
	}

	target := targetFromDifficulty(c.difficulty)
	for nonce := uint64(0); ; nonce++ {
		block.Nonce = nonce
		digest := block.ComputeDigest()
		if digestMeetsTarget(digest, target) {
			block.Digest = digest
			return
		}
	}
}

// targetFromDifficulty converts a leading-zero-bits difficulty into the
// target a digest must stay below.
func targetFromDifficulty(difficulty uint32) *big.Int {
	if difficulty >= digestBits {
		return big.NewInt(0)
	}

	return new(big.Int).Lsh(big.NewInt(1), uint(digestBits-difficulty))
}

func digestMeetsTarget(digest types.Digest, target *big.Int) bool {
	digestInt := new(big.Int).SetBytes(digest.Bytes())
	return digestInt.Cmp(target) <= 0
}

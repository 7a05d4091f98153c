package chain

import (
	"errors"
	"math/big"
	"testing"

	"github.com/i5heu/ouroboros-notary/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Difficulty 8 needs ~256 attempts per block, fast enough for tests.
const testDifficulty = 8

func TestTargetFromDifficulty(t *testing.T) {
	full := targetFromDifficulty(0)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), digestBits), full)

	eight := targetFromDifficulty(8)
	assert.Equal(t, new(big.Int).Lsh(big.NewInt(1), digestBits-8), eight)
	assert.True(t, eight.Cmp(full) < 0, "higher difficulty means lower target")

	assert.Equal(t, big.NewInt(0), targetFromDifficulty(digestBits))
	assert.Equal(t, big.NewInt(0), targetFromDifficulty(digestBits+1))
}

func TestDigestMeetsTarget(t *testing.T) {
	var zero types.Digest
	assert.True(t, digestMeetsTarget(zero, targetFromDifficulty(511)))

	var ones types.Digest
	for i := range ones {
		ones[i] = 0xff
	}
	assert.False(t, digestMeetsTarget(ones, targetFromDifficulty(1)))
	assert.True(t, digestMeetsTarget(ones, targetFromDifficulty(0)))
}

func TestSeal_WithDifficulty(t *testing.T) {
	c := New(Options{Difficulty: testDifficulty})

	target := targetFromDifficulty(testDifficulty)
	genesis := c.Tip()
	assert.True(t, digestMeetsTarget(genesis.Digest, target), "genesis is sealed like any block")

	c.Submit("umowa.txt", []byte("contract-v1"))
	block := c.Mine()

	assert.True(t, digestMeetsTarget(block.Digest, target))
	assert.Equal(t, block.ComputeDigest(), block.Digest, "nonce search must leave a self-consistent digest")
	assert.NoError(t, c.Validate())

	result := c.Verify([]byte("contract-v1"))
	assert.True(t, result.Found)
}

func TestSeal_WithoutDifficulty_NonceStaysZero(t *testing.T) {
	c := New(Options{})
	c.Mine()

	for _, block := range c.Blocks() {
		assert.Equal(t, uint64(0), block.Nonce)
	}
}

func TestValidate_EnforcesDifficulty(t *testing.T) {
	plain := New(Options{})
	plain.Submit("a.txt", []byte("aaa"))
	plain.Mine()

	// Resuming the same blocks under a difficulty must fail validation
	// unless the digests happen to meet the target.
	_, err := FromBlocks(plain.Blocks(), Options{Difficulty: 128})
	require.Error(t, err)

	var integrityErr *types.IntegrityError
	require.True(t, errors.As(err, &integrityErr))
	assert.Contains(t, integrityErr.Reason, "difficulty")
}

func TestFromBlocks_ResumeWithDifficulty(t *testing.T) {
	mined := New(Options{Difficulty: testDifficulty})
	mined.Submit("a.txt", []byte("aaa"))
	mined.Mine()

	resumed, err := FromBlocks(mined.Blocks(), Options{Difficulty: testDifficulty})
	require.NoError(t, err)
	assert.NoError(t, resumed.Validate())
}

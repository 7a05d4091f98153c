package chain

import (
	"fmt"
	"strings"
	"time"
)

// Describe renders the chain in a human-readable form, one section per
// block, oldest first.
func (c *Chain) Describe() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var sb strings.Builder
	for _, block := range c.blocks {
		fmt.Fprintf(&sb, "Block %d\n", block.Index)
		fmt.Fprintf(&sb, "  Time:     %s\n", block.Timestamp.Time().Format(time.RFC3339))
		fmt.Fprintf(&sb, "  Previous: %s\n", block.PrevDigest.Short())
		fmt.Fprintf(&sb, "  Digest:   %s\n", block.Digest.Short())
		if block.Nonce != 0 {
			fmt.Fprintf(&sb, "  Nonce:    %d\n", block.Nonce)
		}
		for _, doc := range block.Documents {
			fmt.Fprintf(&sb, "  - %s (%d bytes) %s\n", doc.Name, len(doc.Content), doc.Digest.Short())
		}
	}
	return sb.String()
}

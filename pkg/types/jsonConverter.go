package types

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

func (rec DocumentRecord) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(&struct {
		Name        string `json:"name"`
		Digest      string `json:"digest"`
		ContentSize int    `json:"contentSize"`
		SubmittedAt int64  `json:"submittedAt"`
	}{
		Name:        rec.Name,
		Digest:      hex.EncodeToString(rec.Digest[:]),
		ContentSize: len(rec.Content),
		SubmittedAt: int64(rec.SubmittedAt),
	}, "", "    ")
}

func (b Block) MarshalJSON() ([]byte, error) {
	return json.MarshalIndent(&struct {
		Index      uint64           `json:"index"`
		Timestamp  int64            `json:"timestamp"`
		Documents  []DocumentRecord `json:"documents"`
		PrevDigest string           `json:"prevDigest"`
		Nonce      uint64           `json:"nonce"`
		Digest     string           `json:"digest"`
	}{
		Index:      b.Index,
		Timestamp:  int64(b.Timestamp),
		Documents:  b.Documents,
		PrevDigest: hex.EncodeToString(b.PrevDigest[:]),
		Nonce:      b.Nonce,
		Digest:     hex.EncodeToString(b.Digest[:]),
	}, "", "    ")
}

func (b *Block) PrettyPrint() {
	jsonBytes, err := b.MarshalJSON()
	if err != nil {
		fmt.Println("Error marshalling Block to JSON:", err)
		return
	}

	fmt.Println(string(jsonBytes))
}

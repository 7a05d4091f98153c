// Package chunker splits document content into content-defined chunks so
// the chain store can deduplicate repeated content.
package chunker

import (
	"bytes"
	"crypto/sha512"
	"fmt"
	"io"
	"runtime"
	"sync"

	"github.com/i5heu/ouroboros-notary/pkg/types"
	boxochunker "github.com/ipfs/boxo/chunker"
)

// Chunk is one content-defined piece of a document.
type Chunk struct {
	Digest     types.Digest // SHA-512 of Data
	Data       []byte
	DataLength uint32
}

// ChunkBytes splits data with a buzhash rolling window and digests the
// chunks on a bounded worker pool. Chunks come back in stream order.
func ChunkBytes(data []byte) ([]Chunk, error) {
	return ChunkReader(bytes.NewReader(data))
}

func ChunkReader(reader io.Reader) ([]Chunk, error) {
	bz := boxochunker.NewBuzhash(reader)

	numberOfWorkers := runtime.NumCPU()*2 - 1
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}

	digestChan := make(chan numberedChunk, numberOfWorkers+1)
	workerLimit := make(chan struct{}, numberOfWorkers)
	var wg sync.WaitGroup
	var collectorWg sync.WaitGroup

	resultChan := make(chan []Chunk, 1)
	collectorWg.Add(1)
	go collectChunks(&collectorWg, digestChan, resultChan)

	for chunkNumber := 0; ; chunkNumber++ {
		data, err := bz.NextBytes()
		if err == io.EOF {
			wg.Wait()
			close(digestChan)
			break
		}
		if err != nil {
			// Let outstanding workers finish and the collector exit
			// before reporting the failed read.
			wg.Wait()
			close(digestChan)
			return nil, fmt.Errorf("error reading chunk: %w", err)
		}

		wg.Add(1)
		workerLimit <- struct{}{}
		go digestChunk(&wg, digestChan, data, chunkNumber, workerLimit)
	}

	collectorWg.Wait()
	close(resultChan)

	chunks, ok := <-resultChan
	if !ok {
		return nil, fmt.Errorf("failed to read from result channel")
	}

	return chunks, nil
}

// ChunkBytesSynchronously is the single-goroutine variant, cheaper for
// small contents.
func ChunkBytesSynchronously(data []byte) ([]Chunk, error) {
	return ChunkReaderSynchronously(bytes.NewReader(data))
}

func ChunkReaderSynchronously(reader io.Reader) ([]Chunk, error) {
	bz := boxochunker.NewBuzhash(reader)

	chunks := []Chunk{}

	for {
		data, err := bz.NextBytes()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading chunk: %w", err)
		}

		chunks = append(chunks, Chunk{
			Digest:     sha512.Sum512(data),
			Data:       data,
			DataLength: uint32(len(data)),
		})
	}

	return chunks, nil
}

type numberedChunk struct {
	chunkNumber int
	digest      types.Digest
	data        []byte
}

func collectChunks(collectorWg *sync.WaitGroup, digestChan <-chan numberedChunk, resultChan chan<- []Chunk) {
	defer collectorWg.Done()

	chunkMap := map[int]Chunk{}

	for numbered := range digestChan {
		chunkMap[numbered.chunkNumber] = Chunk{
			Digest:     numbered.digest,
			Data:       numbered.data,
			DataLength: uint32(len(numbered.data)),
		}
	}

	chunks := make([]Chunk, len(chunkMap))
	for i := 0; i < len(chunkMap); i++ {
		chunks[i] = chunkMap[i]
	}

	resultChan <- chunks
}

func digestChunk(wg *sync.WaitGroup, digestChan chan<- numberedChunk, data []byte, chunkNumber int, workerLimit chan struct{}) {
	defer wg.Done()

	digestChan <- numberedChunk{
		chunkNumber: chunkNumber,
		digest:      sha512.Sum512(data),
		data:        data,
	}
	<-workerLimit
}

// Command storeTorture hammers a disk-backed notary with random
// documents, then reloads and re-validates the whole chain. Rough tool
// for store and chunker behavior under volume, not a benchmark.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	notary "github.com/i5heu/ouroboros-notary"
)

var (
	rounds       = 50
	docsPerBlock = 20
	docSize      = 256 * 1024
)

func main() {
	dir, err := os.MkdirTemp("", "notary-torture")
	if err != nil {
		log.Fatal(err)
	}
	defer os.RemoveAll(dir)

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	n, err := notary.New(notary.Config{
		Paths:  []string{dir},
		Logger: logger,
	})
	if err != nil {
		log.Fatal(err)
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	start := time.Now()
	for i := 0; i < rounds; i++ {
		for j := 0; j < docsPerBlock; j++ {
			content := make([]byte, docSize)
			rnd.Read(content)
			if _, err := n.Submit(fmt.Sprintf("doc-%d-%d.bin", i, j), content); err != nil {
				log.Fatal(err)
			}
		}
		if _, err := n.Mine(); err != nil {
			log.Fatal(err)
		}
	}
	mining := time.Since(start)

	if err := n.Close(); err != nil {
		log.Fatal(err)
	}

	start = time.Now()
	n, err = notary.New(notary.Config{
		Paths:  []string{dir},
		Logger: logger,
	})
	if err != nil {
		log.Fatal(err)
	}
	reload := time.Since(start)

	start = time.Now()
	if err := n.Validate(); err != nil {
		log.Fatal(err)
	}
	validate := time.Since(start)

	if err := n.Close(); err != nil {
		log.Fatal(err)
	}

	totalMB := rounds * docsPerBlock * docSize / (1024 * 1024)
	fmt.Printf("mined %d blocks, %d documents, %d MB in %s\n", rounds, rounds*docsPerBlock, totalMB, mining)
	fmt.Printf("reload %s, revalidate %s\n", reload, validate)
}

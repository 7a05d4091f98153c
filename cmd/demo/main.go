// Command demo walks through the whole notary flow with two example
// documents: submit, mine, verify, tamper detection and a second round.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
	"github.com/sirupsen/logrus"

	notary "github.com/i5heu/ouroboros-notary"
)

func main() {
	pterm.DefaultBigText.WithLetters(
		putils.LettersFromStringWithStyle("Ouroboros ", pterm.FgDarkGray.ToStyle()),
		putils.LettersFromStringWithStyle("Notary", pterm.FgRed.ToStyle()),
	).Render()

	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	n, err := notary.New(notary.Config{Logger: logger})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening notary: %v\n", err)
		os.Exit(1)
	}
	defer n.Close()

	dir, err := os.MkdirTemp("", "notary-demo")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating demo directory: %v\n", err)
		os.Exit(1)
	}
	defer os.RemoveAll(dir)

	files := map[string][]byte{
		"umowa.txt":  []byte("Umowa o prace zawarta dnia 12.03.2024 pomiedzy stronami."),
		"dyplom.pdf": []byte("%PDF-1.4 dyplom ukonczenia studiow informatycznych"),
	}

	pterm.DefaultSection.Println("Submitting documents")
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, content, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing demo file: %v\n", err)
			os.Exit(1)
		}

		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening demo file: %v\n", err)
			os.Exit(1)
		}
		rec, err := n.SubmitReader(name, f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error submitting %s: %v\n", name, err)
			os.Exit(1)
		}
		pterm.Info.Printfln("Queued %s (digest %s)", rec.Name, rec.Digest.Short())
	}

	pterm.DefaultSection.Println("Mining")
	block, err := n.Mine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error mining block: %v\n", err)
		os.Exit(1)
	}
	pterm.Success.Printfln("Sealed block %d with %d documents", block.Index, len(block.Documents))

	pterm.DefaultSection.Println("Verifying")
	report(n, "umowa.txt", files["umowa.txt"])
	report(n, "dyplom.pdf", files["dyplom.pdf"])
	report(n, "nieistniejacy.txt", []byte("dokument ktory nigdy nie istnial"))

	tampered := append([]byte{}, files["umowa.txt"]...)
	tampered[0] ^= 0x01
	report(n, "umowa.txt (tampered copy)", tampered)

	pterm.DefaultSection.Println("Second round")
	rec, err := n.Submit("aneks.txt", []byte("Aneks do umowy o prace z dnia 01.06.2024."))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error submitting aneks.txt: %v\n", err)
		os.Exit(1)
	}
	pterm.Info.Printfln("Queued %s (digest %s)", rec.Name, rec.Digest.Short())
	if _, err := n.Mine(); err != nil {
		fmt.Fprintf(os.Stderr, "Error mining block: %v\n", err)
		os.Exit(1)
	}
	report(n, "aneks.txt", []byte("Aneks do umowy o prace z dnia 01.06.2024."))

	pterm.DefaultSection.Println("Chain")
	pterm.DefaultBox.WithTitle("blocks").Println(n.Describe())

	if err := n.Validate(); err != nil {
		pterm.Error.Printfln("Chain validation failed: %v", err)
		os.Exit(1)
	}
	pterm.Success.Printfln("Chain of %d blocks is valid", len(n.Blocks()))
}

func report(n *notary.Notary, name string, content []byte) {
	result := n.Verify(content)
	if result.Found {
		pterm.Success.Printfln("%s: committed in block %d at %s",
			name, result.BlockIndex, result.Timestamp.Time().Format(time.RFC1123))
	} else {
		pterm.Error.Printfln("%s: no committed record", name)
	}
}

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"

	notary "github.com/i5heu/ouroboros-notary"
	"github.com/i5heu/ouroboros-notary/internal/config"
)

func main() {
	submitCmd := flag.NewFlagSet("submit", flag.ExitOnError)
	submitConfig := submitCmd.String("config", "", "path to the YAML config file")
	mineCmd := flag.NewFlagSet("mine", flag.ExitOnError)
	mineConfig := mineCmd.String("config", "", "path to the YAML config file")
	verifyCmd := flag.NewFlagSet("verify", flag.ExitOnError)
	verifyConfig := verifyCmd.String("config", "", "path to the YAML config file")
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	validateConfig := validateCmd.String("config", "", "path to the YAML config file")
	showCmd := flag.NewFlagSet("show", flag.ExitOnError)
	showConfig := showCmd.String("config", "", "path to the YAML config file")
	pendingCmd := flag.NewFlagSet("pending", flag.ExitOnError)
	pendingConfig := pendingCmd.String("config", "", "path to the YAML config file")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	code := 0
	switch os.Args[1] {
	case "submit":
		submitCmd.Parse(os.Args[2:])
		if submitCmd.NArg() < 1 {
			fmt.Println("Usage: notary submit [-config file] <file> [<file>...]")
			os.Exit(1)
		}
		n := openNotary(*submitConfig)
		code = submitFiles(n, submitCmd.Args())
		closeNotary(n)

	case "mine":
		mineCmd.Parse(os.Args[2:])
		n := openNotary(*mineConfig)
		code = mineBlock(n)
		closeNotary(n)

	case "verify":
		verifyCmd.Parse(os.Args[2:])
		if verifyCmd.NArg() < 1 {
			fmt.Println("Usage: notary verify [-config file] <file> [<file>...]")
			os.Exit(1)
		}
		n := openNotary(*verifyConfig)
		code = verifyFiles(n, verifyCmd.Args())
		closeNotary(n)

	case "validate":
		validateCmd.Parse(os.Args[2:])
		n := openNotary(*validateConfig)
		code = validateChain(n)
		closeNotary(n)

	case "show":
		showCmd.Parse(os.Args[2:])
		n := openNotary(*showConfig)
		fmt.Print(n.Describe())
		closeNotary(n)

	case "pending":
		pendingCmd.Parse(os.Args[2:])
		n := openNotary(*pendingConfig)
		pterm.Info.Printfln("%d documents pending for the next block", n.Pending())
		closeNotary(n)

	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	os.Exit(code)
}

func printUsage() {
	fmt.Println("Usage: notary <command> [-config file] [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  submit <file> [<file>...]   queue documents for the next block")
	fmt.Println("  mine                        seal pending documents into a block")
	fmt.Println("  verify <file> [<file>...]   check documents against the chain")
	fmt.Println("  validate                    re-check every block link and digest")
	fmt.Println("  show                        print the chain")
	fmt.Println("  pending                     count documents waiting for a block")
}

func openNotary(configPath string) *notary.Notary {
	conf, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	logger := logrus.New()
	level, err := logrus.ParseLevel(conf.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing log level %q: %v\n", conf.LogLevel, err)
		os.Exit(1)
	}
	logger.SetLevel(level)

	n, err := notary.New(notary.Config{
		Paths:         []string{conf.DataDir},
		MinimumFreeGB: conf.MinimumFreeGB,
		Difficulty:    conf.Difficulty,
		Logger:        logger,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening notary: %v\n", err)
		os.Exit(1)
	}

	return n
}

func closeNotary(n *notary.Notary) {
	if err := n.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Error closing notary: %v\n", err)
	}
}

func submitFiles(n *notary.Notary, paths []string) int {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening file: %v\n", err)
			return 1
		}

		rec, err := n.SubmitReader(filepath.Base(path), f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error submitting %s: %v\n", path, err)
			return 1
		}

		pterm.Info.Printfln("Queued %s (digest %s)", rec.Name, rec.Digest.Short())
	}

	pterm.Info.Printfln("%d documents pending for the next block", n.Pending())
	return 0
}

func mineBlock(n *notary.Notary) int {
	block, err := n.Mine()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error mining block: %v\n", err)
		return 1
	}

	pterm.Success.Printfln("Sealed block %d with %d documents (digest %s)",
		block.Index, len(block.Documents), block.Digest.Short())
	return 0
}

func verifyFiles(n *notary.Notary, paths []string) int {
	code := 0
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
			return 1
		}

		result := n.Verify(content)
		if result.Found {
			pterm.Success.Printfln("%s: committed in block %d on %s",
				filepath.Base(path), result.BlockIndex, result.Timestamp.Time().Format(time.RFC1123))
		} else {
			pterm.Error.Printfln("%s: no committed record", filepath.Base(path))
			code = 1
		}
	}

	return code
}

func validateChain(n *notary.Notary) int {
	if err := n.Validate(); err != nil {
		pterm.Error.Printfln("Chain validation failed: %v", err)
		return 1
	}

	pterm.Success.Printfln("Chain of %d blocks is valid", len(n.Blocks()))
	return 0
}

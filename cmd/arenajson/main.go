// Command arenajson validates, reformats and compares JSON files using the
// arena-json document model. Input encoding is detected; output encoding is
// selectable.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/mattn/go-isatty"

	arenaJSON "github.com/arenajson/arena-json"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: arenajson <command> [flags] <file...>

commands:
  fmt    reformat a JSON file to stdout
  check  validate JSON files, reporting the first error of each
  diff   compare two JSON files after canonicalization
`)
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	logger = level.NewFilter(logger, level.AllowInfo())
	if os.Getenv("ARENAJSON_DEBUG") != "" {
		logger = log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	}

	switch args[0] {
	case "fmt":
		return runFmt(logger, args[1:])
	case "check":
		return runCheck(logger, args[1:])
	case "diff":
		return runDiff(logger, args[1:])
	default:
		usage()
		return 2
	}
}

func stdoutIsTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

func parseFile(logger log.Logger, path string, flags int) (*arenaJSON.Document[uint8], error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	doc := arenaJSON.New[uint8]()
	if err := doc.Parse(data, flags); err != nil {
		return nil, err
	}
	level.Debug(logger).Log("msg", "parsed", "file", path, "bytes", len(data))
	return doc, nil
}

func encodingByName(name string) (arenaJSON.Encoding, bool) {
	switch name {
	case "utf8":
		return arenaJSON.EncodingUTF8, true
	case "utf16":
		return arenaJSON.EncodingUTF16, true
	case "utf16swap":
		return arenaJSON.EncodingUTF16Swap, true
	case "utf32":
		return arenaJSON.EncodingUTF32, true
	case "utf32swap":
		return arenaJSON.EncodingUTF32Swap, true
	}
	return arenaJSON.EncodingUnknown, false
}

func runFmt(logger log.Logger, args []string) int {
	fs := flag.NewFlagSet("fmt", flag.ExitOnError)
	compact := fs.Bool("compact", false, "print without whitespace")
	spaces := fs.Bool("spaces", false, "indent with spaces instead of tabs")
	indent := fs.Int("indent", 4, "spaces per indent level (1, 2, 4 or 8)")
	outEnc := fs.String("encoding", "utf8", "output encoding: utf8, utf16, utf16swap, utf32, utf32swap")
	trailing := fs.Bool("trailing-commas", false, "accept trailing commas")
	comments := fs.Bool("comments", false, "accept // /* */ and # comments")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "fmt: expected exactly one file")
		return 2
	}
	enc, ok := encodingByName(*outEnc)
	if !ok {
		fmt.Fprintf(os.Stderr, "fmt: unknown encoding %q\n", *outEnc)
		return 2
	}

	parseFlags := arenaJSON.ParseDefault
	if *trailing {
		parseFlags |= arenaJSON.TrailingCommas
	}
	if *comments {
		parseFlags |= arenaJSON.Comments
	}

	doc, err := parseFile(logger, fs.Arg(0), parseFlags)
	if err != nil {
		level.Error(logger).Log("msg", "parse failed", "file", fs.Arg(0), "err", err)
		return 1
	}

	printFlags := arenaJSON.PrintFlags(0)
	if *compact {
		printFlags |= arenaJSON.NoWhitespace
	}
	if *spaces {
		printFlags |= arenaJSON.UseSpaces | arenaJSON.PrintFlags(*indent)
	}

	sink := &arenaJSON.TranscodingSink[uint8]{Encoding: enc}
	doc.Print(sink, printFlags)
	os.Stdout.Write(sink.Bytes)
	if enc == arenaJSON.EncodingUTF8 {
		fmt.Println()
	}
	return 0
}

func runCheck(logger log.Logger, args []string) int {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	trailing := fs.Bool("trailing-commas", false, "accept trailing commas")
	comments := fs.Bool("comments", false, "accept // /* */ and # comments")
	fs.Parse(args)

	if fs.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "check: expected at least one file")
		return 2
	}

	parseFlags := arenaJSON.ParseDefault
	if *trailing {
		parseFlags |= arenaJSON.TrailingCommas
	}
	if *comments {
		parseFlags |= arenaJSON.Comments
	}

	status := 0
	for _, path := range fs.Args() {
		if _, err := parseFile(logger, path, parseFlags); err != nil {
			reportError(path, err)
			status = 1
			continue
		}
		fmt.Printf("%s: ok\n", path)
	}
	return status
}

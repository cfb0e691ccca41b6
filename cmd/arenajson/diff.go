package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/sergi/go-diff/diffmatchpatch"

	arenaJSON "github.com/arenajson/arena-json"
)

// reportError prints a parse failure with its byte offset, red when stdout
// is a terminal.
func reportError(path string, err error) {
	var perr *arenaJSON.ParseError
	if errors.As(err, &perr) {
		fmt.Printf("%s: %s\n", path, color.RedString("%s", perr.Error()))
		return
	}
	fmt.Printf("%s: %s\n", path, color.RedString("%s", err.Error()))
}

// runDiff canonicalizes both inputs to compact form and shows a
// character-level diff. Equal documents exit zero.
func runDiff(logger log.Logger, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "diff: expected exactly two files")
		return 2
	}

	color.NoColor = color.NoColor || !stdoutIsTTY()

	canon := make([]string, 2)
	for i, path := range args {
		doc, err := parseFile(logger, path, arenaJSON.ParseDefault)
		if err != nil {
			reportError(path, err)
			return 2
		}
		canon[i] = doc.Root().EncodeToString(arenaJSON.NoWhitespace)
	}

	if canon[0] == canon[1] {
		level.Debug(logger).Log("msg", "documents are equal", "a", args[0], "b", args[1])
		return 0
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(canon[0], canon[1], false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			fmt.Print(color.RedString("-%s", d.Text))
		case diffmatchpatch.DiffInsert:
			fmt.Print(color.GreenString("+%s", d.Text))
		default:
			fmt.Print(d.Text)
		}
	}
	fmt.Println()
	return 1
}

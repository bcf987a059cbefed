package commands

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/syssam/strata/compiler/gen"
)

func statusLabel(written bool) string {
	if written {
		return color.New(color.FgGreen).Sprint("WRITE")
	}
	return color.New(color.FgBlue).Sprint("SKIP ")
}

// printResult prints the artifacts of a run relative to dir.
func printResult(w io.Writer, title, dir string, res *gen.Result) {
	fmt.Fprintf(w, "%s %s\n", color.New(color.Bold).Sprint(title), dir)
	for _, p := range res.Artifacts {
		fmt.Fprintf(w, "  %s %s\n", statusLabel(true), filepath.ToSlash(p))
	}
	for _, p := range res.Skipped {
		fmt.Fprintf(w, "  %s %s\n", statusLabel(false), filepath.ToSlash(p))
	}
	fmt.Fprintf(w, "%d written, %d unchanged\n", len(res.Artifacts), len(res.Skipped))
}

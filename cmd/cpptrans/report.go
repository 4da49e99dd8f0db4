package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/funvibe/cpptrans/internal/pipeline"
	"github.com/mattn/go-isatty"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
)

// useColor reports whether w is a terminal that accepts ANSI escapes.
func useColor(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func printReport(w io.Writer, ctx *pipeline.PipelineContext) {
	color := useColor(w)
	paint := func(c, s string) string {
		if !color {
			return s
		}
		return c + s + colorReset
	}

	failed := 0
	for _, r := range ctx.Reports {
		status := r.Status.String()
		switch r.Status {
		case pipeline.StatusFailed:
			failed++
			status = paint(colorRed, status)
		case pipeline.StatusWritten:
			status = paint(colorGreen, status)
		}
		line := fmt.Sprintf("%-20s %s", r.Class, status)
		if r.Err != nil {
			line += "  " + r.Err.Error()
		} else if len(r.Artifacts) > 0 {
			line += "  " + strings.Join(r.Artifacts, " ")
		}
		fmt.Fprintln(w, line)
		for _, warn := range r.Warnings {
			fmt.Fprintln(w, "  "+paint(colorYellow, warn.Error()))
		}
	}
	for _, err := range ctx.Errors {
		if err.Class == "" {
			fmt.Fprintln(w, paint(colorRed, err.Error()))
		}
	}

	summary := fmt.Sprintf("%d classes, %d failed in %s", len(ctx.Reports), failed,
		time.Since(ctx.Started).Round(time.Millisecond))
	if ctx.HasErrors() {
		summary = paint(colorRed, summary)
	}
	fmt.Fprintln(w, summary)
}

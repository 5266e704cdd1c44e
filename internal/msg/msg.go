// Package msg is benv's console output: tagged messages, indented
// subprocess output and a transfer progress bar.
package msg

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func init() {
	// piped output gets no escape codes
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

func emit(tag, format string, a ...any) {
	fmt.Printf("%s: %s\n", tag, fmt.Sprintf(format, a...))
}

func Error(format string, a ...any) {
	emit(color.HiRedString("error"), format, a...)
}

func Warn(format string, a ...any) {
	emit(color.YellowString("warn"), format, a...)
}

func Info(format string, a ...any) {
	emit(color.HiGreenString("info"), format, a...)
}

func Fatal(format string, a ...any) {
	emit(color.RedString("fatal"), format, a...)
	os.Exit(1)
}

// IndentWriter prefixes every line written through it with Indent.
type IndentWriter struct {
	Indent  string
	W       io.Writer
	midline bool
}

func (w *IndentWriter) Write(p []byte) (int, error) {
	rest := p
	for len(rest) > 0 {
		if !w.midline {
			io.WriteString(w.W, w.Indent)
			w.midline = true
		}

		i := bytes.IndexAny(rest, "\r\n")
		if i < 0 {
			w.W.Write(rest)
			break
		}
		w.W.Write(rest[:i+1])
		w.midline = false
		rest = rest[i+1:]
	}
	return len(p), nil
}

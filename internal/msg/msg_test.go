package msg

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndentWriterPrefixesLines(t *testing.T) {
	var buf bytes.Buffer
	w := &IndentWriter{Indent: "  ", W: &buf}

	io.WriteString(w, "a\nb")
	io.WriteString(w, "c\n")

	assert.Equal(t, "  a\n  bc\n", buf.String())
}

func TestProgressRendersFullBar(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(10, &buf)

	io.WriteString(p, "0123456789")
	p.Done()

	assert.Contains(t, buf.String(), "100%")
	assert.Contains(t, buf.String(), strings.Repeat("=", 30))
}

func TestProgressUnknownTotalCountsBytes(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(0, &buf)

	io.WriteString(p, strings.Repeat("x", 2048))
	p.Done()

	assert.Contains(t, buf.String(), "2 KB")
}

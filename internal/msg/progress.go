package msg

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Progress renders a single-line transfer bar. It implements io.Writer
// so it can sit behind an io.TeeReader and count bytes as they pass.
type Progress struct {
	total   int64
	done    int64
	out     io.Writer
	updated time.Time
	spin    int
}

const (
	progressWidth    = 30
	progressInterval = 50 * time.Millisecond
)

const spinnerFrames = `-\|/`

func NewProgress(total int64, out io.Writer) *Progress {
	return &Progress{total: total, out: out, updated: time.Now()}
}

func (p *Progress) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if time.Since(p.updated) >= progressInterval {
		p.render(false)
		p.updated = time.Now()
	}
	return len(b), nil
}

func (p *Progress) render(final bool) {
	frame := spinnerFrames[p.spin%len(spinnerFrames)]
	p.spin++
	if final {
		frame = ' '
	}

	// without a known total, just count bytes
	if p.total <= 0 {
		fmt.Fprintf(p.out, "\r    %d KB %c", p.done/1024, frame)
		return
	}

	ratio := float64(p.done) / float64(p.total)
	if final || ratio > 1 {
		ratio = 1
	}

	fill := int(ratio * progressWidth)
	bar := strings.Repeat("=", fill)
	if fill < progressWidth {
		bar += ">" + strings.Repeat(" ", progressWidth-fill-1)
	}
	fmt.Fprintf(p.out, "\r    [%s] %3.0f%% %c", bar, ratio*100, frame)
}

// Done draws the completed bar and terminates its line.
func (p *Progress) Done() {
	p.render(true)
	fmt.Fprintln(p.out)
}

package toolchain

import (
	"fmt"
	"io"
	"strings"
)

const progressBarWidth = 30

// ProgressWriter wraps an io.Writer to display download progress while the
// installer artifact streams into the cache.
type ProgressWriter struct {
	dst          io.Writer
	statusWriter io.Writer
	total        int64
	written      int64
}

// NewProgressWriter creates a new progress writer. dst receives the data,
// statusWriter the progress line. With an unknown total (<= 0) only the
// downloaded size is shown.
func NewProgressWriter(dst io.Writer, statusWriter io.Writer, total int64) *ProgressWriter {
	return &ProgressWriter{
		dst:          dst,
		statusWriter: statusWriter,
		total:        total,
	}
}

func (p *ProgressWriter) Write(b []byte) (int, error) {
	n, err := p.dst.Write(b)
	p.written += int64(n)
	p.printProgress()

	return n, err
}

// Finish terminates the progress line.
func (p *ProgressWriter) Finish() {
	fmt.Fprintln(p.statusWriter)
}

func (p *ProgressWriter) printProgress() {
	if p.total <= 0 {
		fmt.Fprintf(p.statusWriter, "\r  %s downloaded", formatSize(p.written))
		return
	}

	pct := float64(p.written) / float64(p.total) * 100
	filled := int(pct / 100 * progressBarWidth)
	if filled > progressBarWidth {
		filled = progressBarWidth
	}
	bar := strings.Repeat("#", filled) + strings.Repeat("-", progressBarWidth-filled)
	fmt.Fprintf(p.statusWriter, "\r  [%s] %3.0f%% %s / %s", bar, pct, formatSize(p.written), formatSize(p.total))
}

func formatSize(bytes int64) string {
	switch {
	case bytes >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(bytes)/float64(1<<30))
	case bytes >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(bytes)/float64(1<<20))
	case bytes >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(bytes)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

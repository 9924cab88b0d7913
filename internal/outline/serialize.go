package outline

import (
	"strings"
	"time"
)

// Bytes renders the document back to outline text.
//
// Frontmatter bytes are emitted exactly as parsed. Heading bodies are
// verbatim; the one normalization is that scheduled:: and created::
// stamps always appear directly under their heading line.
func (d *Document) Bytes() []byte {
	var b strings.Builder

	if d.rawFrontmatter != nil {
		b.WriteString("---\n")
		b.Write(d.rawFrontmatter)
		if !strings.HasSuffix(string(d.rawFrontmatter), "\n") {
			b.WriteByte('\n')
		}
		b.WriteString("---\n")
	}

	for _, line := range d.preamble {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for _, h := range d.Headings {
		writeHeading(&b, h)
	}

	return []byte(b.String())
}

func writeHeading(b *strings.Builder, h *Heading) {
	b.WriteString(strings.Repeat("#", h.Level))
	b.WriteByte(' ')
	if h.Keyword != "" {
		b.WriteString(h.Keyword)
		b.WriteByte(' ')
	}
	b.WriteString(h.Text)
	b.WriteByte('\n')

	if h.Scheduled != nil {
		b.WriteString("scheduled:: ")
		b.WriteString(h.Scheduled.String())
		b.WriteByte('\n')
	}
	if !h.CreatedAt.IsZero() {
		b.WriteString("created:: ")
		b.WriteString(h.CreatedAt.UTC().Format(time.RFC3339))
		b.WriteByte('\n')
	}

	for _, line := range h.Body {
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for _, c := range h.Children {
		writeHeading(b, c)
	}
}

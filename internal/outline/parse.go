package outline

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	headingRe = regexp.MustCompile(`^(#+)\s+(.*?)\s*$`)
	tagRe     = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)
	schedRe   = regexp.MustCompile(`^scheduled::\s*(\d{4}-\d{2}-\d{2})(?: (\d{2}:\d{2}(?::\d{2})?))?(?: \+(\d+)y)?\s*$`)
	createdRe = regexp.MustCompile(`^created::\s*(\S+)\s*$`)
	propRe    = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9_-]*)::\s*(.*)$`)
)

// Parse builds a Document from raw outline text.
//
// Unrecognized lines are preserved verbatim in heading bodies (or the
// document preamble before the first heading). A scheduled:: or
// created:: line that fails to parse is kept as plain body text rather
// than rejected, so a damaged stamp never blocks reading the document.
func Parse(data []byte) (*Document, error) {
	fm, raw, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	doc := &Document{
		Frontmatter:    fm,
		rawFrontmatter: raw,
	}

	var stack []*Heading
	inFence := false

	for _, line := range splitLines(body) {
		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}

		if m := headingRe.FindStringSubmatch(line); m != nil && !inFence {
			h := &Heading{Level: len(m[1])}
			h.Keyword, h.Text = splitKeyword(m[2])

			for len(stack) > 0 && stack[len(stack)-1].Level >= h.Level {
				stack = stack[:len(stack)-1]
			}
			if len(stack) == 0 {
				doc.Headings = append(doc.Headings, h)
			} else {
				parent := stack[len(stack)-1]
				parent.Children = append(parent.Children, h)
			}
			stack = append(stack, h)
			continue
		}

		if len(stack) == 0 {
			doc.preamble = append(doc.preamble, line)
			continue
		}

		h := stack[len(stack)-1]
		if !inFence {
			if s := parseScheduled(line); s != nil && h.Scheduled == nil {
				h.Scheduled = s
				continue
			}
			if t, ok := parseCreated(line); ok && h.CreatedAt.IsZero() {
				h.CreatedAt = t
				continue
			}
			if m := propRe.FindStringSubmatch(line); m != nil {
				if h.Properties == nil {
					h.Properties = make(map[string]string)
				}
				h.Properties[m[1]] = m[2]
				// Property lines stay in the body so their order and
				// placement survive a round trip.
			}
		}
		h.Body = append(h.Body, line)
	}

	return doc, nil
}

// splitFrontmatter separates the YAML property block (between leading
// --- delimiters) from the outline body. Invalid YAML falls back to
// treating the whole input as body.
func splitFrontmatter(data []byte) (map[string]any, []byte, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, nil, string(data), nil
	}

	yamlBlock := rest[:idx]
	afterDelim := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(afterDelim), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(yamlBlock, &fm); err != nil {
		return nil, nil, string(data), nil
	}

	return fm, bytes.TrimLeft(yamlBlock, "\n\r"), body, nil
}

func splitKeyword(text string) (keyword, rest string) {
	for _, kw := range [...]string{"TODO", "DONE"} {
		if strings.HasPrefix(text, kw+" ") {
			return kw, strings.TrimSpace(text[len(kw)+1:])
		}
	}
	return "", text
}

func parseScheduled(line string) *Schedule {
	m := schedRe.FindStringSubmatch(line)
	if m == nil {
		return nil
	}
	layout, value := "2006-01-02", m[1]
	if m[2] != "" {
		value += " " + m[2]
		if len(m[2]) == 5 {
			layout = "2006-01-02 15:04"
		} else {
			layout = "2006-01-02 15:04:05"
		}
	}
	at, err := time.Parse(layout, value)
	if err != nil {
		return nil
	}
	s := &Schedule{At: at}
	if m[3] != "" {
		n, err := strconv.Atoi(m[3])
		if err != nil {
			return nil
		}
		s.RepeatYears = n
	}
	return s
}

func parseCreated(line string) (time.Time, bool) {
	m := createdRe.FindStringSubmatch(line)
	if m == nil {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, m[1])
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// splitLines splits on \n and drops a single trailing empty element so
// "a\nb\n" round-trips to "a\nb\n", not "a\nb\n\n".
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.Split(s, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

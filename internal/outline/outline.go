// Package outline models contact documents as heading trees.
//
// A document is Markdown-flavoured outline text: optional YAML
// frontmatter (the document property block), then `#`-prefixed headings
// forming a tree by level. A heading may carry metadata lines in its
// body using the `key:: value` inline-field form; `scheduled::` and
// `created::` are lifted into dedicated fields, everything else is kept
// verbatim.
package outline

import (
	"fmt"
	"time"
)

// Schedule is a calendar date attached to a heading, optionally
// repeating every RepeatYears years (0 = one-off).
type Schedule struct {
	At          time.Time
	RepeatYears int
}

// String renders the schedule in the inline-field value form, e.g.
// "2026-03-08 +1y" or "2026-03-08 09:30".
func (s *Schedule) String() string {
	h, m, sec := s.At.Clock()
	var v string
	switch {
	case sec != 0:
		v = s.At.Format("2006-01-02 15:04:05")
	case h != 0 || m != 0:
		v = s.At.Format("2006-01-02 15:04")
	default:
		v = s.At.Format("2006-01-02")
	}
	if s.RepeatYears > 0 {
		v = fmt.Sprintf("%s +%dy", v, s.RepeatYears)
	}
	return v
}

// Heading is one outline node.
//
// Text is the identity of the heading: it excludes the level markers and
// any TODO/DONE keyword. Body holds the heading's non-metadata lines
// verbatim; Properties is a parsed read-only view of the `key:: value`
// lines that remain inside Body.
type Heading struct {
	Level      int
	Keyword    string // "" | "TODO" | "DONE"
	Text       string
	Scheduled  *Schedule
	CreatedAt  time.Time // zero when absent
	Properties map[string]string
	Body       []string
	Children   []*Heading
}

// Document is one parsed contact document.
//
// Frontmatter is the document property block. It is read-only from this
// package's point of view: mutations are heading-level, and the
// serializer re-emits the original frontmatter bytes untouched.
type Document struct {
	Path        string
	Frontmatter map[string]any
	Headings    []*Heading

	rawFrontmatter []byte
	preamble       []string
}

// Title returns the document's title keyword, or "" when unset.
func (d *Document) Title() string {
	if d.Frontmatter == nil {
		return ""
	}
	if t, ok := d.Frontmatter["title"].(string); ok {
		return t
	}
	return ""
}

// Tags returns the document's tag set: the frontmatter "tags" list plus
// inline #tags found in heading bodies, deduplicated in first-seen order.
func (d *Document) Tags() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(t string) {
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	if d.Frontmatter != nil {
		if raw, ok := d.Frontmatter["tags"]; ok {
			if list, ok := raw.([]interface{}); ok {
				for _, item := range list {
					if s, ok := item.(string); ok {
						add(s)
					}
				}
			}
		}
	}

	var walk func(hs []*Heading)
	walk = func(hs []*Heading) {
		for _, h := range hs {
			for _, line := range h.Body {
				for _, m := range tagRe.FindAllStringSubmatch(line, -1) {
					add(m[1])
				}
			}
			walk(h.Children)
		}
	}
	for _, line := range d.preamble {
		for _, m := range tagRe.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}
	walk(d.Headings)

	return out
}

// HasTag reports whether tag is in the document's tag set.
func (d *Document) HasTag(tag string) bool {
	for _, t := range d.Tags() {
		if t == tag {
			return true
		}
	}
	return false
}

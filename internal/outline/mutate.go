package outline

import "time"

// Mutation operations. Lookups return explicit *Heading handles and
// inserts take the document; there is no hidden cursor state to save or
// restore, and a failed lookup leaves the document untouched.

// TopLevelHeadings returns the ordered texts of all level-1 headings.
func (d *Document) TopLevelHeadings() []string {
	out := make([]string, 0, len(d.Headings))
	for _, h := range d.Headings {
		out = append(out, h.Text)
	}
	return out
}

// FindTopLevel returns the first level-1 heading whose text equals text
// exactly, or nil.
func (d *Document) FindTopLevel(text string) *Heading {
	for _, h := range d.Headings {
		if h.Text == text {
			return h
		}
	}
	return nil
}

// FindHeading returns the first heading anywhere in the document whose
// text equals text exactly, or nil. The TODO/DONE keyword is not part
// of the matched text.
func (d *Document) FindHeading(text string) *Heading {
	var find func(hs []*Heading) *Heading
	find = func(hs []*Heading) *Heading {
		for _, h := range hs {
			if h.Text == text {
				return h
			}
			if found := find(h.Children); found != nil {
				return found
			}
		}
		return nil
	}
	return find(d.Headings)
}

// EnsureTopLevel returns the level-1 heading with the given text,
// appending one at the end of the document when absent. The second
// return value reports whether a heading was created. Repeated calls
// with the same text never create duplicates.
func (d *Document) EnsureTopLevel(text string) (*Heading, bool) {
	if h := d.FindTopLevel(text); h != nil {
		return h, false
	}
	h := &Heading{Level: 1, Text: text}
	d.Headings = append(d.Headings, h)
	return h, true
}

// InsertReminder appends a TODO sub-heading under the named top-level
// heading (creating the parent when absent), scheduled at the given
// time with an every-repeatYears repeater (0 = one-off) and stamped
// with createdAt.
//
// This operation is deliberately not idempotent: calling it twice with
// the same text yields two sub-headings. Callers that need
// create-if-absent semantics must gate on FindHeading first.
func (d *Document) InsertReminder(parentText, text string, at time.Time, repeatYears int, createdAt time.Time) *Heading {
	parent, _ := d.EnsureTopLevel(parentText)
	child := &Heading{
		Level:     parent.Level + 1,
		Keyword:   "TODO",
		Text:      text,
		Scheduled: &Schedule{At: at, RepeatYears: repeatYears},
		CreatedAt: createdAt,
	}
	parent.Children = append(parent.Children, child)
	return child
}

// Package contacts provides the read-only contact view over an outline
// document: property access, birthday parsing, and the contact-tag gate.
package contacts

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/halvard/gebo/internal/apperr"
	"github.com/halvard/gebo/internal/models"
	"github.com/halvard/gebo/internal/outline"
)

// Keys names the managed contact property keys in the document
// property block.
type Keys struct {
	Birthday  string `yaml:"birthday"`
	Emails    string `yaml:"emails"`
	Addresses string `yaml:"addresses"`
	Phones    string `yaml:"phones"`
}

// DefaultKeys returns the standard property key names.
func DefaultKeys() Keys {
	return Keys{
		Birthday:  "CONTACT_BIRTHDAY",
		Emails:    "CONTACT_EMAILS",
		Addresses: "CONTACT_ADDRESSES",
		Phones:    "CONTACT_PHONES",
	}
}

// List returns the managed key names in a stable order.
func (k Keys) List() []string {
	return []string{k.Birthday, k.Emails, k.Addresses, k.Phones}
}

// birthdayLayouts are the accepted date forms for the birthday
// property. The year-less form parses with year 0, which acts as the
// placeholder year: it is before any real reference time, so the
// projection to the next occurrence behaves exactly like a full date.
var birthdayLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01-02",
}

// Property returns the frontmatter value for key rendered as a string.
// ok is false when the key is not declared at all.
func Property(doc *outline.Document, key string) (value string, ok bool) {
	if doc.Frontmatter == nil {
		return "", false
	}
	raw, ok := doc.Frontmatter[key]
	if !ok {
		return "", false
	}
	switch v := raw.(type) {
	case nil:
		return "", true
	case string:
		return v, true
	case []interface{}:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, fmt.Sprint(item))
		}
		return strings.Join(parts, " "), true
	default:
		return fmt.Sprint(v), true
	}
}

// HasProperty reports whether key is declared in the document property
// block. A declared-but-empty key still counts.
func HasProperty(doc *outline.Document, key string) bool {
	if doc.Frontmatter == nil {
		return false
	}
	_, ok := doc.Frontmatter[key]
	return ok
}

// Name returns the document's title keyword. ok is false when the
// document has no title.
func Name(doc *outline.Document) (string, bool) {
	t := doc.Title()
	return t, t != ""
}

// ParseDate parses a birthday-style date value. Malformed values fail
// with an error wrapping apperr.ErrBadPropertyValue.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range birthdayLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q: %w", raw, apperr.ErrBadPropertyValue)
}

// Birthday parses the birthday property of the document. The caller is
// expected to check HasProperty first; a present but malformed value
// fails with an error carrying the document and property identity.
func Birthday(doc *outline.Document, key string) (time.Time, error) {
	raw, ok := Property(doc, key)
	if !ok {
		return time.Time{}, fmt.Errorf("%s: %s: %w", doc.Path, key, apperr.ErrNotFound)
	}
	t, err := ParseDate(raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s: %s=%w", doc.Path, key, err)
	}
	return t, nil
}

// IsContactDocument reports whether the document belongs to the contact
// corpus: it must carry the designated contact tag. Directory
// membership is enforced upstream by the storage provider, which only
// resolves paths inside the managed root.
func IsContactDocument(doc *outline.Document, tag string) bool {
	return doc.HasTag(tag)
}

var pairRe = regexp.MustCompile(`\(([^\s()]+)\s+([^()]+)\)`)

// ParsePairs extracts (label value) literals from a property value.
// Anything outside parentheses is ignored.
func ParsePairs(raw string) []models.LabeledValue {
	matches := pairRe.FindAllStringSubmatch(raw, -1)
	out := make([]models.LabeledValue, 0, len(matches))
	for _, m := range matches {
		out = append(out, models.LabeledValue{
			Label: m[1],
			Value: strings.TrimSpace(m[2]),
		})
	}
	return out
}

// Pairs returns the labeled values of a list property, or nil when the
// key is absent.
func Pairs(doc *outline.Document, key string) []models.LabeledValue {
	raw, ok := Property(doc, key)
	if !ok {
		return nil
	}
	return ParsePairs(raw)
}

// FromDocument builds the full contact view.
//
// Returns apperr.ErrNotContact when the tag gate fails and
// apperr.ErrMissingName when the document has no title; birthday parse
// failures propagate wrapped with the document identity.
func FromDocument(doc *outline.Document, tag string, keys Keys) (*models.Contact, error) {
	if !IsContactDocument(doc, tag) {
		return nil, fmt.Errorf("%s: %w", doc.Path, apperr.ErrNotContact)
	}
	name, ok := Name(doc)
	if !ok {
		return nil, fmt.Errorf("%s: %w", doc.Path, apperr.ErrMissingName)
	}

	c := &models.Contact{
		Path:      doc.Path,
		Name:      name,
		Emails:    Pairs(doc, keys.Emails),
		Addresses: Pairs(doc, keys.Addresses),
		Phones:    Pairs(doc, keys.Phones),
		Tags:      doc.Tags(),
	}
	if HasProperty(doc, keys.Birthday) {
		bd, err := Birthday(doc, keys.Birthday)
		if err != nil {
			return nil, err
		}
		c.Birthday = bd
		c.HasBirthday = true
	}
	return c, nil
}

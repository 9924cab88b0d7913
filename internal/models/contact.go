// Package models defines the domain types for Gebo.
package models

import "time"

// DocumentMetadata is a lightweight representation returned by vault
// list operations.
type DocumentMetadata struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}

// LabeledValue is one (label, value) pair from a contact property list,
// e.g. (work jane@corp.example).
type LabeledValue struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Contact is the contact view derived from one document.
type Contact struct {
	Path        string         `json:"path"`
	Name        string         `json:"name"`
	Birthday    time.Time      `json:"birthday,omitzero"`
	HasBirthday bool           `json:"has_birthday"`
	Emails      []LabeledValue `json:"emails,omitempty"`
	Addresses   []LabeledValue `json:"addresses,omitempty"`
	Phones      []LabeledValue `json:"phones,omitempty"`
	Tags        []string       `json:"tags,omitempty"`
}

// Reminder describes one scheduled reminder heading created (or found)
// in a document.
type Reminder struct {
	Heading     string    `json:"heading"`
	At          time.Time `json:"at"`
	RepeatYears int       `json:"repeat_years"`
	CreatedAt   time.Time `json:"created_at"`
}

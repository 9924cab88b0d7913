package mcpserver

// ContactFormatContract describes the canonical contact document format
// that LLM consumers should follow when creating or editing contacts.
const ContactFormatContract = `# Gebo Contact Document Format Contract

Every contact document stored in Gebo MUST follow this structure.

## Structure

` + "```" + `markdown
---
title: Jane Doe                     # REQUIRED – the contact's display name
tags:                               # REQUIRED – must include the contact tag
  - person
CONTACT_BIRTHDAY: "1985-03-15"      # OPTIONAL – see date forms below
CONTACT_EMAILS: (work jane@corp.example) (home jane@home.example)
CONTACT_ADDRESSES: (home "12 Oak Lane, Springfield")
CONTACT_PHONES: (mobile +1-555-0100)
---

# Notes

Free-form Markdown body. Headings build an outline tree.

# Reminders
## TODO Jane Doe's birthday in 7 days
scheduled:: 2026-03-08 +1y
created:: 2025-08-23T12:00:00Z
` + "```" + `

## Rules

1. **YAML frontmatter is mandatory.** The ` + "```" + `---` + "```" + ` fences must be the first
   thing in the file (no leading blank lines).
2. **` + "`" + `title` + "`" + ` field is required.** It is the contact's name and the identity
   used in reminder headings.
3. **The contact tag** (` + "`" + `person` + "`" + ` by default) marks a document as a contact.
   Documents without it are ignored by the scheduler.
4. **Birthday forms:** ` + "`" + `YYYY-MM-DD` + "`" + `, ` + "`" + `YYYY-MM-DD HH:MM` + "`" + `,
   ` + "`" + `YYYY-MM-DD HH:MM:SS` + "`" + `, or the year-less ` + "`" + `MM-DD` + "`" + `. Quote the value so
   YAML keeps it a string.
5. **Labeled values** use ` + "`" + `(label value)` + "`" + ` literals, space-separated. Anything
   outside parentheses is ignored.
6. **Reminders** live as sub-headings under the ` + "`" + `# Reminders` + "`" + ` heading with a
   ` + "`" + `TODO` + "`" + ` keyword, a ` + "`" + `scheduled::` + "`" + ` stamp (date plus optional ` + "`" + `+Ny` + "`" + ` yearly
   repeater), and a ` + "`" + `created::` + "`" + ` RFC 3339 stamp. Reminder identity is the
   heading text: do not rename a reminder heading you want preserved.
7. **File paths** end with ` + "`" + `.md` + "`" + ` and use forward slashes.
8. **Encoding** is UTF-8 with a trailing newline.
`

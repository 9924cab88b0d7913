package index

import (
	"log/slog"
	"time"

	"github.com/halvard/gebo/internal/checksum"
	"github.com/halvard/gebo/internal/contacts"
	"github.com/halvard/gebo/internal/outline"
	"github.com/halvard/gebo/internal/storage"
)

// Sync walks the contacts directory and brings the index up to date:
//   - new/changed documents are parsed and upserted
//   - documents removed from disk are deleted from the index
func Sync(db *DB, store storage.Provider, birthdayKey string, logger *slog.Logger) error {
	metas, err := store.List("")
	if err != nil {
		return err
	}

	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	disk := make(map[string]struct{}, len(metas))
	for _, m := range metas {
		disk[m.Path] = struct{}{}

		if checksums[m.Path] == m.Checksum {
			continue
		}

		data, err := store.Read(m.Path)
		if err != nil {
			logger.Warn("sync: read failed", slog.String("path", m.Path), slog.String("error", err.Error()))
			continue
		}
		if err := indexFile(db, m.Path, data, birthdayKey); err != nil {
			logger.Warn("sync: index failed", slog.String("path", m.Path), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("path", m.Path))
		}
	}

	// Remove stale entries.
	for p := range checksums {
		if _, ok := disk[p]; !ok {
			if err := db.DeleteDocument(p); err != nil {
				logger.Warn("sync: delete failed", slog.String("path", p), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("path", p))
			}
		}
	}

	return nil
}

// indexFile parses a document and upserts it into the DB.
func indexFile(db *DB, path string, data []byte, birthdayKey string) error {
	doc, err := outline.Parse(data)
	if err != nil {
		return err
	}
	doc.Path = path

	birthday, _ := contacts.Property(doc, birthdayKey)

	props := make(map[string]string, len(doc.Frontmatter))
	for key := range doc.Frontmatter {
		// title and tags have their own columns.
		if key == "title" || key == "tags" {
			continue
		}
		if v, ok := contacts.Property(doc, key); ok {
			props[key] = v
		}
	}

	row := DocRow{
		Path:      path,
		Title:     doc.Title(),
		Checksum:  checksum.Sum(data),
		Tags:      doc.Tags(),
		Birthday:  birthday,
		UpdatedAt: time.Now(),
	}
	return db.UpsertDocument(row, props)
}

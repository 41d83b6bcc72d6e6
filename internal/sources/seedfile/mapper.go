package seedfile

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/smartbookmark/bookmarkd/internal/domain"
)

// Mapper converts seed config to domain bookmarks.
type Mapper struct{}

// NewMapper creates a seed mapper.
func NewMapper() *Mapper {
	return &Mapper{}
}

// Map validates each entry and produces domain bookmarks. Entries with
// an invalid URL or an empty owner are skipped rather than failing the
// whole import; skipped counts are reported alongside the result.
func (m *Mapper) Map(config SeedConfig) (bookmarks []*domain.Bookmark, skipped int, err error) {
	now := time.Now().UTC()

	for _, block := range config.Owners {
		if block.Owner == "" {
			skipped += len(block.Bookmarks)
			continue
		}
		for _, entry := range block.Bookmarks {
			url, title, verr := domain.NewBookmarkInput(entry.URL, entry.Title)
			if verr != nil {
				skipped++
				continue
			}

			bookmarks = append(bookmarks, &domain.Bookmark{
				ID:        seedBookmarkID(block.Owner, url),
				OwnerID:   block.Owner,
				URL:       url,
				Title:     title,
				CreatedAt: now,
			})
		}
	}

	if len(bookmarks) == 0 {
		return nil, skipped, fmt.Errorf("no valid bookmarks found in seed config")
	}

	return bookmarks, skipped, nil
}

// seedBookmarkID derives a stable ID from owner and URL so re-importing
// the same file never creates duplicate rows.
func seedBookmarkID(owner, url string) string {
	hash := sha256.Sum256([]byte(owner + "\x00" + url))
	return "seed-" + hex.EncodeToString(hash[:])[:16]
}

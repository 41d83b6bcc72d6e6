package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/smartbookmark/bookmarkd/internal/domain"
	"github.com/smartbookmark/bookmarkd/internal/feed"
	"github.com/smartbookmark/bookmarkd/internal/logger"
	"github.com/smartbookmark/bookmarkd/internal/sources/seedfile"
)

// SeedStore is the slice of the store the importer needs.
type SeedStore interface {
	Save(ctx context.Context, b *domain.Bookmark) error
	Get(ctx context.Context, id string) (*domain.Bookmark, error)
}

// SeedImporter periodically re-imports the seed YAML file into the
// store. Seed IDs are stable, so only rows absent from the store are
// written and announced on the feed.
type SeedImporter struct {
	loader        *seedfile.Loader
	mapper        *seedfile.Mapper
	store         SeedStore
	feed          feed.Feed
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}
}

// NewSeedImporter creates a seed importer.
func NewSeedImporter(
	seedFile string,
	store SeedStore,
	f feed.Feed,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SeedImporter {
	return &SeedImporter{
		loader:        seedfile.NewLoader(seedFile),
		mapper:        seedfile.NewMapper(),
		store:         store,
		feed:          f,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs one import immediately, then keeps importing on the
// interval and on manual triggers.
func (si *SeedImporter) Start(ctx context.Context) error {
	if err := si.Import(ctx); err != nil {
		return fmt.Errorf("initial seed import failed: %w", err)
	}

	ticker := time.NewTicker(si.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := si.Import(ctx); err != nil {
					si.logger.Error("failed to import seed file",
						logger.Error(err))
				}
			case <-si.manualTrigger:
				si.logger.Info("manual seed import triggered")
				if err := si.Import(ctx); err != nil {
					si.logger.Error("failed to import seed file",
						logger.Error(err))
				}
			case <-si.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the importer.
func (si *SeedImporter) Stop() {
	close(si.stopCh)
}

// Import loads the seed file and writes any rows not yet in the store.
func (si *SeedImporter) Import(ctx context.Context) error {
	si.logger.Info("importing bookmarks from seed file")

	config, err := si.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load seed file: %w", err)
	}

	bookmarks, skipped, err := si.mapper.Map(config)
	if err != nil {
		return fmt.Errorf("failed to map seed entries: %w", err)
	}
	if skipped > 0 {
		si.logger.Warn("skipped invalid seed entries",
			logger.Int("skipped", skipped))
	}

	imported := 0
	for _, b := range bookmarks {
		_, err := si.store.Get(ctx, b.ID)
		if err == nil {
			// Already imported on an earlier pass.
			continue
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("failed to check seed row %s: %w", b.ID, err)
		}

		if err := si.store.Save(ctx, b); err != nil {
			return fmt.Errorf("failed to save seed row %s: %w", b.ID, err)
		}
		imported++

		// Live sessions learn about the new row like any other insert.
		if si.feed != nil {
			if err := si.feed.Publish(ctx, domain.InsertChange(b)); err != nil {
				si.logger.Warn("failed to announce seed row",
					logger.String("bookmark_id", b.ID),
					logger.Error(err))
			}
		}
	}

	si.logger.Info("seed import finished",
		logger.Int("total", len(bookmarks)),
		logger.Int("imported", imported))

	return nil
}

package homepage

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/toolshelf/internal/catalog"
	"github.com/MrSnakeDoc/toolshelf/internal/domain"
	"github.com/MrSnakeDoc/toolshelf/internal/logger"
)

// Catalog is the part of *catalog.Catalog the importer needs.
type Catalog interface {
	Snapshot() []*domain.Tool
	Add(ctx context.Context, d domain.Draft) (*catalog.Pending, error)
}

// Result summarizes one import run.
type Result struct {
	Added   int
	Skipped int // URL already in the catalog
	Invalid int // rejected by validation
	Failed  int // rejected by the store
}

// Importer feeds bookmarks into the catalog through the regular add path.
type Importer struct {
	loader *Loader
	mapper *Mapper
	logger logger.Logger
}

func NewImporter(filePath string, log logger.Logger) *Importer {
	return &Importer{
		loader: NewLoader(filePath),
		mapper: NewMapper(),
		logger: log,
	}
}

// Run loads the file, adds every bookmark whose URL is not present yet and
// waits until the store has answered for each of them.
func (im *Importer) Run(ctx context.Context, cat Catalog) (Result, error) {
	config, err := im.loader.Load()
	if err != nil {
		return Result{}, err
	}
	drafts, err := im.mapper.MapDrafts(config)
	if err != nil {
		return Result{}, err
	}
	return Import(ctx, cat, drafts, im.logger)
}

// Import adds drafts to the catalog, skipping URLs it already holds.
func Import(ctx context.Context, cat Catalog, drafts []domain.Draft, log logger.Logger) (Result, error) {
	var res Result

	known := make(map[string]struct{})
	for _, t := range cat.Snapshot() {
		known[t.URL] = struct{}{}
	}

	pending := make([]*catalog.Pending, 0, len(drafts))
	for _, d := range drafts {
		if u, err := domain.NormalizeURL(d.URL); err == nil {
			if _, ok := known[u]; ok {
				res.Skipped++
				continue
			}
			known[u] = struct{}{}
		}

		p, err := cat.Add(ctx, d)
		if err != nil {
			if errors.Is(err, domain.ErrValidation) {
				log.Warn("skipping invalid bookmark",
					logger.String("name", d.Name),
					logger.String("url", d.URL),
					logger.Error(err))
				res.Invalid++
				continue
			}
			return res, err
		}
		pending = append(pending, p)
	}

	for _, p := range pending {
		if _, err := p.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return res, ctx.Err()
			}
			res.Failed++
			continue
		}
		res.Added++
	}

	log.Info("bookmarks imported",
		logger.Int("added", res.Added),
		logger.Int("skipped", res.Skipped),
		logger.Int("invalid", res.Invalid),
		logger.Int("failed", res.Failed))
	return res, nil
}

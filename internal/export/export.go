// Package export renders the static site artifacts for the clue archive:
// a seasons listing, one JSON payload per season, and the landing page that
// browses them client side.
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/JakeFAU/jarchive-crawler/internal/database"
	"github.com/JakeFAU/jarchive-crawler/internal/storage"
)

const (
	dataDirName   = "data"
	seasonsFile   = "seasons.json"
	indexFile     = "index.html"
	dirPermission = 0o750
)

// Season tokens come from our own extraction and are word characters only;
// anything else would let a corrupted row write outside the data directory.
var validSeasonToken = regexp.MustCompile(`^\w+$`)

// Config controls where export artifacts land.
type Config struct {
	// DistDir is the root directory for the rendered site.
	DistDir string
}

// Exporter writes the archive's JSON and HTML artifacts to a dist directory
// and optionally mirrors them to a blob store.
type Exporter struct {
	cfg    Config
	db     database.Provider
	mirror storage.Store
	logger *zap.Logger
}

// New validates the configuration and returns an Exporter. The mirror store
// is optional; pass nil to skip mirroring.
func New(cfg Config, db database.Provider, mirror storage.Store, logger *zap.Logger) (*Exporter, error) {
	if strings.TrimSpace(cfg.DistDir) == "" {
		return nil, fmt.Errorf("export dist dir is required")
	}
	if db == nil {
		return nil, fmt.Errorf("database provider is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{
		cfg:    cfg,
		db:     db,
		mirror: mirror,
		logger: logger,
	}, nil
}

// Export regenerates every artifact from the current database contents. The
// output is a full overwrite: artifacts for seasons no longer present are not
// removed, matching the additive nature of the archive. Writes go through a
// temp file and rename, so a crash never leaves a half-written artifact.
func (e *Exporter) Export(ctx context.Context) error {
	dataDir := filepath.Join(e.cfg.DistDir, dataDirName)
	if err := os.MkdirAll(dataDir, dirPermission); err != nil {
		return fmt.Errorf("create data dir %s: %w", dataDir, err)
	}

	tokens, err := e.db.SeasonNumbers(ctx)
	if err != nil {
		return fmt.Errorf("list seasons for export: %w", err)
	}
	entries := NewSeasonEntries(tokens)

	payload, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal seasons: %w", err)
	}
	if err := e.writeArtifact(ctx, path.Join(dataDirName, seasonsFile), payload); err != nil {
		return err
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("export interrupted: %w", err)
		}
		if !validSeasonToken.MatchString(entry.Season) {
			e.logger.Warn("skipping season with unsafe token", zap.String("season", entry.Season))
			continue
		}
		if err := e.exportSeason(ctx, entry.Season); err != nil {
			return err
		}
	}

	index, err := renderIndex()
	if err != nil {
		return err
	}
	if err := e.writeArtifact(ctx, indexFile, index); err != nil {
		return err
	}

	e.logger.Info("export complete",
		zap.String("dist_dir", e.cfg.DistDir),
		zap.Int("seasons", len(entries)))
	return nil
}

func (e *Exporter) exportSeason(ctx context.Context, season string) error {
	e.logger.Debug("exporting season", zap.String("season", season))

	rows, err := e.db.SeasonEpisodes(ctx, season)
	if err != nil {
		return fmt.Errorf("list episodes for season %s: %w", season, err)
	}
	clues, err := e.db.SeasonClues(ctx, season)
	if err != nil {
		return fmt.Errorf("list clues for season %s: %w", season, err)
	}

	data := SeasonData{
		Episodes: NewEpisodeEntries(rows),
		Clues:    NewClueEntries(clues),
	}
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal season %s: %w", season, err)
	}
	key := path.Join(dataDirName, fmt.Sprintf("season_%s.json", season))
	return e.writeArtifact(ctx, key, payload)
}

// writeArtifact lands data at key relative to the dist dir, then mirrors it.
// Mirroring is best effort: a mirror failure is logged but never fails the
// export, since the local artifacts are already complete.
func (e *Exporter) writeArtifact(ctx context.Context, key string, data []byte) error {
	target := filepath.Join(e.cfg.DistDir, filepath.FromSlash(key))
	if err := writeFileAtomic(target, data); err != nil {
		return fmt.Errorf("write artifact %s: %w", key, err)
	}
	if e.mirror != nil {
		if err := e.mirror.Put(ctx, key, data); err != nil {
			e.logger.Warn("mirror artifact failed", zap.String("key", key), zap.Error(err))
		}
	}
	return nil
}

func writeFileAtomic(target string, data []byte) error {
	dir := filepath.Dir(target)
	tmp, err := os.CreateTemp(dir, filepath.Base(target)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, target); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

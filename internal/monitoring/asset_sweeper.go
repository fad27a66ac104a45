package monitoring

import (
	"database/sql"
	"os"
	"time"

	"github.com/isdelr/tripscribe-be/internal/services"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// AssetSweeper periodically audits the uploads directory for images no
// travel story references anymore. It only reports orphans; whether they
// should be reclaimed automatically is a product decision this service does
// not make.
type AssetSweeper struct {
	db         *sql.DB
	uploadsDir string
	schedule   cron.Schedule
	done       chan bool
}

// NewAssetSweeper creates a sweeper running on the given cron expression.
func NewAssetSweeper(db *sql.DB, uploadsDir, cronExpr string) (*AssetSweeper, error) {
	schedule, err := cron.ParseStandard(cronExpr)
	if err != nil {
		return nil, err
	}
	return &AssetSweeper{
		db:         db,
		uploadsDir: uploadsDir,
		schedule:   schedule,
		done:       make(chan bool),
	}, nil
}

// Run starts the sweeper loop. It blocks until Stop is called.
func (s *AssetSweeper) Run() {
	log.Info().Msg("Starting orphaned asset sweeper...")
	for {
		timer := time.NewTimer(time.Until(s.schedule.Next(time.Now())))
		select {
		case <-s.done:
			timer.Stop()
			log.Info().Msg("Stopping orphaned asset sweeper.")
			return
		case <-timer.C:
			s.sweep()
		}
	}
}

// Stop halts the sweeper.
func (s *AssetSweeper) Stop() {
	s.done <- true
}

// sweep diffs the uploads directory against every referenced image.
func (s *AssetSweeper) sweep() {
	referenced, err := s.referencedNames()
	if err != nil {
		log.Error().Err(err).Msg("Sweeper: failed to query referenced images")
		return
	}

	entries, err := os.ReadDir(s.uploadsDir)
	if err != nil {
		log.Error().Err(err).Str("dir", s.uploadsDir).Msg("Sweeper: failed to read uploads directory")
		return
	}

	var orphans []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !referenced[entry.Name()] {
			orphans = append(orphans, entry.Name())
		}
	}

	log.Info().
		Int("files", len(entries)).
		Int("orphans", len(orphans)).
		Msg("Asset sweep complete")
	if len(orphans) > 0 {
		log.Warn().Strs("orphans", orphans).Msg("Uploads not referenced by any travel story")
	}
}

func (s *AssetSweeper) referencedNames() (map[string]bool, error) {
	rows, err := s.db.Query("SELECT image_url FROM travel_stories")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	referenced := make(map[string]bool)
	for rows.Next() {
		var imageURL string
		if err := rows.Scan(&imageURL); err != nil {
			return nil, err
		}
		if !services.IsPlaceholder(imageURL) {
			referenced[services.AssetNameFromURL(imageURL)] = true
		}
	}
	return referenced, rows.Err()
}

package scheduler

import (
	"fmt"
	"log"
	"strings"

	"marketplace-portal/internal/cleanup"
	"marketplace-portal/internal/config"
	"marketplace-portal/internal/models"
	"marketplace-portal/internal/search"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Scheduler runs the nightly maintenance jobs: a full search reindex and the
// retention cleanup.
type Scheduler struct {
	cron      *cron.Cron
	db        *gorm.DB
	search    *search.SearchClient
	cleanup   *cleanup.Service
	config    *config.Config
	isRunning bool
}

// NewScheduler creates a new scheduler
func NewScheduler(db *gorm.DB, searchClient *search.SearchClient, cfg *config.Config) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		db:      db,
		search:  searchClient,
		cleanup: cleanup.NewService(db),
		config:  cfg,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.Enabled {
		log.Println("Scheduler: Nightly run is disabled in configuration")
		return nil
	}

	cronSpec := s.parseNightlyRunTime(s.config.Scheduler.NightlyRunAt)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("Scheduler: Starting nightly maintenance...")
		if err := s.RunNow(); err != nil {
			log.Printf("Scheduler: Nightly maintenance failed: %v", err)
		} else {
			log.Println("Scheduler: Nightly maintenance completed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("Scheduler: Started with nightly run at %s (cron: %s)", s.config.Scheduler.NightlyRunAt, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("Scheduler: Stopped")
	}
}

// RunNow executes the maintenance jobs immediately
func (s *Scheduler) RunNow() error {
	if err := s.reindexAll(); err != nil {
		return err
	}

	if s.config.Cleanup.Enabled {
		cleanupCfg := cleanup.Config{
			RetentionDays:    s.config.Cleanup.RetentionDays,
			MaxDeletionCount: s.config.Cleanup.MaxDeletionCount,
			DryRun:           false,
		}
		if _, err := s.cleanup.Run(cleanupCfg); err != nil {
			return fmt.Errorf("cleanup failed: %w", err)
		}
	}

	return nil
}

// reindexAll pushes every listing into the search index
func (s *Scheduler) reindexAll() error {
	var listings []models.Listing
	if err := s.db.Find(&listings).Error; err != nil {
		return fmt.Errorf("failed to load listings: %w", err)
	}

	log.Printf("Scheduler: Reindexing %d listings", len(listings))

	if err := s.search.IndexListings(listings); err != nil {
		return fmt.Errorf("reindex failed: %w", err)
	}

	return nil
}

// parseNightlyRunTime converts HH:MM into a cron spec, defaulting to 02:00
func (s *Scheduler) parseNightlyRunTime(runTime string) string {
	parts := strings.Split(runTime, ":")
	if len(parts) != 2 {
		return "0 2 * * *"
	}

	hour := strings.TrimSpace(parts[0])
	minute := strings.TrimSpace(parts[1])
	if hour == "" || minute == "" {
		return "0 2 * * *"
	}

	return fmt.Sprintf("%s %s * * *", minute, hour)
}

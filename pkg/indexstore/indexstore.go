package indexstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethpandaops/reportoor/pkg/config"
	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Store provides persistence for processed workflow reports.
type Store interface {
	Start(ctx context.Context) error
	Stop() error

	UpsertWorkflow(ctx context.Context, workflow *Workflow) error
	GetWorkflow(ctx context.Context, workflowID string) (*Workflow, error)
	ListWorkflows(ctx context.Context) ([]Workflow, error)
}

// Compile-time interface check.
var _ Store = (*store)(nil)

type store struct {
	log logrus.FieldLogger
	cfg *config.DatabaseConfig
	db  *gorm.DB
}

// NewStore creates a new Store backed by the configured database driver.
func NewStore(
	log logrus.FieldLogger,
	cfg *config.DatabaseConfig,
) Store {
	return &store{
		log: log.WithField("component", "indexstore"),
		cfg: cfg,
	}
}

// Start opens the database connection and runs migrations.
func (s *store) Start(ctx context.Context) error {
	var dialector gorm.Dialector

	gormCfg := &gorm.Config{
		Logger: logger.Discard,
	}

	switch s.cfg.Driver {
	case "sqlite":
		dialector = sqlite.Open(s.cfg.SQLite.Path)
	case "postgres":
		dsn := fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			s.cfg.Postgres.Host,
			s.cfg.Postgres.Port,
			s.cfg.Postgres.User,
			s.cfg.Postgres.Password,
			s.cfg.Postgres.Database,
			s.cfg.Postgres.SSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return fmt.Errorf("unsupported database driver: %s", s.cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return fmt.Errorf("opening index database: %w", err)
	}

	s.db = db

	if err := s.db.WithContext(ctx).AutoMigrate(&Workflow{}); err != nil {
		return fmt.Errorf("running index migrations: %w", err)
	}

	s.log.WithField("driver", s.cfg.Driver).
		Info("Index database connected")

	return nil
}

// Stop closes the underlying database connection.
func (s *store) Stop() error {
	if s.db == nil {
		return nil
	}

	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("getting underlying db: %w", err)
	}

	return sqlDB.Close()
}

// UpsertWorkflow inserts or updates a workflow record keyed by its
// workflow ID. Reprocessing an already indexed workflow sets
// ReprocessedAt.
func (s *store) UpsertWorkflow(ctx context.Context, workflow *Workflow) error {
	var existing Workflow

	err := s.db.WithContext(ctx).
		Where("workflow_id = ?", workflow.WorkflowID).
		First(&existing).Error

	switch {
	case err == nil:
		now := time.Now().UTC()
		workflow.ID = existing.ID
		workflow.ProcessedAt = existing.ProcessedAt
		workflow.ReprocessedAt = &now
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("looking up workflow: %w", err)
	}

	if workflow.ProcessedAt.IsZero() {
		workflow.ProcessedAt = time.Now().UTC()
	}

	if err := s.db.WithContext(ctx).Save(workflow).Error; err != nil {
		return fmt.Errorf("upserting workflow: %w", err)
	}

	return nil
}

// GetWorkflow returns one indexed workflow by its workflow ID.
func (s *store) GetWorkflow(
	ctx context.Context, workflowID string,
) (*Workflow, error) {
	var workflow Workflow

	err := s.db.WithContext(ctx).
		Where("workflow_id = ?", workflowID).
		First(&workflow).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		return nil, fmt.Errorf("getting workflow: %w", err)
	}

	return &workflow, nil
}

// ListWorkflows returns all indexed workflows, most recently processed
// first.
func (s *store) ListWorkflows(ctx context.Context) ([]Workflow, error) {
	var workflows []Workflow

	err := s.db.WithContext(ctx).
		Order("processed_at DESC").
		Find(&workflows).Error
	if err != nil {
		return nil, fmt.Errorf("listing workflows: %w", err)
	}

	return workflows, nil
}

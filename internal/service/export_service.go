package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/envelope/envelope-backend/internal/domain"
	"github.com/dafibh/envelope/envelope-backend/internal/repository/storage"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// ExportResult describes a written snapshot
type ExportResult struct {
	Location string
	TakenAt  time.Time
	Objects  int
}

// ExportService writes ledger snapshots to object storage
type ExportService struct {
	ledgerRepo   domain.LedgerRepository
	snapshotRepo storage.SnapshotRepository
	now          func() time.Time
	newNonce     func() uuid.UUID
}

// NewExportService creates a new ExportService. snapshotRepo may be nil when
// object storage is not configured; exports then fail with ErrExportDisabled.
func NewExportService(ledgerRepo domain.LedgerRepository, snapshotRepo storage.SnapshotRepository) *ExportService {
	return &ExportService{
		ledgerRepo:   ledgerRepo,
		snapshotRepo: snapshotRepo,
		now:          time.Now,
		newNonce:     uuid.New,
	}
}

// Enabled reports whether a snapshot repository is configured
func (s *ExportService) Enabled() bool {
	return s.snapshotRepo != nil
}

// Export takes a snapshot of the ledger and writes it to object storage
func (s *ExportService) Export(ctx context.Context) (*ExportResult, error) {
	if s.snapshotRepo == nil {
		return nil, domain.ErrExportDisabled
	}

	b, err := s.ledgerRepo.Snapshot()
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}

	takenAt := s.now().UTC()
	objects, err := storage.EncodeSnapshot(b, takenAt)
	if err != nil {
		return nil, err
	}

	location, err := s.snapshotRepo.Write(ctx, storage.NewSnapshotID(takenAt, s.newNonce()), objects)
	if err != nil {
		return nil, fmt.Errorf("write snapshot: %w", err)
	}

	log.Info().
		Str("location", location).
		Int("objects", len(objects)).
		Msg("Ledger snapshot exported")

	return &ExportResult{
		Location: location,
		TakenAt:  takenAt,
		Objects:  len(objects),
	}, nil
}

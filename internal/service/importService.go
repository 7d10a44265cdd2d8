package service

import (
	"context"
	"fmt"

	"github.com/ds124wfegd/ticketqr/internal/database"
	"github.com/ds124wfegd/ticketqr/internal/database/sqlite"
	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/pkg/codegen"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type importService struct {
	repo  database.TicketRepository
	store sqlite.TicketStore
}

func NewImportService(repo database.TicketRepository, store sqlite.TicketStore) ImportService {
	return &importService{repo: repo, store: store}
}

// Import seeds the tickets table from the JSON record set. Rows already present
// are left untouched, malformed records are skipped.
func (s *importService) Import(ctx context.Context) (*entity.ImportResult, error) {
	records, err := s.repo.LoadJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to load record set: %w", err)
	}

	result := &entity.ImportResult{
		ImportBatch: uuid.New().String(),
		Total:       records.Total(),
	}
	log := logrus.WithField("import_batch", result.ImportBatch)

	for _, rej := range records.Rejected {
		log.WithField("position", rej.Position).Warnf("Skipping undecodable record: %s", rej.Reason)
	}

	valid := make([]entity.Ticket, 0, len(records.Tickets))
	for _, t := range records.Tickets {
		if err := codegen.Validate(t.Code); err != nil {
			log.WithField("ticket_id", t.TicketID).Warnf("Skipping record: %v", err)
			continue
		}
		valid = append(valid, t)
	}

	imported, err := s.store.Import(ctx, result.ImportBatch, valid)
	if err != nil {
		return nil, err
	}
	result.Imported = imported
	result.Skipped = result.Total - imported

	if result.Stored, err = s.store.Count(ctx); err != nil {
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"imported": result.Imported,
		"skipped":  result.Skipped,
		"stored":   result.Stored,
	}).Info("Record set imported")
	return result, nil
}

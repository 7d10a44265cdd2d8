package service

import (
	"context"

	"github.com/ds124wfegd/ticketqr/internal/entity"
)

type TicketService interface {
	GenerateBatch(series []string, perSeries int) ([]entity.Ticket, error)
	Stats(tickets []entity.Ticket) entity.BatchStats
	SaveBatch(tickets []entity.Ticket) error
}

type RenderService interface {
	LoadRecords() (*entity.RecordSet, error)
	Render(ctx context.Context, records *entity.RecordSet, mode entity.RenderMode) ([]entity.RenderReport, error)
}

type ImportService interface {
	Import(ctx context.Context) (*entity.ImportResult, error)
}

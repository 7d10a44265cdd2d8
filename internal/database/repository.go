package database

import (
	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/pkg/storage"
)

// TicketRepository persists a generated batch in its two serialized forms.
type TicketRepository interface {
	SaveJSON(tickets []entity.Ticket) error
	SaveCSV(tickets []entity.Ticket) error
	LoadJSON() (*entity.RecordSet, error)
	LoadCSV() (*entity.RecordSet, error)
}

type fileTicketRepository struct {
	storage  storage.FileStorage
	jsonPath string
	csvPath  string
}

package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/ds124wfegd/ticketqr/internal/database"
	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/pkg/codegen"
	"github.com/sirupsen/logrus"
)

const (
	DefaultMaxAttempts = 1000
	sampleSize         = 10
)

type CodeDrawer interface {
	Draw(prefix string) string
}

type TicketServiceConfig struct {
	// MaxAttempts bounds consecutive collisions within one series.
	MaxAttempts int
	Now         func() time.Time
}

type ticketService struct {
	repo   database.TicketRepository
	codes  CodeDrawer
	config *TicketServiceConfig
}

func NewTicketService(repo database.TicketRepository, codes CodeDrawer, config *TicketServiceConfig) TicketService {
	cfg := TicketServiceConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}

	return &ticketService{
		repo:   repo,
		codes:  codes,
		config: &cfg,
	}
}

// GenerateBatch draws perSeries codes for every series in input order. Codes
// are unique across the whole batch and ticket ids run 1..len(series)*perSeries.
func (s *ticketService) GenerateBatch(series []string, perSeries int) ([]entity.Ticket, error) {
	if err := validateSeries(series); err != nil {
		return nil, err
	}
	if perSeries <= 0 {
		return nil, fmt.Errorf("%w: got %d", entity.ErrInvalidCount, perSeries)
	}
	if int64(perSeries) > codegen.SpaceSize() {
		return nil, fmt.Errorf("%w: %d codes requested per series, only %d exist",
			entity.ErrSeriesExhausted, perSeries, codegen.SpaceSize())
	}

	tickets := make([]entity.Ticket, 0, len(series)*perSeries)
	used := make(map[string]struct{}, len(series)*perSeries)

	for _, prefix := range series {
		logrus.WithField("series", prefix).Debugf("Generating %d tickets", perSeries)

		for count := 0; count < perSeries; count++ {
			code, err := s.drawUnique(prefix, used)
			if err != nil {
				return nil, err
			}

			used[code] = struct{}{}
			tickets = append(tickets, entity.NewTicket(len(tickets)+1, code, prefix, s.config.Now()))
		}
	}

	return tickets, nil
}

func (s *ticketService) drawUnique(prefix string, used map[string]struct{}) (string, error) {
	for attempt := 0; attempt < s.config.MaxAttempts; attempt++ {
		code := s.codes.Draw(prefix)
		if _, taken := used[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: series %s hit %d consecutive collisions",
		entity.ErrSeriesExhausted, prefix, s.config.MaxAttempts)
}

func validateSeries(series []string) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: no series given", entity.ErrInvalidSeries)
	}

	seen := make(map[string]struct{}, len(series))
	for _, prefix := range series {
		if len(prefix) != 1 || prefix[0] < 'A' || prefix[0] > 'Z' {
			return fmt.Errorf("%w: %q is not a single uppercase letter", entity.ErrInvalidSeries, prefix)
		}
		if _, dup := seen[prefix]; dup {
			return fmt.Errorf("%w: %q listed twice", entity.ErrInvalidSeries, prefix)
		}
		seen[prefix] = struct{}{}
	}
	return nil
}

func (s *ticketService) Stats(tickets []entity.Ticket) entity.BatchStats {
	counts := make(map[string]int)
	for _, t := range tickets {
		counts[t.Prefix]++
	}

	stats := entity.BatchStats{
		Total:    len(tickets),
		BySeries: make([]entity.SeriesCount, 0, len(counts)),
		Samples:  make([]string, 0, sampleSize),
	}
	for prefix, n := range counts {
		stats.BySeries = append(stats.BySeries, entity.SeriesCount{Prefix: prefix, Count: n})
	}
	sort.Slice(stats.BySeries, func(i, j int) bool {
		return stats.BySeries[i].Prefix < stats.BySeries[j].Prefix
	})
	for i := 0; i < len(tickets) && i < sampleSize; i++ {
		stats.Samples = append(stats.Samples, tickets[i].Code)
	}

	return stats
}

// SaveBatch writes both serialized forms; either failure is fatal for the run.
func (s *ticketService) SaveBatch(tickets []entity.Ticket) error {
	if err := s.repo.SaveJSON(tickets); err != nil {
		return fmt.Errorf("failed to save json record set: %w", err)
	}
	if err := s.repo.SaveCSV(tickets); err != nil {
		return fmt.Errorf("failed to save csv record set: %w", err)
	}

	logrus.WithField("tickets", len(tickets)).Info("Record set saved")
	return nil
}

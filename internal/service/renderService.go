package service

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"github.com/ds124wfegd/ticketqr/internal/database"
	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/pkg/codegen"
	"github.com/ds124wfegd/ticketqr/internal/pkg/renderer"
	"github.com/ds124wfegd/ticketqr/internal/pkg/storage"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type RenderServiceConfig struct {
	OutputDirs    map[entity.ArtifactKind]string
	Workers       int
	ProgressEvery int
}

type renderService struct {
	repo      database.TicketRepository
	storage   storage.FileStorage
	renderers map[entity.ArtifactKind]renderer.ArtifactRenderer
	config    *RenderServiceConfig
}

func NewRenderService(
	repo database.TicketRepository,
	storage storage.FileStorage,
	config *RenderServiceConfig,
	renderers ...renderer.ArtifactRenderer,
) RenderService {
	byKind := make(map[entity.ArtifactKind]renderer.ArtifactRenderer, len(renderers))
	for _, r := range renderers {
		byKind[r.Kind()] = r
	}

	return &renderService{
		repo:      repo,
		storage:   storage,
		renderers: byKind,
		config:    config,
	}
}

// LoadRecords reads the JSON record set. Callers load before rendering so a
// missing input is reported before any directory is created.
func (s *renderService) LoadRecords() (*entity.RecordSet, error) {
	records, err := s.repo.LoadJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to load record set: %w", err)
	}

	for _, rej := range records.Rejected {
		logrus.WithField("position", rej.Position).Warnf("Skipping undecodable record: %s", rej.Reason)
	}
	return records, nil
}

// Render writes one artifact per record for every kind the mode asks for.
// Rejected records count as failures of every kind.
func (s *renderService) Render(ctx context.Context, records *entity.RecordSet, mode entity.RenderMode) ([]entity.RenderReport, error) {
	kinds := mode.Kinds()
	for _, kind := range kinds {
		if _, ok := s.renderers[kind]; !ok {
			return nil, fmt.Errorf("no renderer configured for %s artifacts", kind)
		}
	}

	reports := make([]entity.RenderReport, 0, len(kinds))
	for _, kind := range kinds {
		report, err := s.renderAll(ctx, s.renderers[kind], records)
		reports = append(reports, report)
		if err != nil {
			return reports, err
		}
	}
	return reports, nil
}

func (s *renderService) renderAll(ctx context.Context, r renderer.ArtifactRenderer, records *entity.RecordSet) (entity.RenderReport, error) {
	tickets := records.Tickets
	dir := s.outputDir(r.Kind())
	report := entity.RenderReport{
		Kind:      r.Kind(),
		OutputDir: s.storage.FullPath(dir),
		Total:     records.Total(),
	}
	log := logrus.WithFields(logrus.Fields{
		"kind":       r.Kind(),
		"output_dir": report.OutputDir,
	})

	if err := s.storage.MkdirAll(dir); err != nil {
		return report, fmt.Errorf("failed to create output directory %s: %w", report.OutputDir, err)
	}
	log.Infof("Rendering %d artifacts", len(tickets))

	var rendered, failed atomic.Int64
	failed.Add(int64(len(records.Rejected)))

	g := new(errgroup.Group)
	g.SetLimit(max(s.config.Workers, 1))

	for _, t := range tickets {
		if ctx.Err() != nil {
			break
		}

		g.Go(func() error {
			if err := s.renderOne(r, dir, t); err != nil {
				failed.Add(1)
				log.WithFields(logrus.Fields{
					"code":      t.Code,
					"ticket_id": t.TicketID,
				}).Errorf("Failed to render artifact: %v", err)
				return nil
			}

			n := rendered.Add(1)
			if every := int64(s.config.ProgressEvery); every > 0 && n%every == 0 {
				log.Infof("Progress: %d/%d rendered (%.1f%%)", n, report.Total, float64(n)/float64(report.Total)*100)
			}
			return nil
		})
	}
	// workers report failures through the counters, never through g
	g.Wait()

	report.Rendered = int(rendered.Load())
	report.Failed = int(failed.Load())

	if err := ctx.Err(); err != nil {
		log.Warnf("Rendering interrupted after %d/%d artifacts", report.Rendered, report.Total)
		return report, err
	}

	log.WithField("failed", report.Failed).Infof("Rendered %d/%d artifacts", report.Rendered, report.Total)
	return report, nil
}

func (s *renderService) renderOne(r renderer.ArtifactRenderer, dir string, t entity.Ticket) error {
	if err := codegen.Validate(t.Code); err != nil {
		return err
	}

	img, err := r.Render(t)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := renderer.Encode(&buf, img); err != nil {
		return err
	}

	return s.storage.Save(filepath.Join(dir, renderer.FileName(r.Kind(), t.Code)), &buf)
}

func (s *renderService) outputDir(kind entity.ArtifactKind) string {
	if dir, ok := s.config.OutputDirs[kind]; ok && dir != "" {
		return dir
	}
	return string(kind) + "s"
}

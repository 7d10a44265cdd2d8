package transport

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ds124wfegd/ticketqr/config"
	"github.com/ds124wfegd/ticketqr/internal/entity"
	"github.com/ds124wfegd/ticketqr/internal/service"
	"github.com/sirupsen/logrus"
)

// ServiceFactory builds services from the parsed configuration. Services
// that hold resources are built on demand and released by Close.
type ServiceFactory interface {
	Config() *config.Config
	TicketService() service.TicketService
	RenderService() (service.RenderService, error)
	ImportService() (service.ImportService, error)
	Close() error
}

type Handler struct {
	factory     ServiceFactory
	in          io.Reader
	out         io.Writer
	interactive bool
}

func NewHandler(factory ServiceFactory, in io.Reader, out io.Writer) *Handler {
	return &Handler{
		factory:     factory,
		in:          in,
		out:         out,
		interactive: isTerminal(in),
	}
}

func (h *Handler) Generate(ctx context.Context) error {
	cfg := h.factory.Config()
	svc := h.factory.TicketService()

	logrus.WithFields(logrus.Fields{
		"series":     strings.Join(cfg.Generator.Series, ","),
		"per_series": cfg.Generator.PerSeries,
	}).Info("Generating ticket batch")

	tickets, err := svc.GenerateBatch(cfg.Generator.Series, cfg.Generator.PerSeries)
	if err != nil {
		return err
	}

	printStats(h.out, svc.Stats(tickets))

	if err := svc.SaveBatch(tickets); err != nil {
		return err
	}

	fmt.Fprintf(h.out, "✓ JSON record set: %s\n", cfg.Records.JSONFile)
	fmt.Fprintf(h.out, "✓ CSV record set: %s\n", cfg.Records.CSVFile)
	return nil
}

// Render loads the record set before asking for a mode, so a missing input
// fails without prompting the operator first.
func (h *Handler) Render(ctx context.Context) error {
	cfg := h.factory.Config()

	var mode entity.RenderMode
	if cfg.Render.Mode != "" {
		parsed, err := entity.ParseRenderMode(cfg.Render.Mode)
		if err != nil {
			return err
		}
		mode = parsed
	}

	svc, err := h.factory.RenderService()
	if err != nil {
		return err
	}

	records, err := svc.LoadRecords()
	if err != nil {
		return err
	}
	if len(records.Rejected) > 0 {
		fmt.Fprintf(h.out, "! %d of %d records could not be decoded and will be skipped\n", len(records.Rejected), records.Total())
	}

	if mode == "" {
		mode = PromptRenderMode(h.in, h.out, h.interactive)
	}

	logrus.WithField("mode", mode).Info("Rendering artifacts")
	reports, err := svc.Render(ctx, records, mode)
	for _, report := range reports {
		printRenderReport(h.out, report)
	}
	return err
}

func (h *Handler) Import(ctx context.Context) error {
	svc, err := h.factory.ImportService()
	if err != nil {
		return err
	}

	result, err := svc.Import(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(h.out, strings.Repeat("=", 60))
	fmt.Fprintf(h.out, "Import batch: %s\n", result.ImportBatch)
	fmt.Fprintf(h.out, "  Total:    %d\n", result.Total)
	fmt.Fprintf(h.out, "  Imported: %d\n", result.Imported)
	fmt.Fprintf(h.out, "  Skipped:  %d\n", result.Skipped)
	fmt.Fprintf(h.out, "  In table: %d\n", result.Stored)
	fmt.Fprintln(h.out, strings.Repeat("=", 60))
	return nil
}

func printStats(out io.Writer, stats entity.BatchStats) {
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintln(out, "GENERATION STATISTICS")
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "Total tickets generated: %d\n", stats.Total)

	fmt.Fprintln(out, "\nBreakdown by series:")
	for _, s := range stats.BySeries {
		fmt.Fprintf(out, "  Series %s: %d tickets\n", s.Prefix, s.Count)
	}

	fmt.Fprintln(out, "\nSample codes:")
	for _, code := range stats.Samples {
		fmt.Fprintf(out, "  %s\n", code)
	}
	fmt.Fprintln(out, strings.Repeat("=", 60))
}

func printRenderReport(out io.Writer, r entity.RenderReport) {
	fmt.Fprintln(out, strings.Repeat("=", 60))
	fmt.Fprintf(out, "✓ %s artifacts\n", r.Kind)
	fmt.Fprintf(out, "  Total:    %d\n", r.Total)
	fmt.Fprintf(out, "  Rendered: %d\n", r.Rendered)
	fmt.Fprintf(out, "  Failed:   %d\n", r.Failed)
	fmt.Fprintf(out, "  Folder:   %s\n", r.OutputDir)
	fmt.Fprintln(out, strings.Repeat("=", 60))
}

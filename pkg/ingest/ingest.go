package ingest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sourcegraph/conc/pool"

	"github.com/amosWeiskopf/reportsmith/internal/config"
	"github.com/amosWeiskopf/reportsmith/internal/logger"
	"github.com/amosWeiskopf/reportsmith/internal/models"
	"github.com/amosWeiskopf/reportsmith/pkg/agent"
	"github.com/amosWeiskopf/reportsmith/pkg/columns"
	"github.com/amosWeiskopf/reportsmith/pkg/pdftext"
	"github.com/amosWeiskopf/reportsmith/pkg/reconciler"
	"github.com/amosWeiskopf/reportsmith/pkg/workbook"
)

var (
	// ErrUnsupportedFormat is returned for files that are neither workbooks nor PDFs
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrNoExtractor is returned for a PDF when no field extractor is configured
	ErrNoExtractor = errors.New("PDF ingestion needs an extraction agent")
	// ErrNoSources is returned when Run is given nothing
	ErrNoSources = errors.New("no files to ingest")
)

// Format is an input file kind
type Format string

const (
	FormatWorkbook Format = "workbook"
	FormatCSV      Format = "csv"
	FormatPDF      Format = "pdf"
)

// DetectFormat maps a file name to its format by extension
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatWorkbook, nil
	case ".csv":
		return FormatCSV, nil
	case ".pdf":
		return FormatPDF, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
}

// Source is one uploaded file
type Source struct {
	Name string
	Data []byte
}

// Ingestor extracts a batch of files concurrently and reconciles them
type Ingestor struct {
	extractor      agent.FieldExtractor
	pdfText        func(r io.ReaderAt, size int64) (string, error)
	chain          columns.Chain
	maxConcurrency int
	topN           int
	tolerance      time.Duration
	log            logrus.FieldLogger
}

// New creates an Ingestor. fx may be nil, in which case PDFs are rejected.
func New(cfg config.IngestConfig, fx agent.FieldExtractor, log logrus.FieldLogger) *Ingestor {
	return &Ingestor{
		extractor:      fx,
		pdfText:        pdftext.ExtractText,
		chain:          columns.DefaultChain(),
		maxConcurrency: cfg.MaxConcurrency,
		topN:           cfg.TopN,
		tolerance:      time.Duration(cfg.ToleranceDays) * 24 * time.Hour,
		log:            logger.OrNop(log),
	}
}

// Extract reads one file into its extraction results
func (in *Ingestor) Extract(ctx context.Context, src Source) ([]*models.ExtractionResult, error) {
	format, err := DetectFormat(src.Name)
	if err != nil {
		return nil, err
	}
	log := in.log.WithFields(logrus.Fields{"file": src.Name, "format": string(format)})
	log.Debug("Extracting file")

	switch format {
	case FormatPDF:
		if in.extractor == nil {
			return nil, ErrNoExtractor
		}
		text, err := in.pdfText(bytes.NewReader(src.Data), int64(len(src.Data)))
		if err != nil {
			return nil, err
		}
		res, err := in.extractor.Extract(ctx, text, src.Name)
		if err != nil {
			return nil, err
		}
		return []*models.ExtractionResult{res}, nil

	case FormatCSV:
		wb, err := workbook.ReadCSV(bytes.NewReader(src.Data), src.Name)
		if err != nil {
			return nil, err
		}
		return in.parse(wb, src.Name)

	default:
		wb, err := workbook.Read(bytes.NewReader(src.Data))
		if err != nil {
			return nil, err
		}
		return in.parse(wb, src.Name)
	}
}

func (in *Ingestor) parse(wb *workbook.Workbook, name string) ([]*models.ExtractionResult, error) {
	return workbook.Parse(wb, workbook.Options{
		FileName: name,
		TopN:     in.topN,
		Chain:    in.chain,
		Logger:   in.log,
	})
}

type indexed struct {
	idx     int
	results []*models.ExtractionResult
}

// ExtractAll extracts every source concurrently, one goroutine per file up
// to the configured cap. The first failure cancels the rest and is returned
// naming its file; there is no partial result. Results come back in input
// order.
func (in *Ingestor) ExtractAll(ctx context.Context, sources []Source) ([]*models.ExtractionResult, error) {
	if len(sources) == 0 {
		return nil, ErrNoSources
	}
	workers := len(sources)
	if in.maxConcurrency > 0 && workers > in.maxConcurrency {
		workers = in.maxConcurrency
	}

	p := pool.NewWithResults[indexed]().
		WithContext(ctx).
		WithCancelOnError().
		WithMaxGoroutines(workers)

	for i, src := range sources {
		i, src := i, src
		p.Go(func(ctx context.Context) (indexed, error) {
			results, err := in.Extract(ctx, src)
			if err != nil {
				return indexed{}, fmt.Errorf("%s: %w", src.Name, err)
			}
			return indexed{idx: i, results: results}, nil
		})
	}

	batches, err := p.Wait()
	if err != nil {
		in.log.WithError(err).Error("Batch ingestion aborted")
		return nil, err
	}

	sort.Slice(batches, func(a, b int) bool { return batches[a].idx < batches[b].idx })
	var all []*models.ExtractionResult
	for _, b := range batches {
		all = append(all, b.results...)
	}
	in.log.WithFields(logrus.Fields{"files": len(sources), "results": len(all)}).Info("Batch extracted")
	return all, nil
}

// Run extracts every source, then reconciles the whole set against target
// (nil infers the current period from the files).
func (in *Ingestor) Run(ctx context.Context, sources []Source, target *reconciler.DateRange) (*models.ReconciledResult, error) {
	results, err := in.ExtractAll(ctx, sources)
	if err != nil {
		return nil, err
	}
	return reconciler.Reconcile(results, reconciler.Options{
		Target:    target,
		Tolerance: in.tolerance,
		TopN:      in.topN,
		Logger:    in.log,
	})
}

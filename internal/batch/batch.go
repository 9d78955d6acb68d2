// Package batch orchestrates extraction over many PDF documents: file
// discovery, a worker pool running the per-document pipeline, reference
// and trace reconciliation, and output normalization.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/legaltech-cl/extracto/internal/normalize"
	"github.com/legaltech-cl/extracto/internal/record"
	"github.com/legaltech-cl/extracto/internal/trace"
)

// Result holds the outcome of a batch run.
type Result struct {
	Rows     []record.Record
	Statuses []DocumentStatus

	NormalizeStats normalize.Stats
	MergeStats     trace.MergeStats

	// Rejected counts rows dropped for missing required fields. Only
	// populated when Normalize.RejectIncomplete is set.
	Rejected int

	Duration    time.Duration
	WorkerCount int
}

// Failed returns the number of documents that did not produce a record.
func (r *Result) Failed() int {
	n := 0
	for _, s := range r.Statuses {
		if s.Err != nil {
			n++
		}
	}
	return n
}

// ProcessBatch extracts one record per discovered PDF. Rows come back
// in discovery order (sorted paths), one per input file, unless
// RejectIncomplete drops incomplete ones.
func ProcessBatch(ctx context.Context, args []string, cfg *Config) (*Result, error) {
	start := time.Now()

	if err := cfg.Normalize.Validate(); err != nil {
		return nil, fmt.Errorf("invalid normalize options: %w", err)
	}

	files, err := discoverPDFFiles(args, cfg.Recursive, cfg.IncludePatterns, cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("discovering pdf files: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no PDF files found in %v", args)
	}

	slog.Info("starting batch", "files", len(files), "workers", cfg.Workers, "bank", cfg.Bank)

	p := buildPipeline(cfg)
	rows, statuses, err := processDocumentsParallel(ctx, p, files)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Statuses:    statuses,
		WorkerCount: cfg.Workers,
	}

	if cfg.Reference != nil && cfg.Reference.Len() > 0 {
		applied := 0
		for _, rec := range rows {
			if cfg.Reference.Apply(rec) {
				applied++
			}
		}
		slog.Info("reference overrides applied", "rows", applied)
	}

	if cfg.Trace != nil && cfg.FillMode != trace.FillNone {
		result.MergeStats = trace.Merge(rows, cfg.Trace, cfg.FillMode)
		slog.Info("trace merge done",
			"hits", result.MergeStats.Hits, "filled", result.MergeStats.Filled())
	}

	for _, rec := range rows {
		normalize.Row(rec, cfg.Normalize, &result.NormalizeStats)
	}

	if cfg.Normalize.RejectIncomplete {
		kept := rows[:0]
		for _, rec := range rows {
			if normalize.Complete(rec, cfg.Normalize.RequiredFields) {
				kept = append(kept, rec)
				continue
			}
			result.Rejected++
			slog.Warn("row rejected as incomplete", "operacion", rec[record.FieldOperacion])
		}
		rows = kept
	}

	result.Rows = rows
	result.Duration = time.Since(start)

	slog.Info("batch complete",
		"rows", len(result.Rows),
		"failed", result.Failed(),
		"rejected", result.Rejected,
		"duration", result.Duration)
	return result, nil
}

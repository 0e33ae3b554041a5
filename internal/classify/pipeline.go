package classify

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/tsucho-dev/tsucho/internal/logger"
	"github.com/tsucho-dev/tsucho/internal/model"
)

// DefaultWorkers is the number of descriptions classified concurrently.
const DefaultWorkers = 4

// Stats summarises one pipeline run.
type Stats struct {
	Targeted   int // rows without a category and with a description
	Unique     int // distinct descriptions sent to the classifier
	ByCategory map[model.Category]int
}

// Pipeline fills in missing categories across a table.
type Pipeline struct {
	classifier Classifier
	workers    int
}

// NewPipeline returns a pipeline that runs at most workers classifications at once.
func NewPipeline(c Classifier, workers int) *Pipeline {
	if workers < 1 {
		workers = 1
	}
	return &Pipeline{classifier: c, workers: workers}
}

// Run classifies rows whose category is empty and whose description is not
// blank. Each distinct description is classified once and the verdict is
// resolved per row against that row's amounts. Rows that already have a
// category are copied through unchanged.
//
// If ctx is cancelled Run returns rows unchanged with ctx.Err().
func (p *Pipeline) Run(ctx context.Context, rows []model.Transaction) ([]model.Transaction, Stats, error) {
	stats := Stats{ByCategory: make(map[model.Category]int)}

	slot := make(map[string]int)
	var unique []string
	var targets []int
	for i, r := range rows {
		if !r.Category.IsZero() {
			continue
		}
		key := strings.TrimSpace(r.Description)
		if key == "" {
			continue
		}
		targets = append(targets, i)
		if _, ok := slot[key]; !ok {
			slot[key] = len(unique)
			unique = append(unique, key)
		}
	}
	stats.Targeted = len(targets)
	stats.Unique = len(unique)
	if len(targets) == 0 {
		return model.Clone(rows), stats, nil
	}

	verdicts := make([]Verdict, len(unique))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for i, text := range unique {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			verdicts[i] = p.classifier.Classify(gctx, text)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return rows, Stats{}, err
	}
	if err := ctx.Err(); err != nil {
		return rows, Stats{}, err
	}

	out := model.Clone(rows)
	for _, i := range targets {
		v := verdicts[slot[strings.TrimSpace(out[i].Description)]]
		out[i].Category = v.For(out[i].AmountOut, out[i].AmountIn)
		stats.ByCategory[out[i].Category]++
	}

	log := logger.FromContext(ctx)
	log.Info().
		Int("rows", stats.Targeted).
		Int("unique", stats.Unique).
		Msg("classified transactions")
	return out, stats, nil
}

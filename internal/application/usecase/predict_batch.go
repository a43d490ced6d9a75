package usecase

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/AtharvaDeo101/KARA/internal/application/dto"
)

// PredictBatch scores many records independently. A failing record never
// aborts the batch; its error text is reported in place.
type PredictBatch struct {
	predict     *PredictCompletion
	concurrency int
}

// NewPredictBatch creates a PredictBatch use case. A concurrency below one
// defaults to the number of CPUs.
func NewPredictBatch(predict *PredictCompletion, concurrency int) *PredictBatch {
	if concurrency < 1 {
		concurrency = runtime.NumCPU()
	}
	return &PredictBatch{predict: predict, concurrency: concurrency}
}

// Execute returns one item per record, in input order. Rows are numbered from 1.
func (uc *PredictBatch) Execute(ctx context.Context, records []map[string]any) []dto.BatchItem {
	items := make([]dto.BatchItem, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, rec := range records {
		g.Go(func() error {
			items[i].Row = i + 1
			if err := gctx.Err(); err != nil {
				items[i].Error = err.Error()
				return nil
			}

			resp, err := uc.predict.Execute(gctx, rec)
			if err != nil {
				items[i].Error = err.Error()
				return nil
			}
			items[i].Prediction = &resp
			return nil
		})
	}

	// Workers never return an error.
	_ = g.Wait()

	return items
}

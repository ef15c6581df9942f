package etl

import (
	"context"
	"errors"
	"fmt"
)

// Collect drains src into a slice. A positive limit stops reading once that
// many records have arrived.
func Collect(ctx context.Context, src Source, cfg SourceConfig, limit int) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	readCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	recCh, errCh := src.Read(readCtx, cfg)

	var records []Record
	stopped := false
	for rec := range recCh {
		if rec == nil {
			continue
		}
		records = append(records, rec)
		if limit > 0 && len(records) >= limit {
			stopped = true
			cancel()
			break
		}
	}
	if stopped {
		// Let the producer observe cancellation and close its channels.
		for range recCh {
		}
	}

	if err := <-errCh; err != nil {
		if stopped && errors.Is(err, context.Canceled) {
			return records, nil
		}
		return records, fmt.Errorf("read %s: %w", src.Spec().Type, err)
	}
	if err := ctx.Err(); err != nil {
		return records, err
	}
	return records, nil
}

// Load looks up sourceType in the registry and collects from it.
func Load(ctx context.Context, sourceType string, cfg SourceConfig, limit int) ([]Record, error) {
	src, err := GetSource(sourceType)
	if err != nil {
		return nil, err
	}
	return Collect(ctx, src, cfg, limit)
}

// Discover samples up to sample records and infers their leaf paths.
func Discover(ctx context.Context, sourceType string, cfg SourceConfig, sample int) (*Schema, error) {
	records, err := Load(ctx, sourceType, cfg, sample)
	if err != nil {
		return nil, err
	}
	return InferSchema(records), nil
}

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package ddb

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	sdk "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/suparena/docstore/storagemodels"
)

// Stream queries every page of cfg in the background and delivers the items
// on the returned channel.
func (d *DynamodbDataStore) Stream(ctx context.Context, cfg *storagemodels.QueryConfig, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult {
	options := storagemodels.NewStreamOptions(opts...)

	resultCh := make(chan storagemodels.StreamResult, options.BufferSize)
	go d.streamWorker(ctx, cfg, options, resultCh)
	return resultCh
}

// streamWorker handles the actual streaming logic
func (d *DynamodbDataStore) streamWorker(
	ctx context.Context,
	cfg *storagemodels.QueryConfig,
	options storagemodels.StreamOptions,
	resultCh chan<- storagemodels.StreamResult,
) {
	defer close(resultCh)

	var itemIndex int64
	var pageNumber int
	var errs []error
	startTime := time.Now()

	reportProgress := func(lastKey map[string]types.AttributeValue) {
		if options.ProgressHandler == nil {
			return
		}
		progress := storagemodels.StreamProgress{
			ItemsProcessed: atomic.LoadInt64(&itemIndex),
			PagesProcessed: pageNumber,
			LastKey:        lastKey,
			Errors:         errs,
			StartTime:      startTime,
			Elapsed:        time.Since(startTime),
		}
		options.ProgressHandler(progress)
	}

	fail := func(err error) {
		select {
		case resultCh <- storagemodels.StreamResult{
			Error: err,
			Meta: storagemodels.StreamMeta{
				Index:      atomic.LoadInt64(&itemIndex),
				PageNumber: pageNumber,
				Timestamp:  time.Now(),
			},
		}:
		case <-ctx.Done():
		}
	}

	input, err := d.buildQueryInput(cfg)
	if err != nil {
		fail(err)
		return
	}
	input.Limit = aws.Int32(options.PageSize)
	if cfg.Limit() > 0 {
		input.Limit = aws.Int32(cfg.Limit())
	}

	for {
		if ctx.Err() != nil {
			return
		}

		out, err := d.queryWithRetry(ctx, input, options)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if options.ErrorHandler == nil || !options.ErrorHandler(err) {
				fail(fmt.Errorf("query failed: %w", err))
				return
			}
			// a failed page has no resume key, so the stream ends quietly
			errs = append(errs, err)
			d.log.Warn().Err(err).Str("table", d.tableName).Int("page", pageNumber).Msg("stream page failed, stopping")
			break
		}

		pageNumber++
		for _, item := range out.Items {
			result := storagemodels.StreamResult{
				Item: item,
				Meta: storagemodels.StreamMeta{
					Index:      atomic.LoadInt64(&itemIndex),
					PageNumber: pageNumber,
					Timestamp:  time.Now(),
				},
			}
			atomic.AddInt64(&itemIndex, 1)

			select {
			case <-ctx.Done():
				return
			case resultCh <- result:
			}
		}

		reportProgress(out.LastEvaluatedKey)

		if len(out.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	reportProgress(nil)
}

// queryWithRetry executes a query, retrying throttling and transient errors
// with linear backoff.
func (d *DynamodbDataStore) queryWithRetry(
	ctx context.Context,
	input *sdk.QueryInput,
	options storagemodels.StreamOptions,
) (*sdk.QueryOutput, error) {
	var lastErr error

	for attempt := 0; attempt <= options.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		out, err := d.client.Query(ctx, input)
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !isRetryableError(err) {
			return nil, err
		}

		if attempt < options.MaxRetries {
			d.log.Warn().Err(err).Int("attempt", attempt+1).Msg("retrying query")
			backoff := time.Duration(attempt+1) * options.RetryBackoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return nil, fmt.Errorf("query failed after %d retries: %w", options.MaxRetries, lastErr)
}

// isRetryableError determines if a DynamoDB error is retryable
func isRetryableError(err error) bool {
	var pte *types.ProvisionedThroughputExceededException
	var rle *types.RequestLimitExceeded
	var ise *types.InternalServerError
	if errors.As(err, &pte) || errors.As(err, &rle) || errors.As(err, &ise) {
		return true
	}

	var retryable interface{ IsRetryable() bool }
	if errors.As(err, &retryable) {
		return retryable.IsRetryable()
	}
	return false
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/signal"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// ResultRepository keeps the latest analysis batch and its per-symbol
// results. Saving a batch replaces whatever was stored before.
type ResultRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewResultRepository(pool PgxPool, tracer trace.Tracer) *ResultRepository {
	return &ResultRepository{pool: pool, tracer: tracer}
}

// SaveBatch replaces the stored batch with batch in one transaction.
func (r *ResultRepository) SaveBatch(ctx context.Context, batch domain.Batch) error {
	ctx, span := r.tracer.Start(ctx, "result-repo.save-batch")
	defer span.End()
	span.SetAttributes(attribute.String("run_id", batch.RunID), attribute.Int("results", len(batch.Results)))

	errorsJSON, err := json.Marshal(nonNil(batch.Errors))
	if err != nil {
		return err
	}
	rows := make([]resultRow, len(batch.Results))
	for i, res := range batch.Results {
		row, err := encodeResult(res)
		if err != nil {
			return fmt.Errorf("encode %s: %w", res.Symbol, err)
		}
		rows[i] = row
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	// Results cascade with their batch.
	if _, err := tx.Exec(ctx, `DELETE FROM analysis_batches`); err != nil {
		return fmt.Errorf("clear previous batch: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO analysis_batches (run_id, started_at, finished_at, threshold, errors)
		 VALUES ($1, $2, $3, $4, $5::jsonb)`,
		batch.RunID, batch.StartedAt, batch.FinishedAt, batch.Threshold, string(errorsJSON),
	); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	if len(rows) > 0 {
		pb := &pgx.Batch{}
		for i, row := range rows {
			pb.Queue(
				`INSERT INTO scoring_results (run_id, position, symbol, buy_score, sell_score, net_score,
				     size_multiplier, confidence, signal, signals, warnings, components)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10::jsonb, $11::jsonb, $12::jsonb)`,
				batch.RunID, i, row.Symbol, row.Buy, row.Sell, row.Net, row.Size,
				row.Confidence, row.Signal, row.Signals, row.Warnings, row.Components,
			)
		}
		br := tx.SendBatch(ctx, pb)
		for range rows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert results: %w", err)
			}
		}
		if err := br.Close(); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// LatestBatch returns the most recently finished batch, or nil when none is
// stored.
func (r *ResultRepository) LatestBatch(ctx context.Context) (*domain.Batch, error) {
	ctx, span := r.tracer.Start(ctx, "result-repo.latest-batch")
	defer span.End()

	var (
		batch      domain.Batch
		errorsJSON []byte
	)
	err := r.pool.QueryRow(ctx,
		`SELECT run_id::text, started_at, finished_at, threshold, errors
		 FROM analysis_batches
		 ORDER BY finished_at DESC
		 LIMIT 1`,
	).Scan(&batch.RunID, &batch.StartedAt, &batch.FinishedAt, &batch.Threshold, &errorsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	batch.StartedAt = batch.StartedAt.UTC()
	batch.FinishedAt = batch.FinishedAt.UTC()
	if len(errorsJSON) > 0 {
		if err := json.Unmarshal(errorsJSON, &batch.Errors); err != nil {
			return nil, fmt.Errorf("decode batch errors: %w", err)
		}
	}

	results, err := r.queryResults(ctx,
		`SELECT symbol, buy_score, sell_score, net_score, size_multiplier, confidence, signal,
		     signals, warnings, components
		 FROM scoring_results
		 WHERE run_id = $1
		 ORDER BY position`,
		batch.RunID,
	)
	if err != nil {
		return nil, err
	}
	batch.Results = results
	batch.Recommendations = signal.Rank(results)
	return &batch, nil
}

func (r *ResultRepository) queryResults(ctx context.Context, sql string, args ...any) ([]domain.ScoringResult, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.ScoringResult{}
	for rows.Next() {
		var row resultRow
		if err := rows.Scan(&row.Symbol, &row.Buy, &row.Sell, &row.Net, &row.Size,
			&row.Confidence, &row.Signal, &row.Signals, &row.Warnings, &row.Components); err != nil {
			return nil, err
		}
		res, err := decodeResult(row)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, rows.Err()
}

// resultRow is the column form of a ScoringResult. JSON columns hold raw
// encoded JSON.
type resultRow struct {
	Symbol     string
	Buy        float64
	Sell       float64
	Net        float64
	Size       float64
	Confidence string
	Signal     string
	Signals    []byte
	Warnings   []byte
	Components []byte
}

func encodeResult(res domain.ScoringResult) (resultRow, error) {
	signals, err := json.Marshal(nonNil(res.Signals))
	if err != nil {
		return resultRow{}, err
	}
	warnings, err := json.Marshal(nonNil(res.Warnings))
	if err != nil {
		return resultRow{}, err
	}
	components := res.Components
	if components == nil {
		components = map[string]any{}
	}
	componentsJSON, err := json.Marshal(components)
	if err != nil {
		return resultRow{}, err
	}
	return resultRow{
		Symbol:     res.Symbol,
		Buy:        res.BuyScore,
		Sell:       res.SellScore,
		Net:        res.NetScore,
		Size:       res.SizeMultiplier,
		Confidence: string(res.Confidence),
		Signal:     string(res.Signal),
		Signals:    signals,
		Warnings:   warnings,
		Components: componentsJSON,
	}, nil
}

func decodeResult(row resultRow) (domain.ScoringResult, error) {
	res := domain.ScoringResult{
		Symbol:         row.Symbol,
		BuyScore:       row.Buy,
		SellScore:      row.Sell,
		NetScore:       row.Net,
		SizeMultiplier: row.Size,
		Confidence:     domain.Confidence(row.Confidence),
		Signal:         domain.SignalType(row.Signal),
		Signals:        []string{},
		Warnings:       []string{},
		Components:     map[string]any{},
	}
	for _, col := range []struct {
		raw []byte
		dst any
	}{
		{row.Signals, &res.Signals},
		{row.Warnings, &res.Warnings},
		{row.Components, &res.Components},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dst); err != nil {
			return domain.ScoringResult{}, fmt.Errorf("decode %s result: %w", row.Symbol, err)
		}
	}
	return res, nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/apperror"
	"github.com/rocketscienceinc/tictactoe-matchmaker/internal/entity"
)

const (
	resultsKey     = "results"
	statsKeyPrefix = "stats:"

	fieldWins      = "wins"
	fieldLosses    = "losses"
	fieldTies      = "ties"
	fieldAbandoned = "abandoned"
)

type ResultRepository interface {
	Save(ctx context.Context, result *entity.MatchResult) error
	Recent(ctx context.Context, limit int) ([]*entity.MatchResult, error)
	Stats(ctx context.Context, name string) (*entity.PlayerStats, error)
}

type dbResult struct {
	client *redis.Client
	limit  int64
}

// NewResultRepository keeps at most limit finished matches in the recent list. Per-player counters are never trimmed.
func NewResultRepository(client *redis.Client, limit int) ResultRepository {
	return &dbResult{
		client: client,
		limit:  int64(limit),
	}
}

func (that *dbResult) Save(ctx context.Context, result *entity.MatchResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("could not marshal result: %w", err)
	}

	_, err = that.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, resultsKey, resultJSON)
		if that.limit > 0 {
			pipe.LTrim(ctx, resultsKey, 0, that.limit-1)
		}

		for name, field := range statsFields(result) {
			pipe.HIncrBy(ctx, statsKey(name), field, 1)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save result: %w", err)
	}

	return nil
}

// Recent returns the newest results first.
func (that *dbResult) Recent(ctx context.Context, limit int) ([]*entity.MatchResult, error) {
	if limit <= 0 {
		return []*entity.MatchResult{}, nil
	}

	response, err := that.client.LRange(ctx, resultsKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get recent results: %w", err)
	}

	results := make([]*entity.MatchResult, 0, len(response))
	for _, item := range response {
		var result entity.MatchResult
		if err = json.Unmarshal([]byte(item), &result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal result: %w", err)
		}

		results = append(results, &result)
	}

	return results, nil
}

func (that *dbResult) Stats(ctx context.Context, name string) (*entity.PlayerStats, error) {
	key := entity.NormalizeName(name)
	if key == "" {
		return nil, apperror.ErrEmptyName
	}

	response, err := that.client.HGetAll(ctx, statsKey(key)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}

	if len(response) == 0 {
		return nil, fmt.Errorf("%w: no results for %s", apperror.ErrNotFound, name)
	}

	stats := &entity.PlayerStats{Name: key}
	for field, target := range map[string]*int64{
		fieldWins:      &stats.Wins,
		fieldLosses:    &stats.Losses,
		fieldTies:      &stats.Ties,
		fieldAbandoned: &stats.Abandoned,
	} {
		value, ok := response[field]
		if !ok {
			continue
		}

		if *target, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("failed to parse %s counter: %w", field, err)
		}
	}

	return stats, nil
}

func statsKey(name string) string {
	return statsKeyPrefix + entity.NormalizeName(name)
}

// statsFields maps each participant to the counter the result bumps for them.
func statsFields(result *entity.MatchResult) map[string]string {
	fields := make(map[string]string, 2)

	switch result.Outcome {
	case entity.ResultWon:
		fields[result.Winner] = fieldWins
		fields[result.Loser()] = fieldLosses
	case entity.ResultTied:
		fields[result.PlayerA] = fieldTies
		fields[result.PlayerB] = fieldTies
	case entity.ResultAborted:
		if result.Leaver != "" {
			fields[result.Leaver] = fieldAbandoned
		}
	}

	delete(fields, "")

	return fields
}

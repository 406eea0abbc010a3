package sched

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rs/zerolog"

	"ridi-pay/internal/infra/metrics"
)

// PoolSample is one reading of the connection pool counters.
type PoolSample struct {
	Total, Idle, InUse, Max int32
	EmptyAcquires           int64
}

// PoolStatsSampler periodically copies pool counters into the db_pool_stats gauges.
type PoolStatsSampler struct {
	interval time.Duration
	source   func() PoolSample
	log      *zerolog.Logger
}

func NewPoolStatsSampler(interval time.Duration, pool *pgxpool.Pool, logger *zerolog.Logger) *PoolStatsSampler {
	return newPoolStatsSampler(interval, func() PoolSample {
		st := pool.Stat()
		return PoolSample{
			Total:         st.TotalConns(),
			Idle:          st.IdleConns(),
			InUse:         st.AcquiredConns(),
			Max:           st.MaxConns(),
			EmptyAcquires: st.EmptyAcquireCount(),
		}
	}, logger)
}

func newPoolStatsSampler(interval time.Duration, source func() PoolSample, logger *zerolog.Logger) *PoolStatsSampler {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	compLog := logger.With().Str("component", "PoolStatsSampler").Logger()
	return &PoolStatsSampler{interval: interval, source: source, log: &compLog}
}

func (s *PoolStatsSampler) Run(ctx context.Context) error {
	s.log.Info().Dur("interval", s.interval).Msg("Starting pool stats sampler")
	s.sample()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("Stopping pool stats sampler")
			return ctx.Err()
		case <-ticker.C:
			s.sample()
		}
	}
}

func (s *PoolStatsSampler) sample() {
	p := s.source()
	metrics.SetDBPoolStats(p.Total, p.Idle, p.InUse, p.Max, p.EmptyAcquires)
	if p.Max > 0 && p.InUse == p.Max {
		s.log.Warn().Int32("max", p.Max).Msg("connection pool exhausted")
	}
}

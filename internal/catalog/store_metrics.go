package catalog

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	resultOK       = "ok"
	resultNotFound = "not_found"
	resultError    = "error"
)

// InstrumentedStore records the latency and outcome of every store call.
type InstrumentedStore struct {
	next Store
	dur  *prometheus.HistogramVec
}

func NewInstrumentedStore(next Store, reg prometheus.Registerer) *InstrumentedStore {
	dur := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_store_operation_duration_seconds",
			Help:    "Catalog store operation latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op", "result"},
	)
	reg.MustRegister(dur)

	return &InstrumentedStore{next: next, dur: dur}
}

func (s *InstrumentedStore) observe(op string, start time.Time, found bool, err error) {
	result := resultOK
	switch {
	case err != nil:
		result = resultError
	case !found:
		result = resultNotFound
	}
	s.dur.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

func (s *InstrumentedStore) Ping(ctx context.Context) error {
	start := time.Now()
	err := s.next.Ping(ctx)
	s.observe("ping", start, true, err)
	return err
}

func (s *InstrumentedStore) List(ctx context.Context, search string) ([]Product, error) {
	start := time.Now()
	out, err := s.next.List(ctx, search)
	s.observe("list", start, true, err)
	return out, err
}

func (s *InstrumentedStore) Create(ctx context.Context, in ProductInput) (Product, error) {
	start := time.Now()
	p, err := s.next.Create(ctx, in)
	s.observe("create", start, true, err)
	return p, err
}

func (s *InstrumentedStore) Get(ctx context.Context, id int64) (Product, bool, error) {
	start := time.Now()
	p, ok, err := s.next.Get(ctx, id)
	s.observe("get", start, ok, err)
	return p, ok, err
}

func (s *InstrumentedStore) Update(ctx context.Context, id int64, in ProductInput) (Product, bool, error) {
	start := time.Now()
	p, ok, err := s.next.Update(ctx, id, in)
	s.observe("update", start, ok, err)
	return p, ok, err
}

func (s *InstrumentedStore) Delete(ctx context.Context, id int64) (bool, error) {
	start := time.Now()
	ok, err := s.next.Delete(ctx, id)
	s.observe("delete", start, ok, err)
	return ok, err
}

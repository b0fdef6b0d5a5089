package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Observer captures telemetry for object store operations.
type Observer interface {
	RecordPut(bucket string, duration time.Duration, sizeBytes int64, err error)
	RecordOperation(op, bucket string, duration time.Duration, err error)
}

// PrometheusObserver exports object store metrics to Prometheus.
type PrometheusObserver struct {
	duration   *prometheus.HistogramVec
	errors     *prometheus.CounterVec
	bytesTotal *prometheus.CounterVec
}

// NewPrometheusObserver registers the storage metrics on reg (the default registerer when nil).
// Registering twice on the same registry reuses the existing collectors.
func NewPrometheusObserver(namespace string, reg prometheus.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "video_ingest_storage"
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	duration, err := registerCollector(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "operation_duration_seconds",
		Help:      "Latency of object store operations.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"operation", "bucket"}))
	if err != nil {
		return nil, err
	}
	errs, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "operation_errors_total",
		Help:      "Count of failed object store operations.",
	}, []string{"operation", "bucket"}))
	if err != nil {
		return nil, err
	}
	bytesTotal, err := registerCollector(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploaded_bytes_total",
		Help:      "Bytes successfully written to the object store.",
	}, []string{"bucket"}))
	if err != nil {
		return nil, err
	}

	return &PrometheusObserver{duration: duration, errors: errs, bytesTotal: bytesTotal}, nil
}

func registerCollector[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, fmt.Errorf("register storage metric: %w", err)
	}
	return c, nil
}

// RecordPut tracks upload duration, size and failures.
func (o *PrometheusObserver) RecordPut(bucket string, duration time.Duration, sizeBytes int64, err error) {
	if o == nil {
		return
	}
	o.RecordOperation("put", bucket, duration, err)
	if err == nil {
		o.bytesTotal.WithLabelValues(bucket).Add(float64(sizeBytes))
	}
}

func (o *PrometheusObserver) RecordOperation(op, bucket string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	o.duration.WithLabelValues(op, bucket).Observe(duration.Seconds())
	if err != nil {
		o.errors.WithLabelValues(op, bucket).Inc()
	}
}

type nopObserver struct{}

func (nopObserver) RecordPut(string, time.Duration, int64, error) {}

func (nopObserver) RecordOperation(string, string, time.Duration, error) {}

// InstrumentedStore decorates an ObjectStore with an Observer.
type InstrumentedStore struct {
	next     ObjectStore
	observer Observer
}

func NewInstrumentedStore(next ObjectStore, observer Observer) *InstrumentedStore {
	if observer == nil {
		observer = nopObserver{}
	}
	return &InstrumentedStore{next: next, observer: observer}
}

func (s *InstrumentedStore) EnsureBucket(ctx context.Context, bucket string) error {
	start := time.Now()
	err := s.next.EnsureBucket(ctx, bucket)
	s.observer.RecordOperation("ensure_bucket", bucket, time.Since(start), err)
	return err
}

func (s *InstrumentedStore) PutObject(ctx context.Context, bucket, key string, body io.Reader, length, partSize int64, contentType string) error {
	start := time.Now()
	err := s.next.PutObject(ctx, bucket, key, body, length, partSize, contentType)
	s.observer.RecordPut(bucket, time.Since(start), length, err)
	return err
}

func (s *InstrumentedStore) Exists(ctx context.Context, bucket, key string) (bool, error) {
	start := time.Now()
	ok, err := s.next.Exists(ctx, bucket, key)
	s.observer.RecordOperation("exists", bucket, time.Since(start), err)
	return ok, err
}

func (s *InstrumentedStore) ListKeys(ctx context.Context, bucket string) ([]string, error) {
	start := time.Now()
	keys, err := s.next.ListKeys(ctx, bucket)
	s.observer.RecordOperation("list", bucket, time.Since(start), err)
	return keys, err
}

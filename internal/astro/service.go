package astro

import (
	"context"
	"errors"

	"coopcontrol/internal/clock"
	"coopcontrol/internal/config"
	"coopcontrol/internal/events"
	"coopcontrol/internal/metrics"

	"go.uber.org/zap"
)

// Today asks the provider for the current date at the observer's location
const Today = "today"

// Service runs the daily acquisition: fetch, store, compare and announce
type Service struct {
	fetcher   *Fetcher
	store     *Store
	latitude  float64
	longitude float64
	clock     clock.Clock
	metrics   *metrics.Metrics
	events    events.Publisher
	logger    *zap.Logger
}

// NewService creates the acquisition service. m may be nil and pub defaults
// to a no-op publisher.
func NewService(fetcher *Fetcher, store *Store, app config.AppConfig, clk clock.Clock, m *metrics.Metrics, pub events.Publisher, logger *zap.Logger) *Service {
	if pub == nil {
		pub = events.NopPublisher{}
	}
	return &Service{
		fetcher:   fetcher,
		store:     store,
		latitude:  app.Latitude,
		longitude: app.Longitude,
		clock:     clk,
		metrics:   m,
		events:    pub,
		logger:    logger,
	}
}

// Store returns the underlying record store
func (s *Service) Store() *Store {
	return s.store
}

// AddDaily fetches data for date ("today" or YYYY-MM-DD) and stores it.
// It returns the id of the new or already existing record.
func (s *Service) AddDaily(ctx context.Context, date string) (uint, error) {
	if date == "" {
		date = Today
	}
	logger := s.logger.With(zap.String("date", date))
	if date == Today {
		logger = logger.With(zap.String("date_utc", clock.UTCDate(s.clock)))
	}

	raw, err := s.fetcher.Fetch(ctx, date, s.latitude, s.longitude)
	if err != nil {
		s.observeFetchError(logger, err)
		return 0, err
	}
	s.metrics.ObserveFetch(metrics.FetchOK)

	id, result, err := s.store.upsert(ctx, raw)
	if err != nil {
		logger.Error("Failed to store astronomical data", zap.Error(err))
		return 0, err
	}
	s.metrics.ObserveUpsert(result)
	s.metrics.MarkAstroSuccess(s.clock.Now())

	rec, err := normalize(raw)
	if err == nil {
		rec.ID = id
		if result != metrics.UpsertInserted {
			// The stored row wins over what was just fetched.
			stored, err := s.store.GetByDate(ctx, rec.Date)
			if err != nil {
				logger.Warn("Failed to read back stored record", zap.String("record_date", rec.Date), zap.Error(err))
			} else {
				rec = *stored
			}
		}
		s.checkEstimate(logger, rec)
		if result == metrics.UpsertInserted {
			if view, err := s.store.Render(rec); err == nil {
				s.events.Publish(events.TypeAstronomicalAdded, view)
			}
		}
	}

	logger.Info("Astronomical data initialized", zap.Uint("id", id), zap.String("result", result))
	return id, nil
}

func (s *Service) observeFetchError(logger *zap.Logger, err error) {
	var malformed *MalformedResponseError
	var transport *TransportError
	switch {
	case errors.As(err, &malformed):
		s.metrics.ObserveFetch(metrics.FetchMalformed)
		logger.Error("Malformed provider response", zap.Error(err))
		logger.Debug("Provider payload", zap.String("payload", malformed.Payload))
	case errors.As(err, &transport):
		s.metrics.ObserveFetch(metrics.FetchTransportError)
		logger.Error("API error", zap.Int("status_code", transport.StatusCode), zap.Error(err))
	default:
		s.metrics.ObserveFetch(metrics.FetchTransportError)
		logger.Error("Failed to fetch astronomical data", zap.Error(err))
	}
}

// checkEstimate warns when the provider disagrees with the local calculation
func (s *Service) checkEstimate(logger *zap.Logger, rec Record) {
	drift, ok := CompareWithEstimate(rec, s.latitude, s.longitude)
	if !ok {
		logger.Debug("No sunrise estimate available for record", zap.String("record_date", rec.Date))
		return
	}
	if drift.Exceeds(MaxEstimateDrift) {
		logger.Warn("Provider sun times differ from local estimate",
			zap.String("record_date", rec.Date),
			zap.Duration("sunrise_drift", drift.Sunrise),
			zap.Duration("sunset_drift", drift.Sunset))
	}
}

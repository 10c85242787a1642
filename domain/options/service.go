package options

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/akeren/event-registration/internal/log"
	"github.com/akeren/event-registration/internal/models"
	"github.com/akeren/event-registration/pkg/circuitbreaker"
	apperrors "github.com/akeren/event-registration/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	cacheKey = "form_options"
	cacheTTL = 30 * time.Second

	changesNotSavedMessage = "Changes were not saved. The registration database is currently unreachable."
)

// Cache is the subset of the application cache the options service uses.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

type OptionsService interface {
	// Get returns the current lists, falling back to the built-in defaults
	// per list when nothing usable is stored or the store is unreachable.
	Get(ctx context.Context) models.FormOptions

	// Save persists both lists and reports success. It never returns an error.
	Save(ctx context.Context, opts models.FormOptions) bool

	// Update adds or removes one value.
	Update(ctx context.Context, req *UpdateOptionRequest) (*OptionsResponse, error)

	// Reorder applies a desired order to one list.
	Reorder(ctx context.Context, req *ReorderOptionsRequest) (*OptionsResponse, error)

	// Seed writes the defaults when no options document exists yet.
	Seed(ctx context.Context) (bool, error)
}

type optionsService struct {
	logger     *log.Logger
	repository OptionsRepository
	cache      Cache
	breaker    circuitbreaker.CircuitBreaker
	saves      *prometheus.CounterVec
}

func NewOptionsService(logger *log.Logger, repository OptionsRepository, cache Cache, reg prometheus.Registerer) OptionsService {
	return &optionsService{
		logger:     logger,
		repository: repository,
		cache:      cache,
		breaker: circuitbreaker.NewCircuitBreaker(&circuitbreaker.Config{
			FailureThreshold: 3,
			RecoveryTimeout:  15 * time.Second,
			SuccessThreshold: 1,
			// A corrupt document is not an outage.
			Trips: func(err error) bool {
				return apperrors.IsType(err, apperrors.ErrorTypeServiceUnavailable)
			},
			OnStateChange: func(from, to circuitbreaker.CircuitState) {
				logger.Warn("Options store circuit changed", "from", from.String(), "to", to.String())
			},
		}),
		saves: newSavesCounter(reg),
	}
}

func (s *optionsService) Get(ctx context.Context) models.FormOptions {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if cached, ok := s.readCache(ctx); ok {
		return cached
	}

	resolved, err := s.load(ctx)
	if err != nil {
		logger.Warn("Using default form options", "error", err)
		return models.DefaultFormOptions()
	}

	s.writeCache(ctx, resolved)
	return resolved
}

// load reads the persisted lists through the breaker without falling back.
// Edits start from it so a failed read can never be saved over real data.
func (s *optionsService) load(ctx context.Context) (models.FormOptions, error) {
	var stored *models.FormOptions
	err := s.breaker.Call(func() error {
		var loadErr error
		stored, loadErr = s.repository.Load(ctx)
		return loadErr
	})
	if errors.Is(err, circuitbreaker.ErrCircuitOpen) {
		return models.FormOptions{}, apperrors.NewServiceUnavailableError(storeUnavailableMessage, err)
	}
	if err != nil {
		return models.FormOptions{}, err
	}

	return resolve(stored), nil
}

func (s *optionsService) editBase(ctx context.Context) (models.FormOptions, error) {
	current, err := s.load(ctx)
	if err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Form options unreadable, edit rejected", "error", err)
		return models.FormOptions{}, apperrors.NewServiceUnavailableError(changesNotSavedMessage, err)
	}
	return current, nil
}

func (s *optionsService) Save(ctx context.Context, opts models.FormOptions) bool {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if err := s.repository.Save(ctx, opts); err != nil {
		logger.Error("Failed to save form options", "error", err)
		s.saves.WithLabelValues("failed").Inc()
		return false
	}

	if s.cache != nil {
		if err := s.cache.Delete(ctx, cacheKey); err != nil {
			logger.Warn("Failed to invalidate cached form options", "error", err)
		}
	}

	s.saves.WithLabelValues("saved").Inc()
	return true
}

func (s *optionsService) Update(ctx context.Context, req *UpdateOptionRequest) (*OptionsResponse, error) {
	logger := log.GetLoggerInstanceFromContext(ctx, s.logger)

	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	optionType := models.OptionType(strings.TrimSpace(req.OptionType))
	value := strings.TrimSpace(req.Value)
	if !optionType.IsValid() || value == "" {
		logger.Warn("Rejected option update", "option_type", req.OptionType)
		return nil, apperrors.NewInvalidRequestError("Please provide a valid value.", nil)
	}

	current, err := s.editBase(ctx)
	if err != nil {
		return nil, err
	}
	list := current.List(optionType)

	var next []string
	switch strings.TrimSpace(req.Action) {
	case "", ActionAdd:
		next = Add(list, value)
	case ActionRemove:
		next = Remove(list, value)
	default:
		return nil, apperrors.NewInvalidRequestError("action must be add or remove", nil)
	}

	return s.persist(ctx, current.WithList(optionType, next))
}

func (s *optionsService) Reorder(ctx context.Context, req *ReorderOptionsRequest) (*OptionsResponse, error) {
	if req == nil {
		return nil, apperrors.NewInvalidRequestError("request cannot be nil", nil)
	}

	optionType := models.OptionType(strings.TrimSpace(req.OptionType))
	if !optionType.IsValid() {
		return nil, apperrors.NewInvalidRequestError("option_type must be college or course", nil)
	}

	current, err := s.editBase(ctx)
	if err != nil {
		return nil, err
	}
	next := Reorder(current.List(optionType), req.Order)

	return s.persist(ctx, current.WithList(optionType, next))
}

func (s *optionsService) Seed(ctx context.Context) (bool, error) {
	seeded, err := s.repository.SeedIfMissing(ctx, models.DefaultFormOptions())
	if err != nil {
		return false, err
	}
	if seeded && s.cache != nil {
		_ = s.cache.Delete(ctx, cacheKey)
	}
	return seeded, nil
}

func (s *optionsService) persist(ctx context.Context, next models.FormOptions) (*OptionsResponse, error) {
	if !s.Save(ctx, next) {
		return nil, apperrors.NewServiceUnavailableError(changesNotSavedMessage, nil)
	}
	resp := ToOptionsResponse(next)
	return &resp, nil
}

func (s *optionsService) readCache(ctx context.Context) (models.FormOptions, bool) {
	if s.cache == nil {
		return models.FormOptions{}, false
	}

	raw, err := s.cache.Get(ctx, cacheKey)
	if err != nil || raw == "" {
		return models.FormOptions{}, false
	}

	var opts models.FormOptions
	if err := json.Unmarshal([]byte(raw), &opts); err != nil {
		return models.FormOptions{}, false
	}

	return opts, true
}

func (s *optionsService) writeCache(ctx context.Context, opts models.FormOptions) {
	if s.cache == nil {
		return
	}

	raw, err := json.Marshal(opts)
	if err != nil {
		return
	}

	if err := s.cache.Set(ctx, cacheKey, string(raw), cacheTTL); err != nil {
		log.GetLoggerInstanceFromContext(ctx, s.logger).Warn("Failed to cache form options", "error", err)
	}
}

// resolve applies the defaults to each missing or empty list.
func resolve(stored *models.FormOptions) models.FormOptions {
	resolved := models.DefaultFormOptions()
	if stored == nil {
		return resolved
	}
	if len(stored.Colleges) > 0 {
		resolved.Colleges = append([]string(nil), stored.Colleges...)
	}
	if len(stored.Courses) > 0 {
		resolved.Courses = append([]string(nil), stored.Courses...)
	}
	return resolved
}

func newSavesCounter(reg prometheus.Registerer) *prometheus.CounterVec {
	counter := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "options_saves_total",
			Help: "Form option saves by result.",
		},
		[]string{"result"},
	)

	if reg != nil {
		if err := reg.Register(counter); err != nil {
			if already, ok := err.(prometheus.AlreadyRegisteredError); ok {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					return existing
				}
			}
		}
	}

	return counter
}

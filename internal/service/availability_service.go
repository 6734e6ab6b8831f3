package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/models"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
)

const dateLayout = models.OverrideDateLayout

type providerReader interface {
	FindByID(ctx context.Context, id string) (*models.Provider, error)
	FindByUserID(ctx context.Context, userID string) (*models.Provider, error)
}

type templateReader interface {
	FindByProvider(ctx context.Context, providerID string) (*models.WeeklyTemplate, error)
}

type overrideReader interface {
	ListRange(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error)
}

type appointmentReader interface {
	ListActiveInRange(ctx context.Context, providerID string, from, to time.Time) ([]models.Appointment, error)
}

// AvailabilityService resolves a provider's bookable slots by merging the
// weekly template, date overrides and the appointment ledger. All slot
// arithmetic happens in the provider's timezone; ledger timestamps are UTC
// and are converted on the way in.
type AvailabilityService struct {
	providers        providerReader
	templates        templateReader
	overrides        overrideReader
	appointments     appointmentReader
	cache            *CacheService
	metrics          *MetricsService
	validator        *validator.Validate
	logger           *zap.Logger
	cacheTTL         time.Duration
	maxRangeDays     int
	minNoticeMinutes int
	now              func() time.Time
}

// NewAvailabilityService constructs the resolver.
func NewAvailabilityService(
	providers providerReader,
	templates templateReader,
	overrides overrideReader,
	appointments appointmentReader,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	cacheTTL time.Duration,
	maxRangeDays int,
	minNoticeMinutes int,
) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxRangeDays <= 0 {
		maxRangeDays = 60
	}
	return &AvailabilityService{
		providers:        providers,
		templates:        templates,
		overrides:        overrides,
		appointments:     appointments,
		cache:            cache,
		metrics:          metrics,
		validator:        validate,
		logger:           logger,
		cacheTTL:         cacheTTL,
		maxRangeDays:     maxRangeDays,
		minNoticeMinutes: minNoticeMinutes,
		now:              time.Now,
	}
}

// WithNow overrides the clock source. Test hook.
func (s *AvailabilityService) WithNow(now func() time.Time) *AvailabilityService {
	s.now = now
	return s
}

// Resolve returns the open slots per date for the requested range, both
// bounds inclusive. Results are cached per (provider, range) and invalidated
// on any write touching the provider's schedule or ledger.
func (s *AvailabilityService) Resolve(ctx context.Context, query dto.AvailabilityQuery) (*dto.AvailabilityResponse, error) {
	if err := s.validator.Struct(query); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	from, err := time.Parse(dateLayout, query.From)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, query.To)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD")
	}
	if to.Before(from) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not precede from")
	}
	if int(to.Sub(from).Hours()/24) >= s.maxRangeDays {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("date range exceeds %d days", s.maxRangeDays))
	}

	cacheKey := fmt.Sprintf("availability:%s:%s:%s", query.ProviderID, query.From, query.To)
	if s.cache != nil {
		var cached dto.AvailabilityResponse
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}

	started := time.Now()
	result, err := s.resolveRange(ctx, query.ProviderID, query.From, query.To)
	if err != nil {
		return nil, err
	}
	s.metrics.ObserveAvailabilityResolve(time.Since(started))

	if s.cache != nil {
		_ = s.cache.Set(ctx, cacheKey, result, s.cacheTTL)
	}
	return result, nil
}

// OpenSlotsForDate recomputes availability for a single date against current
// ledger state, bypassing the cache. The booking write path uses this so it
// never trusts a slot list from an earlier read.
func (s *AvailabilityService) OpenSlotsForDate(ctx context.Context, provider *models.Provider, template *models.WeeklyTemplate, date string) ([]models.BookableSlot, error) {
	loc := provider.Location()
	dayStart, err := time.ParseInLocation(dateLayout, date, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must be formatted YYYY-MM-DD")
	}

	overrides, err := s.overrides.ListRange(ctx, provider.ID, date, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule overrides")
	}
	var override *models.ScheduleOverride
	if len(overrides) > 0 {
		override = &overrides[0]
	}

	dayEnd := dayStart.AddDate(0, 0, 1)
	appointments, err := s.appointments.ListActiveInRange(ctx, provider.ID, dayStart.UTC(), dayEnd.UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}

	return s.resolveDay(provider, template, override, appointments, dayStart, loc), nil
}

// InvalidateProvider drops every cached availability range for the provider.
func (s *AvailabilityService) InvalidateProvider(ctx context.Context, providerID string) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, fmt.Sprintf("availability:%s:*", providerID))
}

func (s *AvailabilityService) resolveRange(ctx context.Context, providerID, from, to string) (*dto.AvailabilityResponse, error) {
	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Unknown provider resolves to "fully unavailable", not an error.
			s.logger.Info("availability requested for unknown provider", zap.String("provider_id", providerID))
			return emptyRange(providerID, from, to), nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}

	template, err := s.templates.FindByProvider(ctx, providerID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly template")
		}
		template = nil
	}

	overrides, err := s.overrides.ListRange(ctx, providerID, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule overrides")
	}
	overridesByDate := make(map[string]*models.ScheduleOverride, len(overrides))
	for i := range overrides {
		overridesByDate[overrides[i].Date] = &overrides[i]
	}

	loc := provider.Location()
	rangeStart, err := time.ParseInLocation(dateLayout, from, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "from must be formatted YYYY-MM-DD")
	}
	rangeEnd, err := time.ParseInLocation(dateLayout, to, loc)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must be formatted YYYY-MM-DD")
	}
	rangeEnd = rangeEnd.AddDate(0, 0, 1)

	appointments, err := s.appointments.ListActiveInRange(ctx, providerID, rangeStart.UTC(), rangeEnd.UTC())
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load appointments")
	}

	response := &dto.AvailabilityResponse{ProviderID: providerID, Timezone: provider.Timezone}
	for day := rangeStart; day.Before(rangeEnd); day = day.AddDate(0, 0, 1) {
		date := day.Format(dateLayout)
		slots := s.resolveDay(provider, template, overridesByDate[date], appointments, day, loc)
		response.Days = append(response.Days, models.DayAvailability{Date: date, Slots: slots})
	}
	return response, nil
}

// resolveDay merges the slot sources for one calendar date. Precedence:
// blocked override wins outright, then a custom override replaces the
// template wholesale, then the template weekday applies when enabled.
func (s *AvailabilityService) resolveDay(provider *models.Provider, template *models.WeeklyTemplate, override *models.ScheduleOverride, appointments []models.Appointment, dayStart time.Time, loc *time.Location) []models.BookableSlot {
	// The template carries the session duration, so a provider without one
	// is fully unavailable even on custom-override days.
	if template == nil || template.SessionDurationMinutes <= 0 {
		return nil
	}

	var candidates []models.TimeSlot
	switch {
	case override != nil && override.Kind == models.OverrideKindBlocked:
		return nil
	case override != nil && override.Kind == models.OverrideKindCustom:
		candidates = override.Slots
	default:
		day := template.Day(dayStart.Weekday())
		if day == nil || !day.Enabled {
			return nil
		}
		candidates = day.Slots
	}

	intervals, err := validateIntervals(candidates)
	if err != nil {
		// Stored slots are validated at write time; a violation here means
		// corrupt data. Reject the whole date rather than guessing.
		s.logger.Warn("rejecting date with invalid stored slots",
			zap.String("provider_id", provider.ID),
			zap.String("date", dayStart.Format(dateLayout)),
			zap.Error(err))
		return nil
	}

	duration := template.SessionDurationMinutes
	minStart := s.now().Add(time.Duration(s.minNoticeMinutes) * time.Minute)

	var open []models.BookableSlot
	year, month, dayOfMonth := dayStart.Date()
	for _, interval := range intervals {
		for t := interval.start; t+duration <= interval.end; t += duration {
			slotStart := time.Date(year, month, dayOfMonth, t/60, t%60, 0, 0, loc)
			slotEnd := time.Date(year, month, dayOfMonth, (t+duration)/60, (t+duration)%60, 0, 0, loc)
			if slotStart.Before(minStart) {
				continue
			}
			if overlapsAny(slotStart, slotEnd, appointments) {
				continue
			}
			open = append(open, models.BookableSlot{
				Start:    models.FormatClock(t),
				End:      models.FormatClock(t + duration),
				StartsAt: slotStart.UTC(),
				EndsAt:   slotEnd.UTC(),
			})
		}
	}
	return open
}

type minuteInterval struct {
	start int
	end   int
}

// validateIntervals parses and orders candidate slots, failing on inverted
// bounds or overlap between slots of the same day.
func validateIntervals(slots []models.TimeSlot) ([]minuteInterval, error) {
	intervals := make([]minuteInterval, 0, len(slots))
	for _, slot := range slots {
		start, end, err := slot.Minutes()
		if err != nil {
			return nil, err
		}
		if start >= end {
			return nil, fmt.Errorf("slot %s-%s has inverted bounds", slot.Start, slot.End)
		}
		intervals = append(intervals, minuteInterval{start: start, end: end})
	}
	sort.Slice(intervals, func(i, j int) bool { return intervals[i].start < intervals[j].start })
	for i := 1; i < len(intervals); i++ {
		if intervals[i].start < intervals[i-1].end {
			return nil, fmt.Errorf("slots overlap at %s", models.FormatClock(intervals[i].start))
		}
	}
	return intervals, nil
}

// overlapsAny reports whether any non-cancelled appointment intersects the
// half-open interval [slotStart, slotEnd). Boundary-touching intervals do
// not conflict.
func overlapsAny(slotStart, slotEnd time.Time, appointments []models.Appointment) bool {
	for i := range appointments {
		a := &appointments[i]
		if !a.Active() {
			continue
		}
		if a.ScheduledAt.Before(slotEnd) && a.EndsAt().After(slotStart) {
			return true
		}
	}
	return false
}

func emptyRange(providerID, from, to string) *dto.AvailabilityResponse {
	response := &dto.AvailabilityResponse{ProviderID: providerID}
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return response
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return response
	}
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		response.Days = append(response.Days, models.DayAvailability{Date: day.Format(dateLayout)})
	}
	return response
}

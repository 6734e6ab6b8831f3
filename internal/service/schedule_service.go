package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/models"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
)

type templateWriter interface {
	FindByProvider(ctx context.Context, providerID string) (*models.WeeklyTemplate, error)
	Save(ctx context.Context, exec sqlx.ExtContext, template *models.WeeklyTemplate) error
}

type overrideWriter interface {
	ListRange(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error)
	ReplaceAllFuture(ctx context.Context, providerID, fromDate string, overrides []models.ScheduleOverride) error
}

// ScheduleService lets providers edit their weekly template and date
// overrides. All slot validation happens here, at write time; readers
// assume stored slots are well formed.
type ScheduleService struct {
	providers providerReader
	templates templateWriter
	overrides overrideWriter
	resolver  cacheInvalidator
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

type cacheInvalidator interface {
	InvalidateProvider(ctx context.Context, providerID string)
}

// NewScheduleService constructs the service.
func NewScheduleService(
	providers providerReader,
	templates templateWriter,
	overrides overrideWriter,
	resolver cacheInvalidator,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		providers: providers,
		templates: templates,
		overrides: overrides,
		resolver:  resolver,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// WithNow overrides the clock source. Test hook.
func (s *ScheduleService) WithNow(now func() time.Time) *ScheduleService {
	s.now = now
	return s
}

// SaveTemplate replaces the caller's weekly template wholesale.
func (s *ScheduleService) SaveTemplate(ctx context.Context, userID string, req dto.SaveTemplateRequest) (*models.WeeklyTemplate, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid template payload")
	}

	provider, err := s.findProviderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byWeekday := make(map[time.Weekday]dto.TemplateDayRequest, len(req.Days))
	for _, day := range req.Days {
		weekday := time.Weekday(day.Weekday)
		if _, dup := byWeekday[weekday]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate entry for weekday %s", weekday))
		}
		if day.Enabled {
			if len(day.Slots) == 0 {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s is enabled but has no slots", weekday))
			}
			if _, err := validateIntervals(day.Slots); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid slots for %s", weekday))
			}
		}
		byWeekday[weekday] = day
	}

	template := &models.WeeklyTemplate{
		ProviderID:             provider.ID,
		SessionDurationMinutes: req.SessionDurationMinutes,
		Days:                   make(models.DayList, 0, 7),
	}
	for weekday := time.Sunday; weekday <= time.Saturday; weekday++ {
		entry := models.TemplateDay{Weekday: weekday}
		if day, ok := byWeekday[weekday]; ok {
			entry.Enabled = day.Enabled
			entry.Slots = day.Slots
		}
		template.Days = append(template.Days, entry)
	}

	if err := s.templates.Save(ctx, nil, template); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save weekly template")
	}

	s.resolver.InvalidateProvider(ctx, provider.ID)
	s.logger.Info("weekly template saved", zap.String("provider_id", provider.ID))
	return template, nil
}

// SaveOverrides replaces all of the caller's future-dated overrides with the
// provided set. Past-dated entries are dropped silently so a stale form does
// not block the provider.
func (s *ScheduleService) SaveOverrides(ctx context.Context, userID string, req dto.SaveOverridesRequest) ([]models.ScheduleOverride, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid overrides payload")
	}

	provider, err := s.findProviderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	today := s.now().In(provider.Location()).Format(dateLayout)
	seen := make(map[string]models.OverrideKind)
	overrides := make([]models.ScheduleOverride, 0, len(req.Custom)+len(req.Blocked))

	for _, date := range req.Blocked {
		if _, err := time.Parse(dateLayout, date); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid blocked date %q", date))
		}
		if date < today {
			continue
		}
		if _, dup := seen[date]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate override for %s", date))
		}
		seen[date] = models.OverrideKindBlocked
		overrides = append(overrides, models.ScheduleOverride{
			ProviderID: provider.ID,
			Date:       date,
			Kind:       models.OverrideKindBlocked,
		})
	}

	for _, custom := range req.Custom {
		if _, err := time.Parse(dateLayout, custom.Date); err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid override date %q", custom.Date))
		}
		if custom.Date < today {
			// Stale past rows from an old form are dropped, not rejected.
			continue
		}
		if _, err := validateIntervals(custom.Slots); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid slots for %s", custom.Date))
		}
		if _, dup := seen[custom.Date]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate override for %s", custom.Date))
		}
		seen[custom.Date] = models.OverrideKindCustom
		overrides = append(overrides, models.ScheduleOverride{
			ProviderID: provider.ID,
			Date:       custom.Date,
			Kind:       models.OverrideKindCustom,
			Slots:      models.SlotList(custom.Slots),
		})
	}

	sort.Slice(overrides, func(i, j int) bool { return overrides[i].Date < overrides[j].Date })

	if err := s.overrides.ReplaceAllFuture(ctx, provider.ID, today, overrides); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save overrides")
	}

	s.resolver.InvalidateProvider(ctx, provider.ID)
	s.logger.Info("schedule overrides replaced",
		zap.String("provider_id", provider.ID),
		zap.Int("count", len(overrides)))
	return overrides, nil
}

// Template returns the caller's current weekly template.
func (s *ScheduleService) Template(ctx context.Context, userID string) (*models.WeeklyTemplate, error) {
	provider, err := s.findProviderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	template, err := s.templates.FindByProvider(ctx, provider.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no weekly template saved yet")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load weekly template")
	}
	return template, nil
}

// Overrides returns the caller's overrides from today onwards.
func (s *ScheduleService) Overrides(ctx context.Context, userID string) ([]models.ScheduleOverride, error) {
	provider, err := s.findProviderByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := s.now().In(provider.Location())
	horizon := today.AddDate(1, 0, 0)
	overrides, err := s.overrides.ListRange(ctx, provider.ID, today.Format(dateLayout), horizon.Format(dateLayout))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load overrides")
	}
	return overrides, nil
}

func (s *ScheduleService) findProviderByUser(ctx context.Context, userID string) (*models.Provider, error) {
	if userID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	provider, err := s.providers.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "provider profile not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load provider")
	}
	return provider, nil
}

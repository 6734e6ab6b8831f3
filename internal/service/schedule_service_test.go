package service

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/models"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
)

func (s *templateRepoStub) Save(ctx context.Context, exec sqlx.ExtContext, template *models.WeeklyTemplate) error {
	if s.err != nil {
		return s.err
	}
	s.saved = append(s.saved, template)
	s.template = template
	return nil
}

type overrideStoreStub struct {
	overrides    []models.ScheduleOverride
	err          error
	replacedFrom string
	replaced     []models.ScheduleOverride
}

func (s *overrideStoreStub) ListRange(ctx context.Context, providerID, from, to string) ([]models.ScheduleOverride, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.overrides, nil
}

func (s *overrideStoreStub) ReplaceAllFuture(ctx context.Context, providerID, fromDate string, overrides []models.ScheduleOverride) error {
	if s.err != nil {
		return s.err
	}
	s.replacedFrom = fromDate
	s.replaced = overrides
	return nil
}

type invalidatorStub struct {
	invalidated []string
}

func (s *invalidatorStub) InvalidateProvider(ctx context.Context, providerID string) {
	s.invalidated = append(s.invalidated, providerID)
}

func newScheduleService(templates *templateRepoStub, overrides *overrideStoreStub, invalidator *invalidatorStub) *ScheduleService {
	providers := &providerRepoStub{byUser: map[string]*models.Provider{"user-prov-1": utcProvider()}}
	svc := NewScheduleService(providers, templates, overrides, invalidator, nil, zap.NewNop())
	return svc.WithNow(func() time.Time { return time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC) })
}

func TestSaveTemplateNormalizesToSevenDays(t *testing.T) {
	templates := &templateRepoStub{}
	invalidator := &invalidatorStub{}
	svc := newScheduleService(templates, &overrideStoreStub{}, invalidator)

	template, err := svc.SaveTemplate(context.Background(), "user-prov-1", dto.SaveTemplateRequest{
		SessionDurationMinutes: 60,
		Days: []dto.TemplateDayRequest{
			{Weekday: int(time.Monday), Enabled: true, Slots: []models.TimeSlot{{Start: "09:00", End: "11:00"}}},
			{Weekday: int(time.Wednesday), Enabled: true, Slots: []models.TimeSlot{{Start: "13:00", End: "17:00"}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, template.Days, 7)
	assert.True(t, template.Days[time.Monday].Enabled)
	assert.False(t, template.Days[time.Tuesday].Enabled)
	assert.Empty(t, template.Days[time.Tuesday].Slots)
	require.Len(t, templates.saved, 1)
	assert.Equal(t, []string{"prov-1"}, invalidator.invalidated)
}

func TestSaveTemplateRejectsDuplicateWeekday(t *testing.T) {
	svc := newScheduleService(&templateRepoStub{}, &overrideStoreStub{}, &invalidatorStub{})

	_, err := svc.SaveTemplate(context.Background(), "user-prov-1", dto.SaveTemplateRequest{
		SessionDurationMinutes: 60,
		Days: []dto.TemplateDayRequest{
			{Weekday: int(time.Monday), Enabled: true, Slots: []models.TimeSlot{{Start: "09:00", End: "11:00"}}},
			{Weekday: int(time.Monday), Enabled: true, Slots: []models.TimeSlot{{Start: "13:00", End: "15:00"}}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSaveTemplateRejectsOverlappingSlots(t *testing.T) {
	svc := newScheduleService(&templateRepoStub{}, &overrideStoreStub{}, &invalidatorStub{})

	_, err := svc.SaveTemplate(context.Background(), "user-prov-1", dto.SaveTemplateRequest{
		SessionDurationMinutes: 60,
		Days: []dto.TemplateDayRequest{
			{Weekday: int(time.Monday), Enabled: true, Slots: []models.TimeSlot{
				{Start: "09:00", End: "12:00"},
				{Start: "11:00", End: "14:00"},
			}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSaveTemplateRejectsInvertedSlot(t *testing.T) {
	svc := newScheduleService(&templateRepoStub{}, &overrideStoreStub{}, &invalidatorStub{})

	_, err := svc.SaveTemplate(context.Background(), "user-prov-1", dto.SaveTemplateRequest{
		SessionDurationMinutes: 60,
		Days: []dto.TemplateDayRequest{
			{Weekday: int(time.Monday), Enabled: true, Slots: []models.TimeSlot{{Start: "11:00", End: "09:00"}}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSaveTemplateRejectsEnabledDayWithoutSlots(t *testing.T) {
	svc := newScheduleService(&templateRepoStub{}, &overrideStoreStub{}, &invalidatorStub{})

	_, err := svc.SaveTemplate(context.Background(), "user-prov-1", dto.SaveTemplateRequest{
		SessionDurationMinutes: 60,
		Days: []dto.TemplateDayRequest{
			{Weekday: int(time.Monday), Enabled: true},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSaveTemplateRequiresProviderProfile(t *testing.T) {
	providers := &providerRepoStub{byUser: map[string]*models.Provider{}}
	svc := NewScheduleService(providers, &templateRepoStub{}, &overrideStoreStub{}, &invalidatorStub{}, nil, zap.NewNop())

	_, err := svc.SaveTemplate(context.Background(), "user-someone", dto.SaveTemplateRequest{
		SessionDurationMinutes: 60,
		Days: []dto.TemplateDayRequest{
			{Weekday: int(time.Monday), Enabled: true, Slots: []models.TimeSlot{{Start: "09:00", End: "11:00"}}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSaveOverridesReplacesFromToday(t *testing.T) {
	overrides := &overrideStoreStub{}
	invalidator := &invalidatorStub{}
	svc := newScheduleService(&templateRepoStub{}, overrides, invalidator)

	saved, err := svc.SaveOverrides(context.Background(), "user-prov-1", dto.SaveOverridesRequest{
		Blocked: []string{"2026-09-10"},
		Custom: []dto.CustomOverrideRequest{
			{Date: "2026-09-08", Slots: []models.TimeSlot{{Start: "13:00", End: "14:00"}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-09-01", overrides.replacedFrom)
	require.Len(t, saved, 2)
	// Sorted by date regardless of submission order.
	assert.Equal(t, "2026-09-08", saved[0].Date)
	assert.Equal(t, models.OverrideKindCustom, saved[0].Kind)
	assert.Equal(t, "2026-09-10", saved[1].Date)
	assert.Equal(t, models.OverrideKindBlocked, saved[1].Kind)
	assert.Equal(t, []string{"prov-1"}, invalidator.invalidated)
}

func TestSaveOverridesDropsPastDatesSilently(t *testing.T) {
	overrides := &overrideStoreStub{}
	svc := newScheduleService(&templateRepoStub{}, overrides, &invalidatorStub{})

	saved, err := svc.SaveOverrides(context.Background(), "user-prov-1", dto.SaveOverridesRequest{
		Blocked: []string{"2026-08-20", "2026-09-10"},
		Custom: []dto.CustomOverrideRequest{
			// Past rows are dropped before slot validation, so a stale
			// malformed entry does not fail the whole request.
			{Date: "2026-08-15", Slots: []models.TimeSlot{{Start: "14:00", End: "13:00"}}},
		},
	})
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "2026-09-10", saved[0].Date)
}

func TestSaveOverridesRejectsDuplicateDate(t *testing.T) {
	svc := newScheduleService(&templateRepoStub{}, &overrideStoreStub{}, &invalidatorStub{})

	_, err := svc.SaveOverrides(context.Background(), "user-prov-1", dto.SaveOverridesRequest{
		Blocked: []string{"2026-09-10"},
		Custom: []dto.CustomOverrideRequest{
			{Date: "2026-09-10", Slots: []models.TimeSlot{{Start: "13:00", End: "14:00"}}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSaveOverridesRejectsBadSlots(t *testing.T) {
	svc := newScheduleService(&templateRepoStub{}, &overrideStoreStub{}, &invalidatorStub{})

	_, err := svc.SaveOverrides(context.Background(), "user-prov-1", dto.SaveOverridesRequest{
		Custom: []dto.CustomOverrideRequest{
			{Date: "2026-09-10", Slots: []models.TimeSlot{{Start: "14:00", End: "13:00"}}},
		},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSaveOverridesRejectsMalformedDate(t *testing.T) {
	svc := newScheduleService(&templateRepoStub{}, &overrideStoreStub{}, &invalidatorStub{})

	_, err := svc.SaveOverrides(context.Background(), "user-prov-1", dto.SaveOverridesRequest{
		Blocked: []string{"10-09-2026"},
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

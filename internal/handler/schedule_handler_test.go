package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindwell-care/scheduling-api/internal/dto"
	"github.com/mindwell-care/scheduling-api/internal/middleware"
	"github.com/mindwell-care/scheduling-api/internal/models"
	appErrors "github.com/mindwell-care/scheduling-api/pkg/errors"
)

type scheduleServiceMock struct {
	template         *models.WeeklyTemplate
	templateErr      error
	overrides        []models.ScheduleOverride
	overridesErr     error
	lastTemplateReq  dto.SaveTemplateRequest
	lastOverridesReq dto.SaveOverridesRequest
	saveCalled       bool
}

func (m *scheduleServiceMock) Template(ctx context.Context, userID string) (*models.WeeklyTemplate, error) {
	return m.template, m.templateErr
}

func (m *scheduleServiceMock) SaveTemplate(ctx context.Context, userID string, req dto.SaveTemplateRequest) (*models.WeeklyTemplate, error) {
	m.saveCalled = true
	m.lastTemplateReq = req
	return m.template, m.templateErr
}

func (m *scheduleServiceMock) Overrides(ctx context.Context, userID string) ([]models.ScheduleOverride, error) {
	return m.overrides, m.overridesErr
}

func (m *scheduleServiceMock) SaveOverrides(ctx context.Context, userID string, req dto.SaveOverridesRequest) ([]models.ScheduleOverride, error) {
	m.saveCalled = true
	m.lastOverridesReq = req
	return m.overrides, m.overridesErr
}

func providerContext(w *httptest.ResponseRecorder) *gin.Context {
	c, _ := gin.CreateTestContext(w)
	c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-prov-1", Role: models.RoleProvider})
	return c
}

func TestScheduleHandlerSaveTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{
		template: &models.WeeklyTemplate{ProviderID: "prov-1", SessionDurationMinutes: 60},
	}
	handler := NewScheduleHandler(mockSvc)

	payload, _ := json.Marshal(dto.SaveTemplateRequest{
		SessionDurationMinutes: 60,
		Days: []dto.TemplateDayRequest{
			{Weekday: int(time.Monday), Enabled: true, Slots: []models.TimeSlot{{Start: "09:00", End: "11:00"}}},
		},
	})
	w := httptest.NewRecorder()
	c := providerContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/schedule/template", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.SaveTemplate(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, mockSvc.saveCalled)
	assert.Equal(t, 60, mockSvc.lastTemplateReq.SessionDurationMinutes)
}

func TestScheduleHandlerSaveTemplateInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{}
	handler := NewScheduleHandler(mockSvc)

	w := httptest.NewRecorder()
	c := providerContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/schedule/template", bytes.NewBufferString(`{"days":`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.SaveTemplate(c)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, mockSvc.saveCalled)
}

func TestScheduleHandlerSaveTemplateUnauthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(&scheduleServiceMock{})

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/schedule/template", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.SaveTemplate(c)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestScheduleHandlerSaveOverrides(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &scheduleServiceMock{
		overrides: []models.ScheduleOverride{{Date: "2026-09-10", Kind: models.OverrideKindBlocked}},
	}
	handler := NewScheduleHandler(mockSvc)

	payload, _ := json.Marshal(dto.SaveOverridesRequest{Blocked: []string{"2026-09-10"}})
	w := httptest.NewRecorder()
	c := providerContext(w)
	req, _ := http.NewRequest(http.MethodPut, "/schedule/overrides", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.SaveOverrides(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"2026-09-10"}, mockSvc.lastOverridesReq.Blocked)
}

func TestScheduleHandlerGetTemplateNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewScheduleHandler(&scheduleServiceMock{
		templateErr: appErrors.Clone(appErrors.ErrNotFound, "no weekly template saved yet"),
	})

	w := httptest.NewRecorder()
	c := providerContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/schedule/template", nil)
	c.Request = req

	handler.GetTemplate(c)
	require.Equal(t, http.StatusNotFound, w.Code)
}

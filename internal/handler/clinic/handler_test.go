package clinic

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/healthflow/clinic-api/internal/handler"
	"github.com/healthflow/clinic-api/internal/middleware"
	"github.com/healthflow/clinic-api/internal/model"
	clinicService "github.com/healthflow/clinic-api/internal/service/clinic"
	"github.com/healthflow/clinic-api/pkg/auth"
	apperrors "github.com/healthflow/clinic-api/pkg/errors"
)

// stubService cans responses per method; unset methods return zero values.
type stubService struct {
	clinicService.ClinicServicer

	getFn    func(ctx context.Context, id uuid.UUID) (*model.ClinicDetail, error)
	createFn func(ctx context.Context, in *clinicService.CreateClinicInput, actorID uuid.UUID) (*model.Clinic, error)
	deleteFn func(ctx context.Context, id, actorID uuid.UUID) error
	statsFn  func(ctx context.Context, clinicID uuid.UUID, rng model.StatsRange) (*model.ClinicStats, error)
}

func (s *stubService) Get(ctx context.Context, id uuid.UUID) (*model.ClinicDetail, error) {
	return s.getFn(ctx, id)
}

func (s *stubService) Create(ctx context.Context, in *clinicService.CreateClinicInput, actorID uuid.UUID) (*model.Clinic, error) {
	return s.createFn(ctx, in, actorID)
}

func (s *stubService) Delete(ctx context.Context, id, actorID uuid.UUID) error {
	return s.deleteFn(ctx, id, actorID)
}

func (s *stubService) Stats(ctx context.Context, clinicID uuid.UUID, rng model.StatsRange) (*model.ClinicStats, error) {
	return s.statsFn(ctx, clinicID, rng)
}

var testJWT = auth.NewJWTService("test-secret", time.Hour)

func newTestRouter(t *testing.T, service clinicService.ClinicServicer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	handler.RegisterCustomValidators()

	r := gin.New()
	r.Use(middleware.ErrorHandler())

	authMW := middleware.NewAuthMiddleware(testJWT)
	api := r.Group("/api/v1")
	api.Use(authMW.Authenticate())
	NewHandler(service).RegisterRoutes(api, authMW)
	return r
}

func tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := testJWT.GenerateToken(uuid.New(), role, "test@healthflow.example")
	require.NoError(t, err)
	return token
}

func doRequest(r *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func createBody() map[string]interface{} {
	return map[string]interface{}{
		"legal_name": "Clínica Boa Saúde LTDA",
		"trade_name": "Boa Saúde",
		"cnpj":       "11.222.333/0001-81",
		"email":      "contato@boasaude.example",
		"phone":      "+55 11 4002-8922",
		"address": map[string]interface{}{
			"street": "Rua das Flores", "number": "100",
			"city": "São Paulo", "state": "SP", "zip_code": "01000-000",
		},
	}
}

func TestGetClinicRequiresToken(t *testing.T) {
	r := newTestRouter(t, &stubService{})

	w := doRequest(r, http.MethodGet, "/api/v1/clinics/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCreateClinicRoleGating(t *testing.T) {
	service := &stubService{
		createFn: func(_ context.Context, in *clinicService.CreateClinicInput, _ uuid.UUID) (*model.Clinic, error) {
			return &model.Clinic{Base: model.Base{ID: uuid.New()}, TradeName: in.TradeName}, nil
		},
	}
	r := newTestRouter(t, service)

	// Only SUPER_ADMIN may create clinics.
	w := doRequest(r, http.MethodPost, "/api/v1/clinics", tokenFor(t, auth.RoleClinicAdmin), createBody())
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doRequest(r, http.MethodPost, "/api/v1/clinics", tokenFor(t, auth.RoleSuperAdmin), createBody())
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestCreateClinicRejectsBadCNPJAtBinding(t *testing.T) {
	r := newTestRouter(t, &stubService{})

	body := createBody()
	body["cnpj"] = "11.222.333/0001-82"
	w := doRequest(r, http.MethodPost, "/api/v1/clinics", tokenFor(t, auth.RoleSuperAdmin), body)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetClinicMapsServiceErrors(t *testing.T) {
	service := &stubService{
		getFn: func(_ context.Context, _ uuid.UUID) (*model.ClinicDetail, error) {
			return nil, apperrors.NotFound("clínica não encontrada", nil)
		},
	}
	r := newTestRouter(t, service)

	w := doRequest(r, http.MethodGet, "/api/v1/clinics/"+uuid.NewString(), tokenFor(t, auth.RoleDoctor), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "clínica não encontrada", resp.Message)
}

func TestGetClinicRejectsMalformedID(t *testing.T) {
	r := newTestRouter(t, &stubService{})

	w := doRequest(r, http.MethodGet, "/api/v1/clinics/not-a-uuid", tokenFor(t, auth.RoleDoctor), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatsIncludesWholeEndDate(t *testing.T) {
	var got model.StatsRange
	service := &stubService{
		statsFn: func(_ context.Context, _ uuid.UUID, rng model.StatsRange) (*model.ClinicStats, error) {
			got = rng
			return &model.ClinicStats{}, nil
		},
	}
	r := newTestRouter(t, service)

	path := "/api/v1/clinics/" + uuid.NewString() + "/stats?startDate=2026-08-01&endDate=2026-08-28"
	w := doRequest(r, http.MethodGet, path, tokenFor(t, auth.RoleClinicAdmin), nil)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC), got.Start)
	// The upper bound is exclusive, so the whole end date stays in range.
	assert.Equal(t, time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC), got.End)
}

func TestDeleteClinicReturnsNoContent(t *testing.T) {
	service := &stubService{
		deleteFn: func(_ context.Context, _, _ uuid.UUID) error { return nil },
	}
	r := newTestRouter(t, service)

	w := doRequest(r, http.MethodDelete, "/api/v1/clinics/"+uuid.NewString(), tokenFor(t, auth.RoleSuperAdmin), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())

	// CLINIC_ADMIN cannot delete.
	w = doRequest(r, http.MethodDelete, "/api/v1/clinics/"+uuid.NewString(), tokenFor(t, auth.RoleClinicAdmin), nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

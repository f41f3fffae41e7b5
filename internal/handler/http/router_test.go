package http

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/staff"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/tracking"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/geocode"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/keymutex"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/pkg/sse"
	"github.com/cmlabs-hris/geoattend-backend-go/internal/repository/memory"
	attendanceservice "github.com/cmlabs-hris/geoattend-backend-go/internal/service/attendance"
	leaveservice "github.com/cmlabs-hris/geoattend-backend-go/internal/service/leave"
	reportservice "github.com/cmlabs-hris/geoattend-backend-go/internal/service/report"
	staffservice "github.com/cmlabs-hris/geoattend-backend-go/internal/service/staff"
	sysconfigservice "github.com/cmlabs-hris/geoattend-backend-go/internal/service/sysconfig"
	trackingservice "github.com/cmlabs-hris/geoattend-backend-go/internal/service/tracking"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testCompanyID = "6f1d8a52-0c3e-4f6b-9a51-2d4c8e7b1a10"
	testStaffID   = "0b7e4c1a-5d2f-4e8a-b3c6-9f1a2e3d4c5b"
)

// Monday 2025-01-06 10:00 UTC.
var fixedNow = time.Date(2025, time.January, 6, 10, 0, 0, 0, time.UTC)

var (
	hqLat = 27.7172
	hqLng = 85.3240
)

type testAPI struct {
	router *chi.Mux
	jwt    jwt.Service
	hub    *sse.Hub
	store  *memory.Store
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := memory.NewStore()
	store.SetClock(func() time.Time { return fixedNow })
	store.PutCompany(company.Company{ID: testCompanyID, Name: "Acme Nepal", HQLat: &hqLat, HQLng: &hqLng})
	store.PutStaff(staff.Staff{ID: testStaffID, CompanyID: testCompanyID, Name: "Sita Sharma", Email: "sita@example.com"})

	jwtService, err := jwt.NewJWTService("test-secret-with-enough-length", "15m")
	require.NoError(t, err)

	tx := memory.NewTransactor(store)
	sessions := memory.NewSessionRepository(store)
	staffRepo := memory.NewStaffRepository(store)
	leaves := memory.NewLeaveRepository(store)
	companies := memory.NewCompanyRepository(store)
	configService := sysconfigservice.NewSystemConfigService(memory.NewSystemConfigRepository(store), time.UTC)
	locks := keymutex.New()
	hub := sse.NewHub()
	clock := func() time.Time { return fixedNow }

	enforcer := attendanceservice.NewEnforcer(tx, sessions, staffRepo, configService, locks,
		attendanceservice.WithEnforcerClock(clock),
		attendanceservice.WithEnforcerPublisher(hub),
	)
	attendanceService := attendanceservice.NewAttendanceService(tx, sessions, staffRepo, companies, leaves,
		configService, enforcer, geocode.Static("Kathmandu"), locks,
		attendanceservice.WithClock(clock),
		attendanceservice.WithPublisher(hub),
	)

	router := NewRouter(RouterOptions{AllowedOrigins: []string{"*"}, Env: "test"}, jwtService, Handlers{
		Attendance:   NewAttendanceHandler(attendanceService),
		Tracking:     NewTrackingHandler(trackingservice.NewTrackingService(staffRepo, sessions, companies, configService), jwtService, hub),
		Staff:        NewStaffHandler(staffservice.NewStaffService(staffRepo)),
		Leave:        NewLeaveHandler(leaveservice.NewLeaveService(leaves, staffRepo)),
		SystemConfig: NewSystemConfigHandler(configService),
		Report:       NewReportHandler(reportservice.NewReportService(sessions, staffRepo, companies, configService)),
	})

	return &testAPI{router: router, jwt: jwtService, hub: hub, store: store}
}

var (
	staffActor   = user.Actor{UserID: "u-staff", StaffID: testStaffID, CompanyID: testCompanyID, Role: user.RoleStaff}
	companyActor = user.Actor{UserID: "u-company", CompanyID: testCompanyID, Role: user.RoleCompany}
	adminActor   = user.Actor{UserID: "u-admin", Role: user.RoleAdmin}
	opsActor     = user.Actor{UserID: "u-ops", Role: user.RoleAdminStaff}
)

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func (a *testAPI) do(t *testing.T, actor *user.Actor, method, path string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		token, _, err := a.jwt.GenerateAccessToken(*actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

func coords(lat, lng float64) map[string]float64 {
	return map[string]float64{"lat": lat, "lng": lng}
}

// ===== AUTH & ROUTING TESTS =====

func TestRouter_RequiresToken(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, nil, http.MethodPost, "/api/v1/staff/check-in", coords(hqLat, hqLng))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_RoleGates(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		name   string
		actor  user.Actor
		method string
		path   string
		want   int
	}{
		{"company cannot check in", companyActor, http.MethodPost, "/api/v1/staff/check-in", http.StatusForbidden},
		{"staff cannot list live locations", staffActor, http.MethodGet, "/api/v1/staff/live-locations", http.StatusForbidden},
		{"staff cannot read system config", staffActor, http.MethodGet, "/api/v1/system-config", http.StatusForbidden},
		{"admin staff cannot read reports", opsActor, http.MethodGet, "/api/v1/reports", http.StatusForbidden},
		{"staff cannot list leave requests", staffActor, http.MethodGet, "/api/v1/staff/leave-requests", http.StatusForbidden},
		{"admin staff can list live locations", opsActor, http.MethodGet, "/api/v1/staff/live-locations", http.StatusOK},
		{"company reads system config", companyActor, http.MethodGet, "/api/v1/system-config", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actor := tt.actor
			rec, _ := api.do(t, &actor, tt.method, tt.path, nil)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, nil, http.MethodGet, "/api/v1/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, env.Success)
}

// ===== ATTENDANCE TESTS =====

func TestAttendanceHandler_CheckInCheckOut(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/check-in", coords(hqLat, hqLng))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	var session struct {
		ID              string `json:"id"`
		Status          string `json:"status"`
		CheckInLocation struct {
			Address string `json:"address"`
		} `json:"checkInLocation"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &session))
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "Kathmandu", session.CheckInLocation.Address)

	rec, env = api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/check-in", coords(hqLat, hqLng))
	assert.Equal(t, http.StatusConflict, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "ALREADY_CHECKED_IN", env.Error.Code)

	rec, _ = api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/check-out", coords(hqLat, hqLng))
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/check-out", coords(hqLat, hqLng))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "NO_ACTIVE_SESSION", env.Error.Code)
}

func TestAttendanceHandler_CheckIn_OutsideArea(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/check-in", coords(28.2096, 83.9856))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "OUTSIDE_ALLOWED_AREA", env.Error.Code)
}

func TestAttendanceHandler_CheckIn_Validation(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/check-in", map[string]interface{}{"lat": 95.0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	require.NotNil(t, env.Error)
	assert.Equal(t, "INVALID_COORDINATES", env.Error.Code)
}

func TestAttendanceHandler_CheckIn_MalformedBody(t *testing.T) {
	api := newTestAPI(t)

	token, _, err := api.jwt.GenerateAccessToken(staffActor)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/staff/check-in", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAttendanceHandler_RouteAndHistory(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/check-in", coords(hqLat, hqLng))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, env := api.do(t, &staffActor, http.MethodGet, "/api/v1/staff/route", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var route []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &route))
	assert.Len(t, route, 1)

	rec, _ = api.do(t, &staffActor, http.MethodGet, "/api/v1/staff/history?page=1&limit=5", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

// ===== LEAVE TESTS =====

func TestLeaveHandler_RequestApproveDelete(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/leave-request", map[string]string{
		"startDate": "2025-01-08",
		"endDate":   "2025-01-09",
		"reason":    "Family event",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &created))
	assert.Equal(t, "PENDING", created.Status)

	rec, env = api.do(t, &companyActor, http.MethodGet, "/api/v1/staff/leave-requests?status=PENDING", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		TotalCount int64 `json:"totalCount"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.TotalCount)

	rec, _ = api.do(t, &opsActor, http.MethodPut, "/api/v1/staff/leave-status", map[string]string{
		"leaveId": created.ID, "status": "APPROVED",
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, env = api.do(t, &companyActor, http.MethodPut, "/api/v1/staff/leave-status", map[string]string{
		"leaveId": created.ID, "status": "APPROVED",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env = api.do(t, &staffActor, http.MethodGet, "/api/v1/staff/leave-history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &list))
	assert.Equal(t, int64(1), list.TotalCount)

	rec, _ = api.do(t, &companyActor, http.MethodDelete, "/api/v1/staff/leave-delete", map[string]string{"leaveId": created.ID})
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLeaveHandler_Delete_MissingID(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, &companyActor, http.MethodDelete, "/api/v1/staff/leave-delete", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// ===== SYSTEM CONFIG TESTS =====

func TestSystemConfigHandler_Update(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, &companyActor, http.MethodPut, "/api/v1/system-config", map[string]interface{}{
		"autoCheckoutInactivity": 45,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := api.do(t, &companyActor, http.MethodGet, "/api/v1/system-config", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"autoCheckoutInactivity":45`)
}

// ===== STAFF TESTS =====

func TestStaffHandler_ClearSpoofFlag(t *testing.T) {
	api := newTestAPI(t)
	api.store.PutStaff(staff.Staff{ID: testStaffID, CompanyID: testCompanyID, Name: "Sita Sharma", SpoofingDetected: true})

	rec, _ := api.do(t, &companyActor, http.MethodPut, "/api/v1/staff/"+testStaffID+"/spoof-flag/clear", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, env := api.do(t, &staffActor, http.MethodGet, "/api/v1/staff/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

// ===== REPORT TESTS =====

func TestReportHandler_Generate(t *testing.T) {
	api := newTestAPI(t)

	rec, env := api.do(t, &companyActor, http.MethodGet, "/api/v1/reports?startDate=2025-01-01&endDate=2025-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, env.Success)

	rec, env = api.do(t, &companyActor, http.MethodGet, "/api/v1/reports?rangeType=fortnightly", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestReportHandler_ExportExcel(t *testing.T) {
	api := newTestAPI(t)

	rec, _ := api.do(t, &adminActor, http.MethodGet, "/api/v1/reports?export=excel&startDate=2025-01-01&endDate=2025-01-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")
	// xlsx files are zip archives.
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

// ===== TRACKING TESTS =====

func TestTrackingHandler_Stream_RejectsBadTokens(t *testing.T) {
	api := newTestAPI(t)

	accessToken, _, err := api.jwt.GenerateAccessToken(companyActor)
	require.NoError(t, err)
	staffStream, _, err := api.jwt.GenerateStreamToken(staffActor)
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"access token", "?token=" + accessToken, http.StatusUnauthorized},
		{"staff stream token", "?token=" + staffStream, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/staff/live-locations/stream"+tt.query, nil)
			rec := httptest.NewRecorder()
			api.router.ServeHTTP(rec, req)
			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestTrackingHandler_Stream(t *testing.T) {
	api := newTestAPI(t)
	server := httptest.NewServer(api.router)
	defer server.Close()

	rec, env := api.do(t, &companyActor, http.MethodGet, "/api/v1/staff/live-locations/stream-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var token tracking.StreamTokenResponse
	require.NoError(t, json.Unmarshal(env.Data, &token))
	assert.Equal(t, 300, token.ExpiresIn)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server.URL+"/api/v1/staff/live-locations/stream?token="+token.Token, nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	assert.Equal(t, "event: snapshot", readEventLine(t, reader))

	require.Eventually(t, func() bool {
		return api.hub.SubscriberCount(sse.CompanyChannel(testCompanyID)) == 1
	}, time.Second, 10*time.Millisecond)

	rec, _ = api.do(t, &staffActor, http.MethodPost, "/api/v1/staff/check-in", coords(hqLat, hqLng))
	require.Equal(t, http.StatusCreated, rec.Code)

	assert.Equal(t, "event: "+tracking.EventCheckIn, readEventLine(t, reader))
}

// readEventLine returns the next "event:" line of an SSE stream.
func readEventLine(t *testing.T, r *bufio.Reader) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "event:") {
			return line
		}
	}
}

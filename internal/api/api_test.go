package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"bedfinder-backend/config"
	"bedfinder-backend/internal/apperr"
	"bedfinder-backend/internal/db"
	"bedfinder-backend/internal/geo"
	"bedfinder-backend/internal/model"
	"bedfinder-backend/internal/mw"
	"bedfinder-backend/internal/seed"
	"bedfinder-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGeocoder struct {
	loc *geo.Location
	err error
}

func (s stubGeocoder) Geocode(context.Context, string) (*geo.Location, error) {
	return s.loc, s.err
}

type testEnv struct {
	router *gin.Engine
	store  store.Store
}

func newTestEnv(t *testing.T, cfg *config.Config, g geo.Geocoder, wp *webpush.Options) testEnv {
	t.Helper()
	gormDB, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))

	s := store.NewGormStore(gormDB)
	_, err = s.ReplaceHospitals(context.Background(), seed.Hospitals(time.Now().UTC()))
	require.NoError(t, err)

	if cfg == nil {
		cfg = &config.Config{}
	}
	cfg.Server.RateLimitPerSec = 1000
	cfg.Server.RateLimitBurst = 1000
	if cfg.Maps.DefaultLat == 0 {
		cfg.Maps.DefaultLat, cfg.Maps.DefaultLng = 37.7749, -122.4194
	}

	h := NewHandler(s, g, cfg, wp)
	return testEnv{router: NewRouter(h, cfg.Server), store: s}
}

func (e testEnv) do(t *testing.T, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type listResponse struct {
	Hospitals []struct {
		ID                 string   `json:"id"`
		Name               string   `json:"name"`
		AvailabilityStatus string   `json:"availabilityStatus"`
		Distance           *float64 `json:"distance"`
		TravelTime         *int     `json:"travelTime"`
	} `json:"hospitals"`
	Count int `json:"count"`
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) listResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out listResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func listIDs(l listResponse) []string {
	ids := make([]string, 0, len(l.Hospitals))
	for _, h := range l.Hospitals {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestListHospitals(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	all := decodeList(t, env.do(t, http.MethodGet, "/api/hospitals", nil))
	assert.Equal(t, 6, all.Count)
	status := map[string]string{}
	for _, h := range all.Hospitals {
		status[h.ID] = h.AvailabilityStatus
		assert.Nil(t, h.Distance)
	}
	assert.Equal(t, "high", status["1"])
	assert.Equal(t, "medium", status["5"])
	assert.Equal(t, "low", status["3"])

	filtered := decodeList(t, env.do(t, http.MethodGet, "/api/hospitals?filters=maternity,wait-30", nil))
	assert.Equal(t, []string{"1", "6"}, listIDs(filtered))

	byName := decodeList(t, env.do(t, http.MethodGet, "/api/hospitals?q=general", nil))
	assert.Equal(t, []string{"3", "6"}, listIDs(byName))

	byBed := decodeList(t, env.do(t, http.MethodGet, "/api/hospitals/filter?bedType=maternity&emergency=true", nil))
	assert.Equal(t, []string{"1", "2", "5", "6"}, listIDs(byBed))
}

func TestListHospitalsWithLocation(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	got := decodeList(t, env.do(t, http.MethodGet, "/api/hospitals?lat=37.7749&lng=-122.4194", nil))
	require.Equal(t, 6, got.Count)
	assert.Equal(t, "2", got.Hospitals[0].ID)
	for i, h := range got.Hospitals {
		require.NotNil(t, h.Distance)
		require.NotNil(t, h.TravelTime)
		if i > 0 {
			assert.GreaterOrEqual(t, *h.Distance, *got.Hospitals[i-1].Distance)
		}
	}

	near := decodeList(t, env.do(t, http.MethodGet, "/api/hospitals?near=37.7749,-122.4194&filters=distance-1", nil))
	assert.Equal(t, []string{"2", "1"}, listIDs(near))
}

func TestListHospitalsRejectsBadInput(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	for _, path := range []string{
		"/api/hospitals?filters=distance-abc",
		"/api/hospitals?bedType=burn",
		"/api/hospitals?emergency=maybe",
		"/api/hospitals?lat=95&lng=0",
		"/api/hospitals?lat=10",
	} {
		w := env.do(t, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, path)
	}
}

func TestNearbyHospitals(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	w := env.do(t, http.MethodGet, "/api/hospitals/nearby", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/hospitals/nearby?lat=37.7749&lng=-122.4194&radius=-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	got := decodeList(t, env.do(t, http.MethodGet, "/api/hospitals/nearby?lat=37.7749&lng=-122.4194&radius=1", nil))
	assert.Equal(t, []string{"2", "1"}, listIDs(got))

	wide := decodeList(t, env.do(t, http.MethodGet, "/api/hospitals/nearby?lat=37.7749&lng=-122.4194", nil))
	assert.Equal(t, 6, wide.Count)
}

func TestGetHospital(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	w := env.do(t, http.MethodGet, "/api/hospitals/4", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var h struct {
		Name               string `json:"name"`
		AvailabilityStatus string `json:"availabilityStatus"`
		Beds               struct {
			Pediatric model.BedCount `json:"pediatric"`
		} `json:"beds"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &h))
	assert.Equal(t, "UCSF Benioff Children's Hospital", h.Name)
	assert.Equal(t, "high", h.AvailabilityStatus)
	assert.Equal(t, model.BedCount{Available: 15, Total: 50}, h.Beds.Pediatric)

	w = env.do(t, http.MethodGet, "/api/hospitals/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHospitalHistory(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	_, err := env.store.MutateERAvailability(context.Background(), time.Now(), func(model.Hospital) int { return -1 })
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/hospitals/1/history", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Count  int                       `json:"count"`
		Events []model.AvailabilityEvent `json:"events"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, 12, body.Events[0].Previous)
	assert.Equal(t, 11, body.Events[0].Current)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/hospitals/999/history", nil).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/hospitals/1/history?limit=0", nil).Code)
}

func TestGetStats(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	w := env.do(t, http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalHospitals":6,"totalAvailableBeds":124,"averageErWait":38.3,"emergencyServices":6}`, w.Body.String())
}

func TestPostAssistant(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	w := env.do(t, http.MethodPost, "/api/assistant", gin.H{"message": "My daughter has a high fever"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var res struct {
		Intent       string `json:"intent"`
		MatchedCount int    `json:"matchedCount"`
		TopPick      struct {
			ID string `json:"id"`
		} `json:"topPick"`
		Alternates []struct {
			ID string `json:"id"`
		} `json:"alternates"`
		BedType  string   `json:"bedType"`
		BedCount int      `json:"bedCount"`
		Reasons  []string `json:"reasons"`
		Summary  string   `json:"summary"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Equal(t, "pediatric", res.Intent)
	assert.Equal(t, 6, res.MatchedCount)
	assert.Equal(t, "4", res.TopPick.ID)
	require.Len(t, res.Alternates, 2)
	assert.Equal(t, "1", res.Alternates[0].ID)
	assert.Equal(t, "6", res.Alternates[1].ID)
	assert.Equal(t, "Pediatric", res.BedType)
	assert.Equal(t, 15, res.BedCount)
	assert.Contains(t, res.Summary, "UCSF Benioff Children's Hospital")
	assert.NotEmpty(t, res.Reasons)
}

func TestPostAssistantValidation(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/assistant", gin.H{}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/assistant", gin.H{"message": "   "}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, "/api/assistant", gin.H{"message": "pain", "lat": 37.7}).Code)
}

func TestPostAssistantThinkingDelay(t *testing.T) {
	cfg := &config.Config{}
	cfg.Assistant.ThinkingDelay = 20 * time.Millisecond
	env := newTestEnv(t, cfg, nil, nil)

	start := time.Now()
	w := env.do(t, http.MethodPost, "/api/assistant", gin.H{"message": "chest pain", "lat": 37.7749, "lng": -122.4194})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestPostAssistantCancelledDuringDelay(t *testing.T) {
	cfg := &config.Config{}
	cfg.Assistant.ThinkingDelay = 10 * time.Second
	env := newTestEnv(t, cfg, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/assistant", bytes.NewBufferString(`{"message":"help"}`)).WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	start := time.Now()
	env.router.ServeHTTP(w, req)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, http.StatusRequestTimeout, w.Code)
}

func TestPostGeocode(t *testing.T) {
	ok := newTestEnv(t, nil, stubGeocoder{loc: &geo.Location{
		Coordinates:      model.Coordinates{Lat: 37.79, Lng: -122.40},
		FormattedAddress: "Market St, San Francisco, CA, USA",
	}}, nil)
	w := ok.do(t, http.MethodPost, "/api/geocode", gin.H{"address": "Market St"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"coordinates":{"lat":37.79,"lng":-122.4},"formattedAddress":"Market St, San Francisco, CA, USA"}`, w.Body.String())
	assert.Equal(t, http.StatusBadRequest, ok.do(t, http.MethodPost, "/api/geocode", gin.H{"address": " "}).Code)

	zero := newTestEnv(t, nil, stubGeocoder{err: &apperr.Error{
		Kind:    apperr.KindNotFound,
		Message: geo.StatusMessage(geo.StatusZeroResults),
		Err:     &geo.StatusError{Status: geo.StatusZeroResults},
	}}, nil)
	w = zero.do(t, http.MethodPost, "/api/geocode", gin.H{"address": "nowhere"})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"No results found for this location. Please try a different address or city name.","status":"ZERO_RESULTS"}`, w.Body.String())

	missing := newTestEnv(t, nil, nil, nil)
	w = missing.do(t, http.MethodPost, "/api/geocode", gin.H{"address": "Market St"})
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

type locationBody struct {
	ClientID       string `json:"clientId"`
	LocationDenied bool   `json:"locationDenied"`
	Prompt         bool   `json:"prompt"`
	Advisory       string `json:"advisory"`
}

func decodeLocation(t *testing.T, w *httptest.ResponseRecorder) locationBody {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var out locationBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestLocationPreference(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	w := env.do(t, http.MethodGet, "/api/location", nil)
	first := decodeLocation(t, w)
	clientID := w.Header().Get(mw.ClientIDHeader)
	assert.Equal(t, clientID, first.ClientID)
	assert.True(t, first.Prompt)
	assert.False(t, first.LocationDenied)

	denied := decodeLocation(t, env.do(t, http.MethodPut, "/api/location", gin.H{"error_code": geo.CodePermissionDenied}, mw.ClientIDHeader, clientID))
	assert.True(t, denied.LocationDenied)
	assert.False(t, denied.Prompt)
	assert.NotEmpty(t, denied.Advisory)

	again := decodeLocation(t, env.do(t, http.MethodGet, "/api/location", nil, mw.ClientIDHeader, clientID))
	assert.True(t, again.LocationDenied)
	assert.False(t, again.Prompt)

	timeout := decodeLocation(t, env.do(t, http.MethodPut, "/api/location", gin.H{"error_code": geo.CodeTimeout}, mw.ClientIDHeader, clientID))
	assert.True(t, timeout.LocationDenied, "a timeout does not clear an earlier denial")
	assert.Contains(t, timeout.Advisory, "too long")

	granted := decodeLocation(t, env.do(t, http.MethodPut, "/api/location", gin.H{"granted": true}, mw.ClientIDHeader, clientID))
	assert.False(t, granted.LocationDenied)
	assert.True(t, granted.Prompt)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPut, "/api/location", gin.H{}, mw.ClientIDHeader, clientID).Code)

	other := decodeLocation(t, env.do(t, http.MethodGet, "/api/location", nil))
	assert.NotEqual(t, clientID, other.ClientID)
	assert.True(t, other.Prompt)
}

func TestGetMapConfig(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	w := env.do(t, http.MethodGet, "/api/map-config", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), `"configured":false`)

	cfg := &config.Config{}
	cfg.Maps.APIKey = "browser-key"
	env = newTestEnv(t, cfg, nil, nil)
	w = env.do(t, http.MethodGet, "/api/map-config", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"configured":true,"apiKey":"browser-key","defaultCenter":{"lat":37.7749,"lng":-122.4194}}`, w.Body.String())
}

func TestSubscriptions(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)

	w := env.do(t, http.MethodPut, "/api/alerts/subscriptions", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"invalid request"}`, w.Body.String())

	endpoint := "https://push.example/sub-1"
	w = env.do(t, http.MethodPut, "/api/alerts/subscriptions", gin.H{
		"endpoint": endpoint, "p256dh": "key", "auth": "secret", "subscribed_hospitals": []string{"1", "3"},
	})
	assert.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodGet, "/api/alerts/subscriptions?endpoint="+endpoint, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Hospitals []string `json:"subscribed_hospitals"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.ElementsMatch(t, []string{"1", "3"}, body.Hospitals)

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/alerts/subscriptions", nil).Code)

	w = env.do(t, http.MethodDelete, "/api/alerts/subscriptions", gin.H{"endpoint": endpoint})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/api/alerts/subscriptions?endpoint="+endpoint, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetVAPIDPublicKey(t *testing.T) {
	env := newTestEnv(t, nil, nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, env.do(t, http.MethodGet, "/api/alerts/vapid_public_key", nil).Code)

	env = newTestEnv(t, nil, nil, &webpush.Options{VAPIDPublicKey: "pub"})
	w := env.do(t, http.MethodGet, "/api/alerts/vapid_public_key", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"public_key":"pub"}`, w.Body.String())
}

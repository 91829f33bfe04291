package di

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

	"survey_backend/internal/platform/config"
	"survey_backend/internal/platform/db"
)

const testSecret = "end-to-end-secret"

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Auth.JWTSecret = testSecret
	cfg.Server.RateLimitPerSec = 0
	cfg.Database = db.Config{Driver: db.DriverSQLite, SQLitePath: ":memory:", RunMigrations: true}

	gdb, err := db.Open(cfg.Database, time.Second)
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	app, err := NewApp(&cfg, gdb, nil)
	require.NoError(t, err)

	created, err := app.Admins.EnsureAdmin(context.Background(), "root", "rootpassword")
	require.NoError(t, err)
	require.True(t, created)
	return app
}

type client struct {
	t   *testing.T
	app *App
}

func (c client) do(method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	c.app.Router.ServeHTTP(w, req)

	var out map[string]any
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func (c client) login(username, password string) (token, userID string) {
	c.t.Helper()
	w, body := c.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": username, "password": password})
	require.Equal(c.t, http.StatusOK, w.Code, w.Body.String())
	user := body["user"].(map[string]any)
	return body["token"].(string), user["id"].(string)
}

func (c client) createUser(adminToken, username string) {
	c.t.Helper()
	w, _ := c.do(http.MethodPost, "/api/users", adminToken, gin.H{"username": username, "password": "password123", "role": "user"})
	require.Equal(c.t, http.StatusCreated, w.Code, w.Body.String())
}

func entryPayload(uid string) json.RawMessage {
	return json.RawMessage(`{
		"uid": "` + uid + `", "areaCode": "WARD-12", "qrPlateHouseNumber": "QR-0042",
		"ownerNameHindi": "सीता देवी", "ownerNameEnglish": "Sita Devi",
		"mobileNumber": "9876543210", "whatsappNumber": "+91 98765 43210",
		"latitude": 28.6139390, "longitude": 77.2090210,
		"propertyStatus": "new_property", "images": ["uploads/front.jpg", "uploads/front.jpg"]
	}`)
}

func TestApp_SurveyLifecycle(t *testing.T) {
	c := client{t: t, app: newTestApp(t)}

	adminToken, _ := c.login("root", "rootpassword")
	c.createUser(adminToken, "agent")
	c.createUser(adminToken, "stranger")
	agentToken, agentID := c.login("agent", "password123")
	strangerToken, _ := c.login("stranger", "password123")

	// create
	w, created := c.do(http.MethodPost, "/api/surveys", agentToken, entryPayload("UID-1"))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	id := created["id"].(string)
	assert.Equal(t, agentID, created["userId"])
	assert.Equal(t, []any{"uploads/front.jpg", "uploads/front.jpg"}, created["images"])
	assert.Contains(t, w.Body.String(), `"latitude":28.6139390`)
	assert.Equal(t, created["createdAt"], created["updatedAt"])

	// owner reads it back unchanged
	w, got := c.do(http.MethodGet, "/api/surveys/"+id, agentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "सीता देवी", got["ownerNameHindi"])
	assert.Equal(t, "new_property", got["propertyStatus"])
	assert.Contains(t, w.Body.String(), `"longitude":77.2090210`)

	// access policy
	w, _ = c.do(http.MethodGet, "/api/surveys/"+id, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = c.do(http.MethodGet, "/api/surveys/"+id, adminToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w, _ = c.do(http.MethodGet, "/api/surveys", agentToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, _ = c.do(http.MethodGet, "/api/surveys/does-not-exist", strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w, _ = c.do(http.MethodGet, "/api/surveys/user/"+agentID, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// admin listing carries the owner's username
	w, _ = c.do(http.MethodGet, "/api/surveys", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "agent", list[0]["createdByUsername"])

	// validation reports every bad field
	w, _ = c.do(http.MethodPost, "/api/surveys", agentToken, json.RawMessage(`{"latitude": 90.0001, "longitude": -180.0001}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	var verr struct {
		Errors []struct{ Field, Message string } `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	fields := map[string]bool{}
	for _, e := range verr.Errors {
		fields[e.Field] = true
	}
	for _, f := range []string{"uid", "areaCode", "mobileNumber", "latitude", "longitude"} {
		assert.True(t, fields[f], "missing violation for %s", f)
	}

	// a mistyped field does not hide the others
	w, _ = c.do(http.MethodPost, "/api/surveys", agentToken, json.RawMessage(`{"images": "not-a-list", "latitude": 999}`))
	require.Equal(t, http.StatusBadRequest, w.Code)
	verr.Errors = nil
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &verr))
	fields = map[string]bool{}
	for _, e := range verr.Errors {
		fields[e.Field] = true
	}
	for _, f := range []string{"images", "uid", "areaCode", "mobileNumber", "latitude", "longitude"} {
		assert.True(t, fields[f], "missing violation for %s", f)
	}

	// update keeps identity fields
	w, updated := c.do(http.MethodPut, "/api/surveys/"+id, agentToken, entryPayload("UID-1b"))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, id, updated["id"])
	assert.Equal(t, "UID-1b", updated["uid"])
	assert.Equal(t, agentID, updated["userId"])
	assert.Equal(t, created["createdAt"], updated["createdAt"])

	// delete
	w, _ = c.do(http.MethodDelete, "/api/surveys/"+id, strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w, msg := c.do(http.MethodDelete, "/api/surveys/"+id, agentToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Survey entry deleted successfully", msg["message"])
	w, _ = c.do(http.MethodGet, "/api/surveys/"+id, agentToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestApp_AdminCreatesEntry(t *testing.T) {
	c := client{t: t, app: newTestApp(t)}
	adminToken, adminID := c.login("root", "rootpassword")

	w, created := c.do(http.MethodPost, "/api/surveys", adminToken, entryPayload("UID-A"))

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, adminID, created["userId"])
}

func TestApp_UserDeletionCascades(t *testing.T) {
	c := client{t: t, app: newTestApp(t)}
	adminToken, _ := c.login("root", "rootpassword")
	c.createUser(adminToken, "agent")
	agentToken, agentID := c.login("agent", "password123")

	w, created := c.do(http.MethodPost, "/api/surveys", agentToken, entryPayload("UID-C"))
	require.Equal(t, http.StatusCreated, w.Code)

	w, _ = c.do(http.MethodDelete, "/api/users/"+agentID, adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w, _ = c.do(http.MethodGet, "/api/surveys/"+created["id"].(string), adminToken, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	// The agent's still-valid token now points at a deleted account.
	w, _ = c.do(http.MethodGet, "/api/auth/me", agentToken, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w, _ = c.do(http.MethodPost, "/api/surveys", agentToken, entryPayload("UID-D"))
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestApp_AuthBoundary(t *testing.T) {
	c := client{t: t, app: newTestApp(t)}

	w, _ := c.do(http.MethodGet, "/api/surveys", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, _ = c.do(http.MethodPost, "/api/auth/login", "", gin.H{"username": "root", "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w, body := c.do(http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", body["database"])

	agentToken := func() string {
		adminToken, _ := c.login("root", "rootpassword")
		c.createUser(adminToken, "agent")
		tok, _ := c.login("agent", "password123")
		return tok
	}()
	w, _ = c.do(http.MethodPost, "/api/users", agentToken, gin.H{"username": "x", "password": "password123"})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

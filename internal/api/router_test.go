package api

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/isdelr/tripscribe-be/internal/auth"
	"github.com/isdelr/tripscribe-be/internal/database"
	"github.com/isdelr/tripscribe-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

type testEnv struct {
	t      *testing.T
	server *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// A second pool connection would get its own empty in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.Migrate(db))

	uploads := t.TempDir()
	assetService := services.NewAssetService(uploads)

	router := NewRouter(RouterDeps{
		Tokens:         auth.New("test-secret", time.Hour),
		UserService:    services.NewUserService(db),
		StoryService:   services.NewStoryService(db, assetService),
		AssetService:   assetService,
		UploadsDir:     uploads,
		AssetsDir:      t.TempDir(),
		AllowedOrigins: []string{"*"},
	})

	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &testEnv{t: t, server: server}
}

// do sends a JSON request and decodes the JSON response body.
func (e *testEnv) do(method, path, token string, payload interface{}) (int, map[string]interface{}) {
	e.t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(e.t, err)
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, e.server.URL+path, body)
	require.NoError(e.t, err)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.server.Client().Do(req)
	require.NoError(e.t, err)
	defer resp.Body.Close()

	var decoded map[string]interface{}
	require.NoError(e.t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func (e *testEnv) registerAndLogin(email string) string {
	e.t.Helper()
	status, body := e.do(http.MethodPost, "/create-account", "", map[string]string{
		"fullName": "Test User",
		"email":    email,
		"password": "pw123",
	})
	require.Equal(e.t, http.StatusCreated, status)
	token, ok := body["accessToken"].(string)
	require.True(e.t, ok, "registration must return an access token")
	return token
}

func TestAccountAndStoryFlow(t *testing.T) {
	env := newTestEnv(t)

	// Register, then log in with the same credentials.
	token := env.registerAndLogin("alice@example.com")

	status, body := env.do(http.MethodPost, "/login", "", map[string]string{
		"email":    "alice@example.com",
		"password": "pw123",
	})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, false, body["error"])
	token = body["accessToken"].(string)

	// Profile comes from the token, not from any client-supplied id.
	status, body = env.do(http.MethodGet, "/get-user", token, nil)
	require.Equal(t, http.StatusOK, status)
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "alice@example.com", user["email"])

	// No token, no stories.
	status, _ = env.do(http.MethodGet, "/get-all-stories", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// Add a story without an image; the placeholder fills in.
	status, body = env.do(http.MethodPost, "/add-travel-story", token, map[string]interface{}{
		"title":            "Paris",
		"story":            "Croissants every morning.",
		"visitedLocations": []string{"Paris"},
		"visitedDate":      1700000000000,
		"imageUrl":         "",
	})
	require.Equal(t, http.StatusCreated, status)
	story := body["story"].(map[string]interface{})
	storyID := story["id"].(string)
	assert.Contains(t, story["imageUrl"], "/assets/placeholder.png")

	status, body = env.do(http.MethodGet, "/get-all-stories", token, nil)
	require.Equal(t, http.StatusOK, status)
	require.Len(t, body["stories"], 1)

	// Toggle favourite; nothing else moves.
	status, body = env.do(http.MethodPut, "/update-is-favourite/"+storyID, token, map[string]bool{
		"isFavourite": true,
	})
	require.Equal(t, http.StatusOK, status)
	story = body["story"].(map[string]interface{})
	assert.Equal(t, true, story["isFavourite"])
	assert.Equal(t, "Paris", story["title"])

	// Edit the story.
	status, body = env.do(http.MethodPut, "/edit-travel-story/"+storyID, token, map[string]interface{}{
		"title":            "Paris in autumn",
		"story":            "Croissants every morning.",
		"visitedLocations": []string{"Paris", "Montmartre"},
		"visitedDate":      1700000000000,
		"imageUrl":         "",
	})
	require.Equal(t, http.StatusOK, status)
	story = body["story"].(map[string]interface{})
	assert.Equal(t, "Paris in autumn", story["title"])

	// Search and date filter.
	status, body = env.do(http.MethodGet, "/search?query=montmartre", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["stories"], 1)

	status, body = env.do(http.MethodGet, "/search?query=", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, true, body["error"])

	status, body = env.do(http.MethodGet,
		fmt.Sprintf("/travel-stories/filter?startDate=%d&endDate=%d", 1690000000000, 1710000000000), token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["stories"], 1)

	// Delete and confirm the collection is empty.
	status, _ = env.do(http.MethodDelete, "/delete-travel-story/"+storyID, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, body = env.do(http.MethodGet, "/get-all-stories", token, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["stories"], 0)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	env := newTestEnv(t)

	env.registerAndLogin("alice@example.com")

	status, body := env.do(http.MethodPost, "/create-account", "", map[string]string{
		"fullName": "Second Alice",
		"email":    "alice@example.com",
		"password": "other",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, true, body["error"])
}

func TestStories_NotVisibleAcrossOwners(t *testing.T) {
	env := newTestEnv(t)

	alice := env.registerAndLogin("alice@example.com")
	bob := env.registerAndLogin("bob@example.com")

	status, body := env.do(http.MethodPost, "/add-travel-story", alice, map[string]interface{}{
		"title":            "Secret trip",
		"story":            "Nobody needs to know.",
		"visitedLocations": []string{"Reykjavik"},
		"visitedDate":      1700000000000,
	})
	require.Equal(t, http.StatusCreated, status)
	storyID := body["story"].(map[string]interface{})["id"].(string)

	// Bob gets the same 404 whether the story is absent or just not his.
	status, _ = env.do(http.MethodDelete, "/delete-travel-story/"+storyID, bob, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, body = env.do(http.MethodGet, "/get-all-stories", bob, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, body["stories"], 0)
}

func TestImageUploadAndDelete(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin("alice@example.com")

	upload := func(filename, contentType, content string) (int, map[string]interface{}) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, filename))
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req, err := http.NewRequest(http.MethodPost, env.server.URL+"/image-upload", &buf)
		require.NoError(t, err)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := env.server.Client().Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()

		var decoded map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
		return resp.StatusCode, decoded
	}

	status, body := upload("photo.png", "image/png", "pretend this is a png")
	require.Equal(t, http.StatusCreated, status)
	imageURL := body["imageUrl"].(string)
	assert.Contains(t, imageURL, env.server.URL+"/uploads/")

	// The stored file is served back from the uploads path.
	resp, err := env.server.Client().Get(imageURL)
	require.NoError(t, err)
	served, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pretend this is a png", string(served))

	// Delete it, then confirm a second delete reports absence.
	status, _ = env.do(http.MethodDelete, "/delete-image?imageUrl="+imageURL, token, nil)
	require.Equal(t, http.StatusOK, status)

	status, _ = env.do(http.MethodDelete, "/delete-image?imageUrl="+imageURL, token, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Non-image uploads are refused.
	status, body = upload("notes.txt", "text/plain", "just text")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, true, body["error"])

	// The placeholder is never a valid removal target.
	status, _ = env.do(http.MethodDelete, "/delete-image?imageUrl="+env.server.URL+"/assets/placeholder.png", token, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

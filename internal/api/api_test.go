package api_test

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snapfest/snapfest/internal/api"
	"github.com/snapfest/snapfest/internal/api/apierr"
	"github.com/snapfest/snapfest/internal/api/middleware"
	"github.com/snapfest/snapfest/internal/api/response"
	"github.com/snapfest/snapfest/internal/api/sse"
	"github.com/snapfest/snapfest/internal/factory"
	"github.com/snapfest/snapfest/internal/testutil"
)

// testServer wires a router against in-memory backends
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := testutil.NopLogger()
	app := factory.NewTestApp(factory.Config{})

	hub := sse.NewHub(logger)
	go hub.Run()
	t.Cleanup(hub.Close)

	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		IdentityService:   app.IdentityService,
		DirectoryService:  app.DirectoryService,
		FeedService:       app.FeedService,
		UploadCoordinator: app.UploadCoordinator,
		GuestResolver:     app.Store,
		Hub:               hub,
	})

	t.Cleanup(func() { _ = app.Close() })

	return &testServer{handler: router, app: app}
}

func (ts *testServer) request(method, path string, body any, guestID string) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")
	if guestID != "" {
		req.Header.Set(middleware.GuestHeader, guestID)
	}

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) signIn(t *testing.T, name string) response.SignInResponse {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/guests/signin", map[string]string{"name": name}, "")
	require.Contains(t, []int{http.StatusOK, http.StatusCreated}, rr.Code, rr.Body.String())

	var resp response.SignInResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func (ts *testServer) uploadPNG(t *testing.T, guestID, fileName string) response.Photo {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 40, 30))
	img.Set(0, 0, color.RGBA{R: 128, A: 255})
	var imgBuf bytes.Buffer
	require.NoError(t, png.Encode(&imgBuf, img))

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(imgBuf.Bytes())
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/photos", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set(middleware.GuestHeader, guestID)

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var photo response.Photo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &photo))
	return photo
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestSignInNewGuest(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/guests/signin", map[string]string{"name": "  pedro bolson "}, "")
	assert.Equal(t, http.StatusCreated, rr.Code)

	var resp response.SignInResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "Pedro Bolson", resp.Guest.DisplayName)
	assert.False(t, resp.Returning)
	assert.NotEmpty(t, resp.Guest.ID)
}

func TestSignInReturningGuest(t *testing.T) {
	ts := newTestServer(t)

	first := ts.signIn(t, "Maria")

	rr := ts.request(http.MethodPost, "/api/v1/guests/signin", map[string]string{"name": "maria"}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.SignInResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.True(t, resp.Returning)
	assert.Equal(t, first.Guest.ID, resp.Guest.ID)
}

func TestSignInEmptyName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/guests/signin", map[string]string{"name": "   "}, "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeEmptyName, resp.Error.Code)
}

func TestSignInAmbiguousNameWithSuggestions(t *testing.T) {
	ts := newTestServer(t)

	existing := ts.signIn(t, "Ana Clara")

	rr := ts.request(http.MethodPost, "/api/v1/guests/signin", map[string]string{"name": "Ana Klara"}, "")
	assert.Equal(t, http.StatusConflict, rr.Code)

	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, apierr.CodeAmbiguousName, resp.Error.Code)
	require.Len(t, resp.Suggestions, 1)
	assert.Equal(t, existing.Guest.ID, resp.Suggestions[0].ID)

	// Confirming the suggestion signs in as the existing guest
	rr = ts.request(http.MethodPost, "/api/v1/guests/confirm",
		map[string]string{"guest_id": resp.Suggestions[0].ID}, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var confirmed response.SignInResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &confirmed))
	assert.Equal(t, existing.Guest.ID, confirmed.Guest.ID)
	assert.True(t, confirmed.Returning)
}

func TestListGuests(t *testing.T) {
	ts := newTestServer(t)

	ts.signIn(t, "Pedro")
	ts.signIn(t, "Ana")

	rr := ts.request(http.MethodGet, "/api/v1/guests", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var guests []response.Guest
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &guests))
	require.Len(t, guests, 2)
	assert.Equal(t, "Ana", guests[0].DisplayName)
	assert.Equal(t, "Pedro", guests[1].DisplayName)
}

func TestUploadRequiresGuestHeader(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/photos", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = ts.request(http.MethodPost, "/api/v1/photos", nil, "not-a-guest")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestUploadAndListPhotos(t *testing.T) {
	ts := newTestServer(t)

	guest := ts.signIn(t, "Pedro")
	photo := ts.uploadPNG(t, guest.Guest.ID, "party.png")

	assert.Equal(t, guest.Guest.ID, photo.UploaderID)
	assert.Equal(t, 40, photo.Width)
	assert.Equal(t, 30, photo.Height)
	assert.NotEmpty(t, photo.URL)
	assert.NotEmpty(t, photo.ThumbnailURL)

	rr := ts.request(http.MethodGet, "/api/v1/photos", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var photos []response.Photo
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &photos))
	require.Len(t, photos, 1)
	assert.Equal(t, photo.ID, photos[0].ID)
}

func TestToggleLike(t *testing.T) {
	ts := newTestServer(t)

	uploader := ts.signIn(t, "Pedro")
	liker := ts.signIn(t, "Ana")
	photo := ts.uploadPNG(t, uploader.Guest.ID, "party.png")

	rr := ts.request(http.MethodPost, "/api/v1/photos/"+photo.ID+"/like", nil, liker.Guest.ID)
	assert.Equal(t, http.StatusOK, rr.Code)

	var like response.LikeResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &like))
	assert.True(t, like.Liked)

	rr = ts.request(http.MethodPost, "/api/v1/photos/"+photo.ID+"/like", nil, liker.Guest.ID)
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &like))
	assert.False(t, like.Liked)
}

func TestDeletePhotoPermissions(t *testing.T) {
	ts := newTestServer(t)

	uploader := ts.signIn(t, "Pedro")
	other := ts.signIn(t, "Ana")
	photo := ts.uploadPNG(t, uploader.Guest.ID, "party.png")

	rr := ts.request(http.MethodDelete, "/api/v1/photos/"+photo.ID, nil, other.Guest.ID)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/photos/"+photo.ID, nil, uploader.Guest.ID)
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = ts.request(http.MethodDelete, "/api/v1/photos/"+photo.ID, nil, uploader.Guest.ID)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestRecalculatePhotoCount(t *testing.T) {
	ts := newTestServer(t)

	guest := ts.signIn(t, "Pedro")
	ts.uploadPNG(t, guest.Guest.ID, "a.png")
	ts.uploadPNG(t, guest.Guest.ID, "b.png")

	rr := ts.request(http.MethodPost, "/api/v1/guests/"+guest.Guest.ID+"/recount", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var resp response.PhotoCountResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.PhotoCount)
}

func TestUploadTasksListed(t *testing.T) {
	ts := newTestServer(t)

	guest := ts.signIn(t, "Pedro")
	ts.uploadPNG(t, guest.Guest.ID, "party.png")

	rr := ts.request(http.MethodGet, "/api/v1/uploads", nil, "")
	assert.Equal(t, http.StatusOK, rr.Code)

	var tasks []response.UploadTask
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &tasks))
	require.Len(t, tasks, 1)
	assert.Equal(t, "party.png", tasks[0].FileName)
	assert.Equal(t, "completed", tasks[0].Status)
}

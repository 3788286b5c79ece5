package controllers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bcardhq/bcard-api/app/repositories"
	"github.com/bcardhq/bcard-api/internal/kernel"
	"github.com/bcardhq/bcard-api/pkg/storage"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	disk, err := storage.Open(storage.Options{
		Driver:    "local",
		LocalRoot: t.TempDir(),
		LocalURL:  "http://localhost:5000/storage",
	})
	require.NoError(t, err)

	r := kernel.New(kernel.Options{
		JWTSecret:  "integration-secret",
		AppKey:     "integration-app-key",
		CORSOrigin: "http://localhost:3000",
		Users:      repositories.NewMemoryUserRepository(),
		Cards:      repositories.NewMemoryCardRepository(),
		Disk:       disk,
	})

	srv := httptest.NewServer(r.Handler())
	t.Cleanup(srv.Close)
	return srv
}

// newClient returns an http.Client with its own cookie jar, i.e. its own
// session.
func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &http.Client{Jar: jar}
}

func doJSON(t *testing.T, client *http.Client, method, url string, body interface{}) (int, map[string]interface{}) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	return resp.StatusCode, decoded
}

func userPayload(email string) map[string]interface{} {
	return map[string]interface{}{
		"name":     map[string]interface{}{"first": "Jane", "last": "Doe"},
		"email":    email,
		"password": "Secret123!",
		"phone":    "05512345678",
		"address": map[string]interface{}{
			"country":     "Israel",
			"city":        "Tel Aviv",
			"street":      "Herzl",
			"houseNumber": "1",
		},
	}
}

func cardPayload() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Baker's Bread",
		"subtitle":    "Fresh sourdough daily",
		"description": "A family bakery serving the neighbourhood.",
		"phone":       "04-8123456",
		"email":       "hello@bakery.example",
		"web":         "https://bakery.example",
		"image":       map[string]interface{}{"url": "https://bakery.example/logo.png", "alt": "logo"},
		"address": map[string]interface{}{
			"country":     "Israel",
			"city":        "Haifa",
			"street":      "Allenby",
			"houseNumber": 12,
			"zip":         31000,
		},
	}
}

func register(t *testing.T, client *http.Client, base, email string) string {
	t.Helper()
	status, body := doJSON(t, client, http.MethodPost, base+"/users", userPayload(email))
	require.Equal(t, http.StatusCreated, status, "register: %v", body)

	user, ok := body["user"].(map[string]interface{})
	require.True(t, ok, "register response must carry the user")
	id, _ := user["_id"].(string)
	require.NotEmpty(t, id)
	return id
}

func login(t *testing.T, client *http.Client, base, email string) {
	t.Helper()
	status, body := doJSON(t, client, http.MethodPost, base+"/users/login", map[string]string{
		"email":    email,
		"password": "Secret123!",
	})
	require.Equal(t, http.StatusOK, status, "login: %v", body)
	require.NotEmpty(t, body["token"])
}

func TestCardLifecycle(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	alice := newClient(t)
	bob := newClient(t)

	register(t, alice, base, "alice@example.com") // first user becomes admin
	register(t, bob, base, "bob@example.com")

	login(t, alice, base, "alice@example.com")
	login(t, bob, base, "bob@example.com")

	// bob creates a card
	status, body := doJSON(t, bob, http.MethodPost, base+"/cards", cardPayload())
	require.Equal(t, http.StatusCreated, status, "create: %v", body)
	card := body["card"].(map[string]interface{})
	cardID := card["_id"].(string)
	require.NotEmpty(t, cardID)

	// public reads need no session
	anon := newClient(t)
	status, body = doJSON(t, anon, http.MethodGet, base+"/cards", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["cards"], 1)

	status, body = doJSON(t, anon, http.MethodGet, base+"/cards/"+cardID, nil)
	assert.Equal(t, http.StatusOK, status)
	got := body["card"].(map[string]interface{})
	assert.Equal(t, "Baker's Bread", got["title"])

	// alice likes bob's card; a second like fails
	status, _ = doJSON(t, alice, http.MethodPatch, base+"/cards/"+cardID, nil)
	assert.Equal(t, http.StatusOK, status)
	status, body = doJSON(t, alice, http.MethodPatch, base+"/cards/"+cardID, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You already liked this card", body["msg"])

	// alice is admin but not the owner: update is rejected, delete allowed
	status, _ = doJSON(t, alice, http.MethodPut, base+"/cards/"+cardID, cardPayload())
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = doJSON(t, bob, http.MethodPut, base+"/cards/"+cardID, cardPayload())
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, alice, http.MethodDelete, base+"/cards/"+cardID, nil)
	assert.Equal(t, http.StatusOK, status)

	status, _ = doJSON(t, anon, http.MethodGet, base+"/cards/"+cardID, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestOrphanedCardsSurviveOwnerDeletion(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	alice := newClient(t)
	bob := newClient(t)

	register(t, alice, base, "alice@example.com")
	bobID := register(t, bob, base, "bob@example.com")
	login(t, alice, base, "alice@example.com")
	login(t, bob, base, "bob@example.com")

	status, body := doJSON(t, bob, http.MethodPost, base+"/cards", cardPayload())
	require.Equal(t, http.StatusCreated, status)
	cardID := body["card"].(map[string]interface{})["_id"].(string)

	// the admin deletes bob; the card stays behind
	status, _ = doJSON(t, alice, http.MethodDelete, base+"/users/"+bobID, nil)
	require.Equal(t, http.StatusOK, status)

	anon := newClient(t)
	status, body = doJSON(t, anon, http.MethodGet, base+"/cards/"+cardID, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, bobID, body["card"].(map[string]interface{})["user_id"])
}

func TestUserRoutesAuthorization(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	alice := newClient(t)
	bob := newClient(t)

	aliceID := register(t, alice, base, "alice@example.com") // admin
	bobID := register(t, bob, base, "bob@example.com")
	login(t, alice, base, "alice@example.com")
	login(t, bob, base, "bob@example.com")

	// listing is admin-only
	status, body := doJSON(t, alice, http.MethodGet, base+"/users", nil)
	assert.Equal(t, http.StatusOK, status)
	users := body["users"].([]interface{})
	assert.Len(t, users, 2)
	for _, u := range users {
		_, hasPassword := u.(map[string]interface{})["password"]
		assert.False(t, hasPassword, "passwords must never be serialized")
	}

	status, _ = doJSON(t, bob, http.MethodGet, base+"/users", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// bob may read himself, not alice
	status, _ = doJSON(t, bob, http.MethodGet, base+"/users/"+bobID, nil)
	assert.Equal(t, http.StatusOK, status)
	status, _ = doJSON(t, bob, http.MethodGet, base+"/users/"+aliceID, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	// status toggle is self-only
	status, body = doJSON(t, bob, http.MethodPatch, base+"/users/"+bobID, map[string]bool{"isBusiness": true})
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["user"].(map[string]interface{})["isBusiness"])

	// the toggle must leave the credentials intact
	login(t, newClient(t), base, "bob@example.com")

	status, _ = doJSON(t, alice, http.MethodPatch, base+"/users/"+bobID, map[string]bool{"isBusiness": false})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSessionLifecycle(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	alice := newClient(t)
	aliceID := register(t, alice, base, "alice@example.com")

	// no session yet
	status, _ := doJSON(t, alice, http.MethodGet, base+"/users/"+aliceID, nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	login(t, alice, base, "alice@example.com")
	status, _ = doJSON(t, alice, http.MethodGet, base+"/users/"+aliceID, nil)
	assert.Equal(t, http.StatusOK, status)

	// logout overwrites the cookie; the session is gone
	status, body := doJSON(t, alice, http.MethodDelete, base+"/users/logout", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "user logged out!", body["msg"])

	status, _ = doJSON(t, alice, http.MethodGet, base+"/users/"+aliceID, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestValidationAndErrorPayloads(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL
	client := newClient(t)

	// first violation of the schema is surfaced as the msg
	payload := userPayload("not-an-email")
	status, body := doJSON(t, client, http.MethodPost, base+"/users", payload)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "The email must be a valid email address.", body["msg"])

	// duplicate email
	register(t, client, base, "alice@example.com")
	status, body = doJSON(t, client, http.MethodPost, base+"/users", userPayload("alice@example.com"))
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Email already exists", body["msg"])

	// login failures are indistinguishable
	status, body = doJSON(t, client, http.MethodPost, base+"/users/login", map[string]string{
		"email": "ghost@example.com", "password": "Secret123!",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	unknownMsg := body["msg"]
	status, body = doJSON(t, client, http.MethodPost, base+"/users/login", map[string]string{
		"email": "alice@example.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, unknownMsg, body["msg"])

	// unknown routes
	status, body = doJSON(t, client, http.MethodGet, base+"/nope", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Route does not exist", body["msg"])
}

// newMultipart writes a single file field into buf and returns the
// form's content type.
func newMultipart(t *testing.T, buf *bytes.Buffer, field, filename string, content []byte) string {
	t.Helper()
	mw := multipart.NewWriter(buf)
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return mw.FormDataContentType()
}

func TestImageUpload(t *testing.T) {
	srv := newTestServer(t)
	base := srv.URL

	alice := newClient(t)
	register(t, alice, base, "alice@example.com")
	login(t, alice, base, "alice@example.com")

	status, body := doJSON(t, alice, http.MethodPost, base+"/cards", cardPayload())
	require.Equal(t, http.StatusCreated, status)
	cardID := body["card"].(map[string]interface{})["_id"].(string)

	var buf bytes.Buffer
	form := newMultipart(t, &buf, "image", "logo.png", []byte("png-bytes"))

	req, err := http.NewRequest(http.MethodPost, base+"/cards/"+cardID+"/image", &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", form)

	resp, err := alice.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	decoded := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&decoded))
	url := decoded["card"].(map[string]interface{})["image"].(map[string]interface{})["url"].(string)
	assert.Equal(t, fmt.Sprintf("http://localhost:5000/storage/cards/%s/logo.png", cardID), url)
}

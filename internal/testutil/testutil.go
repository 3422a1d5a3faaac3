// Package testutil runs a fake Manga Factory backend for tests.
//
// The fake keeps the real wire contract: envelope replies on auth, captcha
// and project routes, bare JSON on the generation routes, bearer tokens
// with server side validity tracking, and refresh token rotation. Tests
// drive auth failures by revoking tokens or failing the refresh route.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/TTboyi/manga-factory/internal/models"
)

// EmailCaptchaCode is the code the fake "mails" for every request.
const EmailCaptchaCode = "123456"

type FakeBackend struct {
	t *testing.T

	mu           sync.Mutex
	secret       []byte
	users        map[string]string // nickname -> password
	captchas     map[string]string // email -> code
	validAccess  map[string]bool
	validRefresh map[string]bool
	calls        map[string]int
	projects     map[int64]map[string]any
	nextProject  int64

	// RefreshFails makes /auth/refresh reply 401 regardless of the token
	RefreshFails bool

	srv *httptest.Server
}

// NewFakeBackend starts the fake and registers cleanup on the test.
func NewFakeBackend(t *testing.T) *FakeBackend {
	t.Helper()

	b := &FakeBackend{
		t:            t,
		secret:       []byte("test-secret"),
		users:        map[string]string{},
		captchas:     map[string]string{},
		validAccess:  map[string]bool{},
		validRefresh: map[string]bool{},
		calls:        map[string]int{},
		projects:     map[int64]map[string]any{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", b.register)
	mux.HandleFunc("POST /auth/login", b.login)
	mux.HandleFunc("POST /auth/refresh", b.refresh)
	mux.HandleFunc("POST /auth/logout", b.logout)
	mux.HandleFunc("GET /auth/user/info", b.userInfo)
	mux.HandleFunc("POST /captcha/send_email", b.sendEmailCaptcha)
	mux.HandleFunc("POST /captcha/login_email", b.loginEmailCaptcha)
	mux.HandleFunc("POST /text/generate_novel", b.generateNovel)
	mux.HandleFunc("POST /text/upload", b.uploadNovel)
	mux.HandleFunc("POST /visual/analyze", b.analyzeVisual)
	mux.HandleFunc("POST /scene/recognize", b.recognizeScenes)
	mux.HandleFunc("POST /image/generate_storyboard", b.generateStoryboard)
	mux.HandleFunc("POST /project/save", b.saveProject)
	mux.HandleFunc("GET /project/get_full/{id}", b.getProjectFull)
	mux.HandleFunc("GET /project/my_list", b.listProjects)

	b.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.calls[r.URL.Path]++
		b.mu.Unlock()
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(b.srv.Close)

	return b
}

func (b *FakeBackend) URL() string { return b.srv.URL }

// Calls returns how many requests hit the given path.
func (b *FakeBackend) Calls(path string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[path]
}

// AddUser registers an account directly, skipping the register route.
func (b *FakeBackend) AddUser(nickname string, password string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.users[nickname] = password
}

// GrantPair mints a valid token pair, as if the user had logged in.
func (b *FakeBackend) GrantPair() models.TokenPair {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.mintPairLocked()
}

// RevokeAccess invalidates one access token so the next use gets 401.
func (b *FakeBackend) RevokeAccess(token string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.validAccess, token)
}

// RevokeAllAccess invalidates every outstanding access token.
func (b *FakeBackend) RevokeAllAccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.validAccess = map[string]bool{}
}

func (b *FakeBackend) mintPairLocked() models.TokenPair {
	mint := func(typ string, ttl time.Duration) string {
		now := time.Now()
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"jti": uuid.NewString(),
			"sub": "1",
			"typ": typ,
			"iat": jwt.NewNumericDate(now),
			"exp": jwt.NewNumericDate(now.Add(ttl)),
		})
		signed, err := token.SignedString(b.secret)
		if err != nil {
			b.t.Fatalf("failed to sign %s token: %v", typ, err)
		}
		return signed
	}

	pair := models.TokenPair{
		Access:  mint("access", 15*time.Minute),
		Refresh: mint("refresh", 24*time.Hour),
	}
	b.validAccess[pair.Access] = true
	b.validRefresh[pair.Refresh] = true
	return pair
}

// ---- reply helpers keeping the backend's wire format ----

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func success(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, map[string]any{"code": 0, "message": message, "data": data})
}

func fail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"code": status, "message": message})
}

func bearer(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// requireAccess checks the bearer token and replies 401 when it is missing
// or revoked.
func (b *FakeBackend) requireAccess(w http.ResponseWriter, r *http.Request) bool {
	token := bearer(r)

	b.mu.Lock()
	ok := token != "" && b.validAccess[token]
	b.mu.Unlock()

	if !ok {
		fail(w, http.StatusUnauthorized, "token expired")
		return false
	}
	return true
}

// ---- auth routes ----

func (b *FakeBackend) register(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Nickname == "" || body.Password == "" {
		fail(w, http.StatusBadRequest, "missing parameters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.users[body.Nickname]; exists {
		fail(w, http.StatusBadRequest, "user already exists")
		return
	}
	b.users[body.Nickname] = body.Password
	success(w, nil, "registered")
}

func (b *FakeBackend) login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "missing parameters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if password, ok := b.users[body.Nickname]; !ok || password != body.Password {
		fail(w, http.StatusUnauthorized, "wrong nickname or password")
		return
	}

	success(w, b.mintPairLocked(), "logged in")
}

func (b *FakeBackend) refresh(w http.ResponseWriter, r *http.Request) {
	token := bearer(r)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.RefreshFails || token == "" || !b.validRefresh[token] {
		fail(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	// Rotation: the used refresh token dies with the grant
	delete(b.validRefresh, token)
	success(w, b.mintPairLocked(), "refreshed")
}

func (b *FakeBackend) logout(w http.ResponseWriter, r *http.Request) {
	if !b.requireAccess(w, r) {
		return
	}

	b.mu.Lock()
	delete(b.validAccess, bearer(r))
	b.mu.Unlock()

	success(w, nil, "logged out")
}

func (b *FakeBackend) userInfo(w http.ResponseWriter, r *http.Request) {
	if !b.requireAccess(w, r) {
		return
	}
	success(w, map[string]any{"id": 1, "nickname": "tester"}, "ok")
}

// ---- captcha routes ----

func (b *FakeBackend) sendEmailCaptcha(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" {
		fail(w, http.StatusBadRequest, "missing email")
		return
	}

	b.mu.Lock()
	b.captchas[body.Email] = EmailCaptchaCode
	b.mu.Unlock()

	success(w, nil, "captcha sent")
}

func (b *FakeBackend) loginEmailCaptcha(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Code  string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Email == "" || body.Code == "" {
		fail(w, http.StatusBadRequest, "missing parameters")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.captchas[body.Email] != body.Code {
		fail(w, http.StatusBadRequest, "wrong captcha")
		return
	}
	delete(b.captchas, body.Email)

	success(w, b.mintPairLocked(), "logged in")
}

// ---- generation routes: bare JSON replies, no auth in the backend ----

func (b *FakeBackend) generateNovel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.Text) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "empty text"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"novel_text": "polished: " + body.Text,
		"scenes": []models.Scene{
			{ID: "1", Title: "Opening", Description: "The story begins"},
			{ID: "2", Title: "Turn", Description: "Something changes"},
		},
	})
}

func (b *FakeBackend) uploadNovel(w http.ResponseWriter, r *http.Request) {
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "missing file"})
		return
	}
	defer file.Close() // nolint:errcheck

	writeJSON(w, http.StatusOK, map[string]any{
		"novel_text": "polished upload",
		"scenes": []models.Scene{
			{ID: "1", Title: "Opening", Description: "The story begins"},
		},
	})
}

func (b *FakeBackend) analyzeVisual(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "expected multipart form"})
		return
	}

	spec := models.VisualSpec{
		RoleFeatures: "derived from: " + r.FormValue("role_text"),
		ArtStyle:     "derived from: " + r.FormValue("style_text"),
	}
	if _, _, err := r.FormFile("role_image"); err == nil {
		spec.ReferenceImages = append(spec.ReferenceImages, "uploads/visual/role.png")
	}
	if _, _, err := r.FormFile("style_image"); err == nil {
		spec.ReferenceImages = append(spec.ReferenceImages, "uploads/visual/style.png")
	}

	writeJSON(w, http.StatusOK, spec)
}

func (b *FakeBackend) recognizeScenes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		NovelText string `json:"novel_text"`
		NumShots  int    `json:"num_shots"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || strings.TrimSpace(body.NovelText) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "Empty novel_text"})
		return
	}

	count := body.NumShots
	if count <= 0 {
		count = 3
	}
	scenes := make([]models.Scene, 0, count)
	for i := 1; i <= count; i++ {
		scenes = append(scenes, models.Scene{
			ID:          strconv.Itoa(i),
			Title:       fmt.Sprintf("Shot %d", i),
			Description: fmt.Sprintf("Description of shot %d", i),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{"scenes": scenes})
}

func (b *FakeBackend) generateStoryboard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Scenes []models.Scene `json:"scenes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "bad request"})
		return
	}

	images := make([]string, 0, len(body.Scenes))
	prompts := make([]string, 0, len(body.Scenes))
	for _, scene := range body.Scenes {
		images = append(images, fmt.Sprintf("https://img.example/%s.png", scene.ID))
		prompts = append(prompts, "prompt for "+scene.Title)
	}

	writeJSON(w, http.StatusOK, map[string]any{"images": images, "prompts": prompts})
}

// ---- project routes ----

func (b *FakeBackend) saveProject(w http.ResponseWriter, r *http.Request) {
	if !b.requireAccess(w, r) {
		return
	}

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		fail(w, http.StatusBadRequest, "bad request")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := int64(0)
	if v, ok := body["id"].(float64); ok {
		id = int64(v)
	}
	if id == 0 {
		b.nextProject++
		id = b.nextProject
	}
	body["id"] = id
	b.projects[id] = body

	success(w, map[string]any{"project_id": id}, "saved")
}

func (b *FakeBackend) getProjectFull(w http.ResponseWriter, r *http.Request) {
	if !b.requireAccess(w, r) {
		return
	}

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		fail(w, http.StatusBadRequest, "bad project id")
		return
	}

	b.mu.Lock()
	project, ok := b.projects[id]
	b.mu.Unlock()

	if !ok {
		fail(w, http.StatusNotFound, "not found or no permission")
		return
	}
	success(w, project, "ok")
}

func (b *FakeBackend) listProjects(w http.ResponseWriter, r *http.Request) {
	if !b.requireAccess(w, r) {
		return
	}

	b.mu.Lock()
	summaries := make([]map[string]any, 0, len(b.projects))
	for id, project := range b.projects {
		summaries = append(summaries, map[string]any{"id": id, "name": project["name"]})
	}
	b.mu.Unlock()

	success(w, map[string]any{"projects": summaries}, "ok")
}

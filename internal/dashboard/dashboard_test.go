package dashboard

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/magroup/magnus/internal/auth"
	"github.com/magroup/magnus/internal/chat"
	"github.com/magroup/magnus/internal/config"
	"github.com/magroup/magnus/internal/connector"
	"github.com/magroup/magnus/internal/db"
	"github.com/magroup/magnus/internal/kb"
	"github.com/magroup/magnus/internal/llm"
	"github.com/magroup/magnus/internal/retrieval"
)

type fakeProvider struct {
	response string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	return &llm.CompletionResponse{Content: f.response}, nil
}

func (f *fakeProvider) Stream(ctx context.Context, req llm.CompletionRequest, fn llm.StreamFunc) (*llm.CompletionResponse, error) {
	for _, word := range strings.SplitAfter(f.response, " ") {
		if err := fn(word); err != nil {
			return nil, err
		}
	}
	return &llm.CompletionResponse{Content: f.response}, nil
}

type fixedConnector struct{}

func (f *fixedConnector) Name() string { return "test" }
func (f *fixedConnector) TestConnection(ctx context.Context) (string, error) {
	return "ok", nil
}
func (f *fixedConnector) Fetch(ctx context.Context, progress connector.ProgressFunc) ([]connector.RawDocument, error) {
	return []connector.RawDocument{
		{Name: "Pulse Claims Guide.txt", Content: "To submit a new claim, open the Claims tab.", Priority: 1},
	}, nil
}

func setupTest(t *testing.T) *chi.Mux {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("opening test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	kbSvc := kb.New(&fixedConnector{}, database, config.KnowledgeConfig{CacheTTLMinutes: 30})
	engine := chat.NewEngine(chat.NewStore(database), kbSvc,
		&fakeProvider{response: "Open the Claims tab."}, "test-model", retrieval.DefaultOptions())
	authSvc := auth.New(config.AuthConfig{
		Username:      "MAG",
		LoginPassword: "secret",
		AdminPassword: "admin-secret",
	})

	d := New(engine, kbSvc, authSvc)
	r := chi.NewRouter()
	d.RegisterRoutes(r)
	return r
}

// login performs the login request and returns the session cookie value.
func login(t *testing.T, server *httptest.Server, username, password string) string {
	t.Helper()
	body := strings.NewReader(`{"username":"` + username + `","password":"` + password + `"}`)
	resp, err := http.Post(server.URL+"/api/login", "application/json", body)
	if err != nil {
		t.Fatalf("login request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: got %d", resp.StatusCode)
	}
	for _, c := range resp.Cookies() {
		if c.Name == auth.CookieName {
			return c.Value
		}
	}
	t.Fatal("no session cookie in login response")
	return ""
}

func dialChat(t *testing.T, server *httptest.Server, token string) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	header := http.Header{}
	header.Set("Cookie", auth.CookieName+"="+token)
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("websocket dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestServeIndex(t *testing.T) {
	r := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("expected text/html content type, got %q", ct)
	}
	if !strings.Contains(w.Body.String(), "MAGnus Knowledge Bot") {
		t.Error("expected HTML to contain 'MAGnus Knowledge Bot'")
	}
}

func TestKBStatusRequiresLogin(t *testing.T) {
	r := setupTest(t)

	req := httptest.NewRequest(http.MethodGet, "/api/kb/status", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

func TestLoginAndKBStatus(t *testing.T) {
	server := httptest.NewServer(setupTest(t))
	defer server.Close()

	token := login(t, server, "MAG", "secret")

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/kb/status", nil)
	req.Header.Set("Cookie", auth.CookieName+"="+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status endpoint: got %d", resp.StatusCode)
	}

	var stats kb.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatal(err)
	}
	if stats.Connector != "test" {
		t.Errorf("connector: got %q", stats.Connector)
	}
}

func TestLoginRejected(t *testing.T) {
	server := httptest.NewServer(setupTest(t))
	defer server.Close()

	body := strings.NewReader(`{"username":"MAG","password":"wrong"}`)
	resp, err := http.Post(server.URL+"/api/login", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", resp.StatusCode)
	}
}

func TestKBRefresh(t *testing.T) {
	server := httptest.NewServer(setupTest(t))
	defer server.Close()
	token := login(t, server, "MAG", "secret")

	req, _ := http.NewRequest(http.MethodPost, server.URL+"/api/kb/refresh", nil)
	req.Header.Set("Cookie", auth.CookieName+"="+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh: got %d", resp.StatusCode)
	}

	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["document_count"].(float64) != 1 {
		t.Errorf("document_count: got %v", body["document_count"])
	}
}

func TestAdminDocumentsRequiresAdmin(t *testing.T) {
	server := httptest.NewServer(setupTest(t))
	defer server.Close()
	userToken := login(t, server, "MAG", "secret")

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/admin/documents", nil)
	req.Header.Set("Cookie", auth.CookieName+"="+userToken)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("user on admin route: got %d, want 403", resp.StatusCode)
	}

	body := strings.NewReader(`{"password":"admin-secret"}`)
	adminResp, err := http.Post(server.URL+"/api/admin/login", "application/json", body)
	if err != nil {
		t.Fatal(err)
	}
	defer adminResp.Body.Close()
	var adminToken string
	for _, c := range adminResp.Cookies() {
		if c.Name == auth.CookieName {
			adminToken = c.Value
		}
	}

	req, _ = http.NewRequest(http.MethodGet, server.URL+"/api/admin/documents", nil)
	req.Header.Set("Cookie", auth.CookieName+"="+adminToken)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("admin on admin route: got %d, want 200", resp.StatusCode)
	}
}

func TestWebSocketRequiresLogin(t *testing.T) {
	server := httptest.NewServer(setupTest(t))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws/chat"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err == nil {
		t.Fatal("expected dial to fail without a session")
	}
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("expected 401 handshake response, got %+v", resp)
	}
}

func TestWebSocketConversation(t *testing.T) {
	server := httptest.NewServer(setupTest(t))
	defer server.Close()
	token := login(t, server, "MAG", "secret")
	conn := dialChat(t, server, token)

	// Start a session: welcome message then state update.
	if err := conn.WriteJSON(chatRequest{Type: "start"}); err != nil {
		t.Fatal(err)
	}
	var welcome chatResponse
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatal(err)
	}
	if welcome.Type != "response" || !strings.Contains(welcome.Content, "Welcome to MAGnus") {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}
	var state chatResponse
	if err := conn.ReadJSON(&state); err != nil {
		t.Fatal(err)
	}
	if state.Type != "state" || state.State != chat.StateCategorizing {
		t.Fatalf("unexpected state message: %+v", state)
	}

	// Pick the question category.
	if err := conn.WriteJSON(chatRequest{Type: "message", SessionID: welcome.SessionID, Content: "question"}); err != nil {
		t.Fatal(err)
	}
	var categorized chatResponse
	if err := conn.ReadJSON(&categorized); err != nil {
		t.Fatal(err)
	}
	if categorized.State != chat.StateCategorized {
		t.Fatalf("state after category: %+v", categorized)
	}
	conn.ReadJSON(&state) // state update

	// Ask a question and collect the streamed answer.
	if err := conn.WriteJSON(chatRequest{Type: "message", SessionID: welcome.SessionID, Content: "How do I submit a new claim?"}); err != nil {
		t.Fatal(err)
	}

	var streamed strings.Builder
	for {
		var msg chatResponse
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatal(err)
		}
		if msg.Type == "delta" {
			streamed.WriteString(msg.Content)
			continue
		}
		if msg.Type == "response" {
			if msg.Content != "Open the Claims tab." {
				t.Errorf("final content: got %q", msg.Content)
			}
			if streamed.String() != msg.Content {
				t.Errorf("streamed %q != final %q", streamed.String(), msg.Content)
			}
			break
		}
		t.Fatalf("unexpected message: %+v", msg)
	}
}

func TestWebSocketErrors(t *testing.T) {
	server := httptest.NewServer(setupTest(t))
	defer server.Close()
	token := login(t, server, "MAG", "secret")
	conn := dialChat(t, server, token)

	cases := []struct {
		req  chatRequest
		want string
	}{
		{chatRequest{Type: "message", Content: "hi"}, "session_id is required"},
		{chatRequest{Type: "message", SessionID: "s", Content: ""}, "content is required"},
		{chatRequest{Type: "bogus", Content: "hi"}, "unknown message type"},
	}
	for _, tc := range cases {
		if err := conn.WriteJSON(tc.req); err != nil {
			t.Fatal(err)
		}
		var resp chatResponse
		if err := conn.ReadJSON(&resp); err != nil {
			t.Fatal(err)
		}
		if resp.Type != "error" || !strings.Contains(resp.Content, tc.want) {
			t.Errorf("request %+v: got %+v, want error containing %q", tc.req, resp, tc.want)
		}
	}
}

func TestExportEndpoint(t *testing.T) {
	server := httptest.NewServer(setupTest(t))
	defer server.Close()
	token := login(t, server, "MAG", "secret")
	conn := dialChat(t, server, token)

	if err := conn.WriteJSON(chatRequest{Type: "start"}); err != nil {
		t.Fatal(err)
	}
	var welcome chatResponse
	if err := conn.ReadJSON(&welcome); err != nil {
		t.Fatal(err)
	}

	req, _ := http.NewRequest(http.MethodGet, server.URL+"/api/chat/export?session_id="+welcome.SessionID, nil)
	req.Header.Set("Cookie", auth.CookieName+"="+token)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: got %d", resp.StatusCode)
	}

	var export chat.Export
	if err := json.NewDecoder(resp.Body).Decode(&export); err != nil {
		t.Fatal(err)
	}
	if export.SessionID != welcome.SessionID {
		t.Errorf("session id: got %q", export.SessionID)
	}
	if len(export.Messages) != 1 {
		t.Errorf("messages: got %d, want 1", len(export.Messages))
	}
}

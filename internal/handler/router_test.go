package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/zhouzirui/objectchat/backend/internal/handler"
	"github.com/zhouzirui/objectchat/backend/internal/model/persona"
	chatservice "github.com/zhouzirui/objectchat/backend/internal/service/chat"
	"github.com/zhouzirui/objectchat/backend/internal/service/fallback"
	personaservice "github.com/zhouzirui/objectchat/backend/internal/service/persona"
	"github.com/zhouzirui/objectchat/backend/internal/storage/sqlite"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := sqlite.Open(":memory:")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	resolver := personaservice.NewResolver(nil)
	bank := fallback.New(1)
	contexts := chatservice.NewMemoryContextStore(time.Hour)
	chatSvc := chatservice.NewService(resolver, nil, bank, contexts, store)

	return handler.NewRouter(chatSvc, store, store, nil)
}

func postJSON(t *testing.T, srv http.Handler, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	encoded, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(encoded))
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func getPath(t *testing.T, srv http.Handler, path, userID string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
	}
	return body
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	rec := getPath(t, srv, "/api/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	body := decodeBody(t, rec)
	if body["status"] != "healthy" {
		t.Fatalf("status field = %v", body["status"])
	}
	if body["database"] != "connected" {
		t.Fatalf("database field = %v", body["database"])
	}
	if body["llm"] != "not initialized" {
		t.Fatalf("llm field = %v", body["llm"])
	}
}

func TestChatRequiresMessage(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/chat", "", map[string]any{"message": ""})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatAnonymousSwitch(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/chat", "", map[string]any{"message": "Chat with a lamp"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	lamp, _ := persona.Builtin("lamp")
	if body["response"] != lamp.Introduction {
		t.Fatalf("response = %v", body["response"])
	}
	if body["object"] != "lamp" {
		t.Fatalf("object = %v", body["object"])
	}
	clientID, _ := body["client_id"].(string)
	if clientID == "" {
		t.Fatal("expected an issued client_id")
	}

	// The issued client id carries the conversation forward.
	rec = postJSON(t, srv, "/api/chat", "", map[string]any{"message": "hello", "client_id": clientID})
	body = decodeBody(t, rec)
	if body["object"] != "lamp" {
		t.Fatalf("object = %v after follow-up", body["object"])
	}
}

func TestChatNoObjectPrompt(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/chat", "", map[string]any{"message": "hello"})
	body := decodeBody(t, rec)
	if body["response"] != chatservice.NoObjectPrompt {
		t.Fatalf("response = %v", body["response"])
	}
	if body["object"] != nil {
		t.Fatalf("object = %v, want null", body["object"])
	}
}

func TestChatAuthenticatedOpensSession(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/chat", "u1", map[string]any{"message": "chat with a book"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	body := decodeBody(t, rec)
	sessionID, _ := body["session_id"].(string)
	if sessionID == "" {
		t.Fatal("expected a session_id for an authenticated switch")
	}

	rec = getPath(t, srv, "/api/sessions/"+sessionID, "u1")
	loaded := decodeBody(t, rec)
	if loaded["object_name"] != "book" {
		t.Fatalf("object_name = %v", loaded["object_name"])
	}
	messages, _ := loaded["messages"].([]any)
	if len(messages) != 1 {
		t.Fatalf("messages = %v", loaded["messages"])
	}
}

func TestChatUnknownSession(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/chat", "u1", map[string]any{
		"message": "hello", "session_id": "missing",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSessionsRequireAuth(t *testing.T) {
	srv := newTestServer(t)

	for _, rec := range []*httptest.ResponseRecorder{
		postJSON(t, srv, "/api/sessions", "", map[string]any{"object_name": "lamp"}),
		getPath(t, srv, "/api/sessions", ""),
		getPath(t, srv, "/api/sessions/some-id", ""),
	} {
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", rec.Code)
		}
		body := decodeBody(t, rec)
		if body["success"] != false {
			t.Fatalf("success = %v", body["success"])
		}
	}
}

func TestSessionSaveLoadRoundTrip(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/sessions", "u1", map[string]any{
		"object_name": "lamp",
		"messages": []map[string]string{
			{"role": "assistant", "content": "Hello from the lamp"},
			{"role": "user", "content": "hi lamp"},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d, body = %s", rec.Code, rec.Body.String())
	}
	saved := decodeBody(t, rec)
	sessionID, _ := saved["session_id"].(string)
	if sessionID == "" {
		t.Fatal("expected a session_id")
	}

	rec = getPath(t, srv, "/api/sessions/"+sessionID, "u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("load status = %d", rec.Code)
	}
	loaded := decodeBody(t, rec)
	messages, _ := loaded["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("messages = %v", loaded["messages"])
	}
	first, _ := messages[0].(map[string]any)
	if first["role"] != "assistant" || first["content"] != "Hello from the lamp" {
		t.Fatalf("first message = %v", first)
	}
}

func TestSessionSaveValidation(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/sessions", "u1", map[string]any{"object_name": "lamp"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestSessionLoadForeignOwner(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/sessions", "u1", map[string]any{
		"object_name": "lamp",
		"messages":    []map[string]string{{"role": "user", "content": "hi"}},
	})
	saved := decodeBody(t, rec)
	sessionID, _ := saved["session_id"].(string)

	rec = getPath(t, srv, "/api/sessions/"+sessionID, "u2")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSessionDelete(t *testing.T) {
	srv := newTestServer(t)

	rec := postJSON(t, srv, "/api/sessions", "u1", map[string]any{
		"object_name": "lamp",
		"messages":    []map[string]string{{"role": "user", "content": "hi"}},
	})
	saved := decodeBody(t, rec)
	sessionID, _ := saved["session_id"].(string)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sessionID, nil)
	req.Header.Set("X-User-ID", "u1")
	del := httptest.NewRecorder()
	srv.ServeHTTP(del, req)
	if del.Code != http.StatusOK {
		t.Fatalf("delete status = %d", del.Code)
	}

	rec = getPath(t, srv, "/api/sessions/"+sessionID, "u1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d after delete, want 404", rec.Code)
	}
}

func TestPersonaCatalog(t *testing.T) {
	srv := newTestServer(t)

	rec := getPath(t, srv, "/api/personas", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var entries []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v (%s)", err, rec.Body.String())
	}
	if len(entries) != len(persona.Objects()) {
		t.Fatalf("got %d entries, want %d", len(entries), len(persona.Objects()))
	}
}

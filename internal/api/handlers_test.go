package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sreejagatab/linkedin-qbot/internal/pipeline"
	"github.com/sreejagatab/linkedin-qbot/internal/profile"
	"github.com/sreejagatab/linkedin-qbot/internal/storage"
)

// --- mocks ---

type mockProcessor struct {
	result    pipeline.Result
	lastQuery string
	lastUser  string
}

func (m *mockProcessor) ProcessFrom(_ context.Context, query, userID string) pipeline.Result {
	m.lastQuery = query
	m.lastUser = userID
	return m.result
}

type mockProfiles struct {
	records []profile.Record
	putErr  error
	put     []profile.Record
}

func (m *mockProfiles) All() []profile.Record { return m.records }

func (m *mockProfiles) Get(id string) (profile.Record, bool) {
	for _, rec := range m.records {
		if rec.Identifier == id {
			return rec, true
		}
	}
	return profile.Record{}, false
}

func (m *mockProfiles) Put(rec profile.Record) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.put = append(m.put, rec)
	return nil
}

type mockHistory struct {
	logs []storage.QueryLog
}

func (m *mockHistory) ListQueryLogs(limit, offset int) ([]storage.QueryLog, error) {
	if offset >= len(m.logs) {
		return nil, nil
	}
	end := offset + limit
	if end > len(m.logs) {
		end = len(m.logs)
	}
	return m.logs[offset:end], nil
}

func (m *mockHistory) GetQueryLog(id string) (storage.QueryLog, error) {
	for _, l := range m.logs {
		if l.ID == id {
			return l, nil
		}
	}
	return storage.QueryLog{}, storage.ErrNotFound
}

type mockSender struct {
	number string
	text   string
	err    error
}

func (m *mockSender) SendSessionMessage(_ context.Context, number, text string) error {
	m.number = number
	m.text = text
	return m.err
}

// --- helpers ---

func successResult() pipeline.Result {
	return pipeline.Result{
		Success:   true,
		ProfileID: "asmith",
		Category:  "experience",
		Response:  "Alice Smith currently works as Engineer at Acme (2022-Present).",
	}
}

func testDeps() (Deps, *mockProcessor, *mockProfiles) {
	proc := &mockProcessor{result: successResult()}
	profiles := &mockProfiles{records: []profile.Record{
		{
			Identifier: "asmith",
			Basics:     profile.Basics{Name: "Alice Smith", Headline: "Engineer at Acme"},
		},
	}}
	return Deps{
		Processor: proc,
		Profiles:  profiles,
		Token:     "test-token",
	}, proc, profiles
}

func doJSON(t *testing.T, handler http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}

// --- tests ---

func TestHealth(t *testing.T) {
	deps, _, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodGet, "/health", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestRoot(t *testing.T) {
	deps, _, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodGet, "/", "", "")
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["message"] == "" {
		t.Error("missing service banner")
	}
}

func TestQuery(t *testing.T) {
	deps, proc, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/query",
		`{"query": "What is Alice Smith's current job?", "user_id": "u1"}`, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if proc.lastQuery != "What is Alice Smith's current job?" {
		t.Errorf("query = %q", proc.lastQuery)
	}
	if proc.lastUser != "u1" {
		t.Errorf("userID = %q, want u1", proc.lastUser)
	}

	var result pipeline.Result
	decodeBody(t, rec, &result)
	if !result.Success || result.ProfileID != "asmith" {
		t.Errorf("result = %+v", result)
	}
}

func TestQuery_MissingQuery(t *testing.T) {
	deps, _, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/query", `{}`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestQuery_InvalidBody(t *testing.T) {
	deps, _, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/query", `not json`, "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestListProfiles(t *testing.T) {
	deps, _, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodGet, "/profiles", "", "")

	var summaries []profileSummary
	decodeBody(t, rec, &summaries)
	if len(summaries) != 1 {
		t.Fatalf("got %d summaries, want 1", len(summaries))
	}
	if summaries[0].ProfileID != "asmith" || summaries[0].Name != "Alice Smith" {
		t.Errorf("summary = %+v", summaries[0])
	}
}

func TestGetProfile(t *testing.T) {
	deps, _, _ := testDeps()
	handler := NewHandler(deps)

	rec := doJSON(t, handler, http.MethodGet, "/profiles/asmith", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got profile.Record
	decodeBody(t, rec, &got)
	if got.Basics.Name != "Alice Smith" {
		t.Errorf("Name = %q", got.Basics.Name)
	}

	rec = doJSON(t, handler, http.MethodGet, "/profiles/nobody", "", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestAddProfile_RequiresAuth(t *testing.T) {
	deps, _, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/profiles",
		`{"profile_id": "bjones", "basics": {"name": "Bob Jones"}}`, "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}

	rec = doJSON(t, NewHandler(deps), http.MethodPost, "/profiles",
		`{"profile_id": "bjones", "basics": {"name": "Bob Jones"}}`, "wrong-token")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status with bad token = %d, want 401", rec.Code)
	}
}

func TestAddProfile(t *testing.T) {
	deps, _, profiles := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/profiles",
		`{"profile_id": "bjones", "basics": {"name": "Bob Jones"}}`, "test-token")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "success" || body["profile_id"] != "bjones" {
		t.Errorf("body = %v", body)
	}
	if len(profiles.put) != 1 || profiles.put[0].Identifier != "bjones" {
		t.Errorf("put = %+v", profiles.put)
	}
}

func TestAddProfile_Invalid(t *testing.T) {
	deps, _, profiles := testDeps()
	profiles.putErr = profile.ErrInvalidRecord

	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/profiles",
		`{"basics": {"name": "No ID"}}`, "test-token")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestWatiWebhook_NonMessageIgnored(t *testing.T) {
	deps, proc, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/wati-webhook",
		`{"event": "delivery", "userData": {}, "payload": {}}`, "")

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ignored" {
		t.Errorf("status = %q, want ignored", body["status"])
	}
	if proc.lastQuery != "" {
		t.Error("processor was called for a non-message event")
	}
}

func TestWatiWebhook_NoTextIgnored(t *testing.T) {
	deps, _, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/wati-webhook",
		`{"event": "message", "userData": {"waId": "155"}, "payload": {}}`, "")

	var body map[string]string
	decodeBody(t, rec, &body)
	if body["status"] != "ignored" {
		t.Errorf("status = %q, want ignored", body["status"])
	}
}

func TestWatiWebhook_RepliesViaSender(t *testing.T) {
	deps, proc, _ := testDeps()
	sender := &mockSender{}
	deps.Sender = sender

	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/wati-webhook",
		`{"event": "message", "userData": {"waId": "15551234567"}, "payload": {"text": "What is Alice Smith's current job?"}}`, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if proc.lastUser != "15551234567" {
		t.Errorf("userID = %q, want the waId", proc.lastUser)
	}
	if sender.number != "15551234567" {
		t.Errorf("sender number = %q", sender.number)
	}
	if sender.text != successResult().Response {
		t.Errorf("sender text = %q", sender.text)
	}

	var body map[string]any
	decodeBody(t, rec, &body)
	if body["status"] != "success" {
		t.Errorf("status = %v", body["status"])
	}
	if body["whatsapp_number"] != "15551234567" {
		t.Errorf("whatsapp_number = %v", body["whatsapp_number"])
	}
}

func TestWatiWebhook_FailureListsProfiles(t *testing.T) {
	deps, proc, _ := testDeps()
	proc.result = pipeline.Result{
		Success:           false,
		Error:             "Could not identify a profile in your query",
		AvailableProfiles: []string{"asmith", "jdoe"},
	}

	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/wati-webhook",
		`{"event": "message", "userData": {"waId": "155"}, "payload": {"text": "who?"}}`, "")

	var body map[string]any
	decodeBody(t, rec, &body)
	response, _ := body["response"].(string)
	if !strings.Contains(response, "Available profiles: asmith, jdoe") {
		t.Errorf("response = %q, want available profile list", response)
	}
}

func TestWatiWebhook_SenderFailureStillResponds(t *testing.T) {
	deps, _, _ := testDeps()
	deps.Sender = &mockSender{err: context.DeadlineExceeded}

	rec := doJSON(t, NewHandler(deps), http.MethodPost, "/wati-webhook",
		`{"event": "message", "userData": {"waId": "155"}, "payload": {"text": "What is Alice Smith's current job?"}}`, "")
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 despite sender failure", rec.Code)
	}
}

func TestListQueries(t *testing.T) {
	deps, _, _ := testDeps()
	deps.History = &mockHistory{logs: []storage.QueryLog{
		{ID: "q3"}, {ID: "q2"}, {ID: "q1"},
	}}
	handler := NewHandler(deps)

	rec := doJSON(t, handler, http.MethodGet, "/queries", "", "test-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var logs []storage.QueryLog
	decodeBody(t, rec, &logs)
	if len(logs) != 3 || logs[0].ID != "q3" {
		t.Errorf("logs = %+v", logs)
	}

	rec = doJSON(t, handler, http.MethodGet, "/queries?limit=1&offset=1", "", "test-token")
	decodeBody(t, rec, &logs)
	if len(logs) != 1 || logs[0].ID != "q2" {
		t.Errorf("page = %+v", logs)
	}
}

func TestListQueries_RequiresAuth(t *testing.T) {
	deps, _, _ := testDeps()
	deps.History = &mockHistory{}
	rec := doJSON(t, NewHandler(deps), http.MethodGet, "/queries", "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestGetQuery(t *testing.T) {
	deps, _, _ := testDeps()
	deps.History = &mockHistory{logs: []storage.QueryLog{{ID: "q1", Query: "who is alice"}}}
	handler := NewHandler(deps)

	rec := doJSON(t, handler, http.MethodGet, "/queries/q1", "", "test-token")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var entry storage.QueryLog
	decodeBody(t, rec, &entry)
	if entry.Query != "who is alice" {
		t.Errorf("entry = %+v", entry)
	}

	rec = doJSON(t, handler, http.MethodGet, "/queries/missing", "", "test-token")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestQueries_NoHistoryConfigured(t *testing.T) {
	deps, _, _ := testDeps()
	rec := doJSON(t, NewHandler(deps), http.MethodGet, "/queries", "", "test-token")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

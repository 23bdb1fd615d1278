package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"sync"
)

// MockRESTServer simulates just enough of the REST transport's remote
// endpoint (issue create/get/edit) to exercise the Hybrid Client's
// creation and rollback paths without a real token.
type MockRESTServer struct {
	Server *httptest.Server

	mu         sync.Mutex
	nextNum    int
	issues     map[int]map[string]any
	closed     map[int]bool
	failEdits  map[int]bool
	repoLabels map[string]bool
	comments   map[int][]string
	login      string
}

// SetAuthenticatedUser configures the login returned by GET /user,
// simulating the authenticated principal the mock token belongs to.
func (m *MockRESTServer) SetAuthenticatedUser(login string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.login = login
}

// FailEditsFor makes every PATCH to this issue number return 500,
// simulating an edit (e.g. the body-reference fallback write) that
// fails irrecoverably.
func (m *MockRESTServer) FailEditsFor(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failEdits == nil {
		m.failEdits = make(map[int]bool)
	}
	m.failEdits[n] = true
}

func NewMockRESTServer() *MockRESTServer {
	m := &MockRESTServer{
		nextNum:  100,
		issues:   make(map[int]map[string]any),
		closed:   make(map[int]bool),
		comments: make(map[int][]string),
	}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

func (m *MockRESTServer) URL() string { return m.Server.URL + "/" }

func (m *MockRESTServer) Close() { m.Server.Close() }

// go-github's WithEnterpriseURLs rewrites the base path to end in
// "api/v3/" unless the host already looks like api.github.com, so the
// mock tolerates an optional "/api/v3" prefix on every route.
var issueCreateRe = regexp.MustCompile(`^(?:/api/v3)?/repos/([^/]+)/([^/]+)/issues$`)
var issueEditRe = regexp.MustCompile(`^(?:/api/v3)?/repos/([^/]+)/([^/]+)/issues/(\d+)$`)
var issueLabelsRe = regexp.MustCompile(`^(?:/api/v3)?/repos/([^/]+)/([^/]+)/issues/(\d+)/labels$`)
var issueLabelRe = regexp.MustCompile(`^(?:/api/v3)?/repos/([^/]+)/([^/]+)/issues/(\d+)/labels/([^/]+)$`)
var issueAssigneesRe = regexp.MustCompile(`^(?:/api/v3)?/repos/([^/]+)/([^/]+)/issues/(\d+)/assignees$`)
var issueCommentsRe = regexp.MustCompile(`^(?:/api/v3)?/repos/([^/]+)/([^/]+)/issues/(\d+)/comments$`)

var repoLabelsRe = regexp.MustCompile(`^(?:/api/v3)?/repos/([^/]+)/([^/]+)/labels$`)

var userRe = regexp.MustCompile(`^(?:/api/v3)?/user$`)

func (m *MockRESTServer) handle(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if r.Method == http.MethodGet && userRe.MatchString(r.URL.Path) {
		m.mu.Lock()
		login := m.login
		m.mu.Unlock()
		if login == "" {
			login = "mock-user"
		}
		json.NewEncoder(w).Encode(map[string]any{"login": login})
		return
	}

	if r.Method == http.MethodPost && repoLabelsRe.MatchString(r.URL.Path) {
		var label map[string]any
		json.NewDecoder(r.Body).Decode(&label)
		name, _ := label["name"].(string)
		m.mu.Lock()
		if m.repoLabels == nil {
			m.repoLabels = make(map[string]bool)
		}
		exists := m.repoLabels[name]
		m.repoLabels[name] = true
		m.mu.Unlock()
		if exists {
			w.WriteHeader(http.StatusUnprocessableEntity)
			json.NewEncoder(w).Encode(map[string]any{
				"message": "Validation Failed",
				"errors":  []map[string]any{{"resource": "Label", "code": "already_exists", "field": "name"}},
			})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(label)
		return
	}

	if r.Method == http.MethodPost && issueCreateRe.MatchString(r.URL.Path) {
		var body map[string]any
		json.NewDecoder(r.Body).Decode(&body)
		m.mu.Lock()
		num := m.nextNum
		m.nextNum++
		body["number"] = num
		body["state"] = "open"
		body["html_url"] = fmt.Sprintf("https://github.com/mock/issue/%d", num)
		// The create request carries labels as bare strings; the issue
		// representation returns them as objects, like the real service.
		if names, ok := body["labels"].([]any); ok {
			objs := make([]any, 0, len(names))
			for _, n := range names {
				objs = append(objs, map[string]any{"name": n})
			}
			body["labels"] = objs
		}
		m.issues[num] = body
		m.mu.Unlock()
		json.NewEncoder(w).Encode(body)
		return
	}

	if matches := issueLabelsRe.FindStringSubmatch(r.URL.Path); matches != nil && r.Method == http.MethodPut {
		var num int
		fmt.Sscanf(matches[3], "%d", &num)
		var labels []string
		json.NewDecoder(r.Body).Decode(&labels)
		m.mu.Lock()
		issue, ok := m.issues[num]
		if ok {
			replaced := make([]any, 0, len(labels))
			for _, l := range labels {
				replaced = append(replaced, map[string]any{"name": l})
			}
			issue["labels"] = replaced
		}
		m.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
			return
		}
		json.NewEncoder(w).Encode(issue["labels"])
		return
	}

	if matches := issueLabelsRe.FindStringSubmatch(r.URL.Path); matches != nil && r.Method == http.MethodPost {
		var num int
		fmt.Sscanf(matches[3], "%d", &num)
		var labels []string
		json.NewDecoder(r.Body).Decode(&labels)
		m.mu.Lock()
		issue, ok := m.issues[num]
		if ok {
			existing, _ := issue["labels"].([]any)
			for _, l := range labels {
				existing = append(existing, map[string]any{"name": l})
			}
			issue["labels"] = existing
		}
		m.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
			return
		}
		json.NewEncoder(w).Encode(issue["labels"])
		return
	}

	if matches := issueLabelRe.FindStringSubmatch(r.URL.Path); matches != nil && r.Method == http.MethodDelete {
		var num int
		fmt.Sscanf(matches[3], "%d", &num)
		m.mu.Lock()
		_, ok := m.issues[num]
		m.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
			return
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode([]any{})
		return
	}

	if matches := issueCommentsRe.FindStringSubmatch(r.URL.Path); matches != nil && r.Method == http.MethodPost {
		var num int
		fmt.Sscanf(matches[3], "%d", &num)
		var comment map[string]any
		json.NewDecoder(r.Body).Decode(&comment)
		m.mu.Lock()
		_, ok := m.issues[num]
		if ok {
			b, _ := comment["body"].(string)
			m.comments[num] = append(m.comments[num], b)
			comment["id"] = len(m.comments[num])
		}
		m.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(comment)
		return
	}

	if matches := issueAssigneesRe.FindStringSubmatch(r.URL.Path); matches != nil && r.Method == http.MethodPost {
		var num int
		fmt.Sscanf(matches[3], "%d", &num)
		m.mu.Lock()
		issue, ok := m.issues[num]
		m.mu.Unlock()
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
			return
		}
		json.NewEncoder(w).Encode(issue)
		return
	}

	if matches := issueEditRe.FindStringSubmatch(r.URL.Path); matches != nil {
		var num int
		fmt.Sscanf(matches[3], "%d", &num)
		m.mu.Lock()
		defer m.mu.Unlock()
		issue, ok := m.issues[num]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]any{"message": "Not Found"})
			return
		}
		switch r.Method {
		case http.MethodPatch:
			var patch map[string]any
			json.NewDecoder(r.Body).Decode(&patch)
			if _, isBody := patch["body"]; isBody && m.failEdits[num] {
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(map[string]any{"message": "mocked body update failure"})
				return
			}
			// An edit request carries the milestone as its bare number;
			// the issue representation returns it as an object.
			if n, ok := patch["milestone"].(float64); ok {
				patch["milestone"] = map[string]any{"number": n}
			}
			for k, v := range patch {
				issue[k] = v
			}
			if s, ok := patch["state"]; ok && s == "closed" {
				m.closed[num] = true
			}
			json.NewEncoder(w).Encode(issue)
			return
		case http.MethodGet:
			json.NewEncoder(w).Encode(issue)
			return
		}
	}

	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]any{"message": "mock route not found: " + r.Method + " " + r.URL.Path})
}

// Comments returns the comment bodies posted to issue n, in order.
func (m *MockRESTServer) Comments(n int) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.comments[n]...)
}

// Body returns the current body of issue n, or "" if it has none.
func (m *MockRESTServer) Body(n int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if issue, ok := m.issues[n]; ok {
		if b, ok := issue["body"].(string); ok {
			return b
		}
	}
	return ""
}

// IsClosed reports whether the issue numbered n was ever PATCHed with
// state=closed.
func (m *MockRESTServer) IsClosed(n int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed[n]
}

package mockapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// TestServer - фейковый API на httptest для тестов пакетов
type TestServer struct {
	Server *httptest.Server
	API    *API
}

// NewTestServer поднимает сервер с демо-данными и закрывает его в t.Cleanup
func NewTestServer(t *testing.T, opts Options) *TestServer {
	t.Helper()
	opts.Seed = true
	api, err := New(opts)
	if err != nil {
		t.Fatalf("Не удалось создать mock API: %v", err)
	}

	server := httptest.NewServer(api.Handler())
	t.Cleanup(server.Close)

	return &TestServer{Server: server, API: api}
}

func (ts *TestServer) URL() string {
	return ts.Server.URL
}

// SendRequest - JSON-запрос с bearer token (пустой token - без заголовка)
func (ts *TestServer) SendRequest(t *testing.T, method, path, token string, body interface{}) (*http.Response, string) {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Ошибка кодирования JSON для запроса: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, ts.Server.URL+path, reqBody)
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return ts.do(t, req)
}

// LoginAs логинится формой и возвращает access token
func (ts *TestServer) LoginAs(t *testing.T, email, password string) string {
	t.Helper()

	form := url.Values{"email": {email}, "password": {password}}
	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/api/auth/login", strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("Ошибка создания HTTP-запроса: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	res, body := ts.do(t, req)
	if res.StatusCode != http.StatusOK {
		t.Fatalf("Логин %s должен быть успешным, получено %d: %s", email, res.StatusCode, body)
	}

	var loginResponse struct {
		Token string `json:"access_token"`
	}
	if err := json.Unmarshal([]byte(body), &loginResponse); err != nil {
		t.Fatalf("Не удалось распарсить JSON: %v", err)
	}
	return loginResponse.Token
}

func (ts *TestServer) AdminToken(t *testing.T) string {
	return ts.LoginAs(t, SeedAdminEmail, SeedAdminPassword)
}

func (ts *TestServer) do(t *testing.T, req *http.Request) (*http.Response, string) {
	t.Helper()
	res, err := ts.Server.Client().Do(req)
	if err != nil {
		t.Fatalf("Ошибка отправки HTTP-запроса: %v", err)
	}
	defer res.Body.Close()

	resBodyBytes, err := io.ReadAll(res.Body)
	if err != nil {
		t.Fatalf("Ошибка чтения тела ответа: %v", err)
	}
	return res, string(resBodyBytes)
}

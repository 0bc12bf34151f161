package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/naveenspark/nksadmin/internal/config"
	"github.com/naveenspark/nksadmin/pkg/domain"
)

// fakeAPI serves /auth/login and /stats/dashboard. statsStatus other than
// 200 makes the stats endpoint fail with that status.
func fakeAPI(t *testing.T, statsStatus int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/login" && r.Method == http.MethodPost:
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body) //nolint:errcheck
			if body["phone"] != "9876543210" || body["password"] != "secret" {
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{"message": "Invalid credentials"}) //nolint:errcheck
				return
			}
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"token": "abc123",
				"user":  map[string]string{"id": "u1", "name": "Nisha", "phone": "9876543210", "role": "admin"},
			})
		case r.URL.Path == "/stats/dashboard":
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			if statsStatus != http.StatusOK {
				w.WriteHeader(statsStatus)
				json.NewEncoder(w).Encode(map[string]string{"message": "nope"}) //nolint:errcheck
				return
			}
			json.NewEncoder(w).Encode(map[string]any{ //nolint:errcheck
				"stats": domain.DashboardStats{TotalOrders: 12, OrdersThisWeek: 3, OrdersThisMonth: 7, TotalProducts: 40, TotalCategories: 5, TotalUsers: 99},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

// clearEnv keeps the developer's own NKS_* settings out of the tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, v := range []string{"NKS_API_URL", "NKS_TOKEN", "NKS_STATE_DIR", "NKS_REDIS_URL", "NKS_LOG_LEVEL", "NKS_LOG_FILE", "NKS_PAGE_SIZE", "NKS_TIMEOUT", "NKS_METRICS_FILE"} {
		t.Setenv(v, "")
	}
}

// execute runs the command tree with args against api and stateDir.
func execute(t *testing.T, api, stateDir, stdin string, args ...string) (string, error) {
	t.Helper()
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append(args, "--api-url", api, "--state-dir", stateDir))
	err := root.Execute()
	return out.String(), err
}

func TestLoginPersistsSession(t *testing.T) {
	clearEnv(t)
	srv := fakeAPI(t, http.StatusOK)
	dir := t.TempDir()

	out, err := execute(t, srv.URL, dir, "9876543210\nsecret\n", "login")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(out, "Logged in as Nisha.") {
		t.Errorf("output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); err != nil {
		t.Errorf("session file not written: %v", err)
	}

	out, err = execute(t, srv.URL, dir, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	for _, want := range []string{"Nisha", "9876543210", "admin", "opaque"} {
		if !strings.Contains(out, want) {
			t.Errorf("whoami missing %q:\n%s", want, out)
		}
	}
}

func TestLoginPhoneFlag(t *testing.T) {
	clearEnv(t)
	srv := fakeAPI(t, http.StatusOK)
	out, err := execute(t, srv.URL, t.TempDir(), "secret\n", "login", "--phone", "9876543210")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if strings.Contains(out, "Phone:") {
		t.Error("phone prompt shown despite --phone")
	}
}

func TestLoginRejected(t *testing.T) {
	clearEnv(t)
	srv := fakeAPI(t, http.StatusOK)
	dir := t.TempDir()
	_, err := execute(t, srv.URL, dir, "9876543210\nwrong\n", "login")
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("err = %v, want server message", err)
	}
	out, _ := execute(t, srv.URL, dir, "", "logout")
	if !strings.Contains(out, "Already logged out.") {
		t.Error("failed login must not leave a session")
	}
}

func TestLoginRequiresInput(t *testing.T) {
	clearEnv(t)
	srv := fakeAPI(t, http.StatusOK)
	_, err := execute(t, srv.URL, t.TempDir(), "", "login")
	if err == nil || !strings.Contains(err.Error(), "required") {
		t.Errorf("err = %v", err)
	}
}

func TestLogout(t *testing.T) {
	clearEnv(t)
	srv := fakeAPI(t, http.StatusOK)
	dir := t.TempDir()

	out, err := execute(t, srv.URL, dir, "", "logout")
	if err != nil || !strings.Contains(out, "Already logged out.") {
		t.Fatalf("logout on empty session: out=%q err=%v", out, err)
	}

	if _, err := execute(t, srv.URL, dir, "9876543210\nsecret\n", "login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	out, err = execute(t, srv.URL, dir, "", "logout")
	if err != nil || !strings.Contains(out, "Logged out.") {
		t.Fatalf("logout: out=%q err=%v", out, err)
	}

	out, _ = execute(t, srv.URL, dir, "", "whoami")
	if !strings.Contains(out, "nksadmin login") {
		t.Errorf("whoami after logout should show the greeting:\n%s", out)
	}
}

func TestWhoamiShowsTokenExpiry(t *testing.T) {
	clearEnv(t)
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":  "u1",
		"exp": exp.Unix(),
	}).SignedString([]byte("test-key"))
	if err != nil {
		t.Fatal(err)
	}
	t.Setenv("NKS_TOKEN", token)

	dir := t.TempDir()
	out, err := execute(t, "http://127.0.0.1:1", dir, "", "whoami")
	if err != nil {
		t.Fatalf("whoami: %v", err)
	}
	if !strings.Contains(out, "Admin") {
		t.Errorf("missing placeholder name:\n%s", out)
	}
	if !strings.Contains(out, "expires "+exp.Local().Format(time.RFC1123)) {
		t.Errorf("missing expiry:\n%s", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "session.json")); !os.IsNotExist(err) {
		t.Error("NKS_TOKEN must not be written to disk")
	}
}

func TestStats(t *testing.T) {
	clearEnv(t)
	t.Setenv("NKS_TOKEN", "abc123")
	srv := fakeAPI(t, http.StatusOK)

	out, err := execute(t, srv.URL, t.TempDir(), "", "stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, want := range []string{"Total orders", "12", "Orders this week", "Products", "40", "Users", "99"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats missing %q:\n%s", want, out)
		}
	}
}

func TestStatsNotLoggedIn(t *testing.T) {
	clearEnv(t)
	srv := fakeAPI(t, http.StatusOK)
	if _, err := execute(t, srv.URL, t.TempDir(), "", "stats"); err != errNotLoggedIn {
		t.Errorf("err = %v, want errNotLoggedIn", err)
	}
}

func TestStatsExpiredClearsSession(t *testing.T) {
	clearEnv(t)
	srv := fakeAPI(t, http.StatusUnauthorized)
	dir := t.TempDir()
	if _, err := execute(t, srv.URL, dir, "9876543210\nsecret\n", "login"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, err := execute(t, srv.URL, dir, "", "stats")
	if err == nil || !strings.Contains(err.Error(), "session expired") {
		t.Fatalf("err = %v", err)
	}
	out, _ := execute(t, srv.URL, dir, "", "logout")
	if !strings.Contains(out, "Already logged out.") {
		t.Error("401 should have cleared the stored session")
	}
}

func TestStatsServerErrorKeepsSession(t *testing.T) {
	clearEnv(t)
	srv := fakeAPI(t, http.StatusInternalServerError)
	dir := t.TempDir()
	if _, err := execute(t, srv.URL, dir, "9876543210\nsecret\n", "login"); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := execute(t, srv.URL, dir, "", "stats"); err == nil {
		t.Fatal("expected an error")
	}
	out, _ := execute(t, srv.URL, dir, "", "logout")
	if !strings.Contains(out, "Logged out.") {
		t.Error("a 500 must not clear the session")
	}
}

func TestMetricsFileWritten(t *testing.T) {
	clearEnv(t)
	t.Setenv("NKS_TOKEN", "abc123")
	srv := fakeAPI(t, http.StatusOK)
	path := filepath.Join(t.TempDir(), "metrics", "nksadmin.prom")

	if _, err := execute(t, srv.URL, t.TempDir(), "", "stats", "--metrics-file", path); err != nil {
		t.Fatalf("stats: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("metrics file: %v", err)
	}
	if !strings.Contains(string(data), `nksadmin_requests_total{method="GET",status="200"} 1`) {
		t.Errorf("metrics = %s", data)
	}
}

func TestInvalidAPIURL(t *testing.T) {
	clearEnv(t)
	_, err := execute(t, "ftp://example.com", t.TempDir(), "", "logout")
	if err == nil || !strings.Contains(err.Error(), "invalid API URL") {
		t.Errorf("err = %v", err)
	}
}

func TestConfigSavePersistsFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("NKS_TOKEN", "abc123")
	dir := t.TempDir()

	out, err := execute(t, "http://localhost:9000/api", dir, "", "config")
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if !strings.Contains(out, "api_url: http://localhost:9000/api") {
		t.Errorf("config output = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); !os.IsNotExist(err) {
		t.Fatal("config without --save must not write")
	}

	if _, err := execute(t, "http://localhost:9000/api", dir, "", "config", "--save", "--log-level", "debug"); err != nil {
		t.Fatalf("config --save: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.yaml"))
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "abc123") {
		t.Error("NKS_TOKEN written to config.yaml")
	}

	cfg, err := config.Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != "http://localhost:9000/api" || cfg.LogLevel != "debug" {
		t.Errorf("saved config = %+v", cfg)
	}
}

func TestFlagsOverrideConfig(t *testing.T) {
	cfg := config.Defaults(t.TempDir())
	cfg.LogFile = "from-file.log"
	g := &globalFlags{apiURL: "http://localhost:9000/api", logLevel: "debug"}
	g.apply(cfg)

	if cfg.APIURL != "http://localhost:9000/api" || cfg.LogLevel != "debug" {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.LogFile != "from-file.log" {
		t.Error("unset flag overrode the config file")
	}
}

func TestVersion(t *testing.T) {
	clearEnv(t)
	out, err := execute(t, "http://127.0.0.1:1", t.TempDir(), "", "version")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "nksadmin "+version {
		t.Errorf("version = %q", out)
	}
}

func TestHelpListsCommands(t *testing.T) {
	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"--help"})
	if err := root.Execute(); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"nksadmin login", "nksadmin logout", "nksadmin whoami", "nksadmin stats", "nksadmin config", "--api-url", "--state-dir"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("help missing %q", want)
		}
	}
}

func TestGreetingBanner(t *testing.T) {
	var out bytes.Buffer
	printGreeting(&out)
	if !strings.Contains(out.String(), "To sign in: nksadmin login") {
		t.Errorf("greeting = %q", out.String())
	}
}

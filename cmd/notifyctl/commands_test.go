package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notify-gateway/internal/domain"
)

const directoryJSON = `[
	{"id":"1","name":"A - Choi, Sam","phone":"555-1","identificationNumber":"X1"},
	{"id":"2","name":"B - Lee, Ann","phone":"555-2","identificationNumber":"X2"}
]`

type fakeGateway struct {
	*httptest.Server
	submitted atomic.Pointer[domain.NotificationRequest]
}

func newFakeGateway(t *testing.T) *fakeGateway {
	t.Helper()
	g := &fakeGateway{}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/supervisors", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(directoryJSON))
	})
	mux.HandleFunc("POST /api/submit", func(w http.ResponseWriter, r *http.Request) {
		var req domain.NotificationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g.submitted.Store(&req)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"Notification request submitted successfully."}`))
	})
	g.Server = httptest.NewServer(mux)
	t.Cleanup(g.Close)
	return g
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSupervisorsCommand(t *testing.T) {
	g := newFakeGateway(t)

	out, _, err := execute(t, "supervisors", "--server", g.URL)

	require.NoError(t, err)
	assert.Contains(t, out, "ID")
	assert.Contains(t, out, "A - Choi, Sam")
	assert.Contains(t, out, "B - Lee, Ann")
}

func TestSubmitCommand(t *testing.T) {
	g := newFakeGateway(t)

	out, stderr, err := execute(t, "submit", "--server", g.URL,
		"--first-name", "Jane", "--last-name", "Doe",
		"--email", "jane@x.io", "--supervisor", "2", "-v")

	require.NoError(t, err)
	assert.Equal(t, "Notification request submitted successfully.\n", out)
	assert.Contains(t, stderr, "form: editing -> submitting")
	assert.Contains(t, stderr, "form: submitting -> success")

	sent := g.submitted.Load()
	require.NotNil(t, sent)
	assert.Equal(t, "jane@x.io", sent.Email)
	assert.Empty(t, sent.PhoneNumber)
	require.NotNil(t, sent.Supervisor)
	assert.Equal(t, "B - Lee, Ann", sent.Supervisor.Name)
}

func TestSubmitCommandRejectsLocally(t *testing.T) {
	g := newFakeGateway(t)

	_, _, err := execute(t, "submit", "--server", g.URL,
		"--first-name", "J4ne", "--last-name", "Doe", "--supervisor", "1")

	require.Error(t, err)
	assert.Equal(t, `"firstName" with value "J4ne" fails to match the required pattern: /^[A-Za-z]+$/`, err.Error())
	assert.Nil(t, g.submitted.Load())
}

func TestSubmitCommandUnknownSupervisor(t *testing.T) {
	g := newFakeGateway(t)

	_, _, err := execute(t, "submit", "--server", g.URL,
		"--first-name", "Jane", "--last-name", "Doe", "--supervisor", "9")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown supervisor")
}

func TestSubmitCommandRequiresSupervisorFlag(t *testing.T) {
	_, _, err := execute(t, "submit", "--first-name", "Jane")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "supervisor")
}

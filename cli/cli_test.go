package cli

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const podsBody = `{"success":true,"data":[
	{"NAME":"web-1","NAMESPACE":"default","STATUS":"Running","RESTARTS":0,"NODE":"n1","IP":"10.0.0.1","AGE":"2024-05-10T10:00:00Z","READY":"1/1","CPU":"5m (2%)","MEMORY":"20Mi (10%)"},
	{"NAME":"coredns","NAMESPACE":"kube-system","STATUS":"Running","RESTARTS":2,"NODE":"n1","IP":"10.0.0.2","AGE":"2024-05-10T10:00:00Z","READY":"1/1","CPU":"3m (1%)","MEMORY":"90Mi (85%)"}
]}`

func backendServer(t *testing.T, status int, body string) string {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)

	return srv.URL
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	dir := t.TempDir()
	base := []string{
		"--config", filepath.Join(dir, "missing.yaml"),
		"--log-file", filepath.Join(dir, "podboard.log"),
	}

	var out, errOut bytes.Buffer
	cmd := NewRootCommandWithIO(&out, &errOut)
	cmd.SetArgs(append(args, base...))

	err := cmd.ExecuteContext(context.Background())

	return out.String(), errOut.String(), err
}

func TestPodsPlainWhenNotATerminal(t *testing.T) {
	url := backendServer(t, http.StatusOK, podsBody)

	out, _, err := run(t, "pods", "--backend-url", url)
	require.NoError(t, err)

	assert.Contains(t, out, "web-1")
	assert.Contains(t, out, "coredns")
	assert.Contains(t, out, "namespace All, page 1 of 1, 2 pods")
}

func TestRootDefaultsToPods(t *testing.T) {
	url := backendServer(t, http.StatusOK, podsBody)

	out, _, err := run(t, "--backend-url", url, "-n", "kube-system")
	require.NoError(t, err)

	assert.Contains(t, out, "coredns")
	assert.NotContains(t, out, "web-1")
}

func TestPodsFetchFailure(t *testing.T) {
	url := backendServer(t, http.StatusOK, `{"success":false,"error":"boom"}`)

	out, _, err := run(t, "pods", "--backend-url", url)
	require.ErrorIs(t, err, errFetchFailed)
	assert.Empty(t, out)
}

func TestInvalidFlagsAreRejected(t *testing.T) {
	_, _, err := run(t, "pods", "--log-level", "verbose", "--backend-url", "ftp://example")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
	assert.Contains(t, err.Error(), "backend.url")
}

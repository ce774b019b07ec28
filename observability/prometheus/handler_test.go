package prometheus

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestHandler_ServesRegisteredMetrics(t *testing.T) {
	reg := prom.NewRegistry()
	exporter, err := NewExporter(reg, ExporterOptions{})
	if err != nil {
		t.Fatalf("NewExporter failed: %v", err)
	}
	exporter.RecordTaskFailure("shared")
	exporter.RecordQueueDepth("shared", 3)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body failed: %v", err)
	}

	for _, want := range []string{
		`sharedexec_task_failures_total{pool="shared"} 1`,
		`sharedexec_queue_depth{pool="shared"} 3`,
	} {
		if !strings.Contains(string(body), want) {
			t.Errorf("exposition missing %q\nbody:\n%s", want, body)
		}
	}
}

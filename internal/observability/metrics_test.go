package observability

import (
	"testing"
	"time"

	"github.com/danmuck/padctl/internal/testutil/testlog"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRegisterMetricsAndRecordersAreSafe(t *testing.T) {
	testlog.Start(t)

	RegisterMetrics()
	RegisterMetrics()

	RecordHTTPRequest("padctl", "GET", "/health", 200, 12*time.Millisecond)
	RecordAdminCommand("server check", "completed", 0, 24*time.Millisecond)
	RecordPadRejection("clear", "invalid-index")
}

func TestRecordAdminCommandCounts(t *testing.T) {
	testlog.Start(t)

	before := testutil.ToFloat64(adminCommands.WithLabelValues("pad status", "completed", "3"))
	RecordAdminCommand("pad status", "completed", 3, time.Millisecond)
	RecordAdminCommand("pad status", "completed", 3, time.Millisecond)
	after := testutil.ToFloat64(adminCommands.WithLabelValues("pad status", "completed", "3"))
	if after-before != 2 {
		t.Fatalf("expected two recorded commands, got %v", after-before)
	}
}

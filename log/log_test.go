package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestModuleAddsAttribute(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil))
	mod := l.Module("client")
	mod.Info("tournament decided", "winner", 2)

	out := buf.String()
	if !strings.Contains(out, `"module":"client"`) {
		t.Fatalf("expected module attribute in log output, got: %s", out)
	}
	if !strings.Contains(out, `"winner":2`) {
		t.Fatalf("expected winner attribute in log output, got: %s", out)
	}
}

func TestDefaultLoggerIsUsable(t *testing.T) {
	if Default() == nil {
		t.Fatalf("Default() returned nil")
	}
}

func TestSetDefaultIgnoresNil(t *testing.T) {
	before := Default()
	SetDefault(nil)
	if Default() != before {
		t.Fatalf("SetDefault(nil) should not change the default logger")
	}
}

func TestAuditRejectedLogsProverAndReason(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	l.AuditRejected(3, "peaks failed mmr verification")

	out := buf.String()
	if !strings.Contains(out, `"prover":3`) || !strings.Contains(out, `"reason":"peaks failed mmr verification"`) {
		t.Fatalf("expected prover and reason attributes, got: %s", out)
	}
}

func TestGameDecidedLogsWinnerAndLoser(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, nil))
	l.GameDecided(1, 2)

	out := buf.String()
	if !strings.Contains(out, `"winner":1`) || !strings.Contains(out, `"loser":2`) {
		t.Fatalf("expected winner and loser attributes, got: %s", out)
	}
}

func TestCommitteeAdoptedLogsAtInfo(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	l.CommitteeAdopted(4)

	out := buf.String()
	if !strings.Contains(out, `"level":"INFO"`) || !strings.Contains(out, `"prover":4`) {
		t.Fatalf("expected an info-level log with prover attribute, got: %s", out)
	}
}

func TestFatalAbortLogsAtError(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithHandler(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelError}))
	l.FatalAbort("both provers verified at the same disputed leaf")

	out := buf.String()
	if !strings.Contains(out, `"level":"ERROR"`) {
		t.Fatalf("expected an error-level log, got: %s", out)
	}
}

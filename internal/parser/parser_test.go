package parser

import (
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
)

func newTestParser() *Parser {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(logger, "1.4.0", "2.0.0")
}

func TestParseStartSession(t *testing.T) {
	p := newTestParser()

	session, err := p.ParseStartSession([]string{`{"playerTag":"hunter42","deviceModel":"Pixel 9"}`})
	if err != nil {
		t.Fatalf("ParseStartSession failed: %v", err)
	}

	if session.ID == uuid.Nil {
		t.Error("expected session ID to be assigned")
	}
	if session.PlayerTag != "hunter42" {
		t.Errorf("expected playerTag=hunter42, got %s", session.PlayerTag)
	}
	if session.DeviceModel != "Pixel 9" {
		t.Errorf("expected deviceModel=Pixel 9, got %s", session.DeviceModel)
	}
	if session.AppVersion != "1.4.0" {
		t.Errorf("expected appVersion=1.4.0, got %s", session.AppVersion)
	}
	if session.EngineVersion != "2.0.0" {
		t.Errorf("expected engineVersion=2.0.0, got %s", session.EngineVersion)
	}
	if session.StartTime.IsZero() {
		t.Error("expected start time to be stamped")
	}
}

func TestParseStartSession_EscapedQuotes(t *testing.T) {
	p := newTestParser()

	// Hosts that pass JSON through string arrays double the quotes.
	session, err := p.ParseStartSession([]string{`"{""playerTag"":""hunter42"",""deviceModel"":""iPhone 15""}"`})
	if err != nil {
		t.Fatalf("ParseStartSession failed: %v", err)
	}
	if session.PlayerTag != "hunter42" {
		t.Errorf("expected playerTag=hunter42, got %s", session.PlayerTag)
	}
}

func TestParseStartSession_Errors(t *testing.T) {
	p := newTestParser()

	if _, err := p.ParseStartSession(nil); err == nil {
		t.Error("expected error for missing args")
	}
	if _, err := p.ParseStartSession([]string{"not json"}); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestParseFloat_Quoted(t *testing.T) {
	v, err := parseFloat(`"47.6062"`)
	if err != nil {
		t.Fatalf("parseFloat failed: %v", err)
	}
	if v != 47.6062 {
		t.Errorf("expected 47.6062, got %f", v)
	}
}

// Package parser provides pure []string -> core struct conversion for the
// commands the host sends across the bridge. It has zero external
// dependencies beyond a logger: no engine calls, no storage, no caches.
package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/internal/util"
	"github.com/geohunt/arcoin/pkg/core"
)

// parseFloat parses a possibly-quoted numeric argument. Hosts that
// serialize through string arrays quote everything, so quotes are stripped
// before conversion.
func parseFloat(s string) (float64, error) {
	return strconv.ParseFloat(util.TrimQuotes(s), 64)
}

// Parser converts raw command arguments into core types.
type Parser struct {
	logger Logger

	// Static versions stamped into parsed sessions, set at creation time.
	appVersion    string
	engineVersion string
}

// Logger is the minimal logging surface the parser needs.
type Logger interface {
	Debug(msg string, args ...any)
}

// New creates a new parser with only a logger dependency.
func New(logger Logger, appVersion, engineVersion string) *Parser {
	return &Parser{
		logger:        logger,
		appVersion:    appVersion,
		engineVersion: engineVersion,
	}
}

// sessionPayload is the JSON shape of the startSession command argument.
type sessionPayload struct {
	PlayerTag   string `json:"playerTag"`
	DeviceModel string `json:"deviceModel"`
}

// ParseStartSession parses session metadata from raw args.
// data[0] is a JSON object with the player and device identity. The session
// ID and start time are assigned here; the caller persists the result.
func (p *Parser) ParseStartSession(data []string) (core.HuntSession, error) {
	var session core.HuntSession

	if len(data) < 1 {
		return session, fmt.Errorf("startSession requires 1 argument, got %d", len(data))
	}

	raw := util.FixEscapeQuotes(util.TrimQuotes(data[0]))

	var payload sessionPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return session, fmt.Errorf("error unmarshalling session data: %w", err)
	}

	session.ID = uuid.New()
	session.PlayerTag = payload.PlayerTag
	session.DeviceModel = payload.DeviceModel
	session.StartTime = time.Now()

	// received at bridge init and saved to local memory
	session.AppVersion = p.appVersion
	session.EngineVersion = p.engineVersion

	p.logger.Debug("Parsed session data",
		"playerTag", session.PlayerTag,
		"deviceModel", session.DeviceModel)

	return session, nil
}

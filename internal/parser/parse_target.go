package parser

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/geohunt/arcoin/internal/util"
	"github.com/geohunt/arcoin/pkg/core"
)

// ParseSetTarget parses a setTarget command.
// Expected args: [id, name, lat, lon] with an optional fifth argument
// carrying a JSON object of display-setting overrides. Unset settings keep
// the shipped defaults.
func (p *Parser) ParseSetTarget(data []string) (core.TargetPoint, error) {
	var target core.TargetPoint

	if len(data) < 4 {
		return target, fmt.Errorf("setTarget requires at least 4 arguments, got %d", len(data))
	}

	id, err := uuid.Parse(util.TrimQuotes(data[0]))
	if err != nil {
		return target, fmt.Errorf("invalid target id %q: %w", data[0], err)
	}

	lat, err := parseFloat(data[2])
	if err != nil {
		return target, fmt.Errorf("invalid latitude %q: %w", data[2], err)
	}
	lon, err := parseFloat(data[3])
	if err != nil {
		return target, fmt.Errorf("invalid longitude %q: %w", data[3], err)
	}

	target.ID = id
	target.Name = util.FixEscapeQuotes(util.TrimQuotes(data[1]))
	target.Coordinate = core.GeoCoordinate{Latitude: lat, Longitude: lon}
	target.Settings = core.DefaultDisplaySettings()

	if len(data) >= 5 {
		raw := util.FixEscapeQuotes(util.TrimQuotes(data[4]))
		if raw != "" && raw != "{}" {
			if err := json.Unmarshal([]byte(raw), &target.Settings); err != nil {
				return target, fmt.Errorf("invalid display settings: %w", err)
			}
		}
	}

	p.logger.Debug("Parsed target",
		"target", util.FormatTargetText(target.Name, target.ID.String()),
		"lat", lat, "lon", lon)

	return target, nil
}

// SPDX-License-Identifier: BSD-3-Clause

package importer

import (
	"encoding/json"
	"fmt"
)

// parse detects which of the two accepted legacy shapes data is and
// reduces it to a flat list of legacyRule.
func parse(data []byte) ([]legacyRule, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	if _, ok := probe["Controls"]; ok {
		var doc legacyControlsDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return flattenControls(doc), nil
	}

	_, hasCurves := probe["Curves"]
	_, hasMappings := probe["Mappings"]
	if hasCurves && hasMappings {
		var doc legacyMappingsDoc
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
		}
		return flattenMappings(doc)
	}

	return nil, ErrUnsupportedFormat
}

func flattenControls(doc legacyControlsDoc) []legacyRule {
	out := make([]legacyRule, 0, len(doc.Controls))
	for _, c := range doc.Controls {
		out = append(out, legacyRule{
			Identifier:   c.Name,
			Sensor:       c.Sensor,
			FanID:        c.fanIdentifier(),
			Points:       c.points(),
			Hysteresis:   c.Hysteresis,
			ResponseTime: c.ResponseTime,
		})
	}
	return out
}

func flattenMappings(doc legacyMappingsDoc) ([]legacyRule, error) {
	curves := make(map[string][]legacyPoint, len(doc.Curves))
	for _, c := range doc.Curves {
		curves[c.ID] = c.Points
	}

	out := make([]legacyRule, 0, len(doc.Mappings))
	for _, m := range doc.Mappings {
		points, ok := curves[m.CurveID]
		if !ok {
			return nil, fmt.Errorf("%w: mapping references unknown curve %q", ErrUnsupportedFormat, m.CurveID)
		}
		out = append(out, legacyRule{
			Identifier:   m.CurveID,
			Sensor:       m.Sensor,
			FanID:        m.PwmID,
			Points:       points,
			Hysteresis:   m.Hysteresis,
			ResponseTime: m.ResponseTime,
		})
	}
	return out, nil
}

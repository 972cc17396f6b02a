// SPDX-License-Identifier: BSD-3-Clause

package profile

// MixFunction reduces several percent or temperature readings to one.
type MixFunction string

const (
	MixMax MixFunction = "MAX"
	MixAvg MixFunction = "AVG"
	MixMin MixFunction = "MIN"
)

// CurvePoint is one (temperatureC, percent) control point. Points within a
// Source are kept ordered non-decreasing by TempC.
type CurvePoint struct {
	TempC   float64 `json:"tempC"`
	Percent float64 `json:"percent"`
}

// Settings carries the per-rule tuning knobs applied after curve lookup.
type Settings struct {
	MinPercent         float64     `json:"minPercent"`
	MaxPercent         float64     `json:"maxPercent"`
	MixFunction        MixFunction `json:"mixFunction"`
	HysteresisC        float64     `json:"hysteresisC"`
	ResponseTauSeconds float64     `json:"responseTauSeconds"`
	SpinupPercent      *float64    `json:"spinupPercent,omitempty"`
	SpinupDurationMs   *int        `json:"spinupDurationMs,omitempty"`
}

// Source is one curve bound to one or more temperature inputs (mixed via
// MixFunction before the curve is not applicable per-input; here the mix
// reduces multiple temps to one before the curve lookup).
type Source struct {
	TempPaths []string     `json:"tempPaths"`
	Points    []CurvePoint `json:"points"`
	Settings  Settings     `json:"settings"`
}

// Rule controls exactly one PWM output, possibly mixing several Sources.
type Rule struct {
	PwmPath  string   `json:"pwmPath"`
	Nickname string   `json:"nickname,omitempty"`
	Sources  []Source `json:"sources"`
}

// Profile is the persisted, named collection of rules.
type Profile struct {
	Name          string `json:"name"`
	SchemaVersion int    `json:"schemaVersion"`
	Description   string `json:"description,omitempty"`
	Rules         []Rule `json:"rules"`
}

// CurrentSchemaVersion is stamped onto profiles created fresh by this
// daemon (imported profiles carry whatever version the importer assigns,
// currently the same value).
const CurrentSchemaVersion = 1

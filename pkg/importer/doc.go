// SPDX-License-Identifier: BSD-3-Clause

// Package importer converts a FanControl-legacy JSON configuration into a
// native profile.Profile, resolving each legacy sensor/fan identifier
// against the current hwmon inventory and vendor map.
//
// Two legacy shapes are accepted:
//
//   - Controls: {"Controls": [{"Sensor": "<chip>/temp<N>" or an exact
//     temp label, "FanId": "<chip>/pwm<N>", "SpeedCurve" or "Curve":
//     [{"X":..,"Y":..}, ...], "Hysteresis":.., "ResponseTime":..}]}
//   - Curves+Mappings: {"Curves": [{"Id":"c1","Points":[...]}],
//     "Mappings": [{"CurveId":"c1","Sensor":..,"PwmId":..,
//     "Hysteresis":..,"ResponseTime":..}]}
//
// A sensor/fan identifier is either an exact temp*_label match, or a
// "<driverOrVendorToken>/<kind><index>" hint resolved via driver-name
// heuristics (temperatures) or the vendor map (PWM/fan pairing). Curve
// points may use a normalised 0..1 Y axis or a 0..100 percent axis; both
// are detected and converted to percent.
package importer

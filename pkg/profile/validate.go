// SPDX-License-Identifier: BSD-3-Clause

package profile

import (
	"fmt"

	"github.com/lfcd/lfcd/pkg/hwmon"
)

// RuleWarning describes a non-fatal issue found while validating a rule
// against the current inventory (e.g. a missing temp path that still
// leaves the rule evaluable via its other sources).
type RuleWarning struct {
	PwmPath string `json:"pwmPath"`
	Message string `json:"message"`
}

// ValidationReport is the result of checking a Profile's referential
// integrity and numeric invariants against a hwmon Inventory.
type ValidationReport struct {
	Valid    bool          `json:"valid"`
	Warnings []RuleWarning `json:"warnings,omitempty"`
	Errors   []string      `json:"errors,omitempty"`
}

// Validate checks every pwmPath/tempPath referenced by p against inv, plus
// the numeric invariants on Settings and curve point ordering. A profile
// with missing paths is reported invalid but is not mutated; the engine
// decides whether to stay disabled.
func Validate(p *Profile, inv *hwmon.Inventory) ValidationReport {
	report := ValidationReport{Valid: true}

	for _, rule := range p.Rules {
		if _, ok := inv.Pwm(rule.PwmPath); !ok {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf("rule %s: pwm path not found: %s", ruleLabel(rule), rule.PwmPath))
		}

		if len(rule.Sources) == 0 {
			report.Valid = false
			report.Errors = append(report.Errors, fmt.Sprintf("rule %s: no sources", ruleLabel(rule)))
			continue
		}

		for si, src := range rule.Sources {
			anyTempFound := false
			for _, tp := range src.TempPaths {
				if _, ok := inv.Temp(tp); ok {
					anyTempFound = true
				} else {
					report.Warnings = append(report.Warnings, RuleWarning{
						PwmPath: rule.PwmPath,
						Message: fmt.Sprintf("source %d: temp path not found: %s", si, tp),
					})
				}
			}
			if !anyTempFound {
				report.Valid = false
				report.Errors = append(report.Errors, fmt.Sprintf("rule %s source %d: no temp path resolves", ruleLabel(rule), si))
			}

			if err := validateCurve(src.Points); err != nil {
				report.Valid = false
				report.Errors = append(report.Errors, fmt.Sprintf("rule %s source %d: %s", ruleLabel(rule), si, err))
			}

			if err := validateSettings(src.Settings); err != nil {
				report.Valid = false
				report.Errors = append(report.Errors, fmt.Sprintf("rule %s source %d: %s", ruleLabel(rule), si, err))
			}
		}
	}

	return report
}

func ruleLabel(r Rule) string {
	if r.Nickname != "" {
		return r.Nickname
	}
	return r.PwmPath
}

func validateCurve(points []CurvePoint) error {
	if len(points) == 0 {
		return fmt.Errorf("%w: curve has no points", ErrInvalidProfile)
	}
	for i, pt := range points {
		if pt.Percent < 0 || pt.Percent > 100 {
			return fmt.Errorf("%w: curve point %d percent out of range: %v", ErrInvalidProfile, i, pt.Percent)
		}
		if i > 0 && points[i-1].TempC > pt.TempC {
			return fmt.Errorf("%w: curve points not ordered non-decreasing by tempC", ErrInvalidProfile)
		}
	}
	return nil
}

func validateSettings(s Settings) error {
	if s.MinPercent > s.MaxPercent {
		return fmt.Errorf("%w: minPercent > maxPercent", ErrInvalidProfile)
	}
	if s.HysteresisC < 0 {
		return fmt.Errorf("%w: hysteresisC < 0", ErrInvalidProfile)
	}
	switch s.MixFunction {
	case MixMax, MixAvg, MixMin, "":
	default:
		return fmt.Errorf("%w: unknown mixFunction %q", ErrInvalidProfile, s.MixFunction)
	}
	return nil
}

// SPDX-License-Identifier: BSD-3-Clause

// Package engine is the control engine: it owns the active profile, the
// per-pwm hysteresis/spin-up state, and the per-tick evaluation that turns
// cached temperature readings into PWM duty writes.
//
// Unlike a PID loop, each rule here follows an explicit curve with
// hysteresis and exponential smoothing (see Evaluate); there is no
// integral/derivative term to wind up or reset. The engine stays disabled
// whenever no valid profile is applied, and a rule referencing a missing
// path is skipped with a logged warning rather than failing the whole tick.
package engine

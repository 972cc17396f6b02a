// SPDX-License-Identifier: BSD-3-Clause

// Package detect runs a fan-coupling detection sweep: one PWM at a time is
// ramped to 100% while the others hold a safe floor, the peak RPM reached
// on any tach of the same chip is recorded, and every PWM is restored to
// its baseline once the sweep (or an abort) completes. Only one job may be
// active at a time; the control engine is suspended for the duration.
package detect

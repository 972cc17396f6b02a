// SPDX-License-Identifier: BSD-3-Clause

// Package profile defines the persisted control-rule model: Profile, Rule,
// Source, CurvePoint and Settings, plus curve evaluation, referential
// integrity validation against a hwmon inventory, and atomic JSON
// persistence.
//
// Rules reference hwmon entries by path string, never by pointer, so an
// inventory reload never invalidates a loaded profile; validation just
// recomputes which paths are currently missing.
package profile

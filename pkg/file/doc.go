// SPDX-License-Identifier: BSD-3-Clause

// Package file provides atomic file operations for safe and reliable file
// system interactions, writing to a temporary file in the target directory
// and atomically renaming it into place so readers never see a partial
// write.
//
// # Core Operations
//
//   - AtomicCreateFile: creates a new file atomically via
//     RENAME_NOREPLACE, failing with ErrFileAlreadyExists if the target
//     already exists. Used for exclusive-creation scenarios such as a PID
//     lock file.
//
//   - AtomicReplaceFile: atomically overwrites the target with data in
//     full, creating it if absent. Used throughout this daemon for
//     documents that are replaced wholesale on every write — profiles,
//     the persisted daemon configuration, and the telemetry publisher's
//     fallback file used when shared memory is unavailable.
//
// # Basic Usage
//
//	data := []byte("initial configuration data")
//	err := file.AtomicCreateFile("/run/lfcd.lock", data, 0o644)
//	if err != nil {
//		if errors.Is(err, file.ErrFileAlreadyExists) {
//			log.Println("lfcd is already running")
//		} else {
//			log.Fatalf("failed to create lock: %v", err)
//		}
//	}
//
//	err = file.AtomicReplaceFile("/etc/lfcd/profiles/default.json", data, 0o644)
//	if err != nil {
//		log.Fatalf("failed to save profile: %v", err)
//	}
//
// # Concurrent Safety
//
// Rename is atomic at the filesystem level and readers never see a
// partially written file, but the package does not serialize concurrent
// writers: two callers racing to replace the same path get last-write-wins
// semantics. Neither pkg/config nor pkg/profile holds a lock across the
// call, so concurrent saves of one path from those packages are
// last-write-wins as well.
package file

// Package ps provides the persistence layer for LightDB.
//
// Tables are stored as plain text on a go-billy filesystem: one schema
// file per table under tables-metadata/ and one data file per table under
// tables/. Each schema line is "name|type" or "name|type|primarykey"; each
// data line is the row's cells joined by "|".
//
// # Memory Persistence
//
// For testing or ephemeral databases:
//
//	persistence, err := ps.NewMemoryPersistence(false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # File Persistence
//
// For persistent storage, optionally with history:
//
//	persistence, err := ps.NewFilePersistence("/path/to/data", true)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// # History
//
// With history enabled the data directory is also a git worktree. Snapshot
// commits whatever changed, History lists the commits and Restore resets the
// tables to an earlier one. Replicas are git remotes that history can be
// pushed to and pulled from.
//
// # Remote Locations
//
// OpenReader and OpenWriter resolve local paths, file://, http(s):// and
// s3:// locations for script import and dump.
package ps

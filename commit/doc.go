// Package commit implements the field-commitment workflow for typed records.
//
// A record of kind claim, intent or snapshot carries its own commitment in a
// top-level field (claimHash, intentHash, snapshotHash). That field is removed
// before canonicalization so a commitment never depends on itself. Raw records
// have no such field and are hashed as given.
package commit

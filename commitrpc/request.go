package commitrpc

// Field names of the Commit request and reply structs.
const (
	fieldKind          = "kind"
	fieldAlgorithm     = "algorithm"
	fieldEmitCanonical = "emit_canonical"
	fieldEmitCID       = "emit_cid"
	fieldWriteBack     = "write_back"

	// fieldRecord carries the record as a protobuf Value. Its numbers travel
	// as doubles and commit as floats.
	fieldRecord = "record"
	// fieldRecordJSON carries the record as JSON text, which keeps integer
	// literals intact. Exactly one of record and record_json must be set.
	fieldRecordJSON = "record_json"

	fieldDigest    = "digest"
	fieldCID       = "cid"
	fieldCanonical = "canonical"
	fieldPersisted = "persisted"
	fieldStored    = "stored"
)

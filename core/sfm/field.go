// Package sfm parses Standard Format Marker (SFM/USFM) text: line-oriented
// files where each logical field begins with a backslash marker followed by
// free text. It provides a flat line scanner and a record grouper that
// partitions the line stream into records delimited by a repeating key marker.
package sfm

// Field is one marker/value pair produced by the scanner. The marker is
// stored without its leading backslash. Fields are value types; ordering is
// significant and preserved throughout.
type Field struct {
	Marker string
	Value  string
}

// LineSequence is an ordered list of Fields representing an entire file read
// in flat mode. It never contains a Field with an empty marker.
type LineSequence []Field

// Record is an ordered list of Fields whose first Field, except possibly for
// the first record in a file, carries the grouper's key marker. The value of
// the key Field is the record's identity.
type Record []Field

// Key returns the record's first field. A Record is never empty.
func (r Record) Key() Field {
	return r[0]
}

// RecordSet is an ordered list of Records.
type RecordSet []Record

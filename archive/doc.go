// Package archive extracts boot files from tar archives.
//
// The reader scans 512-byte header blocks from the start of the file and
// interprets only two header fields: the NUL-padded name at offset 0 and
// the octal ASCII size at offset 124. Every other field, including the
// type flag and checksum, is ignored, so any POSIX-tar-compatible
// container can be served.
//
// After each header the payload follows at the next block boundary and
// is padded to a whole number of blocks:
//
//	+--------+----------------+--------+-------+
//	| header | payload (size) | header |  ...  |
//	+--------+----------------+--------+-------+
//	0       512        512+roundUp(size)
//
// A header whose declared size runs past the end of the archive makes the
// archive corrupted. Lookups are not cached; every call rescans.
package archive

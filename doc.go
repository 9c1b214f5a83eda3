// Package warcdebug diagnoses the gzip layout of WARC and other
// potentially-compressed files.
//
// Abstract
//
// A WARC file is frequently stored gzip-compressed, and the gzip format
// permits concatenating independent "members" into a single stream. A
// file holding one record per gzip member supports cheap random access
// to any individual record; a file compressed as one giant member does
// not, since reaching record N means inflating everything before it.
// Both shapes decompress to the same bytes and both are accepted by
// ordinary gzip tools, so the difference is invisible unless something
// actually walks the member boundaries.
//
// This package does that walk. It parses a gzip byte stream member by
// member, recovering each member's physical offset, compressed and
// uncompressed length and a short content snippet, and classifies the
// whole file as uncompressed, a single oversized member, a proper
// multi-member stream, structurally faulty, trailed by garbage, or
// double-wrapped (a single member whose content is itself a multi-member
// stream). Analyze does this in one call; CountingGzipDecoder exposes the
// member-by-member walk directly for callers that want more control.
//
// How to use
//
// Call Analyze with a path, or AnalyzeReader with an already-open source,
// to get back a Report. Report.Status says which of the shapes above the
// file has, Report.Members lists what was recovered, and
// Report.Recommendation turns that into a one-line suggestion.
//
// Given a Report with two or more Members, OpenMember decompresses a
// single record by offset without touching its neighbors. Given a Report
// with StatusSingleCompressed, Recompress rewrites the file into a proper
// multi-member stream, using SplitByWARCRecord to place one record per
// member. Recompress removes only one gzip layer, so its output for a
// StatusRecompressed file still decompresses to gzip bytes.
//
// Command line tool
//
// This package backs a command line tool called "warc-debug", installed
// with:
//
//      $ go get github.com/kb-dk/warc-debug/cmd/warc-debug
//
// It reports the same classification Analyze produces for one or more
// files, and can recompress a file into the random-access friendly
// layout, writing the result to a new output file.
package warcdebug

// Package etl runs the snapshot import pipeline.
//
// The driver processes files strictly one at a time, each inside its own
// database transaction, and persists the done-set after every file so a
// crashed run resumes losing at most the file that was in flight. Per-file
// errors never abort the run: the file is counted, marked done, and skipped
// forever. That is a deliberate liveness-over-completeness tradeoff carried
// over from the original importer; a transient failure on a file therefore
// looks the same as a permanently malformed one.
package etl

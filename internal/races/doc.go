// Package races persists monitored race records in SQLite.
//
// Each row is either a single-day race keyed by its catalogue UUID or one
// stage of a multi-stage race keyed by "<uuid>::<stage>". The scanner treats
// every row as an independently acquirable entity; acquisition state is only
// written after a download has been filed into the library.
package races

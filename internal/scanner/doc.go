// Package scanner orchestrates acquisition passes: feed refresh, then a
// strictly sequential walk of unacquired races through matching, URL
// resolution, transfer, metadata and library placement. Scan requests
// coalesce so no two passes ever overlap.
package scanner

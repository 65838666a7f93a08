// Package transfer downloads remote files into a confined staging
// directory with temp-file isolation and byte-count verification.
package transfer

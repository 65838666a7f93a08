// Package resolver builds candidate download URLs from matched feed
// titles and probes the file host to find one that exists.
package resolver

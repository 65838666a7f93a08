// Package matcher picks the cached feed item most likely to be the
// broadcast of a monitored race, using canonicalized bigram similarity
// with date-window and category filters.
package matcher

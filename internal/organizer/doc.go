// Package organizer places acquired videos and their sidecars into the
// season and series folder layout of the media library.
package organizer

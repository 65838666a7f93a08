// Package metadata renders episodedetails sidecar documents for media
// servers and writes them atomically beside the video file.
package metadata

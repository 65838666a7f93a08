// Package jellyfin triggers media server library refreshes after new
// files land in the library.
package jellyfin

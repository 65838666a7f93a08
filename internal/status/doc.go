// Package status reports the acquisition state of every monitored race
// by combining store records with staging and library file checks.
package status

// Package services defines the error classification shared by pipeline
// components and hosts clients for external services.
package services

// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Upload operations
	OpUploadReceive Op = "receive uploaded file"
	OpUploadSpool   Op = "store uploaded file"

	// Artwork operations
	OpArtworkExtract Op = "extract cover art"

	// Playback operations
	OpPlaybackStart  Op = "start playback"
	OpPlaybackSeek   Op = "seek"
	OpPlaybackVolume Op = "set volume"

	// Configuration
	OpConfigLoad Op = "load configuration"

	// Server operations
	OpServerStart Op = "start server"
	OpServerStop  Op = "stop server"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}

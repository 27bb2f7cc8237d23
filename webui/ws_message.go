// Package webui provides the web-based user interface for the editor.
// This file contains WebSocket message types and constants.
package webui

import (
	"encoding/json"
	"time"
)

// Message type constants for WebSocket communication.
// These define the types of real-time updates sent to connected clients.
const (
	// MessageTypeSessionUpdated indicates an editing session's state changed
	// (crop, resize, layer edits, or a rename).
	MessageTypeSessionUpdated = "session_updated"

	// MessageTypeSessionDeleted indicates an editing session was removed.
	MessageTypeSessionDeleted = "session_deleted"

	// MessageTypeAutosave indicates a session state was persisted to disk.
	MessageTypeAutosave = "autosave"

	// MessageTypeError indicates a server-side error message.
	MessageTypeError = "error"

	// MessageTypePing is a keep-alive message from the server.
	MessageTypePing = "ping"

	// MessageTypePong is a keep-alive response from the client.
	MessageTypePong = "pong"

	// MessageTypeInitial contains the initial session list snapshot on connection.
	MessageTypeInitial = "initial"
)

// WSMessage is the base structure for all WebSocket messages.
// It uses a common envelope format with type-specific data in the Data field.
//
// This is a pure data structure atom with no behavior beyond JSON marshaling.
type WSMessage struct {
	// Type identifies the message kind (use MessageType* constants)
	Type string `json:"type"`

	// Timestamp is when the message was created
	Timestamp time.Time `json:"timestamp"`

	// Data contains the type-specific payload (decoded based on Type)
	Data interface{} `json:"data,omitempty"`
}

// NewWSMessage creates a new WebSocket message with the current timestamp.
//
// Parameters:
//   - msgType: The message type (use MessageType* constants)
//   - data: The type-specific payload
//
// Returns:
//   - WSMessage: Ready-to-send message
func NewWSMessage(msgType string, data interface{}) WSMessage {
	return WSMessage{
		Type:      msgType,
		Timestamp: time.Now(),
		Data:      data,
	}
}

// MarshalJSON serializes the message to JSON bytes.
// This is a convenience method for sending messages over WebSocket.
func (m WSMessage) MarshalJSON() ([]byte, error) {
	type Alias WSMessage
	return json.Marshal(Alias(m))
}

// SessionUpdateData describes a session whose editing state changed.
type SessionUpdateData struct {
	// SessionID is the unique identifier for the editing session
	SessionID string `json:"session_id"`

	// Name is the human-readable session name (may be empty)
	Name string `json:"name,omitempty"`

	// Source is the image key the session edits
	Source string `json:"source,omitempty"`

	// LayerCount is the number of layers currently placed on the canvas
	LayerCount int `json:"layer_count"`

	// PreviewPath is the imagor path for the current state, when available
	PreviewPath string `json:"preview_path,omitempty"`

	// UpdatedAt is when the change was applied
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionDeletedData identifies a removed session.
type SessionDeletedData struct {
	// SessionID is the unique identifier for the deleted session
	SessionID string `json:"session_id"`
}

// AutosaveData reports a completed autosave write.
type AutosaveData struct {
	// SessionID is the session whose state was persisted
	SessionID string `json:"session_id"`

	// SavedAt is when the write completed
	SavedAt time.Time `json:"saved_at"`
}

// ErrorData contains error information sent to clients.
type ErrorData struct {
	// Code is an application-specific error code
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`
}

// InitialData contains the session list snapshot sent on connection.
type InitialData struct {
	// Sessions lists the known editing sessions, newest first
	Sessions []SessionUpdateData `json:"sessions"`

	// Version is the application version string
	Version string `json:"version,omitempty"`
}

// Helper functions for creating common messages

// NewSessionUpdatedMessage creates a session update message.
func NewSessionUpdatedMessage(data SessionUpdateData) WSMessage {
	return NewWSMessage(MessageTypeSessionUpdated, data)
}

// NewSessionDeletedMessage creates a session deleted message.
func NewSessionDeletedMessage(sessionID string) WSMessage {
	return NewWSMessage(MessageTypeSessionDeleted, SessionDeletedData{SessionID: sessionID})
}

// NewAutosaveMessage creates an autosave notification message.
func NewAutosaveMessage(sessionID string, savedAt time.Time) WSMessage {
	return NewWSMessage(MessageTypeAutosave, AutosaveData{SessionID: sessionID, SavedAt: savedAt})
}

// NewErrorMessage creates an error message.
func NewErrorMessage(code, message string) WSMessage {
	return NewWSMessage(MessageTypeError, ErrorData{Code: code, Message: message})
}

// NewPingMessage creates a ping keep-alive message.
func NewPingMessage() WSMessage {
	return NewWSMessage(MessageTypePing, nil)
}

// NewInitialMessage creates the initial session list snapshot message.
func NewInitialMessage(data InitialData) WSMessage {
	return NewWSMessage(MessageTypeInitial, data)
}

package events

import "errors"

var (
	ErrEmptyTopic     = errors.New("events: empty topic")
	ErrMarshalPayload = errors.New("events: failed to marshal payload")
	ErrDecodePayload  = errors.New("events: failed to decode payload")
	ErrBridgeStarted  = errors.New("events: bridge already started")
	ErrBridgeStopped  = errors.New("events: bridge not running")
)

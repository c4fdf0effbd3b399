package realtime

import "errors"

var (
	// ErrUnauthenticated means no valid identity was established before
	// Register; the handshake is terminated without side effects.
	ErrUnauthenticated = errors.New("connection is not authenticated")

	// ErrNotAParticipant is the authorization boundary for room subscribe.
	// The connection stays alive; the caller is told explicitly.
	ErrNotAParticipant = errors.New("user is not a participant of the conversation")

	// ErrUnknownRecipient means no delivery record exists for the
	// (message, user) pair, e.g. the user joined after dispatch.
	// Informational: logged by the gateway, not surfaced to the client.
	ErrUnknownRecipient = errors.New("no delivery record for recipient")

	// ErrInvalidStateTransition rejects a backward delivery-state move.
	// The record is left unchanged.
	ErrInvalidStateTransition = errors.New("invalid delivery state transition")
)

package service

import "errors"

var (
	ErrInvalidDisplayName = errors.New("invalid display name")
	ErrNotParticipant     = errors.New("user is not a participant")
	ErrSelfConversation   = errors.New("cannot start a conversation with yourself")
	ErrEmptyContent       = errors.New("message content is empty")
	ErrContentTooLong     = errors.New("message content exceeds the limit")
	ErrGroupNameRequired  = errors.New("group conversations require a name")
)

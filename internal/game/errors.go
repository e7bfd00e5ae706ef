package game

import "errors"

// User-facing errors. Their text is delivered verbatim as the payload of an
// "error" event, so messages are written for players, not logs.
var (
	ErrRoomNotFound   = errors.New("Room not found or game already in progress.")
	ErrNoSuchRoom     = errors.New("Room not found.")
	ErrAlreadyJoined  = errors.New("You have already joined this room.")
	ErrNotHostStart   = errors.New("Only the host can start the game.")
	ErrNotHostWords   = errors.New("Only the host can add custom words.")
	ErrWordsLocked    = errors.New("Cannot add words after game has started.")
	ErrWordsRemove    = errors.New("Cannot remove words right now.")
	ErrWordEmpty      = errors.New("Word cannot be empty.")
	ErrWordTooShort   = errors.New("Word must be at least 3 characters long.")
	ErrWordDuplicate  = errors.New("This word has already been added.")
	ErrCodesExhausted = errors.New("Could not create a room, please try again.")
)

package chat

import "errors"

var (
	ErrInvalidName         = errors.New("invalid username")
	ErrAlreadySet          = errors.New("username already set")
	ErrNotLoggedIn         = errors.New("not logged in")
	ErrNotInRoom           = errors.New("not in a room")
	ErrConnectionLost      = errors.New("connection lost")
	ErrEmptyMessage        = errors.New("message body is empty")
	ErrMessageTooLong      = errors.New("message body too long")
	ErrDuplicateConnection = errors.New("connection already registered")
	ErrRoomNotFound        = errors.New("room not found")
)

// ErrorCode maps an error returned by the service to the code sent to clients.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidName):
		return "invalid_name"
	case errors.Is(err, ErrAlreadySet):
		return "already_set"
	case errors.Is(err, ErrNotLoggedIn):
		return "not_logged_in"
	case errors.Is(err, ErrNotInRoom):
		return "not_in_room"
	case errors.Is(err, ErrEmptyMessage):
		return "empty_message"
	case errors.Is(err, ErrMessageTooLong):
		return "message_too_long"
	case errors.Is(err, ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, ErrConnectionLost):
		return "connection_lost"
	default:
		return "bad_request"
	}
}

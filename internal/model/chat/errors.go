package chat

import "errors"

// ErrSessionNotFound covers both a missing session id and a session owned by
// another user; callers are not told which.
var ErrSessionNotFound = errors.New("chat session not found")

package analysis

import "errors"

var (
	// ErrNotFound means the input path does not exist. Surfaced before
	// any decoder resource is allocated.
	ErrNotFound = errors.New("media file not found")

	// ErrNotOpenable means the decoder could not open the file in the
	// attempted mode. Recovered internally by the video->image fallback.
	ErrNotOpenable = errors.New("media not openable")

	// ErrUnreadableMedia means neither video nor image decoding
	// succeeded. Terminal.
	ErrUnreadableMedia = errors.New("media unreadable as video or image")
)

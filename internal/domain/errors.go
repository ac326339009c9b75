package domain

import "errors"

// Domain errors.
var (
	// ErrEmptyURL is returned when no URL was entered.
	ErrEmptyURL = errors.New("please enter a TikTok URL")

	// ErrInvalidURL is returned when the input matches no known TikTok URL shape.
	ErrInvalidURL = errors.New("please enter a valid TikTok URL")

	// ErrFetchFailed is the single failure kind for transport, parse and API errors.
	ErrFetchFailed = errors.New("unable to fetch content")

	// ErrCanceled is returned when a fetch was canceled before it settled.
	ErrCanceled = errors.New("request canceled")

	// ErrSuperseded is returned when a newer request replaced this one.
	ErrSuperseded = errors.New("request superseded by a newer one")

	// ErrNoMediaURLs is returned when a response references neither a video nor images.
	ErrNoMediaURLs = errors.New("no media URLs in response")

	// ErrSessionNotFound is returned when a session cannot be found.
	ErrSessionNotFound = errors.New("session not found")

	// ErrNoCurrent is returned when a session holds no resolved content.
	ErrNoCurrent = errors.New("no content resolved yet")

	// ErrMediaNotAllowed is returned when a media URL is not part of the current result.
	ErrMediaNotAllowed = errors.New("media URL not part of current result")

	// ErrURLExpired is returned when the media URL has expired.
	ErrURLExpired = errors.New("media URL has expired")

	// ErrRateLimited is returned when rate limited by external services.
	ErrRateLimited = errors.New("rate limited")

	// ErrStorageFull is returned when there is insufficient storage space.
	ErrStorageFull = errors.New("insufficient storage space")

	// ErrClipboardUnavailable is returned when no clipboard is available.
	ErrClipboardUnavailable = errors.New("clipboard unavailable")
)

// User-facing messages.
const (
	MsgEmptyURL     = "Please enter a TikTok URL"
	MsgInvalidURL   = "Please enter a valid TikTok URL"
	MsgFetchFailed  = "Unable to fetch content. Please check the URL and try again."
	MsgGeneric      = "An error occurred. Please try again."
	MsgCopied       = "Link copied to clipboard!"
	MsgCopyFailed   = "Failed to copy link"
	MsgDownloadDone = "Download complete"
	MsgStorageFull  = "Not enough disk space to save the download"
)

// ResolveError wraps an error with the URL being resolved.
type ResolveError struct {
	URL string
	Op  string
	Err error
}

func (e *ResolveError) Error() string {
	if e.URL != "" {
		return e.Op + " [" + e.URL + "]: " + e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

func (e *ResolveError) Unwrap() error {
	return e.Err
}

// NewResolveError creates a new ResolveError.
func NewResolveError(url, op string, err error) *ResolveError {
	return &ResolveError{
		URL: url,
		Op:  op,
		Err: err,
	}
}

// IsSilent reports whether err must never be shown to the user.
func IsSilent(err error) bool {
	return errors.Is(err, ErrCanceled) || errors.Is(err, ErrSuperseded)
}

// UserMessage maps an error to the text shown to the user.
// Silent errors map to the empty string.
func UserMessage(err error) string {
	switch {
	case err == nil, IsSilent(err):
		return ""
	case errors.Is(err, ErrEmptyURL):
		return MsgEmptyURL
	case errors.Is(err, ErrInvalidURL):
		return MsgInvalidURL
	case errors.Is(err, ErrFetchFailed):
		return MsgFetchFailed
	case errors.Is(err, ErrStorageFull):
		return MsgStorageFull
	default:
		return MsgGeneric
	}
}

package upload

import "errors"

var (
	// ErrInvalidKey is returned when an object key fails validation before any backend call.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidContentType is returned when a content type is empty.
	ErrInvalidContentType = errors.New("invalid content type")

	// ErrTooManyParts is returned when a requested part count exceeds MaxParts.
	ErrTooManyParts = errors.New("part count exceeds backend maximum")

	// ErrBackendUnavailable wraps transport/connectivity failures talking to the storage backend.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrChunkUploadFailed wraps transport failures on the proxied chunk upload path.
	// Safe to retry, the backend keeps the latest bytes written for a part number.
	ErrChunkUploadFailed = errors.New("chunk upload failed")

	// ErrNoPartsUploaded is returned when completing a session for which the backend
	// reports zero received parts.
	ErrNoPartsUploaded = errors.New("no parts uploaded")

	// ErrCompletionRejected is returned when the backend refuses the completion
	// manifest, or when the received parts are not contiguous from 1.
	ErrCompletionRejected = errors.New("completion rejected")

	// ErrAlreadyFinalized is returned when the backend no longer knows the upload
	// session, i.e. it was completed or aborted earlier.
	ErrAlreadyFinalized = errors.New("upload already completed or aborted")
)

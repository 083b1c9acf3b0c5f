package api

const (
	// Generic request/server errors
	CodeValidationFailed = "E_VALIDATION_FAILED" // caller input is malformed or missing
	CodeRateLimited      = "E_RATE_LIMITED"      // rate limit exceeded
	CodeInternalError    = "E_INTERNAL_ERROR"    // internal server error
	CodeAccessDenied     = "E_ACCESS_DENIED"     // access denied

	// Auth errors
	CodeAuthInvalidCredentials = "E_AUTH_INVALID_CREDENTIALS" // authentication credentials (e.g., token) are invalid, expired, or malformed.

	// Upload errors
	CodeBackendUnavailable = "E_BACKEND_UNAVAILABLE" // the storage backend could not be reached or failed unexpectedly.
	CodeChunkUploadFailed  = "E_CHUNK_UPLOAD_FAILED" // transport failure while storing one chunk; the caller may retry the chunk.
	CodeNoPartsUploaded    = "E_NO_PARTS_UPLOADED"   // completion requested but the backend received no parts for the session.
	CodeCompletionRejected = "E_COMPLETION_REJECTED" // the backend refused to stitch the received parts into an object.
	CodeUploadFinalized    = "E_UPLOAD_FINALIZED"    // the session was already completed or aborted.
	CodeMediaNotFound      = "E_MEDIA_NOT_FOUND"     // the specified media object could not be found.
	CodeMediaListFailed    = "E_MEDIA_LIST_FAILED"   // a failure during the operation to list media.
	CodeMediaDeleteFailed  = "E_MEDIA_DELETE_FAILED" // a failure during the operation to delete media.
)

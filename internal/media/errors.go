package media

import "errors"

var (
	// ErrStorageUnavailable indicates no object store is configured.
	ErrStorageUnavailable = errors.New("media storage unavailable")
	// ErrUploadTooLarge indicates the request body exceeded the configured limit.
	ErrUploadTooLarge = errors.New("upload exceeds size limit")
	// ErrMalformedUpload indicates the body could not be parsed as multipart form data.
	ErrMalformedUpload = errors.New("malformed multipart upload")

	errJanitorClosed = errors.New("media janitor closed")
)

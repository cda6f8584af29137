package client

// maxErrBodySize caps the amount of response body embedded in
// an error string. The error value itself keeps the whole body.
const maxErrBodySize = 4 << 10 // 4KB

// Header and content type names used on the wire.
const (
	HeaderRequestID   = "X-Request-ID"
	HeaderContentType = "Content-Type"

	ContentTypeJSON    = "application/json"
	ContentTypeMsgpack = "application/msgpack"
	ContentTypeForm    = "application/x-www-form-urlencoded"
)

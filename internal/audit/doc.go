// Package audit implements the asynchronous audit event pipeline. Session,
// OTP, and transport code emit events; a buffered dispatcher forwards them to
// the caller-supplied sink without ever blocking the request path.
package audit

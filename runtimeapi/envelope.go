package runtimeapi

import "time"

// Envelope is the invocation data produced by a successful next() call: the
// header metadata plus the payload bytes. It is created when next()
// succeeds and lives until the corresponding response/error post completes.
type Envelope struct {
	// RequestID is the opaque, non-empty request identifier. Every
	// response/error post must echo it back unchanged.
	RequestID string

	// TraceID is the optional distributed-tracing identifier.
	TraceID string

	// InvokedFunctionARN optionally identifies the invoked function.
	InvokedFunctionARN string

	// Deadline is the absolute wall-clock instant by which a response is
	// expected. It is the zero time when the control plane sent no deadline
	// header; Next does not compare it with the current time.
	Deadline time.Time

	// CognitoIdentity carries an optional mobile-SDK identity blob.
	CognitoIdentity string

	// ClientContext carries an optional client-context blob.
	ClientContext string

	// Payload is the raw invocation body. May be empty but never nil.
	Payload []byte
}

// ErrorBody is the JSON document posted to the error endpoints.
type ErrorBody struct {
	ErrorType    string   `json:"errorType"`
	ErrorMessage string   `json:"errorMessage"`
	StackTrace   []string `json:"stackTrace"`
}

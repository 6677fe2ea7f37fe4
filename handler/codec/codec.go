// Package codec holds the decode/encode strategy pairs the handler tower
// selects per registered handler. Strategies are plain function values, not
// struct tags or reflection-driven magic: a decoder turns raw bytes into a
// typed value, an encoder turns a typed value back into bytes using a
// caller-supplied scratch buffer.
package codec

import (
	"bytes"
	"encoding/json"
)

// Decoder turns raw invocation payload bytes into a typed value.
type Decoder[In any] func(data []byte) (In, error)

// Encoder turns a typed value into response bytes, using buf as scratch
// space from the invocation's buffer allocator. A nil return means no body.
type Encoder[Out any] func(buf *bytes.Buffer, value Out) ([]byte, error)

// String returns the identity codec for UTF-8 strings.
func String() (Decoder[string], Encoder[string]) {
	return stringDecode, stringEncode
}

func stringDecode(data []byte) (string, error) {
	return string(data), nil
}

func stringEncode(buf *bytes.Buffer, value string) ([]byte, error) {
	if value == "" {
		return nil, nil
	}
	buf.WriteString(value)
	return buf.Bytes(), nil
}

// JSON returns a codec pair for type T backed by encoding/json.
func JSON[T any]() (Decoder[T], Encoder[T]) {
	return jsonDecode[T], jsonEncode[T]
}

func jsonDecode[T any](data []byte) (T, error) {
	var v T
	if len(data) == 0 {
		return v, nil
	}
	err := json.Unmarshal(data, &v)
	return v, err
}

func jsonEncode[T any](buf *bytes.Buffer, value T) ([]byte, error) {
	if err := json.NewEncoder(buf).Encode(value); err != nil {
		return nil, err
	}
	body := buf.Bytes()
	// json.Encoder.Encode appends a trailing newline; trim it so the
	// response body is exactly the encoded JSON value.
	if n := len(body); n > 0 && body[n-1] == '\n' {
		body = body[:n-1]
	}
	return body, nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package frontend

import (
	"fmt"

	"github.com/bureau-foundation/stampede/lib/codec"
)

// Request is one frontend request. Construct with [NewRequest]; the
// zero value is not usable.
type Request struct {
	payload RequestPayload
}

// NewRequest wraps payload in a request whose type is the payload's
// kind. Panics on a nil payload.
func NewRequest(payload RequestPayload) *Request {
	if payload == nil {
		panic("frontend: NewRequest with nil payload")
	}
	return &Request{payload: payload}
}

// Type returns the request type derived from the payload.
func (r *Request) Type() RequestType { return r.payload.requestType() }

// Payload returns the request payload. Callers type-switch on it.
func (r *Request) Payload() RequestPayload { return r.payload }

// Response is one frontend response. Construct with [NewResponse] or
// [NewFailedResponse].
type Response struct {
	kind         RequestType
	successful   bool
	errorMessage string
	payload      ResponsePayload
}

// NewResponse builds a successful response carrying payload. The
// response type is the payload's kind. Panics on a nil payload.
func NewResponse(payload ResponsePayload) *Response {
	if payload == nil {
		panic("frontend: NewResponse with nil payload")
	}
	return &Response{
		kind:       payload.responseType(),
		successful: true,
		payload:    payload,
	}
}

// NewFailedResponse builds a failure response for a request of type t.
func NewFailedResponse(t RequestType, message string) *Response {
	return &Response{kind: t, errorMessage: message}
}

// Type returns the request type this response declares it answers.
func (r *Response) Type() RequestType { return r.kind }

// Successful reports the coordinator's success flag.
func (r *Response) Successful() bool { return r.successful }

// ErrorMessage returns the coordinator's message for a failed response.
func (r *Response) ErrorMessage() string { return r.errorMessage }

// Payload returns the response payload; nil for failed responses.
func (r *Response) Payload() ResponsePayload { return r.payload }

// ResponseAs returns the response payload as T, or a
// *ProtocolViolation if the response carries a different kind.
//
//	status, err := frontend.ResponseAs[*frontend.BuildStatusResponse](response)
func ResponseAs[T ResponsePayload](response *Response) (T, error) {
	payload, ok := response.payload.(T)
	if !ok {
		var zero T
		return zero, &ProtocolViolation{
			Type:   response.kind,
			Detail: fmt.Sprintf("response payload is %T, want %T", response.payload, zero),
		}
	}
	return payload, nil
}

// Wire frames. The payload is nested as raw CBOR so that the type tag
// alone selects how it is decoded.

type requestFrame struct {
	Type    RequestType      `cbor:"type"`
	Payload codec.RawMessage `cbor:"payload"`
}

type responseFrame struct {
	Type    RequestType      `cbor:"type"`
	OK      *bool            `cbor:"ok"`
	Error   string           `cbor:"error,omitempty"`
	Payload codec.RawMessage `cbor:"payload,omitempty"`
}

// MarshalCBOR encodes the request frame.
func (r *Request) MarshalCBOR() ([]byte, error) {
	payload, err := codec.Marshal(r.payload)
	if err != nil {
		return nil, fmt.Errorf("encoding %s payload: %w", r.Type(), err)
	}
	return codec.Marshal(requestFrame{Type: r.Type(), Payload: payload})
}

// UnmarshalCBOR decodes a request frame. A frame with an unknown type
// or a payload that does not decode as that type is a
// *ProtocolViolation.
func (r *Request) UnmarshalCBOR(data []byte) error {
	var frame requestFrame
	if err := codec.Unmarshal(data, &frame); err != nil {
		return &ProtocolViolation{Detail: fmt.Sprintf("malformed request frame: %v", err)}
	}
	payload := newRequestPayload(frame.Type)
	if payload == nil {
		return &ProtocolViolation{Type: frame.Type, Detail: "unknown request type"}
	}
	if len(frame.Payload) == 0 {
		return &ProtocolViolation{Type: frame.Type, Detail: "request has no payload"}
	}
	if err := codec.Unmarshal(frame.Payload, payload); err != nil {
		return &ProtocolViolation{Type: frame.Type, Detail: fmt.Sprintf("malformed payload: %v", err)}
	}
	r.payload = payload
	return nil
}

// MarshalCBOR encodes the response frame.
func (r *Response) MarshalCBOR() ([]byte, error) {
	ok := r.successful
	frame := responseFrame{Type: r.kind, OK: &ok, Error: r.errorMessage}
	if r.payload != nil {
		payload, err := codec.Marshal(r.payload)
		if err != nil {
			return nil, fmt.Errorf("encoding %s response payload: %w", r.kind, err)
		}
		frame.Payload = payload
	}
	return codec.Marshal(frame)
}

// UnmarshalCBOR decodes a response frame. A missing success flag, or a
// successful response without a decodable payload of its declared
// type, is a *ProtocolViolation. Failed responses keep only their type
// and message.
func (r *Response) UnmarshalCBOR(data []byte) error {
	var frame responseFrame
	if err := codec.Unmarshal(data, &frame); err != nil {
		return &ProtocolViolation{Detail: fmt.Sprintf("malformed response frame: %v", err)}
	}
	if frame.OK == nil {
		return &ProtocolViolation{Type: frame.Type, Detail: "response has no success flag"}
	}

	decoded := Response{kind: frame.Type, successful: *frame.OK, errorMessage: frame.Error}
	if decoded.successful {
		payload := newResponsePayload(frame.Type)
		if payload == nil {
			return &ProtocolViolation{Type: frame.Type, Detail: "unknown response type"}
		}
		if len(frame.Payload) == 0 {
			return &ProtocolViolation{Type: frame.Type, Detail: "successful response has no payload"}
		}
		if err := codec.Unmarshal(frame.Payload, payload); err != nil {
			return &ProtocolViolation{Type: frame.Type, Detail: fmt.Sprintf("malformed payload: %v", err)}
		}
		decoded.payload = payload
	}
	*r = decoded
	return nil
}

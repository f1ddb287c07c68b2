package common

import (
	"encoding/json"
	"fmt"

	"github.com/txstore-io/txstore/lib/records"
)

// --------------------------------------------------------------------------
// Message Structure
// --------------------------------------------------------------------------

// Message represents a single message used for both requests and responses.
// Which fields are used depends on the type of message.
type Message struct {
	// Type of message
	MsgType MessageType `json:"msg_type"`

	// General fields
	Key           string `json:"key,omitempty"`             // Used for: all record and lock operations
	Holder        string `json:"holder,omitempty"`          // Used for: Write, Acquire, Release, IsHolder
	HoldTimeoutMs uint64 `json:"hold_timeout_ms,omitempty"` // Used for: Acquire requests
	WaitTimeoutMs uint64 `json:"wait_timeout_ms,omitempty"` // Used for: Acquire, Wait requests
	Value         []byte `json:"value,omitempty"`           // Used for: Write (request), Read (response)

	// Response only fields
	Ok   bool            `json:"ok,omitempty"`   // Used for: Read, Exists, Acquire, IsLocked, IsHolder, Wait responses
	Err  string          `json:"err,omitempty"`  // Empty if no error, otherwise contains the error message
	Code records.RetCode `json:"code,omitempty"` // Error classification, RetCSuccess if no error

	// Meta information
	Meta []byte `json:"meta,omitempty"` // Unused, can be used for additional Adapters
}

// setError copies an error and its classification code into a response message.
func (m *Message) setError(err error) {
	if err == nil {
		return
	}
	m.Err = err.Error()
	m.Code = records.CodeOf(err)
}

// AsError converts a response message back into a typed error. It returns
// nil if the message carries no error.
func (m *Message) AsError() error {
	if m.Err == "" {
		return nil
	}
	code := m.Code
	if code == records.RetCSuccess {
		code = records.RetCInternalError
	}
	return records.NewError(code, m.Err)
}

// --------------------------------------------------------------------------
// Message Factory Functions
// --------------------------------------------------------------------------

// NewReadRequest creates a new Read request
func NewReadRequest(key string) *Message {
	return &Message{
		MsgType: MsgTRecRead,
		Key:     key,
	}
}

// NewReadResponse creates a new Read response
func NewReadResponse(value []byte, ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTRecRead,
		Ok:      ok,
		Value:   value,
	}
	msg.setError(err)
	return msg
}

// NewWriteRequest creates a new Write request
func NewWriteRequest(key string, value []byte, holder string) *Message {
	return &Message{
		MsgType: MsgTRecWrite,
		Key:     key,
		Value:   value,
		Holder:  holder,
	}
}

// NewWriteResponse creates a new Write response
func NewWriteResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTRecWrite,
	}
	msg.setError(err)
	return msg
}

// NewExistsRequest creates a new Exists request
func NewExistsRequest(key string) *Message {
	return &Message{
		MsgType: MsgTRecExists,
		Key:     key,
	}
}

// NewExistsResponse creates a new Exists response
func NewExistsResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTRecExists,
		Ok:      ok,
	}
	msg.setError(err)
	return msg
}

// NewAcquireRequest creates a new Acquire request
func NewAcquireRequest(key, holder string, holdTimeoutMs, acquireTimeoutMs uint64) *Message {
	return &Message{
		MsgType:       MsgTLCKAcquire,
		Key:           key,
		Holder:        holder,
		HoldTimeoutMs: holdTimeoutMs,
		WaitTimeoutMs: acquireTimeoutMs,
	}
}

// NewAcquireResponse creates a new Acquire response
func NewAcquireResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTLCKAcquire,
		Ok:      ok,
	}
	msg.setError(err)
	return msg
}

// NewReleaseRequest creates a new Release request
func NewReleaseRequest(key, holder string) *Message {
	return &Message{
		MsgType: MsgTLCKRelease,
		Key:     key,
		Holder:  holder,
	}
}

// NewReleaseResponse creates a new Release response
func NewReleaseResponse(err error) *Message {
	msg := &Message{
		MsgType: MsgTLCKRelease,
	}
	msg.setError(err)
	return msg
}

// NewIsLockedRequest creates a new IsLocked request
func NewIsLockedRequest(key string) *Message {
	return &Message{
		MsgType: MsgTLCKIsLocked,
		Key:     key,
	}
}

// NewIsLockedResponse creates a new IsLocked response
func NewIsLockedResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTLCKIsLocked,
		Ok:      ok,
	}
	msg.setError(err)
	return msg
}

// NewIsHolderRequest creates a new IsHolder request
func NewIsHolderRequest(key, holder string) *Message {
	return &Message{
		MsgType: MsgTLCKIsHolder,
		Key:     key,
		Holder:  holder,
	}
}

// NewIsHolderResponse creates a new IsHolder response
func NewIsHolderResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTLCKIsHolder,
		Ok:      ok,
	}
	msg.setError(err)
	return msg
}

// NewWaitRequest creates a new Wait request
func NewWaitRequest(key string, waitTimeoutMs uint64) *Message {
	return &Message{
		MsgType:       MsgTLCKWait,
		Key:           key,
		WaitTimeoutMs: waitTimeoutMs,
	}
}

// NewWaitResponse creates a new Wait response
func NewWaitResponse(ok bool, err error) *Message {
	msg := &Message{
		MsgType: MsgTLCKWait,
		Ok:      ok,
	}
	msg.setError(err)
	return msg
}

// NewCustomRequest creates a new Custom request
func NewCustomRequest(meta []byte) *Message {
	return &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
}

// NewCustomResponse creates a new Custom response
func NewCustomResponse(meta []byte, err error) *Message {
	msg := &Message{
		MsgType: MsgTCustom,
		Meta:    meta,
	}
	msg.setError(err)
	return msg
}

// NewErrorResponse creates a new Error response
func NewErrorResponse(err string) *Message {
	return &Message{
		MsgType: MsgTError,
		Err:     err,
		Code:    records.RetCInternalError,
	}
}

// --------------------------------------------------------------------------
// Message Type Definition
// --------------------------------------------------------------------------

// MessageType defines the type of message used in RPC communication.
type MessageType uint8

// String returns the string representation of a MessageType.
func (t MessageType) String() string {
	switch t {
	case MsgTRecRead:
		return "read"
	case MsgTRecWrite:
		return "write"
	case MsgTRecExists:
		return "exists"
	case MsgTLCKAcquire:
		return "acquire"
	case MsgTLCKRelease:
		return "release"
	case MsgTLCKIsLocked:
		return "isLocked"
	case MsgTLCKIsHolder:
		return "isHolder"
	case MsgTLCKWait:
		return "wait"
	case MsgTCustom:
		return "custom"
	case MsgTError:
		return "error"
	case MsgTSuccess:
		return "success"
	default:
		return "unknown"
	}
}

// MarshalJSON implements the json.Marshaller interface for MessageType.
// This allows MessageType to be serialized as a string in JSON.
func (t MessageType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageType.
// This allows MessageType to be deserialized from a string in JSON.
func (t *MessageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}

	// Convert string back to MessageType
	switch s {
	case "read":
		*t = MsgTRecRead
	case "write":
		*t = MsgTRecWrite
	case "exists":
		*t = MsgTRecExists
	case "acquire":
		*t = MsgTLCKAcquire
	case "release":
		*t = MsgTLCKRelease
	case "isLocked":
		*t = MsgTLCKIsLocked
	case "isHolder":
		*t = MsgTLCKIsHolder
	case "wait":
		*t = MsgTLCKWait
	case "custom":
		*t = MsgTCustom
	case "error":
		*t = MsgTError
	case "success":
		*t = MsgTSuccess
	default:
		return fmt.Errorf("unknown message type: %s", s)
	}

	return nil
}

// --------------------------------------------------------------------------
// Message Type Constants
// --------------------------------------------------------------------------

const (
	// General message types

	MsgTUnknown MessageType = iota
	MsgTSuccess             // Indicates a successful operation
	MsgTError               // Indicates an error occurred

	// IRecordStore operations

	MsgTRecRead   // Read a record by key
	MsgTRecWrite  // Write a record
	MsgTRecExists // Check if a record exists

	// ILockManager operations

	MsgTLCKAcquire  // Acquire a lock
	MsgTLCKRelease  // Release a lock
	MsgTLCKIsLocked // Check if a key is locked
	MsgTLCKIsHolder // Check if a holder owns a lock
	MsgTLCKWait     // Wait for a lock to be released

	// Custom operations

	MsgTCustom // Custom operation type
)

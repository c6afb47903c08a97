package tool

import "fmt"

// ResultKind tags the three possible outcomes of a tool invocation.
type ResultKind int

const (
	KindSuccess ResultKind = iota + 1
	KindConnectionRequired
	KindFailure
)

// ErrorKind classifies failures. Connection gaps are NOT failures — they get
// their own variant so the UI can render a connect affordance instead of a
// generic error.
type ErrorKind int

const (
	ErrUnspecified ErrorKind = iota
	// ErrUnknownTool: registry miss — always a caller/integration bug.
	ErrUnknownTool
	// ErrInvalidArguments: the arguments do not satisfy the tool's schema.
	ErrInvalidArguments
	// ErrToolCrashed: a tool implementation panicked; caught at the dispatch boundary.
	ErrToolCrashed
	// ErrProviderError: the external API returned a non-auth error.
	ErrProviderError
)

// String returns the snake_case error kind used on the wire and in events.
func (k ErrorKind) String() string {
	switch k {
	case ErrUnknownTool:
		return "unknown_tool"
	case ErrInvalidArguments:
		return "invalid_arguments"
	case ErrToolCrashed:
		return "tool_crashed"
	case ErrProviderError:
		return "provider_error"
	default:
		return "unspecified"
	}
}

// errorKindFromString is the inverse of ErrorKind.String.
func errorKindFromString(s string) ErrorKind {
	switch s {
	case "unknown_tool":
		return ErrUnknownTool
	case "invalid_arguments":
		return ErrInvalidArguments
	case "tool_crashed":
		return ErrToolCrashed
	case "provider_error":
		return ErrProviderError
	default:
		return ErrUnspecified
	}
}

// ConnectionSignal tells the conversation layer an operation cannot proceed
// without the user granting provider scopes. The shape is identical whether
// it comes from a single tool or bubbles up through a workflow, so the UI
// needs exactly one code path to handle reconnection.
type ConnectionSignal struct {
	Provider      string
	MissingScopes []string // empty means "reconnect, scopes unknown"
	Message       string
	Action        string // provider-scoped URI the UI uses to start re-authorization
}

// Result is the tagged outcome of a tool invocation. It is the sole vocabulary
// by which execution outcomes cross component boundaries — no panics, no
// sentinel errors leak past it.
type Result struct {
	Kind    ResultKind
	Data    map[string]any    // KindSuccess
	Signal  *ConnectionSignal // KindConnectionRequired
	ErrKind ErrorKind         // KindFailure
	Message string            // KindFailure
}

// Succeed builds a success result.
func Succeed(data map[string]any) Result {
	return Result{Kind: KindSuccess, Data: data}
}

// NeedConnection builds a connection-required result.
func NeedConnection(sig ConnectionSignal) Result {
	return Result{Kind: KindConnectionRequired, Signal: &sig}
}

// Fail builds a failure result.
func Fail(kind ErrorKind, message string) Result {
	return Result{Kind: KindFailure, ErrKind: kind, Message: message}
}

// Failf builds a failure result with a formatted message.
func Failf(kind ErrorKind, format string, args ...any) Result {
	return Fail(kind, fmt.Sprintf(format, args...))
}

// OK reports whether the result is a success.
func (r Result) OK() bool {
	return r.Kind == KindSuccess
}

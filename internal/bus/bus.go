package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/query"
)

// Message is the request envelope carried over the internal bus. Type is a
// string tag of the form <action>-<entity> dispatched by the responder's
// handler table.
type Message struct {
	Type     string                 `json:"type"`
	Body     map[string]interface{} `json:"body,omitempty"`
	UUID     string                 `json:"uuid,omitempty"`
	Page     int                    `json:"page,omitempty"`
	Limit    int                    `json:"limit,omitempty"`
	Search   string                 `json:"search,omitempty"`
	Scope    string                 `json:"scope,omitempty"`
	UserUUID string                 `json:"user_uuid,omitempty"`
}

// AccessScope converts the envelope's scope fields into the query layer's
// explicit scope parameter.
func (m *Message) AccessScope() query.Scope {
	if m.Scope == string(query.ScopePrivate) {
		return query.Scope{Type: query.ScopePrivate, UserID: m.UserUUID}
	}
	return query.Scope{Type: query.ScopePublic}
}

// Response is the uniform envelope returned by every responder.
type Response struct {
	Status  bool               `json:"status"`
	Code    apierror.ErrorCode `json:"code"`
	Message string             `json:"message,omitempty"`
	Error   string             `json:"error,omitempty"`
	Data    interface{}        `json:"data,omitempty"`
	Count   int64              `json:"count,omitempty"`
	Result  *query.Result      `json:"result,omitempty"`
}

func Success(message string, data interface{}) *Response {
	return &Response{Status: true, Code: apierror.CodeSuccess, Message: message, Data: data}
}

func SuccessResult(result *query.Result) *Response {
	return &Response{Status: true, Code: apierror.CodeSuccess, Result: result}
}

func Failure(code apierror.ErrorCode, errMsg string) *Response {
	return &Response{Status: false, Code: code, Error: errMsg}
}

// FromError converts an error into a failure envelope, preserving the
// taxonomy code when the error is an APIError.
func FromError(err error) *Response {
	if apiErr, ok := err.(apierror.APIError); ok {
		return Failure(apiErr.Code, apiErr.Message)
	}
	return Failure(apierror.CodeInternal, err.Error())
}

// HandlerFunc is one responder operation keyed by a message type.
type HandlerFunc func(ctx context.Context, msg *Message) *Response

// Dispatcher routes messages to registered responder handlers. It is the
// in-process seam where a bus transport would otherwise sit; the gateway
// and the responders only ever speak through it.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to a message type. Registering the same type
// twice replaces the previous handler.
func (d *Dispatcher) Register(msgType string, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[msgType] = h
}

// Request dispatches a message and waits for the responder's envelope. An
// unknown type is an error, not a failure envelope: there is no responder
// to shape one.
func (d *Dispatcher) Request(ctx context.Context, msg *Message) (*Response, error) {
	d.mu.RLock()
	h, ok := d.handlers[msg.Type]
	d.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("bus: no responder registered for type %q", msg.Type)
	}
	return h(ctx, msg), nil
}

// Types returns the registered message types, for diagnostics.
func (d *Dispatcher) Types() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, 0, len(d.handlers))
	for t := range d.handlers {
		out = append(out, t)
	}
	return out
}

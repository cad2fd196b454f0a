package model

import "time"

// ErrorLog is one failed-operation record persisted by the error-log
// worker. The route layer enqueues these fire-and-forget; nothing in the
// request path waits on the write.
type ErrorLog struct {
	ID        int64     `json:"-"`
	ApiName   string    `json:"api_name"`
	Method    string    `json:"method"`
	Payload   string    `json:"payload"`
	Message   string    `json:"message"`
	Stack     string    `json:"stack"`
	ErrorCode int       `json:"error_code"`
	CreatedAt time.Time `json:"created_at"`
}

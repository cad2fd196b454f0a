package bus

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/query"
)

func TestDispatcherRequest(t *testing.T) {
	d := NewDispatcher()
	d.Register("findbyid-country", func(ctx context.Context, msg *Message) *Response {
		return Success("record found", map[string]interface{}{"uuid": msg.UUID})
	})

	resp, err := d.Request(context.Background(), &Message{Type: "findbyid-country", UUID: "cty_1"})
	assert.NoError(t, err)
	assert.True(t, resp.Status)
	assert.Equal(t, apierror.CodeSuccess, resp.Code)

	_, err = d.Request(context.Background(), &Message{Type: "findbyid-unknown"})
	assert.Error(t, err)
}

func TestAccessScope(t *testing.T) {
	msg := &Message{Scope: "PRIVATE", UserUUID: "usr_1"}
	scope := msg.AccessScope()
	assert.Equal(t, query.ScopePrivate, scope.Type)
	assert.Equal(t, "usr_1", scope.UserID)

	msg = &Message{}
	assert.Equal(t, query.ScopePublic, msg.AccessScope().Type)
}

func TestFromError(t *testing.T) {
	resp := FromError(apierror.NewAPIError(apierror.CodeNotFound, "country not found", nil))
	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeNotFound, resp.Code)
	assert.Equal(t, "country not found", resp.Error)

	resp = FromError(errors.New("connection refused"))
	assert.Equal(t, apierror.CodeInternal, resp.Code)
}

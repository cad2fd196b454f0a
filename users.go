package gridpanel

import (
	"context"
	"fmt"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/bus"
	"github.com/gridpanel/gridpanel/model"
)

// registerUsersResponder replaces the generated create and update handlers
// for users. Usernames and emails must stay unique across live records, and
// the duplicate has to be named before the insert so the caller learns which
// field collided rather than decoding a constraint violation.
func (g *Gridpanel) registerUsersResponder() {
	desc, ok := model.Entity("user")
	if !ok {
		return
	}

	createNext := g.masterCreate(desc)
	g.bus.Register("create-user", func(ctx context.Context, msg *bus.Message) *bus.Response {
		if resp := g.rejectDuplicateUser(ctx, msg, ""); resp != nil {
			return resp
		}
		return createNext(ctx, msg)
	})

	updateNext := g.masterUpdate(desc)
	g.bus.Register("update-user", func(ctx context.Context, msg *bus.Message) *bus.Response {
		if msg.UUID == "" {
			return bus.Failure(apierror.CodeValidation, "uuid is required")
		}
		if resp := g.rejectDuplicateUser(ctx, msg, msg.UUID); resp != nil {
			return resp
		}
		return updateNext(ctx, msg)
	})
}

// rejectDuplicateUser returns a duplicate failure envelope when another live
// user already holds the requested username or email. A nil response means
// the write may proceed.
func (g *Gridpanel) rejectDuplicateUser(ctx context.Context, msg *bus.Message, excludeUUID string) *bus.Response {
	username, _ := msg.Body["username"].(string)
	email, _ := msg.Body["email"].(string)
	if username == "" && email == "" {
		return nil
	}

	field, err := g.datasource.FindDuplicateUser(ctx, username, email, excludeUUID)
	if err != nil {
		return bus.FromError(err)
	}
	if field != "" {
		return bus.Failure(apierror.CodeDuplicate, fmt.Sprintf("user with this %s already exists", field))
	}
	return nil
}

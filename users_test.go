package gridpanel

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/bus"
)

func TestCreateUser_DuplicateUsername(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectQuery("SELECT CASE WHEN username = \\$1").
		WithArgs("alice", "alice@example.com", "").
		WillReturnRows(sqlmock.NewRows([]string{"case"}).AddRow("username"))

	resp := dispatch(t, g, &bus.Message{
		Type: "create-user",
		Body: map[string]interface{}{"username": "alice", "email": "alice@example.com"},
	})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeDuplicate, resp.Code)
	assert.Equal(t, "user with this username already exists", resp.Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUser_NoCollision(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectQuery("SELECT CASE WHEN username = \\$1").
		WithArgs("bob", "bob@example.com", "").
		WillReturnRows(sqlmock.NewRows([]string{"case"}))
	mock.ExpectExec("INSERT INTO users \\(user_uuid, email, username\\)").
		WithArgs(sqlmock.AnyArg(), "bob@example.com", "bob").
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp := dispatch(t, g, &bus.Message{
		Type: "create-user",
		Body: map[string]interface{}{"username": "bob", "email": "bob@example.com"},
	})

	assert.True(t, resp.Status)
	assert.Equal(t, "user created", resp.Message)
	data := resp.Data.(map[string]interface{})
	assert.Contains(t, data["user_uuid"], "usr_")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_ExcludesOwnRecord(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectQuery("SELECT CASE WHEN username = \\$1").
		WithArgs("alice", "", "usr_1").
		WillReturnRows(sqlmock.NewRows([]string{"case"}))
	rows := sqlmock.NewRows([]string{"user_uuid", "username"}).AddRow("usr_1", "alice")
	mock.ExpectQuery("FROM users u").WithArgs("usr_1").WillReturnRows(rows)
	mock.ExpectExec("UPDATE users SET username = \\$1, modified_at = NOW\\(\\) WHERE user_uuid = \\$2").
		WithArgs("alice", "usr_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := dispatch(t, g, &bus.Message{
		Type: "update-user",
		UUID: "usr_1",
		Body: map[string]interface{}{"username": "alice"},
	})

	assert.True(t, resp.Status)
	assert.Equal(t, "user updated", resp.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateUser_DuplicateEmail(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectQuery("SELECT CASE WHEN username = \\$1").
		WithArgs("", "taken@example.com", "usr_1").
		WillReturnRows(sqlmock.NewRows([]string{"case"}).AddRow("email"))

	resp := dispatch(t, g, &bus.Message{
		Type: "update-user",
		UUID: "usr_1",
		Body: map[string]interface{}{"email": "taken@example.com"},
	})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeDuplicate, resp.Code)
	assert.Equal(t, "user with this email already exists", resp.Error)
}

func TestUpdateUser_NoIdentityFieldsSkipsPrecheck(t *testing.T) {
	g, mock := newTestGridpanel(t)

	rows := sqlmock.NewRows([]string{"user_uuid", "first_name"}).AddRow("usr_1", "Al")
	mock.ExpectQuery("FROM users u").WithArgs("usr_1").WillReturnRows(rows)
	mock.ExpectExec("UPDATE users SET first_name = \\$1").
		WithArgs("Alice", "usr_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := dispatch(t, g, &bus.Message{
		Type: "update-user",
		UUID: "usr_1",
		Body: map[string]interface{}{"first_name": "Alice"},
	})

	assert.True(t, resp.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

package gridpanel

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	"github.com/gridpanel/gridpanel/database"
	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/bus"
)

func newTestGridpanel(t *testing.T) (*Gridpanel, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	g, err := NewGridpanel(database.Datasource{Conn: db}, nil)
	assert.NoError(t, err)
	return g, mock
}

func duplicatePQError(detail string) *pq.Error {
	return &pq.Error{Code: "23505", Detail: detail}
}

func dispatch(t *testing.T, g *Gridpanel, msg *bus.Message) *bus.Response {
	t.Helper()
	resp, err := g.Bus().Request(context.Background(), msg)
	assert.NoError(t, err)
	return resp
}

func TestMasterCreate(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectExec("INSERT INTO currencies \\(currency_uuid, code, created_by, name\\)").
		WithArgs(sqlmock.AnyArg(), "USD", "usr_1", "US Dollar").
		WillReturnResult(sqlmock.NewResult(1, 1))

	resp := dispatch(t, g, &bus.Message{
		Type:     "create-currency",
		Body:     map[string]interface{}{"code": "USD", "name": "US Dollar"},
		UserUUID: "usr_1",
	})

	assert.True(t, resp.Status)
	assert.Equal(t, apierror.CodeSuccess, resp.Code)
	assert.Equal(t, "currency created", resp.Message)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "USD", data["code"])
	assert.Contains(t, data["currency_uuid"], "cur_")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterCreate_EmptyBody(t *testing.T) {
	g, _ := newTestGridpanel(t)

	resp := dispatch(t, g, &bus.Message{Type: "create-currency"})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeValidation, resp.Code)
	assert.Equal(t, "request body is required", resp.Error)
}

func TestMasterCreate_Duplicate(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectExec("INSERT INTO currencies").
		WillReturnError(duplicatePQError("Key (code)=(USD) already exists."))

	resp := dispatch(t, g, &bus.Message{
		Type: "create-currency",
		Body: map[string]interface{}{"code": "USD", "name": "US Dollar"},
	})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeDuplicate, resp.Code)
	assert.Contains(t, resp.Error, "USD")
	assert.Contains(t, resp.Error, "code")
}

func TestMasterList(t *testing.T) {
	g, mock := newTestGridpanel(t)

	rows := sqlmock.NewRows([]string{"currency_uuid", "code", "created_by_name"}).
		AddRow("cur_1", "USD", "admin").
		AddRow("cur_2", "EUR", "admin")
	mock.ExpectQuery("FROM currencies cu").WillReturnRows(rows)

	resp := dispatch(t, g, &bus.Message{Type: "list-currency"})

	assert.True(t, resp.Status)
	assert.Equal(t, int64(2), resp.Count)
	records := resp.Data.([]map[string]interface{})
	assert.Equal(t, "USD", records[0]["code"])
}

func TestMasterFindByID(t *testing.T) {
	g, mock := newTestGridpanel(t)

	rows := sqlmock.NewRows([]string{"currency_uuid", "code"}).AddRow("cur_1", "USD")
	mock.ExpectQuery("SELECT cu\\.\\* FROM currencies cu WHERE cu\\.currency_uuid = \\$1").
		WithArgs("cur_1").
		WillReturnRows(rows)

	resp := dispatch(t, g, &bus.Message{Type: "findbyid-currency", UUID: "cur_1"})

	assert.True(t, resp.Status)
	data := resp.Data.(map[string]interface{})
	assert.Equal(t, "USD", data["code"])
}

func TestMasterFindByID_NotFound(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectQuery("FROM currencies cu").
		WithArgs("cur_missing").
		WillReturnRows(sqlmock.NewRows([]string{"currency_uuid", "code"}))

	resp := dispatch(t, g, &bus.Message{Type: "findbyid-currency", UUID: "cur_missing"})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeNotFound, resp.Code)
	assert.Equal(t, "currency not found", resp.Error)
}

func TestMasterFindByID_MissingUUID(t *testing.T) {
	g, _ := newTestGridpanel(t)

	resp := dispatch(t, g, &bus.Message{Type: "findbyid-currency"})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeValidation, resp.Code)
}

func TestMasterUpdate(t *testing.T) {
	g, mock := newTestGridpanel(t)

	rows := sqlmock.NewRows([]string{"currency_uuid", "code"}).AddRow("cur_1", "USD")
	mock.ExpectQuery("FROM currencies cu").WithArgs("cur_1").WillReturnRows(rows)
	mock.ExpectExec("UPDATE currencies SET modified_by = \\$1, name = \\$2, modified_at = NOW\\(\\) WHERE currency_uuid = \\$3").
		WithArgs("usr_2", "United States Dollar", "cur_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := dispatch(t, g, &bus.Message{
		Type:     "update-currency",
		UUID:     "cur_1",
		Body:     map[string]interface{}{"name": "United States Dollar"},
		UserUUID: "usr_2",
	})

	assert.True(t, resp.Status)
	assert.Equal(t, "currency updated", resp.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMasterUpdate_NotFound(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectQuery("FROM currencies cu").
		WithArgs("cur_missing").
		WillReturnRows(sqlmock.NewRows([]string{"currency_uuid"}))

	resp := dispatch(t, g, &bus.Message{
		Type: "update-currency",
		UUID: "cur_missing",
		Body: map[string]interface{}{"name": "x"},
	})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeNotFound, resp.Code)
}

func TestMasterDelete(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectExec("UPDATE currencies SET is_deleted = TRUE").
		WithArgs("usr_1", "cur_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := dispatch(t, g, &bus.Message{Type: "delete-currency", UUID: "cur_1", UserUUID: "usr_1"})

	assert.True(t, resp.Status)
	assert.Equal(t, "currency deleted", resp.Message)
}

func TestMasterStatus(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectExec("UPDATE currencies SET is_active = \\$1").
		WithArgs(false, "usr_1", "cur_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := dispatch(t, g, &bus.Message{
		Type:     "status-currency",
		UUID:     "cur_1",
		Body:     map[string]interface{}{"is_active": false},
		UserUUID: "usr_1",
	})

	assert.True(t, resp.Status)
	assert.Equal(t, "currency status updated", resp.Message)
}

func TestMasterStatus_MissingFlag(t *testing.T) {
	g, _ := newTestGridpanel(t)

	resp := dispatch(t, g, &bus.Message{Type: "status-currency", UUID: "cur_1"})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeValidation, resp.Code)
	assert.Equal(t, "is_active is required", resp.Error)
}

func TestMasterLockUnlock(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectExec("UPDATE currencies SET is_locked = \\$1").
		WithArgs(true, "usr_1", "cur_1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE currencies SET is_locked = \\$1").
		WithArgs(false, "usr_1", "cur_1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	resp := dispatch(t, g, &bus.Message{Type: "lock-currency", UUID: "cur_1", UserUUID: "usr_1"})
	assert.True(t, resp.Status)
	assert.Equal(t, "currency locked", resp.Message)

	resp = dispatch(t, g, &bus.Message{Type: "unlock-currency", UUID: "cur_1", UserUUID: "usr_1"})
	assert.True(t, resp.Status)
	assert.Equal(t, "currency unlocked", resp.Message)
}

func TestMasterAdvanceFilter(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM currencies cu").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT cu\\.\\*, creators\\.username").
		WillReturnRows(sqlmock.NewRows([]string{"currency_uuid", "code"}).AddRow("cur_1", "USD"))

	resp := dispatch(t, g, &bus.Message{
		Type: "advancefilter-currency",
		Body: map[string]interface{}{"search": "us", "page": 1, "limit": 10},
	})

	assert.True(t, resp.Status)
	assert.NotNil(t, resp.Result)
	assert.Equal(t, int64(1), resp.Result.Total)
	assert.Equal(t, "USD", resp.Result.Data[0]["code"])
}

func TestMasterAdvanceFilter_MalformedBody(t *testing.T) {
	g, _ := newTestGridpanel(t)

	resp := dispatch(t, g, &bus.Message{
		Type: "advancefilter-currency",
		Body: map[string]interface{}{"page": "not-a-number"},
	})

	assert.False(t, resp.Status)
	assert.Equal(t, apierror.CodeValidation, resp.Code)
}

func TestMasterListPagination(t *testing.T) {
	g, mock := newTestGridpanel(t)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM currencies cu").
		WithArgs("%us%", "%us%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("ORDER BY cu\\.created_at DESC LIMIT \\$3 OFFSET \\$4").
		WithArgs("%us%", "%us%", 2, 2).
		WillReturnRows(sqlmock.NewRows([]string{"currency_uuid", "code"}).AddRow("cur_3", "AUD"))

	resp := dispatch(t, g, &bus.Message{
		Type:   "currency-listpagination",
		Search: "us",
		Page:   2,
		Limit:  2,
	})

	assert.True(t, resp.Status)
	assert.Equal(t, int64(3), resp.Result.Total)
	assert.Equal(t, 2, resp.Result.Page)
}

func TestDispatcherUnknownType(t *testing.T) {
	g, _ := newTestGridpanel(t)

	_, err := g.Bus().Request(context.Background(), &bus.Message{Type: "create-warehouse"})
	assert.Error(t, err)
}

func TestEveryEntityRegistersFullSurface(t *testing.T) {
	g, _ := newTestGridpanel(t)

	types := make(map[string]bool)
	for _, tp := range g.Bus().Types() {
		types[tp] = true
	}

	for _, key := range []string{"country", "city", "currency", "role", "setting", "cmsblock", "brand", "model", "user"} {
		for _, action := range []string{"create", "list", "findbyid", "update", "delete", "status", "lock", "unlock", "advancefilter"} {
			assert.True(t, types[action+"-"+key], "missing %s-%s", action, key)
		}
		assert.True(t, types[key+"-listpagination"], "missing %s-listpagination", key)
	}
}

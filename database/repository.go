package database

import (
	"context"

	"github.com/gridpanel/gridpanel/internal/query"
	"github.com/gridpanel/gridpanel/model"
)

type record = map[string]interface{}

type generic interface {
	CreateRecord(ctx context.Context, d model.EntityDescriptor, body record) (record, error)
	ListRecords(ctx context.Context, d model.EntityDescriptor) ([]record, error)
	GetRecordByUUID(ctx context.Context, d model.EntityDescriptor, uuid string) (record, error)
	UpdateRecord(ctx context.Context, d model.EntityDescriptor, uuid string, body record) error
	SoftDeleteRecord(ctx context.Context, d model.EntityDescriptor, uuid, deletedBy string) error
	SetRecordStatus(ctx context.Context, d model.EntityDescriptor, uuid string, active bool, modifiedBy string) error
	SetRecordLock(ctx context.Context, d model.EntityDescriptor, uuid string, locked bool, modifiedBy string) error
	AdvancedSearch(ctx context.Context, def query.Definition, spec query.Spec, scope query.Scope) (*query.Result, error)
	ListPagination(ctx context.Context, d model.EntityDescriptor, search string, page, limit int) (*query.Result, error)
}

type users interface {
	FindDuplicateUser(ctx context.Context, username, email, excludeUUID string) (string, error)
}

type brands interface {
	GetBrandID(ctx context.Context, brandUUID string) (int64, error)
}

type errorLog interface {
	SaveErrorLog(ctx context.Context, entry model.ErrorLog) error
}

type IDataSource interface {
	generic
	users
	brands
	errorLog
}

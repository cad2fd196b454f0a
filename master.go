/*
Copyright 2025 Gridpanel Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package gridpanel

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/bus"
	"github.com/gridpanel/gridpanel/internal/query"
	"github.com/gridpanel/gridpanel/model"
)

const recordCacheTTL = 5 * time.Minute

// RegisterMasterResponder generates the standard operation handlers for one
// entity descriptor and binds them to the dispatcher. Every entity gets the
// same surface; hand-written responders re-register the types they
// specialize.
func (g *Gridpanel) RegisterMasterResponder(desc model.EntityDescriptor) {
	key := desc.Key
	g.bus.Register("create-"+key, g.masterCreate(desc))
	g.bus.Register("list-"+key, g.masterList(desc))
	g.bus.Register("findbyid-"+key, g.masterFindByID(desc))
	g.bus.Register("update-"+key, g.masterUpdate(desc))
	g.bus.Register("delete-"+key, g.masterDelete(desc))
	g.bus.Register("status-"+key, g.masterStatus(desc))
	g.bus.Register("lock-"+key, g.masterLock(desc, true))
	g.bus.Register("unlock-"+key, g.masterLock(desc, false))
	g.bus.Register("advancefilter-"+key, g.masterAdvanceFilter(desc))
	// The pagination tag keys entity-first; kept for gateway compatibility.
	g.bus.Register(key+"-listpagination", g.masterListPagination(desc))
}

func (g *Gridpanel) masterCreate(desc model.EntityDescriptor) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		if len(msg.Body) == 0 {
			return bus.Failure(apierror.CodeValidation, "request body is required")
		}
		body := copyBody(msg.Body)
		if msg.UserUUID != "" {
			body["created_by"] = msg.UserUUID
		}

		created, err := g.datasource.CreateRecord(ctx, desc, body)
		if err != nil {
			return bus.FromError(err)
		}
		return bus.Success(fmt.Sprintf("%s created", desc.Key), created)
	}
}

func (g *Gridpanel) masterList(desc model.EntityDescriptor) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		records, err := g.datasource.ListRecords(ctx, desc)
		if err != nil {
			return bus.FromError(err)
		}
		resp := bus.Success("", records)
		resp.Count = int64(len(records))
		return resp
	}
}

func (g *Gridpanel) masterFindByID(desc model.EntityDescriptor) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		if msg.UUID == "" {
			return bus.Failure(apierror.CodeValidation, "uuid is required")
		}

		if cached := g.cacheGet(ctx, desc.Key, msg.UUID); cached != nil {
			return bus.Success("", cached)
		}

		record, err := g.datasource.GetRecordByUUID(ctx, desc, msg.UUID)
		if err != nil {
			return bus.FromError(err)
		}
		g.cacheSet(ctx, desc.Key, msg.UUID, record)
		return bus.Success("", record)
	}
}

func (g *Gridpanel) masterUpdate(desc model.EntityDescriptor) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		if msg.UUID == "" {
			return bus.Failure(apierror.CodeValidation, "uuid is required")
		}
		if len(msg.Body) == 0 {
			return bus.Failure(apierror.CodeValidation, "request body is required")
		}
		body := copyBody(msg.Body)
		if msg.UserUUID != "" {
			body["modified_by"] = msg.UserUUID
		}

		if err := g.datasource.UpdateRecord(ctx, desc, msg.UUID, body); err != nil {
			return bus.FromError(err)
		}
		g.cacheInvalidate(ctx, desc.Key, msg.UUID)
		return bus.Success(fmt.Sprintf("%s updated", desc.Key), nil)
	}
}

func (g *Gridpanel) masterDelete(desc model.EntityDescriptor) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		if msg.UUID == "" {
			return bus.Failure(apierror.CodeValidation, "uuid is required")
		}
		if err := g.datasource.SoftDeleteRecord(ctx, desc, msg.UUID, msg.UserUUID); err != nil {
			return bus.FromError(err)
		}
		g.cacheInvalidate(ctx, desc.Key, msg.UUID)
		return bus.Success(fmt.Sprintf("%s deleted", desc.Key), nil)
	}
}

func (g *Gridpanel) masterStatus(desc model.EntityDescriptor) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		if msg.UUID == "" {
			return bus.Failure(apierror.CodeValidation, "uuid is required")
		}
		active, ok := msg.Body["is_active"].(bool)
		if !ok {
			return bus.Failure(apierror.CodeValidation, "is_active is required")
		}
		if err := g.datasource.SetRecordStatus(ctx, desc, msg.UUID, active, msg.UserUUID); err != nil {
			return bus.FromError(err)
		}
		g.cacheInvalidate(ctx, desc.Key, msg.UUID)
		return bus.Success(fmt.Sprintf("%s status updated", desc.Key), nil)
	}
}

func (g *Gridpanel) masterLock(desc model.EntityDescriptor, locked bool) bus.HandlerFunc {
	action := "unlocked"
	if locked {
		action = "locked"
	}
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		if msg.UUID == "" {
			return bus.Failure(apierror.CodeValidation, "uuid is required")
		}
		if err := g.datasource.SetRecordLock(ctx, desc, msg.UUID, locked, msg.UserUUID); err != nil {
			return bus.FromError(err)
		}
		g.cacheInvalidate(ctx, desc.Key, msg.UUID)
		return bus.Success(fmt.Sprintf("%s %s", desc.Key, action), nil)
	}
}

func (g *Gridpanel) masterAdvanceFilter(desc model.EntityDescriptor) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		spec, err := specFromBody(msg.Body)
		if err != nil {
			return bus.Failure(apierror.CodeValidation, err.Error())
		}

		result, err := g.datasource.AdvancedSearch(ctx, desc.QueryDefinition(), spec, msg.AccessScope())
		if err != nil {
			return bus.FromError(err)
		}
		return bus.SuccessResult(result)
	}
}

func (g *Gridpanel) masterListPagination(desc model.EntityDescriptor) bus.HandlerFunc {
	return func(ctx context.Context, msg *bus.Message) *bus.Response {
		result, err := g.datasource.ListPagination(ctx, desc, msg.Search, msg.Page, msg.Limit)
		if err != nil {
			return bus.FromError(err)
		}
		return bus.SuccessResult(result)
	}
}

// specFromBody decodes the free-form message body into a filter spec. The
// round trip through JSON keeps the body permissive: unknown keys are
// ignored, malformed shapes fail as validation errors.
func specFromBody(body map[string]interface{}) (query.Spec, error) {
	var spec query.Spec
	if len(body) == 0 {
		return spec, nil
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return spec, err
	}
	if err := json.Unmarshal(raw, &spec); err != nil {
		return spec, fmt.Errorf("malformed filter request: %v", err)
	}
	return spec, nil
}

func copyBody(body map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(body))
	for k, v := range body {
		out[k] = v
	}
	return out
}

func (g *Gridpanel) cacheKey(key, uuid string) string {
	return key + ":" + uuid
}

func (g *Gridpanel) cacheGet(ctx context.Context, key, uuid string) map[string]interface{} {
	if g.cache == nil {
		return nil
	}
	var record map[string]interface{}
	if err := g.cache.Get(ctx, g.cacheKey(key, uuid), &record); err != nil {
		logrus.Warnf("cache get failed for %s: %v", g.cacheKey(key, uuid), err)
		return nil
	}
	if len(record) == 0 {
		return nil
	}
	return record
}

func (g *Gridpanel) cacheSet(ctx context.Context, key, uuid string, record map[string]interface{}) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, g.cacheKey(key, uuid), record, recordCacheTTL); err != nil {
		logrus.Warnf("cache set failed for %s: %v", g.cacheKey(key, uuid), err)
	}
}

func (g *Gridpanel) cacheInvalidate(ctx context.Context, key, uuid string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Delete(ctx, g.cacheKey(key, uuid)); err != nil {
		logrus.Warnf("cache delete failed for %s: %v", g.cacheKey(key, uuid), err)
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime/debug"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/bus"
	"github.com/gridpanel/gridpanel/internal/validators"
	"github.com/gridpanel/gridpanel/model"
)

// MountMasterRoutes generates the standard HTTP surface for one entity on
// the given route group. All mutate and lookup-by-id routes are POST; the
// admin frontend predates this service and its client only speaks POST.
func (a *Api) MountMasterRoutes(rg *gin.RouterGroup, desc model.EntityDescriptor) {
	key := desc.Key
	rg.POST("/create", a.createMaster(desc))
	rg.GET("/list", a.forwardMaster("list-"+key))
	rg.GET("/findbyid/:id", a.forwardMasterByID("findbyid-"+key))
	rg.POST("/update/:id", a.updateMaster(desc))
	rg.POST("/delete/:id", a.forwardMasterByID("delete-"+key))
	rg.POST("/status/:id", a.statusMaster(key))
	rg.POST("/pagination-list", a.advanceFilterMaster(key))
	rg.GET("/listpagination", a.listPaginationMaster(key))
	rg.POST("/lock/:id", a.forwardMasterByID("lock-"+key))
	rg.POST("/unlock/:id", a.forwardMasterByID("unlock-"+key))
}

func (a *Api) createMaster(desc model.EntityDescriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := a.bindBody(c)
		if !ok {
			return
		}
		if err := validators.Master(desc.Key, "create", body); err != nil {
			a.fail(c, bus.Failure(apierror.CodeValidation, err.Error()), body)
			return
		}
		if desc.TranslateBrand {
			if resp := a.translateBrand(c.Request.Context(), body); resp != nil {
				a.fail(c, resp, body)
				return
			}
		}
		a.send(c, &bus.Message{
			Type:     "create-" + desc.Key,
			Body:     body,
			UserUUID: userUUID(c),
		}, http.StatusCreated)
	}
}

func (a *Api) updateMaster(desc model.EntityDescriptor) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := a.bindBody(c)
		if !ok {
			return
		}
		if desc.TranslateBrand {
			if resp := a.translateBrand(c.Request.Context(), body); resp != nil {
				a.fail(c, resp, body)
				return
			}
		}
		a.send(c, &bus.Message{
			Type:     "update-" + desc.Key,
			Body:     body,
			UUID:     c.Param("id"),
			UserUUID: userUUID(c),
		}, http.StatusOK)
	}
}

func (a *Api) statusMaster(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := a.bindBody(c)
		if !ok {
			return
		}
		a.send(c, &bus.Message{
			Type:     "status-" + key,
			Body:     body,
			UUID:     c.Param("id"),
			UserUUID: userUUID(c),
		}, http.StatusOK)
	}
}

func (a *Api) forwardMaster(msgType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		a.send(c, &bus.Message{Type: msgType, UserUUID: userUUID(c)}, http.StatusOK)
	}
}

func (a *Api) forwardMasterByID(msgType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		a.send(c, &bus.Message{
			Type:     msgType,
			UUID:     c.Param("id"),
			UserUUID: userUUID(c),
		}, http.StatusOK)
	}
}

func (a *Api) advanceFilterMaster(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, ok := a.bindBody(c)
		if !ok {
			return
		}
		scope, _ := body["scope"].(string)
		a.send(c, &bus.Message{
			Type:     "advancefilter-" + key,
			Body:     body,
			Scope:    scope,
			UserUUID: userUUID(c),
		}, http.StatusOK)
	}
}

func (a *Api) listPaginationMaster(key string) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, _ := strconv.Atoi(c.Query("page"))
		limit, _ := strconv.Atoi(c.Query("limit"))
		a.send(c, &bus.Message{
			Type:     key + "-listpagination",
			Search:   c.Query("search"),
			Page:     page,
			Limit:    limit,
			UserUUID: userUUID(c),
		}, http.StatusOK)
	}
}

// translateBrand swaps the human-facing brand_uuid in the body for the
// internal numeric brand_id before the message is forwarded. A nil return
// means the body is ready; otherwise the returned envelope is the failure
// to surface.
func (a *Api) translateBrand(ctx context.Context, body map[string]interface{}) *bus.Response {
	brandUUID, _ := body["brand_uuid"].(string)
	if brandUUID == "" {
		return nil
	}

	resp, err := a.panel.Bus().Request(ctx, &bus.Message{Type: "brandid-brand", UUID: brandUUID})
	if err != nil {
		return bus.Failure(apierror.CodeInternal, err.Error())
	}
	if !resp.Status {
		return resp
	}

	brand, ok := resp.Data.(map[string]interface{})
	if !ok {
		return bus.Failure(apierror.CodeInternal, "unexpected brand payload")
	}
	body["brand_id"] = brand["brand_id"]
	delete(body, "brand_uuid")
	return nil
}

// send forwards the message over the bus and writes the envelope back. The
// HTTP status is binary: successStatus on success, 500 on anything else;
// clients discriminate on the envelope's code field.
func (a *Api) send(c *gin.Context, msg *bus.Message, successStatus int) {
	resp, err := a.panel.Bus().Request(c.Request.Context(), msg)
	if err != nil {
		a.fail(c, bus.Failure(apierror.CodeInternal, err.Error()), msg.Body)
		return
	}
	if !resp.Status {
		a.fail(c, resp, msg.Body)
		return
	}
	c.JSON(successStatus, resp)
}

// fail persists an error-log entry for the failed request and responds 500
// with the envelope.
func (a *Api) fail(c *gin.Context, resp *bus.Response, body map[string]interface{}) {
	payload := ""
	if len(body) > 0 {
		if raw, err := json.Marshal(body); err == nil {
			payload = string(raw)
		}
	}
	a.errlog.Record(model.ErrorLog{
		ApiName:   c.FullPath(),
		Method:    c.Request.Method,
		Payload:   payload,
		Message:   resp.Error,
		Stack:     string(debug.Stack()),
		ErrorCode: int(resp.Code),
	})
	c.JSON(http.StatusInternalServerError, resp)
}

func (a *Api) bindBody(c *gin.Context) (map[string]interface{}, bool) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		a.fail(c, bus.Failure(apierror.CodeValidation, "invalid JSON body"), nil)
		return nil, false
	}
	return body, true
}

func userUUID(c *gin.Context) string {
	return c.GetHeader("X-User-UUID")
}

package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/gridpanel/gridpanel"
	"github.com/gridpanel/gridpanel/api/middleware"
	"github.com/gridpanel/gridpanel/config"
	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/bus"
	"github.com/gridpanel/gridpanel/internal/errlog"
	"github.com/gridpanel/gridpanel/model"
)

type Api struct {
	panel  *gridpanel.Gridpanel
	errlog *errlog.Queue
	router *gin.Engine
}

// Router mounts the generated route group for every registered entity.
func (a *Api) Router() *gin.Engine {
	router := a.router
	for _, desc := range model.Entities() {
		a.MountMasterRoutes(router.Group("/"+desc.Key), desc)
	}
	return router
}

func NewAPI(g *gridpanel.Gridpanel, q *errlog.Queue) *Api {
	gin.SetMode(gin.ReleaseMode)
	conf, err := config.Fetch()
	if err != nil {
		return nil
	}
	r := gin.New()
	r.Use(gin.Logger())
	// A panic still answers with the uniform envelope, not an empty 500.
	r.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			bus.Failure(apierror.CodeInternal, "internal server error"))
	}))

	r.Use(middleware.RateLimitMiddleware(conf))
	if conf.Server.Secure {
		r.Use(middleware.SecretKeyAuthMiddleware())
	}

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, "server running...")
	})

	return &Api{panel: g, errlog: q, router: r}
}

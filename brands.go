package gridpanel

import (
	"context"

	"github.com/gridpanel/gridpanel/internal/apierror"
	"github.com/gridpanel/gridpanel/internal/bus"
)

// registerBrandsResponder adds the brand id lookup the gateway uses when it
// rewrites a model payload's brand_uuid into the internal numeric brand_id.
func (g *Gridpanel) registerBrandsResponder() {
	g.bus.Register("brandid-brand", func(ctx context.Context, msg *bus.Message) *bus.Response {
		if msg.UUID == "" {
			return bus.Failure(apierror.CodeValidation, "brand_uuid is required")
		}
		id, err := g.datasource.GetBrandID(ctx, msg.UUID)
		if err != nil {
			return bus.FromError(err)
		}
		return bus.Success("", map[string]interface{}{"brand_id": id})
	})
}

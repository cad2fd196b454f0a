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
	"embed"

	"github.com/gridpanel/gridpanel/cache"
	"github.com/gridpanel/gridpanel/database"
	"github.com/gridpanel/gridpanel/internal/bus"
	"github.com/gridpanel/gridpanel/model"
)

//go:embed sql/*.sql
var SQLFiles embed.FS

// Gridpanel is the responder side of the admin panel: every entity's
// message handlers registered on one dispatcher over one shared
// datasource.
type Gridpanel struct {
	datasource database.IDataSource
	cache      cache.Cache
	bus        *bus.Dispatcher
}

// NewGridpanel wires the datasource and cache into a dispatcher and
// registers every responder. The cache may be nil; read paths then always
// hit the database.
func NewGridpanel(db database.IDataSource, ca cache.Cache) (*Gridpanel, error) {
	g := &Gridpanel{
		datasource: db,
		cache:      ca,
		bus:        bus.NewDispatcher(),
	}

	for _, desc := range model.Entities() {
		g.RegisterMasterResponder(desc)
	}

	// Hand-written responders override the generated handlers they
	// specialize; everything else stays factory-generated.
	g.registerUsersResponder()
	g.registerBrandsResponder()

	return g, nil
}

// Bus exposes the dispatcher the gateway sends requests through.
func (g *Gridpanel) Bus() *bus.Dispatcher {
	return g.bus
}

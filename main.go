package LightDB

import (
	"github.com/nickyhof/LightDB/auth"
	"github.com/nickyhof/LightDB/core"
	"github.com/nickyhof/LightDB/db"
	"github.com/nickyhof/LightDB/ps"
)

type Instance struct {
	Persistence *ps.Persistence
}

func Open(persistence *ps.Persistence) *Instance {
	return &Instance{
		Persistence: persistence,
	}
}

func (instance *Instance) Engine(identity core.Identity) *db.Engine {
	return db.NewEngine(instance.Persistence, identity)
}

// Session returns a new transaction-aware session acting as identity.
func (instance *Instance) Session(identity core.Identity) *db.Session {
	return instance.Engine(identity).NewSession()
}

// Users returns the account store kept next to the tables.
func (instance *Instance) Users() *auth.UserStore {
	return auth.NewUserStore(instance.Persistence.Filesystem())
}

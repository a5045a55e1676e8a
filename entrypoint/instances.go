package entrypoint

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
	"github.com/spacemeshos/go-entrypoint/entrypoint/registry"
	"github.com/spacemeshos/go-entrypoint/hash"
	"github.com/spacemeshos/go-entrypoint/state"
)

// instanceCache keeps decoded instances by digest of template and state,
// so that a reverted spawn can't leave a stale entry behind.
type instanceCache = lru.Cache[[32]byte, core.Template]

type instances struct {
	state    *state.StateDB
	registry *registry.Registry
	cache    *instanceCache
}

var _ core.InstanceLoader = (*instances)(nil)

// Load the instance bound to address.
func (l *instances) Load(address core.Address) (core.Template, error) {
	account := l.state.GetAccount(address)
	if !account.HasCode() {
		return nil, fmt.Errorf("%w: %v", core.ErrNoCode, address)
	}
	key := hash.Sum(account.Template[:], account.State)
	if tmpl, exist := l.cache.Get(key); exist {
		cacheHit.Inc()
		return tmpl, nil
	}
	cacheMiss.Inc()
	handler := l.registry.Get(*account.Template)
	if handler == nil {
		return nil, fmt.Errorf("%w: unknown template %v at %v", core.ErrInternal, *account.Template, address)
	}
	tmpl, err := handler.Load(account.State)
	if err != nil {
		return nil, err
	}
	l.cache.Add(key, tmpl)
	return tmpl, nil
}

package pg

import (
	"fmt"
	"strings"

	"ridi-pay/internal/domain"
	"ridi-pay/internal/domain/ports/adapter"
)

var _ adapter.PgGatewayResolver = (*Registry)(nil)

// Registry maps a PG name to its gateway.
type Registry struct {
	byName map[string]adapter.PgGateway
}

func NewRegistry(gateways ...adapter.PgGateway) *Registry {
	r := &Registry{byName: make(map[string]adapter.PgGateway, len(gateways))}
	for _, g := range gateways {
		r.byName[strings.ToUpper(g.Name())] = g
	}
	return r
}

func (r *Registry) Gateway(pgName string) (adapter.PgGateway, error) {
	if g := r.byName[strings.ToUpper(pgName)]; g != nil {
		return g, nil
	}
	return nil, fmt.Errorf("%w: no gateway for %q", domain.ErrUnsupportedPg, pgName)
}

// internal/apiclient/cadastros.go
package apiclient

import (
	"context"
	"net/url"
	"strconv"

	"github.com/averbacoes/backoffice/internal/models"
)

// LookupFilter is shared by the reference-data endpoints.
type LookupFilter struct {
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	Search    string `json:"search,omitempty"`
	ClienteID int64  `json:"clienteId,omitempty"`
	Ativo     *bool  `json:"ativo,omitempty"`
}

func (f LookupFilter) Values() url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.ClienteID > 0 {
		q.Set("clienteId", strconv.FormatInt(f.ClienteID, 10))
	}
	if f.Ativo != nil {
		q.Set("ativo", strconv.FormatBool(*f.Ativo))
	}
	return q
}

// GET /api/clientes
func (c *Client) ListClientes(ctx context.Context, token string, filter LookupFilter) (Page[models.Cliente], error) {
	return getPage[models.Cliente](ctx, c, "/api/clientes", filter.Values(), token)
}

// GET /api/seguradoras
func (c *Client) ListSeguradoras(ctx context.Context, token string, filter LookupFilter) (Page[models.Seguradora], error) {
	return getPage[models.Seguradora](ctx, c, "/api/seguradoras", filter.Values(), token)
}

// GET /api/container-tipos
func (c *Client) ListContainerTipos(ctx context.Context, token string, filter LookupFilter) (Page[models.ContainerTipo], error) {
	return getPage[models.ContainerTipo](ctx, c, "/api/container-tipos", filter.Values(), token)
}

// GET /api/containers
func (c *Client) ListContainers(ctx context.Context, token string, filter LookupFilter) (Page[models.Container], error) {
	return getPage[models.Container](ctx, c, "/api/containers", filter.Values(), token)
}

// GET /api/container-trips
func (c *Client) ListContainerTrips(ctx context.Context, token string, filter LookupFilter) (Page[models.ContainerTrip], error) {
	return getPage[models.ContainerTrip](ctx, c, "/api/container-trips", filter.Values(), token)
}

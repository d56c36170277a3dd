// internal/apiclient/averbacoes.go
package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/averbacoes/backoffice/internal/models"
)

type AverbacaoFilter struct {
	Page         int                    `json:"page"`
	Limit        int                    `json:"limit"`
	Search       string                 `json:"search,omitempty"`
	Numero       string                 `json:"numero,omitempty"`
	Status       models.AverbacaoStatus `json:"status,omitempty"`
	ClienteID    int64                  `json:"clienteId,omitempty"`
	SeguradoraID int64                  `json:"seguradoraId,omitempty"`
	DataInicio   string                 `json:"dataInicio,omitempty"`
	DataFim      string                 `json:"dataFim,omitempty"`
}

func (f AverbacaoFilter) Values() url.Values {
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
	if f.Numero != "" {
		q.Set("numero", f.Numero)
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.ClienteID > 0 {
		q.Set("clienteId", strconv.FormatInt(f.ClienteID, 10))
	}
	if f.SeguradoraID > 0 {
		q.Set("seguradoraId", strconv.FormatInt(f.SeguradoraID, 10))
	}
	if f.DataInicio != "" {
		q.Set("dataInicio", f.DataInicio)
	}
	if f.DataFim != "" {
		q.Set("dataFim", f.DataFim)
	}
	return q
}

// CreateAverbacaoPayload is sent as-is. A nil ContainerTripIDs is omitted so
// the API applies its default of every trip of the client in the period.
type CreateAverbacaoPayload struct {
	ClienteID        int64    `json:"clienteId"`
	PeriodoInicio    string   `json:"periodoInicio"`
	PeriodoFim       string   `json:"periodoFim"`
	SeguradoraID     *int64   `json:"seguradoraId,omitempty"`
	Numero           *string  `json:"numero,omitempty"`
	Observacoes      *string  `json:"observacoes,omitempty"`
	ContainerTripIDs *[]int64 `json:"containerTripIds,omitempty"`
}

type UpdateAverbacaoPayload struct {
	PeriodoInicio    *string  `json:"periodoInicio,omitempty"`
	PeriodoFim       *string  `json:"periodoFim,omitempty"`
	SeguradoraID     *int64   `json:"seguradoraId,omitempty"`
	Numero           *string  `json:"numero,omitempty"`
	Observacoes      *string  `json:"observacoes,omitempty"`
	ContainerTripIDs *[]int64 `json:"containerTripIds,omitempty"`
}

func averbacaoPath(id int64) string {
	return fmt.Sprintf("/api/averbacoes/%d", id)
}

// GET /api/averbacoes
func (c *Client) ListAverbacoes(ctx context.Context, token string, filter AverbacaoFilter) (Page[models.Averbacao], error) {
	return getPage[models.Averbacao](ctx, c, "/api/averbacoes", filter.Values(), token)
}

// GET /api/averbacoes/:id
func (c *Client) GetAverbacao(ctx context.Context, token string, id int64) (*models.Averbacao, error) {
	var a models.Averbacao
	if err := c.call(ctx, http.MethodGet, averbacaoPath(id), nil, token, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// POST /api/averbacoes
func (c *Client) CreateAverbacao(ctx context.Context, token string, payload CreateAverbacaoPayload) (*models.Averbacao, error) {
	var a models.Averbacao
	if err := c.call(ctx, http.MethodPost, "/api/averbacoes", nil, token, payload, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// PATCH /api/averbacoes/:id
func (c *Client) UpdateAverbacao(ctx context.Context, token string, id int64, payload UpdateAverbacaoPayload) (*models.Averbacao, error) {
	var a models.Averbacao
	if err := c.call(ctx, http.MethodPatch, averbacaoPath(id), nil, token, payload, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// DELETE /api/averbacoes/:id
func (c *Client) DeleteAverbacao(ctx context.Context, token string, id int64) error {
	return c.call(ctx, http.MethodDelete, averbacaoPath(id), nil, token, nil, nil)
}

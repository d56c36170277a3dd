// internal/apiclient/permissoes.go
package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/averbacoes/backoffice/internal/models"
)

// GET /api/permissoes
func (c *Client) ListPermissoes(ctx context.Context, token string) ([]models.Permissao, error) {
	page, err := getPage[models.Permissao](ctx, c, "/api/permissoes", url.Values{"limit": {"1000"}}, token)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// GET /api/perfis/:id/permissoes
func (c *Client) GetPerfilPermissoes(ctx context.Context, token string, perfilID int64) ([]models.Permissao, error) {
	page, err := getPage[models.Permissao](ctx, c, fmt.Sprintf("/api/perfis/%d/permissoes", perfilID), nil, token)
	if err != nil {
		return nil, err
	}
	return page.Items, nil
}

// PUT /api/perfis/:id/permissoes/sync
func (c *Client) SyncPerfilPermissoes(ctx context.Context, token string, perfilID int64, permissaoIDs []int64) error {
	if permissaoIDs == nil {
		permissaoIDs = []int64{}
	}
	payload := map[string][]int64{"permissaoIds": permissaoIDs}
	return c.call(ctx, http.MethodPut, fmt.Sprintf("/api/perfis/%d/permissoes/sync", perfilID), nil, token, payload, nil)
}

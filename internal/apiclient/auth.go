// internal/apiclient/auth.go
package apiclient

import (
	"context"
	"net/http"

	"github.com/averbacoes/backoffice/internal/models"
)

type LoginResult struct {
	Usuario      models.Usuario `json:"usuario"`
	Token        string         `json:"token"`
	RefreshToken string         `json:"refreshToken"`
}

type TokenPair struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

// POST /api/auth/login
func (c *Client) Login(ctx context.Context, email, senha string) (*LoginResult, error) {
	payload := map[string]string{"email": email, "senha": senha}

	var result LoginResult
	if err := c.call(ctx, http.MethodPost, "/api/auth/login", nil, "", payload, &result); err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, &Error{Kind: KindServer, Status: http.StatusOK, Message: "login sem token na resposta"}
	}
	return &result, nil
}

// POST /api/auth/refresh-token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	payload := map[string]string{"refreshToken": refreshToken}

	var pair TokenPair
	if err := c.call(ctx, http.MethodPost, "/api/auth/refresh-token", nil, "", payload, &pair); err != nil {
		return nil, err
	}
	if pair.Token == "" {
		return nil, &Error{Kind: KindServer, Status: http.StatusOK, Message: "renovação sem token na resposta"}
	}
	if pair.RefreshToken == "" {
		pair.RefreshToken = refreshToken
	}
	return &pair, nil
}

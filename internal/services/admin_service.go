// internal/services/admin_service.go
package services

import (
	"context"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/models"
	"github.com/averbacoes/backoffice/internal/utils"
)

// PermissionAdminService manages which permissions each profile holds.
// Sessions keep the permissions captured at login, so changes apply on
// the next sign-in.
type PermissionAdminService struct {
	api *apiclient.Client
	log *logrus.Entry
}

// PermissionModule groups the permission catalog by module for the
// profile matrix.
type PermissionModule struct {
	Modulo     string             `json:"modulo"`
	Permissoes []models.Permissao `json:"permissoes"`
}

type PerfilPermissoes struct {
	PerfilID     int64              `json:"perfilId"`
	Permissoes   []models.Permissao `json:"permissoes"`
	PermissaoIDs []int64            `json:"permissaoIds"`
}

type SyncPermissoesRequest struct {
	PermissaoIDs []int64 `json:"permissaoIds" validate:"dive,gt=0"`
}

func NewPermissionAdminService(api *apiclient.Client) *PermissionAdminService {
	return &PermissionAdminService{
		api: api,
		log: logrus.WithField("component", "permissao"),
	}
}

func (s *PermissionAdminService) Catalog(ctx context.Context, sess *SessionContext) ([]PermissionModule, error) {
	perms, err := s.api.ListPermissoes(ctx, sess.AccessToken())
	if err != nil {
		return nil, err
	}

	byModule := make(map[string][]models.Permissao)
	for _, p := range perms {
		p.Modulo = models.NewPermission(p.Modulo, p.Acao).Modulo
		byModule[p.Modulo] = append(byModule[p.Modulo], p)
	}

	modules := make([]PermissionModule, 0, len(byModule))
	for modulo, list := range byModule {
		modules = append(modules, PermissionModule{Modulo: modulo, Permissoes: list})
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].Modulo < modules[j].Modulo })
	return modules, nil
}

func (s *PermissionAdminService) ForPerfil(ctx context.Context, sess *SessionContext, perfilID int64) (*PerfilPermissoes, error) {
	perms, err := s.api.GetPerfilPermissoes(ctx, sess.AccessToken(), perfilID)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(perms))
	for _, p := range perms {
		ids = append(ids, p.IDPermissao)
	}
	return &PerfilPermissoes{PerfilID: perfilID, Permissoes: perms, PermissaoIDs: ids}, nil
}

// Sync replaces the permission set of a profile. Duplicate ids are sent once.
func (s *PermissionAdminService) Sync(ctx context.Context, sess *SessionContext, perfilID int64, req *SyncPermissoesRequest) (*PerfilPermissoes, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationFailure(err)
	}

	ids := make([]int64, 0, len(req.PermissaoIDs))
	seen := make(map[int64]bool, len(req.PermissaoIDs))
	for _, id := range req.PermissaoIDs {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	if err := s.api.SyncPerfilPermissoes(ctx, sess.AccessToken(), perfilID, ids); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"usuario_id":  sess.User().IDUsuario,
		"perfil_id":   perfilID,
		"permissions": len(ids),
	}).Info("Profile permissions synced")

	return s.ForPerfil(ctx, sess, perfilID)
}

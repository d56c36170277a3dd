// internal/services/authorization_service.go
package services

import (
	"strings"

	"github.com/averbacoes/backoffice/internal/models"
)

// PermissionEvaluator answers capability questions against the flat
// permission list of one session. A nil or empty evaluator denies
// everything.
type PermissionEvaluator struct {
	perms    []models.Permission
	byModule map[string][]string
}

func NewPermissionEvaluator(perms []models.Permission) *PermissionEvaluator {
	e := &PermissionEvaluator{byModule: make(map[string][]string)}
	seen := make(map[models.Permission]bool, len(perms))

	for _, p := range perms {
		p = models.NewPermission(p.Modulo, p.Acao)
		if p.Modulo == "" || p.Acao == "" || seen[p] {
			continue
		}
		seen[p] = true
		e.perms = append(e.perms, p)
		e.byModule[p.Modulo] = append(e.byModule[p.Modulo], p.Acao)
	}

	return e
}

func (e *PermissionEvaluator) HasPermission(modulo, acao string) bool {
	if e == nil {
		return false
	}

	modulo = strings.ToUpper(strings.TrimSpace(modulo))
	acao = strings.ToUpper(strings.TrimSpace(acao))
	for _, granted := range e.byModule[modulo] {
		if granted == acao {
			return true
		}
	}
	return false
}

// HasAnyPermission is false for an empty action list.
func (e *PermissionEvaluator) HasAnyPermission(modulo string, acoes []string) bool {
	for _, acao := range acoes {
		if e.HasPermission(modulo, acao) {
			return true
		}
	}
	return false
}

// HasAllPermissions is true for an empty action list.
func (e *PermissionEvaluator) HasAllPermissions(modulo string, acoes []string) bool {
	for _, acao := range acoes {
		if !e.HasPermission(modulo, acao) {
			return false
		}
	}
	return true
}

func (e *PermissionEvaluator) CanRead(modulo string) bool {
	return e.HasPermission(modulo, models.AcaoRead)
}

func (e *PermissionEvaluator) CanCreate(modulo string) bool {
	return e.HasPermission(modulo, models.AcaoCreate)
}

func (e *PermissionEvaluator) CanUpdate(modulo string) bool {
	return e.HasPermission(modulo, models.AcaoUpdate)
}

func (e *PermissionEvaluator) CanDelete(modulo string) bool {
	return e.HasPermission(modulo, models.AcaoDelete)
}

func (e *PermissionEvaluator) CanManage(modulo string) bool {
	return e.HasPermission(modulo, models.AcaoManage)
}

// GetModulePermissions returns the granted actions of one module.
func (e *PermissionEvaluator) GetModulePermissions(modulo string) []string {
	if e == nil {
		return []string{}
	}

	acoes := e.byModule[strings.ToUpper(strings.TrimSpace(modulo))]
	out := make([]string, len(acoes))
	copy(out, acoes)
	return out
}

func (e *PermissionEvaluator) All() []models.Permission {
	if e == nil {
		return []models.Permission{}
	}

	out := make([]models.Permission, len(e.perms))
	copy(out, e.perms)
	return out
}

// FlattenPermissions converts the nested profile representation returned
// at login into the flat list kept in the session. Entries may wrap a
// permission row, carry {modulo, acao} or group several actions under
// {modulo, acoes}.
func FlattenPermissions(u models.Usuario) []models.Permission {
	var entries []models.PerfilPermissao
	if u.Perfil != nil {
		entries = append(entries, u.Perfil.Permissoes...)
	}
	entries = append(entries, u.Permissoes...)

	out := []models.Permission{}
	seen := make(map[models.Permission]bool)
	add := func(modulo, acao string) {
		p := models.NewPermission(modulo, acao)
		if p.Modulo == "" || p.Acao == "" || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, p)
	}

	for _, entry := range entries {
		if entry.Permissao != nil {
			add(entry.Permissao.Modulo, entry.Permissao.Acao)
		}
		if entry.Acao != "" {
			add(entry.Modulo, entry.Acao)
		}
		for _, acao := range entry.Acoes {
			add(entry.Modulo, acao)
		}
	}

	return out
}

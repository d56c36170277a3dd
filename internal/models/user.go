// internal/models/user.go
package models

import "strings"

// Usuario is the user as returned by the login endpoint.
type Usuario struct {
	IDUsuario int64   `json:"idUsuario"`
	Nome      string  `json:"nome"`
	Email     string  `json:"email"`
	Ativo     *bool   `json:"ativo,omitempty"`
	Perfil    *Perfil `json:"perfil,omitempty"`

	// Some API versions attach permissions directly to the user.
	Permissoes []PerfilPermissao `json:"permissoes,omitempty"`
}

type Perfil struct {
	IDPerfil   int64             `json:"idPerfil"`
	Nome       string            `json:"nome"`
	Permissoes []PerfilPermissao `json:"permissoes,omitempty"`
}

// PerfilPermissao is one entry of the nested permission representation.
// It is either a join row wrapping a Permissao, a flat {modulo, acao}
// pair, or a grouped {modulo, acoes[]} entry.
type PerfilPermissao struct {
	Permissao *Permissao `json:"permissao,omitempty"`
	Modulo    string     `json:"modulo,omitempty"`
	Acao      string     `json:"acao,omitempty"`
	Acoes     []string   `json:"acoes,omitempty"`
}

// Permissao is a permission row as exposed by the administration endpoints.
type Permissao struct {
	IDPermissao int64  `json:"idPermissao"`
	Modulo      string `json:"modulo"`
	Acao        string `json:"acao"`
	Descricao   string `json:"descricao,omitempty"`
}

// Permission is the flat session-scoped tuple.
type Permission struct {
	Modulo string `json:"modulo"`
	Acao   string `json:"acao"`
}

func NewPermission(modulo, acao string) Permission {
	return Permission{
		Modulo: strings.ToUpper(strings.TrimSpace(modulo)),
		Acao:   strings.ToUpper(strings.TrimSpace(acao)),
	}
}

// Key is the "MODULO:ACAO" form used for persistence.
func (p Permission) Key() string {
	return p.Modulo + ":" + p.Acao
}

func ParsePermissionKey(key string) (Permission, bool) {
	modulo, acao, ok := strings.Cut(key, ":")
	if !ok || modulo == "" || acao == "" {
		return Permission{}, false
	}
	return NewPermission(modulo, acao), true
}

// Actions
const (
	AcaoRead   = "READ"
	AcaoCreate = "CREATE"
	AcaoUpdate = "UPDATE"
	AcaoDelete = "DELETE"
	AcaoManage = "MANAGE"
)

// Modules. Singular and plural spellings both appear in the API contract
// and are kept distinct until the server publishes an authoritative list.
const (
	ModuloDashboard      = "DASHBOARD"
	ModuloAverbacoes     = "AVERBACOES"
	ModuloClientes       = "CLIENTES"
	ModuloSeguradora     = "SEGURADORA"
	ModuloSeguradoras    = "SEGURADORAS"
	ModuloContainer      = "CONTAINER"
	ModuloContainers     = "CONTAINERS"
	ModuloContainerTipos = "CONTAINER_TIPOS"
	ModuloContainerTrips = "CONTAINER_TRIPS"
	ModuloParametros     = "PARAMETROS"
	ModuloUsuarios       = "USUARIOS"
	ModuloPermissoes     = "PERMISSOES"
)

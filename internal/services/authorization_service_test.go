// internal/services/authorization_service_test.go
package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averbacoes/backoffice/internal/models"
)

func TestPermissionEvaluatorIsCaseInsensitive(t *testing.T) {
	e := NewPermissionEvaluator([]models.Permission{{Modulo: "averbacoes", Acao: "read"}})

	assert.True(t, e.HasPermission("AVERBACOES", "READ"))
	assert.True(t, e.HasPermission("Averbacoes", "Read"))
	assert.True(t, e.CanRead(models.ModuloAverbacoes))
	assert.False(t, e.CanUpdate(models.ModuloAverbacoes))
	assert.False(t, e.CanRead(models.ModuloClientes))
}

func TestAnyAndAllOnEmptyActionList(t *testing.T) {
	e := NewPermissionEvaluator(allPermissions())

	assert.False(t, e.HasAnyPermission(models.ModuloAverbacoes, []string{}))
	assert.True(t, e.HasAllPermissions(models.ModuloAverbacoes, []string{}))
	assert.False(t, e.HasAnyPermission(models.ModuloAverbacoes, nil))
	assert.True(t, e.HasAllPermissions(models.ModuloAverbacoes, nil))

	assert.True(t, e.HasAnyPermission(models.ModuloAverbacoes, []string{"MANAGE", "read"}))
	assert.False(t, e.HasAllPermissions(models.ModuloAverbacoes, []string{"MANAGE", "READ"}))
	assert.True(t, e.HasAllPermissions(models.ModuloAverbacoes, []string{"CREATE", "READ"}))
}

func TestEmptyEvaluatorDeniesEverything(t *testing.T) {
	var nilEvaluator *PermissionEvaluator
	empty := NewPermissionEvaluator(nil)

	for _, e := range []*PermissionEvaluator{nilEvaluator, empty} {
		assert.False(t, e.HasPermission(models.ModuloAverbacoes, models.AcaoRead))
		assert.False(t, e.CanManage(models.ModuloPermissoes))
		assert.Empty(t, e.GetModulePermissions(models.ModuloAverbacoes))
		assert.Empty(t, e.All())
	}
}

func TestGetModulePermissionsReturnsCopy(t *testing.T) {
	e := NewPermissionEvaluator(allPermissions())

	acoes := e.GetModulePermissions("averbacoes")
	assert.Equal(t, []string{"READ", "CREATE", "UPDATE", "DELETE"}, acoes)

	acoes[0] = "MANAGE"
	assert.False(t, e.CanManage(models.ModuloAverbacoes))
}

func TestFlattenPermissionsAcceptsEveryNestedForm(t *testing.T) {
	payload := `{
		"idUsuario": 1,
		"nome": "Ana",
		"perfil": {
			"idPerfil": 2,
			"permissoes": [
				{"permissao": {"idPermissao": 10, "modulo": "AVERBACOES", "acao": "READ"}},
				{"modulo": "clientes", "acao": "read"},
				{"modulo": "AVERBACOES", "acoes": ["CREATE", "UPDATE", "READ"]},
				{"modulo": "", "acao": "READ"}
			]
		},
		"permissoes": [{"modulo": "DASHBOARD", "acao": "READ"}]
	}`

	var u models.Usuario
	require.NoError(t, json.Unmarshal([]byte(payload), &u))

	assert.Equal(t, []models.Permission{
		{Modulo: "AVERBACOES", Acao: "READ"},
		{Modulo: "CLIENTES", Acao: "READ"},
		{Modulo: "AVERBACOES", Acao: "CREATE"},
		{Modulo: "AVERBACOES", Acao: "UPDATE"},
		{Modulo: "DASHBOARD", Acao: "READ"},
	}, FlattenPermissions(u))
}

func TestFlattenPermissionsWithoutProfile(t *testing.T) {
	perms := FlattenPermissions(models.Usuario{IDUsuario: 1})
	assert.NotNil(t, perms)
	assert.Empty(t, perms)
}

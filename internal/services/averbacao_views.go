// internal/services/averbacao_views.go
package services

import (
	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/models"
)

// DocumentGate is what a surface may offer for the documents of one
// averbação. Every surface builds it through NewDocumentGate so they
// cannot disagree.
type DocumentGate struct {
	Bloqueado   bool `json:"bloqueado"`
	PodeEnviar  bool `json:"podeEnviar"`
	PodeExcluir bool `json:"podeExcluir"`
	PodeBaixar  bool `json:"podeBaixar"`
}

func NewDocumentGate(status models.AverbacaoStatus, perms *PermissionEvaluator) DocumentGate {
	mutable := models.DocumentsMutable(status)
	canUpdate := perms.CanUpdate(models.ModuloAverbacoes)

	return DocumentGate{
		Bloqueado:   !mutable,
		PodeEnviar:  mutable && canUpdate,
		PodeExcluir: mutable && canUpdate,
		PodeBaixar:  perms.CanRead(models.ModuloAverbacoes),
	}
}

// ListItem is one row of the averbações table, with its lock badge.
type ListItem struct {
	models.AverbacaoView
	Gate DocumentGate `json:"gate"`
}

type ListResult struct {
	Items      []ListItem           `json:"items"`
	Pagination apiclient.Pagination `json:"pagination"`
	Generation uint64               `json:"generation"`
	Stale      bool                 `json:"stale"`
}

// DetailDrawer is the side panel showing one averbação with its documents.
type DetailDrawer struct {
	Averbacao  models.AverbacaoView        `json:"averbacao"`
	Documentos []models.DocumentoAverbacao `json:"documentos"`
	Gate       DocumentGate                `json:"gate"`
}

// DocumentPanel is the standalone document manager of one averbação.
type DocumentPanel struct {
	IDAverbacao int64                       `json:"idAverbacao"`
	Status      models.AverbacaoStatus      `json:"status"`
	Documentos  []models.DocumentoAverbacao `json:"documentos"`
	Gate        DocumentGate                `json:"gate"`
}

func NewListItem(a models.Averbacao, perms *PermissionEvaluator) ListItem {
	view := models.NewAverbacaoView(a)
	return ListItem{
		AverbacaoView: view,
		Gate:          NewDocumentGate(view.Status, perms),
	}
}

func NewDetailDrawer(a models.Averbacao, docs []models.DocumentoAverbacao, perms *PermissionEvaluator) DetailDrawer {
	view := models.NewAverbacaoView(a)
	return DetailDrawer{
		Averbacao:  view,
		Documentos: nonNilDocs(docs),
		Gate:       NewDocumentGate(view.Status, perms),
	}
}

func NewDocumentPanel(a models.Averbacao, docs []models.DocumentoAverbacao, perms *PermissionEvaluator) DocumentPanel {
	status := models.ParseAverbacaoStatus(string(a.Status))
	return DocumentPanel{
		IDAverbacao: a.IDAverbacao,
		Status:      status,
		Documentos:  nonNilDocs(docs),
		Gate:        NewDocumentGate(status, perms),
	}
}

func nonNilDocs(docs []models.DocumentoAverbacao) []models.DocumentoAverbacao {
	if docs == nil {
		return []models.DocumentoAverbacao{}
	}
	return docs
}

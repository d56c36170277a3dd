// internal/models/averbacao.go
package models

import (
	"time"
)

// Averbacao is the wire shape returned by the API. Several generations of
// the API coexist, so container data may arrive as containers,
// containerTrips or the legacy single-container fields.
type Averbacao struct {
	IDAverbacao   int64           `json:"idAverbacao"`
	Numero        *string         `json:"numero,omitempty"`
	Status        AverbacaoStatus `json:"status"`
	ClienteID     int64           `json:"clienteId"`
	SeguradoraID  *int64          `json:"seguradoraId,omitempty"`
	PeriodoInicio string          `json:"periodoInicio"`
	PeriodoFim    string          `json:"periodoFim"`
	Observacoes   *string         `json:"observacoes,omitempty"`

	// Computed server-side, display only
	ValorMercadoriaTotal   *Amount `json:"valorMercadoriaTotal,omitempty"`
	ValorPremioTotal       *Amount `json:"valorPremioTotal,omitempty"`
	ImportanciaSegurada    *Amount `json:"importanciaSegurada,omitempty"`
	Premio                 *Amount `json:"premio,omitempty"`
	PremioLiquido          *Amount `json:"premioLiquido,omitempty"`
	IOF                    *Amount `json:"iof,omitempty"`
	Taxa                   *Amount `json:"taxa,omitempty"`
	AdicionalFracionamento *Amount `json:"adicionalFracionamento,omitempty"`
	CustoApolice           *Amount `json:"custoApolice,omitempty"`

	QuantidadeContainers *int                   `json:"quantidadeContainers,omitempty"`
	Containers           []ContainerSummary     `json:"containers,omitempty"`
	ContainerTrips       []ContainerTripSummary `json:"containerTrips,omitempty"`

	// Legacy single-container fields
	NumeroContainer *string `json:"numeroContainer,omitempty"`
	ValorMercadoria *Amount `json:"valorMercadoria,omitempty"`

	Documentos []DocumentoAverbacao `json:"documentos,omitempty"`
	Cliente    *ClienteResumo       `json:"cliente,omitempty"`
	Seguradora *SeguradoraResumo    `json:"seguradora,omitempty"`

	DataCriacao      *time.Time  `json:"dataCriacao,omitempty"`
	DataAtualizacao  *time.Time  `json:"dataAtualizacao,omitempty"`
	DataAprovacao    *time.Time  `json:"dataAprovacao,omitempty"`
	UsuarioAprovacao *FlexString `json:"usuarioAprovacao,omitempty"`
}

type ContainerSummary struct {
	IDContainer     int64   `json:"idContainer"`
	NumeroContainer string  `json:"numeroContainer,omitempty"`
	Tipo            string  `json:"tipo,omitempty"`
	ValorMercadoria *Amount `json:"valorMercadoria,omitempty"`
}

type ContainerTripSummary struct {
	IDContainerTrip int64   `json:"idContainerTrip"`
	IDContainer     int64   `json:"idContainer,omitempty"`
	NumeroContainer string  `json:"numeroContainer,omitempty"`
	DataInicio      string  `json:"dataInicio,omitempty"`
	DataFim         string  `json:"dataFim,omitempty"`
	ValorMercadoria *Amount `json:"valorMercadoria,omitempty"`
}

type ClienteResumo struct {
	IDCliente    int64  `json:"idCliente"`
	RazaoSocial  string `json:"razaoSocial,omitempty"`
	NomeFantasia string `json:"nomeFantasia,omitempty"`
	CNPJ         string `json:"cnpj,omitempty"`
}

type SeguradoraResumo struct {
	IDSeguradora int64  `json:"idSeguradora"`
	Nome         string `json:"nome,omitempty"`
	CNPJ         string `json:"cnpj,omitempty"`
}

type DocumentoAverbacao struct {
	IDDocumento    int64       `json:"idDocumento"`
	IDAverbacao    int64       `json:"idAverbacao"`
	NomeArquivo    string      `json:"nomeArquivo"`
	NomeOriginal   string      `json:"nomeOriginal"`
	TipoArquivo    string      `json:"tipoArquivo"`
	Tamanho        int64       `json:"tamanho"`
	CaminhoArquivo string      `json:"caminhoArquivo,omitempty"`
	UploadedBy     *FlexString `json:"uploadedBy,omitempty"`
	DataCriacao    *time.Time  `json:"dataCriacao,omitempty"`
}

// AverbacaoView is the normalized form built once at the API boundary.
// Views never re-derive these values from the raw fields.
type AverbacaoView struct {
	Averbacao
	TotalContainers      int     `json:"totalContainers"`
	ValorSegurado        float64 `json:"valorSegurado"`
	DocumentosBloqueados bool    `json:"documentosBloqueados"`
}

func NewAverbacaoView(a Averbacao) AverbacaoView {
	a.Status = ParseAverbacaoStatus(string(a.Status))
	return AverbacaoView{
		Averbacao:            a,
		TotalContainers:      ContainerCount(&a),
		ValorSegurado:        InsuredValue(&a),
		DocumentosBloqueados: !DocumentsMutable(a.Status),
	}
}

// ContainerCount resolves the number of containers, in order: the server
// count, containers, containerTrips, the legacy single container.
func ContainerCount(a *Averbacao) int {
	if a == nil {
		return 0
	}
	if a.QuantidadeContainers != nil && *a.QuantidadeContainers != 0 {
		return *a.QuantidadeContainers
	}
	if len(a.Containers) > 0 {
		return len(a.Containers)
	}
	if len(a.ContainerTrips) > 0 {
		return len(a.ContainerTrips)
	}
	if a.NumeroContainer != nil && *a.NumeroContainer != "" {
		return 1
	}
	return 0
}

// InsuredValue resolves the insured value, in order: importanciaSegurada,
// valorMercadoriaTotal, the sum over containers, the sum over
// containerTrips, the legacy valorMercadoria. Zero falls through.
func InsuredValue(a *Averbacao) float64 {
	if a == nil {
		return 0
	}
	if v := amountOf(a.ImportanciaSegurada); v != 0 {
		return v
	}
	if v := amountOf(a.ValorMercadoriaTotal); v != 0 {
		return v
	}

	var containers float64
	for _, c := range a.Containers {
		containers += amountOf(c.ValorMercadoria)
	}
	if containers != 0 {
		return containers
	}

	var trips float64
	for _, t := range a.ContainerTrips {
		trips += amountOf(t.ValorMercadoria)
	}
	if trips != 0 {
		return trips
	}

	return amountOf(a.ValorMercadoria)
}

func amountOf(a *Amount) float64 {
	if a == nil {
		return 0
	}
	return a.Float64()
}

// internal/models/cadastro.go
package models

// Reference data used to populate combos and filters.

type Cliente struct {
	IDCliente    int64  `json:"idCliente"`
	RazaoSocial  string `json:"razaoSocial"`
	NomeFantasia string `json:"nomeFantasia,omitempty"`
	CNPJ         string `json:"cnpj,omitempty"`
	Ativo        *bool  `json:"ativo,omitempty"`
}

type Seguradora struct {
	IDSeguradora int64  `json:"idSeguradora"`
	Nome         string `json:"nome"`
	CNPJ         string `json:"cnpj,omitempty"`
	Ativo        *bool  `json:"ativo,omitempty"`
}

type ContainerTipo struct {
	IDContainerTipo int64  `json:"idContainerTipo"`
	Codigo          string `json:"codigo,omitempty"`
	Descricao       string `json:"descricao"`
}

type Container struct {
	IDContainer     int64  `json:"idContainer"`
	NumeroContainer string `json:"numeroContainer"`
	IDContainerTipo *int64 `json:"idContainerTipo,omitempty"`
	ClienteID       *int64 `json:"clienteId,omitempty"`
}

type ContainerTrip struct {
	IDContainerTrip int64   `json:"idContainerTrip"`
	IDContainer     int64   `json:"idContainer"`
	ClienteID       int64   `json:"clienteId"`
	NumeroContainer string  `json:"numeroContainer,omitempty"`
	DataInicio      string  `json:"dataInicio,omitempty"`
	DataFim         string  `json:"dataFim,omitempty"`
	ValorMercadoria *Amount `json:"valorMercadoria,omitempty"`
	Status          string  `json:"status,omitempty"`
}

// internal/models/averbacao_test.go
package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amount(v float64) *Amount {
	a := Amount(v)
	return &a
}

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func TestInsuredValueFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		in   Averbacao
		want float64
	}{
		{
			name: "importancia segurada wins",
			in: Averbacao{
				ImportanciaSegurada:  amount(1000),
				ValorMercadoriaTotal: amount(900),
				Containers:           []ContainerSummary{{ValorMercadoria: amount(10)}},
				ValorMercadoria:      amount(5),
			},
			want: 1000,
		},
		{
			name: "valor mercadoria total",
			in: Averbacao{
				ValorMercadoriaTotal: amount(900),
				Containers:           []ContainerSummary{{ValorMercadoria: amount(10)}},
			},
			want: 900,
		},
		{
			name: "sum over containers",
			in: Averbacao{
				Containers: []ContainerSummary{
					{ValorMercadoria: amount(100.5)},
					{ValorMercadoria: amount(200)},
					{},
				},
				ContainerTrips: []ContainerTripSummary{{ValorMercadoria: amount(1)}},
			},
			want: 300.5,
		},
		{
			name: "sum over container trips",
			in: Averbacao{
				ContainerTrips: []ContainerTripSummary{
					{ValorMercadoria: amount(40)},
					{ValorMercadoria: amount(60)},
				},
				ValorMercadoria: amount(7),
			},
			want: 100,
		},
		{
			name: "legacy valor mercadoria",
			in:   Averbacao{ValorMercadoria: amount(77)},
			want: 77,
		},
		{
			name: "zero importancia falls through",
			in: Averbacao{
				ImportanciaSegurada: amount(0),
				ValorMercadoria:     amount(12),
			},
			want: 12,
		},
		{
			name: "nothing populated",
			in:   Averbacao{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, InsuredValue(&tt.in), 0.0001)
		})
	}
}

func TestContainerCountFallbackChain(t *testing.T) {
	tests := []struct {
		name string
		in   Averbacao
		want int
	}{
		{
			name: "server count",
			in: Averbacao{
				QuantidadeContainers: intPtr(9),
				Containers:           make([]ContainerSummary, 2),
			},
			want: 9,
		},
		{
			name: "containers length",
			in: Averbacao{
				Containers:     make([]ContainerSummary, 3),
				ContainerTrips: make([]ContainerTripSummary, 5),
			},
			want: 3,
		},
		{
			name: "container trips length",
			in:   Averbacao{ContainerTrips: make([]ContainerTripSummary, 5)},
			want: 5,
		},
		{
			name: "legacy single container",
			in:   Averbacao{NumeroContainer: strPtr("MSCU1234567")},
			want: 1,
		},
		{
			name: "empty legacy container",
			in:   Averbacao{NumeroContainer: strPtr("")},
			want: 0,
		},
		{
			name: "nothing",
			in:   Averbacao{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainerCount(&tt.in))
		})
	}
}

func TestDocumentsMutable(t *testing.T) {
	assert.True(t, DocumentsMutable(AverbacaoStatusPendente))
	assert.True(t, DocumentsMutable(""))
	assert.False(t, DocumentsMutable(AverbacaoStatusAprovada))
	assert.False(t, DocumentsMutable(AverbacaoStatusRejeitada))
	assert.False(t, DocumentsMutable(AverbacaoStatusCancelada))
	assert.False(t, DocumentsMutable("APROVADA"))
}

func TestNewAverbacaoViewFromLegacyPayload(t *testing.T) {
	payload := `{
		"idAverbacao": 42,
		"status": "APROVADA",
		"clienteId": 7,
		"periodoInicio": "2025-01-01",
		"periodoFim": "2025-01-31",
		"numeroContainer": "TGHU0000001",
		"valorMercadoria": "15000.50",
		"iof": 7.38,
		"usuarioAprovacao": 3
	}`

	var a Averbacao
	require.NoError(t, json.Unmarshal([]byte(payload), &a))

	view := NewAverbacaoView(a)
	assert.Equal(t, AverbacaoStatusAprovada, view.Status)
	assert.Equal(t, 1, view.TotalContainers)
	assert.InDelta(t, 15000.50, view.ValorSegurado, 0.0001)
	assert.True(t, view.DocumentosBloqueados)
	require.NotNil(t, view.UsuarioAprovacao)
	assert.Equal(t, "3", view.UsuarioAprovacao.String())
}

func TestAmountRejectsGarbage(t *testing.T) {
	var a Amount
	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &a))
	assert.NoError(t, json.Unmarshal([]byte(`null`), &a))
	assert.NoError(t, json.Unmarshal([]byte(`""`), &a))
	assert.Equal(t, Amount(0), a)
}

func TestPermissionKeyRoundTrip(t *testing.T) {
	p := NewPermission(" averbacoes ", "read")
	assert.Equal(t, "AVERBACOES:READ", p.Key())

	parsed, ok := ParsePermissionKey("averbacoes:read")
	require.True(t, ok)
	assert.Equal(t, p, parsed)

	_, ok = ParsePermissionKey("broken")
	assert.False(t, ok)
}

func TestFlexInt64AcceptsNumericStrings(t *testing.T) {
	var v struct {
		ID FlexInt64 `json:"clienteId"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"clienteId":"7"}`), &v))
	assert.Equal(t, FlexInt64(7), v.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"clienteId":8}`), &v))
	assert.Equal(t, FlexInt64(8), v.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"clienteId":"sete"}`), &v))
}

// internal/services/averbacao_service_test.go
package services

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/models"
)

func strPtr(s string) *string { return &s }

func int64Ptr(v int64) *int64 { return &v }

func TestCreateWithoutTripsDefaultsToPendente(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/averbacoes", counted(&calls, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		_, hasTrips := body["containerTripIds"]
		assert.False(t, hasTrips)
		assert.Equal(t, float64(7), body["clienteId"])

		writeData(w, http.StatusCreated, map[string]interface{}{
			"idAverbacao":   31,
			"status":        "pendente",
			"clienteId":     7,
			"periodoInicio": body["periodoInicio"],
			"periodoFim":    body["periodoFim"],
		})
	}))

	svc := NewAverbacaoService(newAPI(t, mux), NewListTracker())
	view, err := svc.Create(context.Background(), testSession(), &CreateAverbacaoRequest{
		ClienteID:     7,
		PeriodoInicio: "2025-01-01",
		PeriodoFim:    "2025-01-31",
	})
	require.NoError(t, err)

	assert.Equal(t, models.AverbacaoStatusPendente, view.Status)
	assert.False(t, view.DocumentosBloqueados)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestCreateRejectsInvertedPeriodWithoutCallingAPI(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", counted(&calls, func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusCreated, map[string]interface{}{"idAverbacao": 1})
	}))

	svc := NewAverbacaoService(newAPI(t, mux), NewListTracker())
	_, err := svc.Create(context.Background(), testSession(), &CreateAverbacaoRequest{
		ClienteID:     7,
		PeriodoInicio: "2025-02-01",
		PeriodoFim:    "2025-01-31",
	})

	vf, ok := IsValidationFailure(err)
	require.True(t, ok)
	require.Len(t, vf.Errors, 1)
	assert.Equal(t, "periodoFim", vf.Errors[0].Field)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestCreateRequiresPositiveCliente(t *testing.T) {
	svc := NewAverbacaoService(newAPI(t, http.NewServeMux()), NewListTracker())

	_, err := svc.Create(context.Background(), testSession(), &CreateAverbacaoRequest{
		PeriodoInicio: "2025-01-01",
		PeriodoFim:    "2025-01-31",
	})
	vf, ok := IsValidationFailure(err)
	require.True(t, ok)
	assert.Equal(t, "clienteId", vf.Errors[0].Field)
}

func TestUpdateRejectsClienteChange(t *testing.T) {
	var calls int32
	mux := http.NewServeMux()
	mux.HandleFunc("/", counted(&calls, func(w http.ResponseWriter, r *http.Request) {}))

	svc := NewAverbacaoService(newAPI(t, mux), NewListTracker())
	_, err := svc.Update(context.Background(), testSession(), 3, &UpdateAverbacaoRequest{ClienteID: int64Ptr(9)})

	vf, ok := IsValidationFailure(err)
	require.True(t, ok)
	assert.Equal(t, "clienteId", vf.Errors[0].Field)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestUpdateChecksMergedPeriod(t *testing.T) {
	var patches int32
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/averbacoes/3", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]interface{}{
			"idAverbacao": 3, "status": "pendente", "clienteId": 7,
			"periodoInicio": "2025-03-01T00:00:00.000Z", "periodoFim": "2025-03-31",
		})
	})
	mux.HandleFunc("PATCH /api/averbacoes/3", counted(&patches, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasCliente := body["clienteId"]
		assert.False(t, hasCliente)
		writeData(w, http.StatusOK, map[string]interface{}{
			"idAverbacao": 3, "status": "pendente", "clienteId": 7,
			"periodoInicio": "2025-03-01", "periodoFim": body["periodoFim"],
		})
	}))

	svc := NewAverbacaoService(newAPI(t, mux), NewListTracker())

	_, err := svc.Update(context.Background(), testSession(), 3, &UpdateAverbacaoRequest{PeriodoFim: strPtr("2025-02-28")})
	_, ok := IsValidationFailure(err)
	assert.True(t, ok)
	assert.Equal(t, int32(0), atomic.LoadInt32(&patches))

	view, err := svc.Update(context.Background(), testSession(), 3, &UpdateAverbacaoRequest{PeriodoFim: strPtr("2025-04-30")})
	require.NoError(t, err)
	assert.Equal(t, "2025-04-30", view.PeriodoFim)
	assert.Equal(t, int32(1), atomic.LoadInt32(&patches))
}

func TestListDiscardsSupersededResponse(t *testing.T) {
	firstArrived := make(chan struct{})
	releaseFirst := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/averbacoes", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("status") == "pendente" {
			close(firstArrived)
			<-releaseFirst
			writeData(w, http.StatusOK, map[string]interface{}{
				"items": []map[string]interface{}{{"idAverbacao": 1, "status": "pendente"}},
			})
			return
		}
		writeData(w, http.StatusOK, map[string]interface{}{
			"items": []map[string]interface{}{{"idAverbacao": 2, "status": "aprovada"}},
		})
	})

	svc := NewAverbacaoService(newAPI(t, mux), NewListTracker())
	sess := testSession()

	type outcome struct {
		res *ListResult
		err error
	}
	first := make(chan outcome, 1)
	go func() {
		res, err := svc.List(context.Background(), sess, apiclient.AverbacaoFilter{Status: models.AverbacaoStatusPendente})
		first <- outcome{res, err}
	}()
	<-firstArrived

	second, err := svc.List(context.Background(), sess, apiclient.AverbacaoFilter{Status: models.AverbacaoStatusAprovada})
	require.NoError(t, err)
	assert.False(t, second.Stale)
	require.Len(t, second.Items, 1)
	assert.Equal(t, int64(2), second.Items[0].IDAverbacao)

	close(releaseFirst)
	got := <-first
	require.NoError(t, got.err)
	assert.True(t, got.res.Stale)
	assert.Empty(t, got.res.Items)
	assert.Less(t, got.res.Generation, second.Generation)
}

func TestListTrackerIsPerSession(t *testing.T) {
	tracker := NewListTracker()
	a, b := testSession().ID(), testSession().ID()

	genA := tracker.Begin(a)
	tracker.Begin(b)
	assert.True(t, tracker.IsLatest(a, genA))

	tracker.Begin(a)
	assert.False(t, tracker.IsLatest(a, genA))

	tracker.Forget(a)
	assert.Equal(t, uint64(1), tracker.Begin(a))
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc := NewAverbacaoService(newAPI(t, http.NewServeMux()), NewListTracker())
	_, err := svc.List(context.Background(), testSession(), apiclient.AverbacaoFilter{Status: "arquivada"})
	_, ok := IsValidationFailure(err)
	assert.True(t, ok)
}

func TestSurfacesAgreeOnDocumentGate(t *testing.T) {
	statuses := []models.AverbacaoStatus{"pendente", "APROVADA", "rejeitada", "cancelada", "", "em_analise"}
	perms := NewPermissionEvaluator(allPermissions())

	for _, status := range statuses {
		a := models.Averbacao{IDAverbacao: 1, Status: status}
		item := NewListItem(a, perms)
		drawer := NewDetailDrawer(a, nil, perms)
		panel := NewDocumentPanel(a, nil, perms)

		assert.Equal(t, item.Gate, drawer.Gate, "status %q", status)
		assert.Equal(t, item.Gate, panel.Gate, "status %q", status)
		assert.Equal(t, !models.DocumentsMutable(status), item.Gate.Bloqueado, "status %q", status)
		assert.Equal(t, item.DocumentosBloqueados, item.Gate.Bloqueado, "status %q", status)

		if item.Gate.Bloqueado {
			assert.False(t, item.Gate.PodeEnviar)
			assert.False(t, item.Gate.PodeExcluir)
		}
		assert.True(t, item.Gate.PodeBaixar)
	}
}

func TestGateHonoursPermissions(t *testing.T) {
	readOnly := NewPermissionEvaluator([]models.Permission{models.NewPermission(models.ModuloAverbacoes, models.AcaoRead)})
	gate := NewDocumentGate(models.AverbacaoStatusPendente, readOnly)

	assert.False(t, gate.Bloqueado)
	assert.False(t, gate.PodeEnviar)
	assert.True(t, gate.PodeBaixar)
}

func TestDrawerLoadsDocuments(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/averbacoes/4", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, map[string]interface{}{
			"idAverbacao": 4, "status": "aprovada", "clienteId": 7, "importanciaSegurada": "1500.50",
		})
	})
	mux.HandleFunc("GET /api/averbacoes/4/documentos", func(w http.ResponseWriter, r *http.Request) {
		writeData(w, http.StatusOK, []map[string]interface{}{{"idDocumento": 9, "nomeOriginal": "apolice.pdf"}})
	})

	svc := NewAverbacaoService(newAPI(t, mux), NewListTracker())
	drawer, err := svc.Drawer(context.Background(), testSession(), 4)
	require.NoError(t, err)

	assert.Equal(t, 1500.50, drawer.Averbacao.ValorSegurado)
	assert.True(t, drawer.Gate.Bloqueado)
	require.Len(t, drawer.Documentos, 1)
	assert.Equal(t, "apolice.pdf", drawer.Documentos[0].NomeOriginal)
}

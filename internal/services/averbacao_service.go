// internal/services/averbacao_service.go
package services

import (
	"context"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/models"
	"github.com/averbacoes/backoffice/internal/utils"
)

// ValidationFailure carries field errors found before any upstream call.
type ValidationFailure struct {
	Errors []utils.ValidationError
}

func (e *ValidationFailure) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func newValidationFailure(err error) error {
	if errs := utils.GetValidationErrors(err); len(errs) > 0 {
		return &ValidationFailure{Errors: errs}
	}
	return err
}

func periodFailure() error {
	return &ValidationFailure{Errors: []utils.ValidationError{{
		Field:   "periodoFim",
		Tag:     "date_gte",
		Message: "periodoFim deve ser igual ou posterior a periodoInicio",
	}}}
}

type CreateAverbacaoRequest struct {
	ClienteID        models.FlexInt64 `json:"clienteId" validate:"required,gt=0"`
	PeriodoInicio    string           `json:"periodoInicio" validate:"required,datetime=2006-01-02"`
	PeriodoFim       string           `json:"periodoFim" validate:"required,datetime=2006-01-02,date_gte=PeriodoInicio"`
	SeguradoraID     *int64           `json:"seguradoraId" validate:"omitempty,gt=0"`
	Numero           *string          `json:"numero" validate:"omitempty,max=50"`
	Observacoes      *string          `json:"observacoes" validate:"omitempty,max=2000"`
	ContainerTripIDs *[]int64         `json:"containerTripIds" validate:"omitempty,dive,gt=0"`
}

// UpdateAverbacaoRequest is partial. The client of an averbação cannot change.
type UpdateAverbacaoRequest struct {
	ClienteID        *int64   `json:"clienteId" validate:"isdefault"`
	PeriodoInicio    *string  `json:"periodoInicio" validate:"omitempty,datetime=2006-01-02"`
	PeriodoFim       *string  `json:"periodoFim" validate:"omitempty,datetime=2006-01-02"`
	SeguradoraID     *int64   `json:"seguradoraId" validate:"omitempty,gt=0"`
	Numero           *string  `json:"numero" validate:"omitempty,max=50"`
	Observacoes      *string  `json:"observacoes" validate:"omitempty,max=2000"`
	ContainerTripIDs *[]int64 `json:"containerTripIds" validate:"omitempty,dive,gt=0"`
}

type AverbacaoService struct {
	api     *apiclient.Client
	tracker *ListTracker
	log     *logrus.Entry
}

func NewAverbacaoService(api *apiclient.Client, tracker *ListTracker) *AverbacaoService {
	return &AverbacaoService{
		api:     api,
		tracker: tracker,
		log:     logrus.WithField("component", "averbacao"),
	}
}

// List fetches one page. A response that was overtaken by a newer list
// request of the same session comes back flagged Stale and without items,
// including when it failed.
func (s *AverbacaoService) List(ctx context.Context, sess *SessionContext, filter apiclient.AverbacaoFilter) (*ListResult, error) {
	if filter.Status != "" {
		filter.Status = models.ParseAverbacaoStatus(string(filter.Status))
		if !filter.Status.Valid() {
			return nil, &ValidationFailure{Errors: []utils.ValidationError{{
				Field: "status", Tag: "oneof", Message: "status deve ser um de: pendente aprovada rejeitada cancelada",
			}}}
		}
	}

	gen := s.tracker.Begin(sess.ID())
	page, err := s.api.ListAverbacoes(ctx, sess.AccessToken(), filter)

	if !s.tracker.IsLatest(sess.ID(), gen) {
		s.log.WithFields(logrus.Fields{"session_id": sess.ID(), "generation": gen}).Debug("Discarding superseded list response")
		return &ListResult{Items: []ListItem{}, Generation: gen, Stale: true}, nil
	}
	if err != nil {
		return nil, err
	}

	items := make([]ListItem, 0, len(page.Items))
	for _, a := range page.Items {
		items = append(items, NewListItem(a, sess.Permissions()))
	}

	return &ListResult{
		Items:      items,
		Pagination: page.Pagination,
		Generation: gen,
	}, nil
}

func (s *AverbacaoService) Get(ctx context.Context, sess *SessionContext, id int64) (*models.AverbacaoView, error) {
	a, err := s.api.GetAverbacao(ctx, sess.AccessToken(), id)
	if err != nil {
		return nil, err
	}
	view := models.NewAverbacaoView(*a)
	return &view, nil
}

// Drawer loads an averbação with its documents for the detail panel.
func (s *AverbacaoService) Drawer(ctx context.Context, sess *SessionContext, id int64) (*DetailDrawer, error) {
	a, err := s.api.GetAverbacao(ctx, sess.AccessToken(), id)
	if err != nil {
		return nil, err
	}

	docs, err := s.api.ListDocumentos(ctx, sess.AccessToken(), id)
	if err != nil {
		if !apiclient.IsKind(err, apiclient.KindNotFound) {
			return nil, err
		}
		docs = a.Documentos
	}

	drawer := NewDetailDrawer(*a, docs, sess.Permissions())
	return &drawer, nil
}

// Create validates locally and never calls the API with an invalid
// period. Status is assigned by the API.
func (s *AverbacaoService) Create(ctx context.Context, sess *SessionContext, req *CreateAverbacaoRequest) (*models.AverbacaoView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationFailure(err)
	}

	payload := apiclient.CreateAverbacaoPayload{
		ClienteID:        int64(req.ClienteID),
		PeriodoInicio:    req.PeriodoInicio,
		PeriodoFim:       req.PeriodoFim,
		SeguradoraID:     req.SeguradoraID,
		Numero:           trimmed(req.Numero),
		Observacoes:      trimmed(req.Observacoes),
		ContainerTripIDs: req.ContainerTripIDs,
	}

	a, err := s.api.CreateAverbacao(ctx, sess.AccessToken(), payload)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"usuario_id":   sess.User().IDUsuario,
		"averbacao_id": a.IDAverbacao,
		"cliente_id":   payload.ClienteID,
	}).Info("Averbação created")

	view := models.NewAverbacaoView(*a)
	return &view, nil
}

// Update applies a partial change. When only one end of the period is
// supplied the other is taken from the current record before checking.
func (s *AverbacaoService) Update(ctx context.Context, sess *SessionContext, id int64, req *UpdateAverbacaoRequest) (*models.AverbacaoView, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, newValidationFailure(err)
	}

	if req.PeriodoInicio != nil || req.PeriodoFim != nil {
		inicio, fim := req.PeriodoInicio, req.PeriodoFim
		if inicio == nil || fim == nil {
			current, err := s.api.GetAverbacao(ctx, sess.AccessToken(), id)
			if err != nil {
				return nil, err
			}
			if inicio == nil {
				inicio = &current.PeriodoInicio
			}
			if fim == nil {
				fim = &current.PeriodoFim
			}
		}
		if !periodOrdered(*inicio, *fim) {
			return nil, periodFailure()
		}
	}

	payload := apiclient.UpdateAverbacaoPayload{
		PeriodoInicio:    req.PeriodoInicio,
		PeriodoFim:       req.PeriodoFim,
		SeguradoraID:     req.SeguradoraID,
		Numero:           req.Numero,
		Observacoes:      req.Observacoes,
		ContainerTripIDs: req.ContainerTripIDs,
	}

	a, err := s.api.UpdateAverbacao(ctx, sess.AccessToken(), id, payload)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"usuario_id":   sess.User().IDUsuario,
		"averbacao_id": id,
	}).Info("Averbação updated")

	view := models.NewAverbacaoView(*a)
	return &view, nil
}

func (s *AverbacaoService) Delete(ctx context.Context, sess *SessionContext, id int64) error {
	if err := s.api.DeleteAverbacao(ctx, sess.AccessToken(), id); err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"usuario_id":   sess.User().IDUsuario,
		"averbacao_id": id,
	}).Info("Averbação deleted")
	return nil
}

// ForgetSession drops list bookkeeping of a closed session.
func (s *AverbacaoService) ForgetSession(sess *SessionContext) {
	s.tracker.Forget(sess.ID())
}

// periodOrdered is false only when both dates parse and end precedes start.
func periodOrdered(inicio, fim string) bool {
	start, err := utils.ParseDate(inicio)
	if err != nil {
		return true
	}
	end, err := utils.ParseDate(fim)
	if err != nil {
		return true
	}
	return !end.Before(start)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

// IsValidationFailure unwraps a local validation error.
func IsValidationFailure(err error) (*ValidationFailure, bool) {
	var vf *ValidationFailure
	if errors.As(err, &vf) {
		return vf, true
	}
	return nil, false
}

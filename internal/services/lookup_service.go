// internal/services/lookup_service.go
package services

import (
	"context"

	"github.com/averbacoes/backoffice/internal/apiclient"
	"github.com/averbacoes/backoffice/internal/models"
)

// LookupService serves the reference data used by forms and filters.
type LookupService struct {
	api *apiclient.Client
}

func NewLookupService(api *apiclient.Client) *LookupService {
	return &LookupService{api: api}
}

func (s *LookupService) Clientes(ctx context.Context, sess *SessionContext, filter apiclient.LookupFilter) (apiclient.Page[models.Cliente], error) {
	return s.api.ListClientes(ctx, sess.AccessToken(), filter)
}

func (s *LookupService) Seguradoras(ctx context.Context, sess *SessionContext, filter apiclient.LookupFilter) (apiclient.Page[models.Seguradora], error) {
	return s.api.ListSeguradoras(ctx, sess.AccessToken(), filter)
}

func (s *LookupService) ContainerTipos(ctx context.Context, sess *SessionContext, filter apiclient.LookupFilter) (apiclient.Page[models.ContainerTipo], error) {
	return s.api.ListContainerTipos(ctx, sess.AccessToken(), filter)
}

func (s *LookupService) Containers(ctx context.Context, sess *SessionContext, filter apiclient.LookupFilter) (apiclient.Page[models.Container], error) {
	return s.api.ListContainers(ctx, sess.AccessToken(), filter)
}

// ContainerTrips lists the trips a new averbação may reference. The client
// filter narrows the list to one client's trips.
func (s *LookupService) ContainerTrips(ctx context.Context, sess *SessionContext, filter apiclient.LookupFilter) (apiclient.Page[models.ContainerTrip], error) {
	return s.api.ListContainerTrips(ctx, sess.AccessToken(), filter)
}

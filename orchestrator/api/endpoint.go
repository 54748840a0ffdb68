package api

import (
	"context"
	"errors"

	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-kit/kit/endpoint"

	"github.com/privlens/privlens/catalog"
	"github.com/privlens/privlens/orchestrator"
	pkgerrors "github.com/privlens/privlens/pkg/errors"
)

func createSessionEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(createSessionReq)
		if !ok {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		sess, err := svc.CreateSession(ctx, req.Name)
		if err != nil {
			return sessionResponse{}, err
		}

		resp := newSessionResponse(sess)
		resp.created = true

		return resp, nil
	}
}

func getSessionEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		sess, err := svc.GetSession(ctx, req.id)
		if err != nil {
			return sessionResponse{}, err
		}

		return newSessionResponse(sess), nil
	}
}

func listSessionsEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(listEntityReq)
		if !ok {
			return listSessionResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return listSessionResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		page, err := svc.ListSessions(ctx, req.offset, req.limit)
		if err != nil {
			return listSessionResponse{}, err
		}

		return listSessionResponse{
			SessionPage: page,
		}, nil
	}
}

func deleteSessionEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		if err := svc.DeleteSession(ctx, req.id); err != nil {
			return sessionResponse{}, err
		}

		return sessionResponse{deleted: true}, nil
	}
}

func submitExperimentEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(submitReq)
		if !ok {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		sess, err := svc.Submit(ctx, req.id, req.Config)
		if err != nil {
			return sessionResponse{}, err
		}

		resp := newSessionResponse(sess)
		resp.accepted = true

		return resp, nil
	}
}

func acknowledgeReflectionEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		sess, err := svc.AcknowledgeReflection(ctx, req.id)
		if err != nil {
			return sessionResponse{}, err
		}

		return newSessionResponse(sess), nil
	}
}

func deferReflectionEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, request any) (any, error) {
		req, ok := request.(entityReq)
		if !ok {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, pkgerrors.ErrInvalidData)
		}
		if err := req.validate(); err != nil {
			return sessionResponse{}, errors.Join(apiutil.ErrValidation, err)
		}

		sess, err := svc.DeferReflection(ctx, req.id)
		if err != nil {
			return sessionResponse{}, err
		}

		return newSessionResponse(sess), nil
	}
}

func listDatasetsEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		datasets, err := svc.ListDatasets(ctx)
		if err != nil {
			return datasetsResponse{}, err
		}

		return datasetsResponse{
			Datasets: datasets,
			Budgets:  catalog.Budgets(),
		}, nil
	}
}

func listModelsEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		models, err := svc.ListModels(ctx)
		if err != nil {
			return modelsResponse{}, err
		}

		return modelsResponse{
			Models: models,
		}, nil
	}
}

func listAggregationsEndpoint(svc orchestrator.Service) endpoint.Endpoint {
	return func(ctx context.Context, _ any) (any, error) {
		methods, err := svc.ListAggregationMethods(ctx)
		if err != nil {
			return aggregationsResponse{}, err
		}

		return aggregationsResponse{
			Methods: methods,
		}, nil
	}
}

package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/absmach/supermq"
	apiutil "github.com/absmach/supermq/api/http/util"
	"github.com/go-chi/chi/v5"
	kithttp "github.com/go-kit/kit/transport/http"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/privlens/privlens/orchestrator"
	"github.com/privlens/privlens/pkg/api"
)

func MakeHandler(svc orchestrator.Service, logger *slog.Logger, instanceID string) http.Handler {
	mux := chi.NewRouter()

	opts := []kithttp.ServerOption{
		kithttp.ServerErrorEncoder(apiutil.LoggingErrorEncoder(logger, api.EncodeError)),
	}

	mux.Route("/sessions", func(r chi.Router) {
		r.Post("/", otelhttp.NewHandler(kithttp.NewServer(
			createSessionEndpoint(svc),
			decodeCreateSessionReq,
			api.EncodeResponse,
			opts...,
		), "create-session").ServeHTTP)
		r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
			listSessionsEndpoint(svc),
			decodeListEntityReq,
			api.EncodeResponse,
			opts...,
		), "list-sessions").ServeHTTP)
		r.Route("/{sessionID}", func(r chi.Router) {
			r.Get("/", otelhttp.NewHandler(kithttp.NewServer(
				getSessionEndpoint(svc),
				decodeEntityReq("sessionID"),
				api.EncodeResponse,
				opts...,
			), "get-session").ServeHTTP)
			r.Delete("/", otelhttp.NewHandler(kithttp.NewServer(
				deleteSessionEndpoint(svc),
				decodeEntityReq("sessionID"),
				api.EncodeResponse,
				opts...,
			), "delete-session").ServeHTTP)
			r.Post("/experiments", otelhttp.NewHandler(kithttp.NewServer(
				submitExperimentEndpoint(svc),
				decodeSubmitReq,
				api.EncodeResponse,
				opts...,
			), "submit-experiment").ServeHTTP)
			r.Post("/reflection/ack", otelhttp.NewHandler(kithttp.NewServer(
				acknowledgeReflectionEndpoint(svc),
				decodeEntityReq("sessionID"),
				api.EncodeResponse,
				opts...,
			), "acknowledge-reflection").ServeHTTP)
			r.Post("/reflection/defer", otelhttp.NewHandler(kithttp.NewServer(
				deferReflectionEndpoint(svc),
				decodeEntityReq("sessionID"),
				api.EncodeResponse,
				opts...,
			), "defer-reflection").ServeHTTP)
		})
	})

	mux.Route("/catalog", func(r chi.Router) {
		r.Get("/datasets", otelhttp.NewHandler(kithttp.NewServer(
			listDatasetsEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "list-datasets").ServeHTTP)
		r.Get("/models", otelhttp.NewHandler(kithttp.NewServer(
			listModelsEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "list-models").ServeHTTP)
		r.Get("/aggregations", otelhttp.NewHandler(kithttp.NewServer(
			listAggregationsEndpoint(svc),
			decodeEmptyReq,
			api.EncodeResponse,
			opts...,
		), "list-aggregations").ServeHTTP)
	})

	mux.Get("/health", supermq.Health("orchestrator", instanceID))
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

func decodeEmptyReq(_ context.Context, _ *http.Request) (any, error) {
	return nil, nil
}

func decodeEntityReq(key string) kithttp.DecodeRequestFunc {
	return func(_ context.Context, r *http.Request) (any, error) {
		return entityReq{
			id: chi.URLParam(r, key),
		}, nil
	}
}

func decodeCreateSessionReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	// An empty body creates a session with a generated name.
	var req createSessionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}

	return req, nil
}

func decodeSubmitReq(_ context.Context, r *http.Request) (any, error) {
	if !strings.Contains(r.Header.Get("Content-Type"), api.ContentType) {
		return nil, errors.Join(apiutil.ErrValidation, apiutil.ErrUnsupportedContentType)
	}

	var req submitReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.Join(err, apiutil.ErrValidation)
	}
	req.id = chi.URLParam(r, "sessionID")

	return req, nil
}

func decodeListEntityReq(_ context.Context, r *http.Request) (any, error) {
	o, err := apiutil.ReadNumQuery[uint64](r, api.OffsetKey, api.DefOffset)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	l, err := apiutil.ReadNumQuery[uint64](r, api.LimitKey, api.DefLimit)
	if err != nil {
		return nil, errors.Join(apiutil.ErrValidation, err)
	}

	return listEntityReq{
		offset: o,
		limit:  l,
	}, nil
}

// Package evaluator is the gateway to the external evaluation service. It
// turns a strategy configuration plus a run kind into one outbound HTTP call
// and normalizes the service's loosely shaped response into a Result.
package evaluator

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/privlens/privlens/experiment"
	pkgerrors "github.com/privlens/privlens/pkg/errors"
)

const (
	contentType        = "application/json"
	experimentEndpoint = "/api/experiment"
	healthEndpoint     = "/api/health"

	defTimeout = 120 * time.Second
)

type Service interface {
	// Evaluate runs one evaluation call. For RunBaseline the privacy
	// strategy in cfg is suppressed; the same configuration serves both
	// calls of a comparison cycle.
	Evaluate(ctx context.Context, cfg experiment.Config, kind experiment.RunKind) (experiment.Result, error)

	// Health probes the evaluation service.
	Health(ctx context.Context) error
}

type Config struct {
	URL             string
	Timeout         time.Duration
	TLSVerification bool
}

type evaluator struct {
	url    string
	client *http.Client
}

func New(cfg Config) Service {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = defTimeout
	}

	return &evaluator{
		url: cfg.URL,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (e *evaluator) Evaluate(ctx context.Context, cfg experiment.Config, kind experiment.RunKind) (experiment.Result, error) {
	req, err := newExperimentRequest(cfg, kind)
	if err != nil {
		return experiment.Result{}, err
	}

	data, err := json.Marshal(req)
	if err != nil {
		return experiment.Result{}, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url+experimentEndpoint, bytes.NewReader(data))
	if err != nil {
		return experiment.Result{}, err
	}
	httpReq.Header.Set("Content-Type", contentType)

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return experiment.Result{}, errors.Join(pkgerrors.ErrEvaluation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return experiment.Result{}, errors.Join(pkgerrors.ErrEvaluation, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return experiment.Result{}, errors.Join(pkgerrors.ErrEvaluation, errors.New(errorDetail(body, resp.StatusCode)))
	}

	var raw experimentResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return experiment.Result{}, errors.Join(pkgerrors.ErrEvaluation, fmt.Errorf("malformed response payload: %w", err))
	}

	switch kind {
	case experiment.RunBaseline:
		return raw.baselineResult(), nil
	case experiment.RunProtected:
		return raw.protectedResult(cfg)
	default:
		return experiment.Result{}, pkgerrors.ErrInvalidData
	}
}

func (e *evaluator) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.url+healthEndpoint, nil)
	if err != nil {
		return err
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return errors.Join(pkgerrors.ErrEvaluation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Join(pkgerrors.ErrEvaluation, fmt.Errorf("health returned status %d", resp.StatusCode))
	}

	return nil
}

// errorDetail extracts the service's error message. The service reports
// failures as {"detail": "..."}; anything else gets a generic message.
func errorDetail(body []byte, status int) string {
	var e struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return e.Detail
	}

	return fmt.Sprintf("evaluation service returned status %d", status)
}

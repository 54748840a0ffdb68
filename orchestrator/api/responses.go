package api

import (
	"net/http"

	"github.com/absmach/supermq"

	"github.com/privlens/privlens/catalog"
	"github.com/privlens/privlens/orchestrator"
	"github.com/privlens/privlens/pkg/aggregation"
)

var (
	_ supermq.Response = (*sessionResponse)(nil)
	_ supermq.Response = (*listSessionResponse)(nil)
	_ supermq.Response = (*datasetsResponse)(nil)
	_ supermq.Response = (*modelsResponse)(nil)
	_ supermq.Response = (*aggregationsResponse)(nil)
)

type sessionResponse struct {
	orchestrator.Session
	AccuracyLoss *float64 `json:"accuracy_loss,omitempty"`
	created      bool
	deleted      bool
	accepted     bool
}

func newSessionResponse(sess orchestrator.Session) sessionResponse {
	resp := sessionResponse{Session: sess}
	if loss, ok := sess.Comparison.AccuracyLoss(); ok {
		resp.AccuracyLoss = &loss
	}

	return resp
}

func (r sessionResponse) Code() int {
	switch {
	case r.created:
		return http.StatusCreated
	case r.deleted:
		return http.StatusNoContent
	case r.accepted:
		return http.StatusAccepted
	default:
		return http.StatusOK
	}
}

func (r sessionResponse) Headers() map[string]string {
	if r.created {
		return map[string]string{
			"Location": "/sessions/" + r.ID,
		}
	}

	return map[string]string{}
}

func (r sessionResponse) Empty() bool {
	return r.deleted
}

type listSessionResponse struct {
	orchestrator.SessionPage
}

func (r listSessionResponse) Code() int {
	return http.StatusOK
}

func (r listSessionResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r listSessionResponse) Empty() bool {
	return false
}

type datasetsResponse struct {
	Datasets []catalog.Dataset `json:"datasets"`
	Budgets  []float64         `json:"budgets"`
}

func (r datasetsResponse) Code() int {
	return http.StatusOK
}

func (r datasetsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r datasetsResponse) Empty() bool {
	return false
}

type modelsResponse struct {
	Models []catalog.Model `json:"models"`
}

func (r modelsResponse) Code() int {
	return http.StatusOK
}

func (r modelsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r modelsResponse) Empty() bool {
	return false
}

type aggregationsResponse struct {
	Methods []aggregation.Method `json:"methods"`
}

func (r aggregationsResponse) Code() int {
	return http.StatusOK
}

func (r aggregationsResponse) Headers() map[string]string {
	return map[string]string{}
}

func (r aggregationsResponse) Empty() bool {
	return false
}

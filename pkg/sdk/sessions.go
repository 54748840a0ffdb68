package sdk

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	sessionsEndpoint = "/sessions"
	catalogEndpoint  = "/catalog"
)

type Strategy struct {
	Kind              string  `json:"kind"`
	Budget            float64 `json:"budget,omitempty"`
	AggregationMethod string  `json:"aggregation_method,omitempty"`
}

type ExperimentConfig struct {
	Dataset  string   `json:"dataset"`
	Model    string   `json:"model"`
	Strategy Strategy `json:"strategy"`
}

type Result struct {
	Accuracy          float64  `json:"accuracy"`
	F1                *float64 `json:"f1,omitempty"`
	Precision         *float64 `json:"precision,omitempty"`
	Recall            *float64 `json:"recall,omitempty"`
	SampleCount       int      `json:"sample_count"`
	ModelLabel        string   `json:"model_label"`
	PrivacyBudget     *float64 `json:"privacy_budget,omitempty"`
	AggregationMethod string   `json:"aggregation_method,omitempty"`
}

type Comparison struct {
	Baseline  *Result `json:"baseline,omitempty"`
	Protected *Result `json:"protected,omitempty"`
}

type Reflection struct {
	AccuracyLoss  float64 `json:"accuracy_loss"`
	PrivacyBudget float64 `json:"privacy_budget"`
}

type Session struct {
	ID           string            `json:"id,omitempty"`
	Name         string            `json:"name"`
	Phase        string            `json:"phase,omitempty"`
	Epoch        uint64            `json:"epoch,omitempty"`
	Config       *ExperimentConfig `json:"config,omitempty"`
	Comparison   Comparison        `json:"comparison"`
	AccuracyLoss *float64          `json:"accuracy_loss,omitempty"`
	Failure      string            `json:"failure,omitempty"`
	Reflection   *Reflection       `json:"reflection,omitempty"`
	LastPromptAt time.Time         `json:"last_prompt_at,omitzero"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

type SessionPage struct {
	Offset   uint64    `json:"offset"`
	Limit    uint64    `json:"limit"`
	Total    uint64    `json:"total"`
	Sessions []Session `json:"sessions"`
}

type Dataset struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	InputSize   int    `json:"input_size"`
	Description string `json:"description"`
}

type DatasetCatalog struct {
	Datasets []Dataset `json:"datasets"`
	Budgets  []float64 `json:"budgets"`
}

type Model struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type AggregationMethod struct {
	ID        string `json:"id"`
	ServiceID string `json:"service_id"`
	Mechanism string `json:"mechanism"`
	BestFor   string `json:"best_for"`
}

func (sdk *privlensSDK) CreateSession(name string) (Session, error) {
	data, err := json.Marshal(Session{Name: name})
	if err != nil {
		return Session{}, err
	}

	url := sdk.orchestratorURL + sessionsEndpoint

	body, err := sdk.processRequest(http.MethodPost, url, data, http.StatusCreated)
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}

	return s, nil
}

func (sdk *privlensSDK) GetSession(id string) (Session, error) {
	url := sdk.orchestratorURL + sessionsEndpoint + "/" + id

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}

	return s, nil
}

func (sdk *privlensSDK) ListSessions(offset, limit uint64) (SessionPage, error) {
	queries := make([]string, 0)
	if offset > 0 {
		queries = append(queries, fmt.Sprintf("offset=%d", offset))
	}
	if limit > 0 {
		queries = append(queries, fmt.Sprintf("limit=%d", limit))
	}
	url := sdk.orchestratorURL + sessionsEndpoint
	if len(queries) > 0 {
		url += "?" + strings.Join(queries, "&")
	}

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return SessionPage{}, err
	}

	var page SessionPage
	if err := json.Unmarshal(body, &page); err != nil {
		return SessionPage{}, err
	}

	return page, nil
}

func (sdk *privlensSDK) DeleteSession(id string) error {
	url := sdk.orchestratorURL + sessionsEndpoint + "/" + id

	_, err := sdk.processRequest(http.MethodDelete, url, nil, http.StatusNoContent)

	return err
}

func (sdk *privlensSDK) SubmitExperiment(id string, cfg ExperimentConfig) (Session, error) {
	data, err := json.Marshal(cfg)
	if err != nil {
		return Session{}, err
	}

	url := sdk.orchestratorURL + sessionsEndpoint + "/" + id + "/experiments"

	body, err := sdk.processRequest(http.MethodPost, url, data, http.StatusAccepted)
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}

	return s, nil
}

func (sdk *privlensSDK) AcknowledgeReflection(id string) (Session, error) {
	return sdk.resolveReflection(id, "ack")
}

func (sdk *privlensSDK) DeferReflection(id string) (Session, error) {
	return sdk.resolveReflection(id, "defer")
}

func (sdk *privlensSDK) resolveReflection(id, action string) (Session, error) {
	url := sdk.orchestratorURL + sessionsEndpoint + "/" + id + "/reflection/" + action

	body, err := sdk.processRequest(http.MethodPost, url, nil, http.StatusOK)
	if err != nil {
		return Session{}, err
	}

	var s Session
	if err := json.Unmarshal(body, &s); err != nil {
		return Session{}, err
	}

	return s, nil
}

func (sdk *privlensSDK) Datasets() (DatasetCatalog, error) {
	url := sdk.orchestratorURL + catalogEndpoint + "/datasets"

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return DatasetCatalog{}, err
	}

	var c DatasetCatalog
	if err := json.Unmarshal(body, &c); err != nil {
		return DatasetCatalog{}, err
	}

	return c, nil
}

func (sdk *privlensSDK) Models() ([]Model, error) {
	url := sdk.orchestratorURL + catalogEndpoint + "/models"

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Models []Model `json:"models"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	return resp.Models, nil
}

func (sdk *privlensSDK) AggregationMethods() ([]AggregationMethod, error) {
	url := sdk.orchestratorURL + catalogEndpoint + "/aggregations"

	body, err := sdk.processRequest(http.MethodGet, url, nil, http.StatusOK)
	if err != nil {
		return nil, err
	}

	var resp struct {
		Methods []AggregationMethod `json:"methods"`
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}

	return resp.Methods, nil
}

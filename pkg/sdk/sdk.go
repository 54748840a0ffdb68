package sdk

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
)

const CTJSON string = "application/json"

type SDK interface {
	// CreateSession creates a new comparison session. A session with an
	// empty name gets a generated one.
	//
	// example:
	//  sess, _ := sdk.CreateSession("privacy-lab")
	//  fmt.Println(sess)
	CreateSession(name string) (Session, error)

	// GetSession gets a session by id.
	//
	// example:
	//  sess, _ := sdk.GetSession("b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	//  fmt.Println(sess)
	GetSession(id string) (Session, error)

	// ListSessions lists sessions.
	//
	// example:
	//  page, _ := sdk.ListSessions(0, 10)
	//  fmt.Println(page)
	ListSessions(offset uint64, limit uint64) (SessionPage, error)

	// DeleteSession deletes a session.
	//
	// example:
	//  _ = sdk.DeleteSession("b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	DeleteSession(id string) error

	// SubmitExperiment starts a run cycle on the session. Poll GetSession
	// for the outcome.
	//
	// example:
	//  cfg := sdk.ExperimentConfig{
	//    Dataset: "diabetes",
	//    Model:   "neural-network",
	//    Strategy: sdk.Strategy{Kind: "differential-privacy", Budget: 1.0},
	//  }
	//  sess, _ := sdk.SubmitExperiment("b1d10738-c5d7-4ff1-8f4d-b9328ce6f040", cfg)
	SubmitExperiment(id string, cfg ExperimentConfig) (Session, error)

	// AcknowledgeReflection resolves a pending reflective prompt.
	//
	// example:
	//  sess, _ := sdk.AcknowledgeReflection("b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	AcknowledgeReflection(id string) (Session, error)

	// DeferReflection dismisses a pending reflective prompt.
	//
	// example:
	//  sess, _ := sdk.DeferReflection("b1d10738-c5d7-4ff1-8f4d-b9328ce6f040")
	DeferReflection(id string) (Session, error)

	// Datasets lists the datasets and privacy budgets the evaluation
	// service was trained on.
	//
	// example:
	//  catalog, _ := sdk.Datasets()
	Datasets() (DatasetCatalog, error)

	// Models lists the available model architectures.
	//
	// example:
	//  models, _ := sdk.Models()
	Models() ([]Model, error)

	// AggregationMethods lists the federated aggregation methods.
	//
	// example:
	//  methods, _ := sdk.AggregationMethods()
	AggregationMethods() ([]AggregationMethod, error)
}

type privlensSDK struct {
	orchestratorURL string
	client          *http.Client
}

type Config struct {
	OrchestratorURL string
	TLSVerification bool
}

func NewSDK(cfg Config) SDK {
	return &privlensSDK{
		orchestratorURL: cfg.OrchestratorURL,
		client: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: !cfg.TLSVerification,
				},
			},
		},
	}
}

func (sdk *privlensSDK) processRequest(method, reqURL string, data []byte, expectedRespCode int) ([]byte, error) {
	req, err := http.NewRequest(method, reqURL, bytes.NewReader(data))
	if err != nil {
		return []byte{}, err
	}

	req.Header.Add("Content-Type", CTJSON)

	resp, err := sdk.client.Do(req)
	if err != nil {
		return []byte{}, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return []byte{}, err
	}

	if resp.StatusCode != expectedRespCode {
		return []byte{}, fmt.Errorf("unexpected response code: %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return body, nil
}

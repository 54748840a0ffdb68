package api

import (
	apiutil "github.com/absmach/supermq/api/http/util"

	"github.com/privlens/privlens/experiment"
)

type createSessionReq struct {
	Name string `json:"name"`
}

func (r *createSessionReq) validate() error {
	return nil
}

type entityReq struct {
	id string
}

func (r *entityReq) validate() error {
	if r.id == "" {
		return apiutil.ErrMissingID
	}

	return nil
}

type listEntityReq struct {
	offset, limit uint64
}

func (r *listEntityReq) validate() error {
	return nil
}

type submitReq struct {
	experiment.Config
	id string
}

func (r *submitReq) validate() error {
	if r.id == "" {
		return apiutil.ErrMissingID
	}

	return r.Config.Validate()
}

// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-obvious/server"
	"github.com/go-obvious/server/api"
	"github.com/go-obvious/server/request"

	"github.com/nauhpc/doppler/app/domain"
	"github.com/nauhpc/doppler/app/types"
)

const defaultTopN = 10

// ScoresAPI exposes the efficiency engine as a read-only JSON API. The chart
// and template front end consumes these endpoints; no rendering happens here.
type ScoresAPI struct {
	api.Service
	engine      *domain.Engine
	clusterName string
}

func NewScoresAPI(base string, clusterName string, engine *domain.Engine) *ScoresAPI {
	a := &ScoresAPI{
		engine:      engine,
		clusterName: clusterName,
		Service: api.Service{
			APIName: "scores",
			Mounts:  map[string]*chi.Mux{},
		},
	}
	a.Service.Mounts[base] = a.Routes()
	return a
}

func (a *ScoresAPI) Register(app server.Server) error {
	if err := a.Service.Register(app); err != nil {
		return err
	}
	return nil
}

func (a *ScoresAPI) Routes() *chi.Mux {
	r := chi.NewRouter()
	r.Get("/cluster", a.GetCluster)
	r.Get("/cluster/timeseries", a.GetClusterTimeseries)
	r.Get("/users/top", a.GetTopUsers)
	r.Get("/users/{user}", a.GetUser)
	r.Get("/users/{user}/timeseries", a.GetUserTimeseries)
	r.Get("/accounts/top", a.GetTopAccounts)
	r.Get("/accounts/{account}", a.GetAccount)
	r.Get("/accounts/{account}/timeseries", a.GetAccountTimeseries)
	r.Get("/search", a.GetSearch)
	return r
}

type clusterResponse struct {
	Cluster   string                `json:"cluster"`
	Timeframe string                `json:"timeframe"`
	Summary   domain.ClusterSummary `json:"summary"`
}

func (a *ScoresAPI) GetCluster(w http.ResponseWriter, r *http.Request) {
	frame, ok := timeframe(w, r)
	if !ok {
		return
	}

	summary, err := a.engine.Cluster(frame)
	if err != nil {
		replyError(w, r, err)
		return
	}
	request.Reply(r, w, clusterResponse{
		Cluster:   a.clusterName,
		Timeframe: frame.String(),
		Summary:   summary,
	}, http.StatusOK)
}

type clusterTimeseriesResponse struct {
	Cluster   string             `json:"cluster"`
	Timeframe string             `json:"timeframe"`
	Scores    []domain.DateScore `json:"scores"`
	Jobs      []domain.DateCount `json:"jobs"`
}

func (a *ScoresAPI) GetClusterTimeseries(w http.ResponseWriter, r *http.Request) {
	frame, ok := timeframe(w, r)
	if !ok {
		return
	}

	scores, jobs, err := a.engine.ClusterTimeseries(frame)
	if err != nil {
		replyError(w, r, err)
		return
	}
	request.Reply(r, w, clusterTimeseriesResponse{
		Cluster:   a.clusterName,
		Timeframe: frame.String(),
		Scores:    scores,
		Jobs:      jobs,
	}, http.StatusOK)
}

type topResponse struct {
	Timeframe string                `json:"timeframe"`
	Entries   []domain.RankedEntity `json:"entries"`
}

func (a *ScoresAPI) GetTopUsers(w http.ResponseWriter, r *http.Request) {
	a.getTop(w, r, a.engine.TopUsers)
}

func (a *ScoresAPI) GetTopAccounts(w http.ResponseWriter, r *http.Request) {
	a.getTop(w, r, a.engine.TopAccounts)
}

func (a *ScoresAPI) getTop(w http.ResponseWriter, r *http.Request, top func(types.Timeframe, int) ([]domain.RankedEntity, error)) {
	frame, ok := timeframe(w, r)
	if !ok {
		return
	}

	n := defaultTopN
	if qs := request.QS(r, "n"); qs != "" {
		parsed, err := strconv.Atoi(qs)
		if err != nil || parsed < 1 {
			request.Reply(r, w, "n must be a positive integer", http.StatusBadRequest)
			return
		}
		n = parsed
	}

	entries, err := top(frame, n)
	if err != nil {
		replyError(w, r, err)
		return
	}
	request.Reply(r, w, topResponse{Timeframe: frame.String(), Entries: entries}, http.StatusOK)
}

type breakdownResponse struct {
	Name      string               `json:"name"`
	Timeframe string               `json:"timeframe"`
	Total     types.ScoreSet       `json:"total"`
	Members   []domain.EntityScore `json:"members"`
}

func (a *ScoresAPI) GetUser(w http.ResponseWriter, r *http.Request) {
	a.getBreakdown(w, r, chi.URLParam(r, "user"), a.engine.UserBreakdown)
}

func (a *ScoresAPI) GetAccount(w http.ResponseWriter, r *http.Request) {
	a.getBreakdown(w, r, chi.URLParam(r, "account"), a.engine.AccountBreakdown)
}

func (a *ScoresAPI) getBreakdown(w http.ResponseWriter, r *http.Request, name string,
	breakdown func(string, types.Timeframe) (types.ScoreSet, []domain.EntityScore, error),
) {
	frame, ok := timeframe(w, r)
	if !ok {
		return
	}

	total, members, err := breakdown(name, frame)
	if err != nil {
		replyError(w, r, err)
		return
	}
	request.Reply(r, w, breakdownResponse{
		Name:      name,
		Timeframe: frame.String(),
		Total:     total,
		Members:   members,
	}, http.StatusOK)
}

type timeseriesResponse struct {
	Name      string             `json:"name"`
	Timeframe string             `json:"timeframe"`
	Scores    []domain.DateScore `json:"scores"`
}

func (a *ScoresAPI) GetUserTimeseries(w http.ResponseWriter, r *http.Request) {
	// An account qualifier narrows a user series to one membership.
	account := request.QS(r, "account")
	a.getTimeseries(w, r, chi.URLParam(r, "user"), func(name string, frame types.Timeframe) ([]domain.DateScore, error) {
		return a.engine.UserTimeseries(name, account, frame)
	})
}

func (a *ScoresAPI) GetAccountTimeseries(w http.ResponseWriter, r *http.Request) {
	a.getTimeseries(w, r, chi.URLParam(r, "account"), a.engine.AccountTimeseries)
}

func (a *ScoresAPI) getTimeseries(w http.ResponseWriter, r *http.Request, name string,
	series func(string, types.Timeframe) ([]domain.DateScore, error),
) {
	frame, ok := timeframe(w, r)
	if !ok {
		return
	}

	scores, err := series(name, frame)
	if err != nil {
		replyError(w, r, err)
		return
	}
	request.Reply(r, w, timeseriesResponse{
		Name:      name,
		Timeframe: frame.String(),
		Scores:    scores,
	}, http.StatusOK)
}

func (a *ScoresAPI) GetSearch(w http.ResponseWriter, r *http.Request) {
	query := request.QS(r, "q")
	if query == "" {
		request.Reply(r, w, "q is required", http.StatusBadRequest)
		return
	}

	result, err := a.engine.Search(query)
	if err != nil {
		replyError(w, r, err)
		return
	}
	request.Reply(r, w, result, http.StatusOK)
}

// timeframe parses the frame query parameter, replying 400 on garbage.
func timeframe(w http.ResponseWriter, r *http.Request) (types.Timeframe, bool) {
	frame, err := types.ParseTimeframe(request.QS(r, "frame"))
	if err != nil {
		request.Reply(r, w, err.Error(), http.StatusBadRequest)
		return 0, false
	}
	return frame, true
}

// replyError maps engine errors onto HTTP statuses. "No activity" is a real
// answer, not a server fault: the front end renders it as a placeholder.
func replyError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, types.ErrNoActivity), errors.Is(err, types.ErrUnknownEntity):
		request.Reply(r, w, err.Error(), http.StatusNotFound)
	case errors.Is(err, types.ErrNotReady):
		request.Reply(r, w, err.Error(), http.StatusServiceUnavailable)
	default:
		request.Reply(r, w, err.Error(), http.StatusInternalServerError)
	}
}

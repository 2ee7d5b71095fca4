package api

import (
	"bytes"
	"errors"
	"io"
	"math/rand/v2"
	"net/http"
	"strconv"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/mux"

	"github.com/utakatalp/playoff-simulator/internal/league"
	"github.com/utakatalp/playoff-simulator/internal/simulation"
)

// A simulation request is three numbers.
const maxRequestBody = 4 << 10

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.WithError(err).Warn("encoding response")
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, errorResponse{Error: msg})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type leagueResponse struct {
	league.League
	Seeds int `json:"seeds"`
}

func (s *Server) handleLeague(w http.ResponseWriter, _ *http.Request) {
	l := s.season.League()
	l.ByeSeeds = s.season.ByeSeeds()
	s.writeJSON(w, http.StatusOK, leagueResponse{League: l, Seeds: s.season.NumSeeds()})
}

type teamResponse struct {
	league.Team
	Division string `json:"division"`
	Position int    `json:"position"`
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	i, ok := s.season.Index(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, "unknown team "+strconv.Quote(name))
		return
	}
	s.writeJSON(w, http.StatusOK, teamResponse{
		Team:     s.season.Team(i),
		Division: s.season.League().Divisions[s.season.DivisionOf(i)].Name,
		Position: i,
	})
}

type simulateRequest struct {
	Trials  int    `json:"trials"`
	Workers int    `json:"workers"`
	Seed    uint64 `json:"seed"`
}

type simulateResponse struct {
	Trials    int                  `json:"trials"`
	Seed      uint64               `json:"seed"`
	ElapsedMS int64                `json:"elapsedMs"`
	Teams     []simulation.Summary `json:"teams"`
	Odds      []league.Prediction  `json:"odds"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	var req simulateRequest
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxRequestBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.writeError(w, http.StatusRequestEntityTooLarge,
				"request body exceeds "+strconv.FormatInt(tooLarge.Limit, 10)+" bytes")
			return
		}
		s.writeError(w, http.StatusBadRequest, "reading request body: "+err.Error())
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			s.writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
			return
		}
	}
	if req.Trials == 0 {
		req.Trials = s.limits.DefaultTrials
	}
	if req.Workers == 0 || req.Workers > s.limits.Workers {
		req.Workers = s.limits.Workers
	}
	if req.Trials < 0 || req.Trials > s.limits.MaxTrials {
		s.writeError(w, http.StatusBadRequest,
			"trials must be between 1 and "+strconv.Itoa(s.limits.MaxTrials))
		return
	}
	if req.Workers < 0 {
		s.writeError(w, http.StatusBadRequest, "workers must be positive")
		return
	}

	res, err := simulation.NewAggregator(s.season, s.log).Run(r.Context(), simulation.Options{
		Trials:  req.Trials,
		Workers: req.Workers,
		Seed:    req.Seed,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, simulateResponse{
		Trials:    res.Stats.Trials,
		Seed:      res.Seed,
		ElapsedMS: res.Elapsed.Milliseconds(),
		Teams:     res.Summaries(),
		Odds:      res.PlayoffOdds(),
	})
}

type sampleResponse struct {
	Seed  uint64               `json:"seed"`
	Seeds []string             `json:"seeds"`
	Table []*league.TableEntry `json:"table"`
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	seed := uint64(time.Now().UnixNano())
	if raw := r.URL.Query().Get("seed"); raw != "" {
		v, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "seed must be an unsigned integer")
			return
		}
		seed = v
	}

	seeds, results, err := s.season.SimulateSeason(league.NewGaussianSampler(rand.NewPCG(seed, 0)))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	resp := sampleResponse{Seed: seed, Table: s.season.CalculateTable(results, seeds)}
	for _, team := range seeds {
		resp.Seeds = append(resp.Seeds, s.season.TeamName(team))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

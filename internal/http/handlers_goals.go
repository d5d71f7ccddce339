package http

import (
	"errors"
	"log/slog"
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

type goalResponse struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"targetAmount"`
	CurrentAmount float64 `json:"currentAmount"`
	TargetDate    string  `json:"targetDate,omitempty"`
	Category      string  `json:"category"`
	Progress      float64 `json:"progress"`
}

func toGoalResponse(g core.Goal) goalResponse {
	out := goalResponse{
		ID:            g.ID,
		Name:          g.Name,
		TargetAmount:  g.TargetAmount.Rupees(),
		CurrentAmount: g.CurrentAmount.Rupees(),
		Category:      g.Category,
		Progress:      g.Progress(),
	}
	if !g.TargetDate.IsZero() {
		out.TargetDate = g.TargetDate.Format("2006-01-02")
	}
	return out
}

// goalFromRequest validates and converts the request into a domain goal,
// leaving ID and UserID for the caller.
func (s *Server) goalFromRequest(req goalRequest) (core.Goal, string) {
	target, err := core.ParseDecimalToPaise(req.TargetAmount)
	if err != nil {
		return core.Goal{}, "invalid target amount"
	}
	var current int64
	if req.CurrentAmount != "" && req.CurrentAmount != "0" {
		current, err = core.ParseDecimalToPaise(req.CurrentAmount)
		if err != nil {
			return core.Goal{}, "invalid current amount"
		}
	}
	g := core.Goal{
		Name:          sanitizeInput(req.Name),
		TargetAmount:  core.Money{Paise: target},
		CurrentAmount: core.Money{Paise: current},
		Category:      sanitizeInput(req.Category),
	}
	if req.TargetDate != "" {
		d, err := parseDate(req.TargetDate)
		if err != nil {
			return core.Goal{}, "invalid target date"
		}
		g.TargetDate = d
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err.Error()
	}
	return g, ""
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	goals, err := s.store.ListGoals(r.Context(), sess.UserID)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list goals", "error", err)
		internalError(w, "failed to list goals")
		return
	}

	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	newResponse().body(out).write(w)
}

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		unprocessable(w, "invalid goal: "+err.Error())
		return
	}

	g, problem := s.goalFromRequest(req)
	if problem != "" {
		unprocessable(w, problem)
		return
	}

	created := core.NewGoal(sess.UserID, g.Name, g.TargetAmount, g.Category)
	created.CurrentAmount = g.CurrentAmount
	created.TargetDate = g.TargetDate

	if err := s.store.CreateGoal(r.Context(), created); err != nil {
		slog.ErrorContext(r.Context(), "Failed to create goal", "error", err)
		internalError(w, "failed to create goal")
		return
	}
	newResponse().status(http.StatusCreated).body(toGoalResponse(created)).write(w)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	g, err := s.store.GetGoal(r.Context(), r.PathValue("id"), sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(w, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to load goal", "error", err)
		internalError(w, "failed to load goal")
		return
	}
	newResponse().body(toGoalResponse(g)).write(w)
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	var req goalRequest
	if err := decodeJSON(w, r, &req); err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.validate.Struct(req); err != nil {
		unprocessable(w, "invalid goal: "+err.Error())
		return
	}

	g, problem := s.goalFromRequest(req)
	if problem != "" {
		unprocessable(w, problem)
		return
	}
	g.ID = r.PathValue("id")
	g.UserID = sess.UserID

	if err := s.store.UpdateGoal(r.Context(), g); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(w, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update goal", "error", err)
		internalError(w, "failed to update goal")
		return
	}
	newResponse().body(toGoalResponse(g)).write(w)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	sess, err := session.FromContext(r.Context())
	if err != nil {
		internalError(w, "no session")
		return
	}

	if err := s.store.DeleteGoal(r.Context(), r.PathValue("id"), sess.UserID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			notFound(w, "goal not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete goal", "error", err)
		internalError(w, "failed to delete goal")
		return
	}
	newResponse().status(http.StatusNoContent).write(w)
}

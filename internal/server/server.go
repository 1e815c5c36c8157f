// Package server exposes problems over HTTP: fetching them, evaluating
// posted poses, and running searches whose progress streams over a
// websocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"time"

	"golang.org/x/time/rate"
	"k8s.io/klog/v2"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/piwi3910/holefit/internal/engine"
	"github.com/piwi3910/holefit/internal/model"
	"github.com/piwi3910/holefit/internal/project"
)

const (
	writeTimeout    = 5 * time.Second
	maxPoseBody     = 8 << 20
	progressBacklog = 16
	solveBurst      = 4
)

var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Message is one websocket frame of a solve stream.
type Message struct {
	Type     string           `json:"type"` // "progress" or "result"
	Progress *engine.Progress `json:"progress,omitempty"`
	Result   *SolveResult     `json:"result,omitempty"`
}

// SolveResult is the final frame of a solve stream.
type SolveResult struct {
	Name    string           `json:"name"`
	Pose    model.Pose       `json:"pose,omitempty"`
	Summary model.RunSummary `json:"summary"`
	Saved   bool             `json:"saved"` // Pose replaced the stored solution
}

// Server serves the problems of one directory.
type Server struct {
	cfg      model.AppConfig
	serveMux http.ServeMux
	solves   *rate.Limiter
}

// New builds a server for cfg.ProblemDir. Searches may start at one per
// second on average, in bursts of up to solveBurst.
func New(cfg model.AppConfig) *Server {
	s := &Server{
		cfg:    cfg,
		solves: rate.NewLimiter(rate.Every(time.Second), solveBurst),
	}
	s.serveMux.HandleFunc("GET /problems/{id}", s.problemHandler)
	s.serveMux.HandleFunc("POST /problems/{id}/eval", s.evalHandler)
	s.serveMux.HandleFunc("GET /problems/{id}/solve", s.solveHandler)
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.serveMux.ServeHTTP(w, r)
}

// Run serves on l until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, l net.Listener) error {
	hs := &http.Server{
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- hs.Serve(l)
	}()
	klog.Infof("listening on http://%v", l.Addr())

	select {
	case err := <-errc:
		return fmt.Errorf("failed to serve: %w", err)
	case <-ctx.Done():
		klog.Infof("shutting down: %v", ctx.Err())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return hs.Shutdown(shutdownCtx)
}

func (s *Server) problemPath(id string) string {
	return filepath.Join(s.cfg.ProblemDir, id+".json")
}

func (s *Server) solutionPath(id string) string {
	return filepath.Join(s.cfg.SolutionDir, id+".json")
}

// loadProblem resolves the {id} path value, writing an error response on failure.
func (s *Server) loadProblem(w http.ResponseWriter, r *http.Request) (string, *model.Problem, bool) {
	id := r.PathValue("id")
	if !idPattern.MatchString(id) {
		http.Error(w, "invalid problem id", http.StatusBadRequest)
		return "", nil, false
	}
	p, err := project.LoadProblem(s.problemPath(id))
	if err != nil {
		if errors.Is(err, model.ErrInvalidProblem) {
			klog.Warningf("problem %s: %v", id, err)
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		} else {
			http.Error(w, "problem not found", http.StatusNotFound)
		}
		return "", nil, false
	}
	return id, p, true
}

func (s *Server) problemHandler(w http.ResponseWriter, r *http.Request) {
	_, p, ok := s.loadProblem(w, r)
	if !ok {
		return
	}
	data, err := model.MarshalProblem(p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) evalHandler(w http.ResponseWriter, r *http.Request) {
	id, p, ok := s.loadProblem(w, r)
	if !ok {
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxPoseBody))
	if err != nil {
		http.Error(w, "cannot read body", http.StatusBadRequest)
		return
	}
	pose, err := model.ParsePose(body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report := p.FullValidate(pose)
	klog.V(1).Infof("problem %s: evaluated pose, %d violations", id, len(report.Errors))
	writeJSON(w, report)
}

// searchConfig applies query overrides to the default search settings.
func (s *Server) searchConfig(r *http.Request) (model.SearchConfig, error) {
	cfg := s.cfg.Search
	cfg.Hints = append([]model.Hint{}, cfg.Hints...)
	q := r.URL.Query()

	ints := []struct {
		name string
		set  func(int64)
	}{
		{"seed", func(v int64) { cfg.Seed = v }},
		{"num_poses", func(v int64) { cfg.NumPoses = int(v) }},
		{"workers", func(v int64) { cfg.Workers = int(v) }},
		{"max_total_steps", func(v int64) { cfg.MaxTotalSteps = v }},
		{"max_local_steps", func(v int64) { cfg.MaxLocalSteps = int(v) }},
	}
	for _, f := range ints {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s %q", f.name, raw)
		}
		f.set(v)
	}
	if raw := q.Get("prob_hole"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return cfg, fmt.Errorf("invalid prob_hole %q", raw)
		}
		cfg.ProbHole = v
	}
	if raw := q.Get("hints"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &cfg.Hints); err != nil {
			return cfg, fmt.Errorf("invalid hints: %v", err)
		}
	}
	s.limit(&cfg)
	return cfg, nil
}

// limit clamps the size of a requested search to what the server allows.
func (s *Server) limit(cfg *model.SearchConfig) {
	if n := runtime.NumCPU(); cfg.Workers > n {
		cfg.Workers = n
	}
	if m := s.cfg.MaxNumPoses; m > 0 && cfg.NumPoses > m {
		cfg.NumPoses = m
	}
	if m := s.cfg.MaxTotalSteps; m > 0 && cfg.MaxTotalSteps > m {
		cfg.MaxTotalSteps = m
	}
}

func (s *Server) solveHandler(w http.ResponseWriter, r *http.Request) {
	id, p, ok := s.loadProblem(w, r)
	if !ok {
		return
	}
	cfg, err := s.searchConfig(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	solver, err := engine.NewSolver(p, cfg)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.solves.Allow() {
		http.Error(w, "too many searches, try again later", http.StatusTooManyRequests)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"localhost:*", "127.0.0.1:*"},
	})
	if err != nil {
		klog.Warningf("problem %s: websocket accept: %v", id, err)
		return
	}
	defer conn.Close(websocket.StatusInternalError, "unexpected exit")

	// The client only listens; a close or read error cancels the search.
	ctx := conn.CloseRead(r.Context())

	err = s.stream(ctx, conn, id, solver)
	if errors.Is(err, context.Canceled) ||
		websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
		websocket.CloseStatus(err) == websocket.StatusGoingAway {
		return
	}
	if err != nil {
		klog.Warningf("problem %s: solve stream: %v", id, err)
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}

// stream runs solver, forwarding progress to conn, and ends with the result.
func (s *Server) stream(ctx context.Context, conn *websocket.Conn, id string, solver *engine.Solver) error {
	out := make(chan engine.Progress, progressBacklog)
	solver.ProgressInterval = time.Duration(s.cfg.ProgressInterval) * time.Millisecond
	solver.OnProgress = func(pr engine.Progress) {
		select {
		case out <- pr:
		default:
			klog.V(2).Infof("%s: client too slow, dropping progress %d/%d", solver.Name, pr.Done, pr.Total)
		}
	}

	writeErr := make(chan error, 1)
	go func() {
		var err error
		for pr := range out {
			if err != nil {
				continue
			}
			err = writeMessage(ctx, conn, Message{Type: "progress", Progress: &pr})
		}
		writeErr <- err
	}()

	klog.Infof("problem %s: %s started (%d restarts, %d workers)", id, solver.Name, solver.Config.NumPoses, solver.Config.Workers)
	res, solveErr := solver.Solve(ctx)
	close(out)
	if err := <-writeErr; err != nil {
		return err
	}
	if solveErr != nil {
		return solveErr
	}

	final := &SolveResult{Name: res.Name, Pose: res.Pose, Summary: res.Summary()}
	if res.Found() {
		saved, err := s.keep(id, solver, res)
		if err != nil {
			klog.Warningf("problem %s: %v", id, err)
		}
		final.Saved = saved
	}
	return writeMessage(ctx, conn, Message{Type: "result", Result: final})
}

// keep stores the pose if it beats the stored solution and archives the run.
func (s *Server) keep(id string, solver *engine.Solver, res engine.Result) (bool, error) {
	out, err := project.SavePoseIfBetter(s.solutionPath(id), solver.Problem, res.Pose)
	if err != nil {
		return false, err
	}
	rec := model.NewRunRecord(res.Name, s.problemPath(id), solver.Config, res.Summary(), res.Pose)
	if err := project.SaveRun(project.RunPath(s.cfg.ArchiveDir, rec), rec); err != nil {
		return out.Written, err
	}
	return out.Written, nil
}

func writeMessage(ctx context.Context, conn *websocket.Conn, msg Message) error {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return wsjson.Write(ctx, conn, msg)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		klog.Warningf("failed to write response: %v", err)
	}
}

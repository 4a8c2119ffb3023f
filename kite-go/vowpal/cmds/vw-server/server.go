package main

import (
	"context"
	"encoding/json"
	"net/http"
	"path/filepath"

	"github.com/codegangsta/negroni"
	"github.com/gorilla/mux"
	"github.com/kiteco/govw/kite-golib/errors"
	"github.com/kiteco/govw/kite-golib/kitelog"
	"github.com/kiteco/govw/kite-golib/vowpal"
	uuid "github.com/satori/go.uuid"
	"golang.org/x/time/rate"
)

// badRequest marks errors caused by the request body rather than by vw.
type badRequest struct {
	error
}

type server struct {
	binary  string
	workDir string
	args    vowpal.Args
	logger  *kitelog.Logger
	limiter *rate.Limiter
}

// newServer returns a server running at most maxRate vw invocations per
// second, or without limit if maxRate is not positive.
func newServer(binary, workDir string, args vowpal.Args, logger *kitelog.Logger, maxRate float64) *server {
	limit := rate.Inf
	if maxRate > 0 {
		limit = rate.Limit(maxRate)
	}
	return &server{
		binary:  binary,
		workDir: workDir,
		args:    args,
		logger:  logger,
		limiter: rate.NewLimiter(limit, 1),
	}
}

func (s *server) handler() http.Handler {
	router := mux.NewRouter()
	router.HandleFunc("/predict", s.handlePredict).Methods("POST")
	router.HandleFunc("/health", s.handleHealth).Methods("GET")

	return negroni.New(
		negroni.NewRecovery(),
		negroni.NewLogger(),
		negroni.Wrap(router),
	)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (s *server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.Wrapf(err, "error decoding request"))
		return
	}

	if !s.limiter.Allow() {
		writeError(w, http.StatusTooManyRequests, errors.New("too many requests, try again later"))
		return
	}

	preds, err := s.predict(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			s.logger.Errorf("predict failed: %v", err)
		}
		writeError(w, status, err)
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{Predictions: preds})
}

// predict runs vw over the request in scratch files of its own, so concurrent
// requests never share artifacts. The files are kept when vw exits with a
// nonzero status so the log can be inspected. They are removed when vw never
// started or was killed, e.g. because the client went away.
func (s *server) predict(ctx context.Context, req predictRequest) (preds []vowpal.Prediction, err error) {
	training, err := toRecords(req.Training)
	if err != nil {
		return nil, badRequest{err}
	}
	testing, err := toRecords(req.Testing)
	if err != nil {
		return nil, badRequest{err}
	}

	id, err := uuid.NewV4()
	if err != nil {
		return nil, errors.Wrapf(err, "error generating request id")
	}
	runner, err := vowpal.NewRunner(vowpal.Options{
		Binary:     s.binary,
		FilePrefix: filepath.Join(s.workDir, id.String()+"-%s"),
		Args:       s.args,
		Logger:     s.logger.With("request", id.String()),
	})
	if err != nil {
		return nil, err
	}
	defer func() {
		if terr, ok := errors.Cause(err).(*vowpal.ToolError); ok && terr.ExitCode >= 0 {
			return
		}
		if rerr := runner.Paths().Remove(); rerr != nil {
			s.logger.Errorf("error removing scratch files for %s: %v", id, rerr)
		}
	}()

	return runner.PredictRecords(ctx, training, testing)
}

func statusFor(err error) int {
	switch errors.Cause(err).(type) {
	case badRequest, *vowpal.LabelError, *vowpal.OrderError, *vowpal.MalformedError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, obj interface{}) {
	buf, err := json.Marshal(obj)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(buf)
}

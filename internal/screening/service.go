package screening

import (
	"context"
	"time"

	"github.com/molscreen/molscreen/internal/infrastructure/logging"
	"github.com/molscreen/molscreen/internal/infrastructure/metrics"
	"github.com/molscreen/molscreen/internal/ingest"
)

// Service orchestrates one screening submission end to end: activate the
// input source, normalize, validate bounds, call the prediction service,
// and install the result set in the session.
type Service struct {
	log        logging.Logger
	normalizer *ingest.Normalizer
	predictor  Predictor
	store      *Store
	metrics    *metrics.Screening
}

// NewService constructs a screening service.  metrics may be nil.
func NewService(log logging.Logger, normalizer *ingest.Normalizer, predictor Predictor, store *Store, m *metrics.Screening) *Service {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Service{
		log:        log.Named("screening"),
		normalizer: normalizer,
		predictor:  predictor,
		store:      store,
		metrics:    m,
	}
}

// Store exposes the session store for handlers that need direct access
// (clear, export).
func (svc *Service) Store() *Store {
	return svc.store
}

// ScreenText runs a submission from the free-text channel.
func (svc *Service) ScreenText(ctx context.Context, sessionID, text string) (Summary, error) {
	candidates := ingest.FromText(text)
	if err := ingest.Validate(candidates); err != nil {
		svc.metrics.ObserveSubmission(string(SourceText), "rejected")
		return Summary{}, err
	}

	sess := svc.store.Get(sessionID)
	// Activating the channel clears the other channel and any previous
	// result set, even if the prediction below fails.
	sess.UseText(text)

	return svc.run(ctx, sess, SourceText, candidates)
}

// ScreenFile runs a submission from the file-upload channel.
func (svc *Service) ScreenFile(ctx context.Context, sessionID, filename string, data []byte) (Summary, error) {
	candidates, err := svc.normalizer.FromFile(filename, data)
	if err != nil {
		svc.metrics.ObserveSubmission(string(SourceFile), "parse_failed")
		return Summary{}, err
	}
	if err := ingest.ValidateUpload(candidates); err != nil {
		svc.metrics.ObserveSubmission(string(SourceFile), "rejected")
		return Summary{}, err
	}

	sess := svc.store.Get(sessionID)
	sess.UseFile(filename)

	return svc.run(ctx, sess, SourceFile, candidates)
}

// run performs the predict call under the session's in-flight guard.
func (svc *Service) run(ctx context.Context, sess *Session, source InputSource, candidates []string) (Summary, error) {
	if err := sess.Begin(); err != nil {
		svc.metrics.ObserveSubmission(string(source), "conflict")
		return Summary{}, err
	}

	start := time.Now()
	preds, err := svc.predictor.Predict(ctx, candidates)
	svc.metrics.ObservePredictionDuration(time.Since(start))
	if err != nil {
		sess.Fail()
		svc.metrics.ObserveSubmission(string(source), "upstream_failed")
		svc.log.Warn("prediction failed",
			logging.String("source", string(source)),
			logging.Int("compounds", len(candidates)),
			logging.Err(err),
		)
		return Summary{}, err
	}

	sess.Complete(preds)
	svc.metrics.ObserveSubmission(string(source), "ok")
	svc.log.Info("prediction complete",
		logging.String("source", string(source)),
		logging.Int("compounds", len(candidates)),
		logging.Int("predictions", len(preds)),
		logging.Duration("took", time.Since(start)),
	)
	return Summarize(preds), nil
}

// Current returns the current result summary for a session, and whether a
// result set exists.
func (svc *Service) Current(sessionID string) (Summary, bool) {
	view := svc.store.Get(sessionID).Snapshot()
	if !view.HasResults {
		return Summary{}, false
	}
	return Summarize(view.Results), true
}

// Clear discards the session's input source and result set.
func (svc *Service) Clear(sessionID string) {
	svc.store.Get(sessionID).Clear()
}

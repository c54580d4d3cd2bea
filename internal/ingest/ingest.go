// Package ingest runs one snapshot through the pipeline: ensure the schema,
// map the document into a batch, and commit the batch.
package ingest

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/almanac/internal/document"
	"github.com/mesh-intelligence/almanac/internal/mapper"
	"github.com/mesh-intelligence/almanac/internal/metrics"
	"github.com/mesh-intelligence/almanac/pkg/types"
)

// State is the progress of one ingestion call.
type State int

const (
	StatePending State = iota
	StateSchemaEnsured
	StateExtracted
	StateCommitted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSchemaEnsured:
		return "schema_ensured"
	case StateExtracted:
		return "extracted"
	case StateCommitted:
		return "committed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Result describes a finished ingestion. Rows is set once the batch has been
// extracted; on abort it holds what would have been written.
type Result struct {
	Snapshot types.Snapshot
	State    State
	Rows     map[string]int
	Dropped  int
	Duration time.Duration
}

// Ingester writes snapshots into a Store.
type Ingester struct {
	store   types.Store
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// Option configures an Ingester.
type Option func(*Ingester)

// WithLogger sets the logger. The default discards all output.
func WithLogger(logger *zap.Logger) Option {
	return func(i *Ingester) {
		if logger != nil {
			i.logger = logger
		}
	}
}

// WithMetrics records ingestion metrics on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Ingester) {
		i.metrics = m
	}
}

// New returns an Ingester for an attached store.
func New(store types.Store, opts ...Option) *Ingester {
	i := &Ingester{
		store:  store,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Ingest parses raw as a JSON document and ingests it as a snapshot of
// playthroughID. A document that is not a JSON object aborts with
// ErrInvalidDocument before anything is written.
func (i *Ingester) Ingest(ctx context.Context, raw []byte, playthroughID string, info types.SnapshotInfo) (Result, error) {
	if err := types.ValidatePlaythroughID(playthroughID); err != nil {
		return i.begin(playthroughID, info).abort(err)
	}
	doc, err := document.Parse(raw)
	if err != nil {
		return i.begin(playthroughID, info).abort(err)
	}
	return i.IngestDocument(ctx, doc, playthroughID, info)
}

// IngestDocument ingests an already parsed document. The playthrough id is
// stored exactly as given; only an empty or blank id is rejected.
func (i *Ingester) IngestDocument(ctx context.Context, doc document.Node, playthroughID string, info types.SnapshotInfo) (Result, error) {
	run := i.begin(playthroughID, info)
	if err := types.ValidatePlaythroughID(playthroughID); err != nil {
		return run.abort(err)
	}
	return run.ingest(ctx, doc)
}

// run tracks one ingestion call through its states.
type run struct {
	*Ingester
	start         time.Time
	playthroughID string
	info          types.SnapshotInfo
	result        Result
	log           *zap.Logger
}

func (i *Ingester) begin(playthroughID string, info types.SnapshotInfo) *run {
	r := &run{
		Ingester:      i,
		start:         time.Now(),
		playthroughID: playthroughID,
		info:          info,
		log: i.logger.With(
			zap.String("playthrough_id", playthroughID),
			zap.String("filename", info.Filename),
		),
	}
	r.result.Snapshot.PlaythroughID = r.playthroughID
	r.transition(StatePending)
	return r
}

func (r *run) ingest(ctx context.Context, doc document.Node) (Result, error) {
	if err := r.store.EnsureSchema(ctx); err != nil {
		return r.abort(err)
	}
	r.transition(StateSchemaEnsured)

	batch, err := mapper.Map(doc, r.playthroughID, r.info)
	if err != nil {
		return r.abort(err)
	}
	r.result.Snapshot = batch.Snapshot
	r.result.Rows = batch.Rows()
	r.result.Dropped = batch.Dropped
	r.log = r.log.With(zap.String("save_date", batch.Snapshot.SaveDate))
	if batch.Dropped > 0 {
		r.log.Warn("dropped rows referencing unknown countries", zap.Int("dropped", batch.Dropped))
	}
	r.transition(StateExtracted)

	if err := r.store.Write(ctx, batch); err != nil {
		return r.abort(err)
	}
	r.transition(StateCommitted)
	r.result.Duration = time.Since(r.start)

	r.metrics.RecordIngestion(metrics.OutcomeCommitted, r.result.Duration)
	r.metrics.RecordRowsWritten(r.result.Rows)
	r.metrics.RecordDropped(batch.Dropped)
	r.log.Info("snapshot committed",
		zap.String("save_id", batch.Save.SaveID),
		zap.Int("countries", len(batch.Countries)),
		zap.Int("wars", len(batch.Wars)),
		zap.Duration("duration", r.result.Duration),
	)
	return r.result, nil
}

func (r *run) transition(s State) {
	r.result.State = s
	r.log.Debug("ingestion state", zap.Stringer("state", s))
}

func (r *run) abort(err error) (Result, error) {
	from := r.result.State
	r.result.State = StateAborted
	r.result.Duration = time.Since(r.start)
	r.metrics.RecordIngestion(metrics.OutcomeAborted, r.result.Duration)
	r.log.Error("snapshot aborted", zap.Stringer("from", from), zap.Error(err))
	return r.result, err
}

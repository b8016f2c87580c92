// Package rowpipe ties the engine's subsystems -- value, schema, expr,
// raster, stream, transform, dataset, mutate, csvrow -- into a single
// entry point, mirroring the teacher's top-level Engine/Config pattern.
package rowpipe

import (
	"github.com/sirupsen/logrus"

	"github.com/rowpipe/rowpipe/dataset"
	"github.com/rowpipe/rowpipe/job"
	"github.com/rowpipe/rowpipe/mutate"
	"github.com/rowpipe/rowpipe/raster"
	"github.com/rowpipe/rowpipe/schema"
)

// Engine is the root collaborator a host process constructs once and
// reuses across jobs. It holds no dataset state itself -- Dataset and
// MutableDataset values are independent of it -- but centralizes config
// and job construction so callers don't thread Config through every call.
type Engine struct {
	Config Config
	log    *logrus.Logger
}

// NewEngine constructs an Engine with cfg. Only the CSV dialect is
// defaulted: when cfg.CSV.FieldSeparator is empty, cfg.CSV is replaced by
// DefaultConfig().CSV; the other fields are used as given.
func NewEngine(cfg Config) *Engine {
	if cfg.CSV.FieldSeparator == "" {
		cfg.CSV = DefaultConfig().CSV
	}
	return &Engine{Config: cfg, log: logrus.StandardLogger()}
}

// NewJob creates a job.Job rooted at no tracer span, labeled id, using the
// engine's logger.
func (e *Engine) NewJob(id string) *job.Job {
	return job.New(id, logrus.NewEntry(e.log), nil)
}

// NewDataset wraps an in-memory column set and rows as a lazy Dataset
// (the entry point for a host feeding rows from outside the core, e.g. a
// CSV reader collaborator).
func (e *Engine) NewDataset(columns *schema.OrderedColumnSet, rows []schema.Row) dataset.Dataset {
	return dataset.FromRows(columns, rows)
}

// NewWritableDataset creates an empty, writable table with the given
// schema via the Warehouse collaborator (§4.11).
func (e *Engine) NewWritableDataset(columns *schema.OrderedColumnSet) *mutate.MutableDataset {
	return mutate.Warehouse{}.NewMutableWithSchema(columns)
}

// NewRaster constructs an empty, writable Raster with the given schema,
// for callers that want direct table access rather than the Dataset
// algebra.
func (e *Engine) NewRaster(columns *schema.OrderedColumnSet) *raster.Raster {
	return raster.New(columns)
}

package raster

import "github.com/pkg/errors"

var errReadOnly = errors.New("raster: read-only raster rejects mutation")

// Package model holds the waste classifier: the checkpoint-backed or
// untrained network and the argmax selection over its output.
package model

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Model maps one preprocessed tensor to a probability vector over the
// four categories.
type Model interface {
	Predict(in Tensor) ([]float32, error)
	// Kind names the backend: "onnx", "safetensors" or "untrained".
	Kind() string
	Close() error
}

var (
	// ErrNoCheckpoint is returned by Load when a trained checkpoint is
	// required but none could be loaded.
	ErrNoCheckpoint = errors.New("trained checkpoint required")
	// ErrUnsupportedFormat is returned for checkpoint extensions other than
	// .onnx and .safetensors.
	ErrUnsupportedFormat = errors.New("unsupported checkpoint format")
	// ErrRuntime is returned when an .onnx checkpoint exists but the ONNX
	// Runtime library cannot be initialized. Load never falls back on it.
	ErrRuntime = errors.New("onnx runtime unavailable")
)

// LoadOptions controls checkpoint resolution.
type LoadOptions struct {
	CheckpointPath string
	ORTLibPath     string
	// RequireTrained turns a missing or unreadable checkpoint into an error
	// instead of falling back to the untrained network.
	RequireTrained bool
	Seed           uint64
	Logger         *slog.Logger
}

// Load opens the checkpoint at opts.CheckpointPath. When it is absent or
// cannot be read, Load returns the untrained network unless
// opts.RequireTrained is set. A present .onnx checkpoint whose runtime fails
// to start is always an error.
func Load(opts LoadOptions) (Model, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	m, err := loadCheckpoint(opts.CheckpointPath, opts.ORTLibPath)
	if err == nil {
		logger.Info("model loaded", "path", opts.CheckpointPath, "kind", m.Kind())
		return m, nil
	}

	if errors.Is(err, ErrRuntime) {
		return nil, err
	}
	if opts.RequireTrained {
		return nil, fmt.Errorf("%w: %w", ErrNoCheckpoint, err)
	}

	if errors.Is(err, fs.ErrNotExist) {
		logger.Warn("no checkpoint found, using untrained model", "path", opts.CheckpointPath)
	} else {
		logger.Warn("checkpoint unreadable, using untrained model", "path", opts.CheckpointPath, "error", err)
	}
	return newUntrainedNetwork(opts.Seed), nil
}

func loadCheckpoint(path, libPath string) (Model, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("checkpoint %s: %w", path, err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".onnx":
		return newONNXModel(path, libPath)
	case ".safetensors":
		return loadNetwork(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// audit.go: Audit trail for matrix generation runs
//
// Every generated matrix can be traced back to the seed, preset and sampling
// outcome that produced it. Events are buffered in memory and persisted to a
// pluggable backend (SQLite or JSONL).
//
// Features:
// - Tamper-detection checksum per event
// - Cached timestamps (go-timecache) on the hot path
// - Level filtering and batch writes
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package jobmatrix

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
)

// AuditLevel represents the severity of audit events
type AuditLevel int

const (
	AuditInfo AuditLevel = iota
	AuditWarn
	AuditCritical
)

func (al AuditLevel) String() string {
	switch al {
	case AuditInfo:
		return "INFO"
	case AuditWarn:
		return "WARN"
	case AuditCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// Audit event names
const (
	EventMatrixGenerated   = "matrix_generated"
	EventPresetApplied     = "preset_applied"
	EventCoverageShortfall = "coverage_shortfall"
)

// AuditEvent represents a single auditable event
type AuditEvent struct {
	Timestamp   time.Time              `json:"timestamp"`
	Level       AuditLevel             `json:"level"`
	Event       string                 `json:"event"`
	Component   string                 `json:"component"`
	Message     string                 `json:"message,omitempty"`
	ProcessID   int                    `json:"process_id"`
	ProcessName string                 `json:"process_name"`
	Context     map[string]interface{} `json:"context,omitempty"`
	Checksum    string                 `json:"checksum"`
}

// AuditConfig configures the audit system
type AuditConfig struct {
	Enabled    bool       `json:"enabled"`
	OutputFile string     `json:"output_file"`
	MinLevel   AuditLevel `json:"min_level"`
	BufferSize int        `json:"buffer_size"`
}

// DefaultAuditConfig returns an enabled configuration writing to outputFile.
// A ".jsonl" extension selects the JSONL backend, anything else SQLite.
func DefaultAuditConfig(outputFile string) AuditConfig {
	return AuditConfig{
		Enabled:    true,
		OutputFile: outputFile,
		MinLevel:   AuditInfo,
		BufferSize: 64,
	}
}

// AuditLogger buffers audit events and writes them to the selected backend.
// A nil *AuditLogger is valid and drops every event.
type AuditLogger struct {
	config      AuditConfig
	backend     auditBackend
	buffer      []AuditEvent
	bufferMu    sync.Mutex
	processID   int
	processName string
}

// NewAuditLogger creates an audit logger with automatic backend selection.
func NewAuditLogger(config AuditConfig) (*AuditLogger, error) {
	if config.OutputFile == "" {
		return nil, errors.New(ErrCodeAuditError, "audit output file is required")
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 64
	}

	backend, err := createAuditBackend(config)
	if err != nil {
		return nil, errors.Wrap(err, ErrCodeAuditError, "failed to initialize audit backend")
	}

	return &AuditLogger{
		config:      config,
		backend:     backend,
		buffer:      make([]AuditEvent, 0, config.BufferSize),
		processID:   os.Getpid(),
		processName: filepath.Base(os.Args[0]),
	}, nil
}

// Log records an audit event
func (al *AuditLogger) Log(level AuditLevel, event, component, message string, context map[string]interface{}) {
	if al == nil || al.backend == nil || !al.config.Enabled || level < al.config.MinLevel {
		return
	}

	auditEvent := AuditEvent{
		Timestamp:   timecache.CachedTime(),
		Level:       level,
		Event:       event,
		Component:   component,
		Message:     message,
		ProcessID:   al.processID,
		ProcessName: al.processName,
		Context:     context,
	}
	auditEvent.Checksum = al.generateChecksum(auditEvent)

	al.bufferMu.Lock()
	al.buffer = append(al.buffer, auditEvent)
	if len(al.buffer) >= al.config.BufferSize {
		_ = al.flushBufferUnsafe() // retried on the next flush
	}
	al.bufferMu.Unlock()
}

// LogGeneration records a finished matrix generation run.
func (al *AuditLogger) LogGeneration(seed uint64, preset string, combinations int) {
	al.Log(AuditInfo, EventMatrixGenerated, "generator",
		fmt.Sprintf("generated %d combinations", combinations),
		map[string]interface{}{
			"seed":         seed,
			"preset":       preset,
			"combinations": combinations,
		})
}

// LogPreset records one preset being applied.
func (al *AuditLogger) LogPreset(preset string, added int) {
	al.Log(AuditInfo, EventPresetApplied, "presets",
		fmt.Sprintf("preset %q added %d combinations", preset, added),
		map[string]interface{}{"preset": preset, "added": added})
}

// LogShortfall records an abandoned sampling pass.
func (al *AuditLogger) LogShortfall(phase, message string, context map[string]interface{}) {
	if context == nil {
		context = make(map[string]interface{}, 1)
	}
	context["phase"] = phase
	al.Log(AuditWarn, EventCoverageShortfall, "collector", message, context)
}

// Flush immediately writes all buffered events
func (al *AuditLogger) Flush() error {
	if al == nil {
		return nil
	}
	al.bufferMu.Lock()
	defer al.bufferMu.Unlock()
	return al.flushBufferUnsafe()
}

// Stats returns backend statistics after flushing pending events.
func (al *AuditLogger) Stats() (*AuditStats, error) {
	if al == nil {
		return nil, errors.New(ErrCodeAuditError, "audit logging not enabled")
	}
	if err := al.Flush(); err != nil {
		return nil, err
	}
	return al.backend.Stats()
}

// Close flushes pending events and releases the backend.
func (al *AuditLogger) Close() error {
	if al == nil {
		return nil
	}
	if err := al.Flush(); err != nil {
		return fmt.Errorf("failed to flush audit logger during close: %w", err)
	}
	if al.backend != nil {
		if err := al.backend.Close(); err != nil {
			return fmt.Errorf("failed to close audit backend: %w", err)
		}
	}
	return nil
}

// flushBufferUnsafe writes buffer to backend storage (caller must hold bufferMu).
func (al *AuditLogger) flushBufferUnsafe() error {
	if len(al.buffer) == 0 {
		return nil
	}
	if err := al.backend.Write(al.buffer); err != nil {
		return fmt.Errorf("failed to write audit events to backend: %w", err)
	}
	al.buffer = al.buffer[:0]
	return nil
}

// generateChecksum creates a tamper-detection checksum using SHA-256
func (al *AuditLogger) generateChecksum(event AuditEvent) string {
	data := fmt.Sprintf("%s:%s:%s:%s:%v",
		event.Timestamp.Format(time.RFC3339Nano),
		event.Event, event.Component, event.Message, event.Context)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

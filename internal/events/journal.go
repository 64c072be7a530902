package events

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

var journalHeader = []string{"time", "event", "operation", "signer", "signature", "status", "code", "error"}

// Journal appends operation lifecycle events to a CSV file. Writes are
// buffered and flushed periodically, so a row may lag its event by up to
// the flush interval.
type Journal struct {
	mu     sync.Mutex
	writer *csv.Writer
	file   *os.File

	ticker *time.Ticker
	done   chan struct{}
	logger *zap.Logger
	subs   []Subscription

	writtenRows uint64
}

// NewJournal opens (or creates) the journal file at path and starts the
// periodic flush loop. A header row is written when the file is empty.
func NewJournal(path string, flushInterval time.Duration, logger *zap.Logger) (*Journal, error) {
	if flushInterval <= 0 {
		flushInterval = 5 * time.Second
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal file: %w", err)
	}
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to stat journal file: %w", err)
	}

	j := &Journal{
		writer: csv.NewWriter(file),
		file:   file,
		ticker: time.NewTicker(flushInterval),
		done:   make(chan struct{}),
		logger: logger.Named("op-journal"),
	}
	if stat.Size() == 0 {
		if err := j.writer.Write(journalHeader); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to write journal header: %w", err)
		}
	}
	go j.periodicFlush()
	return j, nil
}

// Attach subscribes the journal to bus for every operation lifecycle event.
func (j *Journal) Attach(bus *Bus) {
	for _, typ := range []EventType{OperationStarted, OperationCompleted, OperationFailed} {
		j.subs = append(j.subs, bus.SubscribeFunc(typ, j.record))
	}
}

func (j *Journal) record(_ context.Context, e Event) error {
	row := []string{e.Timestamp().UTC().Format(time.RFC3339), string(e.Type()), "", "", "", "", "", ""}
	switch ev := e.(type) {
	case OperationStartedEvent:
		row[2], row[3] = ev.Operation, ev.Signer.String()
	case OperationCompletedEvent:
		row[2], row[3] = ev.Operation, ev.Signer.String()
		row[4], row[5] = ev.Receipt.Signature.String(), string(ev.Receipt.Status)
	case OperationFailedEvent:
		row[2], row[3] = ev.Operation, ev.Signer.String()
		row[6] = string(ev.Code)
		if ev.Err != nil {
			row[7] = ev.Err.Error()
		}
	default:
		return nil
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.writer.Write(row); err != nil {
		return fmt.Errorf("failed to write journal row: %w", err)
	}
	j.writtenRows++
	return nil
}

// Flush forces buffered rows to disk.
func (j *Journal) Flush() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush journal: %w", err)
	}
	return j.file.Sync()
}

func (j *Journal) periodicFlush() {
	for {
		select {
		case <-j.ticker.C:
			if err := j.Flush(); err != nil {
				j.logger.Error("Periodic journal flush failed", zap.Error(err))
			}
		case <-j.done:
			return
		}
	}
}

// Close unsubscribes from the bus, flushes and closes the file.
func (j *Journal) Close() error {
	close(j.done)
	j.ticker.Stop()
	for _, sub := range j.subs {
		sub.Unsubscribe()
	}

	j.mu.Lock()
	defer j.mu.Unlock()
	j.writer.Flush()
	if err := j.writer.Error(); err != nil {
		return fmt.Errorf("failed to flush journal on close: %w", err)
	}
	if err := j.file.Close(); err != nil {
		return fmt.Errorf("failed to close journal file: %w", err)
	}
	j.logger.Info("Operation journal closed", zap.Uint64("rows", j.writtenRows))
	return nil
}

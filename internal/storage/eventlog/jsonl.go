package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/LeJamon/goCPSwap/internal/core/events"
	"go.uber.org/zap"
)

// JSONLSink appends one JSON object per event to a file.
type JSONLSink struct {
	mu      sync.Mutex
	f       *os.File
	w       *bufio.Writer
	lastSeq uint64
	logger  *zap.Logger
}

// OpenJSONL opens path for appending, creating it if needed.
func OpenJSONL(path string, logger *zap.Logger) (*JSONLSink, error) {
	records, err := ReadJSONL(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open event log: %w", err)
	}
	s := &JSONLSink{f: f, w: bufio.NewWriter(f), logger: logger.Named("eventlog")}
	if n := len(records); n > 0 {
		s.lastSeq = records[n-1].Seq
	}
	s.logger.Debug("event log opened", zap.String("path", path), zap.Uint64("last_seq", s.lastSeq))
	return s, nil
}

// LastSeq returns the highest sequence number in the log.
func (s *JSONLSink) LastSeq(context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeq, nil
}

func (s *JSONLSink) Publish(_ context.Context, records []events.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	enc := json.NewEncoder(s.w)
	for _, r := range records {
		e, err := toEntry(r)
		if err != nil {
			return err
		}
		if err := enc.Encode(e); err != nil {
			return fmt.Errorf("failed to write event %d: %w", r.Seq, err)
		}
		s.lastSeq = max(s.lastSeq, r.Seq)
	}
	if err := s.w.Flush(); err != nil {
		return fmt.Errorf("failed to flush event log: %w", err)
	}
	return nil
}

func (s *JSONLSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.w.Flush(); err != nil {
		s.f.Close()
		return err
	}
	return s.f.Close()
}

// ReadJSONL reads every record of the log at path.
func ReadJSONL(path string) ([]events.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []events.Record
	dec := json.NewDecoder(f)
	for {
		var e entry
		if err := dec.Decode(&e); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("failed to read event log: %w", err)
		}
		r, err := e.record()
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
}

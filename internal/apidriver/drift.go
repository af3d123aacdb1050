// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package apidriver

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/spf13/afero"
)

// driftObservation is one record appended to hashes.observed.json whenever
// an effective hash differs from the static default, or a request returns
// non-2xx or GraphQL errors at a cache path — spec.md §4.9.
type driftObservation struct {
	Op     string    `json:"op"`
	Locale string    `json:"locale"`
	SHA256 string    `json:"sha256"`
	Source string    `json:"source"`
	Note   string    `json:"note"`
	TS     time.Time `json:"ts"`
}

// driftLogger appends one JSON object per line to its file, serialized by
// a mutex since multiple enrichment goroutines may observe drift at once.
type driftLogger struct {
	mu   sync.Mutex
	fs   afero.Fs
	path string
}

func newDriftLogger(fs afero.Fs, path string) *driftLogger {
	return &driftLogger{fs: fs, path: path}
}

func (d *driftLogger) observe(op, locale, sha256Hash, source, note string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	line, err := json.Marshal(driftObservation{
		Op: op, Locale: locale, SHA256: sha256Hash, Source: source, Note: note, TS: time.Now().UTC(),
	})
	if err != nil {
		return
	}
	line = append(line, '\n')

	f, err := d.fs.OpenFile(d.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return
	}
	defer func() { _ = f.Close() }()
	_, _ = f.Write(line)
}

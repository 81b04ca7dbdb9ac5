// Package transfer reads and writes export documents: the full snapshot as
// indented JSON, suitable for a round trip through Import.
package transfer

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"minitodo/internal/task"
)

const DefaultFileName = "todo-export.json"

var ErrInvalidDocument = errors.New("invalid import document")

const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["tasks"],
	"properties": {
		"tasks": {"type": "array"}
	}
}`

var schema = jsonschema.MustCompileString("todo-export.schema.json", documentSchema)

func Export(w io.Writer, snap task.Snapshot) error {
	if snap.Tasks == nil {
		snap.Tasks = []task.Task{}
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

func ExportFile(path string, snap task.Snapshot) error {
	var buf bytes.Buffer
	if err := Export(&buf, snap); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	return nil
}

// Import parses a document. A structurally invalid one yields
// ErrInvalidDocument; individual entries are sanitized, never rejected as a
// whole.
func Import(r io.Reader, now time.Time) (task.Snapshot, error) {
	dec := json.NewDecoder(r)
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return task.Snapshot{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return task.Snapshot{}, fmt.Errorf("%w: trailing data after document", ErrInvalidDocument)
	}
	if err := schema.Validate(doc); err != nil {
		return task.Snapshot{}, fmt.Errorf("%w: %s", ErrInvalidDocument, schemaMessage(err))
	}

	obj := doc.(map[string]any)
	entries := obj["tasks"].([]any)
	snap := task.Snapshot{
		Tasks: task.SanitizeEntries(entries, now.UnixMilli(), task.NewID),
		Prefs: task.DefaultPrefs(),
	}
	if f, ok := obj["filter"].(string); ok && task.Filter(f).Valid() {
		snap.Filter = task.Filter(f)
	}
	if s, ok := obj["search"].(string); ok {
		snap.Search = s
	}
	if s, ok := obj["sort"].(string); ok {
		snap.Sort = task.SortKey(s)
	}
	return snap, nil
}

func ImportFile(path string, now time.Time) (task.Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return task.Snapshot{}, fmt.Errorf("open import: %w", err)
	}
	defer f.Close()
	return Import(f, now)
}

func schemaMessage(err error) string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err.Error()
	}
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	if ve.InstanceLocation == "" {
		return ve.Message
	}
	return ve.InstanceLocation + ": " + ve.Message
}

// Package iojson reads and writes the JSON documents exchanged by the CLI:
// send requests on the way in, history entries and reports on the way out.
package iojson

import (
	"encoding/json"
	"fmt"
	"io"
)

// marshalFailure is written to the error stream when a value cannot be encoded.
type marshalFailure struct {
	Message string `json:"message"`
	Type    string `json:"type"`
	Error   string `json:"error"`
}

// WriteWith writes obj to w as indented JSON. Encoding failures are reported
// to ew as a JSON document instead of partial output on w.
func WriteWith(w io.Writer, ew io.Writer, obj any) error {
	bits, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return reportFailure(ew, obj, err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

// WriteLine writes obj to w as a single line of compact JSON.
func WriteLine(w io.Writer, obj any) error {
	bits, err := json.Marshal(obj)
	if err != nil {
		return fmt.Errorf("marshal %T: %w", obj, err)
	}

	_, err = fmt.Fprintln(w, string(bits))
	return err
}

func reportFailure(ew io.Writer, obj any, cause error) error {
	bits, err := json.Marshal(marshalFailure{
		Message: "could not encode output",
		Type:    fmt.Sprintf("%T", obj),
		Error:   cause.Error(),
	})
	if err != nil {
		return fmt.Errorf("marshal %T: %w", obj, cause)
	}

	_, err = fmt.Fprintln(ew, string(bits))
	return err
}

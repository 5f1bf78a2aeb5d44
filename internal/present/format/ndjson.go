package format

import (
	"encoding/json"
	"io"

	"github.com/halvard/notedown/pkg/api"
)

func WriteNDJSONNotes(w io.Writer, notes []api.Note) error {
	enc := json.NewEncoder(w)
	for _, n := range notes {
		if err := enc.Encode(n); err != nil {
			return err
		}
	}
	return nil
}

func WriteNDJSONNote(w io.Writer, n api.Note) error {
	return json.NewEncoder(w).Encode(n)
}

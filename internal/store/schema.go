package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"kanban-cli/internal/board"
	"kanban-cli/internal/model"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

const boardSchemaURL = "kanban://board.schema.json"

// boardSchema accepts snapshots written by older versions too: priority, role, label
// and checklist may be missing (model.Board.Normalize fills them in).
const boardSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["lists"],
  "properties": {
    "lists": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "cards": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "title"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "priority": {"enum": ["Low", "Medium", "High"]},
                "label": {"enum": [null, "Red", "Green", "Yellow", "Blue"]},
                "members": {"type": "array", "items": {"type": "string"}},
                "checklist": {
                  "type": "array",
                  "items": {
                    "type": "object",
                    "required": ["text"],
                    "properties": {
                      "text": {"type": "string"},
                      "completed": {"type": "boolean"}
                    }
                  }
                },
                "role": {"enum": ["admin", "member", "viewer"]}
              }
            }
          }
        }
      }
    }
  }
}`

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func loadBoardSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		if err := c.AddResource(boardSchemaURL, strings.NewReader(boardSchema)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = c.Compile(boardSchemaURL)
	})
	return compiledSchema, schemaErr
}

// decodeBoard validates raw against the board schema and decodes it. Blank input is
// ErrAbsent; anything else that fails is a PersistenceReadError naming source.
func decodeBoard(raw []byte, source string) (model.Board, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return model.Board{}, board.ErrAbsent
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return model.Board{}, board.PersistenceReadError{Source: source, Err: err}
	}
	schema, err := loadBoardSchema()
	if err != nil {
		return model.Board{}, fmt.Errorf("compile board schema: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return model.Board{}, board.PersistenceReadError{Source: source, Err: schemaErrorSummary(err)}
	}

	var b model.Board
	if err := json.Unmarshal(raw, &b); err != nil {
		return model.Board{}, board.PersistenceReadError{Source: source, Err: err}
	}
	b.Normalize()
	return b, nil
}

func encodeBoard(b model.Board) ([]byte, error) {
	b = normalizedCopy(b)
	return json.MarshalIndent(b, "", "  ")
}

// normalizedCopy returns b with defaults filled in without touching b's slices.
func normalizedCopy(b model.Board) model.Board {
	out := model.Board{Lists: make([]model.List, len(b.Lists))}
	for i, l := range b.Lists {
		out.Lists[i] = l
		out.Lists[i].Cards = append([]model.Card{}, l.Cards...)
	}
	out.Normalize()
	return out
}

// schemaErrorSummary flattens a jsonschema error tree into "path: message" leaves.
func schemaErrorSummary(err error) error {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return err
	}
	var msgs []string
	var walk func(e *jsonschema.ValidationError)
	walk = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			loc := e.InstanceLocation
			if loc == "" {
				loc = "/"
			}
			msgs = append(msgs, loc+": "+e.Message)
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return errors.New(strings.Join(msgs, "; "))
}

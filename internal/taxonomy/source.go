package taxonomy

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

var (
	ErrSourceUnreadable = errors.New("taxonomy source unreadable")
	ErrInvalidSource    = errors.New("taxonomy source invalid")
)

const schemaURL = "https://cinsignal.local/schemas/gpc.json"

//go:embed gpc_schema.json
var schemaJSON []byte

// Node is one entry of the source classification hierarchy.
type Node struct {
	Code   int     `json:"Code"`
	Title  string  `json:"Title"`
	Level  int     `json:"Level"`
	Active bool    `json:"Active"`
	Childs []*Node `json:"Childs"`
}

type sourceFile struct {
	Schema []*Node `json:"Schema"`
}

// LoadSource reads and validates a GPC hierarchy file.
func LoadSource(path string) ([]*Node, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnreadable, err)
	}
	return ParseSource(blob)
}

// ParseSource validates blob against the embedded schema before decoding it.
func ParseSource(blob []byte) ([]*Node, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, err
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}

	var src sourceFile
	if err := json.Unmarshal(blob, &src); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSource, err)
	}
	return src.Schema, nil
}

func compileSchema() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
	if err != nil {
		return nil, fmt.Errorf("parse taxonomy schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, fmt.Errorf("add taxonomy schema: %w", err)
	}
	return compiler.Compile(schemaURL)
}

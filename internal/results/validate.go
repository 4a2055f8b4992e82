package results

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/verte-zerg/wpmhero/internal/model"
)

//go:embed result.schema.json
var schemaJSON []byte

const schemaURL = "schema://wpmhero/result.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

// InvalidPayloadError lists why a payload was rejected.
type InvalidPayloadError struct {
	Issues []string
}

func (e *InvalidPayloadError) Error() string {
	return "invalid payload: " + strings.Join(e.Issues, "; ")
}

// Validate checks raw against the result schema and decodes it.
func Validate(raw []byte) (model.SessionResult, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return model.SessionResult{}, &InvalidPayloadError{Issues: []string{fmt.Sprintf("invalid JSON: %v", err)}}
	}
	sch, err := resultSchema()
	if err != nil {
		return model.SessionResult{}, err
	}
	if err := sch.Validate(parsed); err != nil {
		return model.SessionResult{}, &InvalidPayloadError{Issues: issues(err)}
	}
	var res model.SessionResult
	if err := json.Unmarshal(raw, &res); err != nil {
		return model.SessionResult{}, &InvalidPayloadError{Issues: []string{err.Error()}}
	}
	return res, nil
}

func resultSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			schemaErr = fmt.Errorf("parse result schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			schemaErr = fmt.Errorf("add result schema: %w", err)
			return
		}
		compiledSchema, schemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

func issues(err error) []string {
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var out []string
	for _, line := range strings.Split(ve.Error(), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "jsonschema validation failed") {
			continue
		}
		out = append(out, strings.TrimPrefix(line, "- "))
	}
	if len(out) == 0 {
		out = append(out, ve.Error())
	}
	return out
}

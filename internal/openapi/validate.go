package openapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Load parses and validates an OpenAPI 3 document. Parse and validation
// failures are returned as a list of messages; the document is nil then.
func Load(ctx context.Context, data []byte) (*openapi3.T, []string) {
	loader := openapi3.NewLoader()
	loader.Context = ctx
	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, []string{fmt.Sprintf("parse: %v", err)}
	}
	if msgs := validationMessages(doc.Validate(ctx)); len(msgs) > 0 {
		return nil, msgs
	}
	return doc, nil
}

// Validate checks the generated document against the OpenAPI 3 rules. An
// empty result means the document is valid.
func (d *Document) Validate(ctx context.Context) []string {
	raw, err := d.MarshalJSON()
	if err != nil {
		return []string{fmt.Sprintf("encode: %v", err)}
	}
	_, msgs := Load(ctx, raw)
	return msgs
}

func validationMessages(err error) []string {
	if err == nil {
		return nil
	}
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		out := make([]string, 0, len(multi))
		for _, e := range multi {
			out = append(out, e.Error())
		}
		return out
	}
	return []string{err.Error()}
}

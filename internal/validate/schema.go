package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ppiankov/claimlens/internal/model"
)

func nullableString() map[string]any {
	return map[string]any{"type": []any{"string", "null"}}
}

// ClaimSchema is the JSON schema hosted-model extractions must satisfy.
func ClaimSchema() map[string]any {
	props := map[string]any{}
	required := make([]any, 0, len(model.CoreFields))
	for _, f := range model.CoreFields {
		props[string(f)] = nullableString()
		required = append(required, string(f))
	}
	props[string(model.FieldDateOfLoss)] = map[string]any{
		"type":    []any{"string", "null"},
		"pattern": `^(\d{4}-\d{2}-\d{2}|\d{4})$`,
	}
	for _, extra := range []string{
		"insured_name", "contact", "location_of_loss", "cause_of_loss",
		"items_damaged", "claim_reference", "raw_claim_description",
	} {
		props[extra] = nullableString()
	}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

var (
	compiledOnce   sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

func claimSchema() (*jsonschema.Schema, error) {
	compiledOnce.Do(func() {
		b, err := json.Marshal(ClaimSchema())
		if err != nil {
			compileErr = fmt.Errorf("marshal schema: %w", err)
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("claim.json", bytes.NewReader(b)); err != nil {
			compileErr = fmt.Errorf("add schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("claim.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("compile schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// ValidateClaimJSON checks data against ClaimSchema.
func ValidateClaimJSON(data []byte) error {
	schema, err := claimSchema()
	if err != nil {
		return err
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// DecodeClaimJSON validates data and decodes it into a ClaimRecord.
// Empty strings are treated as absent.
func DecodeClaimJSON(data []byte) (model.ClaimRecord, error) {
	if err := ValidateClaimJSON(data); err != nil {
		return model.ClaimRecord{}, err
	}
	var rec model.ClaimRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.ClaimRecord{}, fmt.Errorf("decode claim: %w", err)
	}
	for _, f := range model.CoreFields {
		if v, ok := rec.Get(f); ok {
			rec.Set(f, v)
		}
	}
	return rec, nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ppiankov/claimlens/internal/model"
	"github.com/ppiankov/claimlens/internal/validate"
)

var (
	strictSchema bool
	failInvalid  bool
)

// errInvalidRecord is returned with --fail-invalid so scripts get a non-zero exit.
var errInvalidRecord = errors.New("record is invalid")

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate <record.json|->",
	Short: "Validate a stored claim record",
	Long: `Validate scores a claim record (the "record" object of a report, or a
hosted-model answer) with the same rules used during extraction.

Example:
  claimlens validate record.json
  claimlens validate record.json --strict --fail-invalid`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&strictSchema, "strict", false, "require the record to match the claim JSON schema")
	validateCmd.Flags().BoolVar(&failInvalid, "fail-invalid", false, "exit non-zero when the record is invalid")
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}

	rec, err := decodeRecord(data, strictSchema)
	if err != nil {
		return err
	}

	result := validate.Validate(rec)

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if result.Valid {
		_, _ = color.New(color.FgGreen).Fprintf(os.Stderr, "✓ valid (score %.2f)\n", result.Score)
		return nil
	}
	_, _ = color.New(color.FgRed).Fprintf(os.Stderr, "✗ invalid (score %.2f)\n", result.Score)
	if failInvalid {
		return errInvalidRecord
	}
	return nil
}

// decodeRecord accepts either a bare record or a full report. With strict
// set the record must also satisfy the claim schema.
func decodeRecord(data []byte, strict bool) (model.ClaimRecord, error) {
	var wrapper struct {
		Record *json.RawMessage `json:"record"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return model.ClaimRecord{}, fmt.Errorf("decode record: %w", err)
	}
	if wrapper.Record != nil {
		data = *wrapper.Record
	}

	if strict {
		rec, err := validate.DecodeClaimJSON(data)
		if err != nil {
			return model.ClaimRecord{}, fmt.Errorf("schema check: %w", err)
		}
		return rec, nil
	}

	var rec model.ClaimRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.ClaimRecord{}, fmt.Errorf("decode record: %w", err)
	}
	for _, f := range model.CoreFields {
		if v, ok := rec.Get(f); ok {
			rec.Set(f, v)
		}
	}
	return rec, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

package llm

import (
	"bytes"
	"text/template"
)

const (
	extractionSystem = "You extract structured fields from insurance claim documents and answer with JSON only."
	summarySystem    = "You summarize insurance claim documents factually and briefly."
)

// maxPromptRunes caps the document text sent to the model.
const maxPromptRunes = 12000

const extractionInstruction = `Extract the insurance claim fields from the OCR text below.
Use null for any field that is not present. Do not guess.
Return dates as YYYY-MM-DD and amounts as a plain number with an optional currency code.`

const summaryInstruction = `Summarize the insurance claim below for a claims handler.
Mention what happened, when, and what is being claimed. Plain text only.`

var extractionTemplate = template.Must(template.New("extraction").Parse(`{{ .Instruction }}

Return only a single JSON object (no additional text). Schema:
{
  "policy_number": <string or null>,
  "claimant_name": <string or null>,
  "date_of_loss": <YYYY-MM-DD or null>,
  "amount_claimed": <string or null>,
  "claim_description": <string or null>
}

DOCUMENT:
{{ .Document }}
`))

var summaryTemplate = template.Must(template.New("summary").Parse(`{{ .Instruction }}
Use at most {{ .Sentences }} sentences.

DOCUMENT:
{{ .Document }}
`))

type promptData struct {
	Instruction string
	Document    string
	Sentences   int
}

// BuildExtractionPrompt renders the JSON extraction prompt for text.
func BuildExtractionPrompt(text string) (string, error) {
	return render(extractionTemplate, promptData{
		Instruction: extractionInstruction,
		Document:    truncateRunes(text, maxPromptRunes),
	})
}

// BuildSummaryPrompt renders the summary prompt for text.
func BuildSummaryPrompt(text string, sentences int) (string, error) {
	if sentences <= 0 {
		sentences = 3
	}
	return render(summaryTemplate, promptData{
		Instruction: summaryInstruction,
		Document:    truncateRunes(text, maxPromptRunes),
		Sentences:   sentences,
	})
}

func render(tpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

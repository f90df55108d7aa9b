// Package prompt renders the fixed analysis instruction sent with every image.
package prompt

import (
	"bytes"
	"text/template"
)

const analysisTemplate = `
Analyze the image of this medical report or prescription in depth. Your goal is to explain the issues found to the patient.
1. **Content Transcription:** First of all, transcribe the essential text of the document to give context.
2. **Identification of Issues:** Analyze the values, diagnoses or prescriptions. Identify the critical points or main issues (e.g. out-of-range values, diagnosis of a condition, interactions between prescribed drugs).
3. **Simple Explanation:** Explain each identified issue in clear, simple and direct language, as if speaking to a patient with no medical knowledge. Avoid technical jargon as much as possible.
4. **Organization:** Structure the answer in Markdown format with the following sections:
    - ### Content Summary
    - ### Analysis of the Issues
    - ### Explanation of Key Terms
Do not include warnings or disclaimers in your answer, the application adds them. If the image is not a medical document or is not readable, reply with a message that says so. Use h3 (###) for section titles.
Reply exclusively in the following language: {{.Language}}.
`

var analysis = template.Must(template.New("analysis").Parse(analysisTemplate))

// Build returns the instruction for the given response language.
// The output depends on language only.
func Build(language string) (string, error) {
	var buf bytes.Buffer
	if err := analysis.Execute(&buf, struct{ Language string }{Language: language}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notes

import (
	"bytes"
	"text/template"
)

// diseasePromptTmpl instructs the model to name the primary disease and
// nothing else. The label must be returned exactly as written in the notes
// so downstream matching sees the clinician's own terminology.
var diseasePromptTmpl = template.Must(template.New("disease").Parse(`You are an expert pediatric oncologist and chair of the International Leukemia Tumor Board. Analyze the patient case notes below and identify the primary disease the patient is diagnosed with or being treated for. It should be the initial diagnosis.

Output only the disease name, exactly as it is written in the case notes. Do not include any other text or formatting.

Example: for notes beginning "A now almost 4-year-old female diagnosed with KMT2A-rearranged AML and CNS2 involvement..." the output is: AML

Case notes:
{{.CaseNotes}}
`))

// DefaultEventInstructions is the default extraction prompt for actionable
// events. Clinicians can replace it per run; it is passed to ExtractEvents
// as an argument, never read from shared state.
const DefaultEventInstructions = `You are an expert pediatric oncologist and chair of the International Leukemia Tumor Board. Analyze the patient case notes and extract all clinically relevant and actionable events, such as:
- specific genetic mutations or fusions (e.g. "KMT2A::MLLT3 fusion", "NRAS (p.Gln61Lys) mutation")
- immunophenotype data (e.g. "positive CD33", "positive CD123")
- disease status (e.g. "relapsed after HSCT", "refractory to protocol")
- specific therapies (e.g. "revumenib", "FLAG-Mylotarg")
- disease location (e.g. "CNS2 involvement", "femoral extramedullary disease")
- response to therapy (e.g. "MRD reduction to 0.1%")

Focus on findings directly relevant to therapy selection or clinical management. Skip vague observations like "very good clinical condition".

Output only the list of actionable events, each wrapped in double quotes and separated by spaces. Do not include any other text or formatting.`

// renderDiseasePrompt executes the disease prompt template over the case notes.
func renderDiseasePrompt(caseNotes string) (string, error) {
	var buf bytes.Buffer
	if err := diseasePromptTmpl.Execute(&buf, struct{ CaseNotes string }{CaseNotes: caseNotes}); err != nil {
		return "", err
	}
	return buf.String(), nil
}

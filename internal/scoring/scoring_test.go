// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scoring

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/tumorboard/pkg/types"
)

var (
	noContext      = types.PatientContext{}
	patientContext = types.PatientContext{
		Disease:          "AML",
		ActionableEvents: []string{"KMT2A::MLLT3 fusion", "NRAS", "CD33"},
	}
)

func breakdownSum(rec types.ArticleRecord) int {
	sum := 0
	for _, v := range rec.PointBreakdown {
		sum += v
	}
	return sum
}

func TestVariantFor(t *testing.T) {
	assert.Equal(t, VariantBasic, VariantFor(types.PatientContext{}))
	assert.Equal(t, VariantBasic, VariantFor(types.PatientContext{Disease: "   "}))
	assert.Equal(t, VariantDiseaseAware, VariantFor(types.PatientContext{Disease: "AML"}))
}

func TestScore_BasicExample(t *testing.T) {
	// pediatric(10) + 1 event(5) + drugs tested(5) + 1 drug result(5) + cells(5) = 30
	raw := types.ArticleRecord{
		Title:            "Effects of NRAS Mutations on Leukemogenesis",
		PediatricFocus:   true,
		PaperType:        "in vitro study",
		ActionableEvents: []types.ActionableEvent{{Event: "NRAS mutation"}},
		DrugsTested:      true,
		DrugResults:      []string{"responded to MEK inhibition"},
		CellStudies:      true,
	}

	rec, err := Score(raw, noContext)
	require.NoError(t, err)

	assert.Equal(t, 30, rec.OverallPoints)
	assert.Equal(t, map[string]int{
		CritPediatricFocus:   10,
		CritActionableEvents: 5,
		CritDrugsTested:      5,
		CritDrugResults:      5,
		CritCellStudies:      5,
	}, rec.PointBreakdown)
}

func TestScore_DiseaseAwareExample(t *testing.T) {
	// pediatric(20) + clinical trial(40) + clinical study(15) +
	// clinical study on children(20) + 1 matching event(15) = 110
	raw := types.ArticleRecord{
		Title:                   "Revumenib in KMT2A-rearranged leukemia",
		PediatricFocus:          true,
		PaperType:               "clinical trial",
		ClinicalStudy:           true,
		ClinicalStudyOnChildren: true,
		ActionableEvents: []types.ActionableEvent{
			{Event: "KMT2A rearrangement", MatchesQuery: true},
		},
	}

	rec, err := Score(raw, patientContext)
	require.NoError(t, err)

	assert.Equal(t, 110, rec.OverallPoints)
	assert.Equal(t, map[string]int{
		CritPediatricFocus:          20,
		CritClinicalTrial:           40,
		CritClinicalStudy:           15,
		CritClinicalStudyOnChildren: 20,
		CritActionableEvents:        15,
	}, rec.PointBreakdown)
}

func TestScore_ReviewPenaltyAlone(t *testing.T) {
	rec, err := Score(types.ArticleRecord{Title: "FLT3 inhibitors: a review", PaperType: "review"}, noContext)
	require.NoError(t, err)

	assert.Equal(t, -5, rec.OverallPoints)
	assert.Equal(t, map[string]int{CritReview: -5}, rec.PointBreakdown)
}

func TestScore_Rubric(t *testing.T) {
	tests := []struct {
		name string
		raw  types.ArticleRecord
		ctx  types.PatientContext
		want int
	}{
		{
			name: "all booleans false scores zero",
			raw:  types.ArticleRecord{Title: "t"},
			ctx:  noContext,
			want: 0,
		},
		{
			name: "unknown paper type contributes nothing",
			raw:  types.ArticleRecord{Title: "t", PaperType: "biological rationale"},
			ctx:  noContext,
			want: 0,
		},
		{
			name: "paper type matching is case-insensitive",
			raw:  types.ArticleRecord{Title: "t", PaperType: "Clinical Trial"},
			ctx:  noContext,
			want: 10,
		},
		{
			name: "basic counts every event",
			raw: types.ArticleRecord{Title: "t", ActionableEvents: []types.ActionableEvent{
				{Event: "a"}, {Event: "b"}, {Event: "c"},
			}},
			ctx:  noContext,
			want: 15,
		},
		{
			name: "disease-aware counts only matching events",
			raw: types.ArticleRecord{Title: "t", ActionableEvents: []types.ActionableEvent{
				{Event: "a", MatchesQuery: true}, {Event: "b"}, {Event: "c", MatchesQuery: true},
			}},
			ctx:  patientContext,
			want: 30,
		},
		{
			name: "blank events are skipped",
			raw: types.ArticleRecord{Title: "t", ActionableEvents: []types.ActionableEvent{
				{Event: "  "}, {Event: "NRAS"},
			}},
			ctx:  noContext,
			want: 5,
		},
		{
			name: "basic scores each drug result",
			raw:  types.ArticleRecord{Title: "t", DrugResults: []string{"r1", "r2", "r3"}},
			ctx:  noContext,
			want: 15,
		},
		{
			name: "disease-aware ignores per-result scoring",
			raw:  types.ArticleRecord{Title: "t", DrugResults: []string{"r1", "r2", "r3"}},
			ctx:  patientContext,
			want: 0,
		},
		{
			name: "disease-aware flat treatment bonus",
			raw:  types.ArticleRecord{Title: "t", DrugResults: []string{"r1"}, TreatmentShown: true},
			ctx:  patientContext,
			want: 50,
		},
		{
			name: "treatment shown is inert in basic variant",
			raw:  types.ArticleRecord{Title: "t", TreatmentShown: true},
			ctx:  noContext,
			want: 0,
		},
		{
			name: "disease match requires disease-aware context",
			raw:  types.ArticleRecord{Title: "t", DiseaseMatch: true},
			ctx:  noContext,
			want: 0,
		},
		{
			name: "disease match bonus",
			raw:  types.ArticleRecord{Title: "t", DiseaseMatch: true},
			ctx:  patientContext,
			want: 50,
		},
		{
			name: "study attributes accumulate",
			raw: types.ArticleRecord{
				Title: "t", CellStudies: true, MiceStudies: true, CaseReport: true,
				SeriesOfCaseReports: true, ClinicalStudy: true, ClinicalStudyOnChildren: true,
				Novelty: true,
			},
			ctx:  noContext,
			want: 5 + 10 + 5 + 10 + 15 + 20 + 10,
		},
		{
			name: "upstream points are discarded",
			raw: types.ArticleRecord{
				Title:          "t",
				OverallPoints:  999,
				PointBreakdown: map[string]int{"bogus": 999},
				DrugsTested:    true,
			},
			ctx:  noContext,
			want: 5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Score(tt.raw, tt.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.OverallPoints)
			assert.Equal(t, tt.want, breakdownSum(rec), "total must equal breakdown sum")
			assert.NotContains(t, rec.PointBreakdown, "bogus")
		})
	}
}

func TestScore_BreakdownHasNoZeroEntries(t *testing.T) {
	rec, err := Score(types.ArticleRecord{Title: "t", DrugsTested: true}, noContext)
	require.NoError(t, err)
	for criterion, pts := range rec.PointBreakdown {
		assert.NotZero(t, pts, "criterion %s recorded a zero contribution", criterion)
	}
}

func TestScore_MissingTitle(t *testing.T) {
	_, err := Score(types.ArticleRecord{PMID: "12345", PaperType: "review"}, noContext)
	assert.ErrorIs(t, err, ErrMissingTitle)

	_, err = Score(types.ArticleRecord{Title: "   "}, noContext)
	assert.ErrorIs(t, err, ErrMissingTitle)
}

func TestScore_Idempotent(t *testing.T) {
	raw := types.ArticleRecord{
		Title:          "Palbociclib in Acute Leukemias",
		PMID:           "37101762",
		PaperType:      "clinical trial",
		ClinicalStudy:  true,
		DrugsTested:    true,
		DrugResults:    []string{"2 responses among 16 patients"},
		TreatmentShown: true,
		ActionableEvents: []types.ActionableEvent{
			{Event: "KMT2A rearrangement", MatchesQuery: true},
		},
	}

	first, err := Score(raw, patientContext)
	require.NoError(t, err)
	second, err := Score(raw, patientContext)
	require.NoError(t, err)

	a, err := json.Marshal(first)
	require.NoError(t, err)
	b, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, a, b, "scoring must be byte-identical across runs")
}

func TestScore_AbsentEqualsFalse(t *testing.T) {
	// A payload that omits every optional field must score the same as one
	// spelling the defaults out.
	var omitted types.ArticleRecord
	require.NoError(t, json.Unmarshal([]byte(`{"title":"t"}`), &omitted))

	var explicit types.ArticleRecord
	require.NoError(t, json.Unmarshal([]byte(`{
		"title": "t",
		"pediatric_focus": false,
		"drugs_tested": false,
		"cell_studies": false,
		"actionable_events": [],
		"drug_results": []
	}`), &explicit))

	a, err := Score(omitted, patientContext)
	require.NoError(t, err)
	b, err := Score(explicit, patientContext)
	require.NoError(t, err)
	assert.Equal(t, a.OverallPoints, b.OverallPoints)
	assert.Equal(t, a.PointBreakdown, b.PointBreakdown)
}

func TestScore_VariantIsContextProperty(t *testing.T) {
	// The same non-matching event earns +5 basic and 0 disease-aware:
	// variant selection depends on context, not on the event data.
	raw := types.ArticleRecord{
		Title:            "t",
		ActionableEvents: []types.ActionableEvent{{Event: "FLT3 mutation"}},
	}

	basic, err := Score(raw, noContext)
	require.NoError(t, err)
	aware, err := Score(raw, patientContext)
	require.NoError(t, err)

	assert.Equal(t, 5, basic.OverallPoints)
	assert.Equal(t, 0, aware.OverallPoints)
	assert.Empty(t, aware.PointBreakdown)
}

func TestScore_DoesNotMutateInput(t *testing.T) {
	raw := types.ArticleRecord{Title: "t", DrugsTested: true}
	_, err := Score(raw, noContext)
	require.NoError(t, err)
	assert.Zero(t, raw.OverallPoints)
	assert.Nil(t, raw.PointBreakdown)
}

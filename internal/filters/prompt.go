package filters

import (
	"fmt"
	"strings"

	"github.com/nyka2002/nekretnine-search/internal/logger"
	"github.com/nyka2002/nekretnine-search/pkg/schema"
)

// filterSchema is the reflection-derived schema.Schema for rawExtraction,
// built once and reused for both the JSON-mode schema sent to the provider
// and the prompt's human-readable schema description.
var filterSchema = mustFilterSchema()

func mustFilterSchema() schema.Schema {
	s, err := schema.NewSchema[rawExtraction](schema.WithDescription(
		"Structured real-estate search filters extracted from a free-text query."))
	if err != nil {
		// rawExtraction's shape is fixed at compile time; a failure here is a
		// programmer error, not a runtime condition.
		panic(fmt.Sprintf("filters: building rawExtraction schema: %v", err))
	}
	return s
}

// SystemPrompt is the fixed instruction preamble for the single filter
// extraction call.
func SystemPrompt() string {
	return `You are a structured-query extraction assistant for a Croatian real-estate search engine. Extract a partial filter object from a free-text query. Leave any field you cannot confidently infer absent (null) rather than guessing. Return strict JSON matching the schema exactly, no surrounding prose.`
}

// BuildPrompt composes the user message: the filter schema description,
// the fixed vocabulary table, and three few-shot examples.
func BuildPrompt(query string) string {
	var sb strings.Builder

	sb.WriteString("## Schema\n")
	sb.WriteString(schemaDescription())

	sb.WriteString("\n## Vocabulary\n")
	sb.WriteString(vocabularyDescription())

	sb.WriteString("\n## Examples\n")
	for _, ex := range fewShotExamples {
		fmt.Fprintf(&sb, "Query: %q\nOutput: %s\n\n", ex.query, ex.output)
	}

	sb.WriteString("## Query\n")
	fmt.Fprintf(&sb, "%q\n", query)

	return sb.String()
}

func schemaDescription() string {
	return filterSchema.ToPromptDescription()
}

func vocabularyDescription() string {
	var sb strings.Builder
	sb.WriteString("Property types: ")
	writeVocabKeys(&sb, propertyTypeVocabulary)
	sb.WriteString("\nListing types: ")
	writeVocabKeys(&sb, listingTypeVocabulary)
	sb.WriteString("\nPrice units (incl. legacy HRK, rate 7.5345 to EUR): ")
	sb.WriteString(strings.Join(priceUnitVocabulary, ", "))
	sb.WriteString("\nRoom phrases: ")
	for phrase, n := range roomPhraseVocabulary {
		fmt.Fprintf(&sb, "%s=%d ", phrase, n)
	}
	sb.WriteString("\nAmenity aliases: ")
	writeVocabKeys(&sb, amenityAliasVocabulary)
	return sb.String()
}

func writeVocabKeys(sb *strings.Builder, table map[string]string) {
	first := true
	for k := range table {
		if !first {
			sb.WriteString(", ")
		}
		sb.WriteString(k)
		first = false
	}
}

type fewShotExample struct {
	query  string
	output string
}

// fewShotExamples anchor the model on the expected output shape: a rich
// query, a medium one, and an underspecified one.
var fewShotExamples = []fewShotExample{
	{
		query:  "Tražim dvosobni stan za najam u Zagrebu do 700€ s parkingom",
		output: `{"listing_type":"rent","property_type":"apartment","rooms_min":2,"rooms_max":2,"price_max":700,"location":"Zagreb","has_parking":true,"confidence":0.9,"ambiguous_fields":[]}`,
	},
	{
		query:  "kuća za prodaju u Splitu, 3 sobe, oko 150000 eura",
		output: `{"listing_type":"sale","property_type":"house","rooms_min":3,"rooms_max":3,"price_max":150000,"location":"Split","confidence":0.85,"ambiguous_fields":[]}`,
	},
	{
		query:  "nekretnina",
		output: `{"confidence":0.2,"ambiguous_fields":["listing_type","property_type","location","price_max"]}`,
	},
}

// JSONSchema returns the filter schema as a JSON-mode schema map for the
// provider call, generated by reflection over rawExtraction via
// pkg/schema.
func JSONSchema() map[string]any {
	js, err := filterSchema.ToJSONSchema()
	if err != nil {
		logger.Error("filters: building JSON schema", "error", err)
		return map[string]any{"type": "object"}
	}
	return js
}

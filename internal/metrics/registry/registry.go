/*
Copyright 2026.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package registry declares the closed catalog of scorable metrics, their
// required/optional fields, and the neutral-to-engine field mapping, and
// validates a shaped dataset entry against a metric's declared fields.
package registry

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mckinsey/ark-evaluator/internal/core"
)

// Neutral field names used across every metric's requiredFields/optionalFields.
const (
	FieldInputText   = "input_text"
	FieldOutputText  = "output_text"
	FieldContext     = "context"
	FieldGroundTruth = "ground_truth"
)

var catalog = map[string]core.MetricDescriptor{
	"relevance": {
		DisplayName: "Relevance",
		RagasName:   "answer_relevancy",
		Description: "Measures how well the response addresses the input query.",
		RequiredFields: []core.FieldRequirement{
			{Name: FieldInputText, Type: core.FieldTypeString, Description: "the original question"},
			{Name: FieldOutputText, Type: core.FieldTypeString, Description: "the generated answer"},
		},
		FieldMapping: map[string]string{FieldInputText: "user_input", FieldOutputText: "response"},
	},
	"correctness": {
		DisplayName: "Correctness",
		RagasName:   "answer_correctness",
		Description: "Measures factual and semantic correctness against a reference answer.",
		RequiredFields: []core.FieldRequirement{
			{Name: FieldInputText, Type: core.FieldTypeString},
			{Name: FieldOutputText, Type: core.FieldTypeString},
			{Name: FieldGroundTruth, Type: core.FieldTypeString, Description: "the reference answer"},
		},
		FieldMapping: map[string]string{FieldInputText: "user_input", FieldOutputText: "response", FieldGroundTruth: "reference"},
	},
	"similarity": {
		DisplayName: "Similarity",
		RagasName:   "answer_similarity",
		Description: "Measures semantic similarity between the response and a reference answer.",
		RequiredFields: []core.FieldRequirement{
			{Name: FieldOutputText, Type: core.FieldTypeString},
			{Name: FieldGroundTruth, Type: core.FieldTypeString},
		},
		FieldMapping: map[string]string{FieldOutputText: "response", FieldGroundTruth: "reference"},
	},
	"faithfulness": {
		DisplayName: "Faithfulness",
		RagasName:   "faithfulness",
		Description: "Measures whether claims in the response are supported by the retrieved context.",
		RequiredFields: []core.FieldRequirement{
			{Name: FieldOutputText, Type: core.FieldTypeString},
			{Name: FieldContext, Type: core.FieldTypeStringList, Description: "retrieved context passages"},
		},
		FieldMapping: map[string]string{FieldOutputText: "response", FieldContext: "retrieved_contexts"},
	},
	"context_precision": {
		DisplayName: "Context Precision",
		RagasName:   "context_precision",
		Description: "Measures how precisely the retrieved context targets the question.",
		RequiredFields: []core.FieldRequirement{
			{Name: FieldInputText, Type: core.FieldTypeString},
			{Name: FieldContext, Type: core.FieldTypeStringList},
			{Name: FieldGroundTruth, Type: core.FieldTypeString},
		},
		FieldMapping: map[string]string{FieldInputText: "user_input", FieldContext: "retrieved_contexts", FieldGroundTruth: "reference"},
	},
	"context_recall": {
		DisplayName: "Context Recall",
		RagasName:   "context_recall",
		Description: "Measures how much of the ground truth is covered by the retrieved context.",
		RequiredFields: []core.FieldRequirement{
			{Name: FieldInputText, Type: core.FieldTypeString},
			{Name: FieldContext, Type: core.FieldTypeStringList},
			{Name: FieldGroundTruth, Type: core.FieldTypeString},
		},
		FieldMapping: map[string]string{FieldInputText: "user_input", FieldContext: "retrieved_contexts", FieldGroundTruth: "reference"},
	},
}

// aliases map a user-facing name to the canonical catalog key.
var aliases = map[string]string{
	"helpfulness": "relevance",
	"clarity":     "similarity",
}

// canonicalize resolves an alias to its backing catalog key; non-aliases
// pass through unchanged.
func canonicalize(name string) string {
	if canon, ok := aliases[name]; ok {
		return canon
	}
	return name
}

// Lookup returns the descriptor for name (resolving aliases), and whether it
// is known.
func Lookup(name string) (core.MetricDescriptor, bool) {
	d, ok := catalog[canonicalize(name)]
	return d, ok
}

// Names returns every metric name the registry accepts, including aliases,
// sorted for stable API responses.
func Names() []string {
	names := make([]string, 0, len(catalog)+len(aliases))
	for k := range catalog {
		names = append(names, k)
	}
	for k := range aliases {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// DatasetEntry is one shaped row ready for validation and scoring: neutral
// field names mapped to values (string or []string).
type DatasetEntry map[string]interface{}

// PrepareDataset builds the union-of-fields dataset entry for the given
// metrics. Empty context is never injected as an empty list; a metric that
// requires non-empty context will simply fail validation and be reported,
// per the no-silent-empty-context invariant.
func PrepareDataset(metricNames []string, input, output string, context []string, groundTruth string) DatasetEntry {
	entry := DatasetEntry{}
	needed := unionFields(metricNames)

	if _, ok := needed[FieldInputText]; ok {
		entry[FieldInputText] = input
	}
	if _, ok := needed[FieldOutputText]; ok {
		entry[FieldOutputText] = output
	}
	if _, ok := needed[FieldGroundTruth]; ok {
		entry[FieldGroundTruth] = groundTruth
	}
	if _, ok := needed[FieldContext]; ok && len(context) > 0 {
		entry[FieldContext] = context
	}
	return entry
}

func unionFields(metricNames []string) map[string]struct{} {
	needed := map[string]struct{}{}
	for _, name := range metricNames {
		d, ok := Lookup(name)
		if !ok {
			continue
		}
		for _, f := range d.RequiredFields {
			needed[f.Name] = struct{}{}
		}
		for _, f := range d.OptionalFields {
			needed[f.Name] = struct{}{}
		}
	}
	return needed
}

// ValidateInput checks entry against metric's declared required fields:
// presence, type, and non-empty content for required strings and
// list-of-strings. Returns ok=true with no errors when all checks pass.
func ValidateInput(metric string, entry DatasetEntry) (bool, []string) {
	d, ok := Lookup(metric)
	if !ok {
		return false, []string{fmt.Sprintf("unknown metric %q", metric)}
	}

	var errs []string
	for _, f := range d.RequiredFields {
		v, present := entry[f.Name]
		if !present {
			name := f.Name
			if mapped, ok := d.FieldMapping[f.Name]; ok {
				name = mapped
			}
			errs = append(errs, fmt.Sprintf("missing required field %q", name))
			continue
		}
		if err := checkField(f, v); err != "" {
			errs = append(errs, err)
		}
	}
	return len(errs) == 0, errs
}

func checkField(f core.FieldRequirement, v interface{}) string {
	switch f.Type {
	case core.FieldTypeString:
		s, ok := v.(string)
		if !ok {
			return fmt.Sprintf("field %q must be a string", f.Name)
		}
		if strings.TrimSpace(s) == "" {
			return fmt.Sprintf("field %q must not be empty", f.Name)
		}
	case core.FieldTypeStringList:
		list, ok := v.([]string)
		if !ok {
			return fmt.Sprintf("field %q must be a list of strings", f.Name)
		}
		nonEmpty := false
		for _, s := range list {
			if strings.TrimSpace(s) != "" {
				nonEmpty = true
				break
			}
		}
		if !nonEmpty {
			return fmt.Sprintf("field %q must contain at least one non-empty string", f.Name)
		}
	case core.FieldTypeInt:
		if _, ok := v.(int); !ok {
			return fmt.Sprintf("field %q must be an int", f.Name)
		}
	case core.FieldTypeFloat:
		switch v.(type) {
		case float64, float32:
		default:
			return fmt.Sprintf("field %q must be a float", f.Name)
		}
	case core.FieldTypeBool:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("field %q must be a bool", f.Name)
		}
	}
	return ""
}

// Partition splits requested metric names into valid and invalid sets given
// a shaped dataset entry, recording the validation error for each invalid
// metric.
func Partition(metricNames []string, entry DatasetEntry) (valid []string, invalid []string, errors map[string]string) {
	errors = map[string]string{}
	for _, name := range metricNames {
		ok, errs := ValidateInput(name, entry)
		if ok {
			valid = append(valid, name)
			continue
		}
		invalid = append(invalid, name)
		errors[name] = strings.Join(errs, "; ")
	}
	return valid, invalid, errors
}

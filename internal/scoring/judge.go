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

// Package scoring turns a resolved response into a verdict using one of two
// backends: an LLM-as-judge that scores against a fixed rubric, or a
// RAGAS-style engine that scores a shaped dataset metric by metric.
package scoring

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/llm"
)

const defaultMinScore = 0.7

var allCriteria = []string{"relevance", "accuracy", "completeness", "conciseness", "clarity", "usefulness"}

// JudgeRequest carries everything the rubric prompt can embed. Only Query
// and Response are required; the rest shape an increasingly specific prompt.
type JudgeRequest struct {
	Query            string
	Response         string
	ResponseLabel    string
	Agent            *core.AgentInstructions
	GoldenExamples   []core.GoldenExample
	RetrievedContext []string
	Criteria         []string
	MinScore         float64
}

// JudgeResult is the parsed rubric verdict, ready to drop into an
// EvaluationResponse.
type JudgeResult struct {
	Score          float64
	Passed         bool
	Reasoning      string
	CriteriaScores string
}

// Judge scores a response with an LLM acting as evaluator, per the fixed
// six-criterion rubric, restricted to the requested criteria subset.
func Judge(ctx context.Context, model core.ModelConfig, req JudgeRequest) (JudgeResult, core.TokenUsage, error) {
	prompt := buildJudgePrompt(req)
	reply, usage, err := llm.ChatComplete(ctx, prompt, model, llm.CompletionParams{})
	if err != nil {
		return JudgeResult{}, core.TokenUsage{}, fmt.Errorf("judge completion: %w", err)
	}
	return parseJudgeReply(reply, effectiveMinScore(req.MinScore)), usage, nil
}

func effectiveMinScore(m float64) float64 {
	if m <= 0 {
		return defaultMinScore
	}
	return m
}

func effectiveCriteria(c []string) []string {
	if len(c) == 0 {
		return allCriteria
	}
	return c
}

// buildJudgePrompt assembles the evaluator prompt: role, query, response,
// optional agent scope, optional golden examples, optional retrieved
// context, then the fixed rubric scoped to the requested criteria.
func buildJudgePrompt(req JudgeRequest) string {
	var b strings.Builder

	b.WriteString("You are an AI evaluator tasked with assessing the quality of responses to user input and provided response.\n\n")

	b.WriteString("USER QUERY:\n")
	b.WriteString(req.Query)
	b.WriteString("\n\n")

	label := req.ResponseLabel
	if label == "" {
		label = "system 'response'"
	}
	fmt.Fprintf(&b, "RESPONSE TO EVALUATE:\nResponse from %s:\n%s\n", label, req.Response)

	if req.Agent != nil {
		b.WriteString("\nAGENT SCOPE:\n")
		if req.Agent.SystemPrompt != "" {
			fmt.Fprintf(&b, "Instructions: %s\n", req.Agent.SystemPrompt)
		}
		if len(req.Agent.ScopeHints) > 0 {
			fmt.Fprintf(&b, "Scope hints: %s\n", strings.Join(req.Agent.ScopeHints, ", "))
		}
	}

	if len(req.GoldenExamples) > 0 {
		b.WriteString("\nREFERENCE EXAMPLES:\n")
		for _, ex := range req.GoldenExamples {
			fmt.Fprintf(&b, "Input: %s\nExpected Output: %s", ex.Input, ex.ExpectedOutput)
			if len(ex.Metadata) > 0 {
				b.WriteString(" (")
				first := true
				for k, v := range ex.Metadata {
					if !first {
						b.WriteString(", ")
					}
					fmt.Fprintf(&b, "%s: %s", k, v)
					first = false
				}
				b.WriteString(")")
			}
			b.WriteString("\n\n")
		}
	}

	if len(req.RetrievedContext) > 0 {
		b.WriteString("\nRETRIEVED CONTEXT:\n")
		for _, c := range req.RetrievedContext {
			b.WriteString("- ")
			b.WriteString(c)
			b.WriteString("\n")
		}
	}

	criteria := effectiveCriteria(req.Criteria)
	scope := strings.Join(criteria, ",")

	b.WriteString("\nConsider all following criteria definition:\n")
	b.WriteString("1. Relevance: How well do the responses address the user's query?\n")
	b.WriteString("2. Accuracy: Are the responses factually correct and reliable?\n")
	b.WriteString("3. Completeness: Do the responses provide comprehensive information?\n")
	b.WriteString("4. Conciseness: Do the responses provide a concise information?\n")
	b.WriteString("5. Clarity: Are the responses clear and easy to understand?\n")
	b.WriteString("6. Usefulness: How helpful are the responses to the user?\n\n")

	fmt.Fprintf(&b, "Evaluate the response only on the following criteria: %s\n\n", scope)

	b.WriteString("Assessment\n\n")
	b.WriteString("Provide your evaluation in the following format:\n")
	b.WriteString("SCORE: [0-1]\n")
	b.WriteString("PASSED: [true/false] (by default true if SCORE >= 0.7)\n")
	b.WriteString("REASONING: [Brief explanation of your evaluation]\n")
	fmt.Fprintf(&b, "CRITERIA_SCORES: %s\n", criteriaTemplate(criteria))
	fmt.Fprintf(&b, "for CRITERIA_SCORES, only include the criteria in %s\n\n", scope)
	b.WriteString("Be objective and thorough in your assessment.")

	return b.String()
}

func criteriaTemplate(criteria []string) string {
	parts := make([]string, len(criteria))
	for i, c := range criteria {
		parts[i] = c + "=[0-1]"
	}
	return strings.Join(parts, ", ")
}

// parseJudgeReply parses the structured SCORE/PASSED/REASONING/CRITERIA_SCORES
// reply. A score above 1 is read as a 0-100 scale and rescaled. passed
// defaults to score >= minScore unless the reply states PASSED explicitly.
func parseJudgeReply(reply string, minScore float64) JudgeResult {
	result := JudgeResult{}
	var scoreSet bool

	for _, line := range strings.Split(reply, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "SCORE:"):
			raw := strings.TrimSpace(strings.TrimPrefix(line, "SCORE:"))
			fields := strings.Fields(raw)
			if len(fields) == 0 {
				result.Score = 0
				result.Passed = false
				scoreSet = true
				continue
			}
			f, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				result.Score = 0
				result.Passed = false
				scoreSet = true
				continue
			}
			if f > 1 {
				f = f / 100
			}
			result.Score = f
			result.Passed = f >= minScore
			scoreSet = true
		case strings.HasPrefix(line, "PASSED:"):
			raw := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, "PASSED:")))
			result.Passed = strings.Contains(raw, "true")
		case strings.HasPrefix(line, "REASONING:"):
			result.Reasoning = strings.TrimSpace(strings.TrimPrefix(line, "REASONING:"))
		case strings.HasPrefix(line, "CRITERIA_SCORES:"):
			result.CriteriaScores = strings.TrimSpace(strings.TrimPrefix(line, "CRITERIA_SCORES:"))
		}
	}

	if !scoreSet {
		result.Score = 0
		result.Passed = result.Score >= minScore
	}
	return result
}

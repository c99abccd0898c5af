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

// Package baseline runs a set of golden examples against a model and judge,
// bounded-concurrency, and aggregates the results overall and by category
// and difficulty.
package baseline

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/mckinsey/ark-evaluator/internal/core"
	"github.com/mckinsey/ark-evaluator/internal/llm"
	"github.com/mckinsey/ark-evaluator/internal/scoring"
)

const (
	minWorkers = 4
	maxWorkers = 16
)

// ExampleResult is the per-example outcome, keyed by its position in the
// input slice by the caller.
type ExampleResult struct {
	Score      float64
	Passed     bool
	Reasoning  string
	TokenUsage core.TokenUsage
	Error      string
}

// Summary is one {count, passed, avgScore, passRate} sub-aggregate, used for
// both per-category and per-difficulty breakdowns.
type Summary struct {
	Count    int
	Passed   int
	AvgScore float64
	PassRate float64
}

// Aggregate is the full baseline run outcome.
type Aggregate struct {
	Total        int
	Passed       int
	Failed       int
	PassRate     float64
	AverageScore float64
	OverallPass  bool
	TokenUsage   core.TokenUsage
	ByCategory   map[string]Summary
	ByDifficulty map[string]Summary
	Results      []ExampleResult
}

// Run generates a response for every example's input via ChatComplete,
// judges it against the example's expected output, and aggregates the
// results. Concurrency is bounded between minWorkers and maxWorkers,
// scaled to the input size. A single example's transport or judging
// failure is recorded as {score:0, passed:false, error} and never aborts
// the run.
func Run(ctx context.Context, model core.ModelConfig, examples []core.GoldenExample, minScore float64) Aggregate {
	results := make([]ExampleResult, len(examples))

	workers := len(examples)
	if workers < minWorkers {
		workers = minWorkers
	}
	if workers > maxWorkers {
		workers = maxWorkers
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, ex := range examples {
		i, ex := i, ex
		g.Go(func() error {
			results[i] = runExample(gctx, model, ex, minScore)
			return nil
		})
	}
	// Every per-example failure is captured inside runExample's returned
	// ExampleResult, so g.Wait() never reports an error here — it only
	// blocks until every example has run.
	_ = g.Wait()

	return aggregate(results, examples, minScore)
}

func runExample(ctx context.Context, model core.ModelConfig, ex core.GoldenExample, minScore float64) ExampleResult {
	generated, genUsage, err := llm.ChatComplete(ctx, ex.Input, model, llm.CompletionParams{})
	if err != nil {
		return ExampleResult{Error: fmt.Sprintf("generation failed: %v", err)}
	}

	judged, judgeUsage, err := scoring.Judge(ctx, model, scoring.JudgeRequest{
		Query:          ex.Input,
		Response:       generated,
		GoldenExamples: []core.GoldenExample{ex},
		MinScore:       minScore,
	})
	if err != nil {
		return ExampleResult{Error: fmt.Sprintf("judging failed: %v", err), TokenUsage: genUsage}
	}

	total := genUsage
	total.Add(judgeUsage)
	return ExampleResult{
		Score:      judged.Score,
		Passed:     judged.Passed,
		Reasoning:  judged.Reasoning,
		TokenUsage: total,
	}
}

func aggregate(results []ExampleResult, examples []core.GoldenExample, minScore float64) Aggregate {
	agg := Aggregate{
		Total:        len(results),
		ByCategory:   map[string]Summary{},
		ByDifficulty: map[string]Summary{},
		Results:      results,
	}

	catScores := map[string][]ExampleResult{}
	diffScores := map[string][]ExampleResult{}
	var scoreSum float64

	for i, r := range results {
		agg.TokenUsage.Add(r.TokenUsage)
		scoreSum += r.Score
		if r.Passed {
			agg.Passed++
		} else {
			agg.Failed++
		}

		ex := examples[i]
		if ex.Category != "" {
			catScores[ex.Category] = append(catScores[ex.Category], r)
		}
		if ex.Difficulty != "" {
			diffScores[ex.Difficulty] = append(diffScores[ex.Difficulty], r)
		}
	}

	if agg.Total > 0 {
		agg.AverageScore = scoreSum / float64(agg.Total)
		agg.PassRate = float64(agg.Passed) / float64(agg.Total)
	}
	agg.OverallPass = agg.AverageScore >= minScore

	for cat, rs := range catScores {
		agg.ByCategory[cat] = summarize(rs)
	}
	for diff, rs := range diffScores {
		agg.ByDifficulty[diff] = summarize(rs)
	}

	return agg
}

func summarize(rs []ExampleResult) Summary {
	s := Summary{Count: len(rs)}
	var sum float64
	for _, r := range rs {
		sum += r.Score
		if r.Passed {
			s.Passed++
		}
	}
	if s.Count > 0 {
		s.AvgScore = sum / float64(s.Count)
		s.PassRate = float64(s.Passed) / float64(s.Count)
	}
	return s
}

// Metadata flattens Aggregate into the map<string,string> shape the
// downstream controller stores on CRD annotations: category_<c>_count,
// category_<c>_avg_score, category_<c>_passed, category_<c>_pass_rate, and
// the same set under difficulty_<d>_*.
func Metadata(agg Aggregate) map[string]string {
	md := map[string]string{
		"total":         strconv.Itoa(agg.Total),
		"passed":        strconv.Itoa(agg.Passed),
		"failed":        strconv.Itoa(agg.Failed),
		"pass_rate":     formatFloat(agg.PassRate),
		"average_score": formatFloat(agg.AverageScore),
	}
	flattenInto(md, "category", agg.ByCategory)
	flattenInto(md, "difficulty", agg.ByDifficulty)
	return md
}

func flattenInto(md map[string]string, prefix string, summaries map[string]Summary) {
	for key, s := range summaries {
		md[fmt.Sprintf("%s_%s_count", prefix, key)] = strconv.Itoa(s.Count)
		md[fmt.Sprintf("%s_%s_passed", prefix, key)] = strconv.Itoa(s.Passed)
		md[fmt.Sprintf("%s_%s_avg_score", prefix, key)] = formatFloat(s.AvgScore)
		md[fmt.Sprintf("%s_%s_pass_rate", prefix, key)] = formatFloat(s.PassRate)
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}

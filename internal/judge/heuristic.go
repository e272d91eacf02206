package judge

import "strings"

// heuristicScore rates a response from surface features only.
func heuristicScore(response string) int {
	score := 50
	if len(response) > 200 {
		score += 10
	}
	if len(response) > 500 {
		score += 10
	}
	if strings.ContainsAny(response, "\"“”") {
		score += 5
	}
	if strings.ContainsAny(response, "!?") {
		score += 5
	}
	if len(strings.Split(response, ".")) > 3 {
		score += 5
	}
	return min(score, 100)
}

func uniform(score int) Scores {
	return Scores{Clarity: score, Engagement: score, Creativity: score, Effectiveness: score, Specificity: score}
}

func fallbackVerdict(responseA, responseB string) Verdict {
	a, b := heuristicScore(responseA), heuristicScore(responseB)
	v := Verdict{
		Feedback: "The judge could not produce a detailed analysis. Scores below are a basic comparison of the responses " +
			"by length and structure; rerun the comparison for a full verdict.",
		Scores:    Pair[Scores]{PromptA: uniform(a), PromptB: uniform(b)},
		Winner:    PromptA,
		Reasoning: "Response A scored at least as high on the heuristic comparison.",
		Recommendations: Pair[[]string]{
			PromptA: []string{"Consider adding more specific instructions", "Try varying the tone or style"},
			PromptB: []string{"Add more context or background information", "Be more explicit about the desired output format"},
		},
		OverallAssessment: "Both prompts produced responses. The winner was chosen by response length and structure.",
		Fallback:          true,
	}
	if b > a {
		v.Winner = PromptB
		v.Reasoning = "Response B scored higher on the heuristic comparison."
	}
	return v
}

package quiz

// Score derives aggregate statistics from s without mutating it.
func Score(s *Session) Stats {
	if s == nil {
		return Stats{}
	}
	return s.Stats()
}

// ScoreAnswers computes stats for index-aligned questions and answers.
// Answers beyond the question set are ignored.
func ScoreAnswers(qs QuestionSet, answers []AnswerState) Stats {
	stats := Stats{Total: len(qs)}
	for i, a := range answers {
		if i >= len(qs) || a.Selected == nil {
			continue
		}
		stats.Answered++
		if *a.Selected == qs[i].CorrectIndex {
			stats.Correct++
		}
	}
	stats.AccuracyPercent = accuracyPercent(stats.Correct, stats.Answered)
	return stats
}

// accuracyPercent rounds correct/answered*100 half-up using integer math.
func accuracyPercent(correct, answered int) int {
	if answered <= 0 {
		return 0
	}
	return (200*correct + answered) / (2 * answered)
}

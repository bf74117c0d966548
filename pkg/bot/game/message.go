package game

import (
	"fmt"
	"strings"

	"github.com/smith3v/tg-word-quiz/pkg/quiz"
)

// PromptText is the question message: the meaning, the answer format and,
// once revealed, the first letter.
func PromptText(item quiz.Item, answerLength int, hint string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "意味: %s\n", item.Prompt)
	if answerLength > 0 {
		fmt.Fprintf(&sb, "Type the first %d letters of the word.", answerLength)
	} else {
		sb.WriteString("Type the word.")
	}
	if hint != "" {
		fmt.Fprintf(&sb, "\nHint: %s…", hint)
	}
	return sb.String()
}

// FeedbackText replaces the question once it has been judged.
func FeedbackText(outcome quiz.Outcome) string {
	head := fmt.Sprintf("意味: %s\n", outcome.Item.Prompt)
	switch outcome.Kind {
	case quiz.OutcomeCorrect:
		return head + fmt.Sprintf("✅ %s! %s", outcome.Kind.Label(), outcome.Item.Answer)
	case quiz.OutcomeWrong:
		return head + fmt.Sprintf("❌ %s. The answer is %s", outcome.Kind.Label(), outcome.Item.Answer)
	case quiz.OutcomeTimeout:
		return head + fmt.Sprintf("⏰ Time is up! The answer is %s", outcome.Item.Answer)
	default:
		return head + fmt.Sprintf("⏭ Skipped. The answer is %s", outcome.Item.Answer)
	}
}

// DoneText is sent when every word has been answered correctly.
func DoneText(statsText string) string {
	return "🎉 All words answered correctly!\n" + statsText
}

// InvalidAnswerText asks again after input that cannot be judged.
func InvalidAnswerText(answerLength int) string {
	if answerLength <= 0 {
		return "Please type an answer."
	}
	return fmt.Sprintf("Please type exactly %d ASCII letters.", answerLength)
}

func formatStats(stats quiz.Stats) string {
	return fmt.Sprintf(
		"正解 %d / 不正解 %d / スキップ %d / 時間切れ %d\nRemaining: %d of %d",
		stats.Correct,
		stats.Wrong,
		stats.Skipped,
		stats.TimedOut,
		stats.Remaining,
		stats.Total,
	)
}

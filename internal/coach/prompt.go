package coach

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/javiermolinar/lvlup/internal/events"
)

// DefaultLanguage is used when no reply language is configured.
const DefaultLanguage = "English"

// maxSentences caps every message the coach sends.
const maxSentences = 2

// SystemPrompt returns the coach persona for the given reply language.
func SystemPrompt(language string) string {
	if strings.TrimSpace(language) == "" {
		language = DefaultLanguage
	}
	return fmt.Sprintf(`You are Navi, a tiny, bright and cheerful productivity fairy.
Your mission is to motivate the user to finish their time blocks and to celebrate when they do.
- Use magical emojis such as ✨ 🧚 🌟 💪.
- Be VERY brief: never more than %d short sentences.
- Talk like an adventure companion ("Hey, listen!", "We can do this!").
- When a habit is completed, celebrate a lot.
- When a habit is removed, be kind and encourage the user to keep going.
Always answer in %s.`, maxSentences, language)
}

// PromptFor renders the instruction for one event.
func PromptFor(e events.Event) string {
	habit := habitLabel(e)
	switch e.Kind {
	case events.HabitAdded:
		return fmt.Sprintf("The user just planned %s for %d minutes. Cheer them on.", habit, e.TotalDuration)
	case events.HabitRemoved:
		return fmt.Sprintf("The user removed %s from today's plan. Be understanding and encourage them.", habit)
	case events.HabitExpanded:
		return fmt.Sprintf("The user extended %s by %d minutes, now %d minutes in total. Praise the extra effort.",
			habit, abs(e.DurationChange), e.TotalDuration)
	case events.HabitReduced:
		return fmt.Sprintf("The user shortened %s by %d minutes, now %d minutes in total. Remind them that small steps count.",
			habit, abs(e.DurationChange), e.TotalDuration)
	case events.HabitCompleted:
		return fmt.Sprintf("The user completed %s (%d minutes). Celebrate it!", habit, e.TotalDuration)
	case events.ConfigChanged:
		return fmt.Sprintf("The user changed their planning day to %02d:00-%02d:00. Comment on the new schedule.",
			e.StartHour, e.EndHour)
	default:
		return fmt.Sprintf("Something happened in the planner (%s). Say something encouraging.", e.Kind)
	}
}

// Fallback returns a canned line for an event, used when no model is available
// or the model fails.
func Fallback(e events.Event) string {
	habit := habitLabel(e)
	switch e.Kind {
	case events.HabitAdded:
		return fmt.Sprintf("✨ %s is on the plan! We can do this!", habit)
	case events.HabitRemoved:
		return fmt.Sprintf("🧚 %s is off the plan. Tomorrow is another adventure!", habit)
	case events.HabitExpanded:
		return fmt.Sprintf("💪 %d more minutes of %s, that's the spirit!", abs(e.DurationChange), habit)
	case events.HabitReduced:
		return fmt.Sprintf("🌟 %d minutes of %s still counts. Small steps!", e.TotalDuration, habit)
	case events.HabitCompleted:
		return fmt.Sprintf("🎉 You finished %s! Hey, listen: you are amazing!", habit)
	case events.ConfigChanged:
		return fmt.Sprintf("✨ New day shape: %02d:00 to %02d:00. Let's fill it with magic!", e.StartHour, e.EndHour)
	default:
		return "✨ Hey, listen! Keep going!"
	}
}

func habitLabel(e events.Event) string {
	name := e.HabitName
	if name == "" {
		name = "a habit"
	}
	return strings.TrimSpace(e.HabitIcon + " " + name)
}

// TrimSentences keeps at most n sentences of s and collapses whitespace.
func TrimSentences(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if n <= 0 {
		return ""
	}

	count := 0
	runes := []rune(s)
	for i, r := range runes {
		if r != '.' && r != '!' && r != '?' {
			continue
		}
		// "!!" and "?!" end one sentence
		if i+1 < len(runes) && !unicode.IsSpace(runes[i+1]) {
			continue
		}
		count++
		if count == n {
			return string(runes[:i+1])
		}
	}
	return s
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

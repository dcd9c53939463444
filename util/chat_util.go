package util

import (
	"strings"
	"unicode/utf8"

	"github.com/aiwolfdial/whos-the-ai/model"
)

var cannedReplies = []string{
	"Hey! 👋",
	"lol yeah totally! 😄",
	"haha nice one! 👍",
	"Hmm, interesting point...",
	"I'm thinking about this...",
	"That's a good observation.",
	"Let me consider that.",
	"I see what you mean.",
}

func CannedReply(rnd Rand) string {
	return cannedReplies[rnd.IntN(len(cannedReplies))]
}

func IsCannedReply(text string) bool {
	for _, reply := range cannedReplies {
		if reply == text {
			return true
		}
	}
	return false
}

// FormatChatHistory renders messages as "name: text" lines.
func FormatChatHistory(messages []model.Message) string {
	var builder strings.Builder
	for i, message := range messages {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(message.AuthorName)
		builder.WriteString(": ")
		builder.WriteString(message.Text)
	}
	return builder.String()
}

func AppendChatHistory(history, speaker, message, response string) string {
	lines := speaker + ": " + message + "\nAI: " + response
	if history == "" {
		return lines
	}
	return history + "\n" + lines
}

// NormalizeText collapses a chat line onto one line and cuts it to maxLength runes.
func NormalizeText(text string, maxLength int) string {
	text = strings.Join(strings.Fields(text), " ")
	if maxLength > 0 {
		text = TrimLength(text, maxLength)
	}
	return text
}

func TrimLength(text string, length int) string {
	if utf8.RuneCountInString(text) <= length {
		return text
	}
	runes := []rune(text)
	return string(runes[:length])
}

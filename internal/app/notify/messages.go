package notify

// ExcerptLimit is the number of characters of answer content shown in a
// notification body before it is cut.
const ExcerptLimit = 50

const ellipsis = "..."

// Compose returns the title and body for a notification of the given kind.
func Compose(kind Kind, p Payload) (title, body string) {
	switch kind {
	case KindAssigned:
		return "A question has been assigned to you", p.Title
	case KindAnswerAdded:
		return "A new answer has arrived", p.Title + ": " + Excerpt(p.Content)
	case KindExtraQuestionAdded:
		return "You have a follow-up question", p.Title + ": " + Excerpt(p.Content)
	default:
		return "Question update", p.Title
	}
}

// Excerpt returns content cut to ExcerptLimit characters with a trailing
// "..." when longer. Content of ExcerptLimit characters or fewer is returned
// whole. Push bodies are plain text, so content is passed through verbatim.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= ExcerptLimit {
		return content
	}
	return string(runes[:ExcerptLimit]) + ellipsis
}

package notify_test

import (
	"strings"
	"testing"

	"github.com/dalemusser/questionhub/internal/app/notify"
	"github.com/stretchr/testify/require"
)

func TestExcerpt_ExactlyLimitIsWhole(t *testing.T) {
	content := strings.Repeat("a", 50)
	require.Equal(t, content, notify.Excerpt(content))
}

func TestExcerpt_OneOverLimitIsCut(t *testing.T) {
	content := strings.Repeat("a", 50) + "b"
	require.Equal(t, strings.Repeat("a", 50)+"...", notify.Excerpt(content))
}

func TestExcerpt_CountsCharactersNotBytes(t *testing.T) {
	content := strings.Repeat("가", 50)
	require.Equal(t, content, notify.Excerpt(content))

	long := strings.Repeat("가", 51)
	require.Equal(t, strings.Repeat("가", 50)+"...", notify.Excerpt(long))
}

func TestExcerpt_KeepsCodeVerbatim(t *testing.T) {
	for _, content := range []string{
		"if a<b && b>c return",
		"use vector<int> v;",
		"Tom &amp; Jerry",
		"<b>bold</b>",
	} {
		require.Equal(t, content, notify.Excerpt(content))
	}

	long := "for (i = 0; i<n && v[i]>0; i++) { total += v[i]; } return total;"
	require.Equal(t, string([]rune(long)[:50])+"...", notify.Excerpt(long))
}

func TestCompose(t *testing.T) {
	p := notify.Payload{QuestionID: "q1", Title: "Heaps", Content: "try a min-heap"}

	title, body := notify.Compose(notify.KindAssigned, p)
	require.NotEmpty(t, title)
	require.Equal(t, "Heaps", body)

	_, body = notify.Compose(notify.KindAnswerAdded, p)
	require.Equal(t, "Heaps: try a min-heap", body)

	_, body = notify.Compose(notify.KindExtraQuestionAdded, p)
	require.Equal(t, "Heaps: try a min-heap", body)
}

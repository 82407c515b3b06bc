package trainer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyInputRecognizesCommands(t *testing.T) {
	cases := []struct {
		text string
		want InputKind
	}{
		{CmdNext, InputNext},
		{CmdAddPhrase, InputAddPhrase},
		{CmdDeletePhrase, InputDeletePhrase},
		{CmdStats, InputStats},
		{CmdExamples, InputExamples},
		{CmdCancel, InputCancel},
		{"  " + CmdNext + "  ", InputNext},
		{"Hello there", InputAnswer},
		{"дальше", InputAnswer},
		{"", InputAnswer},
	}

	for _, tc := range cases {
		got := ClassifyInput(tc.text)
		assert.Equal(t, tc.want, got.Kind, "input %q", tc.text)
	}
}

func TestCheckAnswerIgnoresCaseAndWhitespace(t *testing.T) {
	session := &Session{PhraseID: 1, English: "How are you doing?", Russian: "Как твои дела?"}

	assert.True(t, session.CheckAnswer("How are you doing?"))
	assert.True(t, session.CheckAnswer("  how are you doing?  "))
	assert.True(t, session.CheckAnswer("HOW ARE YOU DOING?"))
	assert.False(t, session.CheckAnswer("How are you doing"))
	assert.False(t, session.CheckAnswer("What's up?"))
	assert.False(t, session.CheckAnswer(""))
}

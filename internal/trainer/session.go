package trainer

import "strings"

// Keyboard button labels that double as commands. Button presses arrive
// as plain message text, so these exact strings are reserved.
const (
	CmdNext         = "Дальше ⏭"
	CmdAddPhrase    = "Добавить фразу ➕"
	CmdDeletePhrase = "Удалить фразу 🔙"
	CmdStats        = "Статистика 📊"
	CmdExamples     = "Примеры 💡"
	CmdCancel       = "❌ Отмена"
)

// InputKind tags an inbound message as a command or an answer attempt
type InputKind int

const (
	// InputAnswer is free text to be checked against the posed phrase
	InputAnswer InputKind = iota
	InputNext
	InputAddPhrase
	InputDeletePhrase
	InputStats
	InputExamples
	InputCancel
)

// Input is the classified form of an inbound message
type Input struct {
	Kind InputKind
	Text string
}

// ClassifyInput decides whether inbound text is a command button press or
// an answer, before any answer checking happens. Command presses must
// never be scored as wrong answers.
func ClassifyInput(text string) Input {
	trimmed := strings.TrimSpace(text)
	switch trimmed {
	case CmdNext:
		return Input{Kind: InputNext, Text: trimmed}
	case CmdAddPhrase:
		return Input{Kind: InputAddPhrase, Text: trimmed}
	case CmdDeletePhrase:
		return Input{Kind: InputDeletePhrase, Text: trimmed}
	case CmdStats:
		return Input{Kind: InputStats, Text: trimmed}
	case CmdExamples:
		return Input{Kind: InputExamples, Text: trimmed}
	case CmdCancel:
		return Input{Kind: InputCancel, Text: trimmed}
	}
	return Input{Kind: InputAnswer, Text: trimmed}
}

// Session holds the question currently posed in one conversation. It is
// owned by that conversation's handler, overwritten whenever a new phrase
// is posed and lost on restart by design.
type Session struct {
	PhraseID int64
	English  string // the correct answer text
	Russian  string // the translation shown in the prompt
	Options  []Option
}

// CheckAnswer compares the user's text with the posed phrase:
// case-insensitive, whitespace-trimmed, no fuzzy matching.
func (s *Session) CheckAnswer(text string) bool {
	return strings.EqualFold(strings.TrimSpace(text), strings.TrimSpace(s.English))
}

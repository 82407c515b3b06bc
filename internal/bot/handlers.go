package bot

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/trainer"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/pkg/models"
)

const deleteListLimit = 20

// handleUpdate dispatches a single Telegram update
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.CallbackQuery != nil {
		b.handleCallbackQuery(ctx, update.CallbackQuery)
		return
	}

	message := update.Message
	if message == nil || message.From == nil {
		return
	}

	userID := message.From.ID
	chatID := message.Chat.ID

	b.registerUser(ctx, message.From)

	if message.IsCommand() {
		switch message.Command() {
		case "start":
			b.handleStart(ctx, chatID, userID, message.From.FirstName)
		case "phrases":
			b.handlePhraseList(ctx, chatID, userID)
		case "stats":
			b.handleStats(ctx, chatID, userID)
		case "examples":
			b.handleExamples(ctx, chatID, userID)
		case "users":
			if b.cfg.IsAdmin(userID) {
				b.handleAdminStats(ctx, chatID)
			} else {
				b.send(tgbotapi.NewMessage(chatID, "Эта команда доступна только администраторам."))
			}
		default:
			b.send(tgbotapi.NewMessage(chatID, "Неизвестная команда. Нажми «Дальше ⏭», чтобы продолжить тренировку."))
		}
		return
	}

	// Button presses arrive as plain text. Classify before any answer
	// checking so a command press is never scored as a wrong answer.
	input := trainer.ClassifyInput(message.Text)
	switch input.Kind {
	case trainer.InputNext:
		delete(b.addStates, userID)
		b.poseNext(ctx, chatID, userID)
	case trainer.InputAddPhrase:
		b.startAddPhrase(chatID, userID)
	case trainer.InputDeletePhrase:
		delete(b.addStates, userID)
		b.showDeleteMenu(ctx, chatID, userID)
	case trainer.InputStats:
		delete(b.addStates, userID)
		b.handleStats(ctx, chatID, userID)
	case trainer.InputExamples:
		delete(b.addStates, userID)
		b.handleExamples(ctx, chatID, userID)
	case trainer.InputCancel:
		b.handleCancel(ctx, chatID, userID)
	case trainer.InputAnswer:
		if state, ok := b.addStates[userID]; ok {
			b.continueAddPhrase(ctx, chatID, userID, state, input.Text)
			return
		}
		b.handleAnswer(ctx, chatID, userID, input.Text)
	}
}

// registerUser upserts the sender so reminders and stats can find them
func (b *Bot) registerUser(ctx context.Context, from *tgbotapi.User) {
	user := &models.User{
		ID:        from.ID,
		Username:  from.UserName,
		FirstName: from.FirstName,
	}
	if err := b.userRepo.Upsert(ctx, user); err != nil {
		log.Printf("Error registering user %d: %v", from.ID, err)
	}
}

// handleStart greets the user and poses the first phrase
func (b *Bot) handleStart(ctx context.Context, chatID, userID int64, firstName string) {
	name := firstName
	if name == "" {
		name = "друг"
	}

	welcome := fmt.Sprintf("Привет, %s! 👋\n\n"+
		"Я помогу тебе выучить разговорные английские фразы.\n"+
		"Я показываю перевод, а ты выбираешь правильную фразу из четырёх вариантов.\n"+
		"Фраза считается выученной после %d правильных ответов подряд.\n\n"+
		"Команды:\n"+
		"/phrases - мои фразы\n"+
		"/stats - статистика\n"+
		"/examples - примеры употребления", name, models.MasteryThreshold)

	b.send(tgbotapi.NewMessage(chatID, welcome))
	b.poseNext(ctx, chatID, userID)
}

// poseNext selects the next phrase, builds its answer options and sends
// the question. The new session replaces any previously posed one.
func (b *Bot) poseNext(ctx context.Context, chatID, userID int64) {
	lastShown, err := b.progressRepo.LastShownPhrase(ctx, userID)
	if err != nil {
		log.Printf("Error getting last shown phrase for user %d: %v", userID, err)
	}

	phrase, err := b.selector.Next(ctx, userID, lastShown)
	if err != nil {
		log.Printf("Error selecting phrase for user %d: %v", userID, err)
		b.send(tgbotapi.NewMessage(chatID, "Что-то пошло не так, попробуй ещё раз."))
		return
	}
	if phrase == nil {
		b.sendEmptyCatalog(chatID)
		return
	}

	options, err := b.distractors.Build(ctx, phrase)
	if err != nil {
		log.Printf("Error building options for phrase %d: %v", phrase.ID, err)
		b.send(tgbotapi.NewMessage(chatID, "Что-то пошло не так, попробуй ещё раз."))
		return
	}

	if err := b.progressRepo.MarkShown(ctx, userID, phrase.ID); err != nil {
		log.Printf("Error marking phrase %d shown for user %d: %v", phrase.ID, userID, err)
	}

	b.sessions[userID] = &trainer.Session{
		PhraseID: phrase.ID,
		English:  phrase.English,
		Russian:  phrase.Russian,
		Options:  options,
	}

	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("🇷🇺 Выбери перевод:\n\"%s\"", phrase.Russian))
	msg.ReplyMarkup = questionKeyboard(options)
	b.send(msg)
}

// sendEmptyCatalog tells the user there is nothing to train on yet
func (b *Bot) sendEmptyCatalog(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "У вас нет фраз для изучения. Добавьте первую фразу.")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(trainer.CmdAddPhrase)),
	)
	b.send(msg)
}

// questionKeyboard lays out the answer options above the command buttons
func questionKeyboard(options []trainer.Option) tgbotapi.ReplyKeyboardMarkup {
	var rows [][]tgbotapi.KeyboardButton
	for i := 0; i < len(options); i += 2 {
		row := []tgbotapi.KeyboardButton{tgbotapi.NewKeyboardButton(options[i].Text)}
		if i+1 < len(options) {
			row = append(row, tgbotapi.NewKeyboardButton(options[i+1].Text))
		}
		rows = append(rows, row)
	}
	rows = append(rows, commandRows()...)
	return tgbotapi.NewReplyKeyboard(rows...)
}

// commandRows is the fixed command button block under every question
func commandRows() [][]tgbotapi.KeyboardButton {
	return [][]tgbotapi.KeyboardButton{
		{tgbotapi.NewKeyboardButton(trainer.CmdNext)},
		{
			tgbotapi.NewKeyboardButton(trainer.CmdAddPhrase),
			tgbotapi.NewKeyboardButton(trainer.CmdDeletePhrase),
		},
		{
			tgbotapi.NewKeyboardButton(trainer.CmdStats),
			tgbotapi.NewKeyboardButton(trainer.CmdExamples),
		},
	}
}

// handleAnswer grades free text against the posed phrase. The session is
// consumed, feedback is sent and the next question follows immediately,
// for wrong answers together with the correct text and translation.
func (b *Bot) handleAnswer(ctx context.Context, chatID, userID int64, text string) {
	session, ok := b.sessions[userID]
	if !ok {
		b.send(tgbotapi.NewMessage(chatID, "Нажми «Дальше ⏭», чтобы получить фразу для тренировки."))
		return
	}
	delete(b.sessions, userID)

	correct := session.CheckAnswer(text)
	progress, err := b.tracker.RecordAnswer(ctx, userID, session.PhraseID, correct)
	if err != nil {
		log.Printf("Error recording answer for user %d phrase %d: %v", userID, session.PhraseID, err)
		b.send(tgbotapi.NewMessage(chatID, "Что-то пошло не так, попробуй ещё раз."))
		return
	}

	if correct {
		feedback := "✅ Правильно!"
		if progress.IsLearned {
			feedback = fmt.Sprintf("✅ Правильно!\n🎉 Фраза выучена (%d раз подряд)!", progress.CorrectStreak)
		}
		b.send(tgbotapi.NewMessage(chatID, feedback))
		b.poseNext(ctx, chatID, userID)
		return
	}

	b.send(tgbotapi.NewMessage(chatID, fmt.Sprintf(
		"❌ Неправильно.\n\nПравильный ответ:\n🇬🇧 %s\n🇷🇺 %s", session.English, session.Russian)))
	b.poseNext(ctx, chatID, userID)
}

// startAddPhrase begins the two-step add dialog
func (b *Bot) startAddPhrase(chatID, userID int64) {
	b.addStates[userID] = &addState{Step: stepEnglish}

	msg := tgbotapi.NewMessage(chatID, "Введи фразу на английском:")
	msg.ReplyMarkup = tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(trainer.CmdCancel)),
	)
	b.send(msg)
}

// continueAddPhrase consumes the next free-text message of the add dialog
func (b *Bot) continueAddPhrase(ctx context.Context, chatID, userID int64, state *addState, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		b.send(tgbotapi.NewMessage(chatID, "Фраза не может быть пустой. Попробуй ещё раз."))
		return
	}

	switch state.Step {
	case stepEnglish:
		state.English = text
		state.Step = stepRussian
		b.send(tgbotapi.NewMessage(chatID, "Теперь введи перевод на русском:"))
	case stepRussian:
		delete(b.addStates, userID)

		phraseID, created, err := b.phraseRepo.Add(ctx, state.English, text, "custom", "")
		if err != nil {
			log.Printf("Error adding phrase for user %d: %v", userID, err)
			b.send(tgbotapi.NewMessage(chatID, "Не удалось добавить фразу, попробуй ещё раз."))
			return
		}
		if err := b.progressRepo.Link(ctx, userID, phraseID); err != nil {
			log.Printf("Error linking phrase %d to user %d: %v", phraseID, userID, err)
			b.send(tgbotapi.NewMessage(chatID, "Не удалось добавить фразу, попробуй ещё раз."))
			return
		}

		feedback := fmt.Sprintf("✅ Фраза добавлена:\n🇬🇧 %s\n🇷🇺 %s", state.English, text)
		if !created {
			feedback = fmt.Sprintf("Эта фраза уже есть в каталоге, добавил её в твой список:\n🇬🇧 %s\n🇷🇺 %s", state.English, text)
		}
		b.send(tgbotapi.NewMessage(chatID, feedback))
		b.poseNext(ctx, chatID, userID)
	}
}

// handleCancel aborts the add dialog and returns to training
func (b *Bot) handleCancel(ctx context.Context, chatID, userID int64) {
	if _, ok := b.addStates[userID]; ok {
		delete(b.addStates, userID)
		b.send(tgbotapi.NewMessage(chatID, "Отменено."))
	}
	b.poseNext(ctx, chatID, userID)
}

// showDeleteMenu lists the user's phrases as inline delete buttons
func (b *Bot) showDeleteMenu(ctx context.Context, chatID, userID int64) {
	phrases, err := b.progressRepo.UserPhrases(ctx, userID, deleteListLimit)
	if err != nil {
		log.Printf("Error listing phrases for user %d: %v", userID, err)
		b.send(tgbotapi.NewMessage(chatID, "Что-то пошло не так, попробуй ещё раз."))
		return
	}
	if len(phrases) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "У тебя пока нет своих фраз."))
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range phrases {
		label := fmt.Sprintf("%s — %s", p.English, p.Russian)
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, fmt.Sprintf("delete_phrase_%d", p.PhraseID)),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("❌ Отмена", "cancel_delete"),
	))

	msg := tgbotapi.NewMessage(chatID, "Выбери фразу для удаления:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	b.send(msg)
}

// handleCallbackQuery processes inline button presses of the delete menu
func (b *Bot) handleCallbackQuery(ctx context.Context, callback *tgbotapi.CallbackQuery) {
	userID := callback.From.ID
	chatID := callback.Message.Chat.ID

	if _, err := b.api.Request(tgbotapi.NewCallback(callback.ID, "")); err != nil {
		log.Printf("Error answering callback: %v", err)
	}

	data := callback.Data
	switch {
	case strings.HasPrefix(data, "delete_phrase_"):
		phraseID, err := strconv.ParseInt(strings.TrimPrefix(data, "delete_phrase_"), 10, 64)
		if err != nil {
			log.Printf("Error parsing delete callback %q: %v", data, err)
			return
		}
		if err := b.progressRepo.DeleteLink(ctx, userID, phraseID); err != nil {
			log.Printf("Error deleting phrase %d for user %d: %v", phraseID, userID, err)
			b.send(tgbotapi.NewMessage(chatID, "Не удалось удалить фразу, попробуй ещё раз."))
			return
		}
		// A deleted phrase must not stay posed
		if session, ok := b.sessions[userID]; ok && session.PhraseID == phraseID {
			delete(b.sessions, userID)
		}
		edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, "✅ Фраза удалена из твоего списка.")
		b.send(edit)
	case data == "cancel_delete":
		edit := tgbotapi.NewEditMessageText(chatID, callback.Message.MessageID, "Удаление отменено.")
		b.send(edit)
	}
}

// handlePhraseList shows the user's phrases with their progress
func (b *Bot) handlePhraseList(ctx context.Context, chatID, userID int64) {
	phrases, err := b.progressRepo.UserPhrases(ctx, userID, deleteListLimit)
	if err != nil {
		log.Printf("Error listing phrases for user %d: %v", userID, err)
		b.send(tgbotapi.NewMessage(chatID, "Что-то пошло не так, попробуй ещё раз."))
		return
	}
	if len(phrases) == 0 {
		b.send(tgbotapi.NewMessage(chatID, "У тебя пока нет своих фраз. Нажми «Добавить фразу ➕»."))
		return
	}

	var sb strings.Builder
	sb.WriteString("📚 Твои фразы:\n\n")
	for i, p := range phrases {
		mark := "🔄"
		if p.IsLearned {
			mark = "✅"
		}
		sb.WriteString(fmt.Sprintf("%d. %s %s — %s (серия: %d)\n", i+1, mark, p.English, p.Russian, p.CorrectStreak))
	}
	b.send(tgbotapi.NewMessage(chatID, sb.String()))
}

// handleStats sends the user's learning statistics
func (b *Bot) handleStats(ctx context.Context, chatID, userID int64) {
	total, err := b.progressRepo.CountUserPhrases(ctx, userID)
	if err != nil {
		log.Printf("Error counting phrases for user %d: %v", userID, err)
		b.send(tgbotapi.NewMessage(chatID, "Статистика пока недоступна."))
		return
	}
	learned, err := b.progressRepo.CountLearned(ctx, userID)
	if err != nil {
		log.Printf("Error counting learned phrases for user %d: %v", userID, err)
		b.send(tgbotapi.NewMessage(chatID, "Статистика пока недоступна."))
		return
	}

	percent := 0
	if total > 0 {
		percent = learned * 100 / total
	}

	stats := fmt.Sprintf("📊 Твоя статистика:\n\n"+
		"Всего фраз: %d\n"+
		"Выучено: %d\n"+
		"Прогресс: %d%%", total, learned, percent)
	b.send(tgbotapi.NewMessage(chatID, stats))
}

// handleExamples looks up usage examples for the posed phrase, falling
// back to the last shown one.
func (b *Bot) handleExamples(ctx context.Context, chatID, userID int64) {
	var english string
	if session, ok := b.sessions[userID]; ok {
		english = session.English
	} else {
		phraseID, err := b.progressRepo.LastShownPhrase(ctx, userID)
		if err != nil || phraseID == 0 {
			b.send(tgbotapi.NewMessage(chatID, "Сначала получи фразу: нажми «Дальше ⏭»."))
			return
		}
		phrase, err := b.phraseRepo.GetByID(ctx, phraseID)
		if err != nil {
			log.Printf("Error getting phrase %d: %v", phraseID, err)
			b.send(tgbotapi.NewMessage(chatID, "Сначала получи фразу: нажми «Дальше ⏭»."))
			return
		}
		english = phrase.English
	}

	lookupCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	msg := tgbotapi.NewMessage(chatID, b.dict.PhraseExamples(lookupCtx, english))
	msg.ParseMode = "Markdown"
	b.send(msg)
}

// handleAdminStats sends system-wide counters
func (b *Bot) handleAdminStats(ctx context.Context, chatID int64) {
	users, err := b.userRepo.Count(ctx)
	if err != nil {
		log.Printf("Error counting users: %v", err)
		return
	}
	active, err := b.userRepo.CountActive(ctx)
	if err != nil {
		log.Printf("Error counting active users: %v", err)
		return
	}
	phrases, err := b.phraseRepo.Count(ctx)
	if err != nil {
		log.Printf("Error counting phrases: %v", err)
		return
	}

	stats := fmt.Sprintf("👥 Пользователи\n\n"+
		"Всего: %d\n"+
		"Активных: %d\n"+
		"Фраз в каталоге: %d", users, active, phrases)
	b.send(tgbotapi.NewMessage(chatID, stats))
}

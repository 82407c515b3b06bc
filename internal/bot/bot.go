// Package bot wires the Telegram transport to the training engine. All
// learning decisions live in internal/trainer; this package only turns
// updates into engine calls and engine results into messages.
package bot

import (
	"context"
	"fmt"
	"log"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/config"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/database"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/dictionary"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/scheduler"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/trainer"
)

// addStep is the position inside the two-step add-phrase dialog
type addStep int

const (
	stepEnglish addStep = iota
	stepRussian
)

// addState holds a user's in-flight add-phrase dialog
type addState struct {
	Step    addStep
	English string
}

// Bot is the Telegram bot application
type Bot struct {
	api          *tgbotapi.BotAPI
	cfg          *config.Config
	userRepo     *database.UserRepository
	phraseRepo   *database.PhraseRepository
	progressRepo *database.ProgressRepository
	selector     *trainer.Selector
	distractors  *trainer.DistractorBuilder
	tracker      *trainer.Tracker
	dict         *dictionary.Client
	scheduler    *scheduler.Scheduler

	// Conversation state, keyed by user ID. Updates are processed
	// sequentially so these maps need no locking. Lost on restart.
	sessions  map[int64]*trainer.Session
	addStates map[int64]*addState
}

// New creates a bot instance over an already connected database
func New(cfg *config.Config) (*Bot, error) {
	if database.DB == nil {
		return nil, fmt.Errorf("database connection is not established")
	}

	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("unable to create bot: %v", err)
	}

	phraseRepo := database.NewPhraseRepository()
	progressRepo := database.NewProgressRepository()

	b := &Bot{
		api:          api,
		cfg:          cfg,
		userRepo:     database.NewUserRepository(),
		phraseRepo:   phraseRepo,
		progressRepo: progressRepo,
		selector:     trainer.NewSelector(phraseRepo, progressRepo),
		distractors:  trainer.NewDistractorBuilder(phraseRepo),
		tracker:      trainer.NewTracker(progressRepo),
		dict:         dictionary.New(cfg.YandexAPIKey),
		sessions:     make(map[int64]*trainer.Session),
		addStates:    make(map[int64]*addState),
	}
	return b, nil
}

// Start begins long polling and blocks until ctx is cancelled. Updates
// are handled one at a time: Telegram delivers a private chat's messages
// in order, and handling them in order keeps each conversation's session
// state consistent.
func (b *Bot) Start(ctx context.Context) error {
	log.Printf("Authorized on account %s", b.api.Self.UserName)

	if b.cfg.ReminderEnabled {
		b.scheduler = scheduler.New(b)
		b.scheduler.Start()
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.Stop()
			return nil
		case update, ok := <-updates:
			if !ok {
				b.Stop()
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

// Stop shuts down the scheduler and the update stream
func (b *Bot) Stop() {
	if b.scheduler != nil {
		b.scheduler.Stop()
	}
	b.api.StopReceivingUpdates()
	log.Println("Bot stopped")
}

// SendReminder implements scheduler.Notifier. For private chats the chat
// ID equals the user ID.
func (b *Bot) SendReminder(userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	if _, err := b.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to user %d: %v", userID, err)
	}
	return nil
}

// send delivers a message, logging delivery failures instead of
// returning them
func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("Error sending message: %v", err)
	}
}

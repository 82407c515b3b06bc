package scheduler

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/grigorevrodion-lab/EnglishCards-Bot/internal/database"
)

// Расписание напоминаний по умолчанию
const (
	DailyReminderTime      = "19:00"
	MotivationReminderTime = "12:00"
)

var motivationMessages = []string{
	"💪 Отличная работа! Продолжай в том же духе!",
	"🌟 Каждая выученная фраза приближает тебя к свободному английскому!",
	"🚀 Не останавливайся! Практика делает мастера!",
	"🎯 Субботняя тренировка - отличный способ закрепить знания!",
}

// Notifier delivers reminder messages to a user
type Notifier interface {
	SendReminder(userID int64, text string) error
}

// Scheduler runs periodic study reminders
type Scheduler struct {
	scheduler    *gocron.Scheduler
	notifier     Notifier
	userRepo     *database.UserRepository
	progressRepo *database.ProgressRepository
	rnd          *rand.Rand
}

// New creates a new scheduler instance
func New(notifier Notifier) *Scheduler {
	return &Scheduler{
		scheduler:    gocron.NewScheduler(time.Local),
		notifier:     notifier,
		userRepo:     database.NewUserRepository(),
		progressRepo: database.NewProgressRepository(),
		rnd:          rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Start schedules the daily and weekly reminders and runs them asynchronously
func (s *Scheduler) Start() {
	if _, err := s.scheduler.Every(1).Day().At(DailyReminderTime).Do(s.sendDailyReminders); err != nil {
		log.Printf("Error scheduling daily reminder: %v", err)
	}
	if _, err := s.scheduler.Every(1).Saturday().At(MotivationReminderTime).Do(s.sendMotivationReminders); err != nil {
		log.Printf("Error scheduling motivation reminder: %v", err)
	}

	s.scheduler.StartAsync()
	log.Printf("Reminder scheduler started: daily at %s, motivation on Saturday at %s",
		DailyReminderTime, MotivationReminderTime)
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// sendDailyReminders nudges every known user to practice. Users without
// phrases get a prompt to add their first one instead.
func (s *Scheduler) sendDailyReminders() {
	ctx := context.Background()

	userIDs, err := s.userRepo.AllIDs(ctx)
	if err != nil {
		log.Printf("Error getting users for daily reminder: %v", err)
		return
	}

	sent := 0
	for _, userID := range userIDs {
		count, err := s.progressRepo.CountUserPhrases(ctx, userID)
		if err != nil {
			log.Printf("Error counting phrases for user %d: %v", userID, err)
			continue
		}

		text := "⏰ Время практики! Начни тренировку, чтобы не растерять прогресс."
		if count == 0 {
			text = "⏰ Время практики! Добавь свою первую фразу и начни изучение."
		}

		if err := s.notifier.SendReminder(userID, text); err != nil {
			log.Printf("Error sending daily reminder to user %d: %v", userID, err)
			continue
		}
		sent++
	}

	log.Printf("Daily reminders sent to %d of %d users", sent, len(userIDs))
}

// sendMotivationReminders sends the Saturday motivational message to
// users who already have phrases in training.
func (s *Scheduler) sendMotivationReminders() {
	ctx := context.Background()

	userIDs, err := s.userRepo.AllIDs(ctx)
	if err != nil {
		log.Printf("Error getting users for motivation reminder: %v", err)
		return
	}

	for _, userID := range userIDs {
		count, err := s.progressRepo.CountUserPhrases(ctx, userID)
		if err != nil {
			log.Printf("Error counting phrases for user %d: %v", userID, err)
			continue
		}
		if count == 0 {
			continue
		}

		text := motivationMessages[s.rnd.Intn(len(motivationMessages))]
		if err := s.notifier.SendReminder(userID, text); err != nil {
			log.Printf("Error sending motivation reminder to user %d: %v", userID, err)
		}
	}
}

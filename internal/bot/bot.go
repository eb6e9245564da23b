package bot

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"gicare/internal/extractor"
	"gicare/internal/model"
	"gicare/internal/repository"
	"gicare/internal/schedule"
	"gicare/internal/service"
)

type conversationStage int

const (
	stageNone conversationStage = iota
	stageAptFreeText
	stageAptTitle
	stageAptDate
	stageAptTime
	stageAptLocation
	stageAptNotes
)

const (
	cbTogglePrefix = "toggle:" // toggle:<medID>:<date>:<time>
	cbDayPrefix    = "day:"    // day:<date>
	cbAdjustPrefix = "adj:"    // adj:<itemID>:<delta>
	cbDelAptPrefix = "delapt:" // delapt:<uuid>
)

const (
	btnSkip         = "⏭️ Skip"
	btnCancelDialog = "⏪ Cancel input"
	menuLabelMeds   = "💊 Medications"
	menuLabelStock  = "📦 Inventory"
	menuLabelApts   = "📅 Appointments"
	menuLabelNotify = "🔔 Notifications"
	iconTaken       = "✅"
	iconPending     = "⬜"
	iconLowStock    = "⚠️"
	extractTimeout  = 30 * time.Second
)

type conversationState struct {
	stage conversationStage
	input service.AppointmentInput
}

// Bot aggregates Telegram API with the tracker services. It is the whole
// presentation layer: the three sections plus reminder delivery.
type Bot struct {
	api           *tgbotapi.BotAPI
	userRepo      *repository.UserRepository
	logSvc        *service.LogService
	inventorySvc  *service.InventoryService
	aptSvc        *service.AppointmentService
	reminderSvc   *service.ReminderService
	conversations map[int64]*conversationState
	parsing       map[int64]bool
	mu            sync.Mutex
}

func New(token string, userRepo *repository.UserRepository, logSvc *service.LogService, inventorySvc *service.InventoryService, aptSvc *service.AppointmentService, reminderSvc *service.ReminderService) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log.Printf("[info] bot authorized on account %s", api.Self.UserName)

	return &Bot{
		api:           api,
		userRepo:      userRepo,
		logSvc:        logSvc,
		inventorySvc:  inventorySvc,
		aptSvc:        aptSvc,
		reminderSvc:   reminderSvc,
		conversations: make(map[int64]*conversationState),
		parsing:       make(map[int64]bool),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	log.Println("[info] start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				log.Printf("handle callback: %v", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				log.Printf("handle message: %v", err)
			}
		}
	}

	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if msg.From == nil {
		return nil
	}

	if !msg.IsCommand() && isCancelDialogInput(msg.Text) {
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled. Pick a section from the menu to continue.")
	}

	if !msg.IsCommand() {
		if handled, err := b.handleMenuAlias(ctx, msg); handled {
			return err
		}
	}

	if msg.IsCommand() {
		log.Printf("[info] command from %d: /%s %s", msg.From.ID, msg.Command(), msg.CommandArguments())
		return b.handleCommand(ctx, msg)
	}

	if b.hasConversation(msg.From.ID) {
		return b.handleConversation(ctx, msg)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Pick a section from the menu or check /help.")
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) error {
	switch msg.Command() {
	case "start":
		return b.handleStart(ctx, msg)
	case "help":
		return b.handleHelp(msg)
	case "meds":
		return b.handleMeds(ctx, msg)
	case "inventory":
		return b.handleInventory(ctx, msg)
	case "appointments":
		return b.handleAppointments(ctx, msg)
	case "newappointment":
		return b.startFreeTextAppointment(ctx, msg)
	case "addappointment":
		return b.startManualAppointment(ctx, msg)
	case "notify":
		return b.handleNotify(ctx, msg)
	case "mute":
		return b.handleMute(ctx, msg)
	case "cancel":
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "⏪ Input cancelled.")
	default:
		return b.sendText(msg.Chat.ID, "Unknown command. Check /help.")
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}

	name := strings.TrimSpace(msg.From.FirstName)
	if name == "" {
		name = "there"
	}

	text := fmt.Sprintf(
		"👋 Hi, %s!\n<b>I track medications, stock and appointments.</b>\n\nCommands:\n"+
			"• /meds — weekly medication grid, tap a dose to mark it taken\n"+
			"• /inventory — pill stock with low-stock alerts\n"+
			"• /appointments — this week's appointments\n"+
			"• /newappointment — add an appointment from free text\n"+
			"• /addappointment — add an appointment step by step\n"+
			"• /notify — turn reminders on · /mute — turn them off\n"+
			"• /help — hints",
		escape(name),
	)

	return b.sendText(msg.Chat.ID, text)
}

func (b *Bot) handleHelp(msg *tgbotapi.Message) error {
	text := "ℹ️ <b>Hints</b>\n" +
		"• /meds [YYYY-MM-DD] — the medication grid for the week containing the date (today by default)\n" +
		"• /inventory — adjust stock with the − / + buttons\n" +
		"• /appointments — this week's appointments, delete by button\n" +
		"• /newappointment — write naturally, e.g. «Cardiologist on Friday at 15:00 at Central Hospital»\n" +
		"• /addappointment — guided entry: title, date, time, location, notes\n" +
		"• /notify — reminders for due doses and appointments, checked every minute\n" +
		"• /mute — stop reminders (no re-prompt until you /notify again)\n" +
		"• /cancel — abort the current input"
	return b.sendText(msg.Chat.ID, text)
}

// --- Medication grid ---

func (b *Bot) handleMeds(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	refDate := strings.TrimSpace(msg.CommandArguments())
	if refDate == "" {
		refDate = time.Now().Format(schedule.DateLayout)
	}
	if _, err := time.Parse(schedule.DateLayout, refDate); err != nil {
		return b.sendText(msg.Chat.ID, "Use a date like <code>2025-11-30</code>, or plain /meds for today.")
	}

	return b.sendMedGrid(ctx, msg.Chat.ID, user, refDate)
}

// sendMedGrid renders the week window containing selected, with toggle
// buttons for the selected day's dose slots. Only catalog slots are ever
// rendered, so every toggle the service receives is a valid slot.
func (b *Bot) sendMedGrid(ctx context.Context, chatID int64, user *model.User, selected string) error {
	grid, err := b.logSvc.WeekGrid(ctx, user, selected)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load the week: %s", escape(err.Error())))
	}

	today := time.Now().Format(schedule.DateLayout)

	var builder strings.Builder
	builder.WriteString(fmt.Sprintf("💊 <b>Medication week</b> %s — %s\n", displayDate(grid.Days[0]), displayDate(grid.Days[6])))
	builder.WriteString(fmt.Sprintf("Selected day: <b>%s</b>", dayLabel(selected)))
	if selected == today {
		builder.WriteString(" (today)")
	}
	builder.WriteString("\n\n")

	for _, med := range schedule.Catalog() {
		builder.WriteString(fmt.Sprintf("<b>%s</b> · %s\n", escape(med.Name), med.Category))
		var row strings.Builder
		for _, day := range grid.Days {
			row.WriteString("  ")
			row.WriteString(weekdayShort(day))
			row.WriteByte(' ')
			for _, doseTime := range med.Times {
				if grid.Taken(med.ID, day, doseTime) {
					row.WriteString(iconTaken)
				} else {
					row.WriteString(iconPending)
				}
			}
			row.WriteByte('\n')
		}
		builder.WriteString(row.String())
		builder.WriteByte('\n')
	}
	builder.WriteString("Tap a day to switch, tap a dose below to mark it taken or undo it.")

	var buttons [][]tgbotapi.InlineKeyboardButton

	var dayRow []tgbotapi.InlineKeyboardButton
	for _, day := range grid.Days {
		label := weekdayShort(day)
		if day == selected {
			label = "·" + label + "·"
		}
		dayRow = append(dayRow, tgbotapi.NewInlineKeyboardButtonData(label, cbDayPrefix+day))
	}
	buttons = append(buttons, dayRow)

	for _, med := range schedule.Catalog() {
		for _, doseTime := range med.Times {
			icon := iconPending
			if grid.Taken(med.ID, selected, doseTime) {
				icon = iconTaken
			}
			label := fmt.Sprintf("%s %s · %s", icon, doseTime, shortTitle(med.Name, 18))
			data := fmt.Sprintf("%s%s:%s:%s", cbTogglePrefix, med.ID, selected, doseTime)
			buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
				tgbotapi.NewInlineKeyboardButtonData(label, data),
			})
		}
	}

	out := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	out.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(out)
	return err
}

// --- Inventory ---

func (b *Bot) handleInventory(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendInventory(ctx, msg.Chat.ID, user)
}

func (b *Bot) sendInventory(ctx context.Context, chatID int64, user *model.User) error {
	items, err := b.inventorySvc.List(ctx, user)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load the inventory: %s", escape(err.Error())))
	}
	if len(items) == 0 {
		return b.sendText(chatID, "The inventory is empty.")
	}

	var builder strings.Builder
	builder.WriteString("📦 <b>Medication stock</b>\n")
	builder.WriteString("Keep quantities up to date so you know when to restock.\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, item := range items {
		builder.WriteString(fmt.Sprintf("<b>%s</b>: %d %s (minimum %d)", escape(item.Name), item.CurrentQuantity, escape(item.Unit), item.MinThreshold))
		if item.LowStock() {
			builder.WriteString(fmt.Sprintf(" %s <b>RESTOCK</b>", iconLowStock))
		}
		builder.WriteByte('\n')

		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("➖ %s", shortTitle(item.Name, 16)), fmt.Sprintf("%s%d:-1", cbAdjustPrefix, item.ID)),
			tgbotapi.NewInlineKeyboardButtonData("➕", fmt.Sprintf("%s%d:1", cbAdjustPrefix, item.ID)),
		})
	}

	out := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	out.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(out)
	return err
}

// --- Appointments ---

func (b *Bot) handleAppointments(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	return b.sendAppointmentList(ctx, msg.Chat.ID, user)
}

func (b *Bot) sendAppointmentList(ctx context.Context, chatID int64, user *model.User) error {
	today := time.Now().Format(schedule.DateLayout)
	apts, err := b.aptSvc.Week(ctx, user, today)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Could not load appointments: %s", escape(err.Error())))
	}

	if len(apts) == 0 {
		return b.sendText(chatID, "📅 No appointments this week. Add one with /newappointment or /addappointment.")
	}

	var builder strings.Builder
	builder.WriteString("📅 <b>Appointments this week</b>\n\n")

	var buttons [][]tgbotapi.InlineKeyboardButton
	for _, apt := range apts {
		builder.WriteString(fmt.Sprintf("<b>%s</b>\n", escape(apt.Title)))
		builder.WriteString(fmt.Sprintf("   🗓 %s · 🕒 %s\n", dayLabel(apt.Date), apt.Time))
		if apt.Location != "" {
			builder.WriteString(fmt.Sprintf("   📍 %s\n", escape(apt.Location)))
		}
		if apt.Notes != "" {
			builder.WriteString(fmt.Sprintf("   📝 %s\n", escape(apt.Notes)))
		}
		builder.WriteByte('\n')

		buttons = append(buttons, []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(fmt.Sprintf("🗑 %s", shortTitle(apt.Title, 24)), cbDelAptPrefix+apt.ID.String()),
		})
	}

	out := tgbotapi.NewMessage(chatID, strings.TrimSpace(builder.String()))
	out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(buttons...)
	out.ParseMode = tgbotapi.ModeHTML
	_, err = b.api.Send(out)
	return err
}

func (b *Bot) startFreeTextAppointment(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	if b.isParsing(msg.From.ID) {
		return b.sendText(msg.Chat.ID, "⏳ Still working on your previous appointment text, one moment.")
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stageAptFreeText})
	return b.sendWithReplyMarkup(msg.Chat.ID,
		"🪄 Describe the appointment in one message, e.g. «Cardiologist on Friday at 15:00 at Central Hospital».",
		cancelKeyboard())
}

func (b *Bot) startManualAppointment(ctx context.Context, msg *tgbotapi.Message) error {
	if _, err := b.ensureUser(ctx, msg.From); err != nil {
		return err
	}
	b.setConversation(msg.From.ID, &conversationState{stage: stageAptTitle})
	return b.sendWithReplyMarkup(msg.Chat.ID, "🆕 New appointment.\n<b>Step 1:</b> what is it for?", cancelKeyboard())
}

func (b *Bot) handleConversation(ctx context.Context, msg *tgbotapi.Message) error {
	state := b.getConversation(msg.From.ID)
	if state == nil {
		return nil
	}

	text := strings.TrimSpace(msg.Text)
	switch state.stage {
	case stageAptFreeText:
		b.clearConversation(msg.From.ID)
		return b.parseAppointmentText(msg.Chat.ID, msg.From, text)
	case stageAptTitle:
		if text == "" {
			return b.sendWithReplyMarkup(msg.Chat.ID, "The title cannot be empty. What is the appointment for?", cancelKeyboard())
		}
		state.input.Title = text
		state.stage = stageAptDate
		return b.sendWithReplyMarkup(msg.Chat.ID, "🗓 Date in the format <code>2025-11-30</code>.", cancelKeyboard())
	case stageAptDate:
		if _, err := time.Parse(schedule.DateLayout, text); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "I could not read that date. Use the format <code>2025-11-30</code>.", cancelKeyboard())
		}
		state.input.Date = text
		state.stage = stageAptTime
		return b.sendWithReplyMarkup(msg.Chat.ID, "🕒 Time in the format <code>15:00</code> (24-hour).", cancelKeyboard())
	case stageAptTime:
		if _, err := time.Parse(schedule.ClockLayout, text); err != nil {
			return b.sendWithReplyMarkup(msg.Chat.ID, "I could not read that time. Use the format <code>15:00</code>.", cancelKeyboard())
		}
		state.input.Time = text
		state.stage = stageAptLocation
		return b.sendWithReplyMarkup(msg.Chat.ID, "📍 Location (or press «Skip»).", skipKeyboard())
	case stageAptLocation:
		if !isSkipInput(text) {
			state.input.Location = text
		}
		state.stage = stageAptNotes
		return b.sendWithReplyMarkup(msg.Chat.ID, "📝 Notes (or press «Skip»).", skipKeyboard())
	case stageAptNotes:
		if !isSkipInput(text) {
			state.input.Notes = text
		}
		input := state.input
		b.clearConversation(msg.From.ID)
		return b.finishManualAppointment(ctx, msg.From, input, msg.Chat.ID)
	default:
		b.clearConversation(msg.From.ID)
		return b.sendText(msg.Chat.ID, "Input reset. Try again from the menu.")
	}
}

func (b *Bot) finishManualAppointment(ctx context.Context, from *tgbotapi.User, input service.AppointmentInput, chatID int64) error {
	user, err := b.ensureUser(ctx, from)
	if err != nil {
		return err
	}

	apt, err := b.aptSvc.Add(ctx, user, input)
	if err != nil {
		return b.sendTextWithRemove(chatID, fmt.Sprintf("Could not save the appointment: %s", escape(err.Error())))
	}

	log.Printf("[info] appointment created id=%s user=%d", apt.ID, user.ID)
	if err := b.sendTextWithRemove(chatID, fmt.Sprintf("✅ Appointment «%s» saved for %s at %s.", escape(apt.Title), dayLabel(apt.Date), apt.Time)); err != nil {
		return err
	}
	return b.sendAppointmentList(ctx, chatID, user)
}

// parseAppointmentText runs the extractor off the update loop. The pending
// flag keeps a user from submitting a second text while one is in flight; a
// result that arrives after the user moved on is still just a message.
func (b *Bot) parseAppointmentText(chatID int64, from *tgbotapi.User, text string) error {
	if text == "" {
		return b.sendTextWithRemove(chatID, "Send the appointment as plain text, e.g. «Neurologist on Tuesday at 14:00».")
	}
	if !b.tryBeginParsing(from.ID) {
		return b.sendText(chatID, "⏳ Still working on your previous appointment text, one moment.")
	}

	go func() {
		defer b.endParsing(from.ID)

		ctx, cancel := context.WithTimeout(context.Background(), extractTimeout)
		defer cancel()

		user, err := b.ensureUser(ctx, from)
		if err != nil {
			log.Printf("parse appointment: ensure user: %v", err)
			return
		}

		apt, err := b.aptSvc.AddFromText(ctx, user, text, time.Now())
		if err != nil {
			if errors.Is(err, extractor.ErrUnparsable) {
				log.Printf("[info] extraction failed user=%d: %v", user.ID, err)
				if err := b.sendTextWithRemove(chatID, "🤖 I could not quite understand that. Try something like: «Neurologist on Tuesday at 14:00»."); err != nil {
					log.Printf("send extraction failure: %v", err)
				}
				return
			}
			log.Printf("parse appointment: %v", err)
			if err := b.sendTextWithRemove(chatID, "Something went wrong while saving. Please try again."); err != nil {
				log.Printf("send extraction error: %v", err)
			}
			return
		}

		log.Printf("[info] appointment extracted id=%s user=%d", apt.ID, user.ID)
		location := apt.Location
		if location == "" {
			location = "not specified"
		}
		confirmation := fmt.Sprintf("✅ <b>Appointment saved</b>\n• <b>Title:</b> %s\n• <b>When:</b> %s at %s\n• <b>Location:</b> %s",
			escape(apt.Title), dayLabel(apt.Date), apt.Time, escape(location))
		if err := b.sendTextWithRemove(chatID, confirmation); err != nil {
			log.Printf("send extraction confirmation: %v", err)
		}
	}()

	return nil
}

// --- Notifications ---

func (b *Bot) handleNotify(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	if err := b.userRepo.SetNotifications(ctx, user, model.NotificationGranted); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not enable reminders: %s", escape(err.Error())))
	}

	if err := b.sendText(msg.Chat.ID, "🔔 Reminders are on! I will ping you when it is time for medications and appointments."); err != nil {
		return err
	}

	// Immediate pass so activation exactly on a matching minute still fires.
	if err := b.sendUserReminders(ctx, user, time.Now()); err != nil {
		log.Printf("immediate reminder pass for %d: %v", user.TelegramID, err)
	}
	return nil
}

func (b *Bot) handleMute(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}
	if err := b.userRepo.SetNotifications(ctx, user, model.NotificationDenied); err != nil {
		return b.sendText(msg.Chat.ID, fmt.Sprintf("Could not disable reminders: %s", escape(err.Error())))
	}
	return b.sendText(msg.Chat.ID, "🔕 Reminders are off. Turn them back on anytime with /notify.")
}

func (b *Bot) handleNotifyStatus(ctx context.Context, msg *tgbotapi.Message) error {
	user, err := b.ensureUser(ctx, msg.From)
	if err != nil {
		return err
	}

	var text string
	switch user.Notifications {
	case model.NotificationGranted:
		text = "🔔 Reminders are <b>on</b>: due doses and appointments, checked every minute.\nUse /mute to turn them off."
	case model.NotificationDenied:
		text = "🔕 Reminders are <b>off</b>.\nUse /notify to turn them back on."
	default:
		text = "Reminders are not set up yet.\nUse /notify to get pinged for due doses and appointments."
	}
	return b.sendText(msg.Chat.ID, text)
}

// SendDueReminders delivers due notifications to every opted-in user. Called
// by the scheduler once per minute; send failures are logged and dropped.
func (b *Bot) SendDueReminders(ctx context.Context) error {
	users, err := b.userRepo.ListByNotifications(ctx, model.NotificationGranted)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, user := range users {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := b.sendUserReminders(ctx, &user, now); err != nil {
			log.Printf("reminders for %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

func (b *Bot) sendUserReminders(ctx context.Context, user *model.User, now time.Time) error {
	due, err := b.reminderSvc.DueNotifications(ctx, user.ID, now)
	if err != nil {
		return err
	}
	for _, note := range due {
		text := fmt.Sprintf("🔔 <b>%s</b>\n%s", escape(note.Title), escape(note.Body))
		if err := b.sendText(user.TelegramID, text); err != nil {
			log.Printf("send reminder to %d: %v", user.TelegramID, err)
		}
	}
	return nil
}

// --- Callbacks ---

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil {
		return nil
	}

	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		log.Printf("callback ack: %v", err)
	}

	data := cb.Data
	chatID := cb.Message.Chat.ID

	user, err := b.ensureUser(ctx, cb.From)
	if err != nil {
		return err
	}

	switch {
	case strings.HasPrefix(data, cbTogglePrefix):
		medID, date, doseTime, err := parseToggleData(data)
		if err != nil {
			return nil
		}
		log.Printf("[info] callback toggle user=%d med=%s %s %s", user.ID, medID, date, doseTime)
		if _, err := b.logSvc.Toggle(ctx, user, medID, date, doseTime, time.Now()); err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not update the dose: %s", escape(err.Error())))
		}
		return b.sendMedGrid(ctx, chatID, user, date)
	case strings.HasPrefix(data, cbDayPrefix):
		date := strings.TrimPrefix(data, cbDayPrefix)
		if _, err := time.Parse(schedule.DateLayout, date); err != nil {
			return nil
		}
		return b.sendMedGrid(ctx, chatID, user, date)
	case strings.HasPrefix(data, cbAdjustPrefix):
		itemID, delta, err := parseAdjustData(data)
		if err != nil {
			return nil
		}
		log.Printf("[info] callback adjust user=%d item=%d delta=%d", user.ID, itemID, delta)
		if _, err := b.inventorySvc.Adjust(ctx, user, itemID, delta); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return b.sendText(chatID, "That item no longer exists.")
			}
			return b.sendText(chatID, fmt.Sprintf("Could not adjust the stock: %s", escape(err.Error())))
		}
		return b.sendInventory(ctx, chatID, user)
	case strings.HasPrefix(data, cbDelAptPrefix):
		id, err := uuid.Parse(strings.TrimPrefix(data, cbDelAptPrefix))
		if err != nil {
			return nil
		}
		log.Printf("[info] callback delete appointment user=%d id=%s", user.ID, id)
		if err := b.aptSvc.Remove(ctx, user, id); err != nil {
			return b.sendText(chatID, fmt.Sprintf("Could not delete the appointment: %s", escape(err.Error())))
		}
		return b.sendAppointmentList(ctx, chatID, user)
	default:
		return nil
	}
}

func parseToggleData(data string) (string, string, string, error) {
	parts := strings.SplitN(strings.TrimPrefix(data, cbTogglePrefix), ":", 3)
	if len(parts) != 3 {
		return "", "", "", fmt.Errorf("malformed toggle data %q", data)
	}
	return parts[0], parts[1], parts[2], nil
}

func parseAdjustData(data string) (uint, int, error) {
	parts := strings.SplitN(strings.TrimPrefix(data, cbAdjustPrefix), ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("malformed adjust data %q", data)
	}
	itemID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, err
	}
	delta, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, err
	}
	return uint(itemID), delta, nil
}

// --- Plumbing ---

func (b *Bot) ensureUser(ctx context.Context, from *tgbotapi.User) (*model.User, error) {
	user, err := b.userRepo.UpsertFromTelegram(ctx, from.ID, from.FirstName, from.LastName, from.UserName)
	if err != nil {
		return nil, err
	}
	if err := b.inventorySvc.EnsureSeeded(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendTextWithRemove(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	if _, err := b.api.Send(msg); err != nil {
		return err
	}
	return b.sendMenuPlaceholder(chatID)
}

func (b *Bot) sendWithReplyMarkup(chatID int64, text string, markup interface{}) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = markup
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendMenuPlaceholder(chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, "🔹 Main menu")
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) handleMenuAlias(ctx context.Context, msg *tgbotapi.Message) (bool, error) {
	text := strings.TrimSpace(strings.ToLower(msg.Text))
	switch text {
	case strings.ToLower(menuLabelMeds):
		return true, b.handleMeds(ctx, msg)
	case strings.ToLower(menuLabelStock):
		return true, b.handleInventory(ctx, msg)
	case strings.ToLower(menuLabelApts):
		return true, b.handleAppointments(ctx, msg)
	case strings.ToLower(menuLabelNotify):
		return true, b.handleNotifyStatus(ctx, msg)
	default:
		return false, nil
	}
}

func (b *Bot) setConversation(userID int64, state *conversationState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.conversations[userID] = state
}

func (b *Bot) getConversation(userID int64) *conversationState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.conversations[userID]
}

func (b *Bot) hasConversation(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.conversations[userID]
	return ok
}

func (b *Bot) clearConversation(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.conversations, userID)
}

func (b *Bot) isParsing(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.parsing[userID]
}

func (b *Bot) tryBeginParsing(userID int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.parsing[userID] {
		return false
	}
	b.parsing[userID] = true
	return true
}

func (b *Bot) endParsing(userID int64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.parsing, userID)
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelMeds),
			tgbotapi.NewKeyboardButton(menuLabelStock),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelApts),
			tgbotapi.NewKeyboardButton(menuLabelNotify),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}

func cancelKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func skipKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnSkip),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCancelDialog),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = true
	return kb
}

func isSkipInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == "-" || value == strings.ToLower(btnSkip) || value == "skip"
}

func isCancelDialogInput(text string) bool {
	value := strings.TrimSpace(strings.ToLower(text))
	return value == strings.ToLower(btnCancelDialog) || value == "cancel"
}

func shortTitle(title string, maxLen int) string {
	clean := strings.TrimSpace(strings.ReplaceAll(title, "\n", " "))
	runes := []rune(clean)
	if len(runes) <= maxLen {
		return clean
	}
	if maxLen <= 1 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-1]) + "…"
}

// displayDate renders a YYYY-MM-DD string as DD.MM.
func displayDate(date string) string {
	t, err := time.Parse(schedule.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02.01")
}

// dayLabel renders a YYYY-MM-DD string as "Monday, 02 Jan".
func dayLabel(date string) string {
	t, err := time.Parse(schedule.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Monday, 02 Jan")
}

func weekdayShort(date string) string {
	t, err := time.Parse(schedule.DateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("Mon 02")
}

func escape(s string) string {
	return html.EscapeString(s)
}

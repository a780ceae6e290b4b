package reminders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"walrus/bot/common"
	"walrus/models"

	"github.com/bwmarrin/discordgo"
	log "github.com/sirupsen/logrus"
)

const defaultContent = "Nothing"

// HandleCommand handles /remind. The returned error reports an internal
// failure; input problems are answered in Discord and return nil.
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	options := common.OptionMap(i.ApplicationCommandData().Options)

	when := ""
	if opt, ok := options["when"]; ok {
		when = opt.StringValue()
	}
	content := defaultContent
	if opt, ok := options["what"]; ok && opt.StringValue() != "" {
		content = opt.StringValue()
	}

	createdAt := common.InteractionTime(i)
	expiresAt, err := common.ParseTime(createdAt, when)
	if err != nil {
		common.RespondWithError(s, i, parseErrorMessage(err))
		return nil
	}

	if err := common.DeferResponse(s, i, false); err != nil {
		return fmt.Errorf("failed to defer reminder response: %w", err)
	}

	// The deferred response becomes the message the reminder links back to
	origin, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		editResponse(s, i, "❌ I couldn't schedule your reminder, please try again later.")
		return fmt.Errorf("failed to fetch reminder response message: %w", err)
	}

	user := common.InteractionUser(i)
	payload := models.ReminderPayload{
		AuthorID:  user.ID,
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		MessageID: origin.ID,
		Content:   content,
	}

	timer, err := f.scheduler.CreateTimer(context.Background(), models.EventKindReminder, createdAt, expiresAt, payload)
	if err != nil {
		editResponse(s, i, "❌ I couldn't schedule your reminder, please try again later.")
		return fmt.Errorf("failed to create reminder timer: %w", err)
	}

	log.WithFields(log.Fields{
		"timerID":   timer.ID,
		"authorID":  user.ID,
		"expiresAt": expiresAt,
	}).Info("Reminder scheduled")

	editResponse(s, i, FormatConfirmation(createdAt, expiresAt, content))
	return nil
}

// HandleTimer delivers a fired reminder to the channel it was created in
func (f *Feature) HandleTimer(ctx context.Context, timer *models.Timer) error {
	var payload models.ReminderPayload
	if err := timer.DecodePayload(&payload); err != nil {
		return err
	}

	_, err := f.session.ChannelMessageSendComplex(payload.ChannelID, &discordgo.MessageSend{
		Content: FormatReminder(payload, timer.CreatedAt, time.Now().UTC()),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: []string{payload.AuthorID},
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send reminder to channel %s: %w", payload.ChannelID, err)
	}
	return nil
}

func editResponse(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{
		Content:         &content,
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	})
	if err != nil {
		log.Errorf("Error editing reminder response: %v", err)
	}
}

func parseErrorMessage(err error) string {
	if errors.Is(err, common.ErrPastTime) {
		return "Time must be in the future, sorry."
	}
	return "Could not discern a date from your input."
}

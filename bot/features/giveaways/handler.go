package giveaways

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

const reactionPageSize = 100

// HandleCommand routes /giveaway subcommands. The returned error reports an
// internal failure; input problems are answered in Discord and return nil.
func (f *Feature) HandleCommand(s *discordgo.Session, i *discordgo.InteractionCreate) error {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		common.RespondWithError(s, i, "Please choose a subcommand.")
		return nil
	}

	sub := data.Options[0]
	switch sub.Name {
	case "create":
		return f.handleCreate(s, i, common.OptionMap(sub.Options))
	case "reroll":
		return f.handleReroll(s, i, common.OptionMap(sub.Options))
	default:
		common.RespondWithError(s, i, "Unknown giveaway subcommand.")
		return nil
	}
}

func (f *Feature) handleCreate(s *discordgo.Session, i *discordgo.InteractionCreate, options map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	channel := options["channel"].ChannelValue(s)
	winners := int(options["winners"].IntValue())
	prize := options["prize"].StringValue()

	if winners < 1 || winners > MaxWinners {
		common.RespondWithError(s, i, fmt.Sprintf("Winners must be between 1 and %d.", MaxWinners))
		return nil
	}
	if len(prize) > MaxPrizeLength {
		common.RespondWithError(s, i, "The prize must be less than 256 characters long, sorry.")
		return nil
	}

	now := time.Now().UTC()
	expiresAt, err := common.ParseTime(now, options["duration"].StringValue())
	if err != nil {
		if errors.Is(err, common.ErrPastTime) {
			common.RespondWithError(s, i, "Time must be in the future, sorry.")
		} else {
			common.RespondWithError(s, i, "Could not discern a date from your input.")
		}
		return nil
	}

	if err := common.DeferResponse(s, i, true); err != nil {
		return fmt.Errorf("failed to defer giveaway response: %w", err)
	}

	msg, err := s.ChannelMessageSendEmbed(channel.ID, buildActiveEmbed(prize, winners, expiresAt, now))
	if err != nil {
		common.FollowUpWithError(s, i, fmt.Sprintf("I couldn't post in <#%s>. Make sure I can send messages and embeds there.", channel.ID))
		return nil
	}
	if err := s.MessageReactionAdd(channel.ID, msg.ID, Emoji); err != nil {
		log.WithError(err).WithField("messageID", msg.ID).Warn("Failed to add giveaway reaction")
	}

	payload := models.GiveawayPayload{
		ChannelID: channel.ID,
		MessageID: msg.ID,
		Prize:     prize,
		Winners:   winners,
		Emoji:     Emoji,
	}
	timer, err := f.scheduler.CreateTimer(context.Background(), models.EventKindGiveaway, now, expiresAt, payload)
	if err != nil {
		if delErr := s.ChannelMessageDelete(channel.ID, msg.ID); delErr != nil {
			log.WithError(delErr).WithField("messageID", msg.ID).Warn("Failed to remove unscheduled giveaway message")
		}
		common.FollowUpWithError(s, i, "I couldn't schedule the giveaway, please try again later.")
		return fmt.Errorf("failed to create giveaway timer: %w", err)
	}

	log.WithFields(log.Fields{
		"timerID":   timer.ID,
		"channelID": channel.ID,
		"messageID": msg.ID,
		"winners":   winners,
		"expiresAt": expiresAt,
	}).Info("Giveaway started")

	common.FollowUpWithSuccess(s, i, fmt.Sprintf("Giveaway has been started in <#%s>!", channel.ID), true)
	return nil
}

func (f *Feature) handleReroll(s *discordgo.Session, i *discordgo.InteractionCreate, options map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	channelID := i.ChannelID
	if opt, ok := options["channel"]; ok {
		channelID = opt.ChannelValue(s).ID
	}
	messageID := options["message_id"].StringValue()

	msg, err := s.ChannelMessage(channelID, messageID)
	if err != nil {
		common.RespondWithError(s, i, "I could not find that giveaway message.")
		return nil
	}
	if !isEndedGiveaway(msg, s.State.User.ID) {
		common.RespondWithError(s, i, "That message is not an ended giveaway.")
		return nil
	}

	entrants, err := f.collectEntrants(context.Background(), channelID, messageID, Emoji)
	if err != nil {
		common.RespondWithError(s, i, "I couldn't read the giveaway entries, please try again later.")
		return err
	}

	winners := f.draw(entrants, 1)
	if len(winners) == 0 {
		common.RespondWithError(s, i, "I couldn't determine a winner for that giveaway. :(")
		return nil
	}

	return common.RespondWithMessage(s, i,
		fmt.Sprintf("The new winner is %s! Congratulations!", common.FormatUserMention(winners[0])), false)
}

// HandleTimer ends a giveaway: draws winners from the reactions, marks the
// message as ended and announces the result
func (f *Feature) HandleTimer(ctx context.Context, timer *models.Timer) error {
	var payload models.GiveawayPayload
	if err := timer.DecodePayload(&payload); err != nil {
		return err
	}

	msg, err := f.session.ChannelMessage(payload.ChannelID, payload.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch giveaway message %s: %w", payload.MessageID, err)
	}

	emoji := payload.Emoji
	if emoji == "" {
		emoji = Emoji
	}
	entrants, err := f.collectEntrants(ctx, payload.ChannelID, payload.MessageID, emoji)
	if err != nil {
		return err
	}
	winners := f.draw(entrants, payload.Winners)

	content := endedContent
	embeds := []*discordgo.MessageEmbed{buildEndedEmbed(payload.Prize, winners, timer.ExpiresAt)}
	_, err = f.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:      payload.MessageID,
		Channel: payload.ChannelID,
		Content: &content,
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to mark giveaway %s as ended: %w", payload.MessageID, err)
	}

	_, err = f.session.ChannelMessageSendComplex(payload.ChannelID, &discordgo.MessageSend{
		Content:   buildAnnouncement(payload.Prize, winners),
		Reference: msg.Reference(),
		AllowedMentions: &discordgo.MessageAllowedMentions{
			Users: winners,
		},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to announce giveaway winners: %w", err)
	}

	log.WithFields(log.Fields{
		"timerID":   timer.ID,
		"messageID": payload.MessageID,
		"entrants":  len(entrants),
		"winners":   len(winners),
	}).Info("Giveaway ended")
	return nil
}

// collectEntrants pages through every user who reacted with emoji, skipping bots
func (f *Feature) collectEntrants(ctx context.Context, channelID, messageID, emoji string) ([]string, error) {
	var entrants []string
	after := ""

	for {
		users, err := f.session.MessageReactions(channelID, messageID, emoji, reactionPageSize, "", after, discordgo.WithContext(ctx))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch giveaway reactions: %w", err)
		}

		for _, user := range users {
			if !user.Bot {
				entrants = append(entrants, user.ID)
			}
		}

		if len(users) < reactionPageSize {
			return entrants, nil
		}
		after = users[len(users)-1].ID
	}
}

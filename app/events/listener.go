// Package events provides event handlers for the telegram bot. It listens to
// the group updates, tracks new members via both chat_member updates and
// new_chat_members service messages, forwards first messages of tracked users
// to the gatekeeper bot and acts on the verdict, deleting the message and
// banning the sender.
package events

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tbapi "github.com/OvyFlash/telegram-bot-api"
	"github.com/go-pkgz/repeater/v2"
	"github.com/hashicorp/go-multierror"

	"github.com/ruspam/gatekeeper/app/bot"
)

// TelegramListener listens to tg update, forwards to the bot and sends back responses
// Not thread safe
type TelegramListener struct {
	TbAPI       TbAPI
	SpamLogger  SpamLogger
	Bot         Bot
	Group       string // can be int64 or public group username (without "@" prefix)
	StartupMsg  string
	NoSpamReply bool
	Dry         bool

	chatID int64
}

// Do process all events, blocked call
func (l *TelegramListener) Do(ctx context.Context) error {
	log.Printf("[INFO] start telegram listener for %q", l.Group)

	if l.Dry {
		log.Printf("[WARN] dry mode, no bans and no deletions")
	}

	// get chat ID for the group we are monitoring, retry as telegram API
	// tends to fail on the first requests after the bot (re)start
	var getChatErr error
	err := repeater.NewFixed(5, 500*time.Millisecond).Do(ctx, func() error {
		l.chatID, getChatErr = l.getChatID(l.Group)
		return getChatErr
	})
	if err != nil {
		return fmt.Errorf("failed to get chat ID for group %q: %w", l.Group, err)
	}

	// send startup message if any set
	if l.StartupMsg != "" && !l.Dry {
		if err := l.sendBotResponse(bot.Response{Send: true, Text: l.StartupMsg}, l.chatID); err != nil {
			log.Printf("[WARN] failed to send startup message, %v", err)
		}
	}

	u := tbapi.NewUpdate(0)
	u.Timeout = 60
	// chat_member updates are not delivered unless requested explicitly
	u.AllowedUpdates = []string{"message", "chat_member"}

	updates := l.TbAPI.GetUpdatesChan(u)

	for {
		select {

		case <-ctx.Done():
			return ctx.Err()

		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("telegram update chan closed")
			}

			if update.ChatMember != nil {
				l.procJoin(update.ChatMember)
				continue
			}

			if update.Message == nil {
				continue
			}

			if err := l.procEvents(ctx, update); err != nil {
				log.Printf("[WARN] failed to process update: %v", err)
				continue
			}
		}
	}
}

// procJoin handles chat_member updates and puts newly joined users under watch.
func (l *TelegramListener) procJoin(upd *tbapi.ChatMemberUpdated) {
	if upd.Chat.ID != l.chatID {
		return
	}

	wasIn := upd.OldChatMember.Status == "member" || upd.OldChatMember.Status == "administrator" ||
		upd.OldChatMember.Status == "creator" || upd.OldChatMember.Status == "restricted"
	nowIn := upd.NewChatMember.Status == "member"
	if wasIn || !nowIn {
		return // not a join, a role change or a leave
	}

	user := upd.NewChatMember.User
	if user == nil || user.IsBot {
		return
	}
	l.Bot.OnJoin(upd.Chat.ID, bot.User{ID: user.ID, Username: user.UserName,
		DisplayName: strings.TrimSpace(user.FirstName + " " + user.LastName)})
}

func (l *TelegramListener) procEvents(ctx context.Context, update tbapi.Update) error {
	fromChat := update.Message.Chat.ID

	// ignore messages from other chats except the one we are monitoring
	if fromChat != l.chatID {
		return nil
	}

	// new_chat_members service message, the fallback join signal for groups
	// where chat_member updates are not available
	if len(update.Message.NewChatMembers) > 0 {
		for _, u := range update.Message.NewChatMembers {
			if u.IsBot {
				continue
			}
			l.Bot.OnJoin(fromChat, bot.User{ID: u.ID, Username: u.UserName,
				DisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName)})
		}
		return nil
	}

	msg := transform(update.Message)
	log.Printf("[DEBUG] incoming msg: %+v", strings.ReplaceAll(msg.Text, "\n", " "))

	resp := l.Bot.OnMessage(ctx, *msg)
	if !resp.Checked {
		return nil // message from a user not under watch, or a non-text message
	}

	// send response to the channel if allowed
	if resp.Send && !l.NoSpamReply {
		if err := l.sendBotResponse(resp, fromChat); err != nil {
			log.Printf("[WARN] failed to respond on update, %v", err)
		}
	}

	errs := new(multierror.Error)

	if resp.Spam {
		log.Printf("[DEBUG] spam enforcement initiated for %+v", resp.User)
		l.SpamLogger.Save(msg, &resp)

		// delete the message first, the ban hides it for the group anyway but
		// a failed ban should still leave the chat clean
		if resp.DeleteReplyTo && resp.ReplyTo != 0 && !l.Dry {
			_, err := l.TbAPI.Request(tbapi.DeleteMessageConfig{BaseChatMessage: tbapi.BaseChatMessage{
				ChatConfig: tbapi.ChatConfig{ChatID: l.chatID},
				MessageID:  resp.ReplyTo,
			}})
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("failed to delete message %d: %w", resp.ReplyTo, err))
			}
		}

		if resp.BanInterval > 0 {
			banReq := banRequest{duration: resp.BanInterval, userID: resp.User.ID, chatID: fromChat,
				userName: bot.DisplayName(*msg), dry: l.Dry, tbAPI: l.TbAPI}
			if err := banUser(banReq); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("failed to ban %v: %w", resp.User, err))
			}
		}
	}

	// the user had their one check, enforcement attempted or not needed
	l.Bot.Untrack(fromChat, msg.From.ID)

	return errs.ErrorOrNil()
}

// sendBotResponse sends bot's answer to tg channel
func (l *TelegramListener) sendBotResponse(resp bot.Response, chatID int64) error {
	if !resp.Send {
		return nil
	}

	log.Printf("[DEBUG] bot response - %+v, reply-to:%d", strings.ReplaceAll(resp.Text, "\n", "\\n"), resp.ReplyTo)
	tbMsg := tbapi.NewMessage(chatID, resp.Text)
	if resp.ReplyTo != 0 {
		tbMsg.ReplyParameters = tbapi.ReplyParameters{MessageID: resp.ReplyTo}
	}

	if err := send(tbMsg, l.TbAPI); err != nil {
		return fmt.Errorf("can't send message to telegram %q: %w", resp.Text, err)
	}

	return nil
}

func (l *TelegramListener) getChatID(group string) (int64, error) {
	chatID, err := strconv.ParseInt(group, 10, 64)
	if err == nil {
		return chatID, nil
	}

	chat, err := l.TbAPI.GetChat(tbapi.ChatInfoConfig{ChatConfig: tbapi.ChatConfig{SuperGroupUsername: "@" + group}})
	if err != nil {
		return 0, fmt.Errorf("can't get chat for %s: %w", group, err)
	}

	return chat.ID, nil
}

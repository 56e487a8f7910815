package wa

import (
	"context"
	"strings"

	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/fardannozami/habit-bot/internal/domain"
)

// LIDResolver maps a WhatsApp LID to a phone number, returning the input
// unchanged when it is unknown.
type LIDResolver interface {
	ResolveLIDToPhone(ctx context.Context, lid string) string
}

// MessageText returns the text body of a plain or extended text message,
// or "" for anything else.
func MessageText(evt *events.Message) string {
	if evt == nil || evt.Message == nil {
		return ""
	}
	if c := evt.Message.GetConversation(); c != "" {
		return c
	}
	return evt.Message.GetExtendedTextMessage().GetText()
}

// SenderID returns a stable identity for the sender. LIDs are resolved to
// phone numbers so a user keeps the same habits across both forms.
func SenderID(ctx context.Context, sender types.JID, resolver LIDResolver) string {
	if looksLikeLID(sender) && resolver != nil {
		return resolver.ResolveLIDToPhone(ctx, sender.User)
	}
	return sender.User
}

func looksLikeLID(jid types.JID) bool {
	return jid.Server == types.HiddenUserServer ||
		(jid.Server == types.DefaultUserServer && len(jid.User) > 15)
}

// AcceptChat reports whether messages from chat should be handled. An
// empty groupID accepts every chat.
func AcceptChat(chat types.JID, groupID string) bool {
	return groupID == "" || strings.EqualFold(chat.String(), groupID)
}

func toGroupInfo(info *types.GroupInfo) *domain.GroupInfo {
	g := &domain.GroupInfo{
		ID:           info.JID.String(),
		Name:         info.Name,
		Participants: len(info.Participants),
		CreatedAt:    info.GroupCreated,
	}
	if !info.OwnerJID.IsEmpty() {
		g.OwnerID = info.OwnerJID.User
	}
	for _, p := range info.Participants {
		if p.IsAdmin || p.IsSuperAdmin {
			g.Admins++
		}
	}
	return g
}

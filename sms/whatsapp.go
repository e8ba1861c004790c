package sms

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mau.fi/whatsmeow"
	waProto "go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
)

var ErrWhatsAppDisconnected = errors.New("whatsapp client is not connected")

type WhatsAppSender struct {
	client *whatsmeow.Client
}

func NewWhatsAppSender(client *whatsmeow.Client) *WhatsAppSender {
	return &WhatsAppSender{client: client}
}

func (s *WhatsAppSender) Send(ctx context.Context, to, body string) error {
	if !s.client.IsConnected() {
		return ErrWhatsAppDisconnected
	}
	jid, err := PhoneToJID(to)
	if err != nil {
		return err
	}
	if _, err := s.client.SendMessage(ctx, jid, &waProto.Message{
		Conversation: proto.String(body),
	}); err != nil {
		return fmt.Errorf("whatsapp send: %w", err)
	}
	return nil
}

func (s *WhatsAppSender) Name() string { return "whatsapp" }

// PhoneToJID converts an E.164 number such as +919876543210 into a user JID.
func PhoneToJID(phone string) (types.JID, error) {
	digits := strings.TrimPrefix(phone, "+")
	if digits == "" {
		return types.JID{}, fmt.Errorf("empty phone number")
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return types.JID{}, fmt.Errorf("invalid phone number %q", phone)
		}
	}
	return types.NewJID(digits, types.DefaultUserServer), nil
}

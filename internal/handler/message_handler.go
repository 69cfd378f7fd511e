/*
Package handler provides the HTTP handlers and routing setup for the server.

This file holds message persistence and history. Real-time delivery runs
over the WebSocket layer; these endpoints only read and write records.
*/
package handler

import (
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"mchat/internal/app/db"
	"mchat/internal/pkg/auth/jwt"
	"mchat/internal/pkg/errs"
	"mchat/internal/pkg/logx"
	"mchat/internal/pkg/randx"
	"mchat/internal/pkg/req"
	"mchat/internal/pkg/resp"
)

// MaxMessageRunes caps message content length.
const MaxMessageRunes = 5000

type SendMessageInput struct {
	ChatID  string `json:"chatId"`
	Content string `json:"content"`
}

// HandleSendMessage persists a message in a chat the caller belongs to
// and returns the stored record alongside the chat, ready for the client
// to fan out as a new-message event.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input SendMessageInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ChatID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if input.Content == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentEmpty))
			return
		}

		if utf8.RuneCountInString(input.Content) > MaxMessageRunes {
			resp.RespondError(w, r, errs.NewError(errs.ErrMessageContentTooLong))
			return
		}

		member, err := deps.Store.IsChatMember(r.Context(), input.ChatID, identity.ID)
		if err != nil {
			logx.Error(err, "Failed to check chat membership", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if !member {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotChatMember))
			return
		}

		record, err := deps.Store.SaveMessage(r.Context(), randx.MessageID(), input.ChatID, identity.ID, input.Content)
		if err != nil {
			logx.Error(err, "Failed to save message", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		chat, err := deps.Store.GetChatByID(r.Context(), input.ChatID)
		if err != nil {
			logx.Error(err, "Failed to load chat for message response", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"message": record,
			"chat":    chat,
		})
	}
}

// HandleListMessages returns a chat's message history in order.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		chatID := chi.URLParam(r, "chatID")
		if chatID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.Store.GetChatByID(r.Context(), chatID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrChatNotFound))
				return
			}
			logx.Error(err, "Failed to fetch chat", "chat_id", chatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		member, err := deps.Store.IsChatMember(r.Context(), chatID, identity.ID)
		if err != nil {
			logx.Error(err, "Failed to check chat membership", "chat_id", chatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if !member {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotChatMember))
			return
		}

		messages, err := deps.Store.ListMessages(r.Context(), chatID)
		if err != nil {
			logx.Error(err, "Failed to list messages", "chat_id", chatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, messages)
	}
}

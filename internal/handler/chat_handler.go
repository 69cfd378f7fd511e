/*
Package handler provides the HTTP handlers and routing setup for the server.

This file holds chat access and group management. 1:1 chats are
access-or-create: requesting a chat with another user returns the existing
conversation if one exists.
*/
package handler

import (
	"net/http"

	"mchat/internal/app/db"
	"mchat/internal/pkg/auth/jwt"
	"mchat/internal/pkg/errs"
	"mchat/internal/pkg/logx"
	"mchat/internal/pkg/req"
	"mchat/internal/pkg/resp"
)

// MinGroupPeers is the minimum number of members besides the creator.
const MinGroupPeers = 2

type AccessChatInput struct {
	UserID string `json:"userId"`
}

// HandleAccessChat returns the 1:1 chat with the given user, creating it
// on first contact.
func HandleAccessChat(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input AccessChatInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.UserID == "" || input.UserID == identity.ID {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, err := deps.Store.GetUserByID(r.Context(), input.UserID); err != nil {
			if db.IsNotFound(err) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "Failed to fetch chat peer")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		chat, err := deps.Store.GetDirectChat(r.Context(), identity.ID, input.UserID)
		if err == nil {
			resp.RespondSuccess(w, r, chat)
			return
		}
		if !db.IsNotFound(err) {
			logx.Error(err, "Failed to look up direct chat")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		chat, err = deps.Store.CreateChat(r.Context(), "", false, "", []string{identity.ID, input.UserID})
		if err != nil {
			logx.Error(err, "Failed to create direct chat")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, chat)
	}
}

// HandleListChats returns every chat the caller participates in.
func HandleListChats(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		chats, err := deps.Store.ListChatsForUser(r.Context(), identity.ID)
		if err != nil {
			logx.Error(err, "Failed to list chats", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, chats)
	}
}

type CreateGroupInput struct {
	Name    string   `json:"name"`
	UserIDs []string `json:"userIds"`
}

// HandleCreateGroup creates a named group chat with the caller as admin.
func HandleCreateGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input CreateGroupInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Name == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		peers := make([]string, 0, len(input.UserIDs))
		for _, id := range input.UserIDs {
			if id != "" && id != identity.ID {
				peers = append(peers, id)
			}
		}

		if len(peers) < MinGroupPeers {
			resp.RespondError(w, r, errs.NewError(errs.ErrGroupTooSmall, MinGroupPeers))
			return
		}

		members := append(peers, identity.ID)

		chat, err := deps.Store.CreateChat(r.Context(), input.Name, true, identity.ID, members)
		if err != nil {
			logx.Error(err, "Failed to create group chat")
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, chat)
	}
}

type GroupUpdateInput struct {
	ChatID string `json:"chatId"`
	Name   string `json:"name,omitempty"`
	UserID string `json:"userId,omitempty"`
}

// loadGroupForMember fetches the chat and checks it is a group the caller
// belongs to. Shared by the group mutation handlers.
func loadGroupForMember(deps *AppDeps, r *http.Request, chatID, callerID string) (db.ChatRecord, *errs.CustomError) {
	chat, err := deps.Store.GetChatByID(r.Context(), chatID)
	if err != nil {
		if db.IsNotFound(err) {
			return db.ChatRecord{}, errs.NewError(errs.ErrChatNotFound)
		}
		logx.Error(err, "Failed to fetch chat", "chat_id", chatID)
		return db.ChatRecord{}, errs.NewError(errs.ErrUnknown)
	}

	if !chat.IsGroup {
		return db.ChatRecord{}, errs.NewError(errs.ErrNotGroupChat)
	}

	member, err := deps.Store.IsChatMember(r.Context(), chatID, callerID)
	if err != nil {
		logx.Error(err, "Failed to check chat membership", "chat_id", chatID)
		return db.ChatRecord{}, errs.NewError(errs.ErrUnknown)
	}
	if !member {
		return db.ChatRecord{}, errs.NewError(errs.ErrNotChatMember)
	}

	return chat, nil
}

// HandleRenameGroup renames a group chat.
func HandleRenameGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input GroupUpdateInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ChatID == "" || input.Name == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, customErr := loadGroupForMember(deps, r, input.ChatID, identity.ID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Store.RenameChat(r.Context(), input.ChatID, input.Name); err != nil {
			logx.Error(err, "Failed to rename chat", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		chat, err := deps.Store.GetChatByID(r.Context(), input.ChatID)
		if err != nil {
			logx.Error(err, "Failed to reload chat after rename", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, chat)
	}
}

// HandleAddToGroup adds a user to a group chat.
func HandleAddToGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input GroupUpdateInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ChatID == "" || input.UserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, customErr := loadGroupForMember(deps, r, input.ChatID, identity.ID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Store.AddChatUser(r.Context(), input.ChatID, input.UserID); err != nil {
			logx.Error(err, "Failed to add user to chat", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		chat, err := deps.Store.GetChatByID(r.Context(), input.ChatID)
		if err != nil {
			logx.Error(err, "Failed to reload chat after member add", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, chat)
	}
}

// HandleRemoveFromGroup removes a user from a group chat.
func HandleRemoveFromGroup(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input GroupUpdateInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.ChatID == "" || input.UserID == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if _, customErr := loadGroupForMember(deps, r, input.ChatID, identity.ID); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if err := deps.Store.RemoveChatUser(r.Context(), input.ChatID, input.UserID); err != nil {
			logx.Error(err, "Failed to remove user from chat", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		chat, err := deps.Store.GetChatByID(r.Context(), input.ChatID)
		if err != nil {
			logx.Error(err, "Failed to reload chat after member removal", "chat_id", input.ChatID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, chat)
	}
}

/*
Package handler provides the HTTP handlers and routing setup for the server.

This file holds the avatar storage surface: a presigned PUT flow for
clients that upload directly, a server-side upload path, a presigned GET
redirect for fetching, and deletion.
*/
package handler

import (
	"fmt"
	"net/http"
	"strings"

	"mchat/internal/app/storage"
	"mchat/internal/pkg/auth/jwt"
	"mchat/internal/pkg/errs"
	"mchat/internal/pkg/logx"
	"mchat/internal/pkg/req"
	"mchat/internal/pkg/resp"
)

// avatarKeyPrefix scopes every avatar object; presigned downloads refuse
// keys outside it so this route cannot sign arbitrary bucket paths.
const avatarKeyPrefix = "avatars/"

// multipartOverhead is headroom on top of the avatar size limit for the
// multipart form framing around the file part.
const multipartOverhead = 16 * 1024

func avatarKey(userID string) string {
	return fmt.Sprintf("%s%s", avatarKeyPrefix, userID)
}

type PresignAvatarInput struct {
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

// HandlePresignAvatar validates the avatar file and returns a presigned
// upload URL. The object key is derived from the caller's identity so a
// re-upload replaces the old avatar.
func HandlePresignAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		var input PresignAvatarInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateAvatarSize(input.FileSize); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := storage.ValidateAvatarType(input.FileName, input.MimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := avatarKey(identity.ID)

		uploadURL, err := deps.StorageService.PresignUpload(
			r.Context(),
			key,
			input.MimeType,
			input.FileSize,
			storage.PresignedURLDuration,
		)
		if err != nil {
			logx.Error(err, "Failed to presign avatar upload", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		// Recorded before the client PUTs the object. The key is fixed
		// per user, so an abandoned upload leaves it pointing at the
		// previous avatar, or at nothing for a first-time upload; the
		// next successful upload repairs it.
		if err := deps.Store.UpdateAvatar(r.Context(), identity.ID, key); err != nil {
			logx.Error(err, "Failed to record avatar key", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"uploadUrl": uploadURL,
			"key":       key,
		})
	}
}

// HandleUploadAvatar accepts the avatar file itself as multipart form
// data and stores it server-side. The key is recorded only after the
// upload succeeds, so this path never leaves a dangling record.
func HandleUploadAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		r.Body = http.MaxBytesReader(w, r.Body, storage.MaxAvatarSize+multipartOverhead)

		file, header, err := r.FormFile("avatar")
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		defer file.Close()

		if customErr := storage.ValidateAvatarSize(header.Size); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		mimeType := header.Header.Get("Content-Type")
		if customErr := storage.ValidateAvatarType(header.Filename, mimeType); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		key := avatarKey(identity.ID)

		if err := deps.StorageService.Upload(r.Context(), key, mimeType, file); err != nil {
			logx.Error(err, "Failed to upload avatar", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Store.UpdateAvatar(r.Context(), identity.ID, key); err != nil {
			logx.Error(err, "Failed to record avatar key", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"key": key})
	}
}

// HandlePresignAvatarDownload redirects the caller to a time-limited
// download URL for a stored avatar. The key arrives as a query parameter
// so clients can point image sources straight at this route.
func HandlePresignAvatarDownload(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.Query().Get("k")
		if key == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		if !strings.HasPrefix(key, avatarKeyPrefix) {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		url, err := deps.StorageService.PresignDownload(r.Context(), key, storage.PresignedURLDuration)
		if err != nil {
			logx.Error(err, "Failed to presign avatar download", "key", key)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		http.Redirect(w, r, url, http.StatusFound)
	}
}

// HandleDeleteAvatar removes the caller's avatar object from storage and
// clears the recorded key.
func HandleDeleteAvatar(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		key := avatarKey(identity.ID)

		if err := deps.StorageService.Delete(r.Context(), key); err != nil {
			logx.Error(err, "Failed to delete avatar object", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		if err := deps.Store.UpdateAvatar(r.Context(), identity.ID, ""); err != nil {
			logx.Error(err, "Failed to clear avatar key", "user_id", identity.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, nil)
	}
}

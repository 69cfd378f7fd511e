package handler

import (
	"mchat/internal/app/chat"
	"mchat/internal/app/db"
	"mchat/internal/app/storage"
	"mchat/internal/configs"
)

// AppDeps bundles the collaborators every handler constructor receives.
type AppDeps struct {
	Hub            *chat.Hub
	Config         *configs.AppConfig
	Store          *db.Store
	StorageService storage.StorageService
}

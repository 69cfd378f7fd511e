/*
Package handler provides the HTTP handlers and routing setup for the server.

This file holds user search.
*/
package handler

import (
	"net/http"

	"mchat/internal/pkg/auth/jwt"
	"mchat/internal/pkg/errs"
	"mchat/internal/pkg/logx"
	"mchat/internal/pkg/resp"
)

// HandleSearchUsers finds users by name or email fragment, excluding the caller.
func HandleSearchUsers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		identity := jwt.GetPayloadFromContext(r)

		query := r.URL.Query().Get("search")
		if query == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		users, err := deps.Store.SearchUsers(r.Context(), query, identity.ID)
		if err != nil {
			logx.Error(err, "User search failed", "query", query)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, users)
	}
}

package handler

import (
	"context"

	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/auth"
)

// checkActor rejects a request whose body names a different user than its
// bearer token.
//
// BODY ID VS TOKEN:
// The client API names the acting user in the request body (user_id,
// userId, owner_id). Those routes sit behind auth.OptionalAuth, so a
// request that carries a token has the token's user id in its context, and
// the body must agree with it. A signed-in client therefore cannot vote,
// favorite, comment, subscribe or post as somebody else by editing the body.
// A request with no token keeps the body id as is.
func checkActor(ctx context.Context, bodyUserID int64) error {
	if userID, ok := auth.UserIDFromContext(ctx); ok && userID != bodyUserID {
		return apperror.Forbidden("request user does not match the authenticated user")
	}
	return nil
}

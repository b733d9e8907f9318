package model

import "time"

// Comment is a text reply attached to a post.
type Comment struct {
	ID        int64     `json:"id"`
	Text      string    `json:"text"`
	OwnerID   int64     `json:"owner_id"`
	PostID    int64     `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// CanDelete reports whether actingUserID may delete the comment on a post
// owned by postOwnerID: the post owner and the comment owner may.
func (c Comment) CanDelete(actingUserID, postOwnerID int64) bool {
	return actingUserID != 0 && (actingUserID == c.OwnerID || actingUserID == postOwnerID)
}

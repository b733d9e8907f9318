package interaction

import "github.com/fashionpolice/fashion-police/internal/model"

// ApplyLike inverts the like flag. A resulting like clears the dislike.
func ApplyLike(a model.ClothingArticle) model.ClothingArticle {
	a.UserUpvoted = !a.UserUpvoted
	if a.UserUpvoted {
		a.UserDownvoted = false
	}
	return a
}

// ApplyDislike inverts the dislike flag. A resulting dislike clears the like.
func ApplyDislike(a model.ClothingArticle) model.ClothingArticle {
	a.UserDownvoted = !a.UserDownvoted
	if a.UserDownvoted {
		a.UserUpvoted = false
	}
	return a
}

// ApplyFavorite inverts the favorite flag and leaves the votes alone.
func ApplyFavorite(a model.ClothingArticle) model.ClothingArticle {
	a.UserFavorited = !a.UserFavorited
	return a
}

// restoreVotes copies the like and dislike flags of from onto a, keeping
// a's tally and favorite.
func restoreVotes(a, from model.ClothingArticle) model.ClothingArticle {
	a.UserUpvoted = from.UserUpvoted
	a.UserDownvoted = from.UserDownvoted
	return a
}

// restoreFavorite copies the favorite flag of from onto a.
func restoreFavorite(a, from model.ClothingArticle) model.ClothingArticle {
	a.UserFavorited = from.UserFavorited
	return a
}

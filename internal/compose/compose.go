// Package compose is the post creation flow: a draft built up step by step,
// a review gate, and the upload.
package compose

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	"github.com/fashionpolice/fashion-police/internal/api"
	"github.com/fashionpolice/fashion-police/internal/apperror"
	"github.com/fashionpolice/fashion-police/internal/model"
	"github.com/fashionpolice/fashion-police/internal/session"
)

// NoCategory is the category placeholder before the user picks one.
const NoCategory = "---"

// Remote is the slice of the API post creation calls. *api.Client
// implements it.
type Remote interface {
	CreatePost(ctx context.Context, in api.CreatePostRequest) (*api.CreatePostResponse, error)
}

// Draft is a snapshot of a post being composed.
type Draft struct {
	Category    string
	Image       []byte
	Items       []string // in the order they were added
	Available   []string // in canonical order
	Description string
	Visibility  string
}

// Composer owns one draft.
type Composer struct {
	remote   Remote
	sessions *session.Holder
	logger   *slog.Logger

	mu    sync.Mutex
	draft Draft
}

func New(remote Remote, sessions *session.Holder, logger *slog.Logger) *Composer {
	c := &Composer{
		remote:   remote,
		sessions: sessions,
		logger:   logger,
	}
	c.draft = emptyDraft()
	return c
}

func emptyDraft() Draft {
	return Draft{
		Category:   NoCategory,
		Items:      []string{},
		Available:  slices.Clone(model.ClothingItems),
		Visibility: model.VisibilityAll,
	}
}

// Draft returns a snapshot of the current draft.
func (c *Composer) Draft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	d := c.draft
	d.Image = slices.Clone(d.Image)
	d.Items = slices.Clone(d.Items)
	d.Available = slices.Clone(d.Available)
	return d
}

// SetCategory picks the category by name.
func (c *Composer) SetCategory(name string) {
	c.mu.Lock()
	c.draft.Category = name
	c.mu.Unlock()
}

// SetImage sets the raw image bytes as picked by the user.
func (c *Composer) SetImage(raw []byte) {
	c.mu.Lock()
	c.draft.Image = slices.Clone(raw)
	c.mu.Unlock()
}

// SetDescription sets the free text description.
func (c *Composer) SetDescription(text string) {
	c.mu.Lock()
	c.draft.Description = text
	c.mu.Unlock()
}

// SetVisibility restricts the post to a gender, or to nobody in particular
// with model.VisibilityAll.
func (c *Composer) SetVisibility(v string) error {
	if v != model.VisibilityAll && !model.IsValidGender(v) {
		return apperror.ValidationFailed("visibility", fmt.Sprintf("unknown visibility %q", v))
	}
	c.mu.Lock()
	c.draft.Visibility = v
	c.mu.Unlock()
	return nil
}

// AddItem moves item from the available list to the added list.
func (c *Composer) AddItem(item string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.draft.Available, item)
	if i < 0 {
		if slices.Contains(c.draft.Items, item) {
			return apperror.Conflict("items", fmt.Sprintf("%s already added", item))
		}
		return apperror.ValidationFailed("items", fmt.Sprintf("unknown item %q", item))
	}
	c.draft.Available = slices.Delete(c.draft.Available, i, i+1)
	c.draft.Items = append(c.draft.Items, item)
	return nil
}

// RemoveItem moves item back to the available list at its canonical
// position.
func (c *Composer) RemoveItem(item string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	i := slices.Index(c.draft.Items, item)
	if i < 0 {
		return apperror.NotFound("item", item)
	}
	c.draft.Items = slices.Delete(c.draft.Items, i, i+1)

	rank := model.ClothingItemIndex(item)
	at := len(c.draft.Available)
	for j, v := range c.draft.Available {
		if model.ClothingItemIndex(v) > rank {
			at = j
			break
		}
	}
	c.draft.Available = slices.Insert(c.draft.Available, at, item)
	return nil
}

// Reset discards the draft.
func (c *Composer) Reset() {
	c.mu.Lock()
	c.draft = emptyDraft()
	c.mu.Unlock()
}

// Review checks the draft can be submitted: a subscribed category is
// selected and an image is set.
func (c *Composer) Review() (Draft, error) {
	d := c.Draft()
	s := c.sessions.Load()

	subscribed := false
	for _, name := range s.Categories() {
		if name == d.Category {
			subscribed = true
			break
		}
	}
	switch {
	case len(s.Categories()) == 0:
		return d, apperror.ValidationFailed("category", "Subscribe to a category before posting")
	case d.Category == NoCategory || !subscribed:
		return d, apperror.ValidationFailed("category", "Select a category")
	case len(d.Image) == 0:
		return d, apperror.ValidationFailed("image", "Select an image")
	}
	return d, nil
}

// Submit reviews the draft, prepares the image and uploads the post. On
// success the draft is reset and the new post id returned.
func (c *Composer) Submit(ctx context.Context) (int64, error) {
	d, err := c.Review()
	if err != nil {
		return 0, err
	}
	s := c.sessions.Load()
	if !s.SignedIn() {
		return 0, apperror.Unauthorized("sign in to post")
	}

	img, err := PrepareImage(d.Image)
	if err != nil {
		return 0, err
	}

	resp, err := c.remote.CreatePost(ctx, api.CreatePostRequest{
		Image:             base64.StdEncoding.EncodeToString(img),
		OwnerID:           s.ID,
		Category:          d.Category,
		Description:       strings.TrimSpace(d.Description),
		ClothingItems:     d.Items,
		GenderRestriction: d.Visibility,
	})
	if err != nil {
		c.logger.Error("failed to create post",
			slog.String("category", d.Category),
			slog.String("error", err.Error()),
		)
		return 0, err
	}

	c.Reset()
	c.logger.Info("post created", slog.Int64("post_id", resp.PostID), slog.Int("image_bytes", len(img)))
	return resp.PostID, nil
}

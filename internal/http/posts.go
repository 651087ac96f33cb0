package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"board/internal/domain"
	"board/internal/service"
	"board/internal/session"
)

const (
	msgPosted       = "Your post has been published."
	msgPostNotFound = "The post does not exist."
	msgCannotEdit   = "You do not have permission to edit this post."
	msgUpdated      = "The post has been updated."
	msgDeleted      = "The post has been deleted."
	msgCannotDelete = "You cannot delete this post or it does not exist."
)

func (h *Handler) index(c *gin.Context) {
	query := domain.PostQuery{
		Text:  c.Query("q"),
		Scope: domain.ParseSearchScope(c.Query("type")),
	}

	posts, err := h.posts.List(c.Request.Context(), query)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := make([]PostSummaryResponse, len(posts))
	for i := range posts {
		resp[i] = summaryToResponse(posts[i])
	}
	h.render(c, http.StatusOK, "index", gin.H{
		"posts":        resp,
		"search_query": query.Text,
		"search_type":  string(query.Scope),
	})
}

func (h *Handler) writePage(c *gin.Context) {
	h.render(c, http.StatusOK, "write", nil)
}

func (h *Handler) write(c *gin.Context) {
	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		h.render(c, http.StatusBadRequest, "write", gin.H{"errors": fieldErrors(err)})
		return
	}

	if _, err := h.posts.Create(c.Request.Context(), actorOf(c), form.Title, form.Content); err != nil {
		if errors.Is(err, service.ErrUnknownAuthor) {
			h.sessions.Clear(c)
			h.redirect(c, "/login", session.FlashDanger, msgAccountGone)
			return
		}
		h.fail(c, err)
		return
	}

	h.redirect(c, "/", session.FlashSuccess, msgPosted)
}

func (h *Handler) viewPost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.redirect(c, "/", session.FlashDanger, msgPostNotFound)
		return
	}

	post, err := h.posts.View(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			h.redirect(c, "/", session.FlashDanger, msgPostNotFound)
			return
		}
		h.fail(c, err)
		return
	}

	h.render(c, http.StatusOK, "view", gin.H{
		"post":     postToResponse(*post),
		"is_owner": session.From(c).UserID == post.UserID,
	})
}

func (h *Handler) editPage(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.redirect(c, "/", session.FlashDanger, msgPostNotFound)
		return
	}

	post, err := h.posts.GetOwned(c.Request.Context(), actorOf(c), id)
	if err != nil {
		h.denyEdit(c, err)
		return
	}
	h.render(c, http.StatusOK, "edit", gin.H{"post": postToResponse(*post)})
}

func (h *Handler) edit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.redirect(c, "/", session.FlashDanger, msgPostNotFound)
		return
	}

	var form postForm
	if err := c.ShouldBind(&form); err != nil {
		post, gateErr := h.posts.GetOwned(c.Request.Context(), actorOf(c), id)
		if gateErr != nil {
			h.denyEdit(c, gateErr)
			return
		}
		h.render(c, http.StatusBadRequest, "edit", gin.H{
			"post":   postToResponse(*post),
			"errors": fieldErrors(err),
		})
		return
	}

	if err := h.posts.Update(c.Request.Context(), actorOf(c), id, form.Title, form.Content); err != nil {
		h.denyEdit(c, err)
		return
	}
	h.redirect(c, fmt.Sprintf("/post/%d", id), session.FlashSuccess, msgUpdated)
}

// denyEdit answers a failed ownership gate on the edit routes.
func (h *Handler) denyEdit(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		h.redirect(c, "/", session.FlashDanger, msgPostNotFound)
	case errors.Is(err, service.ErrForbidden):
		h.redirect(c, "/", session.FlashDanger, msgCannotEdit)
	default:
		h.fail(c, err)
	}
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.redirect(c, "/", session.FlashDanger, msgCannotDelete)
		return
	}

	err := h.posts.Delete(c.Request.Context(), actorOf(c), id)
	switch {
	case err == nil:
		h.redirect(c, "/", session.FlashSuccess, msgDeleted)
	case errors.Is(err, service.ErrPostNotFound), errors.Is(err, service.ErrForbidden):
		h.redirect(c, "/", session.FlashDanger, msgCannotDelete)
	default:
		h.fail(c, err)
	}
}

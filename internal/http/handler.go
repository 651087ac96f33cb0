package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"board/internal/domain"
	"board/internal/service"
	"board/internal/session"
)

// Pinger reports database reachability for the health route.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Handler wires HTTP routes to domain services.
type Handler struct {
	users    service.UserService
	posts    service.PostService
	sessions *session.Manager
	db       Pinger
	logger   *logrus.Logger
}

func NewHandler(users service.UserService, posts service.PostService, sessions *session.Manager, db Pinger, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Handler{
		users:    users,
		posts:    posts,
		sessions: sessions,
		db:       db,
		logger:   logger,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(requestID(), requestLogger(h.logger), h.sessions.Middleware())

	router.GET("/", h.index)
	router.GET("/register", h.registerPage)
	router.POST("/register", h.register)
	router.GET("/login", h.loginPage)
	router.POST("/login", h.login)
	router.GET("/logout", h.logout)
	router.GET("/post/:id", h.viewPost)
	router.GET("/healthz", h.health)

	member := router.Group("/")
	member.Use(h.requireLogin())
	{
		member.GET("/write", h.writePage)
		member.POST("/write", h.write)
		member.GET("/edit/:id", h.editPage)
		member.POST("/edit/:id", h.edit)
		member.POST("/delete/:id", h.deletePost)
		member.GET("/profile", h.profile)
		member.POST("/withdraw", h.withdraw)
	}
}

func (h *Handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if h.db != nil {
		if err := h.db.PingContext(ctx); err != nil {
			h.logger.WithError(err).Warn("health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"ok": "ok"})
}

// render answers with the page document: page name, current user,
// consumed flashes and the page data.
func (h *Handler) render(c *gin.Context, status int, page string, data gin.H) {
	body := gin.H{
		"page":         page,
		"current_user": currentUser(session.From(c)),
		"flashes":      h.sessions.Flashes(c),
	}
	for k, v := range data {
		body[k] = v
	}
	c.JSON(status, body)
}

// redirect flashes message and sends the client to location.
func (h *Handler) redirect(c *gin.Context, location, category, message string) {
	if message != "" {
		h.sessions.AddFlash(c, category, message)
	}
	c.Redirect(http.StatusFound, location)
}

// fail records err for the request logger and answers with a generic 500.
func (h *Handler) fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

func actorOf(c *gin.Context) service.Actor {
	s := session.From(c)
	return service.Actor{UserID: s.UserID, Username: s.Username}
}

func parseID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

func currentUser(s session.Session) *UserResponse {
	if !s.Authenticated() {
		return nil
	}
	return &UserResponse{ID: s.UserID, Username: s.Username}
}

type PostSummaryResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	Views     int64  `json:"views"`
}

type PostResponse struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UserID    int64  `json:"user_id"`
	Username  string `json:"username"`
	CreatedAt string `json:"created_at"`
	Views     int64  `json:"views"`
}

func summaryToResponse(p domain.PostSummary) PostSummaryResponse {
	return PostSummaryResponse{
		ID:        p.ID,
		Title:     p.Title,
		Username:  p.Username,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		Views:     p.Views,
	}
}

func postToResponse(p domain.Post) PostResponse {
	return PostResponse{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		UserID:    p.UserID,
		Username:  p.Username,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
		Views:     p.Views,
	}
}

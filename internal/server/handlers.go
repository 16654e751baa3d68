package server

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kanbanflow/internal/board"
	"kanbanflow/internal/detail"
	"kanbanflow/internal/model"
	"kanbanflow/internal/mutate"
	"kanbanflow/internal/search"
)

type titleRequest struct {
	Title string `json:"title"`
}

type moveCardRequest struct {
	FromListID string `json:"fromListId" binding:"required"`
	FromIndex  *int   `json:"fromIndex" binding:"required"`
	ToListID   string `json:"toListId" binding:"required"`
	// ToIndex is optional; omitted appends.
	ToIndex *int `json:"toIndex"`
}

type moveListRequest struct {
	ToIndex *int `json:"toIndex" binding:"required"`
}

type commentRequest struct {
	Text string `json:"text"`
}

type descriptionRequest struct {
	// Context overrides the card's description as the generation context.
	Context *string `json:"context"`
}

type chatRequest struct {
	Message string `json:"message" binding:"required"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "revision": s.eng.Revision()})
}

func (s *Server) getBoard(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Board())
}

func (s *Server) getCard(c *gin.Context) {
	card, ok := s.eng.Board().FindCard(c.Param("id"))
	if !ok {
		s.fail(c, mutate.NotFoundError{Kind: "card", ID: c.Param("id")})
		return
	}
	c.JSON(http.StatusOK, card)
}

func (s *Server) addList(c *gin.Context) {
	var req titleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	id, b, err := s.eng.AddList(req.Title)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b.Lists[id])
}

func (s *Server) addCard(c *gin.Context) {
	var req titleRequest
	// An empty body is allowed: the card gets the default title.
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	id, b, err := s.eng.AddCard(c.Param("id"), req.Title)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, b.Cards[id])
}

func (s *Server) moveList(c *gin.Context) {
	var req moveListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "toIndex is required"})
		return
	}
	b, err := s.eng.MoveList(c.Param("id"), *req.ToIndex)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"listOrder": b.ListOrder})
}

func (s *Server) updateCard(c *gin.Context) {
	var patch model.CardPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	id := c.Param("id")
	b, err := s.eng.UpdateCard(id, patch)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b.Cards[id])
}

// moveCard applies a drop. Unlike the interactive drag session, a stale source
// position is reported (409) so the client can refetch.
func (s *Server) moveCard(c *gin.Context) {
	var req moveCardRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fromListId, fromIndex and toListId are required"})
		return
	}
	toIndex := mutate.AppendIndex
	if req.ToIndex != nil {
		toIndex = *req.ToIndex
	}
	id := c.Param("id")
	b, err := s.eng.Apply(board.MoveCard{
		CardID:     id,
		FromListID: req.FromListID,
		FromIndex:  *req.FromIndex,
		ToListID:   req.ToListID,
		ToIndex:    toIndex,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b.Cards[id])
}

func (s *Server) postComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	ctl := detail.New(s.eng, s.ai)
	if err := ctl.Open(c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	ctl.SetCommentDraft(req.Text)
	a, posted, err := ctl.PostComment()
	if err != nil {
		s.fail(c, err)
		return
	}
	if !posted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "comment must not be blank"})
		return
	}
	c.JSON(http.StatusCreated, a)
}

func (s *Server) toggleChecklistItem(c *gin.Context) {
	id := c.Param("id")
	b, err := s.eng.ToggleChecklistItem(id, c.Param("itemID"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, b.Cards[id])
}

func (s *Server) archiveCard(c *gin.Context) {
	id := c.Param("id")
	if _, err := s.eng.ArchiveCard(id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": id})
}

func (s *Server) generateDescription(c *gin.Context) {
	var req descriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	id := c.Param("id")
	done, ok := s.begin("description:" + id)
	if !ok {
		s.fail(c, detail.ErrInFlight)
		return
	}
	defer done()

	ctl := detail.New(s.eng, s.ai)
	if err := ctl.Open(id); err != nil {
		s.fail(c, err)
		return
	}
	if req.Context != nil {
		ctl.SetDescriptionDraft(*req.Context)
	}
	text, err := ctl.GenerateDescription(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	card, _ := ctl.Card()
	c.JSON(http.StatusOK, gin.H{"description": text, "card": card})
}

func (s *Server) suggestChecklist(c *gin.Context) {
	id := c.Param("id")
	done, ok := s.begin("checklist:" + id)
	if !ok {
		s.fail(c, detail.ErrInFlight)
		return
	}
	defer done()

	ctl := detail.New(s.eng, s.ai)
	if err := ctl.Open(id); err != nil {
		s.fail(c, err)
		return
	}
	n, err := ctl.SuggestChecklist(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}
	card, _ := ctl.Card()
	c.JSON(http.StatusOK, gin.H{"added": n, "card": card})
}

func (s *Server) chat(c *gin.Context) {
	chatter, ok := s.ai.(Chatter)
	if !ok {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "chat is not available"})
		return
	}
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": chatter.Chat(c.Request.Context(), req.Message)})
}

func (s *Server) search(c *gin.Context) {
	if s.ix == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "search is not available"})
		return
	}
	limit := search.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	hits, err := s.ix.Query(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hits": hits})
}

// events streams the current board, then every changed snapshot, as server-sent events.
// A slow client skips intermediate snapshots but always receives the latest.
func (s *Server) events(c *gin.Context) {
	latest, unsubscribe := s.follow()
	defer unsubscribe()

	ctx := c.Request.Context()
	c.Stream(func(w io.Writer) bool {
		select {
		case b := <-latest:
			c.SSEvent("board", b)
			return true
		case <-ctx.Done():
			return false
		case <-s.streams.Done():
			return false
		}
	})
}

func (s *Server) fail(c *gin.Context, err error) {
	var dup mutate.DuplicateIDError
	code := http.StatusInternalServerError
	switch {
	case mutate.IsNotFound(err):
		code = http.StatusNotFound
	case errors.Is(err, mutate.ErrStaleMove), errors.Is(err, detail.ErrInFlight), errors.Is(err, detail.ErrDiscarded):
		code = http.StatusConflict
	case errors.Is(err, mutate.ErrBlankTitle),
		errors.Is(err, mutate.ErrListIDPatch),
		errors.Is(err, mutate.ErrActivityRewrite),
		errors.Is(err, mutate.ErrMissingID),
		errors.As(err, &dup):
		code = http.StatusBadRequest
	}
	if code == http.StatusInternalServerError {
		s.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(code, gin.H{"error": err.Error()})
}

package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/isoguide/internal/core/domain"
	"github.com/custodia-labs/isoguide/internal/logger"
)

// askRequest fields are pointers so absence can be told from zero.
type askRequest struct {
	Question *string `json:"question"`
	TopK     *int    `json:"top_k"`
}

type askResponse struct {
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Contexts []string `json:"contexts"`
}

type healthResponse struct {
	Status     string `json:"status"`
	Collection string `json:"collection"`
	Count      int    `json:"count"`
}

func (s *Server) handleRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": Banner})
}

func (s *Server) handleHealth(c *gin.Context) {
	info, err := s.ask.Info(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, healthResponse{Status: "ok", Collection: info.Name, Count: info.Count})
}

func (s *Server) handleAsk(c *gin.Context) {
	var body askRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	req := domain.AskRequest{TopK: s.cfg.DefaultTopK}
	if body.Question != nil {
		req.Question = *body.Question
	}
	if body.TopK != nil {
		req.TopK = *body.TopK
	}

	answer, err := s.ask.Ask(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, askResponse{
		Question: answer.Question,
		Answer:   answer.Answer,
		Contexts: answer.Contexts,
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrEmbeddingUnavailable), errors.Is(err, domain.ErrVectorStoreUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Structured().Error("request failed",
			"request_id", c.GetString(requestIDKey),
			"path", c.Request.URL.Path,
			"error", err)
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

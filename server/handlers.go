package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/s0up4200/bgmbot/bot"
)

type commandRequest struct {
	Message string `json:"message" binding:"required"`
}

type segmentResponse struct {
	Type bot.SegmentType `json:"type"`
	Text string          `json:"text,omitempty"`
	// Data is base64 encoded by encoding/json
	Data []byte `json:"data,omitempty"`
	Path string `json:"path,omitempty"`
}

type commandResponse struct {
	Handled     bool              `json:"handled"`
	Forward     bool              `json:"forward,omitempty"`
	ForwardName string            `json:"forward_name,omitempty"`
	Segments    []segmentResponse `json:"segments,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleCommand(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBodyBytes)

	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request: " + err.Error()})
		return
	}

	reply, err := s.handler.Handle(c.Request.Context(), req.Message)
	if errors.Is(err, bot.ErrUnknownCommand) {
		c.JSON(http.StatusOK, commandResponse{Handled: false})
		return
	}
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}

	resp := commandResponse{
		Handled:     true,
		Forward:     reply.Forward,
		ForwardName: reply.ForwardName,
	}
	for _, seg := range reply.Segments {
		resp.Segments = append(resp.Segments, segmentResponse{
			Type: seg.Type,
			Text: seg.Text,
			Data: seg.Data,
			Path: seg.Path,
		})
	}

	c.JSON(http.StatusOK, resp)
	s.scheduleCleanup(reply)
}

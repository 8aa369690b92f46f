package server

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Mefoolyhi/Nex/internal/game"
)

type cellView struct {
	Row     int      `json:"row"`
	Col     int      `json:"col"`
	Owner   string   `json:"owner,omitempty"`
	Edges   []string `json:"edges,omitempty"`
	Winning bool     `json:"winning,omitempty"`
}

type playerView struct {
	Name   string `json:"name"`
	Role   string `json:"role"`
	Stroke string `json:"stroke"`
	Score  int    `json:"score"`
}

type gameView struct {
	ID      string       `json:"gameId"`
	Size    int          `json:"size"`
	Status  string       `json:"status"`
	Winner  string       `json:"winner"`
	Active  string       `json:"active"`
	Moves   int          `json:"moves"`
	Players []playerView `json:"players"`
	Cells   []cellView   `json:"cells"`
}

func newGameView(g game.GameView) gameView {
	v := gameView{
		ID:     g.ID,
		Size:   g.Board.Size(),
		Status: g.Status,
		Winner: g.Winner,
		Active: g.Board.Active(),
		Moves:  g.Moves,
	}
	for _, p := range g.Players {
		v.Players = append(v.Players, playerView{
			Name:   p.Name,
			Role:   string(p.Role),
			Stroke: p.Stroke.String(),
			Score:  p.Score,
		})
	}
	for _, at := range g.Board.Coords() {
		cell, _ := g.Board.Cell(at.Row, at.Col)
		v.Cells = append(v.Cells, cellView{
			Row:     at.Row,
			Col:     at.Col,
			Owner:   cell.Owner,
			Edges:   cell.Edges().Strings(),
			Winning: cell.Winning(),
		})
	}
	return v
}

type createGameRequest struct {
	Size       int    `json:"size"`
	First      string `json:"first"`
	Second     string `json:"second"`
	FirstRole  string `json:"firstRole"`
	SecondRole string `json:"secondRole"`
}

func (s *Server) handleCreateGame(c *gin.Context) {
	var req createGameRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}
	opts := s.defaults
	if req.Size != 0 {
		opts.Size = req.Size
	}
	if req.First != "" {
		opts.First = req.First
	}
	if req.Second != "" {
		opts.Second = req.Second
	}
	for _, r := range []struct {
		raw string
		dst *game.Role
	}{{req.FirstRole, &opts.FirstRole}, {req.SecondRole, &opts.SecondRole}} {
		if r.raw == "" {
			continue
		}
		role, err := game.ParseRole(r.raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		*r.dst = role
	}

	g, err := s.StartGame(opts)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	// bots may already have moved, answer with the latest snapshot
	s.respondGame(c, g.ID, http.StatusCreated)
}

func (s *Server) handleGetGame(c *gin.Context) {
	g, ok := s.manager.GetGame(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrGameNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, newGameView(g))
}

type moveRequest struct {
	Player string `json:"player" binding:"required"`
	Row    *int   `json:"row" binding:"required"`
	Col    *int   `json:"col" binding:"required"`
}

func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if _, err := s.submit(game.Move{
		GameID: c.Param("id"),
		Player: req.Player,
		Row:    *req.Row,
		Col:    *req.Col,
	}); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.respondGame(c, c.Param("id"), http.StatusOK)
}

func (s *Server) handleUndo(c *gin.Context) {
	g, err := s.manager.Undo(c.Param("id"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	s.broadcastState(g)
	c.JSON(http.StatusOK, newGameView(g))
}

func (s *Server) handleNearby(c *gin.Context) {
	g, ok := s.manager.GetGame(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrGameNotFound.Error()})
		return
	}
	x, errX := parseFinite(c.Query("x"))
	y, errY := parseFinite(c.Query("y"))
	if errX != nil || errY != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x and y must be finite numbers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"cells": g.Board.Nearby(x, y)})
}

func (s *Server) respondGame(c *gin.Context, id string, status int) {
	g, ok := s.manager.GetGame(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": game.ErrGameNotFound.Error()})
		return
	}
	c.JSON(status, newGameView(g))
}

func parseFinite(v string) (float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, strconv.ErrRange
	}
	return f, nil
}

package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"livestock-sync/internal/livestock_sync/model"
	"livestock-sync/internal/livestock_sync/registry"
)

const (
	defaultLimit = 20
	maxLimit     = 200
)

// Server 조회용 HTTP API.
type Server struct {
	Reader  registry.Reader
	Metrics http.Handler                    // optional, served on /metrics
	Ping    func(ctx context.Context) error // optional store health check
}

func (s *Server) Router() *gin.Engine {
	r := gin.Default()
	r.GET("/healthz", s.healthz)
	r.GET("/farms", s.listFarms)
	r.GET("/animals", s.listAnimals) // ?farm_id=&status=&page=1&limit=20
	r.GET("/animals/:cattleNo/history", s.animalHistory)
	if s.Metrics != nil {
		r.GET("/metrics", gin.WrapH(s.Metrics))
	}
	return r
}

func (s *Server) healthz(c *gin.Context) {
	if s.Ping != nil {
		if err := s.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listFarms(c *gin.Context) {
	farms, err := s.Reader.ListFarms(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if farms == nil {
		farms = []model.Farm{}
	}
	c.JSON(http.StatusOK, gin.H{"total": len(farms), "data": farms})
}

func (s *Server) listAnimals(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > maxLimit {
		limit = defaultLimit
	}

	filter := registry.AnimalFilter{
		FarmID: c.Query("farm_id"),
		Status: model.AnimalStatus(c.Query("status")),
		Skip:   int64((page - 1) * limit),
		Limit:  int64(limit),
	}
	animals, total, err := s.Reader.ListAnimals(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if animals == nil {
		animals = []model.Animal{}
	}
	c.JSON(http.StatusOK, gin.H{
		"total": total,
		"data":  animals,
		"page":  page,
		"limit": limit,
	})
}

func (s *Server) animalHistory(c *gin.Context) {
	detail, err := s.Reader.GetAnimalDetail(c.Request.Context(), c.Param("cattleNo"))
	if errors.Is(err, registry.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "animal history not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": detail})
}

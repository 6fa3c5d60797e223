package stubserver

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Resource names used as document keys.
const (
	resPoints      = "points"
	resBodies      = "bodies"
	resGeometry    = "geometry"
	resPerspective = "perspective"
)

// Server exposes the record store over HTTP.
type Server struct {
	store *Store
}

// NewServer wraps a store in an HTTP server.
func NewServer(store *Store) *Server {
	return &Server{store: store}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.Default()

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	bikes := r.Group("/bikes")
	{
		bikes.GET("/:id", s.getBike)
		bikes.GET("/:id/bodies", s.getBodies)
		bikes.PUT("/:id/points", s.putResource(resPoints))
		bikes.PUT("/:id/bodies", s.putResource(resBodies))
		bikes.PUT("/:id/geometry", s.putResource(resGeometry))
		bikes.PUT("/:id/media/hero/perspective", s.putResource(resPerspective))
	}

	return r
}

// getBike assembles the bike document from the points, geometry, and
// perspective resources. Missing resources come back as empty values so a
// fresh bike id loads cleanly.
func (s *Server) getBike(c *gin.Context) {
	bikeID := c.Param("id")

	doc := gin.H{
		"points":                  []interface{}{},
		"geometry":                gin.H{},
		"hero_perspective_points": []interface{}{},
	}

	if body, ok, err := s.store.Get(bikeID, resPoints); err != nil {
		internalError(c, err)
		return
	} else if ok {
		doc["points"] = unwrap(body, "points")
		// History trails ride along in the points document when an
		// importer seeded them; the tracer never writes them back.
		if trails, ok := field(body, "point_trails"); ok {
			doc["point_trails"] = trails
		}
	}

	if body, ok, err := s.store.Get(bikeID, resGeometry); err != nil {
		internalError(c, err)
		return
	} else if ok {
		doc["geometry"] = json.RawMessage(body)
	}

	if body, ok, err := s.store.Get(bikeID, resPerspective); err != nil {
		internalError(c, err)
		return
	} else if ok {
		doc["hero_perspective_points"] = unwrap(body, "points")
	}

	c.JSON(http.StatusOK, doc)
}

func (s *Server) getBodies(c *gin.Context) {
	body, ok, err := s.store.Get(c.Param("id"), resBodies)
	if err != nil {
		internalError(c, err)
		return
	}
	if !ok {
		c.JSON(http.StatusOK, gin.H{"bodies": []interface{}{}})
		return
	}
	c.Data(http.StatusOK, "application/json", []byte(body))
}

// putResource stores the raw request body for a resource after checking it
// is valid JSON.
func (s *Server) putResource(resource string) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
			return
		}
		if !json.Valid(raw) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
			return
		}
		if err := s.store.Put(c.Param("id"), resource, string(raw)); err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// unwrap extracts one field from a stored JSON object, falling back to the
// whole document when the field is absent.
func unwrap(body, name string) json.RawMessage {
	if v, ok := field(body, name); ok {
		return v
	}
	return json.RawMessage(body)
}

// field extracts one field from a stored JSON object.
func field(body, name string) (json.RawMessage, bool) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &obj); err != nil {
		return nil, false
	}
	v, ok := obj[name]
	return v, ok
}

func internalError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clubroster/membership/internal/api/metrics"
	"github.com/clubroster/membership/internal/core/domain"
	"github.com/clubroster/membership/internal/core/ports"
)

const streamKeepAlive = 25 * time.Second

type DirectoryHandler struct {
	directory ports.DirectoryService
	log       zerolog.Logger
}

func NewDirectoryHandler(directory ports.DirectoryService, log zerolog.Logger) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, log: log}
}

// GetUser returns a profile by id.
//
// @Summary      Get a member profile
// @Tags         directory
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  userResponse
// @Failure      404  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /v1/users/{id} [get]
func (h *DirectoryHandler) GetUser(c echo.Context) error {
	user, err := h.directory.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	if user == nil {
		return domain.ErrUserNotFound
	}
	return c.JSON(http.StatusOK, userResponse{User: user})
}

// Stream sends the member directory as server-sent events, once on connect
// and again after every change.
//
// @Summary      Stream the member directory
// @Tags         directory
// @Produce      text/event-stream
// @Security     BearerAuth
// @Success      200
// @Failure      403  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /v1/users/stream [get]
func (h *DirectoryHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	snapshots, err := h.directory.Stream(ctx)
	if err != nil {
		return err
	}

	metrics.DirectoryStreamSubscribers.Inc()
	defer metrics.DirectoryStreamSubscribers.Dec()

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	ticker := time.NewTicker(streamKeepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := fmt.Fprint(res, ": keep-alive\n\n"); err != nil {
				return nil
			}
			res.Flush()
		case users, ok := <-snapshots:
			if !ok {
				return nil
			}
			if err := writeSnapshot(res, users); err != nil {
				h.log.Debug().Err(err).Msg("directory stream client went away")
				return nil
			}
		}
	}
}

func writeSnapshot(res *echo.Response, users []domain.User) error {
	if users == nil {
		users = []domain.User{}
	}
	data, err := json.Marshal(users)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(res, "event: snapshot\ndata: %s\n\n", data); err != nil {
		return err
	}
	res.Flush()
	return nil
}

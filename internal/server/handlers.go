package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"gridworkspaces/internal/errs"
	"gridworkspaces/internal/panel"
	"gridworkspaces/internal/workspace"
)

type renameRequest struct {
	Name string `json:"name"`
}

// POST /v1/workspaces-configs[?duplicateFrom=ID]
func (s *Server) createConfig(c echo.Context) error {
	ctx := c.Request().Context()
	if src := c.QueryParam("duplicateFrom"); src != "" {
		cfg, err := s.svc.DuplicateConfig(ctx, src)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusCreated, cfg)
	}

	var req workspace.WorkspacesConfig
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	cfg, err := s.svc.CreateConfig(ctx, req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, cfg)
}

func (s *Server) getConfig(c echo.Context) error {
	cfg, err := s.svc.GetConfig(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, cfg)
}

func (s *Server) deleteConfig(c echo.Context) error {
	if err := s.svc.DeleteConfig(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listWorkspaces(c echo.Context) error {
	summaries, err := s.svc.ListWorkspaceSummaries(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, summaries)
}

// POST /v1/workspaces?duplicateFrom=ID
func (s *Server) duplicateWorkspace(c echo.Context) error {
	src := c.QueryParam("duplicateFrom")
	if src == "" {
		return errs.NewValidation("duplicateFrom", "is required")
	}
	ws, err := s.svc.DuplicateWorkspace(c.Request().Context(), src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, ws)
}

func (s *Server) getWorkspace(c echo.Context) error {
	ws, err := s.svc.GetWorkspace(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws)
}

// PUT /v1/workspaces/:id?replaceFrom=ID
func (s *Server) replaceWorkspace(c echo.Context) error {
	src := c.QueryParam("replaceFrom")
	if src == "" {
		return errs.NewValidation("replaceFrom", "is required")
	}
	ws, err := s.svc.ReplaceWorkspace(c.Request().Context(), c.Param("id"), src)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, ws)
}

func (s *Server) renameWorkspace(c echo.Context) error {
	var req renameRequest
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	if err := s.svc.RenameWorkspace(c.Request().Context(), c.Param("id"), req.Name); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) deleteWorkspace(c echo.Context) error {
	if err := s.svc.DeleteWorkspace(c.Request().Context(), c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listPanels(c echo.Context) error {
	panels, err := s.svc.ListPanels(c.Request().Context(), c.Param("id"), queryIDs(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, panels)
}

func (s *Server) getPanel(c echo.Context) error {
	p, err := s.svc.GetPanel(c.Request().Context(), c.Param("id"), c.Param("panelId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) upsertPanels(c echo.Context) error {
	var req []panel.Panel
	if err := decodeBody(c, &req); err != nil {
		return err
	}
	panels, err := s.svc.UpsertPanels(c.Request().Context(), c.Param("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, panels)
}

// DELETE /v1/workspaces/:id/panels?ids=a,b
func (s *Server) deletePanels(c echo.Context) error {
	if err := s.svc.DeletePanels(c.Request().Context(), c.Param("id"), queryIDs(c)); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// PUT /v1/workspaces/:id/panels/:panelId/diagram-config
// The body is stored as is; the response is the id of the stored config.
func (s *Server) saveDiagramConfig(c echo.Context) error {
	blob, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return err
	}
	id, err := s.svc.SaveNadDiagramConfig(c.Request().Context(), c.Param("id"), c.Param("panelId"), blob)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, id)
}

func (s *Server) deleteDiagramConfig(c echo.Context) error {
	if err := s.svc.DeleteNadDiagramConfig(c.Request().Context(), c.Param("id"), c.Param("panelId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// decodeBody reads a JSON request body into v. Panel decoding errors keep
// their kind; any other decoding failure is a validation error.
func decodeBody(c echo.Context, v any) error {
	dec := json.NewDecoder(c.Request().Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, errs.ErrValidation) || errors.Is(err, errs.ErrInvalidPanelKind) {
			return err
		}
		if errors.Is(err, io.EOF) {
			return errs.NewValidation("body", "is required")
		}
		return errs.NewValidation("body", err.Error())
	}
	return nil
}

// queryIDs accepts both ?ids=a,b and ?ids=a&ids=b.
func queryIDs(c echo.Context) []string {
	var ids []string
	for _, v := range c.QueryParams()["ids"] {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				ids = append(ids, id)
			}
		}
	}
	return ids
}

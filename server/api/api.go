package api

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/blockflow/block"
	"github.com/kbukum/blockflow/errors"
	"github.com/kbukum/blockflow/progress"
	"github.com/kbukum/blockflow/server"
	"github.com/kbukum/blockflow/stage"
	"github.com/kbukum/blockflow/validation"
	"github.com/kbukum/blockflow/workspace"
)

// Handler serves the workspace routes from a Manager.
type Handler struct {
	manager *workspace.Manager
}

// New creates a Handler.
func New(m *workspace.Manager) *Handler {
	return &Handler{manager: m}
}

// Register mounts the routes on r.
func (h *Handler) Register(r gin.IRouter) {
	ws := r.Group("/api/v1/workspaces/:ws")

	st := ws.Group("/stages/:stage")
	st.GET("/blocks", h.listBlocks)
	st.POST("/blocks", h.addBlock)
	st.DELETE("/blocks/:id", h.removeBlock)
	st.PATCH("/blocks/:id/position", h.moveBlock)
	st.PUT("/blocks/:id/data", h.setBlockData)
	st.POST("/links", h.connect)
	st.DELETE("/links", h.disconnect)
	st.GET("/chains", h.chains)
	st.GET("/palette", h.palette)
	st.POST("/validate", h.validate)
	st.POST("/reset", h.resetStage)

	ws.GET("/progress", h.progress)
	ws.POST("/progress/:step/complete", h.completeStep)
	ws.POST("/progress/:step/reset", h.resetStep)
}

type addBlockRequest struct {
	Type     string         `json:"type" validate:"required,max=64"`
	Position block.Position `json:"position"`
}

type moveRequest struct {
	X *float64 `json:"x" validate:"required"`
	Y *float64 `json:"y" validate:"required"`
}

type linkRequest struct {
	From string `json:"from" validate:"required,max=128"`
	To   string `json:"to" validate:"required,max=128"`
}

type chainResponse struct {
	Blocks []workspace.Record `json:"blocks"`
}

// target resolves the workspace and stage named in the path.
func (h *Handler) target(c *gin.Context) (*workspace.Workspace, stage.ID, bool) {
	w, ok := h.workspace(c)
	if !ok {
		return nil, "", false
	}
	return w, stage.ID(c.Param("stage")), true
}

func (h *Handler) workspace(c *gin.Context) (*workspace.Workspace, bool) {
	w, err := h.manager.Get(c.Request.Context(), c.Param("ws"))
	if err != nil {
		server.RespondWithError(c, err)
		return nil, false
	}
	return w, true
}

// bind decodes the JSON body into req and runs its validate tags.
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		server.RespondWithError(c, bodyError(err))
		return false
	}
	if err := validation.Validate(req); err != nil {
		server.RespondWithError(c, err)
		return false
	}
	return true
}

func bodyError(err error) *errors.AppError {
	var tooLarge *http.MaxBytesError
	switch {
	case stderrors.As(err, &tooLarge):
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("Request body exceeds %d bytes.", tooLarge.Limit), http.StatusRequestEntityTooLarge)
	case stderrors.Is(err, io.EOF):
		return errors.InvalidInput("body", "request body is empty")
	default:
		return errors.InvalidInput("body", err.Error())
	}
}

func (h *Handler) listBlocks(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	blocks, err := w.Blocks(id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	respondRecords(c, blocks)
}

func (h *Handler) addBlock(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	var req addBlockRequest
	if !bind(c, &req) {
		return
	}
	inst, err := w.AddBlock(c.Request.Context(), id, req.Type, req.Position)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	rec, err := workspace.ToRecord(inst)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondCreated(c, rec)
}

func (h *Handler) removeBlock(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	if err := w.RemoveBlock(c.Request.Context(), id, c.Param("id")); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondNoContent(c)
}

func (h *Handler) moveBlock(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	var req moveRequest
	if !bind(c, &req) {
		return
	}
	pos := block.Position{X: *req.X, Y: *req.Y}
	if err := w.MoveBlock(c.Request.Context(), id, c.Param("id"), pos); err != nil {
		server.RespondWithError(c, err)
		return
	}
	respondBlock(c, w, id, c.Param("id"))
}

func (h *Handler) setBlockData(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil {
		server.RespondWithError(c, bodyError(err))
		return
	}
	if !json.Valid(raw) {
		server.RespondWithError(c, errors.InvalidInput("data", "body is not valid JSON"))
		return
	}
	inst, err := w.SetBlockData(c.Request.Context(), id, c.Param("id"), raw)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	rec, err := workspace.ToRecord(inst)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, rec)
}

func (h *Handler) connect(c *gin.Context) {
	h.link(c, (*workspace.Workspace).Connect)
}

func (h *Handler) disconnect(c *gin.Context) {
	h.link(c, (*workspace.Workspace).Disconnect)
}

func (h *Handler) link(c *gin.Context, fn func(*workspace.Workspace, context.Context, stage.ID, string, string) error) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	var req linkRequest
	if !bind(c, &req) {
		return
	}
	if err := fn(w, c.Request.Context(), id, req.From, req.To); err != nil {
		server.RespondWithError(c, err)
		return
	}
	blocks, err := w.Blocks(id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	respondRecords(c, blocks)
}

func (h *Handler) chains(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	chains, err := w.Chains(id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	out := make([]chainResponse, 0, len(chains))
	for _, ch := range chains {
		recs, err := workspace.ToRecords(ch)
		if err != nil {
			server.RespondWithError(c, err)
			return
		}
		out = append(out, chainResponse{Blocks: recs})
	}
	server.RespondOK(c, out)
}

func (h *Handler) palette(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	entries, err := w.Palette(id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, entries)
}

// validate answers 200 {"success": true} or 422 {"error":
// "VALIDATION_FAILED", "message": ...}. With ?submit=true a passing stage
// also completes its progress step.
func (h *Handler) validate(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	check := w.Validate
	if c.Query("submit") == "true" {
		check = w.Submit
	}
	res, err := check(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	if !res.Success {
		c.JSON(http.StatusUnprocessableEntity, res.Report())
		return
	}
	c.JSON(http.StatusOK, res.Report())
}

func (h *Handler) resetStage(c *gin.Context) {
	w, id, ok := h.target(c)
	if !ok {
		return
	}
	blocks, err := w.ResetStage(c.Request.Context(), id)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	respondRecords(c, blocks)
}

func (h *Handler) progress(c *gin.Context) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	server.RespondOK(c, w.Progress())
}

func (h *Handler) completeStep(c *gin.Context) {
	h.step(c, (*workspace.Workspace).CompleteStep)
}

func (h *Handler) resetStep(c *gin.Context) {
	h.step(c, (*workspace.Workspace).ResetStep)
}

func (h *Handler) step(c *gin.Context, fn func(*workspace.Workspace, context.Context, progress.Step) error) {
	w, ok := h.workspace(c)
	if !ok {
		return
	}
	step := progress.Step(c.Param("step"))
	if err := fn(w, c.Request.Context(), step); err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, w.Progress())
}

func respondBlock(c *gin.Context, w *workspace.Workspace, id stage.ID, blockID string) {
	inst, err := w.Block(id, blockID)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	rec, err := workspace.ToRecord(inst)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, rec)
}

func respondRecords(c *gin.Context, blocks []block.Instance) {
	recs, err := workspace.ToRecords(blocks)
	if err != nil {
		server.RespondWithError(c, err)
		return
	}
	server.RespondOK(c, recs)
}

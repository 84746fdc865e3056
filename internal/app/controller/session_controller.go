package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/foodmarket/provision-backend/internal/app/provision"
	apperrors "github.com/foodmarket/provision-backend/internal/errors"
	"github.com/foodmarket/provision-backend/internal/middleware"
	ws "github.com/foodmarket/provision-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// SessionController exposes the provisioning session of the authenticated
// staff member. Every response carries the resulting view.
type SessionController struct {
	registry *provision.Registry
	hub      *ws.Hub
	upgrader websocket.Upgrader
}

func NewSessionController(registry *provision.Registry, hub *ws.Hub, allowedOrigins []string) *SessionController {
	return &SessionController{
		registry: registry,
		hub:      hub,
		upgrader: ws.NewUpgrader(allowedOrigins),
	}
}

// SessionResponse 세션 조작 결과
type SessionResponse struct {
	Result provision.Result `json:"result"`
	View   provision.View   `json:"view"`
}

// SessionErrorResponse 세션 조작 실패. 확인이 필요한 경우 prompt가 채워진다.
type SessionErrorResponse struct {
	apperrors.ErrorResponse
	Prompt provision.Prompt  `json:"prompt,omitempty"`
	Notice *provision.Notice `json:"notice,omitempty"`
	View   *provision.View   `json:"view,omitempty"`
}

// Answers carries the operator's replies to confirmation prompts.
type Answers struct {
	Answers map[provision.Prompt]bool `json:"answers"`
}

// confirmer merges body answers with ?<prompt>=true|false query parameters,
// which DELETE requests use.
func (a Answers) confirmer(c *gin.Context) provision.AnswerConfirmer {
	out := provision.AnswerConfirmer{}
	for p, v := range a.Answers {
		out[p] = v
	}
	for _, p := range []provision.Prompt{provision.PromptDiscardCart, provision.PromptRemoveActive, provision.PromptRestoreHold} {
		if raw, ok := c.GetQuery(string(p)); ok {
			if v, err := strconv.ParseBool(raw); err == nil {
				out[p] = v
			}
		}
	}
	return out
}

type SearchRequest struct {
	Keyword string `json:"keyword"`
}

type MoveRequest struct {
	Direction provision.Direction `json:"direction" binding:"required,oneof=up down"`
}

type SelectRequest struct {
	Index *int `json:"index" binding:"required"`
}

type AddItemRequest struct {
	ProductID string      `json:"product_id"`
	Barcode   string      `json:"barcode"`
	Quantity  interface{} `json:"quantity"`
}

type SetQuantityRequest struct {
	Quantity interface{} `json:"quantity"`
}

type SubmitRequest struct {
	LifeLove bool `json:"lifelove"`
}

// bindOptional binds a JSON body that may be absent.
func bindOptional(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (ctrl *SessionController) run(c *gin.Context, op string, fn func(ctx context.Context, s *provision.Session) (provision.Result, error)) {
	log := middleware.GetLoggerFromContext(c)
	identity, _ := middleware.GetStaffEmail(c)
	ctx := c.Request.Context()

	res, view, err := ctrl.registry.Do(ctx, identity, func(s *provision.Session) (provision.Result, error) {
		return fn(ctx, s)
	})
	if err != nil {
		log.Debug("Session operation rejected", map[string]interface{}{
			"operation": op,
			"error":     err.Error(),
		})
		respondSessionError(c, err, res, view)
		return
	}

	c.JSON(http.StatusOK, SessionResponse{Result: res, View: view})
}

func respondSessionError(c *gin.Context, err error, res provision.Result, view provision.View) {
	body := SessionErrorResponse{Notice: res.Notice}
	if view.Identity != "" {
		body.View = &view
	}

	status := http.StatusBadRequest
	var confirm *provision.ConfirmationRequiredError
	switch {
	case errors.As(err, &confirm):
		status = http.StatusConflict
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ConfirmRequired, Message: "확인이 필요합니다"}
		body.Prompt = confirm.Prompt
	case errors.Is(err, provision.ErrNoIdentity):
		status = http.StatusUnauthorized
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.AuthUnauthorized, Message: "로그인이 필요합니다"}
	case errors.Is(err, provision.ErrEmptyKeyword):
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionEmptyKeyword, Message: "검색어를 입력해주세요"}
	case errors.Is(err, provision.ErrNoSelection):
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionNoSelection, Message: "선택된 이용자가 없습니다"}
	case errors.Is(err, provision.ErrCandidateOutOfRange):
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionCandidateOutOfRange, Message: "후보 목록 범위를 벗어났습니다"}
	case errors.Is(err, provision.ErrVisitorNotQueued):
		status = http.StatusNotFound
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionVisitorNotQueued, Message: "방문자 목록에 없는 이용자입니다"}
	case errors.Is(err, provision.ErrNoActiveVisitor):
		status = http.StatusConflict
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionNoActiveVisitor, Message: "먼저 방문자를 선택해주세요"}
	case errors.Is(err, provision.ErrEmptyCart):
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionEmptyCart, Message: "장바구니가 비어 있습니다"}
	case errors.Is(err, provision.ErrLineNotFound):
		status = http.StatusNotFound
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionLineNotFound, Message: "장바구니 항목을 찾을 수 없습니다"}
	case errors.Is(err, provision.ErrOverPointCap):
		status = http.StatusUnprocessableEntity
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionOverPointCap, Message: "사용 포인트가 한도를 초과했습니다"}
	case errors.Is(err, provision.ErrSubmitInProgress):
		status = http.StatusConflict
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionSubmitInProgress, Message: "제공 등록을 처리 중입니다"}
	case errors.Is(err, provision.ErrCustomerNotFound):
		status = http.StatusNotFound
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.CustomerNotFound, Message: "이용자를 찾을 수 없습니다"}
	case errors.Is(err, provision.ErrSubmitFailed):
		status = http.StatusInternalServerError
		body.ErrorResponse = apperrors.ErrorResponse{Error: apperrors.ProvisionSubmitFailed, Message: "제공 등록에 실패했습니다. 다시 시도해주세요"}
	default:
		info := apperrors.ParseError(err, "provision session")
		status = apperrors.StatusFor(info.Code)
		body.ErrorResponse = apperrors.ErrorResponse{Error: info.Code, Message: info.Message}
	}

	c.JSON(status, body)
}

func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "잘못된 항목 번호입니다")
		return 0, false
	}
	return index, true
}

func badSessionRequest(c *gin.Context, err error) {
	if err != nil {
		apperrors.BindError(c, err)
		return
	}
	apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "입력 정보가 올바르지 않습니다")
}

// GetView returns the current session view
// GET /api/v1/session
func (ctrl *SessionController) GetView(c *gin.Context) {
	identity, _ := middleware.GetStaffEmail(c)
	view, err := ctrl.registry.View(c.Request.Context(), identity)
	if err != nil {
		respondSessionError(c, err, provision.Result{}, provision.View{})
		return
	}
	c.JSON(http.StatusOK, SessionResponse{View: view})
}

// Search opens the candidate list for a name
// POST /api/v1/session/search
func (ctrl *SessionController) Search(c *gin.Context) {
	var req SearchRequest
	if err := bindOptional(c, &req); err != nil {
		badSessionRequest(c, err)
		return
	}
	ctrl.run(c, "search", func(ctx context.Context, s *provision.Session) (provision.Result, error) {
		return s.Search(ctx, req.Keyword)
	})
}

// MoveSelection moves the candidate highlight
// POST /api/v1/session/search/move
func (ctrl *SessionController) MoveSelection(c *gin.Context) {
	var req MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badSessionRequest(c, err)
		return
	}
	ctrl.run(c, "search_move", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		s.MoveSelection(req.Direction)
		return provision.Result{}, nil
	})
}

// SelectCandidate highlights a candidate by index
// POST /api/v1/session/search/select
func (ctrl *SessionController) SelectCandidate(c *gin.Context) {
	var req SelectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badSessionRequest(c, err)
		return
	}
	ctrl.run(c, "search_select", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		return provision.Result{}, s.SelectCandidate(*req.Index)
	})
}

// ConfirmCandidate queues the highlighted candidate
// POST /api/v1/session/search/confirm
func (ctrl *SessionController) ConfirmCandidate(c *gin.Context) {
	ctrl.run(c, "search_confirm", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		return s.ConfirmCandidate()
	})
}

// CancelSearch closes the candidate list
// POST /api/v1/session/search/cancel
func (ctrl *SessionController) CancelSearch(c *gin.Context) {
	ctrl.run(c, "search_cancel", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		s.AbortSearch()
		return provision.Result{}, nil
	})
}

// ActivateVisitor makes a queued visitor active
// POST /api/v1/session/visitors/:id/activate
func (ctrl *SessionController) ActivateVisitor(c *gin.Context) {
	var req Answers
	if err := bindOptional(c, &req); err != nil {
		badSessionRequest(c, err)
		return
	}
	id := c.Param("id")
	ctrl.run(c, "activate_visitor", func(ctx context.Context, s *provision.Session) (provision.Result, error) {
		return s.ActivateVisitor(ctx, id, req.confirmer(c))
	})
}

// RemoveVisitor drops a visitor from the queue
// DELETE /api/v1/session/visitors/:id?remove_active=true
func (ctrl *SessionController) RemoveVisitor(c *gin.Context) {
	var req Answers
	if err := bindOptional(c, &req); err != nil {
		badSessionRequest(c, err)
		return
	}
	id := c.Param("id")
	ctrl.run(c, "remove_visitor", func(ctx context.Context, s *provision.Session) (provision.Result, error) {
		return s.RemoveVisitor(ctx, id, req.confirmer(c))
	})
}

// AddItem adds a product by id or barcode
// POST /api/v1/session/cart/items
func (ctrl *SessionController) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || (req.ProductID == "" && req.Barcode == "") {
		badSessionRequest(c, err)
		return
	}
	ref := provision.ProductRef{ProductID: req.ProductID, Barcode: req.Barcode}
	ctrl.run(c, "add_item", func(ctx context.Context, s *provision.Session) (provision.Result, error) {
		return s.AddProduct(ctx, ref, req.Quantity)
	})
}

// SetQuantity overwrites the quantity of a line
// PUT /api/v1/session/cart/items/:index
func (ctrl *SessionController) SetQuantity(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var req SetQuantityRequest
	if err := bindOptional(c, &req); err != nil {
		badSessionRequest(c, err)
		return
	}
	ctrl.run(c, "set_quantity", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		return s.SetQuantity(index, req.Quantity)
	})
}

// IncrementItem adds one to a line
// POST /api/v1/session/cart/items/:index/increment
func (ctrl *SessionController) IncrementItem(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	ctrl.run(c, "increment", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		return s.Increment(index)
	})
}

// DecrementItem takes one from a line
// POST /api/v1/session/cart/items/:index/decrement
func (ctrl *SessionController) DecrementItem(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	ctrl.run(c, "decrement", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		return s.Decrement(index)
	})
}

// RemoveItem deletes a line
// DELETE /api/v1/session/cart/items/:index
func (ctrl *SessionController) RemoveItem(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}
	ctrl.run(c, "remove_item", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		return s.RemoveLine(index)
	})
}

// Undo POST /api/v1/session/cart/undo
func (ctrl *SessionController) Undo(c *gin.Context) {
	ctrl.run(c, "undo", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		return s.Undo()
	})
}

// Redo POST /api/v1/session/cart/redo
func (ctrl *SessionController) Redo(c *gin.Context) {
	ctrl.run(c, "redo", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		return s.Redo()
	})
}

// Hold suspends the active visitor's cart
// POST /api/v1/session/hold
func (ctrl *SessionController) Hold(c *gin.Context) {
	ctrl.run(c, "hold", func(ctx context.Context, s *provision.Session) (provision.Result, error) {
		return s.Hold(ctx)
	})
}

// LoadHold restores the active visitor's held cart
// POST /api/v1/session/hold/load
func (ctrl *SessionController) LoadHold(c *gin.Context) {
	var req Answers
	if err := bindOptional(c, &req); err != nil {
		badSessionRequest(c, err)
		return
	}
	ctrl.run(c, "load_hold", func(ctx context.Context, s *provision.Session) (provision.Result, error) {
		return s.LoadHold(ctx, req.confirmer(c))
	})
}

// Submit records the provision
// POST /api/v1/session/submit
func (ctrl *SessionController) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := bindOptional(c, &req); err != nil {
		badSessionRequest(c, err)
		return
	}
	ctrl.run(c, "submit", func(ctx context.Context, s *provision.Session) (provision.Result, error) {
		return s.Submit(ctx, req.LifeLove)
	})
}

// Reset clears the whole session
// POST /api/v1/session/reset
func (ctrl *SessionController) Reset(c *gin.Context) {
	ctrl.run(c, "reset", func(_ context.Context, s *provision.Session) (provision.Result, error) {
		s.Reset()
		return provision.Result{}, nil
	})
}

// WebSocketHandler streams session views to the browser
// GET /api/v1/session/ws
func (ctrl *SessionController) WebSocketHandler(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	identity, ok := middleware.GetStaffEmail(c)
	if !ok {
		apperrors.Unauthorized(c, "로그인이 필요합니다")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("Failed to upgrade to WebSocket", err)
		return
	}

	ws.Serve(context.WithoutCancel(c.Request.Context()), ctrl.hub, conn, identity)

	log.Info("WebSocket connection established", map[string]interface{}{
		"identity": identity,
	})
}

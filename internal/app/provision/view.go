package provision

import "github.com/foodmarket/provision-backend/internal/app/model"

// QueueEntry is one queued visitor as rendered.
type QueueEntry struct {
	Customer model.Customer `json:"customer"`
	Active   bool           `json:"active"`
	HasHold  bool           `json:"has_hold"` // 보류 장바구니 존재 여부
}

type ResolverView struct {
	State       ResolverState    `json:"state"`
	Query       string           `json:"query"`
	Candidates  []model.Customer `json:"candidates"`
	ActiveIndex int              `json:"active_index"`
}

// View is the observable state of a session.
type View struct {
	Identity            string           `json:"identity"`
	Queue               []QueueEntry     `json:"queue"`
	Active              *model.Customer  `json:"active"`
	Lines               []model.CartLine `json:"lines"`
	Total               int              `json:"total"`
	PointCap            int              `json:"point_cap"`
	OverCap             bool             `json:"over_cap"`
	Warning             *Notice          `json:"warning,omitempty"`
	CanUndo             bool             `json:"can_undo"`
	CanRedo             bool             `json:"can_redo"`
	ProductPanelVisible bool             `json:"product_panel_visible"`
	Resolver            ResolverView     `json:"resolver"`
	SubmitState         SubmitState      `json:"submit_state"`
}

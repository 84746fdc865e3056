package provision

import "errors"

// Validation and precondition failures. The operation was not attempted and
// session state is unchanged.
var (
	ErrEmptyKeyword        = errors.New("search keyword is empty")
	ErrNoSelection         = errors.New("no candidate selected")
	ErrCandidateOutOfRange = errors.New("candidate index out of range")
	ErrVisitorNotQueued    = errors.New("visitor is not in the queue")
	ErrNoActiveVisitor     = errors.New("no active visitor")
	ErrEmptyCart           = errors.New("cart is empty")
	ErrLineNotFound        = errors.New("cart line not found")
	ErrOverPointCap        = errors.New("cart total exceeds the point cap")
	ErrNoIdentity          = errors.New("no authenticated identity")
	ErrSubmitInProgress    = errors.New("submission already in progress")
	ErrSubmitFailed        = errors.New("provision submission failed")
	ErrCustomerNotFound    = errors.New("customer not found")
)

// NoticeCode identifies a non-fatal, user-visible notice.
type NoticeCode string

const (
	NoticeCustomerNotFound     NoticeCode = "CUSTOMER_NOT_FOUND"
	NoticeProductNotFound      NoticeCode = "PRODUCT_NOT_FOUND"
	NoticeHoldNotFound         NoticeCode = "HOLD_NOT_FOUND"
	NoticeVisitorAlreadyQueued NoticeCode = "VISITOR_ALREADY_QUEUED"
	NoticeQuantityCorrected    NoticeCode = "QUANTITY_CORRECTED"
	NoticeNothingToUndo        NoticeCode = "NOTHING_TO_UNDO"
	NoticeNothingToRedo        NoticeCode = "NOTHING_TO_REDO"
	NoticePointCapExceeded     NoticeCode = "POINT_CAP_EXCEEDED"
	NoticeHoldSaved            NoticeCode = "HOLD_SAVED"
	NoticeHoldRestored         NoticeCode = "HOLD_RESTORED"
	NoticeSubmitted            NoticeCode = "PROVISION_SUBMITTED"
	NoticeDeclined             NoticeCode = "CONFIRMATION_DECLINED"
)

var noticeMessages = map[NoticeCode]string{
	NoticeCustomerNotFound:     "일치하는 지원 대상 이용자가 없습니다",
	NoticeProductNotFound:      "해당 물품을 찾을 수 없습니다",
	NoticeHoldNotFound:         "보류된 장바구니가 없습니다",
	NoticeVisitorAlreadyQueued: "이미 방문자 목록에 있는 이용자입니다",
	NoticeQuantityCorrected:    "수량은 1개에서 최대 수량 사이로 조정되었습니다",
	NoticeNothingToUndo:        "되돌릴 작업이 없습니다",
	NoticeNothingToRedo:        "다시 실행할 작업이 없습니다",
	NoticePointCapExceeded:     "사용 포인트가 한도를 초과했습니다",
	NoticeHoldSaved:            "장바구니를 보류했습니다",
	NoticeHoldRestored:         "보류된 장바구니를 불러왔습니다",
	NoticeSubmitted:            "제공이 등록되었습니다",
	NoticeDeclined:             "작업이 취소되었습니다",
}

// Notice is a message for the operator that does not abort the operation.
type Notice struct {
	Code    NoticeCode `json:"code"`
	Message string     `json:"message"`
}

func newNotice(code NoticeCode) *Notice {
	return &Notice{Code: code, Message: noticeMessages[code]}
}

package errors

// 에러 코드 상수 정의
// 형식: CATEGORY_SPECIFIC_DETAIL
// 프론트엔드에서 이 코드를 기반으로 메시지를 매핑함

const (
	// ==================== 인증 (AUTH_) ====================
	AuthUnauthorized       = "AUTH_UNAUTHORIZED"        // 로그인 필요
	AuthInvalidCredentials = "AUTH_INVALID_CREDENTIALS" // 잘못된 이메일/비밀번호
	AuthTokenExpired       = "AUTH_TOKEN_EXPIRED"       // 토큰 만료
	AuthTokenInvalid       = "AUTH_TOKEN_INVALID"       // 잘못된 토큰
	AuthEmailAlreadyExists = "AUTH_EMAIL_EXISTS"        // 이메일 중복
	AuthNotApproved        = "AUTH_NOT_APPROVED"        // 관리자 승인 대기

	// ==================== 인가/권한 (AUTHZ_) ====================
	AuthzForbidden    = "AUTHZ_FORBIDDEN"      // 접근 권한 없음
	AuthzRoleNotFound = "AUTHZ_ROLE_NOT_FOUND" // 권한 정보 없음
	AuthzAdminOnly    = "AUTHZ_ADMIN_ONLY"     // 관리자만 가능

	// ==================== 검증 (VALIDATION_) ====================
	ValidationInvalidInput  = "VALIDATION_INVALID_INPUT"  // 잘못된 입력
	ValidationInvalidID     = "VALIDATION_INVALID_ID"     // 잘못된 ID
	ValidationInvalidFormat = "VALIDATION_INVALID_FORMAT" // 잘못된 형식
	ValidationInvalidRange  = "VALIDATION_INVALID_RANGE"  // 범위 초과
	ValidationTooShort      = "VALIDATION_TOO_SHORT"      // 너무 짧음
	ValidationRequired      = "VALIDATION_REQUIRED"       // 필수 항목

	// ==================== 리소스 (RESOURCE_) ====================
	ResourceNotFound      = "RESOURCE_NOT_FOUND"      // 리소스 없음
	ResourceAlreadyExists = "RESOURCE_ALREADY_EXISTS" // 이미 존재
	ResourceConflict      = "RESOURCE_CONFLICT"       // 충돌

	// ==================== 이용자 (CUSTOMER_) ====================
	CustomerNotFound = "CUSTOMER_NOT_FOUND" // 이용자 없음

	// ==================== 물품 (PRODUCT_) ====================
	ProductNotFound      = "PRODUCT_NOT_FOUND"      // 물품 없음
	ProductBarcodeExists = "PRODUCT_BARCODE_EXISTS" // 바코드 중복

	// ==================== 제공 (PROVISION_) ====================
	ConfirmRequired              = "CONFIRM_REQUIRED"                 // 사용자 확인 필요
	ProvisionNoActiveVisitor     = "PROVISION_NO_ACTIVE_VISITOR"      // 선택된 방문자 없음
	ProvisionVisitorNotQueued    = "PROVISION_VISITOR_NOT_QUEUED"     // 방문자 목록에 없음
	ProvisionEmptyCart           = "PROVISION_EMPTY_CART"             // 장바구니 비어 있음
	ProvisionOverPointCap        = "PROVISION_OVER_POINT_CAP"         // 포인트 한도 초과
	ProvisionLineNotFound        = "PROVISION_LINE_NOT_FOUND"         // 장바구니 항목 없음
	ProvisionNoSelection         = "PROVISION_NO_SELECTION"           // 선택된 후보 없음
	ProvisionEmptyKeyword        = "PROVISION_EMPTY_KEYWORD"          // 검색어 없음
	ProvisionSubmitInProgress    = "PROVISION_SUBMIT_IN_PROGRESS"     // 제공 등록 처리 중
	ProvisionSubmitFailed        = "PROVISION_SUBMIT_FAILED"          // 제공 등록 실패
	ProvisionCandidateOutOfRange = "PROVISION_CANDIDATE_OUT_OF_RANGE" // 후보 범위 초과

	// ==================== 통계 (STATS_) ====================
	StatsInvalidQuarter = "STATS_INVALID_QUARTER" // 잘못된 분기 키

	// ==================== 내부 오류 (INTERNAL_) ====================
	InternalServerError   = "INTERNAL_SERVER_ERROR"   // 서버 오류
	InternalDatabaseError = "INTERNAL_DATABASE_ERROR" // DB 오류
	InternalExternalAPI   = "INTERNAL_EXTERNAL_API"   // 외부 API 오류
	InternalConfigError   = "INTERNAL_CONFIG_ERROR"   // 설정 오류
)

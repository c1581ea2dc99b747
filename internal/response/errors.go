package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrEmailTaken         ErrCode = "EMAIL_TAKEN"
	ErrAccountInactive    ErrCode = "ACCOUNT_INACTIVE"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrTeacherAccessOnly ErrCode = "TEACHER_ACCESS_ONLY"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound ErrCode = "NOT_FOUND"
	ErrConflict ErrCode = "CONFLICT"

	// ─── Attempt-specific ──────────────────────────────────────────────
	ErrNoQuestions        ErrCode = "NO_QUESTIONS"
	ErrChapterMismatch    ErrCode = "CHAPTER_NOT_IN_SUBJECT"
	ErrOffsetOutOfRange   ErrCode = "OFFSET_OUT_OF_RANGE"
	ErrIllegalTransition  ErrCode = "ILLEGAL_STATUS_TRANSITION"
	ErrAttemptNotWritable ErrCode = "ATTEMPT_NOT_WRITABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Email hoặc mật khẩu không đúng."
	case ErrEmailTaken:
		return "Email đã được đăng ký."
	case ErrAccountInactive:
		return "Tài khoản đã bị khóa. Vui lòng liên hệ quản trị viên."
	case ErrTokenRequired:
		return "Yêu cầu token xác thực."
	case ErrTokenInvalid:
		return "Token xác thực không hợp lệ."
	case ErrTokenExpired:
		return "Token xác thực đã hết hạn."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "Bạn không có quyền truy cập tài nguyên này."
	case ErrTeacherAccessOnly:
		return "Chức năng này chỉ dành cho giáo viên hoặc quản trị viên."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Dữ liệu không hợp lệ. Vui lòng kiểm tra lại."
	case ErrInvalidID:
		return "Định dạng ID không hợp lệ."
	case ErrInvalidPayload:
		return "Payload của yêu cầu không hợp lệ."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Tài nguyên không tồn tại."
	case ErrConflict:
		return "Tài nguyên đã tồn tại."

	// ─── Attempt-specific ──────────────────────────────────────────────
	case ErrNoQuestions:
		return "Chương này chưa có câu hỏi nào."
	case ErrChapterMismatch:
		return "Chapter không thuộc subject đã chọn."
	case ErrOffsetOutOfRange:
		return "Offset vượt quá tổng số câu hỏi."
	case ErrIllegalTransition:
		return "Không thể chuyển sang trạng thái này."
	case ErrAttemptNotWritable:
		return "Attempt không còn nhận câu trả lời."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Quá nhiều yêu cầu. Vui lòng thử lại sau."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "Đã xảy ra lỗi máy chủ."
	default:
		return "Đã xảy ra lỗi không xác định."
	}
}

package httpx

import "context"

type ctxKey string

const (
	// CtxKeyStaffID carries the authenticated staff subject on back-office calls.
	CtxKeyStaffID ctxKey = "staff_id"
)

// StaffIDFromContext returns the authenticated staff subject, or "" on
// unauthenticated (public token-bearing) requests.
func StaffIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeyStaffID).(string); ok {
		return v
	}
	return ""
}

func contextWithStaffID(ctx context.Context, staffID string) context.Context {
	return context.WithValue(ctx, CtxKeyStaffID, staffID)
}

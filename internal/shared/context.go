package shared

import "context"

type sessionContextKey struct{}

// ContextWithSession stores the web session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the web session from context, nil when the
// session middleware did not run.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}

// PopFlashFromContext pops the next flash message of the request session.
func PopFlashFromContext(ctx context.Context) *FlashMessage {
	if sess := SessionFromContext(ctx); sess != nil {
		return sess.PopFlash()
	}
	return nil
}

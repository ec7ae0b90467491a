package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/qrscan/internal/common"
	"github.com/dmitrijs2005/qrscan/internal/server/auth"
)

type ctxKey string

const deviceIDKey ctxKey = "deviceID"

func (s *HTTPServer) accessTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(common.AuthorizationHeaderName)
		token, ok := strings.CutPrefix(header, common.BearerPrefix)
		if !ok || strings.TrimSpace(token) == "" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		deviceID, err := auth.GetSubjectFromToken(strings.TrimSpace(token), s.jwtSecret)
		if err != nil {
			s.logger.Debug(r.Context(), "rejected credential", "error", err)
			http.Error(w, err.Error(), http.StatusUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), deviceIDKey, deviceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func deviceIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(deviceIDKey).(string)
	return id
}

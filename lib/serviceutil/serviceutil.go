package serviceutil

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Returns a context that will live until Ctrl+C is pressed
func SignalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigs
		cancel()
	}()

	return ctx
}

func StartHttpServer(port int, mux *http.ServeMux) {
	slog.Info("listening to http...", "port", port)
	err := http.ListenAndServe(
		fmt.Sprintf("0.0.0.0:%d", port),
		h2c.NewHandler(mux, &http2.Server{}),
	)
	if err != nil {
		Fatal(fmt.Sprintf("failed to listen on port %d", port), err)
	}
}

func Fatal(message string, err error) {
	slog.Error(message, "err", err.Error())
	os.Exit(1)
}

// VerifyAccessToken wraps a handler and rejects requests without a
// matching bearer token. An empty accessToken disables the check.
func VerifyAccessToken(accessToken string, next http.Handler) http.Handler {
	if accessToken == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.Split(r.Header.Get("Authorization"), " ")
		if len(token) != 2 || token[1] != accessToken {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

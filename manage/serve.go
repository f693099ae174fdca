package manage

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"net"
	"net/http"

	"askblog/app/routes"
	"askblog/app/session"
	"askblog/app/views"

	"go.uber.org/zap"
)

// Serve runs the blog until ctx is cancelled, then shuts down gracefully.
// When ready is not nil it receives the bound address once the listener is
// open.
func (r *Runner) Serve(ctx context.Context, ready chan<- string) error {
	cfg := r.Config
	logger := r.Logger

	s, err := openStore(cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Error("close store", zap.Error(err))
		}
	}()

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			return fmt.Errorf("generate session secret: %w", err)
		}
		logger.Warn("BLOG_SESSION_SECRET is not set, using a random secret; sessions end on restart")
	}
	sessions, err := session.NewManager(secret, cfg.SessionTTL, cfg.SecureCookies)
	if err != nil {
		return err
	}

	handler, err := routes.SetupRoutes(routes.Deps{
		Posts:      s.posts,
		Comments:   s.comments,
		Users:      s.users,
		Sessions:   sessions,
		Logger:     logger,
		Views:      views.FS,
		StaticDir:  cfg.StaticDir,
		PageSize:   cfg.PageSize,
		BcryptCost: cfg.BcryptCost,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		ErrorLog:     zap.NewStdLog(logger),
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr, err)
	}
	logger.Info("starting blog service",
		zap.String("addr", ln.Addr().String()),
		zap.String("storage", cfg.Storage),
	)
	if ready != nil {
		ready <- ln.Addr().String()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

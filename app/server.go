package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// Server 负责监听、接受连接，并为每个连接启动一个 goroutine
type Server struct {
	cfg     Config
	handler *Handler
	log     zerolog.Logger

	wg  sync.WaitGroup // 正在处理的连接
	seq atomic.Uint64  // 连接编号
}

// NewServer 创建 Server
func NewServer(cfg Config, handler *Handler, log zerolog.Logger) *Server {
	return &Server{
		cfg:     cfg,
		handler: handler,
		log:     log,
	}
}

// ListenAndServe 在 cfg.Addr 上监听，直到 ctx 被取消
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("绑定端口失败: %w", err)
	}
	s.log.Info().
		Str("addr", listener.Addr().String()).
		Str("directory", s.handler.store.Dir()).
		Msg("服务器已启动，等待客户端连接")
	return s.Serve(ctx, listener)
}

// Serve 在 listener 上接受连接。ctx 取消后关闭 listener，
// 等所有正在处理的连接结束后返回。
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	stop := context.AfterFunc(ctx, func() {
		if err := listener.Close(); err != nil {
			s.log.Warn().Err(err).Msg("关闭监听器时出错")
		}
	})
	defer stop()

	defer func() {
		s.wg.Wait()
		s.log.Info().Msg("监听器已关闭，所有连接已处理完")
	}()

	var delay time.Duration
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				s.log.Info().Msg("监听器已关闭，停止接受新连接")
				return nil
			}
			// 出错后逐步退避，避免空转
			if delay == 0 {
				delay = 5 * time.Millisecond
			} else if delay *= 2; delay > time.Second {
				delay = time.Second
			}
			s.log.Error().Err(err).Dur("retry_in", delay).Msg("接受连接时出错")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
			}
			continue
		}
		delay = 0

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

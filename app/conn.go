package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

const readChunkSize = 4096

// handleConnection 处理一个连接：读取 -> 解析 -> 路由 -> 构造响应 -> 发送 -> 关闭。
// 每个连接只处理一个请求。
func (s *Server) handleConnection(conn net.Conn) {
	id := s.seq.Add(1)
	log := s.log.With().Uint64("conn", id).Str("remote", conn.RemoteAddr().String()).Logger()

	defer func() {
		if err := conn.Close(); err != nil {
			log.Debug().Err(err).Msg("关闭连接时出错")
		}
	}()

	written := false
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("处理连接时 panic")
			if !written {
				_, _ = conn.Write((&Response{Status: StatusInternalServerError}).Bytes())
			}
		}
	}()

	if s.cfg.ReadTimeout > 0 {
		if err := conn.SetReadDeadline(time.Now().Add(s.cfg.ReadTimeout)); err != nil {
			log.Warn().Err(err).Msg("设置读超时失败")
		}
	}

	var (
		req *Request
		res *Response
	)
	raw, err := readRequest(conn, s.cfg.MaxRequestBytes, s.cfg.MaxRequestLineBytes)
	switch {
	case errors.Is(err, ErrReadOverflow):
		log.Warn().Err(err).Int("bytes", len(raw)).Msg("请求过大")
		res = errorResponse(err)
	case err != nil:
		// 没读到完整请求（客户端关闭、超时、连接重置），直接关闭，不回复
		if !errors.Is(err, io.EOF) {
			log.Warn().Err(err).Int("bytes", len(raw)).Msg("读取请求失败")
		}
		return
	default:
		req, res = s.handler.respond(raw)
	}

	out := res.Bytes()
	written = true
	if _, err := conn.Write(out); err != nil {
		log.Error().Err(err).Msg("发送响应失败")
		return
	}

	ev := log.Info().Int("status", res.Status.Code()).Int("bytes", len(out))
	if req != nil {
		ev = ev.Str("method", req.Method).Str("path", "/"+req.Path)
	}
	ev.Msg("请求完成")
}

// drainWindow 没有 Content-Length 时，最后一次读满了缓冲区，
// 再等这么久看还有没有后续数据
const drainWindow = 100 * time.Millisecond

// readDeadliner 可以设置读超时的连接，net.Conn 都满足
type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

// readState requestComplete 的判断结果
type readState int

const (
	needMore        readState = iota // 请求头还没收完，或者 body 不够 Content-Length
	complete                         // 已经完整
	completeIfShort                  // 请求头完整但没有 Content-Length，最后一次短读才算结束
)

// readRequest 从 r 中读取一个请求。
//
// 读到请求头结束标记后，如果有合法的 Content-Length，会继续读到 body 足够为止；
// 没有 Content-Length 时，一直读到某次 Read 没有读满缓冲区（或 EOF）为止，
// 收到的全部内容都算 body。
// 总长度超过 maxRequest 或请求行超过 maxLine 时返回 ErrReadOverflow。
// 一个字节都没读到就遇到 EOF 时返回 io.EOF。
func readRequest(r io.Reader, maxRequest, maxLine int) ([]byte, error) {
	buf := make([]byte, 0, min(maxRequest+1, readChunkSize))
	chunk := make([]byte, readChunkSize)
	draining := false
	for {
		n, err := r.Read(chunk)
		buf = append(buf, chunk[:n]...)
		if len(buf) > maxRequest {
			return buf, fmt.Errorf("%w: more than %d bytes", ErrReadOverflow, maxRequest)
		}

		state, lerr := requestComplete(buf, maxLine)
		if lerr != nil {
			return buf, lerr
		}
		switch {
		case state == complete:
			return buf, nil
		case state == completeIfShort && n < len(chunk):
			return buf, nil
		case state == completeIfShort && !draining:
			// 缓冲区被读满，后面可能还有数据；连接支持超时的话只再等一小会
			if d, ok := r.(readDeadliner); ok {
				if derr := d.SetReadDeadline(time.Now().Add(drainWindow)); derr == nil {
					draining = true
				}
			}
		}

		if err != nil {
			if len(buf) > 0 && (errors.Is(err, io.EOF) || (draining && errors.Is(err, os.ErrDeadlineExceeded))) {
				// 客户端写完就半关闭，或者等不到后续数据，按已收到的内容处理
				return buf, nil
			}
			return buf, err
		}
	}
}

// requestComplete 判断 buf 是否已经包含一个完整请求
func requestComplete(buf []byte, maxLine int) (readState, error) {
	lineEnd := bytes.Index(buf, []byte(CRLF))
	if (lineEnd < 0 && len(buf) > maxLine) || lineEnd > maxLine {
		return needMore, fmt.Errorf("%w: request line longer than %d bytes", ErrReadOverflow, maxLine)
	}

	headEnd := bytes.Index(buf, []byte(CRLF+CRLF))
	if headEnd < 0 {
		return needMore, nil
	}
	req, err := ParseRequest(buf)
	if err != nil {
		// 不再继续读，交给后面返回 400
		return complete, nil
	}
	n, ok := req.ContentLength()
	if !ok {
		return completeIfShort, nil
	}
	if len(buf)-(headEnd+2*len(CRLF)) >= n {
		return complete, nil
	}
	return needMore, nil
}

package main

import (
	"bytes"
	"compress/gzip"
	"strings"

	"github.com/rs/zerolog"
)

// Handler 把一段原始请求字节变成一段原始响应字节
type Handler struct {
	mux   *Mux
	store *FileStore
	log   zerolog.Logger
}

// NewHandler 创建 Handler 并注册所有路由
func NewHandler(store *FileStore, log zerolog.Logger) *Handler {
	h := &Handler{
		mux:   NewMux(),
		store: store,
		log:   log,
	}
	h.registerRoutes()
	return h
}

// registerRoutes 注册所有路由到 Mux
func (h *Handler) registerRoutes() {
	// 根路径 "/"
	h.mux.Handle(RoutePing, h.rootHandler)
	// /echo/*
	h.mux.Handle(RouteEcho, h.echoHandler)
	// /user-agent
	h.mux.Handle(RouteUserAgent, h.userAgentHandler)
	// GET /files/*
	h.mux.Handle(RouteConfiguredDirFile, h.filesHandler)
	// POST /files/*
	h.mux.Handle(RouteStoreFile, h.storeFileHandler)
	// GET /<dir>/<file>
	h.mux.Handle(RouteRelativeFile, h.relativeFileHandler)
}

// Respond 解析 raw 并返回完整响应报文
func (h *Handler) Respond(raw []byte) []byte {
	_, res := h.respond(raw)
	return res.Bytes()
}

// respond 返回解析出的请求（解析失败时为 nil）和响应
func (h *Handler) respond(raw []byte) (*Request, *Response) {
	req, err := ParseRequest(raw)
	if err != nil {
		h.log.Debug().Err(err).Msg("请求解析失败")
		return nil, errorResponse(err)
	}
	return req, h.Serve(req)
}

// Serve 分发一个已经解析好的请求
func (h *Handler) Serve(req *Request) *Response {
	return h.mux.Serve(req)
}

// 根路径 Handler：返回 200 OK，无 body
func (h *Handler) rootHandler(req *Request) *Response {
	return &Response{Status: StatusOK}
}

// /echo/<text> Handler，"echo/" 之后的全部内容原样返回（可以包含 "/"）
func (h *Handler) echoHandler(req *Request) *Response {
	res := &Response{
		Status:      StatusOK,
		ContentType: "text/plain",
		Body:        []byte(strings.TrimPrefix(req.Path, "echo/")),
	}

	// gzip 压缩协商
	if acceptsGzip(req) {
		var buf bytes.Buffer
		gw := gzip.NewWriter(&buf)
		if _, err := gw.Write(res.Body); err != nil {
			h.log.Error().Err(err).Msg("gzip 压缩失败")
			return &Response{Status: StatusInternalServerError}
		}
		if err := gw.Close(); err != nil {
			h.log.Error().Err(err).Msg("gzip 压缩失败")
			return &Response{Status: StatusInternalServerError}
		}
		res.Headers = append(res.Headers, Header{Name: "Content-Encoding", Value: "gzip"})
		res.Body = buf.Bytes()
	}
	return res
}

func acceptsGzip(req *Request) bool {
	enc, ok := req.Header("Accept-Encoding")
	if !ok {
		return false
	}
	for _, c := range strings.Split(enc, ",") {
		// 忽略 q 值，例如 "gzip;q=0.8"
		if name, _, _ := strings.Cut(strings.TrimSpace(c), ";"); name == "gzip" {
			return true
		}
	}
	return false
}

// /user-agent Handler，没有 User-Agent 头时返回空 body
func (h *Handler) userAgentHandler(req *Request) *Response {
	userAgent, _ := req.Header("User-Agent")
	return &Response{
		Status:      StatusOK,
		ContentType: "text/plain",
		Body:        []byte(userAgent),
	}
}

// GET /files/<name> Handler，始终以 application/octet-stream 返回
func (h *Handler) filesHandler(req *Request) *Response {
	name := strings.TrimPrefix(req.Path, "files/")
	data, err := h.store.Read(name)
	if err != nil {
		h.log.Debug().Err(err).Str("name", name).Msg("读取文件失败")
		return errorResponse(err)
	}
	return &Response{
		Status:      StatusOK,
		ContentType: defaultContentType,
		Body:        data,
	}
}

// GET /<相对路径> Handler，MIME 由扩展名决定
func (h *Handler) relativeFileHandler(req *Request) *Response {
	data, err := h.store.ReadRelative(req.Path)
	if err != nil {
		h.log.Debug().Err(err).Str("path", req.Path).Msg("读取文件失败")
		return errorResponse(err)
	}
	return &Response{
		Status:      StatusOK,
		ContentType: ContentTypeFor(req.Path),
		Body:        data,
	}
}

// POST /files/<name> Handler，把请求 body 写入文件
func (h *Handler) storeFileHandler(req *Request) *Response {
	name := strings.TrimPrefix(req.Path, "files/")
	if err := h.store.Write(name, req.Body); err != nil {
		h.log.Error().Err(err).Str("name", name).Msg("保存文件失败")
		return errorResponse(err)
	}
	h.log.Info().Str("name", name).Int("bytes", len(req.Body)).Msg("文件已保存")
	return &Response{Status: StatusCreated}
}

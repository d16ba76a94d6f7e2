package main

import "errors"

// 每个连接内部的错误分类，最终都会落到一个状态行上
var (
	ErrParse            = errors.New("malformed request")       // 400
	ErrPathInvalid      = errors.New("path invalid")            // 404
	ErrReadOverflow     = errors.New("request too large")       // 414
	ErrWrite            = errors.New("write failed")            // 500
	ErrUnsupportedRoute = errors.New("unsupported method/path") // 501
)

// statusFor 把错误映射为响应状态，未知错误一律 500
func statusFor(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrParse):
		return StatusBadRequest
	case errors.Is(err, ErrPathInvalid):
		return StatusNotFound
	case errors.Is(err, ErrReadOverflow):
		return StatusURITooLong
	case errors.Is(err, ErrUnsupportedRoute):
		return StatusNotImplemented
	default:
		return StatusInternalServerError
	}
}

// errorResponse 失败时只返回状态行，没有 body
func errorResponse(err error) *Response {
	return &Response{Status: statusFor(err)}
}

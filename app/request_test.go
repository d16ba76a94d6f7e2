package main

import (
	"errors"
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestParseRequest(t *testing.T) {
	convey.Convey("Given a well-formed GET request", t, func() {
		raw := []byte("GET /user-agent HTTP/1.1\r\nHost: localhost:4221\r\nUser-Agent: curl/7.81\r\nAccept: */*\r\n\r\n")
		req, err := ParseRequest(raw)

		convey.So(err, convey.ShouldBeNil)
		convey.Convey("The request line is split into method, path and version", func() {
			convey.So(req.Method, convey.ShouldEqual, "GET")
			convey.So(req.Path, convey.ShouldEqual, "user-agent")
			convey.So(req.Version, convey.ShouldEqual, "HTTP/1.1")
		})
		convey.Convey("Headers keep their order and are looked up by exact name", func() {
			convey.So(len(req.Headers), convey.ShouldEqual, 3)
			convey.So(req.Headers[0].Name, convey.ShouldEqual, "Host")
			ua, ok := req.Header("User-Agent")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(ua, convey.ShouldEqual, "curl/7.81")
			_, ok = req.Header("user-agent")
			convey.So(ok, convey.ShouldBeFalse)
		})
		convey.Convey("The body is empty", func() {
			convey.So(req.Body, convey.ShouldBeEmpty)
		})
	})

	convey.Convey("The root path parses to an empty path", t, func() {
		req, err := ParseRequest([]byte("GET / HTTP/1.1\r\n\r\n"))
		convey.So(err, convey.ShouldBeNil)
		convey.So(req.Path, convey.ShouldEqual, "")
		convey.So(req.Headers, convey.ShouldBeEmpty)
	})

	convey.Convey("Everything after the first blank line is the body", t, func() {
		raw := []byte("POST /files/a HTTP/1.1\r\nContent-Length: 3\r\n\r\nabc\r\n\r\nmore")
		req, err := ParseRequest(raw)
		convey.So(err, convey.ShouldBeNil)
		convey.So(string(req.Body), convey.ShouldEqual, "abc\r\n\r\nmore")
		n, ok := req.ContentLength()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(n, convey.ShouldEqual, 3)
	})

	convey.Convey("Header values keep their own whitespace, only the separator space is dropped", t, func() {
		raw := []byte("GET /user-agent HTTP/1.1\r\nUser-Agent:  padded agent \r\nX-Tight:tight\r\nContent-Length:  0 \r\n\r\n")
		req, err := ParseRequest(raw)
		convey.So(err, convey.ShouldBeNil)
		ua, _ := req.Header("User-Agent")
		convey.So(ua, convey.ShouldEqual, " padded agent ")
		tight, _ := req.Header("X-Tight")
		convey.So(tight, convey.ShouldEqual, "tight")
		n, ok := req.ContentLength()
		convey.So(ok, convey.ShouldBeTrue)
		convey.So(n, convey.ShouldEqual, 0)
	})

	convey.Convey("The query string is kept as part of the path", t, func() {
		req, err := ParseRequest([]byte("GET /echo/a?b=c HTTP/1.1\r\n\r\n"))
		convey.So(err, convey.ShouldBeNil)
		convey.So(req.Path, convey.ShouldEqual, "echo/a?b=c")
	})

	convey.Convey("Malformed requests fail with ErrParse", t, func() {
		for _, raw := range []string{
			"",
			"GET / HTTP/1.1",
			"GET / HTTP/1.1\r\nHost: x\r\n",
			" / HTTP/1.1\r\n\r\n",
			"GET echo/abc HTTP/1.1\r\n\r\n",
			"GET /echo/abc\r\n\r\n",
			"GET /echo/abc FTP/1.0\r\n\r\n",
			"GET / HTTP/1.1\r\nno-colon-here\r\n\r\n",
			"GET / HTTP/1.1\r\n: empty-name\r\n\r\n",
		} {
			_, err := ParseRequest([]byte(raw))
			convey.So(errors.Is(err, ErrParse), convey.ShouldBeTrue)
		}
	})
}

func TestRequestContentLength(t *testing.T) {
	convey.Convey("Missing or invalid Content-Length is reported as absent", t, func() {
		req := &Request{}
		_, ok := req.ContentLength()
		convey.So(ok, convey.ShouldBeFalse)

		req.Headers = []Header{{Name: "Content-Length", Value: "abc"}}
		_, ok = req.ContentLength()
		convey.So(ok, convey.ShouldBeFalse)

		req.Headers = []Header{{Name: "Content-Length", Value: "-1"}}
		_, ok = req.ContentLength()
		convey.So(ok, convey.ShouldBeFalse)
	})
}

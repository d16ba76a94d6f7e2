package main

import (
	"testing"

	"github.com/smartystreets/goconvey/convey"
)

func TestRoute(t *testing.T) {
	convey.Convey("Routes are matched top-down by method and path prefix", t, func() {
		cases := []struct {
			method, path string
			want         RouteKind
		}{
			{"GET", "", RoutePing},
			{"GET", "echo/abc", RouteEcho},
			{"GET", "echo/", RouteEcho},
			{"GET", "echo/a/b/c", RouteEcho},
			{"GET", "echo", RouteNotFound},
			{"GET", "user-agent", RouteUserAgent},
			{"GET", "user-agents", RouteUserAgent},
			{"GET", "files/user-agent", RouteConfiguredDirFile},
			{"GET", "files/echo/x", RouteConfiguredDirFile},
			{"GET", "static/index.html", RouteRelativeFile},
			{"GET", "static/../../etc/passwd", RouteNotFound},
			{"GET", "index.html", RouteNotFound},
			{"POST", "files/note.txt", RouteStoreFile},
			{"POST", "echo/abc", RouteUnsupported},
			{"POST", "", RouteUnsupported},
			{"PUT", "files/note.txt", RouteUnsupported},
			{"HEAD", "", RouteUnsupported},
			{"get", "", RouteUnsupported},
		}
		for _, c := range cases {
			convey.So(Route(c.method, c.path), convey.ShouldEqual, c.want)
		}
	})

	convey.Convey("Route kinds have readable names", t, func() {
		convey.So(RouteStoreFile.String(), convey.ShouldEqual, "store-file")
		convey.So(RouteKind(99).String(), convey.ShouldEqual, "unknown")
	})
}

func TestMuxServe(t *testing.T) {
	convey.Convey("Given a mux with only the ping route", t, func() {
		m := NewMux()
		m.Handle(RoutePing, func(req *Request) *Response {
			return &Response{Status: StatusOK}
		})

		convey.Convey("A registered route is dispatched", func() {
			res := m.Serve(&Request{Method: "GET", Path: ""})
			convey.So(res.Status, convey.ShouldEqual, StatusOK)
		})
		convey.Convey("An unregistered GET route answers 404", func() {
			res := m.Serve(&Request{Method: "GET", Path: "echo/x"})
			convey.So(res.Status, convey.ShouldEqual, StatusNotFound)
		})
		convey.Convey("An unsupported method answers 501", func() {
			res := m.Serve(&Request{Method: "DELETE", Path: "files/x"})
			convey.So(res.Status, convey.ShouldEqual, StatusNotImplemented)
		})
	})
}

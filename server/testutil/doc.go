// Package testutil provides a test server component backed by
// httptest.Server. It implements component.Component and
// testutil.TestComponent.
//
//	srv := testutil.NewComponent()
//	testutil.T(t).Setup(srv)
//	srv.GinEngine().GET("/events", sse.GinMiddleware(stream, factory), handler)
//	resp, _ := http.Get(srv.BaseURL() + "/events")
package testutil

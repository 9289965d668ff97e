// Package gametest runs a fake duel server for package tests.
//
// The fake reproduces the external contract the real server exposes: the
// room HTTP endpoints and the per-room websocket channel, including the
// room_joined push on an anonymous connect and uuid player keys. Tests use
// it to drive the client hermetically and to observe connection counts,
// credentialed dial URLs, and the actions the client sends.
//
// It lives outside _test files so the api, transport, and client test suites
// can share it, but it is only ever imported from tests.
package gametest

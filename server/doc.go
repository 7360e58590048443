// Package server answers boot file requests from a SoC in USB stub mode.
//
// The device drives the exchange. It sends one fixed-size message per
// request and the host replies on the same bulk channel:
//
//	GetFileSize NAME  ->  4-byte little-endian length
//	ReadFile NAME     ->  file contents, one bulk transaction
//	Done              ->  nothing; the session ends
//
// [Server] is the state machine that handles one decoded [Request] per
// call. [Serve] is the loop that reads raw messages, decodes them with
// [DecodeRequest], and drives a Server until Done or the first error.
package server

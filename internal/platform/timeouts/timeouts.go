// Package timeouts defines the timeouts shared by the command and the frame
// stream.
package timeouts

import "time"

// ReadHeader limits how long the frame server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long the frame server and telemetry take to stop.
const Shutdown = 5 * time.Second

// FrameWrite caps a single websocket frame write to a viewer.
const FrameWrite = 2 * time.Second

// Pong is how long a viewer may stay silent before it is dropped.
const Pong = 30 * time.Second

// Ping is the keepalive interval; it must stay below Pong.
const Ping = Pong * 9 / 10

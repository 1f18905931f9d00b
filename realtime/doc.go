// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package realtime formats server-sent events for browser EventSource
clients.

A handler opens a Stream over its ResponseWriter and then owns the event
loop, mixing store notifications with keep-alive comments:

	stream, err := realtime.NewStream(w)
	if err != nil {
		// plain JSON error, the connection cannot stream
	}

	ticker := time.NewTicker(realtime.KeepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case v := <-events:
			if err := stream.Send("vote", v); err != nil {
				return
			}
		case <-ticker.C:
			if err := stream.Comment("keep-alive"); err != nil {
				return
			}
		}
	}

Send errors mean the client went away; callers just return.
*/
package realtime

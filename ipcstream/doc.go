// Package ipcstream
// Author: momentics <momentics@gmail.com>
//
// Implements the IPC-stream framing and handshake/authentication state
// machine from spec.md §4.2: a [be64 length][ProtoPackage bytes] framing on
// top of api.ConnCtx, and the gid<->AppId binding table that is the
// authoritative record of which IPC connection speaks for which peer
// application instance. Grounded on other_app.cpp's on_process_connection /
// on_recv_package in original_source, generalized away from the process-wide
// singleton the source uses (spec.md §9) into an explicit AuthTable value
// owned by the other-process context.
package ipcstream

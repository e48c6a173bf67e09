package handlers

import (
	"net/http"
	"time"

	"cash-routing-service/internal/api/dto"
	"cash-routing-service/internal/domain"
	"cash-routing-service/internal/services"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(_ *http.Request) bool { return true }}

// Stream handles /solve/stream. The client sends one SolveRequest; the server
// answers with a "subproblem" frame per finished sub-problem and a final
// "done" or "error" frame, then closes.
func (h *SolveHandler) Stream(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	// The server write timeout still applies to the hijacked connection.
	_ = conn.SetWriteDeadline(time.Time{})

	fail := func(msg string) {
		_ = conn.WriteJSON(dto.StreamMessage{Type: dto.StreamError, Error: msg})
		closeNormal(conn)
	}

	var req dto.SolveRequest
	if err := conn.ReadJSON(&req); err != nil {
		fail("invalid json message")
		return
	}
	p, err := req.Params.ToDomain(&req.Scenario, h.Defaults)
	if err != nil {
		fail(err.Error())
		return
	}

	// Observer calls never overlap, so frames are written one at a time.
	observe := services.WithObserver(func(sp domain.SubproblemResult) {
		msg := dto.NewSubproblemResponse(sp)
		if err := conn.WriteJSON(dto.StreamMessage{Type: dto.StreamSubproblem, Subproblem: &msg}); err != nil {
			glog.Warningf("op=stream.write subproblem=%d err=%v", sp.Index, err)
		}
	})

	run, err := h.Planner.Solve(r.Context(), &req.Scenario, p, observe)
	if isPartial(run, err) {
		glog.Warningf("op=stream.solve err=%v", err)
		res := dto.NewFailedRunResponse(run, err)
		_ = conn.WriteJSON(dto.StreamMessage{Type: dto.StreamError, Run: &res, Error: err.Error()})
		closeNormal(conn)
		return
	}
	if err != nil {
		glog.Warningf("op=stream.solve err=%v", err)
		fail(err.Error())
		return
	}

	res := dto.NewRunResponse(run, summarize(&req, p, run))
	_ = conn.WriteJSON(dto.StreamMessage{Type: dto.StreamDone, Run: &res})
	closeNormal(conn)
}

func closeNormal(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
}

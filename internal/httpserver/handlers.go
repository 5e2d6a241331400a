package httpserver

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"ChordRing/internal/fingertable"
	"ChordRing/internal/logger"
	"ChordRing/internal/ring"
)

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /successor/", s.getSuccessor)
	mux.HandleFunc("PATCH /successor/", s.patchSuccessor)
	mux.HandleFunc("GET /successor/cpf/{id}", s.getClosestPrecedingFinger)
	mux.HandleFunc("GET /successor/{id}", s.getFindSuccessor)
	mux.HandleFunc("GET /predecessor/", s.getPredecessor)
	mux.HandleFunc("PATCH /predecessor/", s.patchPredecessor)
	mux.HandleFunc("PATCH /fingertable", s.patchFingerTable)
	mux.HandleFunc("PATCH /notify", s.patchNotify)
	mux.HandleFunc("POST /key/", s.postKey)
	mux.HandleFunc("GET /key/{key}", s.getKey)
	mux.HandleFunc("POST /replica", s.postReplica)
	mux.HandleFunc("GET /info", s.getInfo)
	mux.HandleFunc("GET /ring", s.getRing)
	mux.HandleFunc("GET /healthz", s.getHealthz)
	return mux
}

func (s *Server) parseID(w http.ResponseWriter, raw string) (ring.ID, bool) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		http.Error(w, "malformed identifier", http.StatusBadRequest)
		return 0, false
	}
	if m := s.node.Space().M(); m != 0 && n >= m {
		http.Error(w, "identifier out of range", http.StatusBadRequest)
		return 0, false
	}
	return ring.ID(n), true
}

func (s *Server) getSuccessor(w http.ResponseWriter, r *http.Request) {
	succ := s.node.Successor()
	w.Write([]byte(succ.Addr))
}

func (s *Server) patchSuccessor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}
	addr := r.Form.Get("ip")
	if addr == "" {
		http.Error(w, "missing ip field", http.StatusBadRequest)
		return
	}
	s.node.SetSuccessor(fingertable.Peer{ID: s.node.Space().HashID(addr), Addr: addr})
}

func (s *Server) getFindSuccessor(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	succ, err := s.node.FindSuccessor(r.Context(), id)
	if err != nil {
		s.node.HandleFailure(r.Context())
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write([]byte(succ.Addr))
}

func (s *Server) getClosestPrecedingFinger(w http.ResponseWriter, r *http.Request) {
	id, ok := s.parseID(w, r.PathValue("id"))
	if !ok {
		return
	}
	peer := s.node.ClosestPrecedingFinger(id)
	w.Write([]byte(peer.Addr))
}

func (s *Server) getPredecessor(w http.ResponseWriter, r *http.Request) {
	pred := s.node.Predecessor()
	w.Write([]byte(pred.Addr))
}

func (s *Server) patchPredecessor(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}
	addr := r.Form.Get("ip")
	if addr == "" {
		http.Error(w, "missing ip field", http.StatusBadRequest)
		return
	}
	s.node.SetPredecessor(fingertable.Peer{ID: s.node.Space().HashID(addr), Addr: addr})
}

func (s *Server) patchFingerTable(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}
	addr := r.Form.Get("n")
	if addr == "" {
		http.Error(w, "missing n field", http.StatusBadRequest)
		return
	}
	i, err := strconv.Atoi(r.Form.Get("i"))
	if err != nil || i < 0 || i >= s.node.FingerTable().Len() {
		http.Error(w, "missing or invalid i field", http.StatusBadRequest)
		return
	}
	peer := fingertable.Peer{ID: s.node.Space().HashID(addr), Addr: addr}
	if err := s.node.UpdateFingerTable(r.Context(), peer, i); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (s *Server) patchNotify(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}
	addr := r.Form.Get("n")
	if addr == "" {
		http.Error(w, "missing n field", http.StatusBadRequest)
		return
	}
	s.node.Notify(r.Context(), fingertable.Peer{ID: s.node.Space().HashID(addr), Addr: addr})
}

func (s *Server) postKey(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}
	key := r.Form.Get("key")
	if key == "" {
		http.Error(w, "missing key field", http.StatusBadRequest)
		return
	}
	ownerID, err := s.node.Insert(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Write([]byte(ownerID.String()))
}

func (s *Server) getKey(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(r.PathValue("key"))
	if err != nil {
		http.Error(w, "malformed key", http.StatusBadRequest)
		return
	}
	found, err := s.node.Contains(r.Context(), key)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if found {
		w.Write([]byte("true"))
	} else {
		w.Write([]byte("false"))
	}
}

func (s *Server) postReplica(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form body", http.StatusBadRequest)
		return
	}
	key := r.Form.Get("key")
	if key == "" {
		http.Error(w, "missing key field", http.StatusBadRequest)
		return
	}
	s.node.InsertReplica(key)
}

func (s *Server) getInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.node.Info()); err != nil {
		s.logger.Warn("getInfo: encode failed", logger.F("err", err.Error()))
	}
}

func (s *Server) getRing(w http.ResponseWriter, r *http.Request) {
	hops, err := s.node.RingWalk(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(hops); err != nil {
		s.logger.Warn("getRing: encode failed", logger.F("err", err.Error()))
	}
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

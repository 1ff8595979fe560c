/*
 Licensed under the Apache License, Version 2.0 (the "License");
 you may not use this file except in compliance with the License.
 You may obtain a copy of the License at

     https://www.apache.org/licenses/LICENSE-2.0

 Unless required by applicable law or agreed to in writing, software
 distributed under the License is distributed on an "AS IS" BASIS,
 WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 See the License for the specific language governing permissions and
 limitations under the License.
*/

package srv

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"jinr.ru/greenlab/go-rfic/pkg/config"
	"jinr.ru/greenlab/go-rfic/pkg/log"
	"jinr.ru/greenlab/go-rfic/pkg/rfic"
)

const (
	ApiPort = 8001
)

type Persist struct {
	Dir        string
	FilePrefix string
}

type BitMode struct {
	Bits int `json:"bits"`
}

type PhyMode struct {
	Mode string `json:"mode"`
}

type Switch struct {
	On bool `json:"on"`
}

type PRBSStatus struct {
	Enabled bool `json:"enabled"`
	Synced  bool `json:"synced"`
}

type ApiServer struct {
	context.Context
	*config.Config
	*mux.Router
	stream *StreamServer
}

func NewApiServer(ctx context.Context, cfg *config.Config, stream *StreamServer) (*ApiServer, error) {
	log.Info("Initializing API server with address: %s port: %d", cfg.Address, ApiPort)

	s := &ApiServer{
		Context: ctx,
		Config:  cfg,
		stream:  stream,
	}
	return s, nil
}

// Run starts the API server
func (s *ApiServer) Run() error {
	log.Debug("Starting API server: address: %s port: %d", s.Config.Address, ApiPort)
	s.configureRouter()
	httpServer := &http.Server{
		Handler: handlers.LoggingHandler(os.Stdout, s.Router),
		Addr:    fmt.Sprintf("%s:%d", s.Config.Address, ApiPort),
	}
	return httpServer.ListenAndServe()
}

func (s *ApiServer) configureRouter() {
	s.Router = mux.NewRouter()
	subRouter := s.Router.PathPrefix("/api").Subrouter()
	subRouter.HandleFunc("/status", s.handleStatus()).Methods("GET")
	subRouter.HandleFunc("/datapath/enable", s.handleDatapathEnable()).Methods("POST")
	subRouter.HandleFunc("/datapath/disable", s.handleDatapathDisable()).Methods("POST")
	subRouter.HandleFunc("/bitmode", s.handleBitMode()).Methods("POST")
	subRouter.HandleFunc("/phymode", s.handlePhyMode()).Methods("POST")
	subRouter.HandleFunc("/loopback", s.handleLoopback()).Methods("POST")
	subRouter.HandleFunc("/prbs/enable", s.handlePRBS(true)).Methods("POST")
	subRouter.HandleFunc("/prbs/disable", s.handlePRBS(false)).Methods("POST")
	subRouter.HandleFunc("/prbs/status", s.handlePRBSStatus()).Methods("GET")
	subRouter.HandleFunc("/agc", s.handleAGC()).Methods("GET")
	subRouter.HandleFunc("/agc/clear", s.handleAGCClear()).Methods("POST")
	subRouter.HandleFunc("/sync/rearm", s.handleSyncRearm()).Methods("POST")
	subRouter.HandleFunc("/controls", s.handleControls()).Methods("POST")
	subRouter.HandleFunc("/reg", s.handleRegGetAll()).Methods("GET")
	subRouter.HandleFunc("/reg", s.handleRegSet()).Methods("POST")
	subRouter.HandleFunc("/reg/{addr}", s.handleRegGet()).Methods("GET")
	subRouter.HandleFunc("/persist", s.handlePersist()).Methods("POST")
	subRouter.HandleFunc("/flush", s.handleFlush()).Methods("GET")
}

// apiError maps datapath errors to HTTP status codes. Configuration
// changes rejected because the datapath is running are conflicts, not
// bad requests; capability gaps of the configured PHY variant are
// reported as not implemented.
func apiError(w http.ResponseWriter, err error) {
	switch err.(type) {
	case rfic.ErrNotQuiesced:
		http.Error(w, err.Error(), http.StatusConflict)
	case rfic.ErrNotSupported:
		http.Error(w, err.Error(), http.StatusNotImplemented)
	default:
		http.Error(w, err.Error(), http.StatusBadRequest)
	}
}

func (s *ApiServer) handleStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := s.stream.rfic.Status()
		if err := s.stream.state.SetStatus(status); err != nil {
			log.Error("Error while persisting status snapshot: %s", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

func (s *ApiServer) handleDatapathEnable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling datapath enable request")
		if err := s.stream.rfic.Enable(); err != nil {
			apiError(w, err)
		}
	}
}

func (s *ApiServer) handleDatapathDisable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling datapath disable request")
		s.stream.rfic.Disable()
		// A partial segment from the stopped session must not leak into
		// the next one.
		s.stream.framer.Reset()
		s.stream.deframer.Reset()
	}
}

func (s *ApiServer) handleBitMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		bitmode := &BitMode{}
		if err := json.NewDecoder(r.Body).Decode(bitmode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling bitmode request: bits: %d", bitmode.Bits)
		if err := s.stream.rfic.SetBitMode(bitmode.Bits); err != nil {
			apiError(w, err)
		}
	}
}

func (s *ApiServer) handlePhyMode() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		phymode := &PhyMode{}
		if err := json.NewDecoder(r.Body).Decode(phymode); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling phymode request: mode: %s", phymode.Mode)
		mode, err := rfic.ParseMode(phymode.Mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := s.stream.rfic.SetPhyMode(mode); err != nil {
			apiError(w, err)
		}
	}
}

func (s *ApiServer) handleLoopback() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sw := &Switch{}
		if err := json.NewDecoder(r.Body).Decode(sw); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling loopback request: on: %t", sw.On)
		if err := s.stream.rfic.SetLoopback(sw.On); err != nil {
			apiError(w, err)
		}
	}
}

func (s *ApiServer) handlePRBS(on bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling PRBS request: on: %t", on)
		if err := s.stream.rfic.EnablePRBS(on); err != nil {
			apiError(w, err)
		}
	}
}

func (s *ApiServer) handlePRBSStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := PRBSStatus{
			Enabled: s.stream.rfic.Status().PRBSEnabled,
			Synced:  s.stream.rfic.PRBSSynced(),
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status)
	}
}

func (s *ApiServer) handleAGC() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.stream.rfic.AGCCounts())
	}
}

func (s *ApiServer) handleAGCClear() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling AGC clear request")
		s.stream.rfic.AGCClear()
	}
}

func (s *ApiServer) handleSyncRearm() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling sync rearm request")
		s.stream.rfic.RearmSync()
	}
}

func (s *ApiServer) handleControls() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		controls := rfic.Controls{}
		if err := json.NewDecoder(r.Body).Decode(&controls); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling controls request")
		s.stream.rfic.SetControls(controls)
	}
}

func (s *ApiServer) handleRegGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		vars := mux.Vars(r)
		addr, err := strconv.ParseUint(vars["addr"], 0, 15)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling reg get request: addr: %x", addr)
		value, err := s.stream.rfic.SPI().Read(uint16(addr))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		reg := &Reg{Addr: uint16(addr), Value: value}
		if err := s.stream.state.SetReg(reg); err != nil {
			log.Error("Error while caching register: %s", err)
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reg)
	}
}

func (s *ApiServer) handleRegSet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reg := &Reg{}
		if err := json.NewDecoder(r.Body).Decode(reg); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling reg set request: addr: %x value: %x", reg.Addr, reg.Value)
		if err := s.stream.rfic.SPI().Write(reg.Addr, reg.Value); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		if err := s.stream.state.SetReg(reg); err != nil {
			log.Error("Error while caching register: %s", err)
		}
	}
}

func (s *ApiServer) handleRegGetAll() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling reg get all request")
		regs, err := s.stream.state.GetRegAll()
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(regs)
	}
}

func (s *ApiServer) handlePersist() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		persist := &Persist{}
		if err := json.NewDecoder(r.Body).Decode(persist); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		log.Debug("Handling persist request: filePrefix: %s", persist.FilePrefix)
		s.stream.Persist(persist.Dir, persist.FilePrefix)
	}
}

func (s *ApiServer) handleFlush() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Handling flush request")
		s.stream.Flush()
	}
}

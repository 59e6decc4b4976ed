package cmd

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/staffdex/constants"
	"github.com/jsphweid/staffdex/db"
	"github.com/jsphweid/staffdex/index"
	"github.com/jsphweid/staffdex/live"
	"github.com/jsphweid/staffdex/model"
	"github.com/jsphweid/staffdex/sample"
	"github.com/jsphweid/staffdex/source"
	"github.com/jsphweid/staffdex/stave"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gitlab.com/gomidi/midi/v2"
)

const liveStreamId = "live"

var serveAddr string
var serveLivePort int

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", constants.GetServeAddr(), "listen address")
	serveCmd.Flags().IntVar(&serveLivePort, "live-port", -1, "midi input exposed as stream \"live\"")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves position and engraving lookups over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		src, err := source.New()
		if err != nil {
			return err
		}
		catalog, err := db.New()
		if err != nil {
			return err
		}
		s := NewServer(src, catalog)

		if serveLivePort >= 0 {
			defer midi.CloseDriver()
			stream := live.NewStream(constants.GetLiveDebounce(), func(sounding []model.Note) {
				logrus.Debugf("live: %v", heldNames(sounding))
			})
			stop, err := listen(stream, serveLivePort)
			if err != nil {
				return err
			}
			defer stop()
			s.AttachLive(stream)
		}

		logrus.Infof("listening on %v", serveAddr)
		return http.ListenAndServe(serveAddr, s.Handler())
	},
}

// Server keeps one store per stream id. Where each stream came from is also
// written to the catalog when one is configured.
type Server struct {
	mu      sync.RWMutex
	streams map[string]*index.Store
	records map[string]model.StreamRecord
	source  *source.Source
	catalog *db.Catalog
}

func NewServer(src *source.Source, catalog *db.Catalog) *Server {
	return &Server{
		streams: make(map[string]*index.Store),
		records: make(map[string]model.StreamRecord),
		source:  src,
		catalog: catalog,
	}
}

func (s *Server) AttachLive(stream *live.Stream) {
	store := index.NewStore()
	store.Attach(stream)
	store.SetLive(true)
	s.mu.Lock()
	s.streams[liveStreamId] = store
	s.mu.Unlock()
}

func (s *Server) Handler() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/streams", s.handleCreate).Methods("POST")
	router.HandleFunc("/streams/{id}", s.handleReload).Methods("PUT")
	router.HandleFunc("/streams/{id}/meta", s.handleMeta).Methods("GET")
	router.HandleFunc("/streams/{id}/notes", s.handleNotes).Methods("GET")
	router.HandleFunc("/streams/{id}/measures", s.handleMeasures).Methods("GET")
	router.HandleFunc("/streams/{id}/measures/{n:[0-9]+}", s.handleMeasure).Methods("GET")
	router.HandleFunc("/streams/{id}/measures/{n:[0-9]+}/accidentals", s.handleAccidentals).Methods("GET")
	router.HandleFunc("/streams/{id}/measures/{n:[0-9]+}/layout", s.handleLayout).Methods("GET")
	router.HandleFunc("/streams/{id}/measures/{n:[0-9]+}/excerpt", s.handleExcerpt).Methods("GET")
	router.HandleFunc("/streams/{id}/keys", s.handleKeys).Methods("GET")
	router.HandleFunc("/streams/{id}/chords", s.handleChords).Methods("GET")
	router.HandleFunc("/streams/{id}/lines", s.handleLines).Methods("GET")
	router.HandleFunc("/streams/{id}/raw", s.handleRaw).Methods("GET")
	router.HandleFunc("/streams/{id}/time", s.handlePosition).Methods("GET")
	router.HandleFunc("/streams/{id}/tick", s.handleTick).Methods("GET")
	router.HandleFunc("/streams/{id}/position", s.handlePosition).Methods("GET")

	c := cors.New(cors.Options{
		AllowedOrigins: constants.GetCorsOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
	})
	return c.Handler(router)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("could not encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, model.ErrorResponse{Error: detail})
}

type uriRequestBody struct {
	Uri string `json:"uri"`
}

// readMidi takes the request body as raw MIDI, or as {"uri": ...} naming a
// file or S3 object when sent as JSON. uri is empty for uploads.
func (s *Server) readMidi(r *http.Request) (dat []byte, uri string, err error) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, "", err
	}
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		return body, "", nil
	}
	var input uriRequestBody
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, "", err
	}
	dat, err = s.source.Read(r.Context(), input.Uri)
	return dat, input.Uri, err
}

func (s *Server) record(r *http.Request, rec model.StreamRecord) {
	s.mu.Lock()
	s.records[rec.Id] = rec
	s.mu.Unlock()
	if s.catalog == nil {
		return
	}
	if err := s.catalog.Put(r.Context(), rec); err != nil {
		logrus.WithField("id", rec.Id).Warnf("could not catalog stream: %v", err)
	}
}

func (s *Server) store(w http.ResponseWriter, r *http.Request) (*index.Store, bool) {
	s.mu.RLock()
	store, ok := s.streams[mux.Vars(r)["id"]]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no such stream")
	}
	return store, ok
}

// file resolves the stream's loaded file; live streams have none.
func (s *Server) file(w http.ResponseWriter, r *http.Request) (*index.Index, bool) {
	store, ok := s.store(w, r)
	if !ok {
		return nil, false
	}
	x := store.Snapshot().File
	if x == nil {
		writeError(w, http.StatusNotFound, "stream has no file")
		return nil, false
	}
	return x, true
}

func (s *Server) measure(w http.ResponseWriter, r *http.Request) (*index.Index, model.Measure, bool) {
	x, ok := s.file(w, r)
	if !ok {
		return nil, model.Measure{}, false
	}
	n, _ := strconv.Atoi(mux.Vars(r)["n"])
	m, ok := x.Measure(n)
	if !ok {
		writeError(w, http.StatusNotFound, "no such measure")
		return nil, model.Measure{}, false
	}
	return x, m, true
}

func queryInt(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	v, err := strconv.ParseInt(r.URL.Query().Get(name), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "query parameter "+name+" must be an integer")
		return 0, false
	}
	return v, true
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	dat, uri, err := s.readMidi(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	store := index.NewStore()
	if err := store.Load(dat); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := uuid.New().String()
	s.mu.Lock()
	s.streams[id] = store
	s.mu.Unlock()
	s.record(r, model.StreamRecord{Id: id, Uri: uri, Size: len(dat), Created: time.Now()})
	logrus.WithField("id", id).Info("created stream")

	writeJSON(w, http.StatusCreated, created(id, store.Snapshot()))
}

func created(id string, snap index.Snapshot) model.StreamCreatedResponse {
	return model.StreamCreatedResponse{
		Id:         id,
		NumNotes:   len(snap.Notes()),
		NumMeasure: snap.MeasureCount(),
		LastTimeMs: snap.LastTime().Milliseconds(),
		MinTicks:   snap.MinTickLen(),
	}
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	dat, uri, err := s.readMidi(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := store.Load(dat); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.record(r, model.StreamRecord{Id: mux.Vars(r)["id"], Uri: uri, Size: len(dat), Created: time.Now()})
	writeJSON(w, http.StatusOK, created(mux.Vars(r)["id"], store.Snapshot()))
}

func (s *Server) handleMeta(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if s.catalog != nil {
		recs, err := s.catalog.Get(r.Context(), []string{id})
		if err != nil {
			logrus.WithField("id", id).Warnf("catalog lookup failed: %v", err)
		} else if rec, ok := recs[id]; ok {
			writeJSON(w, http.StatusOK, rec)
			return
		}
	}
	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		writeError(w, http.StatusNotFound, "no such stream")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleNotes(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	snap := store.Snapshot()
	x := snap.File

	res := make([]model.NoteResponse, 0)
	for i, n := range snap.Notes() {
		key := model.KeySignature{Prev: model.NoRef}
		if x != nil {
			key, _ = x.KeyAt(n.StartTick)
		}
		res = append(res, model.NoteResponse{
			Index:      i,
			Track:      n.Track,
			Channel:    n.Channel,
			Pitch:      n.Pitch,
			Name:       stave.NoteName(n.Pitch, key),
			Velocity:   n.Velocity,
			StartTick:  n.StartTick,
			StartMs:    n.Start.Milliseconds(),
			Ticks:      n.DurationTicks,
			DurationMs: n.Duration.Milliseconds(),
			ChordRoot:  n.ChordRoot,
			NextRoot:   n.NextRoot,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMeasures(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	res := store.Snapshot().Measures()
	if res == nil {
		res = []model.Measure{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	if _, m, ok := s.measure(w, r); ok {
		writeJSON(w, http.StatusOK, m)
	}
}

func (s *Server) handleAccidentals(w http.ResponseWriter, r *http.Request) {
	if x, m, ok := s.measure(w, r); ok {
		writeJSON(w, http.StatusOK, x.DisplayAccidentals(m.Number))
	}
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	if x, m, ok := s.measure(w, r); ok {
		writeJSON(w, http.StatusOK, model.LayoutResponse{
			Measure:   m.Number,
			KeyWidth:  x.KeyWidth(m.Number),
			TimeWidth: x.TimeWidth(m.Number),
		})
	}
}

func (s *Server) handleExcerpt(w http.ResponseWriter, r *http.Request) {
	x, m, ok := s.measure(w, r)
	if !ok {
		return
	}
	dat, err := sample.Bytes(x.File().SMF(), uint64(m.StartTick), uint64(m.EndTick()))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Write(dat)
}

func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	if x, ok := s.file(w, r); ok {
		writeJSON(w, http.StatusOK, x.Keys())
	}
}

func (s *Server) handleChords(w http.ResponseWriter, r *http.Request) {
	if x, ok := s.file(w, r); ok {
		writeJSON(w, http.StatusOK, x.Chords())
	}
}

func (s *Server) handleLines(w http.ResponseWriter, r *http.Request) {
	x, ok := s.file(w, r)
	if !ok {
		return
	}
	res := x.LineVertices()
	if res == nil {
		res = []model.LineVertex{}
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleRaw(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	dat := store.Snapshot().Bytes()
	if dat == nil {
		writeError(w, http.StatusNotFound, "stream has no file")
		return
	}
	w.Header().Set("Content-Type", "audio/midi")
	w.Write(dat)
}

func position(snap index.Snapshot, tick int64) model.PositionResponse {
	return model.PositionResponse{
		Tick:    tick,
		TimeMs:  snap.TickToTime(tick).Milliseconds(),
		Measure: snap.FindMeasure(tick),
		BPM:     snap.TempoAt(tick),
		Tempo:   snap.TempoLabel(tick),
		Key:     snap.KeySigLabel(tick),
	}
}

func (s *Server) handlePosition(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	if tick, ok := queryInt(w, r, "tick"); ok {
		writeJSON(w, http.StatusOK, position(store.Snapshot(), tick))
	}
}

func (s *Server) handleTick(w http.ResponseWriter, r *http.Request) {
	store, ok := s.store(w, r)
	if !ok {
		return
	}
	ms, ok := queryInt(w, r, "ms")
	if !ok {
		return
	}
	snap := store.Snapshot()
	tick := snap.TimeToTick(time.Duration(ms) * time.Millisecond)
	writeJSON(w, http.StatusOK, position(snap, tick))
}

// Package testutil provides an in-memory stand-in for the federation REST backend.
package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/EzequielDigiacomo/sigdef-admin/apiclient"
)

// collectionSpec describes how the fake stores one backend collection.
type collectionSpec struct {
	idKey     string
	autoID    bool
	uniqueKey string
	dupBody   string
}

var specs = map[string]collectionSpec{
	"Persona":       {idKey: "idPersona", autoID: true, uniqueKey: "documento", dupBody: "La persona ya existe"},
	"Atleta":        {idKey: "idPersona", uniqueKey: "idPersona", dupBody: "El atleta ya existe"},
	"Tutor":         {idKey: "idPersona", uniqueKey: "idPersona", dupBody: "El tutor ya existe"},
	"Entrenador":    {idKey: "idPersona", uniqueKey: "idPersona", dupBody: "El entrenador ya existe"},
	"DelegadoClub":  {idKey: "idPersona", uniqueKey: "idPersona", dupBody: "El delegado ya existe"},
	"AtletaTutor":   {idKey: "idAtletaTutor", autoID: true},
	"Club":          {idKey: "idClub", autoID: true, uniqueKey: "nombre", dupBody: "Duplicate club name"},
	"Evento":        {idKey: "idEvento", autoID: true},
	"Inscripcion":   {idKey: "idInscripcion", autoID: true},
	"Documentacion": {idKey: "idDocumentacion", autoID: true},
}

// reference is a foreign key: rows of child.field point at parent ids.
type reference struct {
	child string
	field string
}

var references = map[string][]reference{
	"Persona": {
		{"Atleta", "idPersona"}, {"Tutor", "idPersona"}, {"Entrenador", "idPersona"},
		{"DelegadoClub", "idPersona"}, {"Documentacion", "idPersona"},
	},
	"Atleta": {{"AtletaTutor", "idAtleta"}, {"Inscripcion", "idAtleta"}},
	"Tutor":  {{"AtletaTutor", "idTutor"}},
	"Club": {
		{"Atleta", "idClub"}, {"Entrenador", "idClub"}, {"DelegadoClub", "idClub"}, {"Evento", "idClub"},
	},
	"Evento": {{"Inscripcion", "idEvento"}},
}

type failure struct {
	method string
	prefix string
	status int
	body   string
	times  int // <= 0 means every time
}

// FakeBackend serves the /api collections from memory. Collections listed in PascalCase are
// rendered with upper-camel keys to mimic the inconsistent casing of the real backend.
type FakeBackend struct {
	Server *httptest.Server

	mu         sync.Mutex
	data       map[string]map[int]map[string]any
	nextID     map[string]int
	pascal     map[string]bool
	failures   []*failure
	calls      []string
	token      string
	enforceFKs bool
}

func NewFakeBackend() *FakeBackend {
	f := &FakeBackend{
		data:       make(map[string]map[int]map[string]any),
		nextID:     make(map[string]int),
		pascal:     map[string]bool{"Tutor": true, "AtletaTutor": true},
		enforceFKs: true,
	}
	for name := range specs {
		f.data[name] = make(map[int]map[string]any)
	}
	f.Server = httptest.NewServer(http.HandlerFunc(f.serve))
	return f
}

func (f *FakeBackend) Close() {
	f.Server.Close()
}

// BaseURL is the value to hand to apiclient.New.
func (f *FakeBackend) BaseURL() string {
	return f.Server.URL + "/api"
}

func (f *FakeBackend) Client() *apiclient.Client {
	return apiclient.New(f.BaseURL())
}

// RequireToken makes every request without "Bearer <token>" fail with 401.
func (f *FakeBackend) RequireToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = token
}

// SetPascalCase toggles upper-camel rendering for a collection.
func (f *FakeBackend) SetPascalCase(collection string, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pascal[collection] = on
}

// DisableForeignKeys turns off referential checks on delete.
func (f *FakeBackend) DisableForeignKeys() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enforceFKs = false
}

// Fail makes requests whose method matches and whose path (below /api) starts with prefix
// answer with status and body. times <= 0 keeps failing forever.
func (f *FakeBackend) Fail(method, prefix string, status int, body string, times int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, &failure{method: method, prefix: prefix, status: status, body: body, times: times})
}

// Seed stores a record directly, assigning an id when the collection generates them.
func (f *FakeBackend) Seed(collection string, record map[string]any) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := f.insert(collection, normalize(record))
	return id
}

func (f *FakeBackend) Count(collection string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data[collection])
}

// Records returns a copy of a collection ordered by id.
func (f *FakeBackend) Records(collection string) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sorted(collection)
}

func (f *FakeBackend) Record(collection string, id int) (map[string]any, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.data[collection][id]
	if !ok {
		return nil, false
	}
	return copyMap(rec), true
}

// Calls returns "METHOD /path" for every request received, in order.
func (f *FakeBackend) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api")

	f.mu.Lock()
	f.calls = append(f.calls, r.Method+" "+path)
	if f.token != "" && r.Header.Get("Authorization") != "Bearer "+f.token {
		f.mu.Unlock()
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if fail := f.matchFailure(r.Method, path); fail != nil {
		f.mu.Unlock()
		w.WriteHeader(fail.status)
		_, _ = io.WriteString(w, fail.body)
		return
	}
	f.mu.Unlock()

	segments := strings.Split(strings.Trim(path, "/"), "/")
	if len(segments) == 0 || segments[0] == "" {
		http.NotFound(w, r)
		return
	}

	switch {
	case segments[0] == "Documentacion" && len(segments) == 2 && segments[1] == "upload" && r.Method == http.MethodPost:
		f.upload(w, r)
	case segments[0] == "PagoTransaccion" && len(segments) == 2 && segments[1] == "preferencia" && r.Method == http.MethodPost:
		f.preference(w, r)
	case len(segments) == 3 && r.Method == http.MethodGet:
		f.subList(w, segments)
	case segments[0] == "AtletaTutor" && len(segments) == 3 && r.Method == http.MethodDelete:
		f.deleteLinkByPair(w, segments[1], segments[2])
	case len(segments) == 1 && r.Method == http.MethodGet:
		f.list(w, segments[0])
	case len(segments) == 1 && r.Method == http.MethodPost:
		f.create(w, r, segments[0])
	case len(segments) == 2:
		f.item(w, r, segments[0], segments[1])
	default:
		http.NotFound(w, r)
	}
}

func (f *FakeBackend) matchFailure(method, path string) *failure {
	for i, fail := range f.failures {
		if fail.method != method || !strings.HasPrefix(path, fail.prefix) {
			continue
		}
		if fail.times > 0 {
			fail.times--
			if fail.times == 0 {
				f.failures = append(f.failures[:i], f.failures[i+1:]...)
			}
		}
		return fail
	}
	return nil
}

func (f *FakeBackend) list(w http.ResponseWriter, collection string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := specs[collection]; !ok {
		notFound(w)
		return
	}
	f.write(w, http.StatusOK, collection, f.sorted(collection))
}

func (f *FakeBackend) subList(w http.ResponseWriter, segments []string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var (
		collection string
		field      string
		value      string
	)
	switch {
	case segments[0] == "Persona" && segments[1] == "documento":
		for _, rec := range f.sorted("Persona") {
			if fmt.Sprint(rec["documento"]) == segments[2] {
				f.write(w, http.StatusOK, "Persona", rec)
				return
			}
		}
		notFound(w)
		return
	case segments[0] == "Atleta" && segments[1] == "club":
		collection, field, value = "Atleta", "idClub", segments[2]
	case segments[0] == "Inscripcion" && segments[1] == "evento":
		collection, field, value = "Inscripcion", "idEvento", segments[2]
	case segments[0] == "Documentacion" && segments[1] == "persona":
		collection, field, value = "Documentacion", "idPersona", segments[2]
	case segments[0] == "Club":
		field, value = "idClub", segments[1]
		switch segments[2] {
		case "Atletas":
			collection = "Atleta"
		case "Entrenadores":
			collection = "Entrenador"
		case "Delegados":
			collection = "DelegadoClub"
		case "Eventos":
			collection = "Evento"
		}
	}
	if collection == "" {
		notFound(w)
		return
	}
	want, err := strconv.Atoi(value)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	out := make([]map[string]any, 0)
	for _, rec := range f.sorted(collection) {
		if id, ok := intField(rec, field); ok && id == want {
			out = append(out, rec)
		}
	}
	f.write(w, http.StatusOK, collection, out)
}

func (f *FakeBackend) create(w http.ResponseWriter, r *http.Request, collection string) {
	if _, ok := specs[collection]; !ok {
		notFound(w)
		return
	}
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, dup := f.insert(collection, normalize(body))
	if dup != "" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, dup)
		return
	}
	f.write(w, http.StatusCreated, collection, f.data[collection][id])
}

func (f *FakeBackend) item(w http.ResponseWriter, r *http.Request, collection, rawID string) {
	spec, ok := specs[collection]
	if !ok {
		notFound(w)
		return
	}
	id, err := strconv.Atoi(rawID)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		f.mu.Lock()
		defer f.mu.Unlock()
		rec, ok := f.data[collection][id]
		if !ok {
			notFound(w)
			return
		}
		f.write(w, http.StatusOK, collection, rec)
	case http.MethodPut:
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "invalid body", http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.data[collection][id]; !ok {
			notFound(w)
			return
		}
		rec := normalize(body)
		rec[spec.idKey] = float64(id)
		f.data[collection][id] = rec
		w.WriteHeader(http.StatusNoContent)
	case http.MethodDelete:
		f.mu.Lock()
		defer f.mu.Unlock()
		if _, ok := f.data[collection][id]; !ok {
			notFound(w)
			return
		}
		if blocker := f.blockingReference(collection, id); blocker != "" {
			w.WriteHeader(http.StatusConflict)
			_, _ = io.WriteString(w, "FOREIGN KEY constraint failed: referenced by "+blocker)
			return
		}
		delete(f.data[collection], id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (f *FakeBackend) deleteLinkByPair(w http.ResponseWriter, rawAthlete, rawTutor string) {
	athleteID, err1 := strconv.Atoi(rawAthlete)
	tutorID, err2 := strconv.Atoi(rawTutor)
	if err1 != nil || err2 != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, rec := range f.data["AtletaTutor"] {
		a, _ := intField(rec, "idAtleta")
		t, _ := intField(rec, "idTutor")
		if a == athleteID && t == tutorID {
			delete(f.data["AtletaTutor"], id)
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	notFound(w)
}

func (f *FakeBackend) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		http.Error(w, "invalid multipart", http.StatusBadRequest)
		return
	}
	personID, err := strconv.Atoi(r.FormValue("PersonaId"))
	if err != nil {
		http.Error(w, "PersonaId requerido", http.StatusBadRequest)
		return
	}
	docType, _ := strconv.Atoi(r.FormValue("TipoDocumento"))
	_, header, err := r.FormFile("File")
	if err != nil {
		http.Error(w, "File requerido", http.StatusBadRequest)
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := f.insert("Documentacion", map[string]any{
		"idPersona":     float64(personID),
		"tipoDocumento": float64(docType),
		"urlArchivo":    "/uploads/" + header.Filename,
		"fechaCarga":    "2024-04-12T10:00:00Z",
	})
	f.write(w, http.StatusCreated, "Documentacion", f.data["Documentacion"][id])
}

func (f *FakeBackend) preference(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	reg := fmt.Sprint(normalize(body)["idInscripcion"])
	writeJSON(w, http.StatusOK, map[string]any{
		"PreferenceId": "pref-" + reg,
		"InitPoint":    "https://pagos.example/checkout/pref-" + reg,
	})
}

// insert stores rec and returns its id, or a duplicate body when a unique key collides.
func (f *FakeBackend) insert(collection string, rec map[string]any) (int, string) {
	spec := specs[collection]
	if spec.uniqueKey != "" {
		if v, ok := rec[spec.uniqueKey]; ok && v != nil {
			for _, existing := range f.data[collection] {
				if fmt.Sprint(existing[spec.uniqueKey]) == fmt.Sprint(v) {
					return 0, spec.dupBody
				}
			}
		}
	}
	if collection == "AtletaTutor" {
		a, _ := intField(rec, "idAtleta")
		t, _ := intField(rec, "idTutor")
		for _, existing := range f.data[collection] {
			ea, _ := intField(existing, "idAtleta")
			et, _ := intField(existing, "idTutor")
			if ea == a && et == t {
				return 0, "Duplicate link between athlete and tutor"
			}
		}
	}

	var id int
	if spec.autoID {
		f.nextID[collection]++
		id = f.nextID[collection]
		if existing, ok := intField(rec, spec.idKey); ok && existing > 0 {
			id = existing
			if id > f.nextID[collection] {
				f.nextID[collection] = id
			}
		}
	} else {
		id, _ = intField(rec, spec.idKey)
	}
	rec[spec.idKey] = float64(id)
	f.data[collection][id] = rec
	return id, ""
}

func (f *FakeBackend) blockingReference(collection string, id int) string {
	if !f.enforceFKs {
		return ""
	}
	for _, ref := range references[collection] {
		for _, rec := range f.data[ref.child] {
			if v, ok := intField(rec, ref.field); ok && v == id {
				return ref.child
			}
		}
	}
	return ""
}

func (f *FakeBackend) sorted(collection string) []map[string]any {
	ids := make([]int, 0, len(f.data[collection]))
	for id := range f.data[collection] {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]map[string]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, copyMap(f.data[collection][id]))
	}
	return out
}

func (f *FakeBackend) write(w http.ResponseWriter, status int, collection string, payload any) {
	if f.pascal[collection] {
		payload = pascalize(payload)
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func notFound(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNotFound)
}

func normalize(rec map[string]any) map[string]any {
	out, _ := apiclient.NormalizeKeys(rec).(map[string]any)
	if out == nil {
		out = make(map[string]any)
	}
	for k, v := range out {
		if n, ok := v.(int); ok {
			out[k] = float64(n)
		}
	}
	return out
}

func pascalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if k == "" {
				continue
			}
			out[strings.ToUpper(k[:1])+k[1:]] = val
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, m := range t {
			out[i] = pascalize(m)
		}
		return out
	default:
		return v
	}
}

func intField(rec map[string]any, key string) (int, bool) {
	switch v := rec[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	case string:
		n, err := strconv.Atoi(v)
		return n, err == nil
	default:
		return 0, false
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

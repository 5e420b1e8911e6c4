package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/FocuswithJustin/stbview/core/source"
	"github.com/FocuswithJustin/stbview/core/stb"
)

const frameModel = `<ST_BRIDGE version="2.0">
<StbCommon><StbReinforcement_Strength_List/></StbCommon>
<StbModel>
<StbNodes>
<StbNode id="1" x="0" y="0" z="0" kind="ON_COLUMN"/>
<StbNode id="2" x="0" y="0" z="3000" kind="ON_COLUMN"/>
</StbNodes>
<StbAxes/><StbStories/>
<StbMembers>%s</StbMembers>
<StbSections/>
</StbModel>
<StbExtensions/>
</ST_BRIDGE>`

const column = `<StbColumns><StbColumn id="10" name="C1" idNode_bottom="1" idNode_top="2" rotate="0" id_section="1" kind_structure="S" offset_X="0" offset_Y="0" condition_bottom="FIX" condition_top="FIX"/></StbColumns>`

const slab = `<StbSlabs><StbSlab id="50" name="S1" id_section="4" kind_structure="RC" kind_slab="NORMAL" level="0" isFoundation="false"/></StbSlabs>`

// fixtures writes the test models into a fresh directory.
func fixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"frame.stb":     fmt.Sprintf(frameModel, column),
		"slab.stb":      fmt.Sprintf(frameModel, column+slab),
		"badenum.stb":   strings.Replace(fmt.Sprintf(frameModel, column), `kind="ON_COLUMN"`, `kind="on_column"`, 2),
		"malformed.stb": "<ST_BRIDGE>\n<StbModel>\n</ST_BRIDGE>",
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestServer(t *testing.T, cfg Config) *Server {
	t.Helper()
	s, err := New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
	Meta    *APIMeta        `json:"meta"`
}

func do(t *testing.T, h http.Handler, method, path string, body any) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		if err := json.NewEncoder(&buf).Encode(b); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var env envelope
	if w.Code != http.StatusNoContent {
		if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
			t.Fatalf("%s %s: decode %q: %v", method, path, w.Body.String(), err)
		}
	}
	return w.Code, env
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t, Config{Version: "1.2.3"}).Handler()

	tests := []struct {
		method, path string
		want         int
	}{
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodGet, "/health", http.StatusOK},
		{http.MethodGet, "/snapshots", http.StatusOK},
		{http.MethodGet, "/nowhere", http.StatusNotFound},
		{http.MethodGet, "/parse", http.StatusMethodNotAllowed},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("missing X-Request-ID header")
			}
		})
	}
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, Config{Version: "1.2.3"}).Handler()
	code, env := do(t, h, http.MethodGet, "/health", nil)
	if code != http.StatusOK || !env.Success {
		t.Fatalf("status = %d, env = %+v", code, env)
	}
	var info HealthInfo
	if err := json.Unmarshal(env.Data, &info); err != nil {
		t.Fatal(err)
	}
	if info.Status != "healthy" || info.Version != "1.2.3" || info.Snapshots || info.SQLite.DriverName == "" {
		t.Errorf("health = %+v", info)
	}
}

func TestParse(t *testing.T) {
	dir := fixtures(t)
	s := newTestServer(t, Config{Root: dir})
	h := s.Handler()

	code, env := do(t, h, http.MethodPost, "/parse", LoadRequest{FileName: "frame.stb"})
	if code != http.StatusOK {
		t.Fatalf("status = %d, error = %+v", code, env.Error)
	}
	var doc stb.Document
	if err := json.Unmarshal(env.Data, &doc); err != nil {
		t.Fatalf("decode document: %v", err)
	}
	if doc.Version != "2.0" || len(doc.Model.Nodes) != 2 || len(doc.Model.Members.Columns) != 1 {
		t.Errorf("document = %+v", doc)
	}

	// The second request is served from the cache.
	do(t, h, http.MethodPost, "/parse", LoadRequest{FileName: "frame.stb"})
	if st := s.docs.Stats(); st.Hits != 1 || st.Size != 1 {
		t.Errorf("cache stats = %+v", st)
	}
}

func TestParseErrors(t *testing.T) {
	dir := fixtures(t)
	h := newTestServer(t, Config{Root: dir}).Handler()

	tests := []struct {
		name     string
		body     any
		status   int
		code     string
		nDetails int
	}{
		{"missing file", LoadRequest{FileName: "none.stb"}, http.StatusNotFound, "NOT_FOUND", 0},
		{"unknown enum", LoadRequest{FileName: "badenum.stb"}, http.StatusUnprocessableEntity, "EXTRACT_ERROR", 1},
		{"collect", LoadRequest{FileName: "badenum.stb", Collect: true}, http.StatusUnprocessableEntity, "EXTRACT_ERROR", 2},
		{"malformed", LoadRequest{FileName: "malformed.stb"}, http.StatusUnprocessableEntity, "PARSE_ERROR", 0},
		{"traversal", LoadRequest{FileName: "../etc/passwd"}, http.StatusBadRequest, "INVALID_PATH", 0},
		{"absolute", LoadRequest{FileName: "/etc/passwd"}, http.StatusBadRequest, "INVALID_PATH", 0},
		{"empty", LoadRequest{}, http.StatusBadRequest, "INVALID_PATH", 0},
		{"bad encoding", LoadRequest{FileName: "frame.stb", Encoding: "klingon"}, http.StatusUnprocessableEntity, "UNSUPPORTED", 0},
		{"bad body", "{", http.StatusBadRequest, "INVALID_INPUT", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, env := do(t, h, http.MethodPost, "/parse", tt.body)
			if code != tt.status {
				t.Errorf("status = %d, want %d (%+v)", code, tt.status, env.Error)
			}
			if env.Success || env.Error == nil {
				t.Fatalf("env = %+v", env)
			}
			if env.Error.Code != tt.code {
				t.Errorf("code = %s, want %s (%s)", env.Error.Code, tt.code, env.Error.Message)
			}
			if len(env.Error.Details) != tt.nDetails {
				t.Errorf("details = %+v, want %d", env.Error.Details, tt.nDetails)
			}
		})
	}
}

func TestExtractErrorDetails(t *testing.T) {
	dir := fixtures(t)
	h := newTestServer(t, Config{Root: dir}).Handler()

	_, env := do(t, h, http.MethodPost, "/parse", LoadRequest{FileName: "badenum.stb"})
	if env.Error == nil || len(env.Error.Details) != 1 {
		t.Fatalf("env = %+v", env)
	}
	d := env.Error.Details[0]
	if d.Code != "unknown-enum" || d.Attribute != "kind" || d.Value != "on_column" ||
		d.Path != "/ST_BRIDGE/StbModel/StbNodes/StbNode[1]" {
		t.Errorf("detail = %+v", d)
	}
}

func TestMembers(t *testing.T) {
	dir := fixtures(t)
	h := newTestServer(t, Config{Root: dir}).Handler()

	t.Run("file", func(t *testing.T) {
		code, env := do(t, h, http.MethodPost, "/members", MembersRequest{LoadRequest: LoadRequest{FileName: "frame.stb"}})
		if code != http.StatusOK {
			t.Fatalf("status = %d, error = %+v", code, env.Error)
		}
		var pairs [][]stb.Node
		if err := json.Unmarshal(env.Data, &pairs); err != nil {
			t.Fatal(err)
		}
		if len(pairs) != 1 || len(pairs[0]) != 2 || pairs[0][1].Z != 3000 {
			t.Errorf("pairs = %+v", pairs)
		}
		if env.Meta.Total != 1 {
			t.Errorf("total = %d", env.Meta.Total)
		}
	})

	t.Run("slab rejected", func(t *testing.T) {
		code, env := do(t, h, http.MethodPost, "/members", MembersRequest{LoadRequest: LoadRequest{FileName: "slab.stb"}})
		if code != http.StatusUnprocessableEntity || env.Error.Code != "RESOLVE_ERROR" {
			t.Errorf("status = %d, error = %+v", code, env.Error)
		}
	})

	t.Run("skip slabs", func(t *testing.T) {
		code, env := do(t, h, http.MethodPost, "/members", MembersRequest{LoadRequest: LoadRequest{FileName: "slab.stb"}, SkipSlabs: true})
		if code != http.StatusOK || env.Meta.Total != 1 {
			t.Errorf("status = %d, env = %+v", code, env)
		}
	})

	t.Run("inline document", func(t *testing.T) {
		src, err := source.Load(filepath.Join(dir, "frame.stb"), source.Options{})
		if err != nil {
			t.Fatal(err)
		}
		doc := parseForTest(t, src)
		delete(doc.Model.Nodes, 2)
		code, env := do(t, h, http.MethodPost, "/members", MembersRequest{STBridge: doc})
		if code != http.StatusUnprocessableEntity || env.Error.Code != "RESOLVE_ERROR" {
			t.Errorf("status = %d, error = %+v", code, env.Error)
		}
		if !strings.Contains(env.Error.Message, "node not found: 2") {
			t.Errorf("message = %q", env.Error.Message)
		}
	})

	t.Run("nothing to resolve", func(t *testing.T) {
		code, env := do(t, h, http.MethodPost, "/members", MembersRequest{})
		if code != http.StatusBadRequest || env.Error.Code != "INVALID_INPUT" {
			t.Errorf("status = %d, error = %+v", code, env.Error)
		}
	})
}

func TestSnapshots(t *testing.T) {
	dir := fixtures(t)
	db := filepath.Join(t.TempDir(), "snapshots.db")

	s := newTestServer(t, Config{Root: dir, SnapshotDB: db})
	h := s.Handler()
	if code, env := do(t, h, http.MethodPost, "/parse", LoadRequest{FileName: "frame.stb"}); code != http.StatusOK {
		t.Fatalf("parse: %d %+v", code, env.Error)
	}

	code, env := do(t, h, http.MethodGet, "/snapshots", nil)
	if code != http.StatusOK || env.Meta.Total != 1 {
		t.Fatalf("snapshots: %d %+v", code, env)
	}
	var list []struct {
		Digest  string `json:"digest"`
		Members int    `json:"members"`
	}
	if err := json.Unmarshal(env.Data, &list); err != nil {
		t.Fatal(err)
	}
	if len(list) != 1 || list[0].Members != 1 {
		t.Fatalf("list = %+v", list)
	}
	digest := list[0].Digest
	s.Close()

	// A fresh server finds the document in the store without reparsing.
	again := newTestServer(t, Config{Root: dir, SnapshotDB: db})
	if code, _ := do(t, again.Handler(), http.MethodPost, "/parse", LoadRequest{FileName: "frame.stb"}); code != http.StatusOK {
		t.Fatalf("reparse status = %d", code)
	}
	if _, ok := again.docs.Get(digest); !ok {
		t.Error("snapshot was not loaded into the memory cache")
	}

	h = again.Handler()
	if code, _ := do(t, h, http.MethodDelete, "/snapshots/"+digest, nil); code != http.StatusNoContent {
		t.Errorf("delete status = %d", code)
	}
	if code, env := do(t, h, http.MethodDelete, "/snapshots/"+digest, nil); code != http.StatusNotFound {
		t.Errorf("second delete = %d %+v", code, env.Error)
	}
	if code, _ := do(t, h, http.MethodDelete, "/snapshots/not-a-digest", nil); code != http.StatusBadRequest {
		t.Errorf("invalid digest status = %d", code)
	}
}

func TestNewFailsOnBadSnapshotPath(t *testing.T) {
	_, err := New(context.Background(), Config{SnapshotDB: filepath.Join(t.TempDir(), "missing", "dir", "x.db")})
	if err == nil {
		t.Error("New() should fail when the snapshot store cannot be opened")
	}
}

package publish

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/open-cli-collective/md2conf/api"
)

type fakePage struct {
	ID       string
	Title    string
	Version  int
	ParentID string
	Body     string
}

type fakeUpload struct {
	PageID   string
	Filename string
	Comment  string
	Content  string
	Replaced bool
}

// fakeConfluence is an in-memory Confluence serving the endpoints the
// publisher calls.
type fakeConfluence struct {
	t *testing.T

	mu          sync.Mutex
	nextID      int
	spaces      map[string]string
	pages       map[string]*fakePage
	attachments map[string]map[string]string
	properties  map[string][]api.ContentProperty
	labels      map[string][]string
	uploads     []fakeUpload
	updates     []api.UpdatePageRequest
	propUpdates []api.ContentProperty
	deleted     []string
	calls       int
}

func newFakeConfluence(t *testing.T) (*fakeConfluence, *api.Client) {
	t.Helper()

	f := &fakeConfluence{
		t:           t,
		nextID:      1000,
		spaces:      map[string]string{"DEV": "123456"},
		pages:       make(map[string]*fakePage),
		attachments: make(map[string]map[string]string),
		properties:  make(map[string][]api.ContentProperty),
		labels:      make(map[string][]string),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/spaces", f.listSpaces)
	mux.HandleFunc("GET /api/v2/spaces/{id}/pages", f.listPages)
	mux.HandleFunc("POST /api/v2/pages", f.createPage)
	mux.HandleFunc("PUT /api/v2/pages/{id}", f.updatePage)
	mux.HandleFunc("DELETE /api/v2/pages/{id}", f.deletePage)
	mux.HandleFunc("GET /api/v2/pages/{id}/attachments", f.listAttachments)
	mux.HandleFunc("POST /rest/api/content/{id}/child/attachment", f.upload)
	mux.HandleFunc("POST /rest/api/content/{id}/child/attachment/{att}/data", f.upload)
	mux.HandleFunc("GET /api/v2/pages/{id}/properties", f.listProperties)
	mux.HandleFunc("POST /api/v2/pages/{id}/properties", f.createProperty)
	mux.HandleFunc("PUT /api/v2/pages/{id}/properties/{prop}", f.updateProperty)
	mux.HandleFunc("GET /api/v2/pages/{id}/labels", f.listLabels)
	mux.HandleFunc("POST /rest/api/content/{id}/label", f.addLabels)

	server := httptest.NewServer(http.StripPrefix("/wiki", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.calls++
		f.mu.Unlock()
		mux.ServeHTTP(w, r)
	})))
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL+"/wiki", "user@example.com", "token", api.WithRetryPolicy(api.NoRetry()))
	return f, client
}

// addPage seeds an existing page.
func (f *fakeConfluence) addPage(title string, version int) *fakePage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addPageLocked(title, version)
}

func (f *fakeConfluence) addPageLocked(title string, version int) *fakePage {
	f.nextID++
	p := &fakePage{ID: strconv.Itoa(f.nextID), Title: title, Version: version}
	f.pages[p.ID] = p
	return p
}

func (f *fakeConfluence) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeConfluence) pageJSON(p *fakePage) api.Page {
	return api.Page{
		ID:       p.ID,
		Status:   "current",
		Title:    p.Title,
		SpaceID:  "123456",
		ParentID: p.ParentID,
		Version:  &api.Version{Number: p.Version},
		Links:    api.Links{WebUI: fmt.Sprintf("/spaces/DEV/pages/%s", p.ID)},
	}
}

func (f *fakeConfluence) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		f.t.Errorf("encode response: %v", err)
	}
}

func (f *fakeConfluence) decode(r *http.Request, v any) {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		f.t.Errorf("decode %s %s: %v", r.Method, r.URL.Path, err)
	}
}

func (f *fakeConfluence) listSpaces(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("keys")
	var results []api.Space
	if id, ok := f.spaces[key]; ok {
		results = append(results, api.Space{ID: id, Key: key})
	}
	f.writeJSON(w, http.StatusOK, api.PaginatedResponse[api.Space]{Results: results})
}

func (f *fakeConfluence) listPages(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	title := r.URL.Query().Get("title")
	results := []api.Page{}
	for _, p := range f.pages {
		if p.Title == title {
			results = append(results, f.pageJSON(p))
		}
	}
	f.writeJSON(w, http.StatusOK, api.PaginatedResponse[api.Page]{Results: results})
}

func (f *fakeConfluence) createPage(w http.ResponseWriter, r *http.Request) {
	var req api.CreatePageRequest
	f.decode(r, &req)

	f.mu.Lock()
	defer f.mu.Unlock()

	p := f.addPageLocked(req.Title, 1)
	p.ParentID = req.ParentID
	if req.Body != nil && req.Body.Storage != nil {
		p.Body = req.Body.Storage.Value
	}
	f.writeJSON(w, http.StatusOK, f.pageJSON(p))
}

func (f *fakeConfluence) updatePage(w http.ResponseWriter, r *http.Request) {
	var req api.UpdatePageRequest
	f.decode(r, &req)

	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.pages[r.PathValue("id")]
	if !ok {
		f.writeJSON(w, http.StatusNotFound, api.ErrorResponse{Message: "page not found"})
		return
	}
	if req.Version == nil || req.Version.Number != p.Version+1 {
		f.writeJSON(w, http.StatusConflict, api.ErrorResponse{Message: "version conflict"})
		return
	}

	f.updates = append(f.updates, req)
	p.Title = req.Title
	p.Version = req.Version.Number
	p.ParentID = req.ParentID
	p.Body = req.Body.Storage.Value
	f.writeJSON(w, http.StatusOK, f.pageJSON(p))
}

func (f *fakeConfluence) deletePage(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := r.PathValue("id")
	delete(f.pages, id)
	f.deleted = append(f.deleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeConfluence) listAttachments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	name := r.URL.Query().Get("filename")
	results := []api.Attachment{}
	if id, ok := f.attachments[r.PathValue("id")][name]; ok {
		results = append(results, api.Attachment{ID: id, Title: name})
	}
	f.writeJSON(w, http.StatusOK, api.PaginatedResponse[api.Attachment]{Results: results})
}

func (f *fakeConfluence) upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		f.t.Errorf("parse multipart: %v", err)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		f.t.Errorf("form file: %v", err)
		return
	}
	defer file.Close()
	content, _ := io.ReadAll(file)

	f.mu.Lock()
	defer f.mu.Unlock()

	pageID := r.PathValue("id")
	if f.attachments[pageID] == nil {
		f.attachments[pageID] = make(map[string]string)
	}
	id := r.PathValue("att")
	if id == "" {
		f.nextID++
		id = "att" + strconv.Itoa(f.nextID)
		f.attachments[pageID][header.Filename] = id
	}

	f.uploads = append(f.uploads, fakeUpload{
		PageID:   pageID,
		Filename: header.Filename,
		Comment:  r.FormValue("comment"),
		Content:  string(content),
		Replaced: r.PathValue("att") != "",
	})
	f.writeJSON(w, http.StatusOK, map[string]any{
		"results": []api.Attachment{{ID: id, Title: header.Filename}},
	})
}

func (f *fakeConfluence) listProperties(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.writeJSON(w, http.StatusOK, api.PaginatedResponse[api.ContentProperty]{Results: f.properties[r.PathValue("id")]})
}

func (f *fakeConfluence) createProperty(w http.ResponseWriter, r *http.Request) {
	var prop api.ContentProperty
	f.decode(r, &prop)

	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	prop.ID = strconv.Itoa(f.nextID)
	prop.Version = &api.Version{Number: 1}
	pageID := r.PathValue("id")
	f.properties[pageID] = append(f.properties[pageID], prop)
	f.writeJSON(w, http.StatusOK, prop)
}

func (f *fakeConfluence) updateProperty(w http.ResponseWriter, r *http.Request) {
	var prop api.ContentProperty
	f.decode(r, &prop)

	f.mu.Lock()
	defer f.mu.Unlock()

	pageID := r.PathValue("id")
	for i, have := range f.properties[pageID] {
		if have.ID == r.PathValue("prop") {
			prop.ID = have.ID
			f.properties[pageID][i] = prop
			f.propUpdates = append(f.propUpdates, prop)
			f.writeJSON(w, http.StatusOK, prop)
			return
		}
	}
	f.writeJSON(w, http.StatusNotFound, api.ErrorResponse{Message: "property not found"})
}

func (f *fakeConfluence) listLabels(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	results := []api.Label{}
	for _, name := range f.labels[r.PathValue("id")] {
		results = append(results, api.Label{Name: name, Prefix: "global"})
	}
	f.writeJSON(w, http.StatusOK, api.PaginatedResponse[api.Label]{Results: results})
}

func (f *fakeConfluence) addLabels(w http.ResponseWriter, r *http.Request) {
	var labels []api.Label
	f.decode(r, &labels)

	f.mu.Lock()
	defer f.mu.Unlock()

	pageID := r.PathValue("id")
	for _, l := range labels {
		f.labels[pageID] = append(f.labels[pageID], l.Name)
	}
	f.writeJSON(w, http.StatusOK, map[string]any{"results": labels})
}

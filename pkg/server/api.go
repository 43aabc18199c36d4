package server

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/kylerisse/cmangraph/pkg/cman"
	"github.com/kylerisse/cmangraph/pkg/datasource"
	"github.com/kylerisse/cmangraph/pkg/perfdata"
)

// GraphAPIResponse is one graph definition, plus the image URLs when drawn.
type GraphAPIResponse struct {
	cman.Graph
	Images []string `json:"images,omitempty"`
}

// GraphsAPIResponse is the body of /api/graphs.
type GraphsAPIResponse struct {
	Host    string             `json:"host"`
	Service string             `json:"service"`
	Graphs  []GraphAPIResponse `json:"graphs"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// handleGraphs builds graph definitions from the perfdata query parameter.
//
//	GET /api/graphs?host=db01&service=CMAN&perfdata=...&draw=true
func (s *Server) handleGraphs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	host := q.Get("host")
	service := q.Get("service")
	if host == "" || service == "" {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "host and service are required"})
		return
	}

	draw := false
	if v := q.Get("draw"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "draw must be a boolean"})
			return
		}
		draw = b
	}
	if draw && s.drawer == nil {
		s.writeJSON(w, http.StatusNotImplemented, errorResponse{Error: "drawing is not enabled"})
		return
	}

	samples, err := perfdata.Parse(q.Get("perfdata"))
	if err != nil {
		s.logger.Debugf("API Handler: bad perfdata for %s/%s: %v", host, service, err)
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	records := datasource.FromSamples(host, service, samples, datasource.Options{
		RRDDir:  s.cfg.RRDDir,
		Storage: s.cfg.Storage,
	})
	graphs := s.builder.Build(records)
	s.metrics.observeBuild(cman.Tally(records), len(graphs))

	resp := GraphsAPIResponse{
		Host:    host,
		Service: service,
		Graphs:  make([]GraphAPIResponse, 0, len(graphs)),
	}
	for _, g := range graphs.Sorted() {
		gr := GraphAPIResponse{Graph: g}
		if draw {
			files, err := s.drawer.Draw(r.Context(), host, service, g)
			if err != nil {
				s.metrics.drawFailures.Inc()
				s.logger.Errorf("API Handler: failed to draw graph %d for %s/%s (%v)", g.Index, host, service, err)
			}
			s.metrics.graphsDrawn.Add(float64(len(files)))
			gr.Images = s.imageURLs(files)
		}
		resp.Graphs = append(resp.Graphs, gr)
	}

	s.writeJSON(w, http.StatusOK, resp)
}

// imageURLs maps drawn file paths to the /imgs/ URLs that serve them.
func (s *Server) imageURLs(files []string) []string {
	urls := make([]string, 0, len(files))
	for _, f := range files {
		rel, err := filepath.Rel(s.cfg.GraphDir, f)
		if err != nil {
			s.logger.Errorf("API Handler: image %s is outside %s", f, s.cfg.GraphDir)
			continue
		}
		urls = append(urls, "/"+filepath.ToSlash(rel))
	}
	return urls
}

func (s *Server) writeJSON(w http.ResponseWriter, code int, body any) {
	s.metrics.observeRequest(code)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Errorf("API Handler: failed to encode response (%v)", err)
	}
}
